package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ukaji3/xlmunge/pkg/xlmunge"
)

func newListCommand() *cobra.Command {
	var (
		directory  string
		extensions []string
		suffix     string
		fresh      bool
		names      bool
	)

	cmd := &cobra.Command{
		Use:   "list -d <directory>",
		Short: "Print every candidate workbook under a directory",
		Long: `list walks the directory the same way a run does and prints each
matching file, one absolute path per line (or one file name with --names).
Nothing is opened or written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if fresh && suffix == "" {
				return &xlmunge.ConfigError{Field: "suffix", Err: xlmunge.ErrEmptySuffix}
			}
			disc, err := xlmunge.NewDiscoverer(directory, extensions)
			if err != nil {
				return err
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			for path, err := range disc.Files() {
				if err != nil {
					fmt.Fprintf(errOut, "warning: cannot read %s: %v\n", path, err)
					continue
				}
				if fresh && xlmunge.IsMunged(path, suffix) {
					continue
				}
				if names {
					path = filepath.Base(path)
				}
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", "", "Root directory to scan (required)")
	cmd.Flags().StringSliceVarP(&extensions, "ext", "e", append([]string(nil), xlmunge.DefaultExtensions...), "File extension to scan (repeatable)")
	cmd.Flags().StringVarP(&suffix, "suffix", "s", xlmunge.DefaultSuffix, "Output suffix used by --fresh")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Omit files that already carry the output suffix")
	cmd.Flags().BoolVar(&names, "names", false, "Print file names instead of absolute paths")

	return cmd
}
