package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ukaji3/xlmunge/pkg/xlmunge"
	"github.com/ukaji3/xlmunge/pkg/xlmunge/ooxml"
	"github.com/ukaji3/xlmunge/pkg/xlmunge/output"
)

func newInspectCommand() *cobra.Command {
	var (
		pretty        bool
		templateSheet string
	)

	cmd := &cobra.Command{
		Use:   "inspect <workbook>",
		Short: "Describe a workbook's sheets and drawing objects as JSON",
		Long: `inspect prints the container format, the sheets and every drawing object
per sheet, in the order a run would see them. Legacy compound files are
described by their streams and summary properties.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			wb, err := ooxml.Inspect(args[0], templateSheet)
			if err != nil {
				return fmt.Errorf("inspection failed: %w", err)
			}
			data, err := output.WorkbookToJSON(wb, pretty)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&templateSheet, "template-sheet", xlmunge.DefaultTemplateSheet, "Sheet to mark as the template")

	return cmd
}
