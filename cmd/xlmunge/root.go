package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ukaji3/xlmunge/internal/config"
	"github.com/ukaji3/xlmunge/internal/filelock"
	"github.com/ukaji3/xlmunge/internal/logging"
	"github.com/ukaji3/xlmunge/pkg/xlmunge"
	"github.com/ukaji3/xlmunge/pkg/xlmunge/ooxml"
	"github.com/ukaji3/xlmunge/pkg/xlmunge/output"
)

// errInterrupted is returned when a signal stops the batch between files.
var errInterrupted = errors.New("interrupted")

type rootFlags struct {
	configPath    string
	directory     string
	image         string
	suffix        string
	extensions    []string
	templateSheet string
	dryRun        bool
	logLevel      string
	logFile       string
	color         string
	report        string
}

func newRootCommand() *cobra.Command {
	f := &rootFlags{}
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "xlmunge -d <directory> -i <image.png>",
		Short: "Replace the template-sheet picture in every workbook under a directory",
		Long: `xlmunge walks a directory tree for workbooks, removes the first drawing
object on each workbook's "template" sheet and inserts the given PNG at the
top-left cell at its native size. Results are written next to each input as
NAME<suffix>.xls; files that already carry the suffix are skipped.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Flags parsed fine; errors from here on are not usage errors.
			cmd.SilenceUsage = true
			return runMunge(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&f.dryRun, "dry-run", "n", false, "Process every eligible file but write nothing")
	flags.StringVarP(&f.directory, "directory", "d", "", "Root directory to scan (required)")
	flags.StringVarP(&f.image, "image", "i", "", "Replacement PNG image (required)")
	flags.StringVarP(&f.suffix, "suffix", "s", defaults.Suffix, "Inserted before the extension of each output file")
	flags.StringSliceVarP(&f.extensions, "ext", "e", defaults.Extensions, "File extension to scan (repeatable)")
	flags.StringVar(&f.templateSheet, "template-sheet", defaults.TemplateSheet, "Name of the sheet whose picture is replaced")
	flags.StringVar(&f.configPath, "config", "", "YAML config file (default: "+config.DefaultConfigFile+" if present)")
	flags.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "Log level: trace, debug, info, warn, error")
	flags.StringVar(&f.logFile, "log-file", "", "Append log lines to this file")
	flags.StringVar(&f.color, "color", string(defaults.ColorMode), "Colour output: auto, always, never")
	flags.StringVar(&f.report, "report", "", "Write a JSON run report to this path")

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newInspectCommand())

	return cmd
}

// loadConfig merges defaults, the config file and the flags the user set,
// in that order of precedence.
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	path := config.DefaultConfigFile
	if cmd.Flags().Changed("config") {
		path = f.configPath
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("directory") {
		cfg.Directory = f.directory
	}
	if flags.Changed("image") {
		cfg.Image = f.image
	}
	if flags.Changed("suffix") {
		cfg.Suffix = f.suffix
	}
	if flags.Changed("ext") {
		cfg.Extensions = f.extensions
	}
	if flags.Changed("template-sheet") {
		cfg.TemplateSheet = f.templateSheet
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if flags.Changed("color") {
		cfg.ColorMode = logging.ColorMode(f.color)
	}
	if flags.Changed("report") {
		cfg.ReportPath = f.report
	}
	return cfg, nil
}

func runMunge(cmd *cobra.Command, f *rootFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Color:   cfg.ColorMode,
		LogFile: cfg.LogFile,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer log.Close()

	req, err := cfg.Request()
	if err != nil {
		return err
	}
	disc, err := xlmunge.NewDiscoverer(req.Root, req.Extensions)
	if err != nil {
		return err
	}
	req.Root = disc.Root()

	if !req.DryRun {
		lock := filelock.NewFileLock(filelock.RunLockPath(req.Root))
		acquired, err := lock.TryLock()
		if err != nil {
			return err
		}
		if !acquired {
			return &xlmunge.ConfigError{
				Field: "directory",
				Err:   fmt.Errorf("%w: %s (lock file %s)", xlmunge.ErrRunLocked, req.Root, lock.Path()),
			}
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				log.Warn("%v", err)
			}
		}()
	}

	runID := uuid.NewString()
	log.Info("Run %s: scanning %s for %v", runID, req.Root, req.Extensions)
	log.Debug("Image %s (%dx%d), suffix %q, sheet %q",
		filepath.Base(req.Image.Path), req.Image.Width, req.Image.Height, req.Suffix, req.TemplateSheet)
	if req.DryRun {
		log.Info("Dry run: no files will be written")
	}

	mutator := xlmunge.NewMutator(ooxml.NewOpener(), req,
		xlmunge.WithLogger(log),
		xlmunge.WithRunID(runID),
	)
	report := mutator.Run(cmd.Context(), disc.Files())

	s := report.Stats
	log.Info("Done: %d file(s), %d processed, %d skipped (%d already munged, %d unreadable, %d no %q sheet, %d I/O error)",
		s.Total, s.Processed, s.Skipped(),
		s.SkippedAlreadyMunged, s.SkippedUnreadable, s.SkippedNoTemplateSheet, req.TemplateSheet, s.SkippedIOError)
	if s.WalkErrors > 0 {
		log.Warn("%d path(s) could not be read during the scan", s.WalkErrors)
	}

	if cfg.ReportPath != "" {
		if err := writeReport(cfg.ReportPath, report); err != nil {
			return err
		}
		log.Debug("Report written to %s", cfg.ReportPath)
	}

	if report.Interrupted {
		return errInterrupted
	}
	return nil
}

func writeReport(path string, report *xlmunge.Report) error {
	model := report.Model()
	data, err := output.ReportToJSON(&model, true)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if err := filelock.AtomicWrite(path, append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
