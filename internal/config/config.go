// Package config holds runtime configuration: defaults, the optional YAML
// config file, and validation. Command-line flags are applied on top by the
// CLI, only for flags the user actually set.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ukaji3/xlmunge/internal/logging"
	"github.com/ukaji3/xlmunge/pkg/xlmunge"
)

// DefaultConfigFile is looked up in the working directory when --config is
// not given.
const DefaultConfigFile = ".xlmunge.yaml"

// Config holds every setting of one invocation.
type Config struct {
	// Inputs.
	Directory string `yaml:"directory"`
	Image     string `yaml:"image"`

	// Processing.
	Suffix        string   `yaml:"suffix"`         // Default: ".updated".
	Extensions    []string `yaml:"extensions"`     // Default: ["xls"].
	TemplateSheet string   `yaml:"template_sheet"` // Default: "template".
	DryRun        bool     `yaml:"dry_run"`

	// Display and logging.
	LogLevel  string            `yaml:"log_level"` // Default: "info".
	LogFile   string            `yaml:"log_file"`
	ColorMode logging.ColorMode `yaml:"color"` // Default: "auto".

	// ReportPath receives the JSON run report when set.
	ReportPath string `yaml:"report"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	opts := xlmunge.DefaultOptions()
	return &Config{
		Suffix:        opts.Suffix,
		Extensions:    opts.Extensions,
		TemplateSheet: opts.TemplateSheet,
		LogLevel:      "info",
		ColorMode:     logging.ColorAuto,
	}
}

// LoadConfig reads the YAML file at path over the defaults. A missing file is
// not an error; a malformed one is. Only non-zero values from the file
// replace defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.merge(&file)
	return cfg, nil
}

func (c *Config) merge(file *Config) {
	if file.Directory != "" {
		c.Directory = file.Directory
	}
	if file.Image != "" {
		c.Image = file.Image
	}
	if file.Suffix != "" {
		c.Suffix = file.Suffix
	}
	if len(file.Extensions) > 0 {
		c.Extensions = file.Extensions
	}
	if file.TemplateSheet != "" {
		c.TemplateSheet = file.TemplateSheet
	}
	if file.DryRun {
		c.DryRun = true
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.LogFile != "" {
		c.LogFile = file.LogFile
	}
	if file.ColorMode != "" {
		c.ColorMode = file.ColorMode
	}
	if file.ReportPath != "" {
		c.ReportPath = file.ReportPath
	}
}

// Options returns the processing options.
func (c *Config) Options() xlmunge.Options {
	return xlmunge.Options{
		Suffix:        c.Suffix,
		Extensions:    append([]string(nil), c.Extensions...),
		TemplateSheet: c.TemplateSheet,
		DryRun:        c.DryRun,
	}
}

// Validate checks enum fields and required inputs. Every failure is fatal.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case logging.ColorAuto, logging.ColorAlways, logging.ColorNever:
	default:
		return &xlmunge.ConfigError{
			Field: "color",
			Err:   fmt.Errorf("%q (use 'auto', 'always' or 'never')", c.ColorMode),
		}
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return &xlmunge.ConfigError{
			Field: "log level",
			Err:   fmt.Errorf("%q (use trace, debug, info, warn or error)", c.LogLevel),
		}
	}
	if c.Directory == "" {
		return &xlmunge.ConfigError{Field: "directory", Err: xlmunge.ErrMissingDirectory}
	}
	if c.Image == "" {
		return &xlmunge.ConfigError{Field: "image", Err: xlmunge.ErrMissingImage}
	}
	return c.Options().Validate()
}

// Request loads the replacement image and resolves the run's immutable
// request. Call Validate first.
func (c *Config) Request() (xlmunge.Request, error) {
	img, err := xlmunge.LoadImage(c.Image)
	if err != nil {
		return xlmunge.Request{}, err
	}
	return xlmunge.NewRequest(c.Directory, img, c.Options())
}
