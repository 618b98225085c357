// Package xlmunge replaces the picture on the template sheet of every workbook
// found under a directory tree.
package xlmunge

import (
	"fmt"
	"strings"
)

const (
	// DefaultSuffix is inserted before the extension of every output file.
	DefaultSuffix = ".updated"
	// DefaultTemplateSheet is the sheet whose drawing layer is rewritten.
	DefaultTemplateSheet = "template"
)

// DefaultExtensions lists the file extensions scanned when none are configured.
var DefaultExtensions = []string{"xls"}

// Options configures a batch run.
type Options struct {
	// Suffix marks output files; inputs whose name contains it are skipped.
	Suffix string
	// Extensions are matched against file names, without the leading dot.
	Extensions []string
	// TemplateSheet is matched exactly and case-sensitively.
	TemplateSheet string
	// DryRun processes every eligible file but writes nothing.
	DryRun bool
}

// DefaultOptions returns the options used when nothing is overridden.
func DefaultOptions() Options {
	return Options{
		Suffix:        DefaultSuffix,
		Extensions:    append([]string(nil), DefaultExtensions...),
		TemplateSheet: DefaultTemplateSheet,
	}
}

// Validate reports options that would make the run unsafe.
func (o Options) Validate() error {
	if o.Suffix == "" {
		return &ConfigError{Field: "suffix", Err: ErrEmptySuffix}
	}
	if len(o.Extensions) == 0 {
		return &ConfigError{Field: "extensions", Err: ErrNoExtensions}
	}
	for _, ext := range o.Extensions {
		if strings.TrimPrefix(ext, ".") == "" {
			return &ConfigError{Field: "extensions", Err: fmt.Errorf("%w: empty extension", ErrNoExtensions)}
		}
	}
	if o.TemplateSheet == "" {
		return &ConfigError{Field: "template_sheet", Err: ErrNoTemplateSheetName}
	}
	return nil
}

// normalizedExtensions strips leading dots.
func (o Options) normalizedExtensions() []string {
	exts := make([]string, 0, len(o.Extensions))
	for _, ext := range o.Extensions {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	return exts
}

// Request is the resolved, immutable input of one run.
type Request struct {
	// Root is the directory scanned for workbooks.
	Root string
	// Image is loaded once and shared read-only by every file.
	Image *Image
	Options
}

// NewRequest validates opts and binds them to root and img.
func NewRequest(root string, img *Image, opts Options) (Request, error) {
	if root == "" {
		return Request{}, &ConfigError{Field: "directory", Err: ErrMissingDirectory}
	}
	if img == nil {
		return Request{}, &ConfigError{Field: "image", Err: ErrMissingImage}
	}
	if err := opts.Validate(); err != nil {
		return Request{}, err
	}
	opts.Extensions = opts.normalizedExtensions()
	return Request{Root: root, Image: img, Options: opts}, nil
}
