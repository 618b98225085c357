package xlmunge

import (
	"errors"
	"fmt"
)

// Fatal configuration errors. Detected before any workbook is touched.
var (
	ErrMissingDirectory    = errors.New("directory is required")
	ErrMissingImage        = errors.New("image is required")
	ErrNotPNG              = errors.New("image is not a PNG")
	ErrImageUnreadable     = errors.New("image cannot be read")
	ErrNotDirectory        = errors.New("not a directory")
	ErrEmptySuffix         = errors.New("output suffix must not be empty")
	ErrNoExtensions        = errors.New("at least one extension is required")
	ErrNoTemplateSheetName = errors.New("template sheet name must not be empty")
	ErrRunLocked           = errors.New("another run holds the lock for this directory")
)

// ConfigError is a fatal setup failure tied to one input.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Stage names the step of the per-file procedure that failed.
type Stage string

const (
	StageOpen    Stage = "open"
	StageDrawing Stage = "drawing"
	StageRemove  Stage = "remove"
	StageEmbed   Stage = "embed"
	StageAttach  Stage = "attach"
	StageWrite   Stage = "write"
)

// FileError represents a recoverable failure while processing one workbook.
type FileError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// newFileError creates a new FileError.
func newFileError(path string, stage Stage, err error) *FileError {
	return &FileError{
		Path:  path,
		Stage: stage,
		Err:   err,
	}
}
