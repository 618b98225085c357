package xlmunge

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// Image is the replacement picture. Data is never modified after loading.
type Image struct {
	Path string
	Data []byte
	// Width and Height are the PNG's intrinsic pixel dimensions.
	Width  int
	Height int
}

// LoadImage reads the replacement picture. The file name must end in .png
// and the content must carry a valid PNG header.
func LoadImage(path string) (*Image, error) {
	if path == "" {
		return nil, &ConfigError{Field: "image", Err: ErrMissingImage}
	}
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return nil, &ConfigError{Field: "image", Err: fmt.Errorf("%w: %s", ErrNotPNG, filepath.Base(path))}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "image", Err: fmt.Errorf("%w: %w", ErrImageUnreadable, err)}
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ConfigError{Field: "image", Err: fmt.Errorf("%w: %s: %v", ErrNotPNG, filepath.Base(path), err)}
	}
	return &Image{
		Path:   path,
		Data:   data,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
