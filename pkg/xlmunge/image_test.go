package xlmunge

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	data := createTestPNG(t, 12, 7)
	path := writeFile(t, dir, "logo.png", data)

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, data, img.Data)
	assert.Equal(t, 12, img.Width)
	assert.Equal(t, 7, img.Height)
	assert.Equal(t, path, img.Path)
}

func TestLoadImage_UppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "LOGO.PNG", createTestPNG(t, 2, 2))

	_, err := LoadImage(path)
	assert.NoError(t, err)
}

func TestLoadImage_Errors(t *testing.T) {
	dir := t.TempDir()
	jpg := writeFile(t, dir, "photo.jpg", createTestPNG(t, 2, 2))
	fake := writeFile(t, dir, "fake.png", []byte("not really a png"))
	pngInName := writeFile(t, dir, "chart.png.bak", createTestPNG(t, 2, 2))

	tests := []struct {
		name string
		path string
		want error
	}{
		{"empty path", "", ErrMissingImage},
		{"jpg name", jpg, ErrNotPNG},
		{"png only mid-name", pngInName, ErrNotPNG},
		{"missing file", filepath.Join(dir, "missing.png"), ErrImageUnreadable},
		{"bad signature", fake, ErrNotPNG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := LoadImage(tt.path)
			assert.Nil(t, img)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
