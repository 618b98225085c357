package xlmunge

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestPNG generates a w×h PNG image.
func createTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// writeFile creates dir/rel with data, creating parent directories.
func writeFile(t *testing.T, dir, rel string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// touch creates an empty file at dir/rel.
func touch(t *testing.T, dir, rel string) string {
	t.Helper()
	return writeFile(t, dir, rel, nil)
}

// collect drains a discoverer walk.
func collect(t *testing.T, d *Discoverer) []string {
	t.Helper()
	var files []string
	for path, err := range d.Files() {
		require.NoError(t, err)
		files = append(files, path)
	}
	return files
}
