package xlmunge

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input  string
		ext    string
		suffix string
		want   string
	}{
		{"/data/a.xls", "xls", ".updated", "/data/a.updated.xls"},
		{"/data/a.xls", ".xls", "-new", "/data/a-new.xls"},
		{"/data/report.xls.backup.xls", "xls", ".updated", "/data/report.xls.backup.updated.xls"},
		{"/data/my.xlsheet.xls", "xls", ".updated", "/data/my.xlsheet.updated.xls"},
		{"/data/dir.xls/inner.xls", "xls", ".v2", "/data/dir.xls/inner.v2.xls"},
		{"relative/b.xlsx", "xlsx", ".updated", "relative/b.updated.xlsx"},
		{"noext", "xls", ".updated", "noext.updated.xls"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := OutputPath(filepath.FromSlash(tt.input), tt.ext, tt.suffix)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestOutputPath_Deterministic(t *testing.T) {
	in := filepath.FromSlash("/x/y/z.xls")
	assert.Equal(t, OutputPath(in, "xls", ".updated"), OutputPath(in, "xls", ".updated"))
}

func TestOutputPath_OutputIsMunged(t *testing.T) {
	for _, in := range []string{"/a/b.xls", "/a/b.c.xls", "/a/x.xls.xls"} {
		out := OutputPath(filepath.FromSlash(in), "xls", ".updated")
		assert.True(t, IsMunged(out, ".updated"), out)
		assert.False(t, IsMunged(filepath.FromSlash(in), ".updated"), in)
	}
}

func TestIsMunged(t *testing.T) {
	assert.True(t, IsMunged("/data/a.updated.xls", ".updated"))
	assert.True(t, IsMunged("a.updated.xls.updated.xls", ".updated"))
	assert.False(t, IsMunged(filepath.FromSlash("/data.updated/a.xls"), ".updated"))
	assert.False(t, IsMunged("/data/a.xls", ""))
}

func TestMatchedExtension(t *testing.T) {
	ext, ok := matchedExtension("a.xls", []string{"xls", "xlsx"})
	assert.True(t, ok)
	assert.Equal(t, "xls", ext)

	ext, ok = matchedExtension("a.tar.xls", []string{"xls", "tar.xls"})
	assert.True(t, ok)
	assert.Equal(t, "tar.xls", ext)

	_, ok = matchedExtension("a.csv", []string{"xls"})
	assert.False(t, ok)
}
