package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlmunge/internal/filelock"
	"github.com/ukaji3/xlmunge/pkg/xlmunge/models"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writePNG(t *testing.T, dir string, w, h int) (string, []byte) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{G: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path, buf.Bytes()
}

// writeWorkbook saves a workbook with the given sheet names to path. When
// the first sheet is "template", a picture is placed on it at B2.
func writeWorkbook(t *testing.T, path string, sheets ...string) {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheets[0]))
	for _, name := range sheets[1:] {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	if sheets[0] == "template" {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 6, 6))))
		require.NoError(t, f.AddPictureFromBytes("template", "B2", &excelize.Picture{
			Extension: ".png",
			File:      buf.Bytes(),
			Format:    &excelize.GraphicOptions{},
		}))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func picturesAt(t *testing.T, path, cell string) [][]byte {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	pics, err := f.GetPictures("template", cell)
	require.NoError(t, err)
	var out [][]byte
	for _, p := range pics {
		out = append(out, p.File)
	}
	return out
}

func TestHelp(t *testing.T) {
	code, stdout, _ := run(t, "--help")
	assert.Equal(t, 0, code)
	for _, flag := range []string{"--dry-run", "--directory", "--image", "--suffix", "-n,", "-d,", "-i,", "-s,"} {
		assert.Contains(t, stdout, flag)
	}
}

func TestFatalConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	imgPath, _ := writePNG(t, dir, 2, 2)
	jpg := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(jpg, []byte("jpeg"), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no directory", []string{"-i", imgPath}, "directory is required"},
		{"no image", []string{"-d", dir}, "image is required"},
		{"jpg image", []string{"-d", dir, "-i", jpg}, "image is not a PNG"},
		{"missing image", []string{"-d", dir, "-i", filepath.Join(dir, "gone.png")}, "image cannot be read"},
		{"missing directory", []string{"-d", filepath.Join(dir, "gone"), "-i", imgPath}, "invalid directory"},
		{"empty suffix", []string{"-d", dir, "-i", imgPath, "-s", ""}, "suffix must not be empty"},
		{"bad color", []string{"-d", dir, "-i", imgPath, "--color", "rainbow"}, "invalid color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.want)
			assert.NotContains(t, stderr, "Usage:")
			assert.NotContains(t, stdout, "Usage:")
		})
	}
}

func TestNotPNG_NoScan(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "a.xls"), "template")
	jpg := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(jpg, []byte("jpeg"), 0o644))

	code, stdout, _ := run(t, "-d", dir, "-i", jpg)
	assert.Equal(t, 1, code)
	assert.NotContains(t, stdout, "scanning")
	assert.NoFileExists(t, filepath.Join(dir, "a.updated.xls"))
}

func TestParseErrors(t *testing.T) {
	tests := [][]string{
		{"--no-such-flag"},
		{"stray-positional"},
		{"-d"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			code, stdout, stderr := run(t, args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stdout+stderr, "Usage:")
		})
	}
}

func TestRun_Scenario(t *testing.T) {
	dir := t.TempDir()
	imgPath, imgData := writePNG(t, t.TempDir(), 30, 12)
	writeWorkbook(t, filepath.Join(dir, "a.xls"), "template")
	writeWorkbook(t, filepath.Join(dir, "b.xls"), "data")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.updated.xls"), []byte("stale"), 0o644))
	reportPath := filepath.Join(t.TempDir(), "report.json")

	code, stdout, stderr := run(t, "-d", dir, "-i", imgPath, "--color", "never", "--report", reportPath)
	require.Equal(t, 0, code, "stdout: %s\nstderr: %s", stdout, stderr)

	assert.Contains(t, stdout, "a.xls -> a.updated.xls")
	assert.Contains(t, stdout, `Skip (no "template" sheet): b.xls`)
	assert.Contains(t, stdout, "Skip (already munged): a.updated.xls")
	assert.Contains(t, stdout, "3 file(s), 1 processed, 2 skipped")

	out := filepath.Join(dir, "a.updated.xls")
	assert.Equal(t, [][]byte{imgData}, picturesAt(t, out, "A1"))
	assert.Empty(t, picturesAt(t, out, "B2"))
	assert.NoFileExists(t, filepath.Join(dir, "b.updated.xls"))

	// The new picture spans exactly the PNG's pixel size.
	code, stdout, stderr = run(t, "inspect", out)
	require.Equal(t, 0, code, stderr)
	var wb models.WorkbookData
	require.NoError(t, json.Unmarshal([]byte(stdout), &wb))
	require.Len(t, wb.Sheets, 1)
	require.Len(t, wb.Sheets[0].Shapes, 1)
	pic := wb.Sheets[0].Shapes[0]
	assert.Equal(t, "picture", pic.Kind)
	assert.Equal(t, 0, pic.Col)
	assert.Equal(t, 0, pic.Row)
	require.NotNil(t, pic.W)
	require.NotNil(t, pic.H)
	assert.Equal(t, 30, *pic.W)
	assert.Equal(t, 12, *pic.H)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report models.RunReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Counts.Total)
	assert.Equal(t, 1, report.Counts.Processed)
	assert.Equal(t, 1, report.Counts.SkippedAlreadyMunged)
	assert.Equal(t, 1, report.Counts.SkippedNoTemplateSheet)

	// A second run never treats the output as a fresh input.
	code, stdout, _ = run(t, "-d", dir, "-i", imgPath, "--color", "never")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Skip (already munged): a.updated.xls")
	assert.Contains(t, stdout, "3 file(s), 1 processed, 2 skipped")
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	imgPath, _ := writePNG(t, t.TempDir(), 4, 4)
	writeWorkbook(t, filepath.Join(dir, "nested", "a.xls"), "template")

	code, stdout, _ := run(t, "-n", "-d", dir, "-i", imgPath, "--color", "never")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "[DRY] a.xls would be written to a.updated.xls")
	assert.NoFileExists(t, filepath.Join(dir, "nested", "a.updated.xls"))
}

func TestRun_LegacyFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	imgPath, _ := writePNG(t, t.TempDir(), 4, 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "csv.xls"), []byte("a,b\n1,2\n"), 0o644))
	writeWorkbook(t, filepath.Join(dir, "good.xls"), "template")

	code, stdout, stderr := run(t, "-d", dir, "-i", imgPath, "--color", "never")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "Skip (I/O error)")
	assert.Contains(t, stdout, "good.xls -> good.updated.xls")
	assert.NoFileExists(t, filepath.Join(dir, "csv.updated.xls"))
}

func TestRun_CustomSuffixAndSheet(t *testing.T) {
	dir := t.TempDir()
	imgPath, _ := writePNG(t, t.TempDir(), 4, 4)
	writeWorkbook(t, filepath.Join(dir, "q.xls"), "cover", "data")

	code, stdout, _ := run(t, "-d", dir, "-i", imgPath, "-s", "-v2", "--template-sheet", "cover", "--color", "never")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "q.xls -> q-v2.xls")
	assert.FileExists(t, filepath.Join(dir, "q-v2.xls"))
}

func TestRun_LockHeld(t *testing.T) {
	dir := t.TempDir()
	imgPath, _ := writePNG(t, t.TempDir(), 4, 4)
	writeWorkbook(t, filepath.Join(dir, "a.xls"), "template")

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	lock := filelock.NewFileLock(filelock.RunLockPath(abs))
	ok, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = lock.Unlock() })

	code, _, stderr := run(t, "-d", dir, "-i", imgPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "another run holds the lock")
	assert.NoFileExists(t, filepath.Join(dir, "a.updated.xls"))

	// Dry runs write nothing and do not need the lock.
	code, _, _ = run(t, "-n", "-d", dir, "-i", imgPath)
	assert.Equal(t, 0, code)
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	imgPath, _ := writePNG(t, t.TempDir(), 4, 4)
	writeWorkbook(t, filepath.Join(dir, "a.xls"), "template")

	cfgPath := filepath.Join(t.TempDir(), "xlmunge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"directory: "+dir+"\nimage: "+imgPath+"\nsuffix: .cfg\ncolor: never\n"), 0o644))

	// Flags win over the file.
	code, stdout, stderr := run(t, "--config", cfgPath, "-s", ".flag")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "a.xls -> a.flag.xls")
	assert.NoFileExists(t, filepath.Join(dir, "a.cfg.xls"))
}

func TestRun_LogFile(t *testing.T) {
	dir := t.TempDir()
	imgPath, _ := writePNG(t, t.TempDir(), 4, 4)
	writeWorkbook(t, filepath.Join(dir, "a.xls"), "template")
	logPath := filepath.Join(t.TempDir(), "run.log")

	code, _, _ := run(t, "-d", dir, "-i", imgPath, "--log-file", logPath, "--log-level", "debug")
	require.Equal(t, 0, code)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[SUCCESS]")
	assert.Contains(t, string(data), "[DEBUG]")
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.xls", "sub/b.xls", "a.updated.xls", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	code, stdout, _ := run(t, "list", "-d", dir)
	require.Equal(t, 0, code)
	lines := strings.Fields(stdout)
	assert.Len(t, lines, 3)
	assert.Contains(t, stdout, filepath.Join("sub", "b.xls"))
	assert.NotContains(t, stdout, "notes.txt")

	code, stdout, _ = run(t, "list", "-d", dir, "--fresh")
	require.Equal(t, 0, code)
	assert.Len(t, strings.Fields(stdout), 2)
	assert.NotContains(t, stdout, "a.updated.xls")

	code, stdout, _ = run(t, "list", "-d", dir, "--names")
	require.Equal(t, 0, code)
	names := strings.Fields(stdout)
	assert.ElementsMatch(t, []string{"a.xls", "a.updated.xls", "b.xls"}, names)
	assert.NotContains(t, stdout, dir)
}

func TestList_MissingDirectory(t *testing.T) {
	code, _, stderr := run(t, "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "directory is required")
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.xls")
	writeWorkbook(t, path, "template", "data")

	code, stdout, stderr := run(t, "inspect", path)
	require.Equal(t, 0, code, stderr)

	var wb models.WorkbookData
	require.NoError(t, json.Unmarshal([]byte(stdout), &wb))
	assert.Equal(t, "a.xls", wb.BookName)
	assert.Equal(t, "ooxml", wb.Format)
	require.Len(t, wb.Sheets, 2)
	assert.True(t, wb.Sheets[0].Template)
	require.Len(t, wb.Sheets[0].Shapes, 1)
	assert.Equal(t, "picture", wb.Sheets[0].Shapes[0].Kind)
	assert.Equal(t, 1, wb.Sheets[0].Shapes[0].Col)
	assert.Equal(t, 1, wb.Sheets[0].Shapes[0].Row)
	require.NotNil(t, wb.Sheets[0].Shapes[0].W)
	assert.Equal(t, 6, *wb.Sheets[0].Shapes[0].W)
	assert.Equal(t, 6, *wb.Sheets[0].Shapes[0].H)
}

func TestInspect_Errors(t *testing.T) {
	code, _, stderr := run(t, "inspect", filepath.Join(t.TempDir(), "missing.xls"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "inspection failed")

	code, _, _ = run(t, "inspect")
	assert.Equal(t, 1, code)
}
