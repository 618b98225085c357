package xlmunge

import (
	"path/filepath"
	"strings"
)

// OutputPath derives the output file for input: in the same directory,
// NAME.ext becomes NAME<suffix>.ext. The name is split at the last
// occurrence of "."+ext, so "a.xls.backup.xls" becomes
// "a.xls.backup<suffix>.xls". A name without the extension gets suffix and
// extension appended.
//
//	OutputPath("/data/q1.xls", "xls", ".updated") == "/data/q1.updated.xls"
func OutputPath(input, ext, suffix string) string {
	dir, name := filepath.Split(input)
	dotExt := "." + strings.TrimPrefix(ext, ".")
	idx := strings.LastIndex(name, dotExt)
	if idx < 0 {
		return dir + name + suffix + dotExt
	}
	return dir + name[:idx] + suffix + name[idx:]
}

// IsMunged reports whether the file name of path already carries suffix,
// marking it as the output of an earlier run. Only the base name is
// checked; a suffix appearing in a parent directory name does not count.
func IsMunged(path, suffix string) bool {
	return suffix != "" && strings.Contains(filepath.Base(path), suffix)
}

// matchedExtension returns the configured extension that name ends with,
// preferring the longest match.
func matchedExtension(name string, exts []string) (string, bool) {
	best := ""
	for _, ext := range exts {
		ext = strings.TrimPrefix(ext, ".")
		if strings.HasSuffix(name, "."+ext) && len(ext) > len(best) {
			best = ext
		}
	}
	return best, best != ""
}
