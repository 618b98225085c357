// Package output provides JSON serialization for inspection results and run
// reports.
package output

import (
	"bytes"
	"encoding/json"

	"github.com/ukaji3/xlmunge/pkg/xlmunge/models"
)

// ToJSON serializes v to JSON. Pretty output is indented with two spaces.
// HTML characters are not escaped, so sheet and shape names stay readable.
func ToJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WorkbookToJSON serializes an inspected workbook.
func WorkbookToJSON(wb *models.WorkbookData, pretty bool) ([]byte, error) {
	return ToJSON(wb, pretty)
}

// ReportToJSON serializes a run report.
func ReportToJSON(r *models.RunReport, pretty bool) ([]byte, error) {
	return ToJSON(r, pretty)
}
