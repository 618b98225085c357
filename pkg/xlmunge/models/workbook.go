// Package models defines the JSON documents produced by xlmunge.
package models

// WorkbookData is the result of inspecting one workbook file.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Format is the detected container: ooxml, legacy, encrypted or unknown.
	Format string `json:"format"`
	// Sheets lists worksheets in tab order (OOXML only).
	Sheets []SheetData `json:"sheets,omitempty"`
	// Streams lists compound-file streams (legacy containers only).
	Streams []string `json:"streams,omitempty"`
	// Properties holds summary information properties (legacy containers only).
	Properties map[string]string `json:"properties,omitempty"`
}
