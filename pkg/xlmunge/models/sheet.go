package models

// SheetData describes one worksheet of an inspected workbook.
type SheetData struct {
	// Name is the sheet's tab name.
	Name string `json:"name"`
	// Template is true for the sheet the mutator rewrites.
	Template bool `json:"template,omitempty"`
	// DrawingPath is the drawing part backing the sheet, if it has one.
	DrawingPath string `json:"drawing_path,omitempty"`
	// Shapes contains the drawing layer's children in order.
	Shapes []Shape `json:"shapes,omitempty"`
}
