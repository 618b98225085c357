package ooxml

import (
	"math"

	"github.com/xuri/excelize/v2"
)

// excelize's fallbacks for sheets that set no column or row dimensions.
const (
	defaultColWidth        = 9.140625 // characters
	defaultColWidthPixels  = 64
	defaultRowHeight       = 15.0 // points
	defaultRowHeightPixels = 20
)

// sheetMetrics measures cells the way excelize does when it positions a
// picture, so anchors it wrote can be turned back into pixel sizes.
type sheetMetrics struct {
	file        *excelize.File
	sheet       string
	plainHeight float64 // what GetRowHeight reports for a row without ht
	plainPixels int     // that row's height in pixels
}

func newSheetMetrics(f *excelize.File, sheet string) *sheetMetrics {
	m := &sheetMetrics{
		file:        f,
		sheet:       sheet,
		plainHeight: defaultRowHeight,
		plainPixels: defaultRowHeightPixels,
	}
	props, err := f.GetSheetProps(sheet)
	if err != nil || props.DefaultRowHeight == nil {
		return m
	}
	if *props.DefaultRowHeight > 0 {
		m.plainPixels = rowHeightPixels(*props.DefaultRowHeight)
	}
	if props.CustomHeight != nil && *props.CustomHeight {
		m.plainHeight = *props.DefaultRowHeight
	}
	return m
}

func (m *sheetMetrics) colPixels(col int) int {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return defaultColWidthPixels
	}
	width, err := m.file.GetColWidth(m.sheet, name)
	if err != nil || width == defaultColWidth {
		return defaultColWidthPixels
	}
	return colWidthPixels(width)
}

func (m *sheetMetrics) rowPixels(row int) int {
	height, err := m.file.GetRowHeight(m.sheet, row+1)
	if err != nil || height == m.plainHeight {
		return m.plainPixels
	}
	return rowHeightPixels(height)
}

func colWidthPixels(width float64) int {
	if width == 0 {
		return 0
	}
	return int(width*8 + 0.5)
}

func rowHeightPixels(height float64) int {
	if height == 0 {
		return 0
	}
	return int(math.Ceil(4.0 / 3.4 * height))
}
