package ooxml

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlmunge/pkg/xlmunge/document"
	"github.com/ukaji3/xlmunge/pkg/xlmunge/models"
)

// Inspect describes the workbook at path without modifying it. Containers
// that cannot be rewritten are still described as far as their format
// allows; only unreadable files and corrupt packages return an error.
func Inspect(path, templateSheet string) (*models.WorkbookData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	format, info := DetectFormat(data)
	wb := &models.WorkbookData{
		BookName: filepath.Base(path),
		Format:   string(format),
	}
	if info != nil {
		wb.Streams = info.Streams
		wb.Properties = info.Properties
	}
	if format != FormatOOXML {
		return wb, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	book := newWorkbook(f)
	for _, name := range f.GetSheetList() {
		sheet := models.SheetData{
			Name:        name,
			Template:    name == templateSheet,
			DrawingPath: book.parts[name].DrawingPath,
		}
		anchors, _, err := book.drawing(name).anchors()
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		metrics := newSheetMetrics(f, name)
		for _, a := range anchors {
			sheet.Shapes = append(sheet.Shapes, shapeModel(a, metrics))
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}

	return wb, nil
}

func shapeModel(a anchor, metrics cellMetrics) models.Shape {
	s := models.Shape{
		Index: a.shape.Index,
		ID:    a.shape.ID,
		Name:  a.shape.Name,
		Kind:  string(a.shape.Kind),
		Col:   a.shape.From.Col,
		Row:   a.shape.From.Row,
	}
	switch a.shape.Kind {
	case document.KindShape, document.KindConnector:
		// Pictures carry a rect preset too; it says nothing about them.
		s.Type = geometryLabel(a.geometry)
	}
	if w, h := a.size(metrics); w > 0 || h > 0 {
		s.W = &w
		s.H = &h
	}
	return s
}
