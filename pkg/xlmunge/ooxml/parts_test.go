package ooxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		source, target, want string
	}{
		{"xl/worksheets/sheet1.xml", "../drawings/drawing1.xml", "xl/drawings/drawing1.xml"},
		{"xl/workbook.xml", "worksheets/sheet2.xml", "xl/worksheets/sheet2.xml"},
		{"xl/workbook.xml", "/xl/worksheets/sheet3.xml", "xl/worksheets/sheet3.xml"},
		{"", "xl/workbook.xml", "xl/workbook.xml"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveTarget(tt.source, tt.target), "%s + %s", tt.source, tt.target)
	}
}

func TestRelsPartName(t *testing.T) {
	assert.Equal(t, "xl/worksheets/_rels/sheet1.xml.rels", relsPartName("xl/worksheets/sheet1.xml"))
	assert.Equal(t, "xl/_rels/workbook.xml.rels", relsPartName("xl/workbook.xml"))
}

func mapReader(parts map[string]string) partReader {
	return func(name string) ([]byte, bool) {
		s, ok := parts[name]
		return []byte(s), ok
	}
}

const relNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

func TestSheetParts(t *testing.T) {
	parts := map[string]string{
		"_rels/.rels": `<Relationships><Relationship Id="rId1" Type="` + relNS + `/officeDocument" Target="xl/workbook.xml"/></Relationships>`,
		"xl/workbook.xml": `<workbook xmlns:r="` + relNS + `"><sheets>
			<sheet name="data" sheetId="1" r:id="rId1"/>
			<sheet name="template" sheetId="2" r:id="rId2"/>
			<sheet name="chart" sheetId="3" r:id="rId3"/>
		</sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships>
			<Relationship Id="rId1" Type="` + relNS + `/worksheet" Target="worksheets/sheet1.xml"/>
			<Relationship Id="rId2" Type="` + relNS + `/worksheet" Target="/xl/worksheets/sheet2.xml"/>
			<Relationship Id="rId3" Type="` + relNS + `/chartsheet" Target="chartsheets/sheet1.xml"/>
		</Relationships>`,
		"xl/worksheets/_rels/sheet2.xml.rels": `<Relationships>
			<Relationship Id="rId1" Type="` + relNS + `/vmlDrawing" Target="../drawings/vmlDrawing1.vml"/>
			<Relationship Id="rId2" Type="` + relNS + `/drawing" Target="../drawings/drawing4.xml"/>
		</Relationships>`,
	}

	got := sheetParts(mapReader(parts))
	assert.Equal(t, []sheetPart{
		{Name: "data", Path: "xl/worksheets/sheet1.xml"},
		{Name: "template", Path: "xl/worksheets/sheet2.xml", DrawingPath: "xl/drawings/drawing4.xml"},
	}, got)
}

func TestSheetParts_MissingWorkbook(t *testing.T) {
	assert.Empty(t, sheetParts(mapReader(nil)))
}

func TestParseRelationships_SkipsExternal(t *testing.T) {
	data := `<Relationships>
		<Relationship Id="rId1" Type="` + relNS + `/hyperlink" Target="https://example.com" TargetMode="External"/>
		<Relationship Id="rId2" Type="` + relNS + `/drawing" Target="../drawings/drawing1.xml"/>
	</Relationships>`
	rels := parseRelationships([]byte(data), "xl/worksheets/sheet1.xml")
	assert.Len(t, rels, 1)
	assert.Equal(t, "xl/drawings/drawing1.xml", rels["rId2"].Target)
}
