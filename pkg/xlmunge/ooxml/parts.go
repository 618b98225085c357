package ooxml

import (
	"encoding/xml"
	"path"
	"strings"
)

const defaultWorkbookPart = "xl/workbook.xml"

// partReader returns the raw bytes of a package part.
type partReader func(name string) ([]byte, bool)

// sheetPart locates one worksheet and its drawing inside the package.
type sheetPart struct {
	Name        string
	Path        string
	DrawingPath string
}

// sheetParts lists the worksheets in workbook order together with the
// drawing part each one references, if any. Missing or malformed
// relationship parts yield fewer entries rather than an error.
func sheetParts(read partReader) []sheetPart {
	workbook := workbookPartName(read)
	workbookXML, ok := read(workbook)
	if !ok {
		return nil
	}
	sheets := parseWorkbookSheets(workbookXML)
	if len(sheets) == 0 {
		return nil
	}

	wbRels, ok := read(relsPartName(workbook))
	if !ok {
		return nil
	}
	targets := parseRelationships(wbRels, workbook)

	var result []sheetPart
	for _, s := range sheets {
		rel, ok := targets[s.rID]
		if !ok || !strings.HasSuffix(rel.Type, "/worksheet") {
			continue
		}
		sp := sheetPart{Name: s.name, Path: rel.Target}
		if sheetRels, ok := read(relsPartName(sp.Path)); ok {
			sp.DrawingPath = findDrawingRelationship(sheetRels, sp.Path)
		}
		result = append(result, sp)
	}
	return result
}

// workbookPartName follows the package's officeDocument relationship.
func workbookPartName(read partReader) string {
	rootRels, ok := read("_rels/.rels")
	if !ok {
		return defaultWorkbookPart
	}
	for _, rel := range parseRelationships(rootRels, "") {
		if strings.HasSuffix(rel.Type, "/officeDocument") {
			return rel.Target
		}
	}
	return defaultWorkbookPart
}

// relsPartName returns the relationships part belonging to part.
func relsPartName(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// resolveTarget resolves a relationship target against the part that owns
// the relationship. Absolute targets are rooted at the package.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(source), target)
}

type workbookSheet struct {
	name string
	rID  string
}

func parseWorkbookSheets(data []byte) []workbookSheet {
	var result []workbookSheet
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			var s workbookSheet
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "name":
					s.name = attr.Value
				case "id":
					s.rID = attr.Value
				}
			}
			if s.name != "" && s.rID != "" {
				result = append(result, s)
			}
		}
	}

	return result
}

type relationship struct {
	Type   string
	Target string
}

// parseRelationships maps relationship ids to resolved targets. External
// targets are dropped.
func parseRelationships(data []byte, source string) map[string]relationship {
	result := make(map[string]relationship)
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, mode string
		var rel relationship
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Id":
				id = attr.Value
			case "Type":
				rel.Type = attr.Value
			case "Target":
				rel.Target = attr.Value
			case "TargetMode":
				mode = attr.Value
			}
		}
		if id == "" || rel.Target == "" || mode == "External" {
			continue
		}
		rel.Target = resolveTarget(source, rel.Target)
		result[id] = rel
	}

	return result
}

// findDrawingRelationship returns the DrawingML part referenced by a sheet's
// relationships. Legacy VML drawings (comments, form controls) are ignored.
func findDrawingRelationship(data []byte, sheetPath string) string {
	for _, rel := range parseRelationships(data, sheetPath) {
		if strings.HasSuffix(rel.Type, "/drawing") {
			return rel.Target
		}
	}
	return ""
}
