package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ukaji3/xlmunge/pkg/xlmunge/document"
)

// anchor is one top-level child of a spreadsheet drawing (xdr:wsDr).
type anchor struct {
	element    string // local name: twoCellAnchor, oneCellAnchor, ...
	start, end int64  // byte range of the element within the part
	shape      document.Shape
	from, to   cellPos
	hasTo      bool
	width      int // pixels from an explicit extent; zero when absent
	height     int
	geometry   string // preset geometry of the first shape, e.g. "rect"
}

// cellPos is an xdr:from or xdr:to marker. Offsets are in EMU.
type cellPos struct {
	col, row       int
	colOff, rowOff int64
}

// cellMetrics measures 0-based columns and rows in pixels.
type cellMetrics interface {
	colPixels(col int) int
	rowPixels(row int) int
}

var shapeKinds = map[string]document.ShapeKind{
	"sp":           document.KindShape,
	"pic":          document.KindPicture,
	"cxnSp":        document.KindConnector,
	"grpSp":        document.KindGroup,
	"graphicFrame": document.KindFrame,
}

func isAnchor(local string) bool {
	switch local {
	case "twoCellAnchor", "oneCellAnchor", "absoluteAnchor", "AlternateContent":
		return true
	}
	return false
}

// parseAnchors lists the drawing's top-level anchors in document order.
func parseAnchors(data []byte) ([]anchor, error) {
	var anchors []anchor
	decoder := xml.NewDecoder(bytes.NewReader(data))
	depth := 0

	for {
		offset := decoder.InputOffset()
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse drawing: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 || !isAnchor(t.Name.Local) {
				continue
			}
			a, err := parseAnchor(decoder)
			if err != nil {
				return nil, fmt.Errorf("parse drawing anchor %d: %w", len(anchors), err)
			}
			depth--
			a.element = t.Name.Local
			a.start = offset
			a.end = decoder.InputOffset()
			a.shape.Index = len(anchors)
			anchors = append(anchors, a)
		case xml.EndElement:
			depth--
		}
	}

	return anchors, nil
}

// parseAnchor consumes an anchor element up to and including its end tag.
// The first drawing object inside decides the kind; its cNvPr supplies the
// id and name. Group members are not reported separately.
func parseAnchor(decoder *xml.Decoder) (anchor, error) {
	a := anchor{shape: document.Shape{Kind: document.KindUnknown}}
	kindSet, named, sized := false, false, false
	var marker *cellPos
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return a, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "from":
				if depth == 2 {
					marker = &a.from
				}
			case "to":
				if depth == 2 {
					marker = &a.to
					a.hasTo = true
				}
			case "col", "row", "colOff", "rowOff":
				if marker == nil {
					continue
				}
				text, err := readElementText(decoder)
				if err != nil {
					return a, err
				}
				depth--
				n, _ := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
				switch t.Name.Local {
				case "col":
					marker.col = int(n)
				case "row":
					marker.row = int(n)
				case "colOff":
					marker.colOff = n
				case "rowOff":
					marker.rowOff = n
				}
			case "cNvPr":
				if named {
					continue
				}
				named = true
				a.shape.ID = attrValue(t, "id")
				a.shape.Name = attrValue(t, "name")
			case "prstGeom":
				if a.geometry == "" {
					a.geometry = attrValue(t, "prst")
				}
			case "ext":
				if sized {
					continue
				}
				// excelize writes a zero xfrm extent on two-cell anchors.
				cx, okX := int64Attr(t, "cx")
				cy, okY := int64Attr(t, "cy")
				if okX && okY && (cx > 0 || cy > 0) {
					a.width, a.height = EMUToPixels(cx), EMUToPixels(cy)
					sized = true
				}
			default:
				if kind, ok := shapeKinds[t.Name.Local]; ok && !kindSet {
					a.shape.Kind = kind
					kindSet = true
				}
			}
		case xml.EndElement:
			depth--
			if depth == 1 {
				marker = nil
			}
		}
	}

	a.shape.From = document.Anchor{Col: a.from.col, Row: a.from.row}
	return a, nil
}

// size returns the object's extent in pixels. An explicit extent wins;
// otherwise a two-cell anchor is measured across the cells it spans.
func (a anchor) size(m cellMetrics) (int, int) {
	if a.width > 0 || a.height > 0 || !a.hasTo || m == nil {
		return a.width, a.height
	}
	w := spanPixels(a.from.col, a.to.col, m.colPixels) + EMUToPixels(a.to.colOff) - EMUToPixels(a.from.colOff)
	h := spanPixels(a.from.row, a.to.row, m.rowPixels) + EMUToPixels(a.to.rowOff) - EMUToPixels(a.from.rowOff)
	return max(w, 0), max(h, 0)
}

func spanPixels(from, to int, pixels func(int) int) int {
	n := 0
	for i := from; i < to; i++ {
		n += pixels(i)
	}
	return n
}

// removeAnchor returns a copy of data without the bytes of a.
func removeAnchor(data []byte, a anchor) []byte {
	out := make([]byte, 0, len(data)-int(a.end-a.start))
	out = append(out, data[:a.start]...)
	return append(out, data[a.end:]...)
}

// nextObjectID is the cNvPr id excelize assigns to the next object it adds
// to a drawing holding these anchors.
func nextObjectID(anchors []anchor) int {
	n := 0
	for _, a := range anchors {
		if a.element == "oneCellAnchor" || a.element == "twoCellAnchor" {
			n++
		}
	}
	return n + 2
}

// idTag is the byte range of a start tag carrying an object id: a cNvPr
// definition or a connector's stCxn/endCxn reference.
type idTag struct {
	start, end int64
	id         string
}

var idAttr = regexp.MustCompile(`(\sid\s*=\s*["'])([^"']*)(["'])`)

// reserveID renumbers every object whose cNvPr id equals id to one past the
// largest id in the drawing, updating connector references to it. The
// result no longer uses id, so an object added next can take it.
func reserveID(data []byte, id int) ([]byte, error) {
	var tags []idTag
	highest := id
	taken := false
	want := strconv.Itoa(id)

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		offset := decoder.InputOffset()
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse drawing: %w", err)
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "cNvPr":
			v := attrValue(se, "id")
			if n, err := strconv.Atoi(v); err == nil && n > highest {
				highest = n
			}
			if v == want {
				taken = true
				tags = append(tags, idTag{start: offset, end: decoder.InputOffset(), id: v})
			}
		case "stCxn", "endCxn":
			if attrValue(se, "id") == want {
				tags = append(tags, idTag{start: offset, end: decoder.InputOffset(), id: want})
			}
		}
	}
	if !taken {
		return data, nil
	}

	replacement := strconv.Itoa(highest + 1)
	sort.Slice(tags, func(i, j int) bool { return tags[i].start > tags[j].start })
	out := append([]byte(nil), data...)
	for _, tag := range tags {
		rewritten := replaceIDAttr(out[tag.start:tag.end], tag.id, replacement)
		out = append(out[:tag.start], append(rewritten, out[tag.end:]...)...)
	}
	return out, nil
}

func replaceIDAttr(tag []byte, from, to string) []byte {
	loc := idAttr.FindSubmatchIndex(tag)
	if loc == nil || string(tag[loc[4]:loc[5]]) != from {
		return append([]byte(nil), tag...)
	}
	out := make([]byte, 0, len(tag)+len(to)-len(from))
	out = append(out, tag[:loc[4]]...)
	out = append(out, to...)
	return append(out, tag[loc[5]:]...)
}

func attrValue(se xml.StartElement, local string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

func int64Attr(se xml.StartElement, local string) (int64, bool) {
	v, err := strconv.ParseInt(attrValue(se, local), 10, 64)
	return v, err == nil
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}
