// Package ooxml implements the document codec on top of excelize.
//
// excelize owns opening, picture insertion and serialisation. The drawing
// layer is read straight from the package parts so that every anchor kind
// (shapes, connectors, groups, charts) can be enumerated and the first one
// removed, which excelize itself cannot do. Legacy OLE2 workbooks are
// recognised and rejected with a typed error.
package ooxml

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlmunge/internal/filelock"
	"github.com/ukaji3/xlmunge/pkg/xlmunge/document"
)

// ErrDrawingCommitted is returned when raw drawing edits are attempted after
// excelize has taken ownership of the drawing part.
var ErrDrawingCommitted = errors.New("drawing already holds an inserted picture")

var (
	_ document.Opener   = (*Opener)(nil)
	_ document.Document = (*Workbook)(nil)
	_ document.Sheet    = (*Sheet)(nil)
	_ document.Drawing  = (*Drawing)(nil)
	_ document.Picture  = (*Picture)(nil)
)

// Opener opens workbooks from disk.
type Opener struct {
	options excelize.Options
}

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open reads the file at path. The container is chosen by content, not by
// file name, so an OOXML package named .xls opens normally.
func (o *Opener) Open(path string) (document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w, err := o.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// OpenBytes is Open for in-memory content.
func (o *Opener) OpenBytes(data []byte) (*Workbook, error) {
	if format, info := DetectFormat(data); format != FormatOOXML {
		return nil, formatError(format, info)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data), o.options)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return newWorkbook(f), nil
}

// Workbook is an open OOXML package.
type Workbook struct {
	file     *excelize.File
	parts    map[string]sheetPart
	drawings map[string]*Drawing
	images   map[document.PictureID]embeddedImage
	pending  []*Picture
}

type embeddedImage struct {
	data          []byte
	width, height int
}

func newWorkbook(f *excelize.File) *Workbook {
	w := &Workbook{
		file:     f,
		parts:    make(map[string]sheetPart),
		drawings: make(map[string]*Drawing),
		images:   make(map[document.PictureID]embeddedImage),
	}
	for _, sp := range sheetParts(w.readPart) {
		w.parts[sp.Name] = sp
	}
	return w
}

// File exposes the underlying excelize handle.
func (w *Workbook) File() *excelize.File {
	return w.file
}

func (w *Workbook) readPart(name string) ([]byte, bool) {
	v, ok := w.file.Pkg.Load(name)
	if !ok {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

func (w *Workbook) storePart(name string, data []byte) {
	w.file.Pkg.Store(name, data)
}

// SheetNames lists the worksheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Sheet looks up a worksheet by exact, case-sensitive name.
func (w *Workbook) Sheet(name string) (document.Sheet, bool) {
	for _, n := range w.file.GetSheetList() {
		if n == name {
			return &Sheet{book: w, name: n}, true
		}
	}
	return nil, false
}

// EmbedImage registers a PNG for later attachment. Nothing is written into
// the package until a picture using it is committed.
func (w *Workbook) EmbedImage(data []byte, format document.ImageFormat) (document.PictureID, error) {
	if format != document.FormatPNG {
		return 0, fmt.Errorf("%w: %s", document.ErrUnsupportedImageFormat, format)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", document.ErrUnsupportedImageFormat, err)
	}
	id := document.PictureID(len(w.images) + 1)
	w.images[id] = embeddedImage{data: data, width: cfg.Width, height: cfg.Height}
	return id, nil
}

// Write commits pending pictures and saves the package to path atomically.
func (w *Workbook) Write(path string) error {
	for _, p := range w.pending {
		if err := p.commit(); err != nil {
			return err
		}
	}
	return filelock.AtomicWriteFunc(path, func(out io.Writer) error {
		_, err := w.file.WriteTo(out)
		return err
	})
}

// Close releases the excelize handle.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheet is one worksheet of a Workbook.
type Sheet struct {
	book *Workbook
	name string
}

// Name returns the worksheet name.
func (s *Sheet) Name() string {
	return s.name
}

// Drawing returns the sheet's drawing layer. A sheet without a drawing part
// gets an empty layer; attaching a picture creates the part.
func (s *Sheet) Drawing() (document.Drawing, error) {
	return s.book.drawing(s.name), nil
}

func (w *Workbook) drawing(sheet string) *Drawing {
	if d, ok := w.drawings[sheet]; ok {
		return d
	}
	d := &Drawing{book: w, sheet: sheet, path: w.parts[sheet].DrawingPath}
	w.drawings[sheet] = d
	return d
}

// Drawing is the drawing layer of one worksheet.
type Drawing struct {
	book      *Workbook
	sheet     string
	path      string // package part; empty when the sheet has none
	committed bool
}

// Path returns the drawing part name, or "" for a sheet without drawings.
func (d *Drawing) Path() string {
	return d.path
}

func (d *Drawing) anchors() ([]anchor, []byte, error) {
	if d.committed {
		return nil, nil, ErrDrawingCommitted
	}
	if d.path == "" {
		return nil, nil, nil
	}
	data, ok := d.book.readPart(d.path)
	if !ok {
		return nil, nil, fmt.Errorf("drawing part %s is missing", d.path)
	}
	anchors, err := parseAnchors(data)
	if err != nil {
		return nil, nil, err
	}
	return anchors, data, nil
}

// Shapes lists the top-level drawing objects in document order.
func (d *Drawing) Shapes() ([]document.Shape, error) {
	anchors, _, err := d.anchors()
	if err != nil {
		return nil, err
	}
	shapes := make([]document.Shape, len(anchors))
	for i, a := range anchors {
		shapes[i] = a.shape
	}
	return shapes, nil
}

// Remove deletes shape from the drawing part. The shape must still be at
// the index it was listed with.
func (d *Drawing) Remove(shape document.Shape) error {
	anchors, data, err := d.anchors()
	if err != nil {
		return err
	}
	i := shape.Index
	if i < 0 || i >= len(anchors) || anchors[i].shape.ID != shape.ID || anchors[i].shape.Name != shape.Name {
		return fmt.Errorf("%w: %s %q at index %d", document.ErrShapeNotFound, shape.Kind, shape.Name, i)
	}
	d.book.storePart(d.path, removeAnchor(data, anchors[i]))
	return nil
}

// freeNextID renumbers the object, if any, that holds the id excelize is
// about to give a new picture. Removing an anchor shrinks the anchor count
// excelize derives that id from, so a survivor can already hold it.
func (d *Drawing) freeNextID() error {
	if d.committed {
		return nil
	}
	anchors, data, err := d.anchors()
	if err != nil || anchors == nil {
		return err
	}
	out, err := reserveID(data, nextObjectID(anchors))
	if err != nil {
		return err
	}
	d.book.storePart(d.path, out)
	return nil
}

// Attach places an embedded image with its top-left corner at the anchor
// cell. The picture is inserted on ResizeToNative or on Write.
func (d *Drawing) Attach(id document.PictureID, at document.Anchor) (document.Picture, error) {
	img, ok := d.book.images[id]
	if !ok {
		return nil, fmt.Errorf("picture %d was not embedded", id)
	}
	cell, err := excelize.CoordinatesToCellName(at.Col+1, at.Row+1)
	if err != nil {
		return nil, fmt.Errorf("anchor %s: %w", at, err)
	}
	p := &Picture{drawing: d, cell: cell, image: img}
	d.book.pending = append(d.book.pending, p)
	return p, nil
}

// Picture is an attached image.
type Picture struct {
	drawing   *Drawing
	cell      string
	image     embeddedImage
	committed bool
}

// ResizeToNative inserts the picture at 100% scale, so it spans exactly its
// pixel dimensions.
func (p *Picture) ResizeToNative() error {
	return p.commit()
}

// Size returns the picture's pixel dimensions.
func (p *Picture) Size() (int, int) {
	return p.image.width, p.image.height
}

func (p *Picture) commit() error {
	if p.committed {
		return nil
	}
	if err := p.drawing.freeNextID(); err != nil {
		return fmt.Errorf("insert picture at %s: %w", p.cell, err)
	}
	err := p.drawing.book.file.AddPictureFromBytes(p.drawing.sheet, p.cell, &excelize.Picture{
		Extension: ".png",
		File:      p.image.data,
		Format: &excelize.GraphicOptions{
			ScaleX:          1,
			ScaleY:          1,
			LockAspectRatio: true,
		},
	})
	if err != nil {
		return fmt.Errorf("insert picture at %s: %w", p.cell, err)
	}
	p.committed = true
	p.drawing.committed = true
	return nil
}
