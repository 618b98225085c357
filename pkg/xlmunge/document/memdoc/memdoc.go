// Package memdoc is an in-memory document codec. Workbooks are registered on an
// Opener under a path; Write renders a plain-text description of the workbook to
// disk so callers can observe what would have been saved.
package memdoc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png" // register PNG for DecodeConfig
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/ukaji3/xlmunge/pkg/xlmunge/document"
)

// Opener serves registered workbooks.
type Opener struct {
	mu      sync.Mutex
	books   map[string]*Workbook
	openErr map[string]error
	opened  []string
}

// NewOpener returns an empty Opener.
func NewOpener() *Opener {
	return &Opener{
		books:   make(map[string]*Workbook),
		openErr: make(map[string]error),
	}
}

// Add registers wb under path.
func (o *Opener) Add(path string, wb *Workbook) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.books[path] = wb
}

// FailOpen makes Open(path) return err.
func (o *Opener) FailOpen(path string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.openErr[path] = err
}

// Opened returns the paths passed to Open, in call order.
func (o *Opener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// Open implements document.Opener.
func (o *Opener) Open(path string) (document.Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, path)
	if err, ok := o.openErr[path]; ok {
		return nil, err
	}
	wb, ok := o.books[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	wb.closed = false
	return wb, nil
}

// Workbook is an in-memory document.Document.
type Workbook struct {
	sheets []*Sheet
	images map[document.PictureID]embedded
	nextID document.PictureID

	// WriteErr, when set, is returned by Write.
	WriteErr error

	written []string
	closed  bool
}

type embedded struct {
	data          []byte
	width, height int
}

// NewWorkbook builds a workbook from sheets in tab order.
func NewWorkbook(sheets ...*Sheet) *Workbook {
	w := &Workbook{
		sheets: sheets,
		images: make(map[document.PictureID]embedded),
		nextID: 1,
	}
	for _, s := range sheets {
		s.drawing.book = w
	}
	return w
}

// Sheet implements document.Document.
func (w *Workbook) Sheet(name string) (document.Sheet, bool) {
	for _, s := range w.sheets {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// SheetNames implements document.Document.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.name
	}
	return names
}

// EmbedImage implements document.Document.
func (w *Workbook) EmbedImage(data []byte, format document.ImageFormat) (document.PictureID, error) {
	if format != document.FormatPNG {
		return 0, fmt.Errorf("%w: %s", document.ErrUnsupportedImageFormat, format)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode picture: %w", err)
	}
	id := w.nextID
	w.nextID++
	w.images[id] = embedded{data: data, width: cfg.Width, height: cfg.Height}
	return id, nil
}

// Write implements document.Document.
func (w *Workbook) Write(path string) error {
	if w.WriteErr != nil {
		return w.WriteErr
	}
	if err := os.WriteFile(path, []byte(w.Render()), 0o644); err != nil {
		return err
	}
	w.written = append(w.written, path)
	return nil
}

// Close implements document.Document.
func (w *Workbook) Close() error {
	w.closed = true
	return nil
}

// Closed reports whether Close was called since the last Open.
func (w *Workbook) Closed() bool { return w.closed }

// Written returns the paths Write succeeded on.
func (w *Workbook) Written() []string { return append([]string(nil), w.written...) }

// EmbeddedCount returns how many pictures were embedded.
func (w *Workbook) EmbeddedCount() int { return len(w.images) }

// Render describes the workbook, one line per sheet and drawing child.
func (w *Workbook) Render() string {
	var b strings.Builder
	for _, s := range w.sheets {
		fmt.Fprintf(&b, "sheet %s\n", s.name)
		for _, sh := range s.drawing.shapes {
			fmt.Fprintf(&b, "  %s %s %q at %s\n", sh.Kind, sh.ID, sh.Name, sh.From)
		}
		for _, p := range s.drawing.pictures {
			fmt.Fprintf(&b, "  picture #%d at %s %dx%d\n", p.id, p.anchor, p.width, p.height)
		}
	}
	return b.String()
}

// Sheet is an in-memory worksheet with a drawing layer.
type Sheet struct {
	name    string
	drawing *Drawing
}

// NewSheet builds a sheet whose drawing layer holds shapes in order.
func NewSheet(name string, shapes ...document.Shape) *Sheet {
	d := &Drawing{}
	for i, sh := range shapes {
		sh.Index = i
		if sh.Kind == "" {
			sh.Kind = document.KindShape
		}
		d.shapes = append(d.shapes, sh)
	}
	return &Sheet{name: name, drawing: d}
}

// Name implements document.Sheet.
func (s *Sheet) Name() string { return s.name }

// Drawing implements document.Sheet.
func (s *Sheet) Drawing() (document.Drawing, error) { return s.drawing, nil }

// Layer exposes the concrete drawing for assertions.
func (s *Sheet) Layer() *Drawing { return s.drawing }

// Drawing is an in-memory drawing layer.
type Drawing struct {
	book     *Workbook
	shapes   []document.Shape
	pictures []*Picture
}

// Shapes implements document.Drawing.
func (d *Drawing) Shapes() ([]document.Shape, error) {
	return append([]document.Shape(nil), d.shapes...), nil
}

// Remove implements document.Drawing.
func (d *Drawing) Remove(shape document.Shape) error {
	i := shape.Index
	if i < 0 || i >= len(d.shapes) || d.shapes[i].ID != shape.ID {
		return document.ErrShapeNotFound
	}
	d.shapes = append(d.shapes[:i], d.shapes[i+1:]...)
	for j := i; j < len(d.shapes); j++ {
		d.shapes[j].Index = j
	}
	return nil
}

// Attach implements document.Drawing.
func (d *Drawing) Attach(id document.PictureID, anchor document.Anchor) (document.Picture, error) {
	if d.book == nil {
		return nil, fmt.Errorf("picture %d: sheet not in a workbook", id)
	}
	img, ok := d.book.images[id]
	if !ok {
		return nil, fmt.Errorf("picture %d: not embedded", id)
	}
	p := &Picture{id: id, anchor: anchor, img: img}
	d.pictures = append(d.pictures, p)
	return p, nil
}

// Pictures returns the pictures attached to the layer.
func (d *Drawing) Pictures() []*Picture { return append([]*Picture(nil), d.pictures...) }

// Picture is an attached picture.
type Picture struct {
	id            document.PictureID
	anchor        document.Anchor
	img           embedded
	width, height int
	native        bool
}

// ResizeToNative implements document.Picture.
func (p *Picture) ResizeToNative() error {
	p.width, p.height = p.img.width, p.img.height
	p.native = true
	return nil
}

// Size implements document.Picture.
func (p *Picture) Size() (int, int) { return p.width, p.height }

// Anchor returns where the picture was attached.
func (p *Picture) Anchor() document.Anchor { return p.anchor }

// Native reports whether ResizeToNative was applied.
func (p *Picture) Native() bool { return p.native }

// Data returns the embedded bytes backing the picture.
func (p *Picture) Data() []byte { return p.img.data }
