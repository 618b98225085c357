// Package document defines the spreadsheet codec boundary used by the batch
// mutator. Implementations own the in-memory representation of one workbook
// between Open and Close.
package document

import (
	"errors"
	"fmt"
)

// ErrUnsupportedImageFormat is returned by EmbedImage for formats the codec cannot embed.
var ErrUnsupportedImageFormat = errors.New("unsupported image format")

// ErrShapeNotFound is returned by Drawing.Remove when the shape is no longer on the layer.
var ErrShapeNotFound = errors.New("shape not found on drawing layer")

// ImageFormat identifies the raster format of embedded picture data.
type ImageFormat string

const (
	// FormatPNG is the only format the mutator embeds.
	FormatPNG ImageFormat = "png"
)

// PictureID references a picture resource embedded in a document.
type PictureID int

// Anchor positions a floating object at a zero-based cell.
type Anchor struct {
	Col int
	Row int
}

// String returns the anchor as "(col,row)".
func (a Anchor) String() string {
	return fmt.Sprintf("(%d,%d)", a.Col, a.Row)
}

// ShapeKind classifies a drawing-layer child.
type ShapeKind string

const (
	KindShape     ShapeKind = "shape"
	KindPicture   ShapeKind = "picture"
	KindConnector ShapeKind = "connector"
	KindGroup     ShapeKind = "group"
	KindFrame     ShapeKind = "frame"
	KindUnknown   ShapeKind = "unknown"
)

// Shape describes one child of a drawing layer.
type Shape struct {
	// Index is the position in the layer's child enumeration order.
	Index int
	// ID is the codec's object id (cNvPr id for OOXML), empty if unknown.
	ID string
	// Name is the object's display name.
	Name string
	Kind ShapeKind
	// From is the top-left cell the object is anchored to.
	From Anchor
}

// Opener opens workbooks from disk.
type Opener interface {
	Open(path string) (Document, error)
}

// Document is one open workbook.
type Document interface {
	// Sheet returns the sheet with exactly the given name.
	Sheet(name string) (Sheet, bool)
	SheetNames() []string
	// EmbedImage stores picture data in the document and returns its id.
	EmbedImage(data []byte, format ImageFormat) (PictureID, error)
	// Write serialises the document to path, replacing any existing file.
	Write(path string) error
	Close() error
}

// Sheet is a worksheet inside a Document.
type Sheet interface {
	Name() string
	// Drawing returns the sheet's drawing layer, creating an empty one if needed.
	Drawing() (Drawing, error)
}

// Drawing is the floating-object layer of a sheet.
type Drawing interface {
	// Shapes lists the layer's children in enumeration order.
	Shapes() ([]Shape, error)
	Remove(shape Shape) error
	// Attach places an embedded picture at anchor.
	Attach(id PictureID, anchor Anchor) (Picture, error)
}

// Picture is a picture attached to a drawing layer.
type Picture interface {
	// ResizeToNative sets the picture's extent to the image's intrinsic pixel size.
	ResizeToNative() error
	// Size returns the picture's extent in pixels.
	Size() (width, height int)
}
