package models

// Shape represents one child of a sheet's drawing layer.
type Shape struct {
	// Index is the position in the drawing layer's child order (0-based).
	Index int `json:"index"`
	// ID is the object id stored in the workbook, if any.
	ID string `json:"id,omitempty"`
	// Name is the object's display name.
	Name string `json:"name,omitempty"`
	// Kind is one of shape, picture, connector, group, frame, unknown.
	Kind string `json:"kind"`
	// Type labels the preset geometry of shapes, e.g. "AutoShape-Rectangle".
	Type string `json:"type,omitempty"`
	// Col is the 0-based column of the anchor's top-left cell.
	Col int `json:"col"`
	// Row is the 0-based row of the anchor's top-left cell.
	Row int `json:"row"`
	// W is the object width in pixels (nil if unknown).
	W *int `json:"w,omitempty"`
	// H is the object height in pixels (nil if unknown).
	H *int `json:"h,omitempty"`
}
