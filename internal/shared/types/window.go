package types

import "time"

// WindowState represents window lifecycle states
type WindowState string

const (
	WindowOpening      WindowState = "opening"
	WindowNormal       WindowState = "normal"
	WindowMinimized    WindowState = "minimized"
	WindowMaximized    WindowState = "maximized"
	WindowSnappedLeft  WindowState = "snapped-left"
	WindowSnappedRight WindowState = "snapped-right"
	WindowClosing      WindowState = "closing"
)

// SizeAuto is the width/height sentinel meaning "intrinsic size".
const SizeAuto = -1

// Geometry is a window rectangle in host-surface pixels.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SnapTarget identifies where a drag session resolved.
type SnapTarget string

const (
	SnapMaximize SnapTarget = "maximize"
	SnapLeft     SnapTarget = "left"
	SnapRight    SnapTarget = "right"
	SnapDesktop  SnapTarget = "desktop"
)

// ResizeDir identifies which edge or corner drives a resize session.
type ResizeDir string

const (
	ResizeN  ResizeDir = "n"
	ResizeS  ResizeDir = "s"
	ResizeE  ResizeDir = "e"
	ResizeW  ResizeDir = "w"
	ResizeNE ResizeDir = "ne"
	ResizeNW ResizeDir = "nw"
	ResizeSE ResizeDir = "se"
	ResizeSW ResizeDir = "sw"
)

// HasNorth reports whether the direction includes the north edge.
func (d ResizeDir) HasNorth() bool { return d == ResizeN || d == ResizeNE || d == ResizeNW }

// HasSouth reports whether the direction includes the south edge.
func (d ResizeDir) HasSouth() bool { return d == ResizeS || d == ResizeSE || d == ResizeSW }

// HasEast reports whether the direction includes the east edge.
func (d ResizeDir) HasEast() bool { return d == ResizeE || d == ResizeNE || d == ResizeSE }

// HasWest reports whether the direction includes the west edge.
func (d ResizeDir) HasWest() bool { return d == ResizeW || d == ResizeNW || d == ResizeSW }

// Valid reports whether d is one of the eight resize directions.
func (d ResizeDir) Valid() bool {
	return d.HasNorth() || d.HasSouth() || d.HasEast() || d.HasWest()
}

// Window represents a visible rectangle with chrome, owned exclusively
// by the window manager. Other components hold only the ID.
type Window struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Icon      string      `json:"icon,omitempty"`
	Geometry  Geometry    `json:"geometry"`
	State     WindowState `json:"state"`
	ZOrder    int64       `json:"z_order"`
	Resizable bool        `json:"resizable"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`

	// Restore is the geometry saved immediately before a maximize or
	// snap transition, used to restore on toggle-back. Nil before the
	// first such transition.
	Restore *Geometry `json:"restore,omitempty"`

	// PreMinimize is the state to return to on restore. Minimizing a
	// maximized or snapped window does not destroy that state.
	PreMinimize WindowState `json:"pre_minimize,omitempty"`
}

// WindowRecord is the registry's view of a window, consumed by the
// taskbar and other enumeration surfaces.
type WindowRecord struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Icon      string     `json:"icon,omitempty"`
	Minimized bool       `json:"minimized"`
	Maximized bool       `json:"maximized"`
	Focused   bool       `json:"focused"`
	Snapped   SnapTarget `json:"snapped,omitempty"`
}

// WindowPatch is a partial update applied to a registry record.
// Nil fields are left untouched.
type WindowPatch struct {
	Title     *string     `json:"title,omitempty"`
	Minimized *bool       `json:"minimized,omitempty"`
	Maximized *bool       `json:"maximized,omitempty"`
	Snapped   *SnapTarget `json:"snapped,omitempty"`
}
