package window

import (
	"fmt"

	"github.com/deskforge/deskos/internal/events"
	"github.com/deskforge/deskos/internal/shared/types"
)

// resizeSession is the single system-wide resize in progress.
type resizeSession struct {
	pointerTrack

	dir types.ResizeDir

	// pointer position and window geometry at session start
	pointerX int
	pointerY int
	start    types.Geometry
}

// applyResize computes the geometry after a pointer delta, each axis
// independently. East and south grow or shrink the size; west and
// north also move the origin. A west/north move that would drop below
// the platform minimum leaves both size and origin untouched on that
// axis.
func applyResize(start types.Geometry, dir types.ResizeDir, dx, dy, minWidth, minHeight int) types.Geometry {
	g := start
	if dir.HasEast() {
		g.Width = max(minWidth, start.Width+dx)
	}
	if dir.HasWest() && start.Width-dx >= minWidth {
		g.Width = start.Width - dx
		g.X = start.X + dx
	}
	if dir.HasSouth() {
		g.Height = max(minHeight, start.Height+dy)
	}
	if dir.HasNorth() && start.Height-dy >= minHeight {
		g.Height = start.Height - dy
		g.Y = start.Y + dy
	}
	return g
}

// StartResize begins an exclusive resize session from one of the eight
// handles.
func (m *Manager) StartResize(id string, dir types.ResizeDir, pointerX, pointerY int) error {
	if !dir.Valid() {
		return fmt.Errorf("invalid resize direction %q", dir)
	}

	m.mu.Lock()
	if m.resize != nil {
		m.mu.Unlock()
		return types.ErrSessionConflict
	}
	win, ok := m.windows[id]
	if !ok || win.State == types.WindowMinimized {
		m.mu.Unlock()
		return types.ErrWindowNotFound
	}
	if !win.Resizable {
		m.mu.Unlock()
		return types.ErrNotResizable
	}

	m.resize = &resizeSession{
		pointerTrack: newPointerTrack(id),
		dir:          dir,
		pointerX:     pointerX,
		pointerY:     pointerY,
		start:        win.Geometry,
	}
	m.mu.Unlock()

	m.metrics.RecordWindowOp("resize")
	return nil
}

// ResizeTo applies the pointer position to the active session and
// emits a live resize event.
func (m *Manager) ResizeTo(pointerX, pointerY int) {
	m.mu.Lock()
	session := m.resize
	if session == nil {
		m.mu.Unlock()
		return
	}
	win, ok := m.windows[session.windowID]
	if !ok {
		m.resize = nil
		m.mu.Unlock()
		return
	}

	dx := pointerX - session.pointerX
	dy := pointerY - session.pointerY
	win.Geometry = applyResize(session.start, session.dir, dx, dy, m.cfg.MinWidth, m.cfg.MinHeight)

	id := session.windowID
	g := win.Geometry
	m.mu.Unlock()

	m.bus.Publish(events.TopicWindowResize, events.Payload{
		"id": id, "x": g.X, "y": g.Y,
		"width": g.Width, "height": g.Height,
		"is_resizing": true,
	})
}

// EndResize releases the session and emits the settled geometry.
func (m *Manager) EndResize() (types.Geometry, bool) {
	m.mu.Lock()
	session := m.resize
	m.resize = nil
	if session == nil {
		m.mu.Unlock()
		return types.Geometry{}, false
	}
	win, ok := m.windows[session.windowID]
	if !ok {
		m.mu.Unlock()
		return types.Geometry{}, false
	}
	id := session.windowID
	g := win.Geometry
	m.mu.Unlock()

	m.bus.Publish(events.TopicWindowResize, events.Payload{
		"id": id, "x": g.X, "y": g.Y,
		"width": g.Width, "height": g.Height,
		"is_resizing": false,
	})
	return g, true
}

// ResizeContact registers an extra simultaneous contact point on the
// active resize. More than one contact aborts the session, settling at
// the current geometry.
func (m *Manager) ResizeContact() {
	m.mu.Lock()
	session := m.resize
	survives := session != nil && session.addContact()
	m.mu.Unlock()

	if session != nil && !survives {
		m.EndResize()
	}
}
