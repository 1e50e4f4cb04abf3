package window

import (
	"github.com/deskforge/deskos/internal/events"
	"github.com/deskforge/deskos/internal/shared/types"
)

// dragSession is the single system-wide drag in progress.
type dragSession struct {
	pointerTrack

	// pointer offset inside the window, fixed at drag start
	offsetX int
	offsetY int

	// geometry recorded at drag start, used as the pre-transform
	// snapshot when the drag resolves into a snap zone
	start types.Geometry

	// currently armed snap zone
	target types.SnapTarget
}

// StartDrag begins an exclusive drag session on a window. A maximized
// window is first un-maximized position-preserving: the new left edge
// keeps the pointer at the same relative horizontal position over the
// title bar, so the window does not jump under the cursor.
func (m *Manager) StartDrag(id string, pointerX, pointerY int) error {
	m.mu.Lock()
	if m.drag != nil {
		m.mu.Unlock()
		return types.ErrSessionConflict
	}
	win, ok := m.windows[id]
	if !ok || win.State == types.WindowMinimized {
		m.mu.Unlock()
		return types.ErrWindowNotFound
	}

	var unmaximized bool
	if win.State == types.WindowMaximized || win.State == types.WindowSnappedLeft || win.State == types.WindowSnappedRight {
		prev := types.Geometry{Width: m.cfg.DefaultWidth, Height: m.cfg.DefaultHeight}
		if win.Restore != nil {
			prev = *win.Restore
		}
		newLeft := pointerX - int(float64(prev.Width)*float64(pointerX)/float64(m.cfg.ViewportWidth))
		win.Geometry = types.Geometry{X: newLeft, Y: win.Geometry.Y, Width: prev.Width, Height: prev.Height}
		win.Restore = nil
		win.State = types.WindowNormal
		unmaximized = true
	}

	session := &dragSession{
		pointerTrack: newPointerTrack(id),
		offsetX:      pointerX - win.Geometry.X,
		offsetY:      pointerY - win.Geometry.Y,
		start:        win.Geometry,
		target:       types.SnapDesktop,
	}
	m.drag = session

	var blurred string
	for otherID, other := range m.windows {
		if other.Active && otherID != id {
			blurred = otherID
		}
		other.Active = false
	}
	win.Active = true
	m.zCounter++
	win.ZOrder = m.zCounter
	z := win.ZOrder
	m.mu.Unlock()

	if unmaximized {
		maximized := false
		none := types.SnapTarget("")
		m.reg.Update(id, types.WindowPatch{Maximized: &maximized, Snapped: &none})
	}
	m.reg.SetFocused(id)
	m.metrics.RecordWindowOp("drag")

	if blurred != "" {
		m.bus.Publish(events.TopicWindowBlur, events.Payload{"id": blurred})
	}
	m.bus.Publish(events.TopicWindowFocus, events.Payload{"id": id, "z_order": z})
	m.bus.Publish(events.TopicDragStart, events.Payload{"id": id})
	return nil
}

// DragTo moves the dragged window with the pointer. The window is
// clamped so at least EdgeReach pixels stay reachable horizontally and
// the title bar never sinks below the bottom strip. The pointer
// position is tested against the snap zones and the armed target rides
// along on the move event so the host surface can preview it.
func (m *Manager) DragTo(pointerX, pointerY int) {
	m.mu.Lock()
	session := m.drag
	if session == nil {
		m.mu.Unlock()
		return
	}
	win, ok := m.windows[session.windowID]
	if !ok {
		m.drag = nil
		m.mu.Unlock()
		return
	}

	win.Geometry.X = clamp(pointerX-session.offsetX,
		m.cfg.EdgeReach-win.Geometry.Width,
		m.cfg.ViewportWidth-m.cfg.EdgeReach)
	win.Geometry.Y = clamp(pointerY-session.offsetY,
		0,
		m.cfg.ViewportHeight-m.cfg.BottomReach)

	switch {
	case pointerY <= m.cfg.SnapThreshold:
		session.target = types.SnapMaximize
	case pointerX <= m.cfg.SnapThreshold:
		session.target = types.SnapLeft
	case pointerX >= m.cfg.ViewportWidth-m.cfg.SnapThreshold:
		session.target = types.SnapRight
	default:
		session.target = types.SnapDesktop
	}

	id := session.windowID
	g := win.Geometry
	target := session.target
	m.mu.Unlock()

	m.bus.Publish(events.TopicWindowMove, events.Payload{
		"id": id, "x": g.X, "y": g.Y, "snap": string(target),
	})
}

// EndDrag releases the drag session. An armed snap zone applies its
// transform after snapshotting the drag-start geometry, so a later
// un-maximize returns the window where the drag began.
func (m *Manager) EndDrag() (types.SnapTarget, bool) {
	m.mu.Lock()
	session := m.drag
	m.drag = nil
	if session == nil {
		m.mu.Unlock()
		return "", false
	}
	win, ok := m.windows[session.windowID]
	if !ok {
		m.mu.Unlock()
		return "", false
	}

	target := session.target
	if target != types.SnapDesktop {
		snapshot := session.start
		win.Restore = &snapshot
		win.Geometry = snapBounds(m.cfg, target)
		switch target {
		case types.SnapMaximize:
			win.State = types.WindowMaximized
		case types.SnapLeft:
			win.State = types.WindowSnappedLeft
		case types.SnapRight:
			win.State = types.WindowSnappedRight
		}
	}
	id := session.windowID
	m.mu.Unlock()

	if target != types.SnapDesktop {
		maximized := target == types.SnapMaximize
		snapped := target
		m.reg.Update(id, types.WindowPatch{Maximized: &maximized, Snapped: &snapped})
	}

	m.bus.Publish(events.TopicDragEnd, events.Payload{"id": id, "target": string(target)})
	return target, true
}

// AbortDrag cancels the session without applying any snap transform.
// A second simultaneous touch contact lands here.
func (m *Manager) AbortDrag() {
	m.mu.Lock()
	session := m.drag
	m.drag = nil
	m.mu.Unlock()

	if session == nil {
		return
	}
	m.bus.Publish(events.TopicDragEnd, events.Payload{
		"id": session.windowID, "target": string(types.SnapDesktop), "aborted": true,
	})
}

// DragContact registers an extra simultaneous contact point on the
// active drag. More than one contact aborts the session.
func (m *Manager) DragContact() {
	m.mu.Lock()
	session := m.drag
	survives := session != nil && session.addContact()
	m.mu.Unlock()

	if session != nil && !survives {
		m.AbortDrag()
	}
}
