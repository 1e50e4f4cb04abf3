package window

import (
	"github.com/deskforge/deskos/internal/events"
	"github.com/deskforge/deskos/internal/shared/types"
)

// Place applies a saved geometry and state to an open window. Session
// restore uses it to put relaunched windows back where they were; it
// still honors the platform minimum size.
func (m *Manager) Place(id string, g types.Geometry, state types.WindowState, restore *types.Geometry) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	g.Width = max(g.Width, m.cfg.MinWidth)
	g.Height = max(g.Height, m.cfg.MinHeight)
	win.Geometry = g
	if state != "" && state != types.WindowClosing {
		win.State = state
	}
	if restore != nil {
		snapshot := *restore
		win.Restore = &snapshot
	}
	applied := *win
	m.mu.Unlock()

	minimized := applied.State == types.WindowMinimized
	maximized := applied.State == types.WindowMaximized
	m.reg.Update(id, types.WindowPatch{Minimized: &minimized, Maximized: &maximized})

	m.bus.Publish(events.TopicWindowMove, events.Payload{
		"id": id, "x": applied.Geometry.X, "y": applied.Geometry.Y,
	})
	return true
}
