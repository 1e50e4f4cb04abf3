package window

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/deskforge/deskos/internal/domain/registry"
	"github.com/deskforge/deskos/internal/events"
	"github.com/deskforge/deskos/internal/infrastructure/config"
	"github.com/deskforge/deskos/internal/infrastructure/logging"
	"github.com/deskforge/deskos/internal/infrastructure/monitoring"
	"github.com/deskforge/deskos/internal/shared/types"
)

// Manager owns the physical window state machine for every open
// window, independent of which application owns it. All geometry and
// z-order mutations happen here; other components reference windows by
// id only.
//
// Mutations are serialized by mu and bus events are emitted after the
// lock is released, so a mutation is never split across a subscriber
// callback.
type Manager struct {
	mu  sync.Mutex
	cfg config.Desktop
	log *logging.Logger
	bus *events.Bus
	reg *registry.Registry

	metrics *monitoring.Metrics

	windows  map[string]*types.Window
	onClose  map[string]func()
	zCounter int64
	created  int

	drag   *dragSession
	resize *resizeSession
}

// CreateConfig describes a window to materialize.
type CreateConfig struct {
	ID        string
	Title     string
	Icon      string
	Width     int // types.SizeAuto for intrinsic
	Height    int // types.SizeAuto for intrinsic
	Resizable bool

	// OnClose runs when the window closes, before the window leaves
	// the registry. The runtime uses it to tear down the bound
	// instance.
	OnClose func()
}

// NewManager creates a window manager.
func NewManager(cfg config.Desktop, reg *registry.Registry, bus *events.Bus, log *logging.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		log:     log,
		bus:     bus,
		reg:     reg,
		windows: make(map[string]*types.Window),
		onClose: make(map[string]func()),
	}
}

// WithMetrics adds metrics tracking to the manager.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Create materializes a window at the next cascade position and focuses
// it. Creating an id that is already open redirects to Focus and
// returns the existing handle.
func (m *Manager) Create(cfg CreateConfig) (types.Window, error) {
	m.mu.Lock()

	if existing, ok := m.windows[cfg.ID]; ok {
		win := *existing
		m.mu.Unlock()
		m.Focus(cfg.ID)
		return win, nil
	}

	width, height := cfg.Width, cfg.Height
	if width == types.SizeAuto || width <= 0 {
		width = m.cfg.DefaultWidth
	}
	if height == types.SizeAuto || height <= 0 {
		height = m.cfg.DefaultHeight
	}

	x, y := cascadePosition(m.cfg, width, m.created)
	m.created++
	m.zCounter++

	win := &types.Window{
		ID:        cfg.ID,
		Title:     cfg.Title,
		Icon:      cfg.Icon,
		Geometry:  types.Geometry{X: x, Y: y, Width: width, Height: height},
		State:     types.WindowOpening,
		ZOrder:    m.zCounter,
		Resizable: cfg.Resizable,
		Active:    true,
		CreatedAt: time.Now(),
	}
	for _, other := range m.windows {
		other.Active = false
	}
	m.windows[cfg.ID] = win
	if cfg.OnClose != nil {
		m.onClose[cfg.ID] = cfg.OnClose
	}

	// Chrome exists once the open event goes out.
	win.State = types.WindowNormal

	snapshot := *win
	open := len(m.windows)
	m.mu.Unlock()

	m.reg.Add(types.WindowRecord{ID: snapshot.ID, Title: snapshot.Title, Icon: snapshot.Icon, Focused: true})
	m.reg.SetFocused(snapshot.ID)

	if m.metrics != nil {
		m.metrics.WindowsTotal.Inc()
		m.metrics.WindowsOpen.Set(float64(open))
	}
	m.metrics.RecordWindowOp("create")

	m.log.Debug("window created",
		zap.String("id", snapshot.ID),
		zap.Int("x", x), zap.Int("y", y),
		zap.Int64("z", snapshot.ZOrder),
	)

	m.bus.Publish(events.TopicWindowOpen, events.Payload{
		"id": snapshot.ID, "x": x, "y": y,
		"width": width, "height": height,
		"z_order": snapshot.ZOrder,
	})

	// The achievement itself is owned by an external collaborator; the
	// manager only triggers it.
	if open == m.cfg.AchievementWindows {
		m.bus.Publish(events.TopicAchievement, events.Payload{"id": "window-hoarder", "open": open})
	}

	return snapshot, nil
}

// Focus brings a window to the front. Focusing a minimized window
// restores it instead, matching host-OS behavior.
func (m *Manager) Focus(id string) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if win.State == types.WindowMinimized {
		m.mu.Unlock()
		return m.Restore(id)
	}

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

	m.reg.SetFocused(id)
	m.metrics.RecordWindowOp("focus")

	if blurred != "" {
		m.bus.Publish(events.TopicWindowBlur, events.Payload{"id": blurred})
	}
	m.bus.Publish(events.TopicWindowFocus, events.Payload{"id": id, "z_order": z})
	return true
}

// Minimize hides a window. Its content stays alive and its maximize or
// snap state survives for the next restore.
func (m *Manager) Minimize(id string) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || win.State == types.WindowMinimized {
		m.mu.Unlock()
		return false
	}
	win.PreMinimize = win.State
	win.State = types.WindowMinimized
	win.Active = false
	m.mu.Unlock()

	minimized := true
	m.reg.Update(id, types.WindowPatch{Minimized: &minimized})
	m.metrics.RecordWindowOp("minimize")

	m.bus.Publish(events.TopicWindowMinimize, events.Payload{"id": id, "minimized": true})
	return true
}

// Restore returns a minimized window to its pre-minimize state and
// focuses it.
func (m *Manager) Restore(id string) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || win.State != types.WindowMinimized {
		m.mu.Unlock()
		return false
	}
	win.State = win.PreMinimize
	if win.State == "" || win.State == types.WindowMinimized {
		win.State = types.WindowNormal
	}
	win.PreMinimize = ""
	m.mu.Unlock()

	minimized := false
	m.reg.Update(id, types.WindowPatch{Minimized: &minimized})
	m.metrics.RecordWindowOp("restore")

	m.bus.Publish(events.TopicWindowRestore, events.Payload{"id": id})
	return m.Focus(id)
}

// Maximize toggles between maximized and normal. The pre-transform
// snapshot restores the exact prior geometry on toggle-back; without a
// snapshot the window keeps its maximized geometry rather than
// collapsing.
func (m *Manager) Maximize(id string) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || win.State == types.WindowMinimized {
		m.mu.Unlock()
		return false
	}

	var maximized bool
	if win.State == types.WindowMaximized {
		if win.Restore != nil {
			win.Geometry = *win.Restore
			win.Restore = nil
		}
		win.State = types.WindowNormal
		maximized = false
	} else {
		snapshot := win.Geometry
		win.Restore = &snapshot
		win.Geometry = maximizedBounds(m.cfg)
		win.State = types.WindowMaximized
		maximized = true
	}
	g := win.Geometry
	m.mu.Unlock()

	m.reg.Update(id, types.WindowPatch{Maximized: &maximized})
	m.metrics.RecordWindowOp("maximize")

	m.bus.Publish(events.TopicWindowMaximize, events.Payload{
		"id": id, "maximized": maximized,
		"x": g.X, "y": g.Y, "width": g.Width, "height": g.Height,
	})
	return true
}

// Close tears a window down: the registered close callback runs first
// (the runtime's instance teardown), then the window leaves the
// registry for good. A closed id is never resurrected. No-ops when id
// does not exist.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	win.State = types.WindowClosing
	callback := m.onClose[id]
	delete(m.onClose, id)
	if m.drag != nil && m.drag.windowID == id {
		m.drag = nil
	}
	if m.resize != nil && m.resize.windowID == id {
		m.resize = nil
	}
	m.mu.Unlock()

	if callback != nil {
		callback()
	}

	m.mu.Lock()
	wasActive := win.Active
	delete(m.windows, id)
	if wasActive {
		if next := m.topWindowLocked(); next != nil {
			next.Active = true
		}
	}
	open := len(m.windows)
	m.mu.Unlock()

	m.reg.Remove(id)
	if m.metrics != nil {
		m.metrics.WindowsOpen.Set(float64(open))
	}
	m.metrics.RecordWindowOp("close")

	m.log.Debug("window closed", zap.String("id", id))
	m.bus.Publish(events.TopicWindowClose, events.Payload{"id": id})
	return true
}

// Get returns a copy of the window for id.
func (m *Manager) Get(id string) (types.Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, ok := m.windows[id]
	if !ok {
		return types.Window{}, false
	}
	return *win, true
}

// List returns copies of every open window.
func (m *Manager) List() []types.Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.Window, 0, len(m.windows))
	for _, win := range m.windows {
		out = append(out, *win)
	}
	return out
}

// Stats returns window manager statistics.
func (m *Manager) Stats() types.WindowStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := types.WindowStats{Open: len(m.windows), TopZ: m.zCounter}
	for id, win := range m.windows {
		if win.State == types.WindowMinimized {
			stats.Minimized++
		}
		if win.Active {
			focused := id
			stats.FocusedID = &focused
		}
	}
	return stats
}

// topWindowLocked returns the non-minimized window with the highest
// z-order. Caller holds mu.
func (m *Manager) topWindowLocked() *types.Window {
	var top *types.Window
	for _, win := range m.windows {
		if win.State == types.WindowMinimized || win.State == types.WindowClosing {
			continue
		}
		if top == nil || win.ZOrder > top.ZOrder {
			top = win
		}
	}
	return top
}
