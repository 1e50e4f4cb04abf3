package window

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskforge/deskos/internal/domain/registry"
	"github.com/deskforge/deskos/internal/events"
	"github.com/deskforge/deskos/internal/infrastructure/config"
	"github.com/deskforge/deskos/internal/infrastructure/logging"
	"github.com/deskforge/deskos/internal/shared/types"
)

func newTestManager(t *testing.T) (*Manager, *registry.Registry, *events.Bus) {
	t.Helper()
	bus := events.New()
	reg := registry.New()
	m := NewManager(config.DefaultDesktop(), reg, bus, logging.NewNop())
	return m, reg, bus
}

func create(t *testing.T, m *Manager, id string) types.Window {
	t.Helper()
	win, err := m.Create(CreateConfig{ID: id, Title: id, Width: 250, Height: 285, Resizable: true})
	require.NoError(t, err)
	return win
}

func TestCreateCascadesAndStacks(t *testing.T) {
	m, _, _ := newTestManager(t)

	// 1440 wide viewport, 250 wide window: horizontally centered.
	first := create(t, m, "a")
	assert.Equal(t, types.Geometry{X: 595, Y: 80, Width: 250, Height: 285}, first.Geometry)
	assert.Equal(t, int64(1), first.ZOrder)
	assert.Equal(t, types.WindowNormal, first.State)
	assert.True(t, first.Active)

	second := create(t, m, "b")
	assert.Equal(t, types.Geometry{X: 625, Y: 110, Width: 250, Height: 285}, second.Geometry)
	assert.Equal(t, int64(2), second.ZOrder)
	assert.True(t, second.Active)

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.False(t, got.Active, "creating b must deactivate a")
}

func TestCreateExistingIDFocuses(t *testing.T) {
	m, _, _ := newTestManager(t)
	create(t, m, "a")
	create(t, m, "b")

	win, err := m.Create(CreateConfig{ID: "a", Title: "ignored", Width: 999, Height: 999})
	require.NoError(t, err)
	assert.Equal(t, "a", win.ID)
	assert.Len(t, m.List(), 2, "re-creating an open id must not add a window")

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.True(t, got.Active)
	assert.Equal(t, 250, got.Geometry.Width, "existing geometry wins over the new request")
}

func TestCreateAutoSizeFallsBackToDefaults(t *testing.T) {
	m, _, _ := newTestManager(t)

	win, err := m.Create(CreateConfig{ID: "auto", Width: types.SizeAuto, Height: types.SizeAuto})
	require.NoError(t, err)
	assert.Equal(t, 600, win.Geometry.Width)
	assert.Equal(t, 400, win.Geometry.Height)
}

func TestFocusRaisesAboveEveryWindow(t *testing.T) {
	m, reg, _ := newTestManager(t)
	create(t, m, "a")
	create(t, m, "b")
	create(t, m, "c")

	require.True(t, m.Focus("a"))

	a, _ := m.Get("a")
	for _, other := range m.List() {
		if other.ID == "a" {
			continue
		}
		assert.Greater(t, a.ZOrder, other.ZOrder)
		assert.False(t, other.Active)
	}
	assert.True(t, a.Active)

	rec, ok := reg.Get("a")
	require.True(t, ok)
	assert.True(t, rec.Focused)
}

func TestFocusMinimizedRestores(t *testing.T) {
	m, _, _ := newTestManager(t)
	create(t, m, "a")
	require.True(t, m.Minimize("a"))

	require.True(t, m.Focus("a"))

	win, _ := m.Get("a")
	assert.Equal(t, types.WindowNormal, win.State)
	assert.True(t, win.Active)
}

func TestFocusUnknownWindow(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.False(t, m.Focus("ghost"))
}

func TestMinimizeRestoreKeepsMaximizedState(t *testing.T) {
	m, _, _ := newTestManager(t)
	win := create(t, m, "a")
	require.True(t, m.Maximize("a"))
	require.True(t, m.Minimize("a"))

	got, _ := m.Get("a")
	assert.Equal(t, types.WindowMinimized, got.State)
	assert.False(t, got.Active)

	require.True(t, m.Restore("a"))
	got, _ = m.Get("a")
	assert.Equal(t, types.WindowMaximized, got.State, "restore must return to the pre-minimize state")
	assert.True(t, got.Active)
	require.NotNil(t, got.Restore)
	assert.Equal(t, win.Geometry, *got.Restore)
}

func TestMinimizeTwiceIsNoop(t *testing.T) {
	m, _, _ := newTestManager(t)
	create(t, m, "a")
	require.True(t, m.Minimize("a"))
	assert.False(t, m.Minimize("a"))
}

func TestRestoreNonMinimizedIsNoop(t *testing.T) {
	m, _, _ := newTestManager(t)
	create(t, m, "a")
	assert.False(t, m.Restore("a"))
}

func TestMaximizeToggleRoundTrips(t *testing.T) {
	m, _, _ := newTestManager(t)
	win := create(t, m, "a")

	require.True(t, m.Maximize("a"))
	got, _ := m.Get("a")
	assert.Equal(t, types.WindowMaximized, got.State)
	assert.Equal(t, types.Geometry{X: 0, Y: 0, Width: 1440, Height: 850}, got.Geometry,
		"maximized bounds exclude the taskbar strip")
	require.NotNil(t, got.Restore)
	assert.Equal(t, win.Geometry, *got.Restore)

	require.True(t, m.Maximize("a"))
	got, _ = m.Get("a")
	assert.Equal(t, types.WindowNormal, got.State)
	assert.Equal(t, win.Geometry, got.Geometry, "toggle-back restores the exact prior geometry")
	assert.Nil(t, got.Restore)
}

func TestMaximizeMinimizedIsNoop(t *testing.T) {
	m, _, _ := newTestManager(t)
	create(t, m, "a")
	require.True(t, m.Minimize("a"))
	assert.False(t, m.Maximize("a"))
}

func TestCloseActivatesNextTopWindow(t *testing.T) {
	m, reg, _ := newTestManager(t)
	create(t, m, "a")
	create(t, m, "b")
	create(t, m, "c")
	require.True(t, m.Focus("a"))

	require.True(t, m.Close("a"))

	_, ok := m.Get("a")
	assert.False(t, ok)
	_, ok = reg.Get("a")
	assert.False(t, ok)

	c, _ := m.Get("c")
	assert.True(t, c.Active, "highest remaining z-order takes focus")
	b, _ := m.Get("b")
	assert.False(t, b.Active)
}

func TestCloseUnknownWindow(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.False(t, m.Close("ghost"))
}

func TestCloseRunsCallbackBeforeRemoval(t *testing.T) {
	m, _, _ := newTestManager(t)

	var sawDuringCallback types.WindowState
	calls := 0
	_, err := m.Create(CreateConfig{ID: "a", Width: 250, Height: 285, OnClose: func() {
		calls++
		win, ok := m.Get("a")
		require.True(t, ok, "window must still exist while the close callback runs")
		sawDuringCallback = win.State
	}})
	require.NoError(t, err)

	require.True(t, m.Close("a"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, types.WindowClosing, sawDuringCallback)

	// The id is gone for good; a second close is a no-op.
	assert.False(t, m.Close("a"))
}

func TestCreatePublishesOpenEvent(t *testing.T) {
	m, _, bus := newTestManager(t)

	var got events.Payload
	bus.Subscribe(events.TopicWindowOpen, func(p events.Payload) { got = p })

	create(t, m, "a")
	require.NotNil(t, got)
	assert.Equal(t, "a", got["id"])
	assert.Equal(t, 595, got["x"])
	assert.Equal(t, 80, got["y"])
}

func TestAchievementFiresAtThreshold(t *testing.T) {
	m, _, bus := newTestManager(t)

	fired := 0
	bus.Subscribe(events.TopicAchievement, func(p events.Payload) {
		fired++
		assert.Equal(t, 10, p["open"])
	})

	for i := 0; i < 12; i++ {
		create(t, m, fmt.Sprintf("w%d", i))
	}
	assert.Equal(t, 1, fired, "the achievement fires once, at exactly the threshold")
}

func TestStats(t *testing.T) {
	m, _, _ := newTestManager(t)
	create(t, m, "a")
	create(t, m, "b")
	require.True(t, m.Minimize("a"))

	stats := m.Stats()
	assert.Equal(t, 2, stats.Open)
	assert.Equal(t, 1, stats.Minimized)
	require.NotNil(t, stats.FocusedID)
	assert.Equal(t, "b", *stats.FocusedID)
}

func TestPlaceClampsToMinimumSize(t *testing.T) {
	m, _, _ := newTestManager(t)
	create(t, m, "a")

	restore := types.Geometry{X: 10, Y: 20, Width: 300, Height: 250}
	require.True(t, m.Place("a", types.Geometry{X: 5, Y: 5, Width: 50, Height: 40}, types.WindowMaximized, &restore))

	got, _ := m.Get("a")
	assert.Equal(t, types.Geometry{X: 5, Y: 5, Width: 200, Height: 150}, got.Geometry)
	assert.Equal(t, types.WindowMaximized, got.State)
	require.NotNil(t, got.Restore)
	assert.Equal(t, restore, *got.Restore)
}

func TestPlaceUnknownWindow(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.False(t, m.Place("ghost", types.Geometry{X: 0, Y: 0, Width: 300, Height: 300}, types.WindowNormal, nil))
}
