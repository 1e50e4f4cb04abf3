package runtime

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskforge/deskos/internal/domain/registry"
	"github.com/deskforge/deskos/internal/domain/window"
	"github.com/deskforge/deskos/internal/events"
	"github.com/deskforge/deskos/internal/infrastructure/config"
	"github.com/deskforge/deskos/internal/infrastructure/logging"
	"github.com/deskforge/deskos/internal/shared/types"
)

// The runtime is tested against the real window manager so the
// launch/close/focus paths exercise the same event flow as production.
func newTestRuntime(t *testing.T) (*Runtime, *window.Manager, *events.Bus) {
	t.Helper()
	bus := events.New()
	wm := window.NewManager(config.DefaultDesktop(), registry.New(), bus, logging.NewNop())
	rt := NewRuntime(wm, bus, logging.NewNop()).
		WithDeferrer(func(_ time.Duration, fn func()) { fn() })
	return rt, wm, bus
}

// lifecycleApp implements every optional hook and counts invocations.
type lifecycleApp struct {
	openErr     error
	mountErr    error
	closeErr    error
	relaunchErr error
	openFn      func(ctx *Context)

	mounts     int
	closes     int
	focuses    int
	blurs      int
	resizes    [][2]int
	relaunches []map[string]interface{}
}

func (a *lifecycleApp) Open(ctx *Context, params map[string]interface{}) (interface{}, error) {
	if a.openErr != nil {
		return nil, a.openErr
	}
	if a.openFn != nil {
		a.openFn(ctx)
	}
	return "content", nil
}

func (a *lifecycleApp) Mount(ctx *Context) error { a.mounts++; return a.mountErr }
func (a *lifecycleApp) Close(ctx *Context) error { a.closes++; return a.closeErr }
func (a *lifecycleApp) Focus(ctx *Context)       { a.focuses++ }
func (a *lifecycleApp) Blur(ctx *Context)        { a.blurs++ }
func (a *lifecycleApp) Resize(ctx *Context, w, h int) {
	a.resizes = append(a.resizes, [2]int{w, h})
}
func (a *lifecycleApp) Relaunch(ctx *Context, params map[string]interface{}) error {
	a.relaunches = append(a.relaunches, params)
	return a.relaunchErr
}

// bareApp implements only the required entry point.
type bareApp struct{}

func (bareApp) Open(ctx *Context, params map[string]interface{}) (interface{}, error) {
	return "bare", nil
}

func desc(id string, singleton bool) types.Descriptor {
	return types.Descriptor{ID: id, Name: id, Width: 250, Height: 285, Resizable: true, Singleton: singleton}
}

func TestRegisterValidation(t *testing.T) {
	rt, _, _ := newTestRuntime(t)

	assert.Error(t, rt.Register(types.Descriptor{}, bareApp{}))
	assert.Error(t, rt.Register(desc("notes", false), nil))
	require.NoError(t, rt.Register(desc("notes", false), bareApp{}))
	assert.Error(t, rt.Register(desc("notes", false), bareApp{}), "duplicate registration")
}

func TestLaunchUnknownApp(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	_, err := rt.Launch("ghost", nil)
	assert.ErrorIs(t, err, types.ErrUnknownApp)
}

func TestLaunchBindsInstanceToWindow(t *testing.T) {
	rt, wm, _ := newTestRuntime(t)
	require.NoError(t, rt.Register(desc("notes", false), &lifecycleApp{}))

	first, err := rt.Launch("notes", nil)
	require.NoError(t, err)
	second, err := rt.Launch("notes", nil)
	require.NoError(t, err)

	assert.Equal(t, "notes-1", first.WindowID)
	assert.Equal(t, "notes-2", second.WindowID)
	assert.NotEqual(t, first.Token, second.Token)

	// Every instance has its window and every window its instance.
	infos := rt.Instances()
	require.Len(t, infos, 2)
	seen := map[string]bool{}
	for _, info := range infos {
		win, ok := wm.Get(info.WindowID)
		require.True(t, ok)
		assert.Equal(t, "notes", win.Title)
		assert.False(t, seen[info.WindowID], "window ids must be unique per instance")
		seen[info.WindowID] = true
	}

	inst, ok := rt.Instance(first.WindowID)
	require.True(t, ok)
	assert.Equal(t, "content", inst.Content())
}

func TestSingletonLaunchReusesInstance(t *testing.T) {
	rt, wm, _ := newTestRuntime(t)
	app := &lifecycleApp{}
	require.NoError(t, rt.Register(desc("term", true), app))

	first, err := rt.Launch("term", nil)
	require.NoError(t, err)
	assert.Equal(t, "term", first.WindowID)
	require.True(t, wm.Minimize("term"))

	second, err := rt.Launch("term", nil)
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token, "the existing instance is reused")
	assert.Len(t, rt.Instances(), 1)
	assert.Len(t, wm.List(), 1)
	assert.Empty(t, app.relaunches, "no params means no relaunch")

	win, ok := wm.Get("term")
	require.True(t, ok)
	assert.Equal(t, types.WindowNormal, win.State, "relaunching a minimized singleton restores it")
	assert.True(t, win.Active)
}

func TestSingletonRelaunchWithParams(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	app := &lifecycleApp{}
	require.NoError(t, rt.Register(desc("term", true), app))

	_, err := rt.Launch("term", nil)
	require.NoError(t, err)

	params := map[string]interface{}{"path": "/tmp"}
	info, err := rt.Launch("term", params)
	require.NoError(t, err)
	assert.Equal(t, "term", info.WindowID)

	require.Len(t, app.relaunches, 1)
	assert.Equal(t, params, app.relaunches[0])
}

func TestSingletonRelaunchFailureIsReported(t *testing.T) {
	rt, _, bus := newTestRuntime(t)
	app := &lifecycleApp{relaunchErr: errors.New("bad params")}
	require.NoError(t, rt.Register(desc("term", true), app))

	var reported events.Payload
	bus.Subscribe(events.TopicAppError, func(p events.Payload) { reported = p })

	_, err := rt.Launch("term", nil)
	require.NoError(t, err)
	_, err = rt.Launch("term", map[string]interface{}{"x": 1})
	require.NoError(t, err, "a failed relaunch never kills the live instance")

	require.NotNil(t, reported)
	assert.Equal(t, "relaunch", reported["kind"])
	assert.Len(t, rt.Instances(), 1)
}

func TestLaunchOpenFailureLeaksNothing(t *testing.T) {
	rt, wm, bus := newTestRuntime(t)
	require.NoError(t, rt.Register(desc("broken", false), &lifecycleApp{openErr: errors.New("boom")}))

	var dialog events.Payload
	bus.Subscribe(events.TopicDialogError, func(p events.Payload) { dialog = p })

	_, err := rt.Launch("broken", nil)
	assert.ErrorIs(t, err, types.ErrLaunchAborted)

	assert.Empty(t, rt.Instances())
	assert.Empty(t, wm.List(), "no window exists for an aborted launch")
	require.NotNil(t, dialog)
	assert.Equal(t, "broken", dialog["app"])
}

type panicApp struct{}

func (panicApp) Open(ctx *Context, params map[string]interface{}) (interface{}, error) {
	panic("open exploded")
}

func TestLaunchOpenPanicIsContained(t *testing.T) {
	rt, wm, _ := newTestRuntime(t)
	require.NoError(t, rt.Register(desc("panicky", false), panicApp{}))

	_, err := rt.Launch("panicky", nil)
	assert.ErrorIs(t, err, types.ErrLaunchAborted)
	assert.Empty(t, wm.List())
}

func TestHelpersWorkDuringOpen(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	var captured *Context
	app := &lifecycleApp{openFn: func(ctx *Context) {
		captured = ctx
		ctx.SetState("ready", true)
	}}
	require.NoError(t, rt.Register(desc("notes", false), app))

	_, err := rt.Launch("notes", nil)
	require.NoError(t, err)

	require.NotNil(t, captured)
	v, ok := captured.State("ready")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestMountRunsAfterLaunch(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	app := &lifecycleApp{}
	require.NoError(t, rt.Register(desc("notes", false), app))

	_, err := rt.Launch("notes", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, app.mounts)
}

func TestMountFailureLeavesWindowOpen(t *testing.T) {
	rt, wm, bus := newTestRuntime(t)
	app := &lifecycleApp{mountErr: errors.New("no backend")}
	require.NoError(t, rt.Register(desc("notes", false), app))

	var reported events.Payload
	bus.Subscribe(events.TopicAppError, func(p events.Payload) { reported = p })

	info, err := rt.Launch("notes", nil)
	require.NoError(t, err, "a mount failure does not abort the launch")

	_, ok := wm.Get(info.WindowID)
	assert.True(t, ok, "the window stays open, possibly half-initialized")
	require.NotNil(t, reported)
	assert.Equal(t, "mount", reported["kind"])
}

func TestDeferredMountAfterCloseIsNoop(t *testing.T) {
	bus := events.New()
	wm := window.NewManager(config.DefaultDesktop(), registry.New(), bus, logging.NewNop())

	var pending []func()
	rt := NewRuntime(wm, bus, logging.NewNop()).
		WithDeferrer(func(_ time.Duration, fn func()) { pending = append(pending, fn) })

	app := &lifecycleApp{}
	require.NoError(t, rt.Register(desc("notes", false), app))

	info, err := rt.Launch("notes", nil)
	require.NoError(t, err)
	require.True(t, wm.Close(info.WindowID))

	for _, fn := range pending {
		fn()
	}
	assert.Zero(t, app.mounts, "mount after close must not resurrect the instance")
}

func TestWindowCloseTearsDownInstance(t *testing.T) {
	rt, wm, bus := newTestRuntime(t)
	app := &lifecycleApp{}
	require.NoError(t, rt.Register(desc("notes", false), app))

	fired := 0
	app.openFn = func(ctx *Context) {
		ctx.OnEvent("app:tick", func(events.Payload) { fired++ })
	}

	info, err := rt.Launch("notes", nil)
	require.NoError(t, err)

	bus.Publish("app:tick", events.Payload{})
	assert.Equal(t, 1, fired)

	require.True(t, wm.Close(info.WindowID))
	assert.Equal(t, 1, app.closes)
	assert.Empty(t, rt.Instances())

	bus.Publish("app:tick", events.Payload{})
	assert.Equal(t, 1, fired, "handlers bound by a torn-down instance never fire again")
}

func TestCloseHookFailureStillRemovesInstance(t *testing.T) {
	rt, wm, bus := newTestRuntime(t)
	app := &lifecycleApp{closeErr: errors.New("flush failed")}
	require.NoError(t, rt.Register(desc("notes", false), app))

	var reported events.Payload
	bus.Subscribe(events.TopicAppError, func(p events.Payload) { reported = p })

	info, err := rt.Launch("notes", nil)
	require.NoError(t, err)
	require.True(t, wm.Close(info.WindowID))

	assert.Empty(t, rt.Instances())
	require.NotNil(t, reported)
	assert.Equal(t, "close", reported["kind"])
}

func TestFocusBlurDispatch(t *testing.T) {
	rt, wm, _ := newTestRuntime(t)
	first := &lifecycleApp{}
	second := &lifecycleApp{}
	require.NoError(t, rt.Register(desc("one", false), first))
	require.NoError(t, rt.Register(desc("two", false), second))

	a, err := rt.Launch("one", nil)
	require.NoError(t, err)
	_, err = rt.Launch("two", nil)
	require.NoError(t, err)

	require.True(t, wm.Focus(a.WindowID))

	assert.Equal(t, 1, first.focuses)
	assert.Equal(t, 1, second.blurs)
}

func TestResizeDispatch(t *testing.T) {
	rt, wm, _ := newTestRuntime(t)
	app := &lifecycleApp{}
	require.NoError(t, rt.Register(desc("notes", false), app))

	info, err := rt.Launch("notes", nil)
	require.NoError(t, err)

	require.NoError(t, wm.StartResize(info.WindowID, types.ResizeSE, 845, 365))
	wm.ResizeTo(900, 400)
	_, ok := wm.EndResize()
	require.True(t, ok)

	require.NotEmpty(t, app.resizes)
	last := app.resizes[len(app.resizes)-1]
	assert.Equal(t, 305, last[0])
	assert.Equal(t, 320, last[1])
}

func TestStats(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	require.NoError(t, rt.Register(desc("notes", false), &lifecycleApp{}))
	require.NoError(t, rt.Register(desc("term", true), &lifecycleApp{}))

	_, err := rt.Launch("notes", nil)
	require.NoError(t, err)
	_, err = rt.Launch("notes", nil)
	require.NoError(t, err)
	_, err = rt.Launch("term", nil)
	require.NoError(t, err)

	stats := rt.Stats()
	assert.Equal(t, 2, stats.Descriptors)
	assert.Equal(t, 3, stats.Instances)
	assert.Equal(t, 2, stats.PerApp["notes"])
	assert.Equal(t, 1, stats.PerApp["term"])

	assert.Len(t, rt.Descriptors(), 2)
}
