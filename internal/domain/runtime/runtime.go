package runtime

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/deskforge/deskos/internal/domain/window"
	"github.com/deskforge/deskos/internal/events"
	"github.com/deskforge/deskos/internal/infrastructure/logging"
	"github.com/deskforge/deskos/internal/infrastructure/monitoring"
	"github.com/deskforge/deskos/internal/shared/id"
	"github.com/deskforge/deskos/internal/shared/types"
)

// WindowManager is the slice of the window manager the runtime needs.
// The runtime never mutates geometry; it references windows by id.
type WindowManager interface {
	Create(cfg window.CreateConfig) (types.Window, error)
	Focus(id string) bool
	Get(id string) (types.Window, bool)
	Close(id string) bool
}

// Deferrer schedules a callback after a delay. Tests substitute a
// synchronous one.
type Deferrer func(delay time.Duration, fn func())

// Instance is one running activation of a descriptor, bound 1:1 to a
// window.
type Instance struct {
	token   string
	desc    types.Descriptor
	app     App
	ctx     *Context
	content interface{}
}

// Info returns the externally visible view of the instance.
func (i *Instance) Info() types.InstanceInfo {
	return types.InstanceInfo{Token: i.token, DescriptorID: i.desc.ID, WindowID: i.ctx.windowID}
}

// Content returns the renderable content produced by the open hook.
func (i *Instance) Content() interface{} { return i.content }

type registration struct {
	desc types.Descriptor
	app  App
}

// Runtime manages application instances: launch with singleton reuse,
// instance/window binding, context-scoped helpers and teardown on
// window close.
type Runtime struct {
	mu        sync.RWMutex
	apps      map[string]registration
	instances map[string]*Instance // window id -> instance

	wm      WindowManager
	bus     *events.Bus
	log     *logging.Logger
	metrics *monitoring.Metrics
	surface Surface
	alloc   *id.Allocator

	deferFn    Deferrer
	mountDelay time.Duration
}

// NewRuntime creates a runtime bound to a window manager and bus, and
// subscribes the focus/blur/resize observers that dispatch window
// events to the owning instance's hooks.
func NewRuntime(wm WindowManager, bus *events.Bus, log *logging.Logger) *Runtime {
	r := &Runtime{
		apps:       make(map[string]registration),
		instances:  make(map[string]*Instance),
		wm:         wm,
		bus:        bus,
		log:        log,
		alloc:      id.NewAllocator(),
		deferFn:    func(delay time.Duration, fn func()) { time.AfterFunc(delay, fn) },
		mountDelay: 10 * time.Millisecond,
	}

	bus.Subscribe(events.TopicWindowFocus, func(p events.Payload) {
		r.dispatchFocus(payloadID(p), true)
	})
	bus.Subscribe(events.TopicWindowBlur, func(p events.Payload) {
		r.dispatchFocus(payloadID(p), false)
	})
	bus.Subscribe(events.TopicWindowResize, func(p events.Payload) {
		r.dispatchResize(p)
	})

	return r
}

// WithMetrics adds metrics tracking to the runtime.
func (r *Runtime) WithMetrics(metrics *monitoring.Metrics) *Runtime {
	r.metrics = metrics
	return r
}

// WithSurface attaches the host surface used for scoped element
// lookup.
func (r *Runtime) WithSurface(surface Surface) *Runtime {
	r.surface = surface
	return r
}

// WithDeferrer replaces the deferred-mount scheduler.
func (r *Runtime) WithDeferrer(fn Deferrer) *Runtime {
	r.deferFn = fn
	return r
}

// WithMountDelay sets the deferred-mount delay.
func (r *Runtime) WithMountDelay(d time.Duration) *Runtime {
	r.mountDelay = d
	return r
}

// Register adds an application descriptor with its implementation.
func (r *Runtime) Register(desc types.Descriptor, app App) error {
	if desc.ID == "" {
		return fmt.Errorf("descriptor id cannot be empty")
	}
	if app == nil {
		return fmt.Errorf("application %s has no implementation", desc.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.apps[desc.ID]; exists {
		return fmt.Errorf("application %s already registered", desc.ID)
	}
	r.apps[desc.ID] = registration{desc: desc, app: app}
	return nil
}

// Descriptors lists every registered application descriptor.
func (r *Runtime) Descriptors() []types.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Descriptor, 0, len(r.apps))
	for _, reg := range r.apps {
		out = append(out, reg.desc)
	}
	return out
}

// Launch activates an application. A singleton with a live instance is
// focused and, when params are supplied, relaunched in place; anything
// else gets a fresh instance bound to a new window. The instance
// record exists before any application code runs, so helper calls made
// during content generation resolve correctly.
func (r *Runtime) Launch(descriptorID string, params map[string]interface{}) (types.InstanceInfo, error) {
	r.mu.RLock()
	reg, ok := r.apps[descriptorID]
	r.mu.RUnlock()
	if !ok {
		return types.InstanceInfo{}, fmt.Errorf("%w: %s", types.ErrUnknownApp, descriptorID)
	}

	if reg.desc.Singleton {
		r.mu.RLock()
		existing := r.instances[reg.desc.ID]
		r.mu.RUnlock()
		if existing != nil {
			r.wm.Focus(existing.ctx.windowID)
			if len(params) > 0 {
				if rl, ok := existing.app.(Relauncher); ok {
					if err := guard(func() error { return rl.Relaunch(existing.ctx, params) }); err != nil {
						r.report("relaunch", reg.desc, existing.ctx.windowID, err)
					}
				}
			}
			return existing.Info(), nil
		}
	}

	windowID := r.alloc.Window(reg.desc.ID, reg.desc.Singleton)
	inst := &Instance{token: id.Token(), desc: reg.desc, app: reg.app}
	inst.ctx = newContext(r, windowID, reg.desc)

	r.mu.Lock()
	r.instances[windowID] = inst
	active := len(r.instances)
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.InstancesActive.Set(float64(active))
	}

	content, err := guardContent(func() (interface{}, error) { return reg.app.Open(inst.ctx, params) })
	if err != nil {
		r.discard(windowID)
		r.report("launch", reg.desc, windowID, err)
		r.bus.Publish(events.TopicDialogError, events.Payload{
			"app": reg.desc.Name, "message": err.Error(),
		})
		return types.InstanceInfo{}, fmt.Errorf("%w: %s: %v", types.ErrLaunchAborted, reg.desc.ID, err)
	}
	inst.content = content

	if _, err := r.wm.Create(window.CreateConfig{
		ID:        windowID,
		Title:     reg.desc.Name,
		Icon:      reg.desc.Icon,
		Width:     reg.desc.Width,
		Height:    reg.desc.Height,
		Resizable: reg.desc.Resizable,
		OnClose:   func() { r.teardown(windowID) },
	}); err != nil {
		r.discard(windowID)
		return types.InstanceInfo{}, fmt.Errorf("failed to create window for %s: %w", reg.desc.ID, err)
	}

	if r.metrics != nil {
		r.metrics.Launches.WithLabelValues(reg.desc.ID).Inc()
	}
	r.log.Info("application launched",
		zap.String("descriptor", reg.desc.ID),
		zap.String("window", windowID),
	)

	// Mount runs after the visual content exists. The window may close
	// before the delay elapses; mount detects the missing instance and
	// no-ops rather than resurrect state.
	r.deferFn(r.mountDelay, func() { r.mount(windowID) })

	return inst.Info(), nil
}

// mount invokes the instance's mount hook if it still exists. A mount
// failure leaves the window open but possibly half-initialized; that
// weak guarantee is reported, not corrected silently.
func (r *Runtime) mount(windowID string) {
	inst := r.instanceFor(windowID)
	if inst == nil {
		return
	}
	mounter, ok := inst.app.(Mounter)
	if !ok {
		return
	}
	if err := guard(func() error { return mounter.Mount(inst.ctx) }); err != nil {
		r.report("mount", inst.desc, windowID, fmt.Errorf("%w: %v", types.ErrMountFailed, err))
	}
}

// teardown destroys the instance bound to a closing window: bound
// handlers and subscriptions go first, then the close hook, then the
// record itself. Runs exactly once per instance.
func (r *Runtime) teardown(windowID string) {
	r.mu.Lock()
	inst, ok := r.instances[windowID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.instances, windowID)
	active := len(r.instances)
	r.mu.Unlock()

	inst.ctx.cleanup()

	if closer, ok := inst.app.(Closer); ok {
		if err := guard(func() error { return closer.Close(inst.ctx) }); err != nil {
			r.report("close", inst.desc, windowID, fmt.Errorf("%w: %v", types.ErrCloseHookFailed, err))
		}
	}

	if r.metrics != nil {
		r.metrics.InstancesActive.Set(float64(active))
	}
	r.log.Info("instance torn down",
		zap.String("descriptor", inst.desc.ID),
		zap.String("window", windowID),
	)
}

// discard removes a half-created instance record after a failed
// launch.
func (r *Runtime) discard(windowID string) {
	r.mu.Lock()
	inst, ok := r.instances[windowID]
	if ok {
		delete(r.instances, windowID)
	}
	active := len(r.instances)
	r.mu.Unlock()

	if ok {
		inst.ctx.cleanup()
	}
	if r.metrics != nil {
		r.metrics.InstancesActive.Set(float64(active))
	}
}

// Instances lists every live instance.
func (r *Runtime) Instances() []types.InstanceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.InstanceInfo, 0, len(r.instances))
	for _, inst := range r.instances {
		out = append(out, inst.Info())
	}
	return out
}

// Instance returns the live instance bound to a window id.
func (r *Runtime) Instance(windowID string) (*Instance, bool) {
	inst := r.instanceFor(windowID)
	return inst, inst != nil
}

// Stats returns runtime statistics.
func (r *Runtime) Stats() types.RuntimeStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := types.RuntimeStats{
		Descriptors: len(r.apps),
		Instances:   len(r.instances),
		PerApp:      make(map[string]int),
	}
	for _, inst := range r.instances {
		stats.PerApp[inst.desc.ID]++
	}
	return stats
}

func (r *Runtime) instanceFor(windowID string) *Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instances[windowID]
}

func (r *Runtime) dispatchFocus(windowID string, focused bool) {
	inst := r.instanceFor(windowID)
	if inst == nil {
		return
	}
	if focused {
		if f, ok := inst.app.(Focuser); ok {
			_ = guard(func() error { f.Focus(inst.ctx); return nil })
		}
		return
	}
	if b, ok := inst.app.(Blurrer); ok {
		_ = guard(func() error { b.Blur(inst.ctx); return nil })
	}
}

func (r *Runtime) dispatchResize(p events.Payload) {
	inst := r.instanceFor(payloadID(p))
	if inst == nil {
		return
	}
	resizer, ok := inst.app.(Resizer)
	if !ok {
		return
	}
	width, _ := p["width"].(int)
	height, _ := p["height"].(int)
	_ = guard(func() error { resizer.Resize(inst.ctx, width, height); return nil })
}

// report publishes a lifecycle failure with descriptor id, window id
// and detail. Reported failures never propagate further.
func (r *Runtime) report(kind string, desc types.Descriptor, windowID string, err error) {
	r.log.Warn("lifecycle hook failed",
		zap.String("kind", kind),
		zap.String("descriptor", desc.ID),
		zap.String("window", windowID),
		zap.Error(err),
	)
	r.metrics.RecordError(kind)
	r.bus.Publish(events.TopicAppError, events.Payload{
		"kind": kind, "descriptor": desc.ID, "window_id": windowID, "error": err.Error(),
	})
}

// guard runs a lifecycle hook, converting panics into errors so no
// application failure can crash the host process.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}

func guardContent(fn func() (interface{}, error)) (content interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}

func payloadID(p events.Payload) string {
	s, _ := p["id"].(string)
	return s
}
