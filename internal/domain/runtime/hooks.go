package runtime

// App is the required application entry point. Open runs under the
// fresh instance's context and returns the renderable window content;
// an error aborts the launch before any window exists.
type App interface {
	Open(ctx *Context, params map[string]interface{}) (interface{}, error)
}

// The remaining lifecycle hooks are optional capabilities checked by
// type assertion. An application that does not implement one gets a
// no-op, never a runtime type error.

// Mounter runs after the window's visual content exists. A mount
// failure is reported but leaves the window open.
type Mounter interface {
	Mount(ctx *Context) error
}

// Closer runs during instance teardown, after bound handlers and
// subscriptions are removed. A failure is reported but never blocks
// removal.
type Closer interface {
	Close(ctx *Context) error
}

// Focuser runs when the bound window gains focus.
type Focuser interface {
	Focus(ctx *Context)
}

// Blurrer runs when the bound window loses focus.
type Blurrer interface {
	Blur(ctx *Context)
}

// Resizer runs on window resize events with the current size.
type Resizer interface {
	Resize(ctx *Context, width, height int)
}

// Relauncher runs on an existing singleton instance when launch is
// called again with parameters.
type Relauncher interface {
	Relaunch(ctx *Context, params map[string]interface{}) error
}

// EventTarget is a host-surface node that accepts event handlers and
// hands back their removal.
type EventTarget interface {
	AddHandler(event string, fn func(payload interface{})) (remove func())
}

// Surface resolves elements inside a window's rendered content.
// Lookups are scoped to a single window so instances never touch each
// other's elements.
type Surface interface {
	Element(windowID, elementID string) (EventTarget, bool)
}
