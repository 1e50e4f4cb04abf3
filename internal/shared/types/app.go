package types

// Descriptor is the static, author-supplied definition of an
// application type. Immutable for the process lifetime.
type Descriptor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Width     int    `json:"width"`  // SizeAuto means intrinsic
	Height    int    `json:"height"` // SizeAuto means intrinsic
	Resizable bool   `json:"resizable"`
	Singleton bool   `json:"singleton"`
}

// InstanceInfo is the externally visible view of a running instance.
type InstanceInfo struct {
	Token        string `json:"token"`
	DescriptorID string `json:"descriptor_id"`
	WindowID     string `json:"window_id"`
}

// RuntimeStats contains application runtime statistics.
type RuntimeStats struct {
	Descriptors int            `json:"descriptors"`
	Instances   int            `json:"instances"`
	PerApp      map[string]int `json:"per_app,omitempty"`
}

// WindowStats contains window manager statistics.
type WindowStats struct {
	Open      int     `json:"open"`
	Minimized int     `json:"minimized"`
	FocusedID *string `json:"focused_id,omitempty"`
	TopZ      int64   `json:"top_z"`
}
