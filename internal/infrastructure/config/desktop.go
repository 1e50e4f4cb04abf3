package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Desktop holds host-surface geometry constants. Every numeric value is
// in host-surface pixels.
type Desktop struct {
	// Viewport is the full host surface size.
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`

	// TaskbarHeight is the chrome strip reserved at the bottom of the
	// surface. Maximized windows exclude it.
	TaskbarHeight int `yaml:"taskbar_height"`

	// Cascade placement of new windows.
	CascadeBaseY  int `yaml:"cascade_base_y"`
	CascadeStep   int `yaml:"cascade_step"`
	CascadeWrap   int `yaml:"cascade_wrap"`
	CascadeMargin int `yaml:"cascade_margin"` // origin never exceeds viewport-margin

	// SnapThreshold is the edge distance that arms a snap zone during a
	// drag session.
	SnapThreshold int `yaml:"snap_threshold"`

	// Drag clamps: at least EdgeReach pixels of the window stay on the
	// surface horizontally, and the title bar never leaves the bottom
	// BottomReach strip.
	EdgeReach   int `yaml:"edge_reach"`
	BottomReach int `yaml:"bottom_reach"`

	// Platform minimum window size. No operation may produce a smaller
	// window.
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`

	// Fallback size for descriptors declaring intrinsic ("auto") size.
	DefaultWidth  int `yaml:"default_width"`
	DefaultHeight int `yaml:"default_height"`

	// AchievementWindows is the concurrently open window count that
	// triggers the externally owned achievement signal.
	AchievementWindows int `yaml:"achievement_windows"`

	// MountDelayMS is the deferred-mount delay, letting visual content
	// exist before the mount hook runs.
	MountDelayMS int `yaml:"mount_delay_ms"`
}

// DefaultDesktop returns the compiled surface defaults.
func DefaultDesktop() Desktop {
	return Desktop{
		ViewportWidth:      1440,
		ViewportHeight:     900,
		TaskbarHeight:      50,
		CascadeBaseY:       80,
		CascadeStep:        30,
		CascadeWrap:        10,
		CascadeMargin:      200,
		SnapThreshold:      5,
		EdgeReach:          100,
		BottomReach:        50,
		MinWidth:           200,
		MinHeight:          150,
		DefaultWidth:       600,
		DefaultHeight:      400,
		AchievementWindows: 10,
		MountDelayMS:       10,
	}
}

// LoadDesktop reads a desktop.yaml overlay. Omitted fields keep their
// compiled defaults.
func LoadDesktop(path string) (Desktop, error) {
	desktop := DefaultDesktop()

	data, err := os.ReadFile(path)
	if err != nil {
		return desktop, fmt.Errorf("failed to read desktop config: %w", err)
	}
	if err := yaml.Unmarshal(data, &desktop); err != nil {
		return desktop, fmt.Errorf("failed to parse desktop config: %w", err)
	}
	if err := desktop.Validate(); err != nil {
		return desktop, err
	}
	return desktop, nil
}

// Validate rejects geometry constants that cannot describe a usable
// surface.
func (d Desktop) Validate() error {
	if d.ViewportWidth <= 0 || d.ViewportHeight <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", d.ViewportWidth, d.ViewportHeight)
	}
	if d.MinWidth <= 0 || d.MinHeight <= 0 {
		return fmt.Errorf("invalid minimum window size %dx%d", d.MinWidth, d.MinHeight)
	}
	if d.CascadeWrap <= 0 {
		return fmt.Errorf("cascade wrap must be positive, got %d", d.CascadeWrap)
	}
	if d.SnapThreshold < 0 {
		return fmt.Errorf("snap threshold must be non-negative, got %d", d.SnapThreshold)
	}
	return nil
}
