package window

import (
	"github.com/deskforge/deskos/internal/infrastructure/config"
	"github.com/deskforge/deskos/internal/shared/types"
)

// cascadePosition computes the deterministic diagonal-offset placement
// for the nth created window: horizontally centered for the given
// width, vertically offset by the base margin, stepped diagonally per
// creation and wrapping so long sessions never drift off-screen.
func cascadePosition(d config.Desktop, width, created int) (x, y int) {
	step := created % d.CascadeWrap
	x = (d.ViewportWidth-width)/2 + step*d.CascadeStep
	y = d.CascadeBaseY + step*d.CascadeStep

	// The origin never exceeds viewport-margin on either axis.
	x = min(x, d.ViewportWidth-d.CascadeMargin)
	y = min(y, d.ViewportHeight-d.CascadeMargin)
	x = max(x, 0)
	y = max(y, 0)
	return x, y
}

// maximizedBounds is the full host surface minus the taskbar strip.
func maximizedBounds(d config.Desktop) types.Geometry {
	return types.Geometry{
		X:      0,
		Y:      0,
		Width:  d.ViewportWidth,
		Height: d.ViewportHeight - d.TaskbarHeight,
	}
}

// snapBounds returns the geometry a snap target resolves to.
func snapBounds(d config.Desktop, target types.SnapTarget) types.Geometry {
	full := maximizedBounds(d)
	switch target {
	case types.SnapLeft:
		return types.Geometry{X: 0, Y: 0, Width: d.ViewportWidth / 2, Height: full.Height}
	case types.SnapRight:
		return types.Geometry{X: d.ViewportWidth / 2, Y: 0, Width: d.ViewportWidth - d.ViewportWidth/2, Height: full.Height}
	default:
		return full
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
