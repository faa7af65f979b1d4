// Package bevel rounds the convex edges of a cap with a controlled
// radius. The rounded solid is built as an inset core regrown by the
// radius: sweeping the cross-section curve inset by r and offsetting the
// result outward by r restores the side walls and top while every convex
// edge picks up a radius-r fillet. Edge selection is therefore
// structural, never tagged by hand.
package bevel

import (
	"fmt"

	"github.com/chazu/capwright/pkg/curve"
	"github.com/chazu/capwright/pkg/kernel"
	"github.com/chazu/capwright/pkg/keycap"
	"github.com/chazu/capwright/pkg/shell"
)

// clipPad is the margin added to the clip box, mm.
const clipPad = 2.0

// minCore is the smallest lateral half-extent the inset core may shrink
// to before the bevel is declared infeasible, mm.
const minCore = 0.5

// Apply sweeps the curve into the cap's outer solid with its convex
// edges rounded at the given radius. A radius of zero or less gives the
// plain loft. The rounding is rebuilt from the curve on every call, so
// changing the radius never accumulates error.
//
// The cap sits on z=0 and its base rim must stay sharp: the outward
// offset also grows the core below the base plane, and cutting the
// result back to z >= 0 restores the flat base with its full footprint,
// since at z=0 the regrown surface passes exactly through the original
// outline.
func Apply(k kernel.Kernel, c *curve.CrossSectionCurve, radius float64) (kernel.Solid, error) {
	if radius <= 0 {
		return shell.Loft(k, c)
	}
	if c.MinHalfExtent()-radius < minCore || c.Height-radius < minCore {
		return nil, &keycap.DegenerateGeometryError{
			Stage:  "bevel",
			Detail: fmt.Sprintf("radius %.2fmm leaves no core (thinnest section %.2fmm)", radius, c.MinHalfExtent()),
		}
	}

	core, err := shell.Loft(k, c.Inset(radius))
	if err != nil {
		return nil, err
	}
	grown := k.Offset(core, radius)

	dx := c.Footprint + 2*clipPad
	dy := c.BaseDepth + 2*clipPad
	dz := c.Height + clipPad
	clip := k.Translate(k.Box(dx, dy, dz), 0, 0, dz/2)

	return k.Intersection(grown, clip), nil
}
