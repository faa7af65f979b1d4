// Package stem builds the switch-mount solid on the cap's interior
// underside. Stem families share one constructor signature so new mounts
// slot in without touching the pipeline.
package stem

import (
	"fmt"

	"github.com/chazu/capwright/pkg/kernel"
	"github.com/chazu/capwright/pkg/keycap"
)

// Cherry MX mount dimensions, mm.
const (
	mxOuterDiameter = 5.6  // stem post diameter
	mxCrossLength   = 4.15 // cross slot arm length
	mxCrossWidth    = 1.29 // cross slot arm width
	mxTopClearance  = 0.5  // gap kept below the outer top surface
	mxSlotOverrun   = 0.4  // slot cut overshoot past the post ends

	// cylinderSegments is advisory; the SDF backend ignores it.
	cylinderSegments = 64

	// minEmbed is how far the post must reach past the cavity ceiling so
	// the union fuses it to the cap instead of leaving a floating solid.
	minEmbed = 0.2
)

// Frame locates the cap's interior underside: the post is centered at
// (CenterX, CenterY) on the base plane, under a cavity ceiling at
// CeilingZ inside a cap of CapHeight.
type Frame struct {
	CenterX, CenterY float64
	CeilingZ         float64
	CapHeight        float64
}

// Build returns the stem solid for the given kind, or ok=false when the
// kind produces no geometry (StemNone skips the stem stage entirely).
func Build(k kernel.Kernel, kind keycap.StemKind, f Frame) (kernel.Solid, bool, error) {
	switch kind {
	case keycap.StemNone:
		return nil, false, nil
	case keycap.StemCherryMX:
		s, err := buildCherryMX(k, f)
		if err != nil {
			return nil, false, err
		}
		return s, true, nil
	default:
		return nil, false, &keycap.ConfigurationError{
			Field:  "stem",
			Detail: fmt.Sprintf("unsupported stem kind %v", kind),
		}
	}
}

// buildCherryMX builds the MX mount: a post rising from the base plane to
// just under the top surface, with the cross-shaped socket cut through it.
func buildCherryMX(k kernel.Kernel, f Frame) (kernel.Solid, error) {
	// The post must end past the cavity ceiling so the union fuses.
	height := f.CapHeight - mxTopClearance
	if height < f.CeilingZ+minEmbed {
		height = f.CeilingZ + minEmbed
	}
	if height <= 0 || f.CapHeight <= mxTopClearance {
		return nil, &keycap.DegenerateGeometryError{
			Stage:  "stem",
			Detail: fmt.Sprintf("cap height %.2fmm leaves no room for an MX post", f.CapHeight),
		}
	}

	post := k.Translate(k.Cylinder(height, mxOuterDiameter/2, cylinderSegments), 0, 0, height/2)

	slotH := height + mxSlotOverrun
	vSlot := k.Translate(k.Box(mxCrossWidth, mxCrossLength, slotH), 0, 0, slotH/2-mxSlotOverrun/2)
	hSlot := k.Translate(k.Box(mxCrossLength, mxCrossWidth, slotH), 0, 0, slotH/2-mxSlotOverrun/2)

	stem := k.Difference(k.Difference(post, vSlot), hSlot)

	if f.CenterX != 0 || f.CenterY != 0 {
		stem = k.Translate(stem, f.CenterX, f.CenterY, 0)
	}
	return stem, nil
}
