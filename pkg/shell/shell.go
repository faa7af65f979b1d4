// Package shell lofts a cross-section curve into the cap's outer solid
// and derives the inner cavity solid used to hollow it.
package shell

import (
	"fmt"

	"github.com/chazu/capwright/pkg/curve"
	"github.com/chazu/capwright/pkg/kernel"
	"github.com/chazu/capwright/pkg/keycap"
)

// minCavity is the smallest lateral half-extent the cavity may shrink to
// before the inward offset is declared infeasible, mm.
const minCavity = 0.5

// plugDepth is how far the cavity solid extends below the base plane so
// the hollow subtraction cuts cleanly through the bottom instead of
// leaving coincident faces, mm.
const plugDepth = 2.0

// profileFor builds the 2D outline of one slice.
func profileFor(k kernel.Kernel, s curve.Slice) (kernel.Profile, error) {
	p, err := k.RoundedRect(2*s.HalfWidth, s.Depth, s.CornerRound)
	if err != nil {
		return nil, err
	}
	if s.FrontOffset != 0 {
		p = k.TranslateProfile(p, 0, s.FrontOffset)
	}
	return p, nil
}

// Loft sweeps the curve into a closed solid. All slice outlines go into
// a single kernel loft so the slice planes stay interior; the SDF
// representation closes the base and top automatically and the result is
// manifold by construction.
func Loft(k kernel.Kernel, c *curve.CrossSectionCurve) (kernel.Solid, error) {
	return loftFrom(k, c, 0)
}

// loftFrom builds the loft, optionally extending the base cross-section
// dropBase below the base plane.
func loftFrom(k kernel.Kernel, c *curve.CrossSectionCurve, dropBase float64) (kernel.Solid, error) {
	if len(c.Slices) < 2 {
		return nil, &keycap.DegenerateGeometryError{Stage: "loft", Detail: "fewer than 2 slices"}
	}

	profiles := make([]kernel.Profile, 0, len(c.Slices)+1)
	heights := make([]float64, 0, len(c.Slices)+1)
	if dropBase > 0 {
		p, err := profileFor(k, c.Slices[0])
		if err != nil {
			return nil, fmt.Errorf("loft slice 0: %w", err)
		}
		profiles = append(profiles, p)
		heights = append(heights, c.Slices[0].Z-dropBase)
	}
	for i, s := range c.Slices {
		if i > 0 {
			if dz := s.Z - c.Slices[i-1].Z; dz <= 0 {
				return nil, &keycap.DegenerateGeometryError{
					Stage:  "loft",
					Detail: fmt.Sprintf("slice %d has non-positive spacing %.4f", i-1, dz),
				}
			}
		}
		p, err := profileFor(k, s)
		if err != nil {
			return nil, fmt.Errorf("loft slice %d: %w", i, err)
		}
		profiles = append(profiles, p)
		heights = append(heights, s.Z)
	}

	solid, err := k.Loft(profiles, heights)
	if err != nil {
		return nil, fmt.Errorf("loft: %w", err)
	}
	return solid, nil
}

// Hollow computes the inner cavity solid for the given wall thickness.
// If the requested wall would collapse the cavity it is clamped to the
// maximum feasible value and a warning is returned; a cap too small for
// any positive wall is a degenerate-geometry error. The returned
// thickness is the one actually used.
func Hollow(k kernel.Kernel, c *curve.CrossSectionCurve, wall float64) (kernel.Solid, float64, *keycap.Warning, error) {
	if wall <= 0 {
		return nil, 0, nil, &keycap.DegenerateGeometryError{
			Stage:  "hollow",
			Detail: fmt.Sprintf("wall thickness %.3fmm must be positive", wall),
		}
	}

	// The cavity must keep a positive lateral extent and a ceiling.
	maxWall := c.MinHalfExtent() - minCavity
	if c.Height-minCavity < maxWall {
		maxWall = c.Height - minCavity
	}
	if maxWall <= 0 {
		return nil, 0, nil, &keycap.DegenerateGeometryError{
			Stage:  "hollow",
			Detail: fmt.Sprintf("no feasible wall thickness: thinnest section %.3fmm", c.MinHalfExtent()),
		}
	}

	used := wall
	var warn *keycap.Warning
	if wall > maxWall {
		used = maxWall
		warn = &keycap.Warning{
			Stage:   "hollow",
			Message: fmt.Sprintf("wall thickness %.2fmm infeasible, clamped to %.2fmm", wall, maxWall),
		}
	}

	// The cavity sweep starts plugDepth below the base plane so the
	// subtraction opens the underside without coincident surfaces.
	inner := c.Inset(used)
	cavity, err := loftFrom(k, inner, plugDepth)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("hollow: %w", err)
	}

	return cavity, used, warn, nil
}
