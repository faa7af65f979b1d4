// Package curve turns a profile definition plus a width parameter into a
// concrete cross-section curve: the ordered stack of slice outlines the
// shell lofter sweeps into a solid.
package curve

import (
	"fmt"

	"github.com/chazu/capwright/pkg/keycap"
)

// sliceCount is the number of stations the control samples are
// interpolated into. Fixed so that varying width or profile never changes
// the loft topology, only the slice dimensions.
const sliceCount = 17

// cornerRound is the nominal outline corner radius. It shrinks where a
// slice gets too thin to carry it.
const cornerRound = 0.75

// clampRound keeps a corner radius buildable on a hw x depth outline.
func clampRound(round, hw, depth float64) float64 {
	limit := hw
	if depth/2 < limit {
		limit = depth / 2
	}
	limit *= 0.45
	if round > limit {
		return limit
	}
	return round
}

// Slice is one horizontal station of the sweep.
type Slice struct {
	Z           float64 // mm above the base plane
	HalfWidth   float64 // x half-extent, mm
	Depth       float64 // y extent, mm
	FrontOffset float64 // y center shift from the front taper, mm
	CornerRound float64 // outline corner radius, mm
}

// CrossSectionCurve is the full sweep description for one cap.
type CrossSectionCurve struct {
	Footprint float64 // base x extent, mm
	BaseDepth float64 // base y extent, mm
	Height    float64 // cap height, mm
	Slices    []Slice // ascending Z, first at 0, last at Height
}

// Build derives the cross-section curve for a profile definition at the
// given width. Interpolation between control samples is a clamped
// Catmull-Rom spline so small parameter changes produce small curve
// changes and the vertical sweep has no faceting artifacts.
func Build(def keycap.ProfileDefinition, width keycap.Width) (*CrossSectionCurve, error) {
	if len(def.Samples) < 2 {
		return nil, &keycap.InvalidProfileError{
			Family: def.Family, Row: def.Row,
			Detail: fmt.Sprintf("%d control samples, need at least 2", len(def.Samples)),
		}
	}
	if def.CapHeight <= 0 {
		return nil, &keycap.InvalidProfileError{
			Family: def.Family, Row: def.Row,
			Detail: fmt.Sprintf("cap height %.3f must be positive", def.CapHeight),
		}
	}

	footprint := width.Footprint()
	c := &CrossSectionCurve{
		Footprint: footprint,
		BaseDepth: keycap.CapDepth,
		Height:    def.CapHeight,
		Slices:    make([]Slice, sliceCount),
	}

	for i := 0; i < sliceCount; i++ {
		t := float64(i) / float64(sliceCount-1)
		inset := interpolate(def.Samples, t, func(s keycap.ControlSample) float64 { return s.Inset })
		taper := interpolate(def.Samples, t, func(s keycap.ControlSample) float64 { return s.Taper })

		hw := footprint/2 - inset
		depth := keycap.CapDepth - taper
		if hw <= 0 || depth <= 0 {
			return nil, &keycap.InvalidProfileError{
				Family: def.Family, Row: def.Row,
				Detail: fmt.Sprintf("profile collapses at height %.2f (half width %.3f, depth %.3f)", t, hw, depth),
			}
		}
		c.Slices[i] = Slice{
			Z:           t * def.CapHeight,
			HalfWidth:   hw,
			Depth:       depth,
			FrontOffset: taper / 2, // only the front face pulls in
			CornerRound: clampRound(cornerRound, hw, depth),
		}
	}
	return c, nil
}

// Inset returns a copy of the curve pulled inward for the cavity: each
// slice shrinks by wall on every side and the sweep stops one wall below
// the top so the cap keeps a ceiling.
func (c *CrossSectionCurve) Inset(wall float64) *CrossSectionCurve {
	innerHeight := c.Height - wall
	out := &CrossSectionCurve{
		Footprint: c.Footprint - 2*wall,
		BaseDepth: c.BaseDepth - 2*wall,
		Height:    innerHeight,
		Slices:    make([]Slice, len(c.Slices)),
	}
	for i, s := range c.Slices {
		hw := s.HalfWidth - wall
		depth := s.Depth - 2*wall
		out.Slices[i] = Slice{
			Z:           s.Z * innerHeight / c.Height,
			HalfWidth:   hw,
			Depth:       depth,
			FrontOffset: s.FrontOffset,
			CornerRound: clampRound(s.CornerRound, hw, depth),
		}
	}
	return out
}

// MinHalfExtent returns the smallest lateral half-dimension across the
// sweep. It bounds how far the curve can be inset before collapsing.
func (c *CrossSectionCurve) MinHalfExtent() float64 {
	min := c.Slices[0].HalfWidth
	for _, s := range c.Slices {
		if s.HalfWidth < min {
			min = s.HalfWidth
		}
		if s.Depth/2 < min {
			min = s.Depth / 2
		}
	}
	return min
}

// interpolate evaluates a clamped Catmull-Rom spline through the control
// samples at height fraction t, reading one field per sample.
func interpolate(samples []keycap.ControlSample, t float64, field func(keycap.ControlSample) float64) float64 {
	n := len(samples)
	if t <= samples[0].Height {
		return field(samples[0])
	}
	if t >= samples[n-1].Height {
		return field(samples[n-1])
	}

	// Find the segment containing t.
	seg := 0
	for seg < n-2 && samples[seg+1].Height <= t {
		seg++
	}

	x1 := samples[seg].Height
	x2 := samples[seg+1].Height
	y1 := field(samples[seg])
	y2 := field(samples[seg+1])

	// Endpoint tangents are clamped to the boundary segment slope.
	y0, x0 := y1, x1-(x2-x1)
	if seg > 0 {
		x0 = samples[seg-1].Height
		y0 = field(samples[seg-1])
	} else {
		y0 = y1 - (y2 - y1)
	}
	y3, x3 := y2, x2+(x2-x1)
	if seg < n-2 {
		x3 = samples[seg+2].Height
		y3 = field(samples[seg+2])
	} else {
		y3 = y2 + (y2 - y1)
	}

	// Non-uniform Catmull-Rom tangents (finite differences over the
	// neighbor spacing), evaluated as a cubic Hermite segment.
	h := x2 - x1
	m1 := h * (y2 - y0) / (x2 - x0)
	m2 := h * (y3 - y1) / (x3 - x1)

	u := (t - x1) / h
	u2 := u * u
	u3 := u2 * u
	return (2*u3-3*u2+1)*y1 + (u3-2*u2+u)*m1 + (-2*u3+3*u2)*y2 + (u3-u2)*m2
}
