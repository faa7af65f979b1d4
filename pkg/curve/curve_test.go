package curve

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/capwright/pkg/keycap"
)

func cherryR3(t *testing.T) keycap.ProfileDefinition {
	t.Helper()
	def, err := keycap.DefaultTable().Lookup(keycap.FamilyCherry, keycap.RowR3)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	return def
}

func TestBuild(t *testing.T) {
	c, err := Build(cherryR3(t), keycap.Width1U)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if c.Footprint != 18.0 {
		t.Fatalf("footprint = %g, want 18.0", c.Footprint)
	}
	if c.Height != 8.5 {
		t.Fatalf("height = %g, want 8.5", c.Height)
	}
	if len(c.Slices) != 17 {
		t.Fatalf("slice count = %d, want 17", len(c.Slices))
	}

	base := c.Slices[0]
	if base.Z != 0 || base.HalfWidth != 9.0 || base.Depth != 18.0 || base.FrontOffset != 0 {
		t.Fatalf("base slice = %+v, want full footprint at z=0", base)
	}

	top := c.Slices[len(c.Slices)-1]
	if math.Abs(top.Z-8.5) > 1e-9 {
		t.Fatalf("top slice z = %g, want 8.5", top.Z)
	}
	if math.Abs(top.HalfWidth-(9.0-2.75)) > 1e-9 {
		t.Fatalf("top half width = %g, want %g", top.HalfWidth, 9.0-2.75)
	}
	if math.Abs(top.Depth-(18.0-3.4)) > 1e-9 {
		t.Fatalf("top depth = %g, want %g", top.Depth, 18.0-3.4)
	}
	if math.Abs(top.FrontOffset-1.7) > 1e-9 {
		t.Fatalf("top front offset = %g, want 1.7", top.FrontOffset)
	}
	for i, s := range c.Slices {
		if s.CornerRound <= 0 || s.CornerRound > s.HalfWidth {
			t.Fatalf("slice %d corner round = %g for half width %g", i, s.CornerRound, s.HalfWidth)
		}
	}
}

func TestBuildMonotonic(t *testing.T) {
	for _, fam := range []keycap.Family{keycap.FamilyCherry, keycap.FamilyOEM, keycap.FamilySA} {
		for _, row := range []keycap.Row{keycap.RowR1, keycap.RowR2, keycap.RowR3, keycap.RowR4} {
			def, err := keycap.DefaultTable().Lookup(fam, row)
			if err != nil {
				t.Fatalf("Lookup(%v, %v): %v", fam, row, err)
			}
			c, err := Build(def, keycap.Width1U)
			if err != nil {
				t.Fatalf("Build(%v, %v): %v", fam, row, err)
			}
			for i := 1; i < len(c.Slices); i++ {
				if c.Slices[i].Z <= c.Slices[i-1].Z {
					t.Fatalf("%v %v: slice %d z %g not above %g",
						fam, row, i, c.Slices[i].Z, c.Slices[i-1].Z)
				}
				if c.Slices[i].HalfWidth <= 0 || c.Slices[i].Depth <= 0 {
					t.Fatalf("%v %v: slice %d collapsed: %+v", fam, row, i, c.Slices[i])
				}
			}
		}
	}
}

func TestBuildWide(t *testing.T) {
	c, err := Build(cherryR3(t), keycap.Width2_25U)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := 18.0 + 1.25*19.05
	if math.Abs(c.Footprint-want) > 1e-9 {
		t.Fatalf("footprint = %g, want %g", c.Footprint, want)
	}
	// Depth never tracks width.
	if c.BaseDepth != 18.0 {
		t.Fatalf("base depth = %g, want 18.0", c.BaseDepth)
	}
	if math.Abs(c.Slices[0].HalfWidth-want/2) > 1e-9 {
		t.Fatalf("base half width = %g, want %g", c.Slices[0].HalfWidth, want/2)
	}
}

func TestBuildRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name string
		def  keycap.ProfileDefinition
	}{
		{"one sample", keycap.ProfileDefinition{
			Family: keycap.FamilyCherry, Row: keycap.RowR1, CapHeight: 9,
			Samples: []keycap.ControlSample{{Height: 0}},
		}},
		{"zero height", keycap.ProfileDefinition{
			Family: keycap.FamilyCherry, Row: keycap.RowR1, CapHeight: 0,
			Samples: []keycap.ControlSample{{Height: 0}, {Height: 1}},
		}},
		{"collapses", keycap.ProfileDefinition{
			Family: keycap.FamilyCherry, Row: keycap.RowR1, CapHeight: 9,
			Samples: []keycap.ControlSample{{Height: 0}, {Height: 1, Inset: 9.5}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.def, keycap.Width1U)
			var ipe *keycap.InvalidProfileError
			if !errors.As(err, &ipe) {
				t.Fatalf("error = %v (%T), want *InvalidProfileError", err, err)
			}
		})
	}
}

func TestInterpolateContinuity(t *testing.T) {
	// Neighboring slices must stay close: the spline may overshoot the
	// raw control polygon slightly but never jump.
	c, err := Build(cherryR3(t), keycap.Width1U)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 1; i < len(c.Slices); i++ {
		if d := math.Abs(c.Slices[i].HalfWidth - c.Slices[i-1].HalfWidth); d > 1.0 {
			t.Fatalf("half width jumps %g between slices %d and %d", d, i-1, i)
		}
		if d := math.Abs(c.Slices[i].Depth - c.Slices[i-1].Depth); d > 1.0 {
			t.Fatalf("depth jumps %g between slices %d and %d", d, i-1, i)
		}
	}
}

func TestInset(t *testing.T) {
	c, err := Build(cherryR3(t), keycap.Width1U)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	in := c.Inset(1.0)

	if math.Abs(in.Height-(c.Height-1.0)) > 1e-9 {
		t.Fatalf("inset height = %g, want %g", in.Height, c.Height-1.0)
	}
	if math.Abs(in.Footprint-(c.Footprint-2.0)) > 1e-9 {
		t.Fatalf("inset footprint = %g, want %g", in.Footprint, c.Footprint-2.0)
	}
	for i := range in.Slices {
		if math.Abs(in.Slices[i].HalfWidth-(c.Slices[i].HalfWidth-1.0)) > 1e-9 {
			t.Fatalf("slice %d half width = %g, want %g",
				i, in.Slices[i].HalfWidth, c.Slices[i].HalfWidth-1.0)
		}
		if math.Abs(in.Slices[i].Depth-(c.Slices[i].Depth-2.0)) > 1e-9 {
			t.Fatalf("slice %d depth = %g, want %g",
				i, in.Slices[i].Depth, c.Slices[i].Depth-2.0)
		}
	}
	last := in.Slices[len(in.Slices)-1]
	if math.Abs(last.Z-in.Height) > 1e-9 {
		t.Fatalf("inset top z = %g, want %g", last.Z, in.Height)
	}

	// The original is untouched.
	if c.Slices[0].HalfWidth != 9.0 {
		t.Fatal("Inset mutated the source curve")
	}
}

func TestMinHalfExtent(t *testing.T) {
	c, err := Build(cherryR3(t), keycap.Width1U)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Narrowest at the top: half width 9 - 2.75.
	if got, want := c.MinHalfExtent(), 9.0-2.75; math.Abs(got-want) > 0.2 {
		t.Fatalf("MinHalfExtent = %g, want about %g", got, want)
	}
}
