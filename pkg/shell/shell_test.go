package shell

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/capwright/pkg/curve"
	"github.com/chazu/capwright/pkg/kernel"
	"github.com/chazu/capwright/pkg/kernel/sdfx"
	"github.com/chazu/capwright/pkg/keycap"
)

func testKernel() *sdfx.SdfxKernel {
	return sdfx.NewWithCells(64)
}

func buildCurve(t *testing.T) *curve.CrossSectionCurve {
	t.Helper()
	def, err := keycap.DefaultTable().Lookup(keycap.FamilyCherry, keycap.RowR3)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	c, err := curve.Build(def, keycap.Width1U)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

func TestLoft(t *testing.T) {
	k := testKernel()
	c := buildCurve(t)

	solid, err := Loft(k, c)
	if err != nil {
		t.Fatalf("Loft: %v", err)
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}

	min, max := mesh.BoundingBox()
	if math.Abs(float64(min[0]+9)) > 0.5 || math.Abs(float64(max[0]-9)) > 0.5 {
		t.Fatalf("x extent [%g, %g], want about [-9, 9]", min[0], max[0])
	}
	if math.Abs(float64(min[2])) > 0.5 || math.Abs(float64(max[2]-8.5)) > 0.5 {
		t.Fatalf("z extent [%g, %g], want about [0, 8.5]", min[2], max[2])
	}

	if c := kernel.CheckSolid(mesh); !c.Watertight() {
		t.Fatalf("lofted shell not watertight: %+v", c)
	}
}

func TestLoftFrontTaper(t *testing.T) {
	k := testKernel()
	c := buildCurve(t)

	solid, err := Loft(k, c)
	if err != nil {
		t.Fatalf("Loft: %v", err)
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}

	// The taper pulls in the front face (negative y) only; the back face
	// stays on the footprint plane the whole way up.
	min, max := mesh.BoundingBox()
	if math.Abs(float64(max[1]-9)) > 0.5 {
		t.Fatalf("back extent %g, want about 9", max[1])
	}
	if math.Abs(float64(min[1]+9)) > 0.5 {
		t.Fatalf("front base extent %g, want about -9", min[1])
	}
}

func TestLoftTooFewSlices(t *testing.T) {
	k := testKernel()
	c := &curve.CrossSectionCurve{
		Footprint: 18, BaseDepth: 18, Height: 8,
		Slices: []curve.Slice{{Z: 0, HalfWidth: 9, Depth: 18}},
	}
	_, err := Loft(k, c)
	var dge *keycap.DegenerateGeometryError
	if !errors.As(err, &dge) {
		t.Fatalf("error = %v (%T), want *DegenerateGeometryError", err, err)
	}
}

func TestHollow(t *testing.T) {
	k := testKernel()
	c := buildCurve(t)

	cavity, used, warn, err := Hollow(k, c, keycap.DefaultWall)
	if err != nil {
		t.Fatalf("Hollow: %v", err)
	}
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn)
	}
	if used != keycap.DefaultWall {
		t.Fatalf("used wall = %g, want %g", used, keycap.DefaultWall)
	}

	mesh, err := k.ToMesh(cavity)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	min, max := mesh.BoundingBox()
	// The cavity dips below the base plane and stops one wall under the top.
	if float64(min[2]) > -1 {
		t.Fatalf("cavity bottom %g, want below base plane", min[2])
	}
	wantTop := c.Height - keycap.DefaultWall
	if math.Abs(float64(max[2])-wantTop) > 0.5 {
		t.Fatalf("cavity top %g, want about %g", max[2], wantTop)
	}
	// Narrower than the shell by one wall per side.
	if math.Abs(float64(max[0])-(9-keycap.DefaultWall)) > 0.5 {
		t.Fatalf("cavity half width %g, want about %g", max[0], 9-keycap.DefaultWall)
	}
}

func TestHollowClampsWall(t *testing.T) {
	k := testKernel()
	c := buildCurve(t)

	cavity, used, warn, err := Hollow(k, c, 50)
	if err != nil {
		t.Fatalf("Hollow: %v", err)
	}
	if cavity == nil {
		t.Fatal("cavity is nil")
	}
	if warn == nil {
		t.Fatal("expected a clamp warning")
	}
	if warn.Stage != "hollow" {
		t.Fatalf("warning stage = %q, want \"hollow\"", warn.Stage)
	}
	if used >= 50 || used <= 0 {
		t.Fatalf("used wall = %g, want clamped to a feasible value", used)
	}
}

func TestHollowInfeasible(t *testing.T) {
	k := testKernel()
	// A cap too flat to keep any ceiling.
	c := &curve.CrossSectionCurve{
		Footprint: 18, BaseDepth: 18, Height: 0.4,
		Slices: []curve.Slice{
			{Z: 0, HalfWidth: 9, Depth: 18},
			{Z: 0.4, HalfWidth: 9, Depth: 18},
		},
	}
	_, _, _, err := Hollow(k, c, 0.91)
	var dge *keycap.DegenerateGeometryError
	if !errors.As(err, &dge) {
		t.Fatalf("error = %v (%T), want *DegenerateGeometryError", err, err)
	}
}

func TestHollowRejectsNonPositiveWall(t *testing.T) {
	k := testKernel()
	c := buildCurve(t)
	if _, _, _, err := Hollow(k, c, 0); err == nil {
		t.Fatal("expected error for zero wall")
	}
	if _, _, _, err := Hollow(k, c, -1); err == nil {
		t.Fatal("expected error for negative wall")
	}
}
