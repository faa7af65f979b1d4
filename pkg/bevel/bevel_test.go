package bevel

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/capwright/pkg/curve"
	"github.com/chazu/capwright/pkg/kernel"
	"github.com/chazu/capwright/pkg/kernel/sdfx"
	"github.com/chazu/capwright/pkg/keycap"
	"github.com/chazu/capwright/pkg/shell"
)

func testKernel() *sdfx.SdfxKernel {
	return sdfx.NewWithCells(64)
}

// capCurve returns a 1U Cherry R3 cross-section curve, the shape the
// bevel stage sees in practice.
func capCurve(t *testing.T) *curve.CrossSectionCurve {
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

func TestApplyZeroMatchesPlainLoft(t *testing.T) {
	k := testKernel()
	c := capCurve(t)

	plainSolid, err := shell.Loft(k, c)
	if err != nil {
		t.Fatalf("Loft: %v", err)
	}
	plain, err := k.ToMesh(plainSolid)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}

	zeroSolid, err := Apply(k, c, 0)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	zero, err := k.ToMesh(zeroSolid)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}

	// Radius 0 builds the same loft; the tessellation is deterministic.
	if plain.TriangleCount() != zero.TriangleCount() {
		t.Fatalf("radius 0 mesh has %d triangles, plain loft %d", zero.TriangleCount(), plain.TriangleCount())
	}
}

func TestApply(t *testing.T) {
	k := testKernel()
	c := capCurve(t)

	solid, err := Apply(k, c, 1)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	if ck := kernel.CheckSolid(mesh); !ck.Watertight() {
		t.Fatalf("beveled mesh not watertight: %+v", ck)
	}

	min, max := mesh.BoundingBox()
	// Nothing dips below the base plane and the overall extents stay put.
	if float64(min[2]) < -0.3 {
		t.Fatalf("beveled solid dips to z=%g below the base plane", min[2])
	}
	if math.Abs(float64(max[2])-c.Height) > 0.4 {
		t.Fatalf("top at %g, want about %g", max[2], c.Height)
	}
	if math.Abs(float64(max[0])-c.Footprint/2) > 0.4 {
		t.Fatalf("side at %g, want about %g", max[0], c.Footprint/2)
	}
}

func TestApplyRoundsEdges(t *testing.T) {
	k := testKernel()
	c := capCurve(t)

	plainSolid, err := shell.Loft(k, c)
	if err != nil {
		t.Fatalf("Loft: %v", err)
	}
	plain, err := k.ToMesh(plainSolid)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	roundedSolid, err := Apply(k, c, 1.5)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	rounded, err := k.ToMesh(roundedSolid)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}

	vPlain := kernel.CheckSolid(plain).Volume
	vRounded := kernel.CheckSolid(rounded).Volume
	// Rounding removes material from the edges, never adds it.
	if vRounded >= vPlain {
		t.Fatalf("rounded volume %.1f not below plain volume %.1f", vRounded, vPlain)
	}
	// A 1.5mm radius trims the rims, not half the cap.
	if vRounded < vPlain*0.7 {
		t.Fatalf("rounded volume %.1f lost too much of %.1f", vRounded, vPlain)
	}
}

func TestApplyKeepsBaseRim(t *testing.T) {
	k := testKernel()
	c := capCurve(t)

	solid, err := Apply(k, c, 1)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}

	// The footprint rim stays sharp: at the base plane the solid still
	// spans the full width instead of being rounded away.
	_, max := mesh.BoundingBox()
	spanNearBase := 0.0
	for i := 0; i < mesh.VertexCount(); i++ {
		if math.Abs(float64(mesh.Vertices[i*3+2])) < 0.3 {
			if w := math.Abs(float64(mesh.Vertices[i*3])); w > spanNearBase {
				spanNearBase = w
			}
		}
	}
	if spanNearBase < float64(max[0])-0.4 {
		t.Fatalf("base rim half width %.2f, want about the full %.2f", spanNearBase, max[0])
	}
}

func TestApplyInfeasibleRadius(t *testing.T) {
	k := testKernel()

	// A tiny sweep leaves no core once the radius is taken off it.
	tiny := &curve.CrossSectionCurve{
		Footprint: 2.4,
		BaseDepth: 2.4,
		Height:    3,
		Slices: []curve.Slice{
			{Z: 0, HalfWidth: 1.2, Depth: 2.4},
			{Z: 3, HalfWidth: 1.2, Depth: 2.4},
		},
	}
	_, err := Apply(k, tiny, 1)
	var degenerate *keycap.DegenerateGeometryError
	if !errors.As(err, &degenerate) {
		t.Fatalf("got %v, want a degenerate geometry error", err)
	}
}
