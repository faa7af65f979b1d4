// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/capwright/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// sdfxProfile wraps an sdf.SDF2 to implement kernel.Profile.
type sdfxProfile struct {
	s sdf.SDF2
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel at the default tessellation resolution.
func New() *SdfxKernel {
	return &SdfxKernel{cells: defaultMeshCells}
}

// NewWithCells returns a kernel using the given marching cubes cell count.
// Tests use a coarse count to keep geometry suites fast.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// unwrap2 extracts the underlying sdf.SDF2 from a kernel.Profile.
func unwrap2(p kernel.Profile) sdf.SDF2 {
	return p.(*sdfxProfile).s
}

// RoundedRect creates a centered rectangle outline with rounded corners.
// sdf.Box2D accepts any inputs, so the size and round are checked here.
func (k *SdfxKernel) RoundedRect(width, depth, round float64) (kernel.Profile, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("rounded rect: size %gx%g must be positive", width, depth)
	}
	if round < 0 {
		return nil, fmt.Errorf("rounded rect: corner round %g must not be negative", round)
	}
	if limit := math.Min(width, depth) / 2; round > limit {
		return nil, fmt.Errorf("rounded rect: corner round %g exceeds %g for a %gx%g outline", round, limit, width, depth)
	}
	return &sdfxProfile{s: sdf.Box2D(v2.Vec{X: width, Y: depth}, round)}, nil
}

// Polygon creates a closed outline from counter-clockwise (x, y) pairs.
func (k *SdfxKernel) Polygon(points [][2]float64) (kernel.Profile, error) {
	verts := make([]v2.Vec, len(points))
	for i, p := range points {
		verts[i] = v2.Vec{X: p[0], Y: p[1]}
	}
	s, err := sdf.Polygon2D(verts)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	return &sdfxProfile{s: s}, nil
}

// TranslateProfile moves an outline by (x, y).
func (k *SdfxKernel) TranslateProfile(p kernel.Profile, x, y float64) kernel.Profile {
	m := sdf.Translate2d(v2.Vec{X: x, Y: y})
	return &sdfxProfile{s: sdf.Transform2D(unwrap2(p), m)}
}

// Box creates a box with the given dimensions, centered at the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a cylinder with the given height and radius.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Extrude sweeps an outline straight up. sdf.Extrude3D centers the result
// on the origin, so the solid is shifted to put its base at z=0.
func (k *SdfxKernel) Extrude(p kernel.Profile, height float64) kernel.Solid {
	s := sdf.Extrude3D(unwrap2(p), height)
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Loft sweeps one solid through the outlines stationed at the given
// ascending heights. The whole sweep is a single field, so the station
// planes never show up as surfaces inside the solid; a union of
// per-segment lofts would leave zero-level membranes at the shared
// planes, which marching cubes tessellates as non-manifold sheets.
func (k *SdfxKernel) Loft(profiles []kernel.Profile, heights []float64) (kernel.Solid, error) {
	if len(profiles) != len(heights) {
		return nil, fmt.Errorf("loft: %d profiles for %d heights", len(profiles), len(heights))
	}
	if len(profiles) < 2 {
		return nil, fmt.Errorf("loft: need at least 2 stations, got %d", len(profiles))
	}
	for i := 1; i < len(heights); i++ {
		if heights[i] <= heights[i-1] {
			return nil, fmt.Errorf("loft: station heights must ascend, got %g then %g", heights[i-1], heights[i])
		}
	}
	ps := make([]sdf.SDF2, len(profiles))
	for i, p := range profiles {
		ps[i] = unwrap2(p)
	}
	return wrap(newLoftStack(ps, heights)), nil
}

// loftStack is an SDF3 sweeping through a stack of 2D outlines. Between
// consecutive stations the 2D distances are interpolated linearly, the
// same construction sdf.Loft3D uses for a single pair.
type loftStack struct {
	profiles []sdf.SDF2
	heights  []float64
	bb       sdf.Box3
}

func newLoftStack(profiles []sdf.SDF2, heights []float64) *loftStack {
	b := profiles[0].BoundingBox()
	minX, minY := b.Min.X, b.Min.Y
	maxX, maxY := b.Max.X, b.Max.Y
	for _, p := range profiles[1:] {
		b = p.BoundingBox()
		minX = math.Min(minX, b.Min.X)
		minY = math.Min(minY, b.Min.Y)
		maxX = math.Max(maxX, b.Max.X)
		maxY = math.Max(maxY, b.Max.Y)
	}
	return &loftStack{
		profiles: profiles,
		heights:  heights,
		bb: sdf.Box3{
			Min: v3.Vec{X: minX, Y: minY, Z: heights[0]},
			Max: v3.Vec{X: maxX, Y: maxY, Z: heights[len(heights)-1]},
		},
	}
}

// Evaluate returns the signed distance to the swept solid.
func (s *loftStack) Evaluate(p v3.Vec) float64 {
	n := len(s.heights)
	z0, z1 := s.heights[0], s.heights[n-1]

	zc := p.Z
	if zc < z0 {
		zc = z0
	}
	if zc > z1 {
		zc = z1
	}
	seg := 0
	for seg < n-2 && s.heights[seg+1] < zc {
		seg++
	}
	h0, h1 := s.heights[seg], s.heights[seg+1]
	t := (zc - h0) / (h1 - h0)
	q := v2.Vec{X: p.X, Y: p.Y}
	d2 := (1-t)*s.profiles[seg].Evaluate(q) + t*s.profiles[seg+1].Evaluate(q)

	dz := z0 - p.Z
	if d := p.Z - z1; d > dz {
		dz = d
	}

	// Euclidean combination outside the solid keeps the field close to a
	// true distance near the rims, so Offset rounds them instead of
	// keeping them sharp.
	od, oz := math.Max(d2, 0), math.Max(dz, 0)
	outside := math.Sqrt(od*od + oz*oz)
	inside := math.Min(math.Max(d2, dz), 0)
	return outside + inside
}

// BoundingBox returns the bounding box of the sweep.
func (s *loftStack) BoundingBox() sdf.Box3 {
	return s.bb
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// RotateZ rotates a solid around the Z axis.
func (k *SdfxKernel) RotateZ(s kernel.Solid, angle float64) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.RotateZ(angle)))
}

// MirrorZ reflects a solid through the z=0 plane.
func (k *SdfxKernel) MirrorZ(s kernel.Solid) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.MirrorXY()))
}

// Offset grows or shrinks the solid surface by the given distance.
func (k *SdfxKernel) Offset(s kernel.Solid, distance float64) kernel.Solid {
	return wrap(sdf.Offset3D(unwrap(s), distance))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
