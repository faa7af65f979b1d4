// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx today, other backends behind the same interface)
// provide solid modeling, boolean operations, surface offsetting and mesh
// extraction. The kernel abstraction allows swapping backends without
// changing the rest of the system.
package kernel

// Profile is an opaque handle to a closed 2D outline in the XY plane.
// Profiles are the input to the loft and extrude sweeps.
type Profile interface{}

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// RoundedRect creates a width x depth outline centered at the origin
	// with the given corner radius (0 = sharp corners).
	RoundedRect(width, depth, round float64) (Profile, error)
	// Polygon creates a closed outline from vertices in counter-clockwise
	// order, given as (x, y) pairs.
	Polygon(points [][2]float64) (Profile, error)
	// TranslateProfile moves an outline by (x, y).
	TranslateProfile(p Profile, x, y float64) Profile

	// Primitives. Box is centered at the origin; Cylinder runs along Z
	// and is centered at the origin.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Sweeps. Extrude places the bottom of the swept solid at z=0. Loft
	// sweeps one solid through all the outlines, stationed at the given
	// strictly ascending heights.
	Extrude(p Profile, height float64) Solid
	Loft(profiles []Profile, heights []float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	// RotateZ rotates a solid around the Z axis by the given angle in
	// radians.
	RotateZ(s Solid, angle float64) Solid
	// MirrorZ reflects a solid through the z=0 plane.
	MirrorZ(s Solid) Solid

	// Offset grows (distance > 0) or shrinks (distance < 0) the solid's
	// surface by the given distance. Shrink-then-grow with the same
	// distance rounds convex edges; the bevel stage is built on this.
	Offset(s Solid, distance float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
