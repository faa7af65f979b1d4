// Package compose performs the boolean steps that produce the final cap
// solid: subtracting the cavity to realize the hollow wall and unioning
// the stem into the interior. Every result is tessellated and gated
// through the watertightness check; a failed gate is reported, never
// patched, since a silently repaired mesh risks invalid prints.
package compose

import (
	"fmt"

	"github.com/chazu/capwright/pkg/kernel"
	"github.com/chazu/capwright/pkg/keycap"
)

// Composite hollows the outer solid with the cavity solid and, when a
// stem is present, unions it into the interior. Returns the final solid
// plus its verified triangle mesh.
func Composite(k kernel.Kernel, outer, cavity, stem kernel.Solid) (kernel.Solid, *kernel.Mesh, error) {
	if outer == nil || cavity == nil {
		return nil, nil, &keycap.BooleanFailureError{Op: "difference", Detail: "missing operand"}
	}

	solid := k.Difference(outer, cavity)
	if stem != nil {
		solid = k.Union(solid, stem)
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, nil, &keycap.BooleanFailureError{Op: "tessellate", Detail: err.Error()}
	}
	if mesh.IsEmpty() {
		return nil, nil, &keycap.BooleanFailureError{Op: "difference", Detail: "result is empty"}
	}

	check := kernel.CheckSolid(mesh)
	if !check.Watertight() {
		return nil, nil, &keycap.BooleanFailureError{
			Op: "composite",
			Detail: fmt.Sprintf(
				"result not watertight: %d boundary, %d non-manifold, %d misoriented edges, volume %.3f",
				check.BoundaryEdges, check.NonManifoldEdges, check.MisorientedEdges, check.Volume),
		}
	}
	if stem != nil && check.Components != 1 {
		return nil, nil, &keycap.BooleanFailureError{
			Op:     "union",
			Detail: fmt.Sprintf("stem union produced %d components, want 1", check.Components),
		}
	}

	return solid, mesh, nil
}
