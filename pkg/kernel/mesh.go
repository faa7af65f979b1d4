package kernel

import (
	"github.com/chewxy/math32"
)

// Mesh is a triangle mesh suitable for rendering and export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which keycap this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// BoundingBox returns the axis-aligned bounding box of the mesh.
// Returns zero boxes for empty meshes.
func (m *Mesh) BoundingBox() (min, max [3]float32) {
	if m.IsEmpty() {
		return min, max
	}
	min = [3]float32{m.Vertices[0], m.Vertices[1], m.Vertices[2]}
	max = min
	for i := 3; i+2 < len(m.Vertices); i += 3 {
		for j := 0; j < 3; j++ {
			min[j] = math32.Min(min[j], m.Vertices[i+j])
			max[j] = math32.Max(max[j], m.Vertices[i+j])
		}
	}
	return min, max
}

// Clone returns a deep copy of the mesh. Baked results are clones so the
// pipeline caches can be discarded without aliasing.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{Name: m.Name}
	if m.Vertices != nil {
		c.Vertices = make([]float32, len(m.Vertices))
		copy(c.Vertices, m.Vertices)
	}
	if m.Normals != nil {
		c.Normals = make([]float32, len(m.Normals))
		copy(c.Normals, m.Normals)
	}
	if m.Indices != nil {
		c.Indices = make([]uint32, len(m.Indices))
		copy(c.Indices, m.Indices)
	}
	return c
}

// RecomputeNormals replaces the normal array with area-weighted vertex
// normals derived from the triangle faces.
func (m *Mesh) RecomputeNormals() {
	normals := make([]float32, len(m.Vertices))
	for t := 0; t < m.TriangleCount(); t++ {
		i0 := m.Indices[t*3+0]
		i1 := m.Indices[t*3+1]
		i2 := m.Indices[t*3+2]

		e1x := m.Vertices[i1*3+0] - m.Vertices[i0*3+0]
		e1y := m.Vertices[i1*3+1] - m.Vertices[i0*3+1]
		e1z := m.Vertices[i1*3+2] - m.Vertices[i0*3+2]
		e2x := m.Vertices[i2*3+0] - m.Vertices[i0*3+0]
		e2y := m.Vertices[i2*3+1] - m.Vertices[i0*3+1]
		e2z := m.Vertices[i2*3+2] - m.Vertices[i0*3+2]

		// Unnormalized cross product: length is twice the triangle area,
		// so accumulation is area-weighted.
		nx := e1y*e2z - e1z*e2y
		ny := e1z*e2x - e1x*e2z
		nz := e1x*e2y - e1y*e2x

		for _, idx := range [3]uint32{i0, i1, i2} {
			normals[idx*3+0] += nx
			normals[idx*3+1] += ny
			normals[idx*3+2] += nz
		}
	}

	for i := 0; i < len(normals); i += 3 {
		l := math32.Sqrt(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2])
		if l > 1e-12 {
			normals[i] /= l
			normals[i+1] /= l
			normals[i+2] /= l
		}
	}
	m.Normals = normals
}
