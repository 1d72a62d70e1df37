package terrain

import (
	"github.com/Faultbox/terragen/pkg/math"
)

// BuildChunk builds the grid mesh for the inclusive footprint r, which the
// caller has already clipped to the global grid.
//
// Vertices are appended row by row (z outer, x inner). Every vertex not on the
// far X or Z edge opens a quad made of two triangles:
//
//	(v, v+w+1, v+1) and (v+1, v+w+1, v+w+2)
//
// where w = r.Width(). With (b-a)x(c-a) face normals this winding points up.
func BuildChunk(field *HeightField, coord ChunkCoord, r Rect) *ChunkMesh {
	w := uint32(r.Width())
	heights := field.Heights(r)
	vertices := make([]math.Vec3, 0, r.VertexCount())
	triangles := make([][3]uint32, 0, 2*r.Width()*r.Depth())

	var v uint32
	for z := r.MinZ; z <= r.MaxZ; z++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			vertices = append(vertices, math.Vec3{
				X: float32(x),
				Y: float32(heights[z-r.MinZ][x-r.MinX]),
				Z: float32(z),
			})

			if x < r.MaxX && z < r.MaxZ {
				triangles = append(triangles,
					[3]uint32{v, v + w + 1, v + 1},
					[3]uint32{v + 1, v + w + 1, v + w + 2},
				)
			}
			v++
		}
	}

	return &ChunkMesh{
		Coord:     coord,
		Rect:      r,
		Vertices:  vertices,
		Triangles: triangles,
	}
}

// Width returns the number of quads along X.
func (m *ChunkMesh) Width() int { return m.Rect.Width() }

// Depth returns the number of quads along Z.
func (m *ChunkMesh) Depth() int { return m.Rect.Depth() }

// VertexCount returns the number of vertices owned by the chunk.
func (m *ChunkMesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles in the chunk.
func (m *ChunkMesh) TriangleCount() int { return len(m.Triangles) }

// GlobalCoord maps a local vertex index back to its global grid position.
func (m *ChunkMesh) GlobalCoord(local int) GridCoord {
	row := m.Rect.Width() + 1
	return GridCoord{
		X: m.Rect.MinX + local%row,
		Z: m.Rect.MinZ + local/row,
	}
}

// VertexAt returns the chunk's vertex at global grid position p.
func (m *ChunkMesh) VertexAt(p GridCoord) (math.Vec3, bool) {
	if !m.Rect.Contains(p) {
		return math.Vec3{}, false
	}
	i := (p.Z-m.Rect.MinZ)*(m.Rect.Width()+1) + (p.X - m.Rect.MinX)
	return m.Vertices[i], true
}

// PositionBuffer returns vertex positions as interleaved x, y, z floats.
func (m *ChunkMesh) PositionBuffer() []float32 {
	buf := make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		a := v.Array()
		buf = append(buf, a[:]...)
	}
	return buf
}

// IndexBuffer returns the triangle list flattened to three indices per triangle.
func (m *ChunkMesh) IndexBuffer() []uint32 {
	buf := make([]uint32, 0, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		buf = append(buf, t[0], t[1], t[2])
	}
	return buf
}

// Bounds returns the axis-aligned bounding box of the chunk's vertices.
func (m *ChunkMesh) Bounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b
}

// Normals computes per-vertex normals: the face normals of every incident
// triangle are summed and the result normalized.
// Renderers and colliders call this instead of storing normals in the chunk.
func (m *ChunkMesh) Normals() []math.Vec3 {
	normals := make([]math.Vec3, len(m.Vertices))
	for _, t := range m.Triangles {
		a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		face := b.Sub(a).Cross(c.Sub(a))
		normals[t[0]] = normals[t[0]].Add(face)
		normals[t[1]] = normals[t[1]].Add(face)
		normals[t[2]] = normals[t[2]].Add(face)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}
