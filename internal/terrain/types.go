// Package terrain generates heightmap terrain from fractal noise and splits it
// into independently owned chunk meshes.
package terrain

import (
	"fmt"

	"github.com/Faultbox/terragen/pkg/math"
)

// GridCoord is a vertex position in the global grid, 0 <= X <= XSize, 0 <= Z <= ZSize.
type GridCoord struct {
	X, Z int
}

// ChunkCoord addresses a chunk, 0 <= X < NumChunksX, 0 <= Z < NumChunksZ.
type ChunkCoord struct {
	X int `json:"cx"`
	Z int `json:"cz"`
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Rect is an inclusive rectangle of grid coordinates.
type Rect struct {
	MinX, MinZ int
	MaxX, MaxZ int
}

// Width returns the number of quads along X.
func (r Rect) Width() int { return r.MaxX - r.MinX }

// Depth returns the number of quads along Z.
func (r Rect) Depth() int { return r.MaxZ - r.MinZ }

// VertexCount returns (Width+1) * (Depth+1).
func (r Rect) VertexCount() int { return (r.Width() + 1) * (r.Depth() + 1) }

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p GridCoord) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Z >= r.MinZ && p.Z <= r.MaxZ
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// ChunkMesh is the geometry of one chunk. Vertices are in row-major order over
// the chunk's footprint; triangles index into Vertices.
// A ChunkMesh is never mutated after it is built.
type ChunkMesh struct {
	Coord     ChunkCoord
	Rect      Rect
	Vertices  []math.Vec3
	Triangles [][3]uint32
}
