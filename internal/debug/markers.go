// Package debug provides debug visualization geometry for generated terrain.
package debug

import (
	"iter"

	"github.com/Faultbox/terragen/internal/terrain"
	"github.com/Faultbox/terragen/pkg/math"
)

// LineVertex is one end of a debug line segment.
type LineVertex struct {
	X, Y, Z float32 // Position
	R, G, B float32 // Color
}

var (
	markerColor = [3]float32{1.0, 0.8, 0.0}
	borderColor = [3]float32{0.9, 0.1, 0.1}
)

// VertexMarkers builds a line list with a small three-axis cross centred on
// every position in vertices. size is the full length of each arm; values
// <= 0 produce nothing. Six LineVertex values are emitted per position.
func VertexMarkers(vertices iter.Seq[math.Vec3], size float32) []LineVertex {
	if size <= 0 {
		return nil
	}
	h := size / 2

	var out []LineVertex
	for v := range vertices {
		out = append(out,
			line(v.Add(math.Vec3{X: -h}), markerColor),
			line(v.Add(math.Vec3{X: h}), markerColor),
			line(v.Add(math.Vec3{Y: -h}), markerColor),
			line(v.Add(math.Vec3{Y: h}), markerColor),
			line(v.Add(math.Vec3{Z: -h}), markerColor),
			line(v.Add(math.Vec3{Z: h}), markerColor),
		)
	}
	return out
}

// ChunkBorders builds a line list outlining every chunk footprint at a fixed
// height, so chunk seams can be inspected over the rendered terrain.
func ChunkBorders(t *terrain.Terrain, height float32) []LineVertex {
	var out []LineVertex
	for _, c := range t.Chunks() {
		x0, z0 := float32(c.Rect.MinX), float32(c.Rect.MinZ)
		x1, z1 := float32(c.Rect.MaxX), float32(c.Rect.MaxZ)

		corners := [4]math.Vec3{
			{X: x0, Y: height, Z: z0},
			{X: x1, Y: height, Z: z0},
			{X: x1, Y: height, Z: z1},
			{X: x0, Y: height, Z: z1},
		}
		for i := range corners {
			out = append(out,
				line(corners[i], borderColor),
				line(corners[(i+1)%len(corners)], borderColor),
			)
		}
	}
	return out
}

func line(p math.Vec3, color [3]float32) LineVertex {
	return LineVertex{p.X, p.Y, p.Z, color[0], color[1], color[2]}
}
