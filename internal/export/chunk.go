// Package export writes generated terrain to interchange formats: Wavefront
// OBJ for inspection in modelling tools and a compact binary chunk archive.
package export

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/terragen/internal/terrain"
	"github.com/Faultbox/terragen/pkg/math"
)

// Chunk format errors.
var (
	ErrInvalidMagic       = errors.New("invalid chunk magic: expected 'TCHK'")
	ErrUnsupportedVersion = errors.New("unsupported chunk version")
	ErrTruncated          = errors.New("truncated chunk data")
	ErrCorrupt            = errors.New("corrupt chunk data")
	ErrOutOfRange         = errors.New("chunk footprint out of encodable range")
)

const (
	chunkMagic        = "TCHK"
	chunkVersionMajor = 1
	chunkVersionMinor = 0
)

// chunkHeader is the fixed-size prefix of an encoded chunk after magic and version.
type chunkHeader struct {
	CX, CZ        int32
	MinX, MinZ    int32
	MaxX, MaxZ    int32
	VertexCount   uint32
	TriangleCount uint32
}

// EncodeChunk writes m in the TCHK binary layout (little-endian):
//
//	magic "TCHK", version major, minor (1 byte each)
//	cx, cz, minX, minZ, maxX, maxZ   int32
//	vertex count, triangle count     uint32
//	vertices                         3 x float32 each
//	triangles                        3 x uint32 each
func EncodeChunk(w io.Writer, m *terrain.ChunkMesh) error {
	r := m.Rect
	if r.MinX < 0 || r.MinZ < 0 || r.MaxX > terrain.MaxGridSize || r.MaxZ > terrain.MaxGridSize ||
		m.Coord.X < 0 || m.Coord.Z < 0 || m.Coord.X > terrain.MaxGridSize || m.Coord.Z > terrain.MaxGridSize {
		return fmt.Errorf("%w: chunk %v footprint %+v", ErrOutOfRange, m.Coord, r)
	}
	if _, err := io.WriteString(w, chunkMagic); err != nil {
		return err
	}
	if _, err := w.Write([]byte{chunkVersionMajor, chunkVersionMinor}); err != nil {
		return err
	}
	h := chunkHeader{
		CX:            int32(m.Coord.X),
		CZ:            int32(m.Coord.Z),
		MinX:          int32(m.Rect.MinX),
		MinZ:          int32(m.Rect.MinZ),
		MaxX:          int32(m.Rect.MaxX),
		MaxZ:          int32(m.Rect.MaxZ),
		VertexCount:   uint32(len(m.Vertices)),
		TriangleCount: uint32(len(m.Triangles)),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.Vertices); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, m.Triangles)
}

// DecodeChunk reads one chunk written by EncodeChunk. Counts are checked
// against the footprint and every index against the vertex count, so a chunk
// that decodes without error satisfies the mesh invariants.
func DecodeChunk(r io.Reader) (*terrain.ChunkMesh, error) {
	var prefix [6]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("%w: reading magic", ErrTruncated)
	}
	if string(prefix[:4]) != chunkMagic {
		return nil, ErrInvalidMagic
	}
	if prefix[4] != chunkVersionMajor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, prefix[4], prefix[5])
	}

	var h chunkHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncated)
	}

	rect := terrain.Rect{MinX: int(h.MinX), MinZ: int(h.MinZ), MaxX: int(h.MaxX), MaxZ: int(h.MaxZ)}
	if rect.Width() <= 0 || rect.Depth() <= 0 || h.CX < 0 || h.CZ < 0 {
		return nil, fmt.Errorf("%w: footprint %+v", ErrCorrupt, rect)
	}
	if uint64(h.VertexCount) != uint64(rect.Width()+1)*uint64(rect.Depth()+1) {
		return nil, fmt.Errorf("%w: %d vertices for footprint %+v", ErrCorrupt, h.VertexCount, rect)
	}
	if uint64(h.TriangleCount) != 2*uint64(rect.Width())*uint64(rect.Depth()) {
		return nil, fmt.Errorf("%w: %d triangles for footprint %+v", ErrCorrupt, h.TriangleCount, rect)
	}

	vertices, err := readSlice[math.Vec3](r, int(h.VertexCount))
	if err != nil {
		return nil, fmt.Errorf("%w: reading vertices", ErrTruncated)
	}
	triangles, err := readSlice[[3]uint32](r, int(h.TriangleCount))
	if err != nil {
		return nil, fmt.Errorf("%w: reading triangles", ErrTruncated)
	}
	for i, tri := range triangles {
		for _, idx := range tri {
			if idx >= h.VertexCount {
				return nil, fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrCorrupt, i, idx, h.VertexCount)
			}
		}
	}

	return &terrain.ChunkMesh{
		Coord:     terrain.ChunkCoord{X: int(h.CX), Z: int(h.CZ)},
		Rect:      rect,
		Vertices:  vertices,
		Triangles: triangles,
	}, nil
}

// readSlice reads n fixed-size values in batches so a corrupt count fails on
// EOF instead of allocating the whole claimed size up front.
func readSlice[T any](r io.Reader, n int) ([]T, error) {
	const batch = 4096
	out := make([]T, 0, min(n, batch))
	buf := make([]T, min(n, batch))
	for len(out) < n {
		b := buf[:min(batch, n-len(out))]
		if err := binary.Read(r, binary.LittleEndian, b); err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
