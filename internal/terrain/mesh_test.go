package terrain

import (
	"testing"
)

func newTestField(t *testing.T, cfg Config) *HeightField {
	t.Helper()
	field, err := NewHeightField(cfg)
	if err != nil {
		t.Fatalf("NewHeightField: %v", err)
	}
	return field
}

func TestBuildChunkCounts(t *testing.T) {
	field := newTestField(t, DefaultConfig())

	tests := []struct {
		name string
		r    Rect
	}{
		{"square", Rect{MinX: 0, MinZ: 0, MaxX: 10, MaxZ: 10}},
		{"offset", Rect{MinX: 50, MinZ: 100, MaxX: 60, MaxZ: 104}},
		{"single quad", Rect{MinX: 7, MinZ: 7, MaxX: 8, MaxZ: 8}},
		{"strip", Rect{MinX: 0, MinZ: 3, MaxX: 17, MaxZ: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildChunk(field, ChunkCoord{}, tt.r)

			if m.Width() != tt.r.Width() || m.Depth() != tt.r.Depth() {
				t.Errorf("expected %dx%d quads, got %dx%d", tt.r.Width(), tt.r.Depth(), m.Width(), m.Depth())
			}
			wantVerts := (tt.r.Width() + 1) * (tt.r.Depth() + 1)
			if m.VertexCount() != wantVerts {
				t.Errorf("expected %d vertices, got %d", wantVerts, m.VertexCount())
			}
			wantTris := 2 * tt.r.Width() * tt.r.Depth()
			if m.TriangleCount() != wantTris {
				t.Errorf("expected %d triangles, got %d", wantTris, m.TriangleCount())
			}
			assertIndicesInRange(t, m)
		})
	}
}

func TestBuildChunkRowMajorOrder(t *testing.T) {
	cfg := DefaultConfig()
	field := newTestField(t, cfg)
	r := Rect{MinX: 4, MinZ: 2, MaxX: 7, MaxZ: 5}
	m := BuildChunk(field, ChunkCoord{X: 1, Z: 2}, r)

	i := 0
	for z := r.MinZ; z <= r.MaxZ; z++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			v := m.Vertices[i]
			if int(v.X) != x || int(v.Z) != z {
				t.Fatalf("vertex %d at (%v, %v), want (%d, %d)", i, v.X, v.Z, x, z)
			}
			if v.Y != float32(field.Height(x, z)) {
				t.Errorf("vertex %d height %v, want %v", i, v.Y, float32(field.Height(x, z)))
			}
			if gc := m.GlobalCoord(i); gc != (GridCoord{X: x, Z: z}) {
				t.Errorf("GlobalCoord(%d) = %+v, want (%d, %d)", i, gc, x, z)
			}
			i++
		}
	}
	if m.Coord != (ChunkCoord{X: 1, Z: 2}) {
		t.Errorf("expected coord (1,2), got %v", m.Coord)
	}
}

func TestBuildChunkWinding(t *testing.T) {
	field := newTestField(t, DefaultConfig())
	// rowWidth = 2, so the first quad is (0, 3, 1) and (1, 3, 4).
	m := BuildChunk(field, ChunkCoord{}, Rect{MaxX: 2, MaxZ: 1})

	want := [][3]uint32{
		{0, 3, 1}, {1, 3, 4},
		{1, 4, 2}, {2, 4, 5},
	}
	if len(m.Triangles) != len(want) {
		t.Fatalf("expected %d triangles, got %d", len(want), len(m.Triangles))
	}
	for i := range want {
		if m.Triangles[i] != want[i] {
			t.Errorf("triangle %d = %v, want %v", i, m.Triangles[i], want[i])
		}
	}
}

func TestNormalsFaceUp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoiseScale = 0.8
	field := newTestField(t, cfg)
	m := BuildChunk(field, ChunkCoord{}, Rect{MaxX: 12, MaxZ: 9})

	normals := m.Normals()
	if len(normals) != m.VertexCount() {
		t.Fatalf("expected %d normals, got %d", m.VertexCount(), len(normals))
	}
	for i, n := range normals {
		if n.Y <= 0 {
			t.Errorf("normal %d = %v, expected positive Y", i, n)
		}
		if l := n.Length(); l < 0.999 || l > 1.001 {
			t.Errorf("normal %d length %v, want ~1", i, l)
		}
	}
}

func TestBuffers(t *testing.T) {
	field := newTestField(t, DefaultConfig())
	m := BuildChunk(field, ChunkCoord{}, Rect{MinX: 2, MinZ: 2, MaxX: 5, MaxZ: 4})

	pos := m.PositionBuffer()
	if len(pos) != 3*m.VertexCount() {
		t.Fatalf("expected %d floats, got %d", 3*m.VertexCount(), len(pos))
	}
	for i, v := range m.Vertices {
		if pos[3*i] != v.X || pos[3*i+1] != v.Y || pos[3*i+2] != v.Z {
			t.Errorf("position %d = %v, want %v", i, pos[3*i:3*i+3], v)
		}
	}

	idx := m.IndexBuffer()
	if len(idx) != 3*m.TriangleCount() {
		t.Fatalf("expected %d indices, got %d", 3*m.TriangleCount(), len(idx))
	}
	for i, tri := range m.Triangles {
		if idx[3*i] != tri[0] || idx[3*i+1] != tri[1] || idx[3*i+2] != tri[2] {
			t.Errorf("triangle %d = %v, want %v", i, idx[3*i:3*i+3], tri)
		}
	}
}

func TestChunkBounds(t *testing.T) {
	field := newTestField(t, DefaultConfig())
	m := BuildChunk(field, ChunkCoord{}, Rect{MinX: 3, MinZ: 6, MaxX: 9, MaxZ: 10})
	b := m.Bounds()

	if b.Min.X != 3 || b.Max.X != 9 || b.Min.Z != 6 || b.Max.Z != 10 {
		t.Errorf("unexpected XZ bounds %+v", b)
	}
	for _, v := range m.Vertices {
		if v.Y < b.Min.Y || v.Y > b.Max.Y {
			t.Errorf("vertex %v outside Y bounds [%v, %v]", v, b.Min.Y, b.Max.Y)
		}
	}
}

func assertIndicesInRange(t *testing.T, m *ChunkMesh) {
	t.Helper()
	n := uint32(m.VertexCount())
	for i, tri := range m.Triangles {
		for _, idx := range tri {
			if idx >= n {
				t.Fatalf("chunk %v triangle %d references vertex %d of %d", m.Coord, i, idx, n)
			}
		}
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{MinX: 10, MinZ: 20, MaxX: 15, MaxZ: 22}

	tests := []struct {
		p    GridCoord
		want bool
	}{
		{GridCoord{10, 20}, true},
		{GridCoord{15, 22}, true},
		{GridCoord{12, 21}, true},
		{GridCoord{9, 20}, false},
		{GridCoord{16, 21}, false},
		{GridCoord{12, 19}, false},
		{GridCoord{12, 23}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestVertexAtMatchesGlobalCoord(t *testing.T) {
	field := newTestField(t, DefaultConfig())
	m := BuildChunk(field, ChunkCoord{X: 1, Z: 1}, Rect{MinX: 50, MinZ: 50, MaxX: 54, MaxZ: 53})

	for i, want := range m.Vertices {
		p := m.GlobalCoord(i)
		got, ok := m.VertexAt(p)
		if !ok {
			t.Fatalf("VertexAt(%v) not found", p)
		}
		if got != want {
			t.Errorf("VertexAt(%v) = %+v, want %+v", p, got, want)
		}
	}
	if _, ok := m.VertexAt(GridCoord{X: 49, Z: 50}); ok {
		t.Error("expected VertexAt outside the footprint to fail")
	}
}

func TestBuildChunkAtGridLimitKeepsIntegralCoords(t *testing.T) {
	cfg := DefaultConfig()
	cfg.XSize, cfg.ZSize = MaxGridSize, MaxGridSize
	field := newTestField(t, cfg)
	r := Rect{MinX: MaxGridSize - 2, MinZ: MaxGridSize - 1, MaxX: MaxGridSize, MaxZ: MaxGridSize}
	m := BuildChunk(field, ChunkCoord{}, r)

	for i, v := range m.Vertices {
		p := m.GlobalCoord(i)
		if int(v.X) != p.X || int(v.Z) != p.Z {
			t.Errorf("vertex %d at (%v, %v), want (%d, %d)", i, v.X, v.Z, p.X, p.Z)
		}
	}
}
