package terrain

import (
	"iter"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terragen/internal/logger"
	"github.com/Faultbox/terragen/pkg/math"
)

// Generator builds every chunk of a terrain from one validated Config.
type Generator struct {
	field   *HeightField
	workers int
	log     *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithWorkers sets the number of goroutines building chunks. Values below 1
// fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		g.workers = n
	}
}

// WithLogger sets the logger used for generation diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// NewGenerator validates cfg. A *ConfigError is returned before any work is done.
func NewGenerator(cfg Config, opts ...Option) (*Generator, error) {
	field, err := NewHeightField(cfg)
	if err != nil {
		return nil, err
	}
	g := &Generator{
		field: field,
		log:   logger.Named("terrain"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.workers < 1 {
		g.workers = runtime.GOMAXPROCS(0)
	}
	return g, nil
}

// Partition validates cfg and builds the whole terrain in one pass.
func Partition(cfg Config, opts ...Option) (*Terrain, error) {
	g, err := NewGenerator(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return g.Generate(), nil
}

// Generate builds all chunks. Chunk builds share only the immutable height
// field; each worker writes its own slots of the result slice, so no locking
// is needed. Boundary heights are recomputed by each chunk that owns them.
func (g *Generator) Generate() *Terrain {
	cfg := g.field.Config()
	numX, numZ := cfg.NumChunksX(), cfg.NumChunksZ()
	chunks := make([]*ChunkMesh, numX*numZ)

	start := time.Now()
	workers := min(g.workers, len(chunks))

	jobs := make(chan int, len(chunks))
	for i := range chunks {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				coord := ChunkCoord{X: i % numX, Z: i / numX}
				chunks[i] = BuildChunk(g.field, coord, cfg.ChunkRect(coord))
			}
		}()
	}
	wg.Wait()

	t := &Terrain{cfg: cfg, numX: numX, numZ: numZ, chunks: chunks}
	g.log.Debug("terrain generated",
		zap.Int("chunks_x", numX),
		zap.Int("chunks_z", numZ),
		zap.Int("vertices", t.VertexCount()),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return t
}

// Terrain is the complete, read-only set of chunk meshes for one Config.
type Terrain struct {
	cfg        Config
	numX, numZ int
	chunks     []*ChunkMesh // row-major: index = z*numX + x
}

// Config returns the configuration the terrain was generated from.
func (t *Terrain) Config() Config { return t.cfg }

// NumChunksX returns the number of chunk columns.
func (t *Terrain) NumChunksX() int { return t.numX }

// NumChunksZ returns the number of chunk rows.
func (t *Terrain) NumChunksZ() int { return t.numZ }

// Len returns the number of chunks.
func (t *Terrain) Len() int { return len(t.chunks) }

// Chunk returns the chunk at coord.
func (t *Terrain) Chunk(coord ChunkCoord) (*ChunkMesh, bool) {
	if coord.X < 0 || coord.Z < 0 || coord.X >= t.numX || coord.Z >= t.numZ {
		return nil, false
	}
	return t.chunks[coord.Z*t.numX+coord.X], true
}

// ChunkAt returns the chunk owning grid position p. Positions on a seam belong
// to several chunks; the one with the higher coordinate wins, except on the far
// edges of the grid.
func (t *Terrain) ChunkAt(p GridCoord) (*ChunkMesh, bool) {
	cs := t.cfg.ChunkSize
	if p.X < 0 || p.Z < 0 || p.X > t.cfg.XSize || p.Z > t.cfg.ZSize {
		return nil, false
	}
	coord := ChunkCoord{X: min(p.X/cs, t.numX-1), Z: min(p.Z/cs, t.numZ-1)}
	c, ok := t.Chunk(coord)
	if !ok || !c.Rect.Contains(p) {
		return nil, false
	}
	return c, true
}

// Chunks yields every chunk in row-major order (z outer, x inner).
func (t *Terrain) Chunks() iter.Seq2[ChunkCoord, *ChunkMesh] {
	return func(yield func(ChunkCoord, *ChunkMesh) bool) {
		for _, c := range t.chunks {
			if !yield(c.Coord, c) {
				return
			}
		}
	}
}

// ChunkMap returns a new map from chunk coordinate to mesh.
func (t *Terrain) ChunkMap() map[ChunkCoord]*ChunkMesh {
	m := make(map[ChunkCoord]*ChunkMesh, len(t.chunks))
	for _, c := range t.chunks {
		m[c.Coord] = c
	}
	return m
}

// Vertices yields every vertex position of every chunk, boundary copies
// included. The sequence can be ranged over any number of times.
func (t *Terrain) Vertices() iter.Seq[math.Vec3] {
	return func(yield func(math.Vec3) bool) {
		for _, c := range t.chunks {
			for _, v := range c.Vertices {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// VertexCount returns the total number of vertices across all chunks.
func (t *Terrain) VertexCount() int {
	n := 0
	for _, c := range t.chunks {
		n += len(c.Vertices)
	}
	return n
}

// TriangleCount returns the total number of triangles across all chunks.
func (t *Terrain) TriangleCount() int {
	n := 0
	for _, c := range t.chunks {
		n += len(c.Triangles)
	}
	return n
}

// Bounds returns the bounding box of the whole terrain.
func (t *Terrain) Bounds() Bounds {
	if len(t.chunks) == 0 {
		return Bounds{}
	}
	b := t.chunks[0].Bounds()
	for _, c := range t.chunks[1:] {
		cb := c.Bounds()
		b.Min = b.Min.Min(cb.Min)
		b.Max = b.Max.Max(cb.Max)
	}
	return b
}

// Visible yields the chunks policy wants rendered for viewer, in row-major order.
func (t *Terrain) Visible(policy ChunkVisibilityPolicy, viewer ViewerState) iter.Seq2[ChunkCoord, *ChunkMesh] {
	return func(yield func(ChunkCoord, *ChunkMesh) bool) {
		for coord, c := range t.Chunks() {
			if !policy.ShouldRender(coord, viewer) {
				continue
			}
			if !yield(coord, c) {
				return
			}
		}
	}
}

// NewTerrain assembles a Terrain from chunks built elsewhere, such as chunks
// decoded from an archive. Every chunk of cfg must be present exactly once.
func NewTerrain(cfg Config, chunks []*ChunkMesh) (*Terrain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	numX, numZ := cfg.NumChunksX(), cfg.NumChunksZ()
	slots := make([]*ChunkMesh, numX*numZ)
	for _, c := range chunks {
		if !cfg.InBounds(c.Coord) {
			return nil, &ChunkSetError{Coord: c.Coord, Reason: "outside the chunk grid"}
		}
		if c.Rect != cfg.ChunkRect(c.Coord) {
			return nil, &ChunkSetError{Coord: c.Coord, Reason: "footprint does not match config"}
		}
		i := c.Coord.Z*numX + c.Coord.X
		if slots[i] != nil {
			return nil, &ChunkSetError{Coord: c.Coord, Reason: "duplicate chunk"}
		}
		slots[i] = c
	}
	for i, c := range slots {
		if c == nil {
			return nil, &ChunkSetError{Coord: ChunkCoord{X: i % numX, Z: i / numX}, Reason: "missing chunk"}
		}
	}
	return &Terrain{cfg: cfg, numX: numX, numZ: numZ, chunks: slots}, nil
}

// ChunkSetError reports a chunk collection that does not form a complete terrain.
type ChunkSetError struct {
	Coord  ChunkCoord
	Reason string
}

func (e *ChunkSetError) Error() string {
	return "terrain: chunk " + e.Coord.String() + ": " + e.Reason
}
