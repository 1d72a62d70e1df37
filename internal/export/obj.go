package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/terragen/internal/terrain"
)

// WriteOBJ writes t as a Wavefront OBJ file with one object per chunk.
// Chunks keep their own copies of boundary vertices, so every chunk can be
// selected and hidden independently in a viewer. Normals are recalculated
// per chunk and faces reference them as v//vn.
func WriteOBJ(w io.Writer, t *terrain.Terrain) error {
	bw := bufio.NewWriter(w)
	cfg := t.Config()

	fmt.Fprintf(bw, "# terragen %dx%d, chunk size %d, %d chunks\n", cfg.XSize, cfg.ZSize, cfg.ChunkSize, t.Len())

	offset := 1 // OBJ indices are 1-based and global to the file
	for coord, c := range t.Chunks() {
		fmt.Fprintf(bw, "o chunk_%d_%d\n", coord.X, coord.Z)
		for _, v := range c.Vertices {
			fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
		}
		for _, n := range c.Normals() {
			fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
		}
		for _, tri := range c.Triangles {
			a, b, d := int(tri[0])+offset, int(tri[1])+offset, int(tri[2])+offset
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, d, d)
		}
		offset += len(c.Vertices)
	}
	return bw.Flush()
}

// SaveOBJ writes t to path as OBJ, creating parent directories.
func SaveOBJ(path string, t *terrain.Terrain) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOBJ(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
