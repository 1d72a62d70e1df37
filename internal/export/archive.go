package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/terragen/internal/terrain"
)

// ArchiveVersion is the current archive header version.
const ArchiveVersion = 1

// ArchiveHeader is stored as a single JSON line at the start of an archive.
type ArchiveHeader struct {
	Version      int            `json:"version"`
	GenerationID string         `json:"generation_id"`
	CreatedAt    time.Time      `json:"created_at"`
	Config       terrain.Config `json:"config"`
	Chunks       int            `json:"chunks"`
}

// NewArchiveHeader describes t under a fresh generation ID.
func NewArchiveHeader(t *terrain.Terrain) ArchiveHeader {
	return ArchiveHeader{
		Version:      ArchiveVersion,
		GenerationID: uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Config:       t.Config(),
		Chunks:       t.Len(),
	}
}

// WriteArchive writes a zstd stream holding the header line followed by every
// chunk of t in row-major order.
func WriteArchive(w io.Writer, h ArchiveHeader, t *terrain.Terrain) error {
	h.Chunks = t.Len()
	h.Config = t.Config()

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)
	hb, err := json.Marshal(h)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	for coord, c := range t.Chunks() {
		if err := EncodeChunk(bw, c); err != nil {
			enc.Close()
			return fmt.Errorf("encoding chunk %v: %w", coord, err)
		}
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadArchive reads an archive written by WriteArchive and reassembles the terrain.
func ReadArchive(r io.Reader) (ArchiveHeader, *terrain.Terrain, error) {
	var h ArchiveHeader

	dec, err := zstd.NewReader(r)
	if err != nil {
		return h, nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, nil, fmt.Errorf("reading archive header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, nil, fmt.Errorf("decoding archive header: %w", err)
	}
	if h.Version != ArchiveVersion {
		return h, nil, fmt.Errorf("%w: archive version %d", ErrUnsupportedVersion, h.Version)
	}
	if err := h.Config.Validate(); err != nil {
		return h, nil, fmt.Errorf("archive config: %w", err)
	}
	if want := h.Config.NumChunksX() * h.Config.NumChunksZ(); h.Chunks != want {
		return h, nil, fmt.Errorf("%w: header lists %d chunks, config needs %d", ErrCorrupt, h.Chunks, want)
	}

	chunks := make([]*terrain.ChunkMesh, 0, min(h.Chunks, 1024))
	for i := range h.Chunks {
		c, err := DecodeChunk(br)
		if err != nil {
			return h, nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		chunks = append(chunks, c)
	}

	t, err := terrain.NewTerrain(h.Config, chunks)
	if err != nil {
		return h, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return h, t, nil
}

// SaveArchive writes an archive for t to path, creating parent directories.
func SaveArchive(path string, h ArchiveHeader, t *terrain.Terrain) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := WriteArchive(f, h, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadArchive reads the archive at path.
func LoadArchive(path string) (ArchiveHeader, *terrain.Terrain, error) {
	f, err := os.Open(path)
	if err != nil {
		return ArchiveHeader{}, nil, err
	}
	defer f.Close()
	return ReadArchive(f)
}
