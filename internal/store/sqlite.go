// Package store persists generated terrain in SQLite so collaborators can load
// individual chunks without regenerating the whole grid.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/terragen/internal/export"
	"github.com/Faultbox/terragen/internal/logger"
	"github.com/Faultbox/terragen/internal/terrain"
)

// timeLayout is fixed-width so created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a generation or chunk is not stored.
var ErrNotFound = errors.New("not found")

// Generation summarizes one stored terrain.
type Generation struct {
	ID        string
	CreatedAt time.Time
	Config    terrain.Config
	Chunks    int
}

// SQLiteStore keeps chunk meshes keyed by generation ID and chunk coordinate.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite opens (or creates) the store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, log: logger.Named("store")}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS generations (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			config_json TEXT NOT NULL,
			chunks INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			generation_id TEXT NOT NULL REFERENCES generations(id) ON DELETE CASCADE,
			cx INTEGER NOT NULL,
			cz INTEGER NOT NULL,
			vertices INTEGER NOT NULL,
			triangles INTEGER NOT NULL,
			mesh BLOB NOT NULL,
			PRIMARY KEY (generation_id, cx, cz)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTerrain stores every chunk of t under id in a single transaction.
func (s *SQLiteStore) SaveTerrain(ctx context.Context, id string, t *terrain.Terrain) error {
	cfgJSON, err := json.Marshal(t.Config())
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO generations (id, created_at, config_json, chunks) VALUES (?, ?, ?, ?)`,
		id, time.Now().UTC().Format(timeLayout), string(cfgJSON), t.Len(),
	); err != nil {
		return fmt.Errorf("insert generation %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (generation_id, cx, cz, vertices, triangles, mesh) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var buf bytes.Buffer
	for coord, c := range t.Chunks() {
		buf.Reset()
		if err := export.EncodeChunk(&buf, c); err != nil {
			return fmt.Errorf("encode chunk %v: %w", coord, err)
		}
		if _, err := stmt.ExecContext(ctx, id, coord.X, coord.Z, c.VertexCount(), c.TriangleCount(), buf.Bytes()); err != nil {
			return fmt.Errorf("insert chunk %v: %w", coord, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Debug("terrain stored", zap.String("generation", id), zap.Int("chunks", t.Len()))
	return nil
}

// LoadChunk returns one stored chunk.
func (s *SQLiteStore) LoadChunk(ctx context.Context, id string, coord terrain.ChunkCoord) (*terrain.ChunkMesh, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT mesh FROM chunks WHERE generation_id = ? AND cx = ? AND cz = ?`,
		id, coord.X, coord.Z,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chunk %v of generation %s: %w", coord, id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return export.DecodeChunk(bytes.NewReader(blob))
}

// LoadTerrain reassembles a whole stored generation.
func (s *SQLiteStore) LoadTerrain(ctx context.Context, id string) (*terrain.Terrain, error) {
	gen, err := s.LoadGeneration(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT mesh FROM chunks WHERE generation_id = ? ORDER BY cz, cx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := make([]*terrain.ChunkMesh, 0, gen.Chunks)
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		c, err := export.DecodeChunk(bytes.NewReader(blob))
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return terrain.NewTerrain(gen.Config, chunks)
}

// LoadGeneration returns the metadata of a stored generation.
func (s *SQLiteStore) LoadGeneration(ctx context.Context, id string) (Generation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, config_json, chunks FROM generations WHERE id = ?`, id)
	gen, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Generation{}, fmt.Errorf("generation %s: %w", id, ErrNotFound)
	}
	return gen, err
}

// ListGenerations returns all stored generations, newest first.
func (s *SQLiteStore) ListGenerations(ctx context.Context) ([]Generation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, config_json, chunks FROM generations ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, gen)
	}
	return out, rows.Err()
}

// DeleteGeneration removes a generation and its chunks.
func (s *SQLiteStore) DeleteGeneration(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM generations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("generation %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(r rowScanner) (Generation, error) {
	var (
		gen       Generation
		createdAt string
		cfgJSON   string
	)
	if err := r.Scan(&gen.ID, &createdAt, &cfgJSON, &gen.Chunks); err != nil {
		return Generation{}, err
	}
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Generation{}, fmt.Errorf("generation %s created_at: %w", gen.ID, err)
	}
	gen.CreatedAt = ts
	if err := json.Unmarshal([]byte(cfgJSON), &gen.Config); err != nil {
		return Generation{}, fmt.Errorf("generation %s config: %w", gen.ID, err)
	}
	return gen, nil
}
