// terragen generates chunked fractal terrain meshes and exports, stores or
// streams them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/terragen/internal/config"
	"github.com/Faultbox/terragen/internal/debug"
	"github.com/Faultbox/terragen/internal/export"
	"github.com/Faultbox/terragen/internal/logger"
	"github.com/Faultbox/terragen/internal/server"
	"github.com/Faultbox/terragen/internal/store"
	"github.com/Faultbox/terragen/internal/terrain"
)

var (
	flagMarkerSize   = flag.Float64("marker-size", 0.2, "Vertex marker arm length (markers)")
	flagBorderHeight = flag.Float64("border-height", 11, "Chunk border line height (markers)")
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "generate", "gen":
		err = cmdGenerate(args)
	case "obj":
		err = cmdOBJ(args)
	case "archive":
		err = cmdArchive(args)
	case "inspect":
		err = cmdInspect(args)
	case "store":
		err = cmdStore(args)
	case "serve":
		err = cmdServe(args)
	case "markers":
		err = cmdMarkers(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terragen - chunked fractal terrain generator

Usage:
  terragen <command> [options] [args]

Commands:
  generate                  Generate terrain and print a summary
  obj [file.obj]            Export terrain as Wavefront OBJ
  archive [file]            Write a compressed chunk archive
  inspect <file> [x z]      Show archive header and contents, or the vertex at x,z
  store [save|list|delete]  Persist generations in the chunk database
  serve                     Stream chunks to renderers over websocket
  markers [file.json]       Write debug vertex markers and chunk borders
  config [save [file]]      Print the effective config, or save it

Options:
  -config <path>     Config file (default ./terragen.yaml)
  -xsize, -zsize     Grid size
  -chunk             Chunk edge length
  -octaves           Noise octaves
  -persistence       Per-octave amplitude decay
  -scale             Noise scale
  -noise             perlin or simplex
  -seed              Noise seed
  -workers           Chunk build workers (0 = one per CPU)
  -out <dir>         Output directory
  -db <path>         Chunk database
  -addr <host:port>  Server listen address
  -debug             Debug logging
  -marker-size       Vertex marker arm length (markers, default 0.2)
  -border-height     Chunk border line height (markers, default 11)

Examples:
  terragen generate -xsize 512 -zsize 512 -chunk 64
  terragen obj -noise simplex -seed 7 hills.obj
  terragen archive -out build
  terragen inspect build/terrain.tchk.zst
  terragen inspect build/terrain.tchk.zst 120 64
  terragen config save -octaves 6
  terragen store list -db terrain.sqlite
  terragen serve -addr :8787`)
}

// setup parses flags, loads config and initializes logging.
func setup(args []string) (*config.Config, error) {
	if err := config.ParseFlags(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("source", cfg.Source),
		zap.Int("x_size", cfg.Terrain.XSize),
		zap.Int("z_size", cfg.Terrain.ZSize),
		zap.Int("chunk_size", cfg.Terrain.ChunkSize),
	)
	return cfg, nil
}

func generate(cfg *config.Config) (*terrain.Terrain, error) {
	return terrain.Partition(cfg.Terrain,
		terrain.WithWorkers(cfg.Generation.Workers),
		terrain.WithLogger(logger.Named("terrain")),
	)
}

// outputPath returns the first positional argument, or name inside the
// configured output directory.
func outputPath(cfg *config.Config, name string) (string, error) {
	path := filepath.Join(cfg.Output.Dir, name)
	if args := config.Args(); len(args) > 0 {
		path = args[0]
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

func cmdGenerate(args []string) error {
	cfg, err := setup(args)
	if err != nil {
		return err
	}

	start := time.Now()
	t, err := generate(cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printSummary(t)
	fmt.Printf("Elapsed:   %v\n", elapsed.Round(time.Millisecond))
	return nil
}

func printSummary(t *terrain.Terrain) {
	c := t.Config()
	b := t.Bounds()
	fmt.Printf("Grid:      %d x %d (chunk %d)\n", c.XSize, c.ZSize, c.ChunkSize)
	fmt.Printf("Noise:     %s seed=%d scale=%g octaves=%d persistence=%g\n",
		algorithmName(c.Noise.Algorithm), c.Noise.Seed, c.NoiseScale, c.Octaves, c.Persistence)
	fmt.Printf("Chunks:    %d x %d = %d\n", t.NumChunksX(), t.NumChunksZ(), t.Len())
	fmt.Printf("Vertices:  %d\n", t.VertexCount())
	fmt.Printf("Triangles: %d\n", t.TriangleCount())
	fmt.Printf("Height:    %.3f .. %.3f\n", b.Min.Y, b.Max.Y)
}

func algorithmName(a string) string {
	if a == "" {
		return terrain.NoisePerlin
	}
	return a
}

func cmdOBJ(args []string) error {
	cfg, err := setup(args)
	if err != nil {
		return err
	}
	t, err := generate(cfg)
	if err != nil {
		return err
	}
	path, err := outputPath(cfg, "terrain.obj")
	if err != nil {
		return err
	}
	if err := export.SaveOBJ(path, t); err != nil {
		return err
	}
	logger.Info("obj written", zap.String("path", path), zap.Int("chunks", t.Len()))
	fmt.Printf("Wrote %s (%d chunks, %d vertices)\n", path, t.Len(), t.VertexCount())
	return nil
}

func cmdArchive(args []string) error {
	cfg, err := setup(args)
	if err != nil {
		return err
	}
	t, err := generate(cfg)
	if err != nil {
		return err
	}
	path, err := outputPath(cfg, "terrain.tchk.zst")
	if err != nil {
		return err
	}
	h := export.NewArchiveHeader(t)
	if err := export.SaveArchive(path, h, t); err != nil {
		return err
	}
	logger.Info("archive written",
		zap.String("path", path),
		zap.String("generation_id", h.GenerationID),
		zap.Int("chunks", t.Len()),
	)
	fmt.Printf("Wrote %s (generation %s)\n", path, h.GenerationID)
	return nil
}

func cmdInspect(args []string) error {
	if _, err := setup(args); err != nil {
		return err
	}
	rest := config.Args()
	if len(rest) != 1 && len(rest) != 3 {
		return errors.New("usage: terragen inspect <file> [x z]")
	}

	h, t, err := export.LoadArchive(rest[0])
	if err != nil {
		return err
	}

	if len(rest) == 3 {
		return printVertex(t, rest[1], rest[2])
	}

	fmt.Printf("Archive:    %s\n", rest[0])
	fmt.Printf("Version:    %d\n", h.Version)
	fmt.Printf("Generation: %s\n", h.GenerationID)
	fmt.Printf("Created:    %s\n", h.CreatedAt.Format(time.RFC3339))
	printSummary(t)
	return nil
}

func printVertex(t *terrain.Terrain, xs, zs string) error {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	z, err := strconv.Atoi(zs)
	if err != nil {
		return fmt.Errorf("z: %w", err)
	}

	p := terrain.GridCoord{X: x, Z: z}
	c, ok := t.ChunkAt(p)
	if !ok {
		return fmt.Errorf("grid position (%d,%d) is outside the %dx%d terrain", x, z, t.Config().XSize, t.Config().ZSize)
	}
	v, _ := c.VertexAt(p)
	fmt.Printf("Vertex (%d,%d): height %.4f in chunk %s\n", x, z, v.Y, c.Coord)
	return nil
}

func cmdStore(args []string) error {
	action := "save"
	if len(args) > 0 && (args[0] == "save" || args[0] == "list" || args[0] == "delete") {
		action, args = args[0], args[1:]
	}

	cfg, err := setup(args)
	if err != nil {
		return err
	}

	s, err := store.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	switch action {
	case "list":
		gens, err := s.ListGenerations(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tGRID\tCHUNKS\tNOISE")
		for _, g := range gens {
			fmt.Fprintf(tw, "%s\t%s\t%dx%d/%d\t%d\t%s:%d\n",
				g.ID, g.CreatedAt.Format(time.RFC3339), g.Config.XSize, g.Config.ZSize,
				g.Config.ChunkSize, g.Chunks, algorithmName(g.Config.Noise.Algorithm), g.Config.Noise.Seed)
		}
		return tw.Flush()

	case "delete":
		rest := config.Args()
		if len(rest) < 1 {
			return errors.New("usage: terragen store delete <generation-id>")
		}
		if err := s.DeleteGeneration(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", rest[0])
		return nil

	default:
		t, err := generate(cfg)
		if err != nil {
			return err
		}
		id := uuid.NewString()
		if err := s.SaveTerrain(ctx, id, t); err != nil {
			return err
		}
		fmt.Printf("Stored generation %s (%d chunks) in %s\n", id, t.Len(), cfg.Store.Path)
		return nil
	}
}

func cmdServe(args []string) error {
	cfg, err := setup(args)
	if err != nil {
		return err
	}
	t, err := generate(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewServer(t, terrain.AlwaysRender, logger.Named("server")).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("serving terrain",
			zap.String("addr", cfg.Server.Addr),
			zap.Int("chunks", t.Len()),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		logger.Error("server failed", zap.String("addr", cfg.Server.Addr), zap.Error(err))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown incomplete", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

type markerFile struct {
	Vertices []debug.LineVertex `json:"vertices"`
	Borders  []debug.LineVertex `json:"borders"`
}

func cmdMarkers(args []string) error {
	cfg, err := setup(args)
	if err != nil {
		return err
	}
	t, err := generate(cfg)
	if err != nil {
		return err
	}
	path, err := outputPath(cfg, "markers.json")
	if err != nil {
		return err
	}

	out := markerFile{
		Vertices: debug.VertexMarkers(t.Vertices(), float32(*flagMarkerSize)),
		Borders:  debug.ChunkBorders(t, float32(*flagBorderHeight)),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(out); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d marker lines, %d border lines)\n", path, len(out.Vertices)/2, len(out.Borders)/2)
	return nil
}

func cmdConfig(args []string) error {
	save := len(args) > 0 && args[0] == "save"
	if save {
		args = args[1:]
	}

	cfg, err := setup(args)
	if err != nil {
		return err
	}

	if !save {
		if cfg.Source != "" {
			fmt.Printf("# loaded from %s\n", cfg.Source)
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}

	if rest := config.Args(); len(rest) > 0 {
		if err := cfg.SaveTo(rest[0]); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", rest[0])
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	return nil
}
