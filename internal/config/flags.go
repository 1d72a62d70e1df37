package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagXSize       = flag.Int("xsize", 0, "Grid size along X")
	flagZSize       = flag.Int("zsize", 0, "Grid size along Z")
	flagChunk       = flag.Int("chunk", 0, "Chunk edge length")
	flagOctaves     = flag.Int("octaves", 0, "Noise octaves")
	flagPersistence = flag.Float64("persistence", 0, "Per-octave amplitude decay")
	flagScale       = flag.Float64("scale", 0, "Noise scale")
	flagNoise       = flag.String("noise", "", "Noise algorithm: perlin or simplex")
	flagSeed        = flag.Int64("seed", 0, "Noise seed (0 keeps the configured seed)")
	flagWorkers     = flag.Int("workers", 0, "Chunk build workers")
	flagOut         = flag.String("out", "", "Output directory")
	flagDB          = flag.String("db", "", "Chunk database path")
	flagAddr        = flag.String("addr", "", "Server listen address")
)

// ParseFlags parses command-line flags from args (without the program name
// or subcommand).
func ParseFlags(args []string) error {
	return flag.CommandLine.Parse(args)
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config. Zero values leave the
// configured setting untouched.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagXSize != 0 {
		cfg.Terrain.XSize = *flagXSize
	}
	if *flagZSize != 0 {
		cfg.Terrain.ZSize = *flagZSize
	}
	if *flagChunk != 0 {
		cfg.Terrain.ChunkSize = *flagChunk
	}
	if *flagOctaves != 0 {
		cfg.Terrain.Octaves = *flagOctaves
	}
	if *flagPersistence != 0 {
		cfg.Terrain.Persistence = *flagPersistence
	}
	if *flagScale != 0 {
		cfg.Terrain.NoiseScale = *flagScale
	}
	if *flagNoise != "" {
		cfg.Terrain.Noise.Algorithm = *flagNoise
	}
	if *flagSeed != 0 {
		cfg.Terrain.Noise.Seed = *flagSeed
	}
	if *flagWorkers != 0 {
		cfg.Generation.Workers = *flagWorkers
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagDB != "" {
		cfg.Store.Path = *flagDB
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
}
