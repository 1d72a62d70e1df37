package terrain

import (
	"errors"
	"fmt"
	"math"
)

// Noise algorithms accepted by NoiseSettings.Algorithm.
const (
	NoisePerlin  = "perlin"
	NoiseSimplex = "simplex"
)

// MaxGridSize bounds XSize and ZSize. Grid coordinates are stored as float32
// vertex positions and int32 in encoded chunks; both are exact up to 2^24.
const MaxGridSize = 1 << 24

// ErrInvalidConfig matches every *ConfigError via errors.Is.
var ErrInvalidConfig = errors.New("invalid terrain config")

// ConfigError reports a Config field that cannot produce a terrain.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("terrain config: %s %s (got %v)", e.Field, e.Reason, e.Value)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NoiseSettings selects the coherent noise function behind the height field.
type NoiseSettings struct {
	Algorithm string `yaml:"algorithm" json:"algorithm"`
	Seed      int64  `yaml:"seed" json:"seed"`
}

// Config is the immutable input to terrain generation. Every derived quantity
// (chunk counts, chunk footprints, heights) is a pure function of it.
type Config struct {
	XSize       int           `yaml:"x_size" json:"x_size"`
	ZSize       int           `yaml:"z_size" json:"z_size"`
	ChunkSize   int           `yaml:"chunk_size" json:"chunk_size"`
	NoiseScale  float64       `yaml:"noise_scale" json:"noise_scale"`
	Octaves     int           `yaml:"octaves" json:"octaves"`
	Persistence float64       `yaml:"persistence" json:"persistence"`
	Noise       NoiseSettings `yaml:"noise" json:"noise"`
}

// DefaultConfig returns a 200x200 grid split into 50-unit chunks.
func DefaultConfig() Config {
	return Config{
		XSize:       200,
		ZSize:       200,
		ChunkSize:   50,
		NoiseScale:  0.05,
		Octaves:     4,
		Persistence: 0.5,
		Noise: NoiseSettings{
			Algorithm: NoisePerlin,
		},
	}
}

// Validate returns a *ConfigError describing the first invalid field, or nil.
func (c Config) Validate() error {
	switch {
	case c.XSize <= 0:
		return &ConfigError{Field: "x_size", Value: c.XSize, Reason: "must be positive"}
	case c.ZSize <= 0:
		return &ConfigError{Field: "z_size", Value: c.ZSize, Reason: "must be positive"}
	case c.XSize > MaxGridSize:
		return &ConfigError{Field: "x_size", Value: c.XSize, Reason: fmt.Sprintf("must not exceed %d", MaxGridSize)}
	case c.ZSize > MaxGridSize:
		return &ConfigError{Field: "z_size", Value: c.ZSize, Reason: fmt.Sprintf("must not exceed %d", MaxGridSize)}
	case c.ChunkSize <= 0:
		return &ConfigError{Field: "chunk_size", Value: c.ChunkSize, Reason: "must be positive"}
	case c.Octaves < 1:
		return &ConfigError{Field: "octaves", Value: c.Octaves, Reason: "must be at least 1"}
	case !finite(c.NoiseScale) || c.NoiseScale <= 0:
		return &ConfigError{Field: "noise_scale", Value: c.NoiseScale, Reason: "must be a positive finite number"}
	case !finite(c.Persistence) || c.Persistence <= 0:
		return &ConfigError{Field: "persistence", Value: c.Persistence, Reason: "must be a positive finite number"}
	}

	switch c.Noise.Algorithm {
	case "", NoisePerlin, NoiseSimplex:
	default:
		return &ConfigError{Field: "noise.algorithm", Value: c.Noise.Algorithm, Reason: "must be perlin or simplex"}
	}

	if err := c.validateOctaves(); err != nil {
		return err
	}

	// Chunk meshes index vertices with uint32.
	w := uint64(min(c.ChunkSize, c.XSize)) + 1
	h := uint64(min(c.ChunkSize, c.ZSize)) + 1
	if w > math.MaxUint32/h {
		return &ConfigError{Field: "chunk_size", Value: c.ChunkSize, Reason: "yields more chunk vertices than a uint32 index buffer can address"}
	}
	return nil
}

// validateOctaves walks the fractal sum's amplitude and frequency schedule and
// rejects configs where any octave term stops being a finite number.
func (c Config) validateOctaves() error {
	amplitude, frequency, total := baseAmplitude, baseFrequency, 0.0
	extent := float64(max(c.XSize, c.ZSize)) * c.NoiseScale

	for octave := range c.Octaves {
		if !finite(frequency) || !finite(extent*frequency) {
			if octave == 0 {
				return &ConfigError{Field: "noise_scale", Value: c.NoiseScale, Reason: "overflows the sample coordinates"}
			}
			return &ConfigError{Field: "octaves", Value: c.Octaves, Reason: fmt.Sprintf("overflow the sample coordinates at octave %d", octave)}
		}
		total += amplitude
		if !finite(amplitude) || !finite(total) {
			return &ConfigError{Field: "persistence", Value: c.Persistence, Reason: fmt.Sprintf("overflows the octave amplitude at octave %d", octave)}
		}
		amplitude *= c.Persistence
		frequency *= 2
	}
	return nil
}

// NumChunksX returns ceil(XSize / ChunkSize).
func (c Config) NumChunksX() int {
	return ceilDiv(c.XSize, c.ChunkSize)
}

// NumChunksZ returns ceil(ZSize / ChunkSize).
func (c Config) NumChunksZ() int {
	return ceilDiv(c.ZSize, c.ChunkSize)
}

// ChunkRect returns the inclusive global footprint of a chunk. The far edge is
// clipped to XSize/ZSize, so a chunk's end is the next chunk's start.
func (c Config) ChunkRect(coord ChunkCoord) Rect {
	startX := coord.X * c.ChunkSize
	startZ := coord.Z * c.ChunkSize
	return Rect{
		MinX: startX,
		MinZ: startZ,
		MaxX: min(startX+c.ChunkSize, c.XSize),
		MaxZ: min(startZ+c.ChunkSize, c.ZSize),
	}
}

// InBounds reports whether coord addresses a chunk of this terrain.
func (c Config) InBounds(coord ChunkCoord) bool {
	return coord.X >= 0 && coord.Z >= 0 && coord.X < c.NumChunksX() && coord.Z < c.NumChunksZ()
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	n := a / b
	if a%b != 0 {
		n++
	}
	return n
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
