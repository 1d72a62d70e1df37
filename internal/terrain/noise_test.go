package terrain

import (
	"errors"
	"math"
	"testing"
)

var samplePoints = [][2]float64{
	{0.37, 1.91}, {2.5, 7.25}, {-3.3, 0.7}, {10.1, -4.6}, {0.05, 0.95},
	{12.3, 45.6}, {-7.77, -1.23}, {3.14, 2.71}, {100.5, 0.25}, {0.6, 0.6},
}

func TestSamplerDeterministic(t *testing.T) {
	for _, algo := range []string{NoisePerlin, NoiseSimplex} {
		t.Run(algo, func(t *testing.T) {
			a, err := NewSampler(NoiseSettings{Algorithm: algo, Seed: 42})
			if err != nil {
				t.Fatalf("NewSampler: %v", err)
			}
			b, err := NewSampler(NoiseSettings{Algorithm: algo, Seed: 42})
			if err != nil {
				t.Fatalf("NewSampler: %v", err)
			}
			for _, p := range samplePoints {
				va, vb := a.Sample(p[0], p[1]), b.Sample(p[0], p[1])
				if math.Float64bits(va) != math.Float64bits(vb) {
					t.Errorf("Sample(%v) not reproducible: %v vs %v", p, va, vb)
				}
				if again := a.Sample(p[0], p[1]); math.Float64bits(again) != math.Float64bits(va) {
					t.Errorf("Sample(%v) changed between calls: %v vs %v", p, va, again)
				}
			}
		})
	}
}

func TestSamplerRange(t *testing.T) {
	for _, algo := range []string{NoisePerlin, NoiseSimplex} {
		s, err := NewSampler(NoiseSettings{Algorithm: algo, Seed: 7})
		if err != nil {
			t.Fatalf("NewSampler(%s): %v", algo, err)
		}
		for x := -20.0; x < 20; x += 0.173 {
			for z := -20.0; z < 20; z += 0.391 {
				if v := s.Sample(x, z); v < -1 || v > 1 {
					t.Fatalf("%s Sample(%v, %v) = %v, outside [-1, 1]", algo, x, z, v)
				}
			}
		}
	}
}

func TestSamplerCoherent(t *testing.T) {
	s, err := NewSampler(NoiseSettings{Algorithm: NoisePerlin})
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	// Neighbouring inputs give neighbouring outputs.
	const step = 1e-4
	for _, p := range samplePoints {
		d := math.Abs(s.Sample(p[0], p[1]) - s.Sample(p[0]+step, p[1]))
		if d > 0.01 {
			t.Errorf("Sample jumps by %v over %v at %v", d, step, p)
		}
	}
}

func TestSamplerSeedMatters(t *testing.T) {
	for _, algo := range []string{NoisePerlin, NoiseSimplex} {
		a, _ := NewSampler(NoiseSettings{Algorithm: algo, Seed: 1})
		b, _ := NewSampler(NoiseSettings{Algorithm: algo, Seed: 2})

		differ := false
		for _, p := range samplePoints {
			if a.Sample(p[0], p[1]) != b.Sample(p[0], p[1]) {
				differ = true
				break
			}
		}
		if !differ {
			t.Errorf("%s: seeds 1 and 2 produced identical noise", algo)
		}
	}
}

func TestNewSamplerUnknown(t *testing.T) {
	_, err := NewSampler(NoiseSettings{Algorithm: "value"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestHeightDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	a, err := NewHeightField(cfg)
	if err != nil {
		t.Fatalf("NewHeightField: %v", err)
	}
	b, err := NewHeightField(cfg)
	if err != nil {
		t.Fatalf("NewHeightField: %v", err)
	}

	for z := 0; z <= 30; z++ {
		for x := 0; x <= 30; x++ {
			ha, hb := a.Height(x, z), b.Height(x, z)
			if math.Float64bits(ha) != math.Float64bits(hb) {
				t.Fatalf("Height(%d, %d) not reproducible: %v vs %v", x, z, ha, hb)
			}
		}
	}
}

func TestHeightNormalizationBound(t *testing.T) {
	for _, algo := range []string{NoisePerlin, NoiseSimplex} {
		t.Run(algo, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Octaves = 4
			cfg.Persistence = 0.5
			cfg.NoiseScale = 0.37
			cfg.Noise.Algorithm = algo

			field, err := NewHeightField(cfg)
			if err != nil {
				t.Fatalf("NewHeightField: %v", err)
			}

			var flat = true
			for z := 0; z <= 200; z++ {
				for x := 0; x <= 200; x++ {
					h := field.Height(x, z)
					if h < -10 || h > 10 {
						t.Fatalf("Height(%d, %d) = %v, outside [-10, 10]", x, z, h)
					}
					if h != 0 {
						flat = false
					}
				}
			}
			if flat {
				t.Error("expected a non-flat height field")
			}
		})
	}
}

func TestHeightManyOctavesStayBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Octaves = 12
	cfg.Persistence = 1.5
	field, err := NewHeightField(cfg)
	if err != nil {
		t.Fatalf("NewHeightField: %v", err)
	}
	for z := 0; z <= 50; z++ {
		for x := 0; x <= 50; x++ {
			if h := field.Height(x, z); math.Abs(h) > 10 {
				t.Fatalf("Height(%d, %d) = %v, outside [-10, 10]", x, z, h)
			}
		}
	}
}

func TestHeightExtremeOctavesStayBounded(t *testing.T) {
	for _, algo := range []string{NoisePerlin, NoiseSimplex} {
		t.Run(algo, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.XSize, cfg.ZSize, cfg.ChunkSize = 8, 8, 8
			cfg.Octaves = 1000
			cfg.Noise.Algorithm = algo
			field, err := NewHeightField(cfg)
			if err != nil {
				t.Fatalf("NewHeightField: %v", err)
			}
			for _, p := range []GridCoord{{0, 0}, {1, 3}, {3, 2}, {8, 8}} {
				h := field.Height(p.X, p.Z)
				if math.IsNaN(h) || math.Abs(h) > 10 {
					t.Errorf("Height(%d, %d) = %v, outside [-10, 10]", p.X, p.Z, h)
				}
			}
		})
	}
}

func TestClampUnit(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.25, 0.25},
		{-3, -1},
		{7, 1},
		{math.Inf(1), 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := clampUnit(tt.in); got != tt.want {
			t.Errorf("clampUnit(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHeightsMatchesHeight(t *testing.T) {
	field, err := NewHeightField(DefaultConfig())
	if err != nil {
		t.Fatalf("NewHeightField: %v", err)
	}
	r := Rect{MinX: 3, MinZ: 5, MaxX: 9, MaxZ: 8}
	rows := field.Heights(r)

	if len(rows) != r.Depth()+1 {
		t.Fatalf("expected %d rows, got %d", r.Depth()+1, len(rows))
	}
	for z := r.MinZ; z <= r.MaxZ; z++ {
		if len(rows[z-r.MinZ]) != r.Width()+1 {
			t.Fatalf("row %d: expected %d values, got %d", z, r.Width()+1, len(rows[z-r.MinZ]))
		}
		for x := r.MinX; x <= r.MaxX; x++ {
			if rows[z-r.MinZ][x-r.MinX] != field.Height(x, z) {
				t.Errorf("Heights at (%d, %d) disagrees with Height", x, z)
			}
		}
	}
}

func TestNewHeightFieldRejectsZeroOctaves(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Octaves = 0
	if _, err := NewHeightField(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
