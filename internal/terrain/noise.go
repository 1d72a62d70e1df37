package terrain

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Sampler maps a 2D coordinate to coherent noise in [-1, 1].
// Implementations are immutable and safe for concurrent use.
type Sampler interface {
	Sample(x, z float64) float64
}

// NewSampler builds the sampler selected by s. An empty algorithm means perlin.
func NewSampler(s NoiseSettings) (Sampler, error) {
	switch s.Algorithm {
	case "", NoisePerlin:
		// alpha and beta only matter for n > 1; octaves are summed by HeightField.
		return perlinSampler{p: perlin.NewPerlin(2, 2, 1, s.Seed)}, nil
	case NoiseSimplex:
		return simplexSampler{n: opensimplex.New(s.Seed)}, nil
	default:
		return nil, &ConfigError{Field: "noise.algorithm", Value: s.Algorithm, Reason: "must be perlin or simplex"}
	}
}

type perlinSampler struct {
	p *perlin.Perlin
}

func (s perlinSampler) Sample(x, z float64) float64 {
	return clampUnit(s.p.Noise2D(x, z))
}

type simplexSampler struct {
	n opensimplex.Noise
}

func (s simplexSampler) Sample(x, z float64) float64 {
	return clampUnit(s.n.Eval2(x, z))
}

// clampUnit maps v into [-1, 1]. NaN, which the noise libraries can return for
// coordinates far outside their lattice, becomes 0.
func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
