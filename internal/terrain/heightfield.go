package terrain

// Fractal sum constants: the first octave's amplitude and frequency, and the
// scale applied after normalizing by the summed amplitudes.
const (
	baseAmplitude = 10.0
	baseFrequency = 0.2
	heightScale   = 10.0
)

// HeightField evaluates fractal noise heights over the global grid.
// It stores nothing per coordinate and is safe for concurrent use.
type HeightField struct {
	cfg   Config
	noise Sampler
}

// NewHeightField validates cfg and binds its noise sampler.
func NewHeightField(cfg Config) (*HeightField, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	noise, err := NewSampler(cfg.Noise)
	if err != nil {
		return nil, err
	}
	return &HeightField{cfg: cfg, noise: noise}, nil
}

// Config returns the configuration the field was built from.
func (h *HeightField) Config() Config {
	return h.cfg
}

// Height returns the terrain height at grid position (x, z), within [-10, 10].
// Each octave doubles the frequency and scales the amplitude by Persistence;
// the sum is normalized by the total amplitude so adding octaves adds detail
// without raising the peaks.
func (h *HeightField) Height(x, z int) float64 {
	var y, maxAmplitude float64
	amplitude := baseAmplitude
	frequency := baseFrequency

	for range h.cfg.Octaves {
		nx := float64(x) * h.cfg.NoiseScale * frequency
		nz := float64(z) * h.cfg.NoiseScale * frequency
		y += h.noise.Sample(nx, nz) * amplitude

		maxAmplitude += amplitude
		amplitude *= h.cfg.Persistence
		frequency *= 2
	}

	return y / maxAmplitude * heightScale
}

// Heights evaluates every grid position in r, indexed [z-r.MinZ][x-r.MinX].
func (h *HeightField) Heights(r Rect) [][]float64 {
	rows := make([][]float64, r.Depth()+1)
	for z := r.MinZ; z <= r.MaxZ; z++ {
		row := make([]float64, r.Width()+1)
		for x := r.MinX; x <= r.MaxX; x++ {
			row[x-r.MinX] = h.Height(x, z)
		}
		rows[z-r.MinZ] = row
	}
	return rows
}
