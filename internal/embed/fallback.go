package embed

import (
	"context"
	"hash/fnv"
	"math"
)

// phase spreads the hash across coordinates; any fixed irrational-ish
// multiplier works, it just has to never change.
const phase = 0.42

// Offline is the deterministic no-network fallback: it folds the text
// through a 32-bit FNV-1a hash and derives each coordinate from
// sin((hash + i) * phase). The same string always yields a
// bit-identical vector.
type Offline struct {
	dim int
}

// NewOffline creates the fallback provider with the given vector
// width (DefaultDim when non-positive).
func NewOffline(dim int) *Offline {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Offline{dim: dim}
}

func (o *Offline) Model() string { return "offline-fnv" }

// Embed never fails; it exists so Offline satisfies Provider.
func (o *Offline) Embed(_ context.Context, text string) ([]float32, error) {
	return o.Vector(text), nil
}

// Vector computes the fallback embedding for text.
func (o *Offline) Vector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, o.dim)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(seed+uint32(i)) * phase))
	}
	return vec
}
