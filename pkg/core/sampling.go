package core

import (
	"math"
	"math/rand"

	mathpkg "github.com/df07/go-light2d/pkg/math"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() mathpkg.Vec2
}

// RandomSampler wraps a standard Go random generator. Not safe for concurrent use.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded by seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() mathpkg.Vec2 {
	return mathpkg.NewVec2(r.random.Float64(), r.random.Float64())
}

// SampleUniformAngle maps u in [0,1) to an angle in [0, 2π)
func SampleUniformAngle(u float64) float64 {
	return 2 * math.Pi * u
}

// SampleStratifiedAngle returns the angle of stratum index out of count, offset by
// u within the stratum (u = 0.5 gives the stratum center)
func SampleStratifiedAngle(index, count int, u float64) float64 {
	return 2 * math.Pi * (float64(index) + u) / float64(count)
}

// SeedFor derives a chunk seed from a base seed and a chunk id, avoiding seed 0
func SeedFor(base int64, id int) int64 {
	// splitmix64 finalizer keeps neighbouring ids decorrelated
	z := uint64(base) + uint64(id+42)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return int64(z>>1) | 1
}
