package rand

import (
	"math"

	"github.com/seehuhn/mt19937"
)

// RNGStateError is returned (or used as a panic value) when a Generator is
// asked for random values before it has been seeded.
type RNGStateError struct {
	Op string
}

func (e *RNGStateError) Error() string {
	return "rand: " + e.Op + " called on an unseeded Generator"
}

// A Generator is a deterministic source of uniform and normal deviates built
// on the Mersenne twister. The zero value is unseeded and unusable until Seed
// is called. A Generator is not safe for concurrent use: every sampler run
// should own its own instance.
type Generator struct {
	src      *mt19937.MT19937
	seed     int64
	spare    float64 // second Box-Muller deviate, valid when hasSpare
	hasSpare bool
}

// NewGenerator returns a Generator seeded with the given seed
func NewGenerator(seed int64) (*Generator, error) {
	g := &Generator{}
	g.Seed(seed)
	return g, nil
}

// Seed resets the generator. Identical seeds reproduce identical sequences,
// including the cached Gaussian spare, which is discarded here.
func (g *Generator) Seed(seed int64) {
	if g.src == nil {
		g.src = mt19937.New()
	}
	g.src.Seed(seed)
	g.seed = seed
	g.spare = 0
	g.hasSpare = false
}

// SeedValue returns the seed last given to Seed
func (g *Generator) SeedValue() int64 {
	return g.seed
}

// Check returns an RNGStateError if the generator has never been seeded
func (g *Generator) Check() error {
	if g == nil || g.src == nil {
		return &RNGStateError{Op: "Check"}
	}
	return nil
}

// Int63 provides the same interface as Go's math/rand.
func (g *Generator) Int63() int64 {
	if g.src == nil {
		panic(&RNGStateError{Op: "Int63"})
	}
	return g.src.Int63()
}

// Int63n is a copy of the current Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Float64 returns a uniform value in [0, 1). We use the commented, simpler
// implementation from the Go source since 53 bits are all a float64 holds.
func (g *Generator) Float64() float64 {
	return float64(g.Int63n(1<<53)) / (1 << 53)
}

// Uniform is an alias for Float64: a uniform draw in [0, 1)
func (g *Generator) Uniform() float64 {
	return g.Float64()
}

// NormFloat64 returns a standard normal deviate using the Box-Muller
// transform. Deviates are produced in pairs: one is returned and the other is
// cached for the next call.
func (g *Generator) NormFloat64() float64 {
	if g.hasSpare {
		g.hasSpare = false
		return g.spare
	}

	// u1 must be in (0, 1] so the log is finite
	u1 := 1.0 - g.Float64()
	u2 := g.Float64()

	r := math.Sqrt(-2.0 * math.Log(u1))
	sin, cos := math.Sincos(2.0 * math.Pi * u2)

	g.spare = r * sin
	g.hasSpare = true

	return r * cos
}

// Gaussian returns a sample from N(mean, std^2)
func (g *Generator) Gaussian(mean float64, std float64) float64 {
	return mean + std*g.NormFloat64()
}
