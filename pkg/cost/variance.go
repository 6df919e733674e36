package cost

import (
	"math/rand"
	"sync"
	"time"
)

// MaxJitter bounds the variance factor to [1-MaxJitter, 1+MaxJitter].
const MaxJitter = 0.2

// Variance supplies the jitter applied to the size factor of each estimate.
// Implementations must be safe for concurrent use.
type Variance interface {
	Factor() float64
}

// FixedVariance always returns the same factor, clamped to the jitter bounds.
// FixedVariance(1) disables jitter.
type FixedVariance float64

// Factor implements Variance.
func (f FixedVariance) Factor() float64 {
	return clampJitter(float64(f))
}

type seededVariance struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededVariance returns a Variance whose sequence of factors is fully
// determined by seed.
func NewSeededVariance(seed int64) Variance {
	return &seededVariance{rng: rand.New(rand.NewSource(seed))}
}

// Factor implements Variance.
func (v *seededVariance) Factor() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return 1 - MaxJitter + v.rng.Float64()*2*MaxJitter
}

var (
	processVariance     Variance
	processVarianceOnce sync.Once
)

// defaultVariance is seeded once per process.
func defaultVariance() Variance {
	processVarianceOnce.Do(func() {
		processVariance = NewSeededVariance(time.Now().UnixNano())
	})
	return processVariance
}

func clampJitter(f float64) float64 {
	switch {
	case f < 1-MaxJitter:
		return 1 - MaxJitter
	case f > 1+MaxJitter:
		return 1 + MaxJitter
	}
	return f
}
