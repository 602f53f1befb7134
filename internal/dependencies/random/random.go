package random

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Random provides random number generation that can be swapped out in tests.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// CryptoRandom implements Random using crypto/rand.
type CryptoRandom struct{}

// New creates a new CryptoRandom.
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n).
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// SeededRandom is a deterministic source. Two instances built from the same
// seed yield the same sequence. Safe for concurrent use; rooms share one.
type SeededRandom struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeeded creates a SeededRandom from a seed.
func NewSeeded(seed uint64) *SeededRandom {
	return &SeededRandom{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}
