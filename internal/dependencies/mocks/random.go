package mocks

import (
	"github.com/jason-s-yu/bussfix/internal/dependencies/random"
)

// MockRandom returns queued results from Intn.
type MockRandom struct {
	IntnResults []int
	intnIndex   int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom with the given queue.
func NewMockRandom(values ...int) *MockRandom {
	return &MockRandom{IntnResults: values}
}

// Intn returns the next queued result clamped into [0, n), or 0 once the
// queue is exhausted.
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) || n <= 0 {
		return 0
	}
	v := r.IntnResults[r.intnIndex]
	r.intnIndex++
	if v >= n {
		v = n - 1
	}
	return v
}

// QueueIntn adds values to the Intn result queue.
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}
