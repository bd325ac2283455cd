package mocks

import (
	"github.com/okeefe/typeduel/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int

	// TokenResults is a queue of results to return from Token
	TokenResults []string
	tokenIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// Token returns the next queued result, or empty string if none remaining
func (r *MockRandom) Token(length int, alphabet string) string {
	if r.tokenIndex >= len(r.TokenResults) {
		return ""
	}
	result := r.TokenResults[r.tokenIndex]
	r.tokenIndex++
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.TokenResults = append(r.TokenResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.IntnResults = nil
	r.intnIndex = 0
	r.TokenResults = nil
	r.tokenIndex = 0
}
