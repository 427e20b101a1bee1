// Package credits tracks how many paid operations a user has left.
package credits

import (
	"context"
	"errors"
	"sync"
)

// InitialCredits is the balance granted to a user with no ledger row.
const InitialCredits = 10

// ErrInsufficientCredits reports that a consume was refused.
var ErrInsufficientCredits = errors.New("insufficient credits")

// Ledger is the credits collaborator. Implementations are bound to one user.
type Ledger interface {
	// CanConsume reports whether n credits are available.
	CanConsume(ctx context.Context, n int) bool
	// Consume deducts n credits, returning false if the balance is short.
	Consume(ctx context.Context, n int) bool
	// Balance returns the remaining credits.
	Balance(ctx context.Context) (int, error)
}

// Memory is an in-process ledger.
type Memory struct {
	mu        sync.Mutex
	remaining int
}

// NewMemory returns a ledger holding n credits.
func NewMemory(n int) *Memory { return &Memory{remaining: n} }

func (m *Memory) CanConsume(_ context.Context, n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return n >= 0 && m.remaining >= n
}

func (m *Memory) Consume(_ context.Context, n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || m.remaining < n {
		return false
	}
	m.remaining -= n
	return true
}

func (m *Memory) Balance(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining, nil
}

// Unlimited never runs out.
type Unlimited struct{}

func (Unlimited) CanConsume(context.Context, int) bool { return true }
func (Unlimited) Consume(context.Context, int) bool    { return true }
func (Unlimited) Balance(context.Context) (int, error) { return -1, nil }
