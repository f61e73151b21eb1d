package ai

import (
	"fmt"
	"sync"
)

// BudgetChecker checks and records token usage against budgets.
type BudgetChecker interface {
	// Check returns true if the key has budget remaining.
	Check(key string) (bool, error)
	// Record records token usage for a key.
	Record(key string, tokens int) error
	// Usage returns current usage and limit for a key.
	Usage(key string) (used int64, budget int64, err error)
}

// InMemoryBudget tracks token usage per key, typically a chat session.
type InMemoryBudget struct {
	mu           sync.RWMutex
	defaultLimit int64            // applied to keys without an explicit budget; 0 means unlimited
	budgets      map[string]int64 // key -> budget limit
	usage        map[string]int64 // key -> tokens used
}

// NewInMemoryBudget creates a budget tracker. defaultLimit applies to every
// key without an explicit budget; zero means unlimited.
func NewInMemoryBudget(defaultLimit int64) *InMemoryBudget {
	return &InMemoryBudget{
		defaultLimit: defaultLimit,
		budgets:      make(map[string]int64),
		usage:        make(map[string]int64),
	}
}

// SetBudget sets the token budget for a key.
func (b *InMemoryBudget) SetBudget(key string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.budgets[key] = tokens
}

func (b *InMemoryBudget) Check(key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	budget := b.limit(key)
	if budget <= 0 {
		return true, nil
	}
	return b.usage[key] < budget, nil
}

func (b *InMemoryBudget) Record(key string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[key] += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(key string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usage[key], b.limit(key), nil
}

func (b *InMemoryBudget) limit(key string) int64 {
	if budget, ok := b.budgets[key]; ok {
		return budget
	}
	return b.defaultLimit
}
