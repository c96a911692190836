// Package ratelimit bounds repeated attempts per key within a fixed window.
// The redis implementation is the production one; Memory covers single-node
// deployments and tests.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Limiter interface {
	// Allow records one attempt for key and reports whether it is still
	// within the configured budget.
	Allow(ctx context.Context, key string) bool
}

type window struct {
	count int
	reset time.Time
}

// Memory is a fixed-window in-process limiter.
type Memory struct {
	limit  int
	period time.Duration

	mu    sync.Mutex
	state map[string]*window
}

func NewMemory(limit int, period time.Duration) *Memory {
	return &Memory{
		limit:  limit,
		period: period,
		state:  map[string]*window{},
	}
}

func (m *Memory) Allow(ctx context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	w, ok := m.state[key]
	if !ok || now.After(w.reset) {
		m.state[key] = &window{count: 1, reset: now.Add(m.period)}
		return true
	}
	w.count++
	return w.count <= m.limit
}
