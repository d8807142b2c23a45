package service

import (
	"sync"
	"time"
)

// PaymentIDGenerator issues process-wide unique, strictly increasing payment ids derived
// from the wall clock in milliseconds.
type PaymentIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewPaymentIDGenerator returns a generator reading time.Now.
func NewPaymentIDGenerator() *PaymentIDGenerator {
	return &PaymentIDGenerator{now: time.Now}
}

// Next returns max(now in ms, previous+1).
func (g *PaymentIDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe raises the floor so ids already present in imported data are never reissued.
func (g *PaymentIDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}
