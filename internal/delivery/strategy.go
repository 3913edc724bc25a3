// Package delivery sends formatted leads through an ordered chain of
// strategies: remote webhooks first, a local durable queue last.
package delivery

import (
	"context"
	"time"

	"github.com/wolfman30/contractor-leads/internal/leads"
)

// Strategy is one delivery tier. Attempt never panics on transport problems;
// failures come back as an Attempt with Success false and Err set.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, payload *leads.Payload) Attempt
}

// Attempt is the outcome of a single try against one tier.
type Attempt struct {
	Strategy string        `json:"strategy"`
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	Err      error         `json:"-"`
	RemoteID string        `json:"remoteId,omitempty"`
	Queued   bool          `json:"queued,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Error returns the failure message, or "".
func (a Attempt) Error() string {
	if a.Err == nil {
		return ""
	}
	return a.Err.Error()
}

// StrategyFunc adapts a function into a Strategy.
type StrategyFunc struct {
	Label string
	Fn    func(ctx context.Context, payload *leads.Payload) Attempt
}

func (s StrategyFunc) Name() string { return s.Label }

func (s StrategyFunc) Attempt(ctx context.Context, payload *leads.Payload) Attempt {
	a := s.Fn(ctx, payload)
	if a.Strategy == "" {
		a.Strategy = s.Label
	}
	return a
}
