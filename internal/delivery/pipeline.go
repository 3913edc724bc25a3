package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/contractor-leads/internal/forms"
	"github.com/wolfman30/contractor-leads/internal/leads"
	"github.com/wolfman30/contractor-leads/internal/observability/metrics"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

const (
	msgDelivered = "Form submitted successfully"
	msgQueued    = "Form queued for processing"
	msgFailed    = "We couldn't submit your request. Please try again or call us directly."

	// DefaultNotifyTimeout bounds one lead notification.
	DefaultNotifyTimeout = 15 * time.Second
)

// Result is what callers of Submit see.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	WebhookID string `json:"webhookId,omitempty"`
	Queued    bool   `json:"queued,omitempty"`
	Channel   string `json:"-"`
}

// ConfigLookup resolves a service id to its form config.
type ConfigLookup interface {
	Lookup(serviceID string) (*forms.ServiceConfig, bool)
}

// Notifier is told about every accepted lead.
type Notifier interface {
	NotifyLead(ctx context.Context, payload *leads.Payload, result Result) error
}

// PipelineConfig wires a Pipeline. Strategies run in order; the last one is
// normally a QueueStrategy.
type PipelineConfig struct {
	Registry   ConfigLookup
	Formatter  *leads.Formatter
	Strategies []Strategy
	History    History
	Notifier   Notifier
	Metrics    *metrics.LeadMetrics
	Logger     *logging.Logger
	Clock      func() time.Time
	// NotifyTimeout bounds each notification; zero means DefaultNotifyTimeout.
	NotifyTimeout time.Duration
}

// Pipeline turns a submitted form state into a delivered (or queued) lead.
// It is safe for concurrent use when its collaborators are.
type Pipeline struct {
	registry   ConfigLookup
	formatter  *leads.Formatter
	strategies []Strategy
	history    History
	notifier   Notifier
	metrics    *metrics.LeadMetrics
	logger     *logging.Logger
	now        func() time.Time

	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Registry == nil {
		return nil, errors.New("delivery: registry required")
	}
	if len(cfg.Strategies) == 0 {
		return nil, ErrNoStrategies
	}
	for i, s := range cfg.Strategies {
		if s == nil {
			return nil, fmt.Errorf("delivery: strategy %d is nil", i)
		}
	}
	formatter := cfg.Formatter
	if formatter == nil {
		formatter = leads.NewFormatter(leads.DefaultFormVersion)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	history := cfg.History
	if history == nil {
		history = NewMemoryHistory(DefaultHistoryLimit)
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	notifyTimeout := cfg.NotifyTimeout
	if notifyTimeout <= 0 {
		notifyTimeout = DefaultNotifyTimeout
	}
	return &Pipeline{
		registry:   cfg.Registry,
		formatter:  formatter,
		strategies: append([]Strategy(nil), cfg.Strategies...),
		history:    history,
		notifier:   cfg.Notifier,
		metrics:    cfg.Metrics,
		logger:     logger,
		now:        now,

		notifyTimeout: notifyTimeout,
	}, nil
}

// History exposes the diagnostic log.
func (p *Pipeline) History() History { return p.history }

// Submit formats the lead and walks the strategies until one accepts it.
// It never panics and never returns a transport error directly: the outcome
// is always described by the Result. Delivery runs detached from ctx
// cancellation so an abandoned request still reaches the queue.
func (p *Pipeline) Submit(ctx context.Context, serviceID string, state forms.State) (result Result) {
	ctx, span := tracer.Start(ctx, "delivery.submit")
	defer span.End()
	span.SetAttributes(attribute.String("lead.service_id", serviceID))
	ctx = context.WithoutCancel(ctx)

	var (
		payload  *leads.Payload
		recorded bool
	)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("delivery: unexpected failure: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			p.logger.Error("lead submission panicked", "service_id", serviceID, "panic", r)
			p.metrics.ObserveSubmission(serviceID, "error")
			result = Result{Success: false, Error: msgFailed}
			if !recorded {
				p.recordSafely(ctx, serviceID, payload, result)
			}
		}
	}()

	cfg, ok := p.registry.Lookup(serviceID)
	if !ok {
		err := fmt.Errorf("%w: %s", forms.ErrUnknownService, serviceID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown service")
		p.logger.Warn("lead submission for unknown service", "service_id", serviceID)
		p.metrics.ObserveSubmission(serviceID, "unknown_service")
		return Result{Success: false, Error: err.Error()}
	}

	payload = p.formatter.Format(cfg.ID, cfg.Title, state)
	span.SetAttributes(
		attribute.String("lead.urgency", string(payload.Summary.Urgency)),
		attribute.String("lead.estimated_value", string(payload.Summary.EstimatedValue)),
	)

	attempt, err := p.deliver(ctx, payload)
	result = toResult(attempt, err)

	outcome := "delivered"
	switch {
	case err != nil:
		outcome = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, "all strategies failed")
		p.logger.Error("lead delivery failed on every tier", "service_id", serviceID, "error", err)
	case attempt.Queued:
		outcome = "queued"
	}
	span.SetAttributes(attribute.String("delivery.channel", attempt.Strategy), attribute.String("delivery.outcome", outcome))
	p.metrics.ObserveSubmission(serviceID, outcome)

	recorded = true
	p.record(ctx, p.newRecord(serviceID, payload, result))
	if result.Success {
		p.notify(ctx, payload, result)
	}
	return result
}

// Wait blocks until in-flight lead notifications finish.
func (p *Pipeline) Wait() { p.pending.Wait() }

// deliver runs the strategies in order and stops at the first success.
func (p *Pipeline) deliver(ctx context.Context, payload *leads.Payload) (Attempt, error) {
	var last Attempt
	var errs []error
	for _, s := range p.strategies {
		attempt := s.Attempt(ctx, payload)
		if attempt.Strategy == "" {
			attempt.Strategy = s.Name()
		}
		p.metrics.ObserveAttempt(attempt.Strategy, attempt.Success, attempt.Duration.Seconds())
		if attempt.Success {
			if len(errs) > 0 {
				p.logger.Info("lead delivered by fallback tier", "service_id", payload.Service.ID, "strategy", attempt.Strategy, "failed_tiers", len(errs))
			}
			return attempt, nil
		}
		if attempt.Err == nil {
			attempt.Err = fmt.Errorf("delivery: %s reported failure", attempt.Strategy)
		}
		errs = append(errs, fmt.Errorf("%s: %w", attempt.Strategy, attempt.Err))
		last = attempt
	}
	return last, fmt.Errorf("%w: %w", ErrAllStrategiesFailed, errors.Join(errs...))
}

func toResult(attempt Attempt, err error) Result {
	if err != nil {
		return Result{Success: false, Error: msgFailed, Channel: attempt.Strategy}
	}
	msg := attempt.Message
	if msg == "" {
		msg = msgDelivered
		if attempt.Queued {
			msg = msgQueued
		}
	}
	res := Result{Success: true, Message: msg, Queued: attempt.Queued, Channel: attempt.Strategy}
	if !attempt.Queued {
		res.WebhookID = attempt.RemoteID
	}
	return res
}

func (p *Pipeline) newRecord(serviceID string, payload *leads.Payload, result Result) Record {
	rec := Record{
		ServiceID: serviceID,
		Success:   result.Success,
		Channel:   result.Channel,
		Timestamp: p.now().UTC(),
		Error:     result.Error,
	}
	if payload != nil {
		rec.ServiceID = payload.Service.ID
		rec.ContactName = payload.ContactName()
	}
	return rec
}

func (p *Pipeline) record(ctx context.Context, rec Record) {
	if err := p.history.Append(ctx, rec); err != nil {
		p.logger.Warn("failed to record submission history", "service_id", rec.ServiceID, "error", err)
	}
}

// recordSafely is used from the panic path; a second panic is logged and dropped.
func (p *Pipeline) recordSafely(ctx context.Context, serviceID string, payload *leads.Payload, result Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("recording failed submission panicked", "service_id", serviceID, "panic", r)
		}
	}()
	p.record(ctx, p.newRecord(serviceID, payload, result))
}

// notify hands the lead to the notifier in the background, bounded by
// notifyTimeout, so a slow mail provider never delays the caller.
func (p *Pipeline) notify(ctx context.Context, payload *leads.Payload, result Result) {
	if p.notifier == nil {
		return
	}
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("lead notification panicked", "service_id", payload.Service.ID, "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, p.notifyTimeout)
		defer cancel()
		if err := p.notifier.NotifyLead(ctx, payload, result); err != nil {
			p.logger.Warn("lead notification failed", "service_id", payload.Service.ID, "error", err)
		}
	}()
}
