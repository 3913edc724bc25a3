// Package wizard drives the two-step quote form: service details first,
// contact information second, then submission.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/contractor-leads/internal/delivery"
	"github.com/wolfman30/contractor-leads/internal/forms"
	"github.com/wolfman30/contractor-leads/internal/observability/metrics"
)

// SuccessResetDelay is how long a hosting UI shows the success state
// before closing the form and calling Reset.
const SuccessResetDelay = 3 * time.Second

var (
	// ErrSubmitInProgress is returned while a previous submission is in flight.
	ErrSubmitInProgress = errors.New("wizard: submission already in progress")
	// ErrStepInvalid means the current step has field errors; see Errors.
	ErrStepInvalid = errors.New("wizard: current step has invalid fields")
	// ErrNotFinalStep is returned by Submit before the contact step is reached.
	ErrNotFinalStep = errors.New("wizard: submit is only allowed on the contact step")
	// ErrSubmitFailed wraps a submission the pipeline did not accept.
	ErrSubmitFailed = errors.New("wizard: submission failed")
)

// Status is where the form is in its lifecycle.
type Status int

const (
	StatusEditing Status = iota
	StatusSubmitted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSubmitted:
		return "submitted"
	case StatusFailed:
		return "failed"
	default:
		return "editing"
	}
}

// Submitter accepts a completed form. *delivery.Pipeline satisfies it.
type Submitter interface {
	Submit(ctx context.Context, serviceID string, state forms.State) delivery.Result
}

// Option customizes a Controller.
type Option func(*Controller)

// WithMetrics counts validation failures per step.
func WithMetrics(m *metrics.LeadMetrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// Controller owns one form session. All methods are safe to call from
// multiple goroutines; Submit never holds the lock while the submitter runs.
type Controller struct {
	cfg       *forms.ServiceConfig
	steps     [2]forms.Step
	submitter Submitter
	metrics   *metrics.LeadMetrics

	mu         sync.Mutex
	step       forms.StepIndex
	values     forms.State
	errors     forms.Errors
	submitting bool
	status     Status
	result     *delivery.Result
}

// New starts a session on step 0 with empty state.
func New(cfg *forms.ServiceConfig, submitter Submitter, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil service config", forms.ErrInvalidConfig)
	}
	if submitter == nil {
		return nil, errors.New("wizard: submitter required")
	}
	c := &Controller{
		cfg:       cfg,
		steps:     forms.Steps(cfg),
		submitter: submitter,
		values:    forms.State{},
		errors:    forms.Errors{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) Service() *forms.ServiceConfig { return c.cfg }

func (c *Controller) Step() forms.StepIndex {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// CurrentStep returns the step definition with all its configured fields.
func (c *Controller) CurrentStep() forms.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps[c.step]
}

// Fields returns the fields of the current step that are visible for the
// current values.
func (c *Controller) Fields() []forms.FieldSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return forms.VisibleFields(c.steps[c.step].Fields, c.values)
}

// SetValue records an answer and clears any error shown for that field.
func (c *Controller) SetValue(name string, v forms.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = v
	delete(c.errors, name)
	if c.status == StatusFailed {
		c.status = StatusEditing
	}
}

func (c *Controller) Values() forms.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values.Clone()
}

func (c *Controller) Errors() forms.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(forms.Errors, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Result is the outcome of the last submission, if any.
func (c *Controller) Result() (delivery.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return delivery.Result{}, false
	}
	return *c.result, true
}

// Next validates the current step. On step 0 it advances; on the contact
// step it submits.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	if c.step == forms.StepContact {
		c.mu.Unlock()
		return c.Submit(ctx)
	}
	if !c.validateLocked() {
		c.mu.Unlock()
		return ErrStepInvalid
	}
	c.step = forms.StepContact
	c.mu.Unlock()
	return nil
}

// Previous goes back to the service step without validating. It reports
// whether the step changed.
func (c *Controller) Previous() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting || c.step == forms.StepServiceDetails {
		return false
	}
	c.step = forms.StepServiceDetails
	return true
}

// Submit validates the contact step and hands the values to the submitter.
// The submitting flag is held for the whole call and always released.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	if c.step != forms.StepContact {
		c.mu.Unlock()
		return ErrNotFinalStep
	}
	if !c.validateLocked() {
		c.mu.Unlock()
		return ErrStepInvalid
	}
	c.submitting = true
	state := c.values.Clone()
	c.mu.Unlock()

	var res delivery.Result
	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.result = &res
		if res.Success {
			c.status = StatusSubmitted
		} else {
			c.status = StatusFailed
		}
		c.mu.Unlock()
	}()

	res = c.submitter.Submit(ctx, c.cfg.ID, state)
	if !res.Success {
		return fmt.Errorf("%w: %s", ErrSubmitFailed, res.Error)
	}
	return nil
}

// Reset returns to the initial state: step 0, no values, no errors.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = forms.StepServiceDetails
	c.values = forms.State{}
	c.errors = forms.Errors{}
	c.status = StatusEditing
	c.result = nil
}

func (c *Controller) validateLocked() bool {
	errs, err := forms.ValidateStep(c.cfg, c.step, c.values)
	if err != nil {
		errs = forms.Errors{"": err.Error()}
	}
	c.errors = errs
	if len(errs) == 0 {
		return true
	}
	c.metrics.ObserveValidationFailure(c.cfg.ID, c.step.Label())
	return false
}

