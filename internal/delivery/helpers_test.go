package delivery

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wolfman30/contractor-leads/internal/forms"
	"github.com/wolfman30/contractor-leads/internal/leads"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func testLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, "error")
}

func testRegistry(t *testing.T) *forms.Registry {
	t.Helper()
	reg, err := forms.LoadDefault()
	require.NoError(t, err)
	return reg
}

func testPayload() *leads.Payload {
	f := leads.NewFormatter("2.0", leads.WithClock(func() time.Time { return fixedNow }))
	return f.Format("plumbing", "Plumbing", forms.State{
		"issue":     forms.Text("clog"),
		"firstName": forms.Text("Sam"),
		"lastName":  forms.Text("Rivera"),
		"phone":     forms.Text("5095550100"),
		"city":      forms.Text("Spokane"),
	})
}

// stubStrategy returns a canned attempt and counts calls.
type stubStrategy struct {
	name    string
	attempt Attempt
	calls   atomic.Int32
	panics  bool
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(context.Context, *leads.Payload) Attempt {
	s.calls.Add(1)
	if s.panics {
		panic("boom")
	}
	return s.attempt
}

type failingQueue struct{ err error }

func (q failingQueue) Enqueue(context.Context, *leads.Payload) (QueuedLead, error) {
	return QueuedLead{}, q.err
}
func (q failingQueue) List(context.Context, int) ([]QueuedLead, error) { return nil, q.err }
func (q failingQueue) Len(context.Context) (int64, error)             { return 0, q.err }

type failingHistory struct{}

func (failingHistory) Append(context.Context, Record) error { return io.ErrClosedPipe }
func (failingHistory) Recent(context.Context, int) ([]Record, error) {
	return nil, io.ErrClosedPipe
}

type recordingNotifier struct {
	calls []Result
	err   error
}

func (n *recordingNotifier) NotifyLead(_ context.Context, _ *leads.Payload, r Result) error {
	n.calls = append(n.calls, r)
	return n.err
}

type panickingHistory struct{}

func (panickingHistory) Append(context.Context, Record) error { panic("history exploded") }
func (panickingHistory) Recent(context.Context, int) ([]Record, error) {
	return nil, nil
}

// blockingNotifier waits for release or for its context to end.
type blockingNotifier struct {
	release chan struct{}
	calls   atomic.Int32
	err     error
}

func (n *blockingNotifier) NotifyLead(ctx context.Context, _ *leads.Payload, _ Result) error {
	n.calls.Add(1)
	select {
	case <-n.release:
		return nil
	case <-ctx.Done():
		n.err = ctx.Err()
		return n.err
	}
}
