package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/contractor-leads/internal/forms"
	"github.com/wolfman30/contractor-leads/internal/leads"
	"github.com/wolfman30/contractor-leads/internal/observability/metrics"
)

func plumbingState() forms.State {
	return forms.State{
		"issue":     forms.Text("clog"),
		"firstName": forms.Text("Sam"),
		"lastName":  forms.Text("Rivera"),
		"email":     forms.Text("sam@example.com"),
		"phone":     forms.Text("5095550100"),
		"city":      forms.Text("Spokane"),
	}
}

func newTestPipeline(t *testing.T, strategies []Strategy, opts ...func(*PipelineConfig)) *Pipeline {
	t.Helper()
	cfg := PipelineConfig{
		Registry:   testRegistry(t),
		Formatter:  leads.NewFormatter("2.0", leads.WithClock(func() time.Time { return fixedNow })),
		Strategies: strategies,
		Logger:     testLogger(),
		Clock:      func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	return p
}

func TestSubmitPrimaryFailsNoFallbackQueues(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	queue := NewMemoryQueue()
	p := newTestPipeline(t, []Strategy{
		NewWebhookStrategy(WebhookConfig{Name: "primary", URL: srv.URL}, testLogger()),
		NewQueueStrategy(queue),
	})

	res := p.Submit(context.Background(), "plumbing", plumbingState())

	assert.True(t, res.Success)
	assert.True(t, res.Queued)
	assert.Equal(t, "Form queued for processing", res.Message)
	assert.Empty(t, res.Error)
	assert.Empty(t, res.WebhookID)
	assert.Equal(t, int32(1), hits.Load())

	n, err := queue.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSubmitPrimarySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"lead-42"}`))
	}))
	defer srv.Close()

	queue := NewMemoryQueue()
	fallback := &stubStrategy{name: "fallback"}
	p := newTestPipeline(t, []Strategy{
		NewWebhookStrategy(WebhookConfig{Name: "primary", URL: srv.URL}, testLogger()),
		fallback,
		NewQueueStrategy(queue),
	})

	res := p.Submit(context.Background(), "plumbing", plumbingState())

	assert.True(t, res.Success)
	assert.Equal(t, "Form submitted successfully", res.Message)
	assert.Equal(t, "lead-42", res.WebhookID)
	assert.Equal(t, "primary", res.Channel)
	assert.Zero(t, fallback.calls.Load())
	n, _ := queue.Len(context.Background())
	assert.Zero(t, n)
}

func TestSubmitFallbackUsedAfterPrimaryFails(t *testing.T) {
	primary := &stubStrategy{name: "primary", attempt: Attempt{Err: errors.New("timeout")}}
	fallback := &stubStrategy{name: "fallback", attempt: Attempt{Success: true, RemoteID: "fb-1"}}
	queue := NewMemoryQueue()
	p := newTestPipeline(t, []Strategy{primary, fallback, NewQueueStrategy(queue)})

	res := p.Submit(context.Background(), "plumbing", plumbingState())

	assert.True(t, res.Success)
	assert.Equal(t, "fb-1", res.WebhookID)
	assert.Equal(t, "Form submitted successfully", res.Message)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), fallback.calls.Load())
	n, _ := queue.Len(context.Background())
	assert.Zero(t, n)
}

func TestSubmitUnknownServiceFailsFast(t *testing.T) {
	primary := &stubStrategy{name: "primary", attempt: Attempt{Success: true}}
	history := NewMemoryHistory(10)
	p := newTestPipeline(t, []Strategy{primary}, func(c *PipelineConfig) { c.History = history })

	res := p.Submit(context.Background(), "pool-cleaning", forms.State{})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "pool-cleaning")
	assert.Zero(t, primary.calls.Load())
	recs, _ := history.Recent(context.Background(), 0)
	assert.Empty(t, recs)
}

func TestSubmitQueueFailureReportsFailure(t *testing.T) {
	primary := &stubStrategy{name: "primary", attempt: Attempt{Err: errors.New("refused")}}
	notifier := &recordingNotifier{}
	history := NewMemoryHistory(10)
	p := newTestPipeline(t, []Strategy{primary, NewQueueStrategy(failingQueue{err: errors.New("disk full")})},
		func(c *PipelineConfig) {
			c.Notifier = notifier
			c.History = history
		})

	res := p.Submit(context.Background(), "plumbing", plumbingState())
	p.Wait()

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, notifier.calls)

	recs, _ := history.Recent(context.Background(), 0)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Success)
	assert.Equal(t, "queue", recs[0].Channel)
}

func TestSubmitRecoversPanics(t *testing.T) {
	history := NewMemoryHistory(10)
	p := newTestPipeline(t, []Strategy{&stubStrategy{name: "primary", panics: true}},
		func(c *PipelineConfig) { c.History = history })

	var res Result
	require.NotPanics(t, func() {
		res = p.Submit(context.Background(), "plumbing", plumbingState())
	})
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)

	recs, err := history.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "plumbing", recs[0].ServiceID)
	assert.Equal(t, "Sam Rivera", recs[0].ContactName)
	assert.False(t, recs[0].Success)
	assert.Equal(t, fixedNow, recs[0].Timestamp)
}

func TestSubmitPanickingHistoryStillReturnsResult(t *testing.T) {
	p := newTestPipeline(t, []Strategy{&stubStrategy{name: "primary", panics: true}},
		func(c *PipelineConfig) { c.History = panickingHistory{} })

	var res Result
	require.NotPanics(t, func() {
		res = p.Submit(context.Background(), "plumbing", plumbingState())
	})
	assert.False(t, res.Success)
}

func TestSubmitCanceledContextStillQueues(t *testing.T) {
	queue := NewMemoryQueue()
	primary := &stubStrategy{name: "primary", attempt: Attempt{Err: errors.New("502 bad gateway")}}
	p := newTestPipeline(t, []Strategy{primary, NewQueueStrategy(queue)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := p.Submit(ctx, "plumbing", plumbingState())

	assert.True(t, res.Success)
	assert.True(t, res.Queued)
	n, err := queue.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSubmitCanceledContextStillQueuesToSQLite(t *testing.T) {
	queue, err := OpenSQLiteQueue(context.Background(), filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	defer queue.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	primary := NewWebhookStrategy(WebhookConfig{Name: "primary", URL: srv.URL}, testLogger())
	p := newTestPipeline(t, []Strategy{primary, NewQueueStrategy(queue)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := p.Submit(ctx, "plumbing", plumbingState())

	assert.True(t, res.Success)
	n, err := queue.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSubmitNotifiesWithoutBlocking(t *testing.T) {
	release := make(chan struct{})
	notifier := &blockingNotifier{release: release}
	p := newTestPipeline(t, []Strategy{&stubStrategy{name: "primary", attempt: Attempt{Success: true}}},
		func(c *PipelineConfig) {
			c.Notifier = notifier
			c.NotifyTimeout = time.Second
		})

	done := make(chan Result, 1)
	go func() { done <- p.Submit(context.Background(), "plumbing", plumbingState()) }()

	select {
	case res := <-done:
		assert.True(t, res.Success)
	case <-time.After(2 * time.Second):
		t.Fatal("Submit waited on the notifier")
	}
	close(release)
	p.Wait()
	assert.Equal(t, int32(1), notifier.calls.Load())
}

func TestSubmitNotifyIsBounded(t *testing.T) {
	notifier := &blockingNotifier{release: make(chan struct{})}
	p := newTestPipeline(t, []Strategy{&stubStrategy{name: "primary", attempt: Attempt{Success: true}}},
		func(c *PipelineConfig) {
			c.Notifier = notifier
			c.NotifyTimeout = 20 * time.Millisecond
		})

	ctx, cancel := context.WithCancel(context.Background())
	res := p.Submit(ctx, "plumbing", plumbingState())
	cancel()
	require.True(t, res.Success)

	p.Wait()
	assert.ErrorIs(t, notifier.err, context.DeadlineExceeded)
}

func TestSubmitRecordsHistoryAndNotifies(t *testing.T) {
	history := NewMemoryHistory(10)
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	p := newTestPipeline(t, []Strategy{&stubStrategy{name: "primary", attempt: Attempt{Success: true}}},
		func(c *PipelineConfig) {
			c.History = history
			c.Notifier = notifier
		})

	res := p.Submit(context.Background(), "plumbing", plumbingState())
	require.True(t, res.Success)
	p.Wait()

	recs, err := history.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, Record{
		ServiceID:   "plumbing",
		Success:     true,
		Channel:     "primary",
		Timestamp:   fixedNow,
		ContactName: "Sam Rivera",
	}, recs[0])
	require.Len(t, notifier.calls, 1)
	assert.True(t, notifier.calls[0].Success)
}

func TestSubmitHistoryFailureIsNotFatal(t *testing.T) {
	p := newTestPipeline(t, []Strategy{&stubStrategy{name: "primary", attempt: Attempt{Success: true}}},
		func(c *PipelineConfig) { c.History = failingHistory{} })

	res := p.Submit(context.Background(), "plumbing", plumbingState())
	assert.True(t, res.Success)
}

func TestSubmitHistoryIsBounded(t *testing.T) {
	p := newTestPipeline(t, []Strategy{NewQueueStrategy(NewMemoryQueue())})
	for i := 0; i < 25; i++ {
		p.Submit(context.Background(), "plumbing", plumbingState())
	}
	recs, err := p.History().Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recs, DefaultHistoryLimit)
}

func TestSubmitConcurrentQueueWrites(t *testing.T) {
	queue := NewMemoryQueue()
	p := newTestPipeline(t, []Strategy{
		&stubStrategy{name: "primary", attempt: Attempt{Err: errors.New("down")}},
		NewQueueStrategy(queue),
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Submit(context.Background(), "plumbing", plumbingState())
		}()
	}
	wg.Wait()

	n, _ := queue.Len(context.Background())
	assert.Equal(t, int64(20), n)
}

func TestSubmitObservesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewLeadMetrics(reg)
	p := newTestPipeline(t, []Strategy{
		&stubStrategy{name: "primary", attempt: Attempt{Err: errors.New("down")}},
		NewQueueStrategy(NewMemoryQueue()),
	}, func(c *PipelineConfig) { c.Metrics = m })

	p.Submit(context.Background(), "plumbing", plumbingState())

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "contractor_leads_submissions_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "outcome" {
					counts[lp.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"queued": 1}, counts)
}

func TestNewPipelineRequiresStrategies(t *testing.T) {
	_, err := NewPipeline(PipelineConfig{Registry: testRegistry(t)})
	assert.ErrorIs(t, err, ErrNoStrategies)

	_, err = NewPipeline(PipelineConfig{Strategies: []Strategy{NewQueueStrategy(NewMemoryQueue())}})
	assert.Error(t, err)
}
