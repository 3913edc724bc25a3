package delivery

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/wolfman30/contractor-leads/internal/observability/metrics"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// DefaultMonitorSchedule samples queue depth once a minute.
const DefaultMonitorSchedule = "@every 1m"

// QueueMonitor periodically publishes the local queue depth as a gauge so
// operators notice leads piling up behind dead webhooks.
type QueueMonitor struct {
	queue   Queue
	metrics *metrics.LeadMetrics
	logger  *logging.Logger
	cron    *cron.Cron
}

func NewQueueMonitor(queue Queue, m *metrics.LeadMetrics, logger *logging.Logger) *QueueMonitor {
	if logger == nil {
		logger = logging.Default()
	}
	return &QueueMonitor{
		queue:   queue,
		metrics: m,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start schedules sampling and runs one sample immediately.
func (m *QueueMonitor) Start(ctx context.Context, schedule string) error {
	if m.queue == nil {
		return nil
	}
	if schedule == "" {
		schedule = DefaultMonitorSchedule
	}
	if _, err := m.cron.AddFunc(schedule, func() { m.Sample(ctx) }); err != nil {
		return fmt.Errorf("delivery: schedule queue monitor: %w", err)
	}
	m.Sample(ctx)
	m.cron.Start()
	m.logger.Info("queue monitor started", "schedule", schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sample to finish.
func (m *QueueMonitor) Stop() {
	<-m.cron.Stop().Done()
}

// Sample reads the queue length once and updates the gauge.
func (m *QueueMonitor) Sample(ctx context.Context) {
	depth, err := m.queue.Len(ctx)
	if err != nil {
		m.logger.Warn("queue depth sample failed", "error", err)
		return
	}
	m.metrics.SetQueueDepth(depth)
	if depth > 0 {
		m.logger.Debug("leads waiting in local queue", "depth", depth)
	}
}
