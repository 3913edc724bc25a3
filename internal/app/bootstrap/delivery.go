package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/contractor-leads/internal/config"
	"github.com/wolfman30/contractor-leads/internal/delivery"
	"github.com/wolfman30/contractor-leads/internal/forms"
	"github.com/wolfman30/contractor-leads/internal/notify"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

// LoadRegistry reads the form catalog from FormsDir, or the embedded one.
func LoadRegistry(cfg *appconfig.Config) (*forms.Registry, error) {
	if cfg.FormsDir != "" {
		return forms.LoadDir(cfg.FormsDir)
	}
	return forms.LoadDefault()
}

// BuildQueue opens the configured local queue. The returned func releases it.
func BuildQueue(ctx context.Context, cfg *appconfig.Config, pool *pgxpool.Pool, client *redis.Client) (delivery.Queue, func(), error) {
	noop := func() {}
	switch cfg.QueueBackend {
	case appconfig.BackendMemory:
		return delivery.NewMemoryQueue(), noop, nil
	case appconfig.BackendRedis:
		if client == nil {
			return nil, noop, fmt.Errorf("bootstrap: redis queue requires a redis client")
		}
		return delivery.NewRedisQueue(client, delivery.DefaultQueueKey), noop, nil
	case appconfig.BackendPostgres:
		if pool == nil {
			return nil, noop, fmt.Errorf("bootstrap: postgres queue requires a reachable DATABASE_URL")
		}
		return delivery.NewPostgresQueue(pool), noop, nil
	default:
		q, err := delivery.OpenSQLiteQueue(ctx, cfg.QueueSQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return q, func() { _ = q.Close() }, nil
	}
}

// BuildHistory returns the configured submission history store.
func BuildHistory(cfg *appconfig.Config, client *redis.Client) (delivery.History, error) {
	if cfg.HistoryBackend == appconfig.BackendRedis {
		if client == nil {
			return nil, fmt.Errorf("bootstrap: redis history requires a redis client")
		}
		return delivery.NewRedisHistory(client, delivery.DefaultHistoryKey, cfg.HistoryLimit), nil
	}
	return delivery.NewMemoryHistory(cfg.HistoryLimit), nil
}

// BuildStrategies orders primary webhook, fallback webhook, then the queue.
// Unset webhook URLs are skipped.
func BuildStrategies(cfg *appconfig.Config, queue delivery.Queue, logger *logging.Logger) []delivery.Strategy {
	var strategies []delivery.Strategy
	if cfg.PrimaryWebhookURL != "" {
		strategies = append(strategies, delivery.NewWebhookStrategy(delivery.WebhookConfig{
			Name:    "primary",
			URL:     cfg.PrimaryWebhookURL,
			Timeout: cfg.WebhookTimeout,
		}, logger))
	}
	if cfg.FallbackWebhookURL != "" {
		strategies = append(strategies, delivery.NewWebhookStrategy(delivery.WebhookConfig{
			Name:    "fallback",
			URL:     cfg.FallbackWebhookURL,
			Timeout: cfg.WebhookTimeout,
		}, logger))
	}
	return append(strategies, delivery.NewQueueStrategy(queue))
}

// BuildNotifier returns nil when no provider or recipients are configured.
func BuildNotifier(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) delivery.Notifier {
	if len(cfg.LeadNotifyEmails) == 0 {
		return nil
	}
	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case appconfig.EmailSendGrid:
		if sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); sg != nil {
			sender = sg
		}
	case appconfig.EmailSES:
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config for SES", "error", err)
			return nil
		}
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
	default:
		sender = notify.NewStubEmailSender(logger)
	}
	if sender == nil {
		return nil
	}
	if n := notify.NewLeadNotifier(sender, cfg.LeadNotifyEmails, logger); n != nil {
		return n
	}
	return nil
}
