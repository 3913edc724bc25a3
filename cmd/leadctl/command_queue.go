package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/wolfman30/contractor-leads/internal/app/bootstrap"
	"github.com/wolfman30/contractor-leads/internal/delivery"
)

// runtime holds the storage a command opened; Close releases all of it.
type runtime struct {
	queue      delivery.Queue
	history    delivery.History
	closeQueue func()
	redis      *redis.Client
	pool       *pgxpool.Pool
}

func openRuntime(ctx context.Context, opts *options) (*runtime, error) {
	rt := &runtime{closeQueue: func() {}}
	rt.pool = bootstrap.BuildPostgresPool(ctx, opts.cfg.DatabaseURL, opts.logger)
	if bootstrap.NeedsRedis(opts.cfg) {
		rt.redis = bootstrap.BuildRedisClient(ctx, opts.cfg, opts.logger, true)
		if rt.redis == nil {
			rt.Close()
			return nil, fmt.Errorf("redis at %s is unreachable", opts.cfg.RedisAddr)
		}
	}
	queue, closeQueue, err := bootstrap.BuildQueue(ctx, opts.cfg, rt.pool, rt.redis)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.queue, rt.closeQueue = queue, closeQueue
	history, err := bootstrap.BuildHistory(opts.cfg, rt.redis)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.history = history
	return rt, nil
}

func (rt *runtime) Close() {
	rt.closeQueue()
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if rt.pool != nil {
		rt.pool.Close()
	}
}

func registerQueueCommands(root *cobra.Command, opts *options) {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the local lead queue",
	}

	var limit int
	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List queued leads, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			rt, err := openRuntime(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			entries, err := rt.queue.List(ctx, limit)
			if err != nil {
				return err
			}
			depth, err := rt.queue.Len(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"depth": depth, "leads": entries})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queued leads: %d (backend: %s)\n", depth, opts.cfg.QueueBackend)
			for _, e := range entries {
				service, name := "", ""
				if e.Payload != nil {
					service, name = e.Payload.Service.ID, e.Payload.ContactName()
				}
				fmt.Fprintf(out, "  %s  %s  %-12s %s\n", e.QueuedAt.Format(time.RFC3339), e.ID, service, name)
			}
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", delivery.DefaultQueueListLimit, "Maximum entries to show")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	queueCmd.AddCommand(listCmd)

	var historyLimit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent submission attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			rt, err := openRuntime(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			records, err := rt.history.Recent(ctx, historyLimit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No submissions recorded (backend: %s)\n", opts.cfg.HistoryBackend)
				return nil
			}
			for _, r := range records {
				status := "✓"
				if !r.Success {
					status = "✗"
				}
				fmt.Fprintf(out, "  %s %s  %-12s %-10s %s", status, r.Timestamp.Format(time.RFC3339), r.ServiceID, r.Channel, r.ContactName)
				if r.Error != "" {
					fmt.Fprintf(out, "  (%s)", r.Error)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", delivery.DefaultHistoryLimit, "Maximum records to show")

	root.AddCommand(queueCmd, historyCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
