package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abraxas-365/fetchdrain/pkg/config"
	"github.com/Abraxas-365/fetchdrain/pkg/drainx"
	"github.com/Abraxas-365/fetchdrain/pkg/errx"
	"github.com/Abraxas-365/fetchdrain/pkg/logx"
	"github.com/Abraxas-365/fetchdrain/pkg/report"
)

var cmdErrors = errx.NewRegistry("CMD")

var ErrConnect = cmdErrors.Register("CONNECT", errx.TypeExternal, "Failed to connect to infrastructure")

func errConnect(service, target string, cause error) error {
	return cmdErrors.NewWithCause(ErrConnect, cause).
		WithDetail("service", service).
		WithDetail("target", target)
}

func main() {
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}

	container, err := NewContainer(ctx, cfg)
	if err != nil {
		logx.Fatalf("Failed to initialize: %v", err)
	}

	err = run(ctx, container)
	container.Cleanup()
	if err != nil {
		logx.WithError(err).Error("Drain failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, c *Container) error {
	items, err := c.Source.ListWorkItems(ctx)
	if err != nil {
		return err
	}
	logx.Infof("Draining %d work items", len(items))

	if c.Fetcher != nil {
		return drain(ctx, c, items, c.Fetcher.Process)
	}
	return drain(ctx, c, items, c.Simulated.Process)
}

func drain[R any](ctx context.Context, c *Container, items []string, process drainx.ProcessFunc[string, R]) error {
	sinks := []drainx.CompleteFunc[string, R]{report.Log[string, R](nil)}

	var history *report.RedisLog[string, R]
	if c.Redis != nil {
		history = report.NewRedisLog[string, R](c.Redis,
			report.WithTTL(c.Config.Redis.TTL),
			report.WithClock(c.Clock))
		sinks = append(sinks, history.Complete)
	}

	summary, err := drainx.New(process, c.DrainOptions()...).Drain(ctx, items, report.Chain(sinks...))

	logx.WithFields(logx.Fields{
		"batch_id":  summary.BatchID,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   len(summary.Skipped),
	}).Info("Batch summary")

	if history != nil {
		records, herr := history.History(context.WithoutCancel(ctx), summary.BatchID)
		if herr != nil {
			logx.WithError(herr).Warn("Could not read back completion log")
		} else {
			logx.Infof("Completion log %s holds %d records", report.OutcomesKey(summary.BatchID), len(records))
		}
	}
	return err
}
