package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RoGogDBD/telemetry-sdk/internal/batch"
	"github.com/RoGogDBD/telemetry-sdk/internal/client"
	"github.com/RoGogDBD/telemetry-sdk/internal/config"
	"github.com/RoGogDBD/telemetry-sdk/internal/harvester"
	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
	"github.com/RoGogDBD/telemetry-sdk/internal/telemetrylog"
	"github.com/RoGogDBD/telemetry-sdk/internal/version"
)

const productName = "telemetry-agent"

// stopper — общий интерфейс харвестеров разных типов.
type stopper interface {
	Start() error
	Stop(ctx context.Context) error
}

// Agent собирает метрики, спаны, логи и события и отправляет их
// отдельным харвестером на каждый тип данных.
type Agent struct {
	cfg    *config.AgentConfig
	logger *zap.Logger

	metrics *batch.MetricBatch
	spans   *batch.SpanBatch
	logs    *batch.LogBatch
	events  *batch.EventBatch

	collector  *Collector
	harvesters []stopper
}

// NewAgent создаёт агента. base — логгер процесса; логи уровня info и выше
// дополнительно уходят в LogBatch.
func NewAgent(cfg *config.AgentConfig, base *zap.Logger) *Agent {
	hostname, _ := os.Hostname()
	tags := models.Attributes{
		"service.name": cfg.ServiceName,
		"host.name":    hostname,
	}

	a := &Agent{
		cfg:     cfg,
		metrics: batch.NewMetricBatch(tags),
		spans:   batch.NewSpanBatch(tags),
		logs:    batch.NewLogBatch(tags),
		events:  batch.NewEventBatch(),
	}
	a.logger = telemetrylog.Tee(base, a.logs, zapcore.InfoLevel)
	a.collector = NewCollector(a.metrics, a.spans, nil, nil, a.logger)

	opts := []client.Option{
		client.WithBaseURL(cfg.Address.URL()),
		client.WithTimeout(cfg.SendTimeout),
		client.WithSigningKey(cfg.Key),
		client.WithLogger(base),
	}
	hopts := func(name string) []harvester.Option {
		// Харвестеры пишут в base, иначе ошибки отправки логов попадали бы в LogBatch.
		return []harvester.Option{
			harvester.WithName(name),
			harvester.WithInterval(cfg.HarvestInterval),
			harvester.WithSendTimeout(cfg.SendTimeout),
			harvester.WithLogger(base),
		}
	}

	metricClient := client.NewMetricClient(cfg.InsertKey, opts...)
	spanClient := client.NewSpanClient(cfg.InsertKey, opts...)
	logClient := client.NewLogClient(cfg.InsertKey, opts...)
	eventClient := client.NewEventClient(cfg.InsertKey, opts...)
	for _, c := range []interface{ AddVersionInfo(string, string) }{metricClient, spanClient, logClient, eventClient} {
		c.AddVersionInfo(productName, version.SDKVersion)
	}

	a.harvesters = []stopper{
		harvester.New[models.Metric](metricClient, a.metrics, hopts("metrics")...),
		harvester.New[models.Span](spanClient, a.spans, hopts("spans")...),
		harvester.New[models.Log](logClient, a.logs, hopts("logs")...),
		harvester.New[models.Event](eventClient, harvester.WithoutCommon(a.events.Flush), hopts("events")...),
	}
	return a
}

// Run запускает харвестеры и опрос метрик. Блокируется до отмены ctx,
// затем останавливает харвестеры, дожидаясь их не дольше stopTimeout.
func (a *Agent) Run(ctx context.Context, stopTimeout time.Duration) error {
	for _, h := range a.harvesters {
		if err := h.Start(); err != nil {
			return fmt.Errorf("failed to start harvester: %w", err)
		}
	}

	a.events.Record(models.NewEvent("AgentStarted", models.Attributes{
		"service.name":     a.cfg.ServiceName,
		"harvest.interval": a.cfg.HarvestInterval.String(),
		"poll.interval":    a.cfg.PollInterval.String(),
	}, 0))
	a.logger.Info("agent started",
		zap.String("collector", a.cfg.Address.URL()),
		zap.Duration("harvest_interval", a.cfg.HarvestInterval),
		zap.Duration("poll_interval", a.cfg.PollInterval),
	)

	a.collector.Run(ctx, a.cfg.PollInterval)

	a.logger.Info("agent stopping")
	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	return a.stopHarvesters(stopCtx)
}

func (a *Agent) stopHarvesters(ctx context.Context) error {
	errs := make(chan error, len(a.harvesters))
	for _, h := range a.harvesters {
		go func() { errs <- h.Stop(ctx) }()
	}

	var joined error
	for range a.harvesters {
		joined = errors.Join(joined, <-errs)
	}
	return joined
}
