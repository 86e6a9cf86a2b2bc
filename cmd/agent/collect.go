package main

import (
	"context"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/RoGogDBD/telemetry-sdk/internal/batch"
	"github.com/RoGogDBD/telemetry-sdk/internal/clock"
	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
)

// hostStats — снимок метрик хоста.
type hostStats struct {
	CPUPercent  []float64
	MemTotal    uint64
	MemFree     uint64
	MemUsedPct  float64
	Load1       float64
	Load5       float64
	Load15      float64
	LoadMissing bool
}

type hostSampler func(ctx context.Context) (hostStats, error)

// sampleHost читает метрики хоста через gopsutil.
// Средняя загрузка есть не на всех ОС, её отсутствие ошибкой не считается.
func sampleHost(ctx context.Context) (hostStats, error) {
	var s hostStats

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return s, err
	}
	s.MemTotal, s.MemFree, s.MemUsedPct = vm.Total, vm.Free, vm.UsedPercent

	s.CPUPercent, err = cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return s, err
	}

	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		s.LoadMissing = true
	} else {
		s.Load1, s.Load5, s.Load15 = avg.Load1, avg.Load5, avg.Load15
	}
	return s, nil
}

// Collector опрашивает рантайм и хост и пишет результаты в батчи.
type Collector struct {
	metrics *batch.MetricBatch
	spans   *batch.SpanBatch
	clock   clock.Clock
	sample  hostSampler
	logger  *zap.Logger

	pollCount atomic.Int64
	traceID   string
}

// NewCollector создаёт Collector. sample == nil означает sampleHost.
func NewCollector(metrics *batch.MetricBatch, spans *batch.SpanBatch, clk clock.Clock, sample hostSampler, logger *zap.Logger) *Collector {
	if sample == nil {
		sample = sampleHost
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		metrics: metrics,
		spans:   spans,
		clock:   clk,
		sample:  sample,
		logger:  logger,
		traceID: models.NewSpan("agent").TraceID,
	}
}

// Poll выполняет один цикл опроса и записывает спан с его длительностью.
func (c *Collector) Poll(ctx context.Context) {
	start := c.clock.Now()

	c.collectRuntime()
	hostErr := c.collectHost(ctx)

	end := c.clock.Now()
	elapsed := end.Sub(start)
	c.metrics.RecordSummary("agent.poll.duration.ms", float64(elapsed)/float64(time.Millisecond), nil)

	attrs := models.Attributes{"poll.count": c.pollCount.Load()}
	if hostErr != nil {
		attrs["error.message"] = hostErr.Error()
	}
	span := models.NewSpan("agent.poll",
		models.WithTraceID(c.traceID),
		models.WithStartTime(start.UnixMilli()),
		models.WithSpanAttributes(attrs),
	)
	span.Finish(end.UnixMilli())
	c.spans.Record(span)
}

func (c *Collector) collectRuntime() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	gauges := map[string]float64{
		"Alloc":         float64(m.Alloc),
		"BuckHashSys":   float64(m.BuckHashSys),
		"GCCPUFraction": m.GCCPUFraction,
		"GCSys":         float64(m.GCSys),
		"HeapAlloc":     float64(m.HeapAlloc),
		"HeapIdle":      float64(m.HeapIdle),
		"HeapInuse":     float64(m.HeapInuse),
		"HeapObjects":   float64(m.HeapObjects),
		"HeapReleased":  float64(m.HeapReleased),
		"HeapSys":       float64(m.HeapSys),
		"LastGC":        float64(m.LastGC),
		"MCacheInuse":   float64(m.MCacheInuse),
		"MCacheSys":     float64(m.MCacheSys),
		"MSpanInuse":    float64(m.MSpanInuse),
		"MSpanSys":      float64(m.MSpanSys),
		"NextGC":        float64(m.NextGC),
		"OtherSys":      float64(m.OtherSys),
		"StackInuse":    float64(m.StackInuse),
		"StackSys":      float64(m.StackSys),
		"Sys":           float64(m.Sys),
		"TotalAlloc":    float64(m.TotalAlloc),
		"NumGoroutine":  float64(runtime.NumGoroutine()),
		"RandomValue":   rand.Float64() * 100,
	}
	for name, v := range gauges {
		c.metrics.RecordGauge("runtime."+name, v, nil)
	}

	c.metrics.RecordCount("agent.PollCount", 1, nil)
	c.pollCount.Add(1)
}

func (c *Collector) collectHost(ctx context.Context) error {
	s, err := c.sample(ctx)
	if err != nil {
		c.logger.Warn("failed to sample host metrics", zap.Error(err))
		return err
	}

	c.metrics.RecordGauge("host.TotalMemory", float64(s.MemTotal), nil)
	c.metrics.RecordGauge("host.FreeMemory", float64(s.MemFree), nil)
	c.metrics.RecordSummary("host.MemoryUsedPercent", s.MemUsedPct, nil)
	for i, pct := range s.CPUPercent {
		c.metrics.RecordSummary("host.CPUutilization", pct, models.Attributes{"cpu": i})
	}
	if !s.LoadMissing {
		c.metrics.RecordGauge("host.LoadAverage", s.Load1, models.Attributes{"window": "1m"})
		c.metrics.RecordGauge("host.LoadAverage", s.Load5, models.Attributes{"window": "5m"})
		c.metrics.RecordGauge("host.LoadAverage", s.Load15, models.Attributes{"window": "15m"})
	}
	return nil
}

// Run опрашивает метрики каждые interval, пока не отменён ctx.
func (c *Collector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Poll(ctx)
		}
	}
}
