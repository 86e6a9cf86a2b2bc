package main

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RoGogDBD/telemetry-sdk/internal/batch"
	"github.com/RoGogDBD/telemetry-sdk/internal/client"
	"github.com/RoGogDBD/telemetry-sdk/internal/config"
	"github.com/RoGogDBD/telemetry-sdk/internal/harvester"
	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
	"github.com/RoGogDBD/telemetry-sdk/internal/repository"
)

func startCollector(t *testing.T, cfg *config.CollectorConfig) (string, func()) {
	t.Helper()

	c, err := NewCollector(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx, ln) }()

	return "http://" + ln.Addr().String(), func() {
		cancel()
		require.NoError(t, <-done)
	}
}

// TestCollector_HarvesterEndToEnd прогоняет метрики через харвестер, клиент
// и коллектор с сохранением дампа на остановке.
func TestCollector_HarvesterEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.CollectorConfig{
		InsertKey: "key",
		DumpFile:  filepath.Join(dir, "dump.json"),
		AuditFile: filepath.Join(dir, "audit", "audit.log"),
	}
	url, stop := startCollector(t, cfg)

	mb := batch.NewMetricBatch(models.Attributes{"service": "e2e"})
	h := harvester.New[models.Metric](
		client.NewMetricClient("key", client.WithBaseURL(url)),
		mb,
		harvester.WithInterval(time.Hour),
	)
	require.NoError(t, h.Start())
	mb.RecordGauge("temperature", 21, nil)
	mb.RecordCount("requests", 5, models.Attributes{"path": "/"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.Stop(ctx))

	resp, err := http.Get(url + "/stats")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stop()

	restored := repository.NewMemStorage()
	require.NoError(t, repository.LoadBatchesFromFile(context.Background(), restored, cfg.DumpFile))
	require.Equal(t, repository.Stats{Batches: 1, Items: 2}, restored.Stats()[repository.DataMetrics])
	require.FileExists(t, cfg.AuditFile)
}

func TestCollector_RestoresDump(t *testing.T) {
	dump := filepath.Join(t.TempDir(), "dump.json")
	seed := repository.NewMemStorage()
	require.NoError(t, seed.Store(context.Background(), repository.ReceivedBatch{DataType: repository.DataSpans}))
	require.NoError(t, repository.SaveBatchesToFile(seed, dump))

	c, err := NewCollector(context.Background(), &config.CollectorConfig{InsertKey: "k", DumpFile: dump}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, c.storage.Stats()[repository.DataSpans].Batches)
}
