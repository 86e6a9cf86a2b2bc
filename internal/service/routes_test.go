package service

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RoGogDBD/telemetry-sdk/internal/batch"
	"github.com/RoGogDBD/telemetry-sdk/internal/client"
	"github.com/RoGogDBD/telemetry-sdk/internal/config"
	"github.com/RoGogDBD/telemetry-sdk/internal/handler"
	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
	"github.com/RoGogDBD/telemetry-sdk/internal/repository"
)

func newTestServer(t *testing.T) (*httptest.Server, *repository.MemStorage) {
	t.Helper()
	storage := repository.NewMemStorage()
	h := handler.NewHandler(storage, "insert-key", nil)
	h.SetKey("sign")
	srv := httptest.NewServer(NewRouter(h, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, storage
}

// TestNewRouter_ClientsRoundTrip отправляет данные клиентами SDK в роутер коллектора.
func TestNewRouter_ClientsRoundTrip(t *testing.T) {
	srv, storage := newTestServer(t)
	ctx := context.Background()
	opts := []client.Option{client.WithBaseURL(srv.URL), client.WithSigningKey("sign")}

	mb := batch.NewMetricBatch(models.Attributes{"service": "api"})
	mb.RecordCount("requests", 2, nil)
	mb.RecordSummary("latency", 0.3, nil)
	items, common := mb.Flush()
	resp, err := client.NewMetricClient("insert-key", opts...).SendBatch(ctx, items, common)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.Status)

	resp, err = client.NewSpanClient("insert-key", opts...).Send(ctx, models.NewSpan("op"))
	require.NoError(t, err)
	require.True(t, resp.OK())

	resp, err = client.NewLogClient("insert-key", opts...).Send(ctx, models.NewLog("hello", 0, nil))
	require.NoError(t, err)
	require.True(t, resp.OK())

	resp, err = client.NewEventClient("insert-key", opts...).Send(ctx, models.NewEvent("Deploy", nil, 0))
	require.NoError(t, err)
	require.True(t, resp.OK())

	stats := storage.Stats()
	require.Equal(t, repository.Stats{Batches: 1, Items: 2}, stats[repository.DataMetrics])
	require.Equal(t, 1, stats[repository.DataSpans].Items)
	require.Equal(t, 1, stats[repository.DataLogs].Items)
	require.Equal(t, 1, stats[repository.DataEvents].Items)

	all := storage.All()
	require.Equal(t, resp.RequestID, all[len(all)-1].RequestID)
}

func TestNewRouter_RejectsWrongKey(t *testing.T) {
	srv, storage := newTestServer(t)

	resp, err := client.NewMetricClient("wrong", client.WithBaseURL(srv.URL)).
		SendBatch(context.Background(), []models.Metric{models.NewGaugeMetric("g", 1)}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.Status)
	require.Empty(t, storage.Stats())
}

func TestNewRouter_InvalidGzip(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+client.LogPath, bytes.NewReader([]byte("plain")))
	require.NoError(t, err)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set(client.HeaderAPIKey, "insert-key")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewRouter_GzipBombRejected(t *testing.T) {
	srv, storage := newTestServer(t)

	var buf bytes.Buffer
	require.NoError(t, config.GzipCompress(&buf, make([]byte, handler.MaxBodySize+1)))
	req, err := http.NewRequest(http.MethodPost, srv.URL+client.MetricPath, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set(client.HeaderAPIKey, "insert-key")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	require.Empty(t, storage.Stats())
}

func TestNewRouter_Stats(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	require.NoError(t, config.GzipCompress(&buf, []byte(`[{"eventType":"A","timestamp":1}]`)))
	req, err := http.NewRequest(http.MethodPost, srv.URL+client.EventPath, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set(client.HeaderAPIKey, "insert-key")
	req.Header.Set(config.HashHeader, config.ComputeHash([]byte(`[{"eventType":"A","timestamp":1}]`), "sign"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(config.HashHeader))
}
