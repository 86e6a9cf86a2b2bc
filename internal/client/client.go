// Package client отправляет батчи телеметрии в HTTP API коллектора.
//
// Каждый тип данных имеет свой эндпоинт и формат тела:
//
//	метрики  POST /metric/v1           [{"metrics": [...], "common": {...}}]
//	спаны    POST /trace/v1            [{"spans": [...], "common": {...}}]
//	логи     POST /log/v1              [{"logs": [...], "common": {...}}]
//	события  POST /v1/accounts/events  [...]
//
// Тело всегда сжимается gzip.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RoGogDBD/telemetry-sdk/internal/config"
	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
	"github.com/RoGogDBD/telemetry-sdk/internal/version"
	"github.com/RoGogDBD/telemetry-sdk/pkg/pool"
)

// Хосты и пути API по умолчанию.
const (
	MetricHost = "metric-api.newrelic.com"
	SpanHost   = "trace-api.newrelic.com"
	LogHost    = "log-api.newrelic.com"
	EventHost  = "insights-collector.newrelic.com"

	MetricPath = "/metric/v1"
	SpanPath   = "/trace/v1"
	LogPath    = "/log/v1"
	EventPath  = "/v1/accounts/events"
)

// Заголовки запроса.
const (
	HeaderAPIKey    = "Api-Key"
	HeaderRequestID = "x-request-id"
)

var buffers = pool.New(func() *bytes.Buffer { return new(bytes.Buffer) })

type encodeFunc[T any] func(items []T, common *models.Common) ([]byte, error)

// Client отправляет батчи записей типа T в один эндпоинт.
//
// Методы безопасны для конкурентного использования.
type Client[T any] struct {
	rc             *resty.Client
	path           string
	encode         encodeFunc[T]
	signingKey     string
	retryIntervals []time.Duration
	logger         *zap.Logger

	uaMu      sync.RWMutex
	userAgent string

	closed atomic.Bool
}

type (
	// MetricClient отправляет метрики.
	MetricClient = Client[models.Metric]
	// SpanClient отправляет спаны.
	SpanClient = Client[models.Span]
	// LogClient отправляет логи.
	LogClient = Client[models.Log]
	// EventClient отправляет события. common-блок игнорируется.
	EventClient = Client[models.Event]
)

// NewMetricClient создаёт клиент Metric API.
func NewMetricClient(insertKey string, opts ...Option) *MetricClient {
	return newClient(insertKey, MetricHost, MetricPath, wrapped[models.Metric]("metrics"), opts)
}

// NewSpanClient создаёт клиент Trace API.
func NewSpanClient(insertKey string, opts ...Option) *SpanClient {
	return newClient(insertKey, SpanHost, SpanPath, wrapped[models.Span]("spans"), opts)
}

// NewLogClient создаёт клиент Log API.
func NewLogClient(insertKey string, opts ...Option) *LogClient {
	return newClient(insertKey, LogHost, LogPath, wrapped[models.Log]("logs"), opts)
}

// NewEventClient создаёт клиент Event API.
func NewEventClient(insertKey string, opts ...Option) *EventClient {
	return newClient(insertKey, EventHost, EventPath, bareArray[models.Event], opts)
}

func newClient[T any](insertKey, host, path string, encode encodeFunc[T], opts []Option) *Client[T] {
	o := options{host: host, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = "https://" + o.host
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(o.timeout).
		SetLogger(o.logger.Sugar()).
		SetHeader(HeaderAPIKey, insertKey).
		SetHeader("Content-Encoding", "gzip").
		SetHeader("Content-Type", "application/json")
	if o.proxy != "" {
		rc.SetProxy(o.proxy)
	}

	return &Client[T]{
		rc:             rc,
		path:           path,
		encode:         encode,
		signingKey:     o.signingKey,
		retryIntervals: o.retryIntervals,
		logger:         o.logger,
		userAgent:      version.UserAgent(),
	}
}

// wrapped кодирует батч как [{"<key>": items, "common": common}].
func wrapped[T any](key string) encodeFunc[T] {
	return func(items []T, common *models.Common) ([]byte, error) {
		if items == nil {
			items = []T{}
		}
		entry := map[string]any{key: items}
		if common != nil {
			entry["common"] = common
		}
		return json.Marshal([]map[string]any{entry})
	}
}

func bareArray[T any](items []T, _ *models.Common) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// AddVersionInfo дописывает " product/version" в User-Agent.
func (c *Client[T]) AddVersionInfo(product, productVersion string) {
	c.uaMu.Lock()
	defer c.uaMu.Unlock()
	c.userAgent += " " + product + "/" + productVersion
}

// UserAgent возвращает текущее значение заголовка User-Agent.
func (c *Client[T]) UserAgent() string {
	c.uaMu.RLock()
	defer c.uaMu.RUnlock()
	return c.userAgent
}

// Send отправляет одну запись без common-блока.
func (c *Client[T]) Send(ctx context.Context, item T) (*Response, error) {
	return c.SendBatch(ctx, []T{item}, nil)
}

// SendBatch кодирует, сжимает и отправляет батч.
//
// Ответ с любым HTTP-кодом возвращается без ошибки, проверка кода на стороне
// вызывающего (Response.OK). Сетевые ошибки возвращаются как *TransportError,
// ошибки сериализации как *EncodeError.
// После Close возвращает ErrClosed.
func (c *Client[T]) SendBatch(ctx context.Context, items []T, common *models.Common) (*Response, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	data, err := c.encode(items, common)
	if err != nil {
		return nil, &EncodeError{Err: err}
	}

	buf := buffers.Get()
	defer buffers.Put(buf)
	if err := config.GzipCompress(buf, data); err != nil {
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}

	var hash string
	if c.signingKey != "" {
		hash = config.ComputeHash(data, c.signingKey)
	}

	var resp *Response
	err = config.RetryWithIntervals(ctx, c.retryIntervals, func() error {
		resp = nil
		r, postErr := c.post(ctx, buf.Bytes(), hash)
		if postErr != nil {
			return postErr
		}
		resp = r
		return r.Err()
	})
	if resp != nil {
		c.logger.Debug("batch sent",
			zap.String("path", c.path),
			zap.Int("items", len(items)),
			zap.Int("status", resp.Status),
			zap.String("request_id", resp.RequestID),
		)
		return resp, nil
	}

	var te *TransportError
	if !errors.As(err, &te) {
		err = &TransportError{Op: "POST " + c.path, Err: err}
	}
	return nil, err
}

func (c *Client[T]) post(ctx context.Context, body []byte, hash string) (*Response, error) {
	requestID := uuid.NewString()
	req := c.rc.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.UserAgent()).
		SetHeader(HeaderRequestID, requestID).
		SetBody(body)
	if hash != "" {
		req.SetHeader(config.HashHeader, hash)
	}

	r, err := req.Post(c.path)
	if err != nil {
		return nil, &TransportError{Op: "POST " + c.path, Err: err}
	}
	return &Response{Status: r.StatusCode(), RequestID: requestID, Body: r.Body()}, nil
}

// Close закрывает простаивающие соединения. Повторный вызов ничего не делает.
func (c *Client[T]) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.rc.GetClient().CloseIdleConnections()
	return nil
}
