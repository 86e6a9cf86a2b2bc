package client

import (
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

type options struct {
	host           string
	baseURL        string
	timeout        time.Duration
	retryIntervals []time.Duration
	proxy          string
	signingKey     string
	logger         *zap.Logger
}

// Option настраивает клиент.
type Option func(*options)

// WithHost переопределяет хост API. Схема и порт по умолчанию: https и 443.
func WithHost(host string) Option {
	return func(o *options) { o.host = host }
}

// WithBaseURL задаёт полный адрес коллектора, например http://localhost:8080.
// Имеет приоритет над WithHost.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithTimeout задаёт таймаут одного HTTP-запроса.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetryIntervals включает повторы при сетевых ошибках, 429 и 5xx.
// По умолчанию повторов нет: харвестер отправит данные на следующем интервале.
func WithRetryIntervals(intervals ...time.Duration) Option {
	return func(o *options) { o.retryIntervals = intervals }
}

// WithProxy задаёт адрес прокси. Без него используются HTTPS_PROXY/HTTP_PROXY.
func WithProxy(url string) Option {
	return func(o *options) { o.proxy = url }
}

// WithSigningKey включает подпись тела запроса в заголовке HashSHA256.
func WithSigningKey(key string) Option {
	return func(o *options) { o.signingKey = key }
}

// WithLogger задаёт логгер клиента.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}
