package harvester

import (
	"time"

	"go.uber.org/zap"

	"github.com/RoGogDBD/telemetry-sdk/internal/clock"
)

type options struct {
	name        string
	interval    time.Duration
	sendTimeout time.Duration
	clock       clock.Clock
	logger      *zap.Logger
}

// Option настраивает Harvester.
type Option func(*options)

// WithName задаёт имя харвестера для логов.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithInterval задаёт интервал отправки. Неположительные значения игнорируются.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithSendTimeout ограничивает длительность одной отправки.
func WithSendTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.sendTimeout = d
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger задаёт логгер.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}
