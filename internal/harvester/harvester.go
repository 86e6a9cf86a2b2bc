// Package harvester периодически выгружает батч и отправляет его через Sender.
//
// Жизненный цикл: Idle → Running → Stopping → Terminated.
// Харвестер переживает любые сбои доставки: сетевые ошибки, ошибки
// сериализации и неуспешные HTTP-ответы логируются, данные этого интервала
// теряются, цикл продолжается.
package harvester

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/RoGogDBD/telemetry-sdk/internal/client"
	"github.com/RoGogDBD/telemetry-sdk/internal/clock"
	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
)

// Значения по умолчанию.
const (
	DefaultInterval    = 5 * time.Second
	DefaultSendTimeout = 10 * time.Second
)

// ErrAlreadyStarted возвращается при повторном Start или Start после Stop.
var ErrAlreadyStarted = errors.New("harvester already started")

// Batch — источник данных харвестера.
type Batch[T any] interface {
	Flush() ([]T, *models.Common)
}

// BatchFunc позволяет использовать функцию как Batch.
type BatchFunc[T any] func() ([]T, *models.Common)

// Flush вызывает f.
func (f BatchFunc[T]) Flush() ([]T, *models.Common) { return f() }

// WithoutCommon адаптирует батч без common-блока, например batch.EventBatch.
func WithoutCommon[T any](flush func() []T) Batch[T] {
	return BatchFunc[T](func() ([]T, *models.Common) { return flush(), nil })
}

// Sender доставляет батчи. Реализуется client.Client.
type Sender[T any] interface {
	SendBatch(ctx context.Context, items []T, common *models.Common) (*client.Response, error)
	Close() error
}

// Harvester владеет одной парой Sender и Batch и отправляет данные с
// фиксированным интервалом.
type Harvester[T any] struct {
	sender Sender[T]
	batch  Batch[T]

	name        string
	interval    time.Duration
	sendTimeout time.Duration
	clock       clock.Clock
	logger      *zap.Logger

	state    atomic.Int32
	shutdown chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// anchor используется только горутиной цикла.
	anchor time.Time

	errMu    sync.Mutex
	firstErr error
}

// New создаёт харвестер в состоянии Idle.
func New[T any](sender Sender[T], batch Batch[T], opts ...Option) *Harvester[T] {
	o := options{
		name:        "harvester",
		interval:    DefaultInterval,
		sendTimeout: DefaultSendTimeout,
		clock:       clock.Real(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	return &Harvester[T]{
		sender:      sender,
		batch:       batch,
		name:        o.name,
		interval:    o.interval,
		sendTimeout: o.sendTimeout,
		clock:       o.clock,
		logger:      o.logger.With(zap.String("harvester", o.name)),
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// State возвращает текущее состояние.
func (h *Harvester[T]) State() State {
	return State(h.state.Load())
}

// Start запускает фоновый цикл. Харвестер запускается не более одного раза.
func (h *Harvester[T]) Start() error {
	if !h.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrAlreadyStarted
	}
	go h.run()
	return nil
}

// Stop просит цикл завершиться и ждёт финальной отправки и закрытия Sender.
//
// Ожидание ограничено ctx: по его истечении возвращается ctx.Err(), а цикл
// может ещё работать. Повторные вызовы безопасны, Sender закрывается один раз.
// Если харвестер не был запущен, финальная отправка всё равно выполняется.
// Возвращает первую неожиданную ошибку Sender, если она была.
func (h *Harvester[T]) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() {
		close(h.shutdown)
		if h.state.CompareAndSwap(int32(Idle), int32(Stopping)) {
			go func() {
				defer close(h.done)
				h.finish()
			}()
		}
	})

	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done закрывается, когда харвестер перешёл в Terminated.
func (h *Harvester[T]) Done() <-chan struct{} {
	return h.done
}

// Err возвращает первую неожиданную ошибку Sender.
func (h *Harvester[T]) Err() error {
	h.errMu.Lock()
	defer h.errMu.Unlock()
	return h.firstErr
}

func (h *Harvester[T]) run() {
	defer close(h.done)

	for !h.waitForHarvest() {
		h.drainAndSend()
	}
	h.state.Store(int32(Stopping))
	h.finish()
}

// finish выполняет финальную отправку, закрывает Sender и отпускает ссылки.
func (h *Harvester[T]) finish() {
	h.drainAndSend()

	if err := h.sender.Close(); err != nil {
		h.logger.Warn("failed to close sender", zap.Error(err))
	}
	h.sender = nil
	h.batch = nil
	h.state.Store(int32(Terminated))
	h.logger.Debug("harvester terminated")
}

// waitForHarvest ждёт окончания интервала или сигнала остановки.
// Возвращает true, если пришёл сигнал остановки.
//
// Отсчёт идёт от момента прошлого пробуждения, поэтому время отправки
// вычитается из следующего ожидания.
func (h *Harvester[T]) waitForHarvest() bool {
	now := h.clock.Now()
	if h.anchor.IsZero() {
		h.anchor = now
	}
	timeout := max(h.interval-now.Sub(h.anchor), 0)

	var stopped bool
	select {
	case <-h.shutdown:
		stopped = true
	case <-h.clock.After(timeout):
		select {
		case <-h.shutdown:
			stopped = true
		default:
		}
	}

	h.anchor = h.clock.Now()
	return stopped
}

// drainAndSend выгружает батч и отправляет его. Пустой батч не отправляется.
func (h *Harvester[T]) drainAndSend() {
	items, common := h.batch.Flush()
	if len(items) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.sendTimeout)
	defer cancel()

	resp, err := h.sender.SendBatch(ctx, items, common)
	if err != nil {
		var te *client.TransportError
		if errors.As(err, &te) {
			h.logger.Error("send_batch failed",
				zap.Int("items", len(items)),
				zap.Error(err),
			)
			return
		}
		var ee *client.EncodeError
		if errors.As(err, &ee) {
			h.logger.Error("send_batch failed to encode batch",
				zap.Int("items", len(items)),
				zap.Error(err),
			)
			return
		}
		h.logger.DPanic("send_batch failed with unexpected error",
			zap.Int("items", len(items)),
			zap.Error(err),
		)
		h.recordErr(err)
		return
	}

	if !resp.OK() {
		h.logger.Error("send_batch failed with status code",
			zap.Int("status", resp.Status),
			zap.String("request_id", resp.RequestID),
			zap.Int("items", len(items)),
		)
		return
	}

	h.logger.Debug("batch harvested", zap.Int("items", len(items)))
}

func (h *Harvester[T]) recordErr(err error) {
	h.errMu.Lock()
	defer h.errMu.Unlock()
	if h.firstErr == nil {
		h.firstErr = err
	}
}
