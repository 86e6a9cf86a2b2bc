// Package batch содержит батчи телеметрии: агрегирующий MetricBatch
// и простой накопитель Batch для спанов, логов и событий.
package batch

import (
	"sync"

	"github.com/RoGogDBD/telemetry-sdk/internal/clock"
	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
)

// metricEntry — накопленное значение одной метрики за интервал.
type metricEntry struct {
	attrs     models.Attributes
	value     float64
	summary   models.SummaryValue
	timestamp int64 // только для gauge
}

// MetricBatch сопоставляет идентичность метрики с её агрегированным значением.
//
// Хранит незавершённые метрики до вызова Flush. Безопасен для конкурентного
// использования: все Record* и Flush выполняются под одним мьютексом.
type MetricBatch struct {
	mu            sync.Mutex
	clock         clock.Clock
	entries       map[identity]*metricEntry
	intervalStart int64
	tags          models.Attributes
}

// Option настраивает батч.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock задаёт источник времени. По умолчанию clock.Real().
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func applyOptions(opts []Option) options {
	o := options{clock: clock.Real()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewMetricBatch создаёт MetricBatch.
//
// tags — статические теги, которые попадают в common-блок каждого Flush. Может быть nil.
func NewMetricBatch(tags models.Attributes, opts ...Option) *MetricBatch {
	o := applyOptions(opts)
	return &MetricBatch{
		clock:         o.clock,
		entries:       make(map[identity]*metricEntry),
		intervalStart: clock.UnixMilli(o.clock),
		tags:          tags.Clone(),
	}
}

// RecordGauge записывает gauge-метрику. Последнее значение побеждает,
// время записи запоминается как timestamp метрики.
//
// NaN и ±Inf не представимы в JSON и отбрасываются.
func (b *MetricBatch) RecordGauge(name string, value float64, tags models.Attributes) {
	if !models.IsFinite(value) {
		return
	}
	id := newIdentity(models.Gauge, name, tags)
	now := clock.UnixMilli(b.clock)

	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entryLocked(id, tags)
	e.value = value
	e.timestamp = now
}

// RecordCount записывает count-метрику. Значения с одной идентичностью суммируются.
//
// Сумма насыщается: при переполнении она остаётся на ±math.MaxFloat64,
// а не превращается в ±Inf (см. models.SaturatingAdd). Суммы считаются в
// float64, поэтому целые значения точны только до 2^53.
// NaN и ±Inf отбрасываются.
func (b *MetricBatch) RecordCount(name string, value float64, tags models.Attributes) {
	if !models.IsFinite(value) {
		return
	}
	id := newIdentity(models.Count, name, tags)

	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entryLocked(id, tags)
	e.value = models.SaturatingAdd(e.value, value)
}

// RecordSummary записывает наблюдение summary-метрики: count, sum, min и max.
// sum насыщается так же, как в RecordCount. NaN и ±Inf отбрасываются.
func (b *MetricBatch) RecordSummary(name string, value float64, tags models.Attributes) {
	if !models.IsFinite(value) {
		return
	}
	id := newIdentity(models.Summary, name, tags)

	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.entries[id]; ok {
		e.summary.Observe(value)
		return
	}
	b.entries[id] = &metricEntry{
		attrs:   tags.Clone(),
		summary: models.SummaryValue{Count: 1, Sum: value, Min: value, Max: value},
	}
}

// entryLocked возвращает запись для id, создавая её при необходимости.
// Вызывается под b.mu.
func (b *MetricBatch) entryLocked(id identity, tags models.Attributes) *metricEntry {
	e, ok := b.entries[id]
	if !ok {
		e = &metricEntry{attrs: tags.Clone()}
		b.entries[id] = e
	}
	return e
}

// Flush атомарно забирает все метрики из батча.
//
// Возвращает метрики и common-блок, где timestamp — начало интервала с момента
// создания или прошлого Flush, а interval.ms — длительность этого интервала.
// Интервал батча сбрасывается на текущее время.
func (b *MetricBatch) Flush() ([]models.Metric, *models.Common) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := make([]models.Metric, 0, len(b.entries))
	for id, e := range b.entries {
		m := models.Metric{
			Stamp: models.Stamp{Attributes: e.attrs},
			Name:  id.name,
			Type:  id.kind,
		}
		switch id.kind {
		case models.Gauge:
			m.Timestamp = e.timestamp
			m.Value = e.value
		case models.Count:
			m.Value = e.value
		case models.Summary:
			summary := e.summary
			m.Summary = &summary
		}
		items = append(items, m)
	}
	b.entries = make(map[identity]*metricEntry)

	start := b.intervalStart
	now := clock.UnixMilli(b.clock)
	interval := now - start
	b.intervalStart = now

	common := &models.Common{
		Attributes: b.tags.Clone(),
		Timestamp:  &start,
		IntervalMs: &interval,
	}
	return items, common
}
