package models

import (
	"encoding/json"
	"math"
	"time"
)

// MetricType — тип метрики.
type MetricType string

const (
	// Gauge — датчик. Хранит значение в момент времени, последнее значение побеждает.
	Gauge MetricType = "gauge"
	// Count — счётчик. Значения за интервал суммируются.
	Count MetricType = "count"
	// Summary — сводка. Хранит count, sum, min и max за интервал.
	Summary MetricType = "summary"
)

// SummaryValue — агрегированное значение summary-метрики.
//
// Поля:
//   - Count: число наблюдений за интервал
//   - Sum: сумма наблюдений, с насыщением на ±math.MaxFloat64 (см. SaturatingAdd)
//   - Min: минимальное наблюдение
//   - Max: максимальное наблюдение
type SummaryValue struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Observe добавляет наблюдение value в сводку.
func (s *SummaryValue) Observe(value float64) {
	s.Count++
	s.Sum = SaturatingAdd(s.Sum, value)
	s.Min = min(s.Min, value)
	s.Max = max(s.Max, value)
}

// SaturatingAdd складывает a и b в float64 с насыщением.
//
// Вместо переполнения в ±Inf возвращает ±math.MaxFloat64: JSON не
// представляет бесконечность, и одна переполненная сумма сделала бы
// невозможной отправку всего батча. Точность ограничена float64: целые
// суммы больше 2^53 округляются до ближайшего представимого значения.
func SaturatingAdd(a, b float64) float64 {
	sum := a + b
	switch {
	case math.IsInf(sum, 1):
		return math.MaxFloat64
	case math.IsInf(sum, -1):
		return -math.MaxFloat64
	}
	return sum
}

// IsFinite сообщает, что value не NaN и не ±Inf.
func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// Metric — одна метрика для отправки в коллектор.
//
// Поля:
//   - Stamp: timestamp (начало интервала, мс) и атрибуты
//   - Name: имя метрики
//   - Type: gauge, count или summary
//   - Value: значение gauge и count
//   - Summary: значение summary, nil для остальных типов
//   - IntervalMs: длительность интервала в миллисекундах
//
// Поле type в JSON выводится только для count и summary.
type Metric struct {
	Stamp
	Name       string
	Type       MetricType
	Value      float64
	Summary    *SummaryValue
	IntervalMs int64
}

type metricJSON struct {
	Name       string     `json:"name"`
	Type       string     `json:"type,omitempty"`
	Value      any        `json:"value"`
	IntervalMs int64      `json:"interval.ms,omitempty"`
	Timestamp  int64      `json:"timestamp,omitempty"`
	Attributes Attributes `json:"attributes,omitempty"`
}

// MarshalJSON сериализует метрику в формат Metric API.
func (m Metric) MarshalJSON() ([]byte, error) {
	out := metricJSON{
		Name:       m.Name,
		IntervalMs: m.IntervalMs,
		Timestamp:  m.Timestamp,
		Attributes: m.Attributes,
		Value:      m.Value,
	}
	if m.Type != Gauge && m.Type != "" {
		out.Type = string(m.Type)
	}
	if m.Summary != nil {
		out.Value = m.Summary
	}
	return json.Marshal(out)
}

// StartTimeMs возвращает начало интервала метрики.
func (m Metric) StartTimeMs() int64 {
	return m.Timestamp
}

// EndTimeMs возвращает конец интервала метрики.
func (m Metric) EndTimeMs() int64 {
	return m.Timestamp + m.IntervalMs
}

// MetricOption настраивает создаваемую метрику.
type MetricOption func(*metricOptions)

type metricOptions struct {
	attrs      Attributes
	intervalMs int64
	endTimeMs  int64
}

// WithAttributes задаёт атрибуты метрики.
func WithAttributes(attrs Attributes) MetricOption {
	return func(o *metricOptions) { o.attrs = attrs }
}

// WithInterval задаёт интервал, за который собрана метрика, в миллисекундах.
func WithInterval(ms int64) MetricOption {
	return func(o *metricOptions) { o.intervalMs = ms }
}

// WithEndTime задаёт время окончания интервала в миллисекундах.
// По умолчанию используется текущее время.
func WithEndTime(ms int64) MetricOption {
	return func(o *metricOptions) { o.endTimeMs = ms }
}

func newMetric(name string, typ MetricType, opts []MetricOption) Metric {
	o := metricOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	end := o.endTimeMs
	if end == 0 {
		end = time.Now().UnixMilli()
	}
	return Metric{
		Stamp: Stamp{
			Timestamp:  end - o.intervalMs,
			Attributes: o.attrs.Clone(),
		},
		Name:       name,
		Type:       typ,
		IntervalMs: o.intervalMs,
	}
}

// NewGaugeMetric создаёт gauge-метрику со значением value.
func NewGaugeMetric(name string, value float64, opts ...MetricOption) Metric {
	m := newMetric(name, Gauge, opts)
	m.Value = value
	return m
}

// NewCountMetric создаёт count-метрику со значением value.
func NewCountMetric(name string, value float64, opts ...MetricOption) Metric {
	m := newMetric(name, Count, opts)
	m.Value = value
	return m
}

// NewSummaryMetric создаёт summary-метрику из готовых агрегатов.
func NewSummaryMetric(name string, summary SummaryValue, opts ...MetricOption) Metric {
	m := newMetric(name, Summary, opts)
	m.Summary = &summary
	return m
}

// SummaryFromValue создаёт summary-метрику из одного наблюдения.
func SummaryFromValue(name string, value float64, opts ...MetricOption) Metric {
	return NewSummaryMetric(name, SummaryValue{Count: 1, Sum: value, Min: value, Max: value}, opts...)
}
