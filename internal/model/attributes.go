package models

import "maps"

// Attributes — набор атрибутов (тегов) записи телеметрии.
//
// Значения должны сериализоваться в JSON: строки, числа, bool.
type Attributes map[string]any

// Clone возвращает независимую копию атрибутов.
//
// Для пустого набора возвращает nil, чтобы ключ attributes не попадал в JSON.
func (a Attributes) Clone() Attributes {
	if len(a) == 0 {
		return nil
	}
	return maps.Clone(a)
}

// Stamp — общая часть всех записей: метка времени и атрибуты.
//
// Встраивается в Metric, Span и Log.
type Stamp struct {
	Timestamp  int64      `json:"timestamp,omitempty"`  // Unix-время в миллисекундах
	Attributes Attributes `json:"attributes,omitempty"` // Атрибуты записи
}

// Common — общий блок, который прикладывается один раз на весь батч,
// а не повторяется в каждой записи.
//
// Поля:
//   - Attributes: статические теги батча
//   - Timestamp: начало интервала агрегации (только для метрик)
//   - IntervalMs: длительность интервала агрегации в миллисекундах (только для метрик)
type Common struct {
	Attributes Attributes `json:"attributes,omitempty"`
	Timestamp  *int64     `json:"timestamp,omitempty"`
	IntervalMs *int64     `json:"interval.ms,omitempty"`
}
