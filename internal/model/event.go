package models

import (
	"encoding/json"
	"maps"
	"time"
)

// Event — пользовательское событие для Event API.
//
// В JSON атрибуты выводятся плоско рядом с eventType и timestamp.
// Зарезервированные ключи имеют приоритет над атрибутами.
//
// Поля:
//   - EventType: тип события, обязательный для Event API
//   - Timestamp: время события в миллисекундах
//   - Attributes: произвольные атрибуты события
type Event struct {
	EventType  string
	Timestamp  int64
	Attributes Attributes
}

// NewEvent создаёт событие типа eventType.
// Если timestampMs равен 0, берётся текущее время.
func NewEvent(eventType string, attrs Attributes, timestampMs int64) Event {
	if timestampMs == 0 {
		timestampMs = time.Now().UnixMilli()
	}
	return Event{
		EventType:  eventType,
		Timestamp:  timestampMs,
		Attributes: attrs.Clone(),
	}
}

// MarshalJSON сериализует событие в плоский JSON-объект.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Attributes)+2)
	maps.Copy(out, e.Attributes)
	out["eventType"] = e.EventType
	out["timestamp"] = e.Timestamp
	return json.Marshal(out)
}
