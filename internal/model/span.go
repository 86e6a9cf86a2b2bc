package models

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Span — участок распределённой трассировки.
//
// Имя, длительность и parent.id хранятся в атрибутах, как этого ждёт Trace API.
//
// Поля:
//   - Stamp: время начала (мс) и атрибуты, включая name, duration.ms и parent.id
//   - ID: идентификатор спана, 16 hex-символов
//   - TraceID: идентификатор трассы, общий для связанных спанов
type Span struct {
	Stamp
	ID      string `json:"id"`
	TraceID string `json:"trace.id"`
}

// SpanOption настраивает создаваемый спан.
type SpanOption func(*Span)

// WithSpanAttributes добавляет атрибуты спана.
func WithSpanAttributes(attrs Attributes) SpanOption {
	return func(s *Span) {
		for k, v := range attrs {
			if _, reserved := s.Attributes[k]; !reserved {
				s.Attributes[k] = v
			}
		}
	}
}

// WithGUID задаёт идентификатор спана.
func WithGUID(id string) SpanOption {
	return func(s *Span) { s.ID = id }
}

// WithTraceID задаёт идентификатор трассы.
func WithTraceID(id string) SpanOption {
	return func(s *Span) { s.TraceID = id }
}

// WithParentID задаёт идентификатор родительского спана.
func WithParentID(id string) SpanOption {
	return func(s *Span) {
		if id != "" {
			s.Attributes["parent.id"] = id
		}
	}
}

// WithStartTime задаёт время начала спана в миллисекундах.
func WithStartTime(ms int64) SpanOption {
	return func(s *Span) { s.Timestamp = ms }
}

// WithDuration задаёт длительность спана в миллисекундах.
func WithDuration(ms int64) SpanOption {
	return func(s *Span) { s.Attributes["duration.ms"] = ms }
}

// NewSpan создаёт спан с именем name.
//
// Если идентификаторы не заданы, генерируются случайные 16-символьные hex-строки.
// Возвращает спан с временем начала "сейчас", если не задан WithStartTime.
func NewSpan(name string, opts ...SpanOption) Span {
	s := Span{
		Stamp: Stamp{
			Timestamp:  time.Now().UnixMilli(),
			Attributes: Attributes{"name": name},
		},
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.ID == "" {
		s.ID = randomID()
	}
	if s.TraceID == "" {
		s.TraceID = randomID()
	}
	return s
}

// Finish записывает длительность спана по времени окончания finishMs.
// Если finishMs равен 0, берётся текущее время.
func (s *Span) Finish(finishMs int64) {
	if finishMs == 0 {
		finishMs = time.Now().UnixMilli()
	}
	s.Attributes["duration.ms"] = finishMs - s.Timestamp
}

// Name возвращает имя спана.
func (s Span) Name() string {
	name, _ := s.Attributes["name"].(string)
	return name
}

func randomID() string {
	return fmt.Sprintf("%016x", rand.Uint64())
}
