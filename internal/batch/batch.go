package batch

import (
	"sync"

	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
)

// Batch накапливает записи без агрегации.
//
// Подходит для спанов и логов, где каждое наблюдение самостоятельно.
// Порядок записей от разных горутин не гарантируется, но ни одна запись
// не теряется и не дублируется.
type Batch[T any] struct {
	mu    sync.Mutex
	items []T
	tags  models.Attributes
}

// New создаёт Batch со статическими тегами tags (может быть nil).
func New[T any](tags models.Attributes) *Batch[T] {
	return &Batch[T]{tags: tags.Clone()}
}

// Record добавляет запись в батч.
func (b *Batch[T]) Record(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, item)
}

// Flush забирает все записи и возвращает их вместе с common-блоком.
//
// common равен nil, если теги не заданы. Иначе каждый вызов возвращает новую копию.
func (b *Batch[T]) Flush() ([]T, *models.Common) {
	b.mu.Lock()
	items := b.items
	b.items = nil
	b.mu.Unlock()

	if items == nil {
		items = []T{}
	}
	if len(b.tags) == 0 {
		return items, nil
	}
	return items, &models.Common{Attributes: b.tags.Clone()}
}

// SpanBatch накапливает спаны.
type SpanBatch = Batch[models.Span]

// LogBatch накапливает записи логов.
type LogBatch = Batch[models.Log]

// NewSpanBatch создаёт SpanBatch.
func NewSpanBatch(tags models.Attributes) *SpanBatch {
	return New[models.Span](tags)
}

// NewLogBatch создаёт LogBatch.
func NewLogBatch(tags models.Attributes) *LogBatch {
	return New[models.Log](tags)
}

// EventBatch накапливает события. Event API не поддерживает common-блок,
// поэтому Flush возвращает только записи.
type EventBatch struct {
	inner Batch[models.Event]
}

// NewEventBatch создаёт EventBatch.
func NewEventBatch() *EventBatch {
	return &EventBatch{}
}

// Record добавляет событие в батч.
func (b *EventBatch) Record(event models.Event) {
	b.inner.Record(event)
}

// Flush забирает все события.
func (b *EventBatch) Flush() []models.Event {
	items, _ := b.inner.Flush()
	return items
}
