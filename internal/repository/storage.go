package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Типы данных, принимаемые коллектором.
const (
	DataMetrics = "metrics"
	DataSpans   = "spans"
	DataLogs    = "logs"
	DataEvents  = "events"
)

// ReceivedBatch — один принятый коллектором батч.
//
// Items хранятся в исходном JSON, чтобы коллектор не терял поля,
// о которых он не знает.
type ReceivedBatch struct {
	DataType   string            `json:"data_type"`
	RequestID  string            `json:"request_id,omitempty"`
	ReceivedAt int64             `json:"received_at"`
	Common     json.RawMessage   `json:"common,omitempty"`
	Items      []json.RawMessage `json:"items"`
}

// Stats — количество принятых батчей и записей по типу данных.
type Stats struct {
	Batches int `json:"batches"`
	Items   int `json:"items"`
}

// Storage определяет интерфейс хранилища принятых батчей.
type Storage interface {
	// Store сохраняет батч.
	Store(ctx context.Context, b ReceivedBatch) error
	// Stats возвращает статистику по типам данных.
	Stats() map[string]Stats
	// All возвращает все сохранённые батчи в порядке приёма.
	All() []ReceivedBatch
}

// MemStorage хранит батчи в памяти.
type MemStorage struct {
	mu      sync.RWMutex
	batches []ReceivedBatch
	stats   map[string]Stats
}

// NewMemStorage создаёт пустое хранилище в памяти.
func NewMemStorage() *MemStorage {
	return &MemStorage{stats: make(map[string]Stats)}
}

// Store добавляет батч. Ошибку не возвращает никогда.
func (s *MemStorage) Store(_ context.Context, b ReceivedBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches = append(s.batches, b)
	st := s.stats[b.DataType]
	st.Batches++
	st.Items += len(b.Items)
	s.stats[b.DataType] = st
	return nil
}

// Stats возвращает копию статистики.
func (s *MemStorage) Stats() map[string]Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Stats, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}

// All возвращает копию списка батчей.
func (s *MemStorage) All() []ReceivedBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ReceivedBatch(nil), s.batches...)
}

// DataTypes возвращает отсортированный список типов, по которым есть данные.
func DataTypes(st map[string]Stats) []string {
	out := make([]string, 0, len(st))
	for k := range st {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
