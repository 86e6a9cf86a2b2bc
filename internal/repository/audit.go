package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
)

// FileAuditObserver дописывает события аудита в файл, по одному JSON на строку.
type FileAuditObserver struct {
	filePath string
	mu       sync.Mutex
}

// NewFileAuditObserver создаёт FileAuditObserver, при необходимости создавая каталог.
//
// Возвращает ошибку, если каталог для filePath не удалось создать.
func NewFileAuditObserver(filePath string) (*FileAuditObserver, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	return &FileAuditObserver{filePath: filePath}, nil
}

// OnAuditEvent записывает событие в файл.
func (f *FileAuditObserver) OnAuditEvent(event models.AuditEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

// HTTPAuditObserver отправляет события аудита POST-запросом на url.
type HTTPAuditObserver struct {
	url    string
	client *resty.Client
}

// NewHTTPAuditObserver создаёт HTTPAuditObserver.
//
// Возвращает наблюдателя с таймаутом запроса 5 секунд. Ответы кроме 200 и 201
// считаются ошибкой.
func NewHTTPAuditObserver(url string) *HTTPAuditObserver {
	return &HTTPAuditObserver{
		url:    url,
		client: resty.New().SetTimeout(5 * time.Second),
	}
}

// OnAuditEvent отправляет событие. Успешными считаются ответы 200 и 201.
func (h *HTTPAuditObserver) OnAuditEvent(event models.AuditEvent) error {
	resp, err := h.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(h.url)
	if err != nil {
		return fmt.Errorf("failed to send audit event: %w", err)
	}
	if code := resp.StatusCode(); code != 200 && code != 201 {
		return fmt.Errorf("audit server returned status %d", code)
	}
	return nil
}

// AuditManager рассылает события аудита подключённым наблюдателям.
//
// Поля:
//   - observers: подключённые наблюдатели
//   - mu: защищает observers
//   - logger: логгер ошибок наблюдателей
type AuditManager struct {
	observers []models.AuditObserver
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewAuditManager создаёт AuditManager без наблюдателей.
//
// Если logger равен nil, используется zap.NewNop().
func NewAuditManager(logger *zap.Logger) *AuditManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditManager{logger: logger}
}

// Attach добавляет наблюдателя.
func (a *AuditManager) Attach(observer models.AuditObserver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, observer)
}

// Detach удаляет наблюдателя.
func (a *AuditManager) Detach(observer models.AuditObserver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, obs := range a.observers {
		if obs == observer {
			a.observers = append(a.observers[:i], a.observers[i+1:]...)
			break
		}
	}
}

// Notify уведомляет всех наблюдателей. Ошибки наблюдателей только логируются.
func (a *AuditManager) Notify(event models.AuditEvent) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, observer := range a.observers {
		if err := observer.OnAuditEvent(event); err != nil {
			a.logger.Warn("audit observer failed", zap.Error(err))
		}
	}
}

// HasObservers сообщает, есть ли подключённые наблюдатели.
func (a *AuditManager) HasObservers() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.observers) > 0
}
