// Package handler содержит HTTP-обработчики тестового коллектора.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/RoGogDBD/telemetry-sdk/internal/client"
	"github.com/RoGogDBD/telemetry-sdk/internal/config"
	models "github.com/RoGogDBD/telemetry-sdk/internal/model"
	"github.com/RoGogDBD/telemetry-sdk/internal/repository"
)

// MaxBodySize — предельный размер распакованного тела запроса.
const MaxBodySize = 10 << 20

// Pinger проверяет доступность базы данных.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler принимает батчи телеметрии и складывает их в хранилище.
type Handler struct {
	storage   repository.Storage
	insertKey string
	key       string
	audit     models.AuditSubject
	db        Pinger
	logger    *zap.Logger
}

// NewHandler создаёт обработчик. Запросы принимаются только с Api-Key, равным insertKey.
func NewHandler(storage repository.Storage, insertKey string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{storage: storage, insertKey: insertKey, logger: logger}
}

// SetKey включает проверку подписи HashSHA256.
func (h *Handler) SetKey(key string) {
	h.key = key
}

// SetAudit подключает рассылку событий аудита.
func (h *Handler) SetAudit(audit models.AuditSubject) {
	h.audit = audit
}

// SetDB подключает проверку базы для /ping.
func (h *Handler) SetDB(db Pinger) {
	h.db = db
}

type ingestResponse struct {
	RequestID string `json:"requestId"`
}

func (h *Handler) writeJSONWithHash(w http.ResponseWriter, status int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	if h.key != "" {
		w.Header().Set(config.HashHeader, config.ComputeHash(body, h.key))
	}
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// HandleIngest возвращает обработчик POST-запросов для типа данных dataType.
//
// Ответы: 202 при успехе, 403 без верного Api-Key, 400 при неверной подписи
// или JSON, 413 при превышении MaxBodySize, 500 при ошибке хранилища.
func (h *Handler) HandleIngest(dataType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(client.HeaderAPIKey) != h.insertKey {
			http.Error(w, "invalid api key", http.StatusForbidden)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		if !config.VerifyHash(body, h.key, r.Header.Get(config.HashHeader)) {
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}

		requestID := r.Header.Get(client.HeaderRequestID)
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}

		batches, err := DecodePayload(dataType, body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		now := time.Now()
		items := 0
		for _, b := range batches {
			b.RequestID = requestID
			b.ReceivedAt = now.UnixMilli()
			if err := h.storage.Store(r.Context(), b); err != nil {
				h.logger.Error("failed to store batch", zap.String("data_type", dataType), zap.Error(err))
				http.Error(w, "failed to store batch", http.StatusInternalServerError)
				return
			}
			items += len(b.Items)
		}

		if h.audit != nil {
			h.audit.Notify(models.AuditEvent{
				Timestamp: now.Unix(),
				DataType:  dataType,
				Items:     items,
				RequestID: requestID,
				IPAddress: r.RemoteAddr,
			})
		}

		if err := h.writeJSONWithHash(w, http.StatusAccepted, ingestResponse{RequestID: requestID}); err != nil {
			h.logger.Warn("failed to write response", zap.Error(err))
		}
	}
}

// DecodePayload разбирает тело запроса в батчи.
//
// События приходят плоским массивом, остальные типы массивом объектов
// {"<dataType>": [...], "common": {...}}.
func DecodePayload(dataType string, body []byte) ([]repository.ReceivedBatch, error) {
	if dataType == repository.DataEvents {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return []repository.ReceivedBatch{{DataType: dataType, Items: items}}, nil
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	batches := make([]repository.ReceivedBatch, 0, len(entries))
	for i, entry := range entries {
		raw, ok := entry[dataType]
		if !ok {
			return nil, fmt.Errorf("entry #%d has no %q key", i, dataType)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("invalid %s in entry #%d: %w", dataType, i, err)
		}
		batches = append(batches, repository.ReceivedBatch{
			DataType: dataType,
			Common:   entry["common"],
			Items:    items,
		})
	}
	return batches, nil
}

// HandleStats возвращает статистику принятых данных.
func (h *Handler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	if err := h.writeJSONWithHash(w, http.StatusOK, h.storage.Stats()); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}

// HandlePing проверяет соединение с базой данных.
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		http.Error(w, "database not configured", http.StatusInternalServerError)
		return
	}
	if err := h.db.Ping(r.Context()); err != nil {
		http.Error(w, "database not reachable: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
