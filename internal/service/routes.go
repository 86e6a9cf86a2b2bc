// Package service собирает HTTP-роутер тестового коллектора.
package service

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/RoGogDBD/telemetry-sdk/internal/client"
	"github.com/RoGogDBD/telemetry-sdk/internal/config"
	"github.com/RoGogDBD/telemetry-sdk/internal/handler"
	"github.com/RoGogDBD/telemetry-sdk/internal/repository"
)

// NewRouter создаёт роутер коллектора.
//
// Эндпоинты приёма совпадают с путями клиентов SDK, тела запросов
// распаковываются из gzip до обработчика.
func NewRouter(h *handler.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)         // Добавляет уникальный идентификатор запроса
	r.Use(middleware.RealIP)            // Определяет реальный IP клиента
	r.Use(config.RequestLogger(logger)) // Логирует запросы с помощью zap
	r.Use(middleware.Recoverer)         // Восстанавливает после паники

	r.Group(func(r chi.Router) {
		r.Use(config.GzipRequestMiddleware(handler.MaxBodySize))
		r.Post(client.MetricPath, h.HandleIngest(repository.DataMetrics))
		r.Post(client.SpanPath, h.HandleIngest(repository.DataSpans))
		r.Post(client.LogPath, h.HandleIngest(repository.DataLogs))
		r.Post(client.EventPath, h.HandleIngest(repository.DataEvents))
	})

	r.Get("/stats", h.HandleStats)
	r.Get("/ping", h.HandlePing)

	return r
}
