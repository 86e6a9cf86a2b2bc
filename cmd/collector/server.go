package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/RoGogDBD/telemetry-sdk/internal/config"
	"github.com/RoGogDBD/telemetry-sdk/internal/config/db"
	"github.com/RoGogDBD/telemetry-sdk/internal/handler"
	"github.com/RoGogDBD/telemetry-sdk/internal/repository"
	"github.com/RoGogDBD/telemetry-sdk/internal/service"
)

// Collector — тестовый коллектор: HTTP-сервер поверх хранилища.
type Collector struct {
	cfg     *config.CollectorConfig
	logger  *zap.Logger
	storage repository.Storage
	server  *http.Server
	closeDB func()
}

// NewCollector собирает коллектор по конфигурации.
//
// При заданном DSN данные пишутся в PostgreSQL, иначе в память.
// Если задан файл дампа и он существует, данные из него загружаются.
func NewCollector(ctx context.Context, cfg *config.CollectorConfig, logger *zap.Logger) (*Collector, error) {
	c := &Collector{cfg: cfg, logger: logger, closeDB: func() {}}

	h, err := c.buildHandler(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.DumpFile != "" {
		err := repository.LoadBatchesFromFile(ctx, c.storage, cfg.DumpFile)
		switch {
		case err == nil:
			logger.Info("restored batches from dump", zap.String("file", cfg.DumpFile))
		case errors.Is(err, os.ErrNotExist):
		default:
			logger.Warn("failed to restore dump", zap.Error(err))
		}
	}

	c.server = &http.Server{
		Addr:              cfg.Address.String(),
		Handler:           service.NewRouter(h, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return c, nil
}

func (c *Collector) buildHandler(ctx context.Context) (*handler.Handler, error) {
	if c.cfg.DatabaseDSN != "" {
		pool, err := db.InitDB(ctx, c.cfg.DatabaseDSN, c.logger)
		if err != nil {
			return nil, err
		}
		pg := repository.NewPostgresStorage(pool)
		c.storage = pg
		c.closeDB = pg.Close
	} else {
		c.logger.Info("no DSN provided, database features disabled")
		c.storage = repository.NewMemStorage()
	}

	h := handler.NewHandler(c.storage, c.cfg.InsertKey, c.logger)
	h.SetKey(c.cfg.Key)
	if pg, ok := c.storage.(*repository.PostgresStorage); ok {
		h.SetDB(pg)
	}

	audit := repository.NewAuditManager(c.logger)
	if c.cfg.AuditFile != "" {
		obs, err := repository.NewFileAuditObserver(c.cfg.AuditFile)
		if err != nil {
			c.closeDB()
			return nil, err
		}
		audit.Attach(obs)
	}
	if c.cfg.AuditURL != "" {
		audit.Attach(repository.NewHTTPAuditObserver(c.cfg.AuditURL))
	}
	if audit.HasObservers() {
		h.SetAudit(audit)
	}
	return h, nil
}

// Serve принимает соединения на ln до отмены ctx, затем корректно
// завершает сервер и сохраняет дамп.
func (c *Collector) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("collector started", zap.String("address", ln.Addr().String()))
		errCh <- c.server.Serve(ln)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		serveErr = err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.server.Shutdown(shutdownCtx); err != nil {
		c.logger.Warn("failed to shutdown server", zap.Error(err))
	}
	defer c.closeDB()

	if c.cfg.DumpFile != "" {
		if err := repository.SaveBatchesToFile(c.storage, c.cfg.DumpFile); err != nil {
			return fmt.Errorf("failed to save dump: %w", err)
		}
		c.logger.Info("dump saved", zap.String("file", c.cfg.DumpFile))
	}

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}
