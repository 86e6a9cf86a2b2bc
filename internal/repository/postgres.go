package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RoGogDBD/telemetry-sdk/internal/config"
)

// PostgresStorage сохраняет батчи в PostgreSQL и дублирует их в память
// для статистики.
//
// Метрики раскладываются по строкам metric_points, все батчи целиком
// пишутся в records.
type PostgresStorage struct {
	mem  *MemStorage
	pool *pgxpool.Pool
}

// NewPostgresStorage создаёт хранилище поверх готового пула соединений.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{mem: NewMemStorage(), pool: pool}
}

// Ping проверяет соединение с базой.
func (p *PostgresStorage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close закрывает пул соединений.
func (p *PostgresStorage) Close() {
	p.pool.Close()
}

// Store пишет батч в одной транзакции, повторяя её при ошибках соединения.
func (p *PostgresStorage) Store(ctx context.Context, b ReceivedBatch) error {
	points, err := metricPoints(b)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	err = config.RetryWithBackoff(ctx, func() error {
		return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx,
				`INSERT INTO records (data_type, request_id, payload) VALUES ($1, $2, $3)`,
				b.DataType, b.RequestID, payload,
			); err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}

			if len(points) == 0 {
				return nil
			}
			rows := make([][]any, 0, len(points))
			for _, pt := range points {
				rows = append(rows, []any{pt.Name, pt.Type, pt.Value, pt.Summary, pt.Attributes, pt.TimestampMs, pt.IntervalMs})
			}
			if _, err := tx.CopyFrom(ctx,
				pgx.Identifier{"metric_points"},
				[]string{"name", "type", "value", "summary", "attributes", "timestamp_ms", "interval_ms"},
				pgx.CopyFromRows(rows),
			); err != nil {
				return fmt.Errorf("failed to copy metric points: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	return p.mem.Store(ctx, b)
}

// Stats возвращает статистику, накопленную с момента запуска.
func (p *PostgresStorage) Stats() map[string]Stats {
	return p.mem.Stats()
}

// All возвращает батчи, принятые с момента запуска.
func (p *PostgresStorage) All() []ReceivedBatch {
	return p.mem.All()
}

// metricPoint — строка таблицы metric_points.
type metricPoint struct {
	Name        string
	Type        string
	Value       *float64
	Summary     json.RawMessage
	Attributes  map[string]any
	TimestampMs *int64
	IntervalMs  *int64
}

type wireMetric struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Value      json.RawMessage `json:"value"`
	Timestamp  *int64          `json:"timestamp"`
	IntervalMs *int64          `json:"interval.ms"`
	Attributes map[string]any  `json:"attributes"`
}

type wireCommon struct {
	Timestamp  *int64         `json:"timestamp"`
	IntervalMs *int64         `json:"interval.ms"`
	Attributes map[string]any `json:"attributes"`
}

// metricPoints раскладывает батч метрик по строкам metric_points.
//
// Отсутствующие у метрики timestamp, interval.ms и атрибуты берутся из common.
// Метрика без type считается gauge. Для остальных типов данных возвращает nil.
func metricPoints(b ReceivedBatch) ([]metricPoint, error) {
	if b.DataType != DataMetrics {
		return nil, nil
	}

	var common wireCommon
	if len(b.Common) > 0 {
		if err := json.Unmarshal(b.Common, &common); err != nil {
			return nil, fmt.Errorf("invalid common block: %w", err)
		}
	}

	points := make([]metricPoint, 0, len(b.Items))
	for i, raw := range b.Items {
		var m wireMetric
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("invalid metric #%d: %w", i, err)
		}

		pt := metricPoint{
			Name:        m.Name,
			Type:        m.Type,
			TimestampMs: m.Timestamp,
			IntervalMs:  m.IntervalMs,
			Attributes:  m.Attributes,
		}
		if pt.Type == "" {
			pt.Type = "gauge"
		}
		if pt.TimestampMs == nil {
			pt.TimestampMs = common.Timestamp
		}
		if pt.IntervalMs == nil {
			pt.IntervalMs = common.IntervalMs
		}
		if len(common.Attributes) > 0 {
			merged := make(map[string]any, len(common.Attributes)+len(m.Attributes))
			for k, v := range common.Attributes {
				merged[k] = v
			}
			for k, v := range m.Attributes {
				merged[k] = v
			}
			pt.Attributes = merged
		}

		v := bytes.TrimSpace(m.Value)
		if len(v) > 0 && v[0] == '{' {
			pt.Summary = v
		} else {
			var f float64
			if err := json.Unmarshal(v, &f); err != nil {
				return nil, fmt.Errorf("invalid value of metric %q: %w", m.Name, err)
			}
			pt.Value = &f
		}
		points = append(points, pt)
	}
	return points, nil
}
