package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DefaultRetryIntervals определяет интервалы ожидания между повторными попытками.
var DefaultRetryIntervals = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

// Retriable реализуют ошибки, которые сами знают, имеет ли смысл повторять операцию.
//
// Например, сетевые ошибки транспорта или ответы 429/5xx от коллектора.
type Retriable interface {
	Retriable() bool
}

// RetryWithBackoff выполняет op с повторными попытками через DefaultRetryIntervals.
//
// Повторяются только временные ошибки (см. IsRetriableError).
func RetryWithBackoff(ctx context.Context, op func() error) error {
	return RetryWithIntervals(ctx, DefaultRetryIntervals, op)
}

// RetryWithIntervals выполняет op, повторяя её после каждой временной ошибки
// с ожиданием intervals[i] перед i+1-й повторной попыткой.
//
// Если ошибка не временная, она возвращается сразу.
// Если контекст завершён во время ожидания, возвращается ctx.Err().
// Если попытки исчерпаны, возвращается последняя ошибка, обёрнутая с пояснением.
func RetryWithIntervals(ctx context.Context, intervals []time.Duration, op func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !IsRetriableError(err) {
			return err
		}
		lastErr = err
		if attempt >= len(intervals) {
			break
		}

		wait := intervals[attempt]
		zap.L().Warn("retriable error, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", len(intervals)+1),
			zap.Duration("wait", wait),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("operation failed after retries: %w", lastErr)
}

// IsRetriableError определяет, является ли ошибка временной.
//
// Временными считаются ошибки, реализующие Retriable с true, и ошибки
// соединения PostgreSQL (коды SQLSTATE, начинающиеся с "08").
func IsRetriableError(err error) bool {
	var r Retriable
	if errors.As(err, &r) {
		return r.Retriable()
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return true
		}
	}
	return false
}
