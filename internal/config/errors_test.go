package config

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// testRetriable — ошибка, которая сама сообщает, временная ли она.
type testRetriable struct {
	retriable bool
}

func (e testRetriable) Error() string   { return "transport failure" }
func (e testRetriable) Retriable() bool { return e.retriable }

// TestRetryWithIntervals тестирует повторные попытки для разных видов ошибок.
//
// Проверяются следующие случаи:
//   - Успех после повторной попытки (ошибка соединения PostgreSQL и Retriable)
//   - Немедленный возврат не временной ошибки
//   - Исчерпание попыток с возвратом последней ошибки
//   - Прерывание по отмене контекста
func TestRetryWithIntervals(t *testing.T) {
	tests := []struct {
		name                  string                      // Название теста
		intervals             []time.Duration             // Интервалы между попытками
		opFactory             func() (func() error, *int) // Фабрика операции и счетчика вызовов
		expectErr             bool                        // Ожидается ли ошибка
		expectContextCanceled bool                        // Ожидается ли отмена контекста
		expectCalls           int                         // Ожидаемое количество вызовов операции
		expectPGCode          string                      // Ожидаемый код ошибки PostgreSQL
		expectMsgContains     string                      // Ожидаемая подстрока в сообщении об ошибке
	}{
		{
			name:      "PgSucceedsAfterRetry",
			intervals: []time.Duration{10 * time.Millisecond, 10 * time.Millisecond},
			opFactory: func() (func() error, *int) {
				calls := 0
				return func() error {
					calls++
					if calls == 1 {
						return &pgconn.PgError{Code: "08006", Message: "connection error"}
					}
					return nil
				}, &calls
			},
			expectCalls: 2,
		},
		{
			name:      "RetriableSucceedsAfterRetry",
			intervals: []time.Duration{time.Millisecond, time.Millisecond},
			opFactory: func() (func() error, *int) {
				calls := 0
				return func() error {
					calls++
					if calls < 3 {
						return testRetriable{retriable: true}
					}
					return nil
				}, &calls
			},
			expectCalls: 3,
		},
		{
			name:      "NonRetriableImmediate",
			intervals: []time.Duration{time.Millisecond},
			opFactory: func() (func() error, *int) {
				calls := 0
				return func() error {
					calls++
					return testRetriable{retriable: false}
				}, &calls
			},
			expectErr:         true,
			expectMsgContains: "transport failure",
			expectCalls:       1,
		},
		{
			name:      "ExhaustRetries",
			intervals: []time.Duration{5 * time.Millisecond, 5 * time.Millisecond},
			opFactory: func() (func() error, *int) {
				calls := 0
				return func() error {
					calls++
					return &pgconn.PgError{Code: "08003", Message: "lost"}
				}, &calls
			},
			expectErr:         true,
			expectPGCode:      "08003",
			expectMsgContains: "operation failed after retries",
			expectCalls:       3,
		},
		{
			name:      "ContextCanceled",
			intervals: []time.Duration{200 * time.Millisecond},
			opFactory: func() (func() error, *int) {
				calls := 0
				return func() error {
					calls++
					return testRetriable{retriable: true}
				}, &calls
			},
			expectErr:             true,
			expectContextCanceled: true,
			expectCalls:           1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, callsPtr := tt.opFactory()

			ctx := context.Background()
			if tt.expectContextCanceled {
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(ctx)
				go func() {
					time.Sleep(10 * time.Millisecond)
					cancel()
				}()
				defer cancel()
			}

			err := RetryWithIntervals(ctx, tt.intervals, op)

			switch {
			case tt.expectContextCanceled:
				if !errors.Is(err, context.Canceled) {
					t.Fatalf("expected context.Canceled, got %v", err)
				}
			case !tt.expectErr:
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
			default:
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.expectPGCode != "" {
					var pgErr *pgconn.PgError
					if !errors.As(err, &pgErr) || pgErr.Code != tt.expectPGCode {
						t.Fatalf("expected underlying pg error with code %s, got %v", tt.expectPGCode, err)
					}
				}
				if tt.expectMsgContains != "" && !strings.Contains(err.Error(), tt.expectMsgContains) {
					t.Fatalf("expected error message to contain %q, got %v", tt.expectMsgContains, err)
				}
			}

			if *callsPtr != tt.expectCalls {
				t.Fatalf("expected %d calls, got %d", tt.expectCalls, *callsPtr)
			}
		})
	}
}

// TestIsRetriableError проверяет классификацию ошибок.
func TestIsRetriableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", errors.New("boom"), false},
		{"pg connection", &pgconn.PgError{Code: "08001"}, true},
		{"pg syntax", &pgconn.PgError{Code: "42601"}, false},
		{"wrapped retriable", errors.Join(errors.New("ctx"), testRetriable{retriable: true}), true},
		{"not retriable", testRetriable{retriable: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetriableError(tt.err); got != tt.want {
				t.Fatalf("IsRetriableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
