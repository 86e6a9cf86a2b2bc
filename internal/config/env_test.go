package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// mockNetAddr — мок-реализация интерфейса AddrSetter для тестирования.
type mockNetAddr struct {
	setValue string // Последнее установленное значение
	err      error  // Ошибка, которую нужно вернуть при вызове Set
}

// Set устанавливает значение адреса и возвращает ошибку, если она задана.
func (m *mockNetAddr) Set(val string) error {
	m.setValue = val
	return m.err
}

// TestEnvDuration проверяет оба формата длительности: секунды и time.ParseDuration.
func TestEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "5", 5 * time.Second, false},
		{"duration string", "1500ms", 1500 * time.Millisecond, false},
		{"empty", "", 0, false},
		{"garbage", "soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HARVEST_INTERVAL_TEST", tt.envValue)

			got, err := EnvDuration("HARVEST_INTERVAL_TEST")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

// TestEnvServer проверяет установку адреса коллектора из окружения.
func TestEnvServer(t *testing.T) {
	tests := []struct {
		name      string // Название теста
		envValue  string // Значение переменной окружения
		set       bool   // Выставлять ли переменную
		setErr    error  // Ошибка, которую должен вернуть Set
		expectErr bool   // Ожидается ли ошибка
		expectVal string // Ожидаемое значение, переданное в Set
	}{
		{"valid address", "localhost:8080", true, nil, false, "localhost:8080"},
		{"Set returns error", "invalid", true, fmt.Errorf("bad addr"), true, "invalid"},
		{"env var not set", "", false, nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("ADDR_ENV", tt.envValue)
			}

			mockAddr := &mockNetAddr{err: tt.setErr}
			err := EnvServer(mockAddr, "ADDR_ENV")
			if tt.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.expectVal, mockAddr.setValue)
		})
	}
}

func TestEnvOrString(t *testing.T) {
	t.Setenv("INSERT_KEY_TEST", "")
	require.Equal(t, "fallback", EnvOrString("INSERT_KEY_TEST", "fallback"))

	t.Setenv("INSERT_KEY_TEST", "secret")
	require.Equal(t, "secret", EnvOrString("INSERT_KEY_TEST", "fallback"))
}
