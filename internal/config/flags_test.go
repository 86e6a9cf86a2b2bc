package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNetAddress_Set_TableDriven проверяет разбор адреса коллектора и его строковые представления.
func TestNetAddress_Set_TableDriven(t *testing.T) {
	tests := []struct {
		name      string // Название теста
		input     string // Входная строка для метода Set
		exScheme  string // Ожидаемая схема
		exHost    string // Ожидаемый host после Set
		exPort    int    // Ожидаемый port после Set
		exURL     string // Ожидаемый URL
		expectErr bool   // Ожидается ли ошибка
	}{
		{"host:port", "localhost:9000", "http", "localhost", 9000, "http://localhost:9000", false},
		{"only host", "example", "http", "example", 8080, "http://example:8080", false},
		{"https default port", "https://metric-api.newrelic.com", "https", "metric-api.newrelic.com", 443, "https://metric-api.newrelic.com:443", false},
		{"https explicit port", "HTTPS://collector:8443", "https", "collector", 8443, "https://collector:8443", false},
		{"empty host with port", ":9090", "http", "", 9090, "http://:9090", false},
		{"bad port", "host:notaport", "", "", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a NetAddress
			err := a.Set(tt.input)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.exScheme, a.Scheme)
			require.Equal(t, tt.exHost, a.Host)
			require.Equal(t, tt.exPort, a.Port)
			require.Equal(t, tt.exURL, a.URL())
		})
	}
}
