package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeHash(t *testing.T) {
	h := ComputeHash([]byte("[]"), "secret")
	require.Len(t, h, 64)
	require.Equal(t, h, ComputeHash([]byte("[]"), "secret"))
	require.NotEqual(t, h, ComputeHash([]byte("[]"), "other"))
}

func TestVerifyHash(t *testing.T) {
	body := []byte(`[{"metrics":[]}]`)
	good := ComputeHash(body, "k")

	tests := []struct {
		name     string
		key      string
		received string
		want     bool
	}{
		{name: "no key", key: "", received: "", want: true},
		{name: "missing hash", key: "k", received: "", want: false},
		{name: "valid", key: "k", received: good, want: true},
		{name: "invalid", key: "k", received: "deadbeef", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, VerifyHash(body, tt.key, tt.received))
		})
	}
}
