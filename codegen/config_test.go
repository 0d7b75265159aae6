package codegen

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPascal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user_info", "UserInfo"},
		{"full_name", "FullName"},
		{"cake_id", "CakeID"},
		{"http_code", "HTTPCode"},
		{"full-admin", "FullAdmin"},
		{"already", "Already"},
		{"a_b", "AB"},
		{"api_url", "APIURL"},
		{"profileId", "ProfileId"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, pascal(tt.input))
		})
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"cake", "Cake"},
		{"cakes", "Cake"},
		{"cake_filling", "CakeFilling"},
		{"cakes_bakers", "CakesBaker"},
		{"categories", "Category"},
		{"user_api_keys", "UserAPIKey"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, typeName(tt.input))
		})
	}
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "model", cfg.Package)
	assert.Equal(t, DefaultHeader, cfg.Header)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
	assert.False(t, cfg.ActiveModels)

	cfg, err = NewConfig(WithPackage("bakery"), WithHeader("Code generated by hand."), WithTables("cake", "fruit"))
	require.NoError(t, err)
	assert.Equal(t, "bakery", cfg.Package)
	assert.Equal(t, "Code generated by hand.", cfg.Header)
	assert.Equal(t, []string{"cake", "fruit"}, cfg.Tables)

	for _, opt := range []Option{WithPackage(""), WithTarget(""), WithWorkers(-1)} {
		_, err := NewConfig(opt)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
	}
	_, err = NewConfig(WithWorkers(-1))
	assert.EqualError(t, err, `codegen: config error for "Workers" (value: -1): workers cannot be negative`)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
package: bakery
target: ./internal/bakery
workers: 4
active_models: true
tables:
  - cake
  - cake_filling
`), 0o644))

	cfg, err := LoadConfig(path, WithTarget("./gen"))
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Package:      "bakery",
		Target:       "./gen",
		Header:       DefaultHeader,
		Workers:      4,
		ActiveModels: true,
		Tables:       []string{"cake", "cake_filling"},
	}, cfg)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("package: [bakery"), 0o644))
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "codegen: parse config")
}
