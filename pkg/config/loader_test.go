package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpgate/pkg/config"
)

// Tests here mutate the process environment and the package cache, so they
// do not run in parallel.

type defaultsConfig struct {
	Issuer  string        `env:"CFGTEST_ISSUER" envDefault:"otpgate"`
	Digits  int           `env:"CFGTEST_DIGITS" envDefault:"6"`
	Step    time.Duration `env:"CFGTEST_STEP" envDefault:"30s"`
	Enabled bool          `env:"CFGTEST_ENABLED" envDefault:"true"`
}

type requiredConfig struct {
	Key string `env:"CFGTEST_REQUIRED,required"`
}

type nestedConfig struct {
	Totp  defaultsConfig
	Label string `env:"CFGTEST_LABEL" envDefault:"x"`
}

type envFileConfig struct {
	Value string `env:"CFGTEST_FROM_FILE"`
}

func TestLoad_Defaults(t *testing.T) {
	config.Reset()

	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "otpgate", cfg.Issuer)
	assert.Equal(t, 6, cfg.Digits)
	assert.Equal(t, 30*time.Second, cfg.Step)
	assert.True(t, cfg.Enabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	config.Reset()
	t.Setenv("CFGTEST_ISSUER", "Acme")
	t.Setenv("CFGTEST_STEP", "1m")

	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "Acme", cfg.Issuer)
	assert.Equal(t, time.Minute, cfg.Step)
}

func TestLoad_Cached(t *testing.T) {
	config.Reset()
	t.Setenv("CFGTEST_ISSUER", "first")

	var a defaultsConfig
	require.NoError(t, config.Load(&a))

	t.Setenv("CFGTEST_ISSUER", "second")
	var b defaultsConfig
	require.NoError(t, config.Load(&b))
	assert.Equal(t, "first", b.Issuer)

	config.Reset()
	var c defaultsConfig
	require.NoError(t, config.Load(&c))
	assert.Equal(t, "second", c.Issuer)
}

func TestLoad_Concurrent(t *testing.T) {
	config.Reset()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var cfg defaultsConfig
			assert.NoError(t, config.Load(&cfg))
			assert.Equal(t, "otpgate", cfg.Issuer)
		}()
	}
	wg.Wait()
}

func TestLoad_Errors(t *testing.T) {
	config.Reset()

	var missing requiredConfig
	err := config.Load(&missing)
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	assert.ErrorIs(t, config.Load[requiredConfig](nil), config.ErrNilPointer)

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})

	config.Reset()
	t.Setenv("CFGTEST_REQUIRED", "set")
	var cfg requiredConfig
	assert.NotPanics(t, func() { config.MustLoad(&cfg) })
	assert.Equal(t, "set", cfg.Key)
}

func TestLoad_Nested(t *testing.T) {
	config.Reset()
	t.Setenv("CFGTEST_DIGITS", "8")

	var cfg nestedConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 8, cfg.Totp.Digits)
	assert.Equal(t, "x", cfg.Label)
}

func TestLoadEnv(t *testing.T) {
	config.Reset()

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CFGTEST_FROM_FILE=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CFGTEST_FROM_FILE") })

	require.NoError(t, config.LoadEnv(path))

	var cfg envFileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from-file", cfg.Value)

	err := config.LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}
