package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "reviews", cfg.Store.Key)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Notify.Enabled)
	assert.Equal(t, ":7071", cfg.Notify.Addr)
}

func TestLoadConfigFileEnvAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testimonials.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: file
  path: /srv/reviews
kafka:
  enabled: true
  brokers: "a:9092, b:9092,"
`), 0o644))
	t.Setenv("TESTIMONIALS_HTTP_ADDR", ":9999")

	cfg, err := LoadConfig(path, func(v *viper.Viper) { v.Set("store.key", "site-b") })
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "/srv/reviews", cfg.Store.Path)
	assert.Equal(t, "site-b", cfg.Store.Key)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.BrokerList())
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
