package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDefaultIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letluck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tree: food.yaml
watch: true
store:
  backend: redis
  ttl: 2h
  redis:
    db: "3"
recency:
  limit: 5
display:
  layout: mobile
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "food.yaml", cfg.Tree)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Store.TTL)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 5, cfg.Recency.Limit)
	assert.Equal(t, "mobile", cfg.Display.Layout)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown key":     "colour: true\n",
		"unknown backend": "store:\n  backend: sqlite\n",
		"bad layout":      "display:\n  layout: tv\n",
		"bad yaml":        "store: [",
		"short key":       "store:\n  encryption_key: c2hvcnQ=\n",
		"orphan fallback": "store:\n  fallback_keys: [" + testKey(1) + "]\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func testKey(b byte) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{b}, keySize))
}

func TestStoreConfig_Keys(t *testing.T) {
	active, fallback, err := StoreConfig{}.Keys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)

	active, fallback, err = StoreConfig{
		EncryptionKey: testKey(1),
		FallbackKeys:  []string{testKey(2)},
	}.Keys()
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{1}, keySize), active)
	require.Len(t, fallback, 1)
	assert.Equal(t, bytes.Repeat([]byte{2}, keySize), fallback[0])
}

func TestLoad_EncryptionKeyFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvEncryptionKey, testKey(7))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, testKey(7), cfg.Store.EncryptionKey)

	t.Setenv(EnvEncryptionKey, "not base64!")
	_, err = Load("")
	assert.Error(t, err)
}
