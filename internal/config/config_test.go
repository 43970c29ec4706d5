package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kevinxiao27/lww-set/lww"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Len(t, cfg.NodeID, 26)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "", cfg.MetricsAddr)
	assert.Equal(t, "wall", cfg.Clock)
	assert.Equal(t, "remove-wins", cfg.TiePolicy)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
node_id: n1
http_addr: 127.0.0.1:9000
metrics_addr: 127.0.0.1:9100
clock: logical
tie_policy: add-wins
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		NodeID:      "n1",
		HTTPAddr:    "127.0.0.1:9000",
		MetricsAddr: "127.0.0.1:9100",
		Clock:       "logical",
		TiePolicy:   "add-wins",
		LogLevel:    "debug",
	}, cfg)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "node_id: n1\nclock: logical\n")
	t.Setenv("LWW_NODE_ID", "n2")
	t.Setenv("LWW_TIE_POLICY", "add-wins")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "n2", cfg.NodeID)
	assert.Equal(t, "logical", cfg.Clock)
	assert.Equal(t, "add-wins", cfg.TiePolicy)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "node_id: [oops"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "clock: sundial\n"))
	assert.ErrorContains(t, err, "unknown clock")

	_, err = Load(writeConfig(t, "tie_policy: coin-flip\n"))
	assert.ErrorContains(t, err, "unknown tie policy")

	_, err = Load(writeConfig(t, "log_level: loud\n"))
	assert.ErrorContains(t, err, "unknown log level")
}

func TestSetOptions(t *testing.T) {
	cfg := &Config{Clock: "logical", TiePolicy: "add-wins"}
	set := lww.New[string](cfg.SetOptions()...)
	assert.Equal(t, lww.AddWins, set.TiePolicy())

	set.Add("x")
	set.Remove("x")
	added, _ := set.AddedAt("x")
	removed, _ := set.RemovedAt("x")
	assert.Equal(t, lww.Timestamp(1), added)
	assert.Equal(t, lww.Timestamp(2), removed)
	assert.False(t, set.Has("x"))

	cfg = &Config{Clock: "wall", TiePolicy: "remove-wins"}
	assert.Equal(t, lww.RemoveWins, lww.New[string](cfg.SetOptions()...).TiePolicy())
}
