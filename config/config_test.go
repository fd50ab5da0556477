package config

import (
	"os"
	"path/filepath"
	"testing"

	gesture "github.com/esimov/gesture/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, gesture.DefaultThresholds(), cfg.Thresholds)
	assert.Equal(t, "first", cfg.Tracker.FacePolicy)
	assert.Equal(t, "localhost:8081", cfg.Server.Addr)
	assert.Equal(t, 30.0, cfg.Server.MaxFPS)
	assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gesture.toml")
	content := `
[thresholds]
left_nod = 15.0
smile = 0.7

[tracker]
face_policy = "all"

[server]
addr = ":9000"
max_fps = 15
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15.0, cfg.Thresholds.LeftNod)
	assert.Equal(t, 0.7, cfg.Thresholds.Smile)
	assert.Equal(t, gesture.DefaultRightNod, cfg.Thresholds.RightNod)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 15.0, cfg.Server.MaxFPS)

	policy, err := cfg.Tracker.Policy()
	require.NoError(t, err)
	assert.Equal(t, gesture.AllFaces, policy)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GESTURE_THRESHOLDS_EYE_OPEN_MIN", "0.2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.Thresholds.EyeOpenMin)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := valid()
	cfg.Tracker.FacePolicy = "some"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Server.MaxFPS = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Server.Burst = 0
	assert.Error(t, cfg.Validate())
}
