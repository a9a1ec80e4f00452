package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config dir at an empty temp dir and runs the
// test from another one, so no real config.yaml or .env leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	work := t.TempDir()
	t.Chdir(work)
	return work
}

func TestLoad_Defaults(t *testing.T) {
	// Given no config file and no environment overrides
	isolate(t)

	// When loading the configuration
	cfg, err := Load("")

	// Then the defaults apply
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "127.0.0.1:8090", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "pmreport.db", filepath.Base(cfg.DB.Path))
	assert.NotEmpty(t, cfg.Export.Dir)
}

func TestLoad_FileAndEnv(t *testing.T) {
	// Given a config file and an environment override for one of its keys
	work := isolate(t)
	path := filepath.Join(work, "pmreport.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: http://pm.internal/api
  timeout: 3s
server:
  addr: ":9000"
`), 0o644))
	t.Setenv("PMREPORT_SERVER_ADDR", ":9100")

	// When loading with an explicit path
	cfg, err := Load(path)

	// Then the file overrides the defaults and the environment overrides the file
	require.NoError(t, err)
	assert.Equal(t, "http://pm.internal/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, ":9100", cfg.Server.Addr)
}

func TestLoad_DotEnv(t *testing.T) {
	// Given a .env file in the working directory
	work := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(work, ".env"), []byte("PMREPORT_API_TOKEN=secret\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PMREPORT_API_TOKEN") })

	// When loading the configuration
	cfg, err := Load("")

	// Then its variables are picked up
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.API.Token)
}

func TestLoad_DefaultConfigFile(t *testing.T) {
	// Given a config.yaml in the user config directory
	isolate(t)
	dir, err := Dir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: debug\n"), 0o644))

	// When loading without an explicit path
	cfg, err := Load("")

	// Then the file is read
	require.NoError(t, err)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		API: APIConfig{BaseURL: "http://x", Timeout: time.Second},
		Log: LogConfig{Level: "warn"},
	}
	require.NoError(t, valid.Validate())

	noURL := valid
	noURL.API.BaseURL = ""
	assert.Error(t, noURL.Validate())

	noTimeout := valid
	noTimeout.API.Timeout = 0
	assert.Error(t, noTimeout.Validate())

	badLevel := valid
	badLevel.Log.Level = "loud"
	assert.Error(t, badLevel.Validate())
}
