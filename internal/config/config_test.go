package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup. (testing.T.Chdir needs Go 1.24.)
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	// Run from a directory with no focusprobe.yaml.
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "focusprobe", cfg.Logger.ServiceName)
	assert.True(t, cfg.Probe.Trap.Enabled)
	assert.True(t, cfg.Probe.Trap.EscapeDeactivates)
	assert.False(t, cfg.Probe.Trap.AllowOutsideClick)
	assert.True(t, cfg.Probe.Navigator.WrapAround)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  level: debug
  format: json
probe:
  trap:
    escape_deactivates: false
    allow_outside_click: true
  navigator:
    wrap_around: false
    custom_selectors:
      - "//*[@role='option']"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.False(t, cfg.Probe.Trap.EscapeDeactivates)
	assert.True(t, cfg.Probe.Trap.AllowOutsideClick)
	assert.False(t, cfg.Probe.Navigator.WrapAround)
	assert.Equal(t, []string{"//*[@role='option']"}, cfg.Probe.Navigator.CustomSelectors)

	// Keys the file does not mention keep their defaults.
	assert.True(t, cfg.Probe.Trap.Enabled)
	assert.True(t, cfg.Probe.Navigator.SkipHidden)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err, "an explicitly named file must exist")
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger: [\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FOCUSPROBE_LOGGER_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logger.Level)
}
