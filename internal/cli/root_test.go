package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyrmion/antop/internal/config"
	"github.com/skyrmion/antop/internal/errors"
)

// resetRootFlags zeroes the package level flag vars for a test and restores
// the originals afterwards.
func resetRootFlags(t *testing.T) {
	t.Helper()

	origConfig := configFlag
	origPath := pathFlag
	origLogs := logsFlag
	origInterval := intervalFlag
	origWatch := watchFlag
	origNoWatch := noWatchFlag

	configFlag = ""
	pathFlag = ""
	logsFlag = ""
	intervalFlag = ""
	watchFlag = false
	noWatchFlag = false

	t.Cleanup(func() {
		configFlag = origConfig
		pathFlag = origPath
		logsFlag = origLogs
		intervalFlag = origInterval
		watchFlag = origWatch
		noWatchFlag = origNoWatch
	})
}

// chdir changes the working directory for the duration of the test and
// restores it afterwards, standing in for testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()

	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(dir) {
		dir, err = os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic("chdir cleanup: " + err.Error())
		}
	})
}

func TestApplyFlagOverridesPathAndLogs(t *testing.T) {
	resetRootFlags(t)
	pathFlag = "/data/nodes/*"
	logsFlag = "/data/logs/*.log"

	cfg := config.DefaultConfig()
	require.NoError(t, applyFlagOverrides(cfg))

	assert.Equal(t, "/data/nodes/*", cfg.Nodes.Path)
	assert.Equal(t, "/data/logs/*.log", cfg.Nodes.Logs)
}

func TestApplyFlagOverridesInterval(t *testing.T) {
	resetRootFlags(t)
	intervalFlag = "5s"

	cfg := config.DefaultConfig()
	require.NoError(t, applyFlagOverrides(cfg))

	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
}

func TestApplyFlagOverridesBadInterval(t *testing.T) {
	resetRootFlags(t)
	intervalFlag = "fast"

	cfg := config.DefaultConfig()
	err := applyFlagOverrides(cfg)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "valid interval")
}

func TestApplyFlagOverridesUnsupportedInterval(t *testing.T) {
	resetRootFlags(t)
	intervalFlag = "3s"

	cfg := config.DefaultConfig()
	err := applyFlagOverrides(cfg)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "Unsupported interval")
	// The config keeps its previous interval on a rejected flag
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
}

func TestApplyFlagOverridesWatch(t *testing.T) {
	resetRootFlags(t)
	watchFlag = true

	cfg := config.DefaultConfig()
	require.NoError(t, applyFlagOverrides(cfg))
	assert.True(t, cfg.Poll.Watch)
}

func TestApplyFlagOverridesNoWatchWins(t *testing.T) {
	resetRootFlags(t)
	watchFlag = true
	noWatchFlag = true

	cfg := config.DefaultConfig()
	require.NoError(t, applyFlagOverrides(cfg))
	assert.False(t, cfg.Poll.Watch)
}

func TestApplyFlagOverridesNoFlags(t *testing.T) {
	resetRootFlags(t)

	cfg := config.DefaultConfig()
	require.NoError(t, applyFlagOverrides(cfg))

	assert.Equal(t, config.DefaultNodePattern, cfg.Nodes.Path)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	assert.False(t, cfg.Poll.Watch)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	resetRootFlags(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "antop.yaml")
	content := `version: 1
nodes:
  path: /var/antnode/*
poll:
  interval: 10s
  watch: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	configFlag = path
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/var/antnode/*", cfg.Nodes.Path)
	assert.Equal(t, 10*time.Second, cfg.Poll.Interval)
	assert.True(t, cfg.Poll.Watch)
}

func TestLoadConfigExplicitFileMissing(t *testing.T) {
	resetRootFlags(t)
	configFlag = filepath.Join(t.TempDir(), "nope.yaml")

	_, err := loadConfig()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadConfigFlagsLayerOverFile(t *testing.T) {
	resetRootFlags(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "antop.yaml")
	content := `nodes:
  path: /var/antnode/*
poll:
  interval: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	configFlag = path
	intervalFlag = "30s"
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/var/antnode/*", cfg.Nodes.Path, "file value survives")
	assert.Equal(t, 30*time.Second, cfg.Poll.Interval, "flag wins over file")
}

func TestLoadConfigRejectsUnsupportedFileInterval(t *testing.T) {
	resetRootFlags(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "antop.yaml")
	content := `poll:
  interval: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	configFlag = path
	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"config", "path", "logs"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing persistent flag %q", name)
	}
	for _, name := range []string{"interval", "watch", "no-watch"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), "missing flag %q", name)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "init", "doctor", "version"} {
		assert.True(t, names[want], "subcommand %q not registered", want)
	}
}
