package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyrmion/antop/internal/config"
)

func TestDoctorCommandText(t *testing.T) {
	resetRootFlags(t)
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	root := t.TempDir()
	writeNodeDir(t, root, "antnode1", "")
	pathFlag = filepath.Join(root, "*")

	var buf bytes.Buffer
	require.NoError(t, doctorCommand(&buf))

	out := buf.String()
	assert.Contains(t, out, "antop diagnostics")
	assert.Contains(t, out, "CONFIG")
	assert.Contains(t, out, "NODES")
	assert.Contains(t, out, "METRICS")
	assert.Contains(t, out, "1 node discovered")
	assert.Contains(t, out, "antop init")
}

func TestDoctorCommandTextWithConfig(t *testing.T) {
	resetRootFlags(t)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.ConfigFileName)
	cfg := config.DefaultConfig()
	cfg.Nodes.Path = filepath.Join(dir, "nodes", "*")
	require.NoError(t, config.Write(cfg, cfgPath))

	configFlag = cfgPath

	var buf bytes.Buffer
	require.NoError(t, doctorCommand(&buf))

	out := buf.String()
	assert.Contains(t, out, "Config file: "+cfgPath)
	assert.Contains(t, out, "No node directories match")
}

func TestDoctorCommandJSON(t *testing.T) {
	resetRootFlags(t)
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	root := t.TempDir()
	writeNodeDir(t, root, "antnode1", "")
	pathFlag = filepath.Join(root, "*")

	origJSON := doctorJSON
	doctorJSON = true
	t.Cleanup(func() { doctorJSON = origJSON })

	var buf bytes.Buffer
	require.NoError(t, doctorCommand(&buf))

	var output DoctorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Len(t, output.Categories, 3)
	total := output.Summary.Pass + output.Summary.Warn + output.Summary.Fail
	assert.Equal(t, 5, total, "every check appears in the summary")
	assert.False(t, output.Summary.AllClear, "missing config file warns")
}

func TestDoctorCommandRegistered(t *testing.T) {
	assert.NotNil(t, doctorCmd.Flags().Lookup("json"))
}
