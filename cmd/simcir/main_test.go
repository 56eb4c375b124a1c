package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/db47h/simcir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const andJSON = `{
  "devices": [
    {"type": "DC", "id": "dev0", "x": 0, "y": 0, "label": "DC"},
    {"type": "AND", "id": "dev1", "x": 64, "y": 0, "label": "AND"}
  ],
  "connectors": [
    {"from": "dev1.in0", "to": "dev0.out0"},
    {"from": "dev1.in1", "to": "dev0.out0"}
  ]
}`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestRun(t *testing.T) {
	circuit := writeFile(t, "and.json", andJSON)
	var out bytes.Buffer
	err := run(context.Background(), []string{"--log-level", "error", "-p", "dev1.out0", "-p", "dev1.in0", circuit}, &out)
	require.NoError(t, err)
	assert.Equal(t, "dev1.out0\t1\ndev1.in0\t1\n", out.String())
}

func TestRun_dump(t *testing.T) {
	circuit := writeFile(t, "and.json", andJSON)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--log-level", "error", "--dump", circuit}, &out))
	def, err := simcir.ParseDefinition(out.Bytes())
	require.NoError(t, err)
	assert.Len(t, def.Devices, 2)
	assert.Len(t, def.Connectors, 2)

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"--log-level", "error", "--dump", "--format", "yaml", circuit}, &out))
	def, err = simcir.ParseDefinitionYAML(out.Bytes())
	require.NoError(t, err)
	assert.Len(t, def.Devices, 2)
}

func TestRun_errors(t *testing.T) {
	circuit := writeFile(t, "and.json", andJSON)
	data := []struct {
		name string
		args []string
	}{
		{"no file", nil},
		{"format", []string{"--format", "xml", circuit}},
		{"level", []string{"--log-level", "loud", circuit}},
		{"probe", []string{"--log-level", "error", "-p", "dev9.out0", circuit}},
		{"missing", []string{filepath.Join(t.TempDir(), "nope.json")}},
		{"config", []string{"-c", writeFile(t, "bad.yaml", "engine: {maxCascadeSteps: -3}"), circuit}},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(context.Background(), d.args, &out))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0", formatValue(nil))
	assert.Equal(t, "1", formatValue(simcir.High))
	assert.Equal(t, "[101]", formatValue(simcir.Bus{simcir.High, nil, simcir.High}))
}
