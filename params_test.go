package simcir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testParams struct {
	N      int     `param:"n" default:"4" min:"2" max:"16"`
	F      float64 `param:"f" default:"0.5"`
	S      string  `param:"s" default:"none"`
	B      bool    `param:"b"`
	Ignore int
}

func TestDecodeParams(t *testing.T) {
	data := []struct {
		name   string
		params map[string]interface{}
		want   testParams
		err    bool
	}{
		{"defaults", nil, testParams{N: 4, F: 0.5, S: "none"}, false},
		{"json", map[string]interface{}{"n": 8.0, "f": 2.0, "s": "x", "b": true}, testParams{N: 8, F: 2, S: "x", B: true}, false},
		{"yaml", map[string]interface{}{"n": 3, "b": "true"}, testParams{N: 3, F: 0.5, S: "none", B: true}, false},
		{"number", map[string]interface{}{"n": json.Number("6")}, testParams{N: 6, F: 0.5, S: "none"}, false},
		{"clamped", map[string]interface{}{"n": 1}, testParams{N: 2, F: 0.5, S: "none"}, false},
		{"capped", map[string]interface{}{"n": 1e9}, testParams{N: 16, F: 0.5, S: "none"}, false},
		{"out of int range", map[string]interface{}{"n": 1e30}, testParams{N: 16, F: 0.5, S: "none"}, false},
		{"numeric string", map[string]interface{}{"n": "5"}, testParams{N: 5, F: 0.5, S: "none"}, false},
		{"bad int", map[string]interface{}{"n": "many"}, testParams{}, true},
		{"bad bool", map[string]interface{}{"b": 3}, testParams{}, true},
		{"bad string", map[string]interface{}{"s": 3}, testParams{}, true},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			dev := &Device{def: DeviceDef{ID: "dev0", Type: "Test", Params: d.params}}
			var p testParams
			err := dev.DecodeParams(&p)
			if d.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, d.want, p)
		})
	}
}

func TestDecodeParams_badTarget(t *testing.T) {
	dev := &Device{}
	var n int
	assert.Error(t, dev.DecodeParams(&n))
	assert.Error(t, dev.DecodeParams(testParams{}))
	var bad struct {
		M map[string]int `param:"m" default:"x"`
	}
	assert.Error(t, dev.DecodeParams(&bad))
}

func TestDevice_params(t *testing.T) {
	dev := &Device{def: DeviceDef{Params: map[string]interface{}{"n": 3.0, "s": "str", "f": "1.5"}}}
	assert.Equal(t, 3, dev.IntParam("n", 0))
	assert.Equal(t, 7, dev.IntParam("missing", 7))
	assert.Equal(t, 7, dev.IntParam("s", 7))
	assert.Equal(t, 1.5, dev.FloatParam("f", 0))
	assert.Equal(t, "str", dev.StringParam("s", ""))
	assert.Equal(t, "def", dev.StringParam("n", "def"))
	v, ok := dev.Param("n")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestState(t *testing.T) {
	s := State{"on": true, "angle": 90, "rangeIndex": 2.0}
	assert.True(t, s.Bool("on", false))
	assert.True(t, s.Bool("missing", true))
	assert.Equal(t, 90.0, s.Float("angle", 0))
	assert.Equal(t, 2.0, s.Float("rangeIndex", 0))
	assert.Equal(t, 1.0, State(nil).Float("x", 1))
}
