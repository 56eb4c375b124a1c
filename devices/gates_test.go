package devices_test

import (
	"strconv"
	"testing"

	"github.com/db47h/simcir"
	"github.com/db47h/simcir/simtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fold(in []bool, f func(a, b bool) bool, invert bool) []bool {
	v := in[0]
	for _, b := range in[1:] {
		v = f(v, b)
	}
	return []bool{v != invert}
}

func TestGates(t *testing.T) {
	and := func(a, b bool) bool { return a && b }
	or := func(a, b bool) bool { return a || b }
	xor := func(a, b bool) bool { return a != b }
	id := func(a, _ bool) bool { return a }

	data := []struct {
		typ    string
		f      func(a, b bool) bool
		invert bool
	}{
		{"BUF", id, false},
		{"NOT", id, true},
		{"AND", and, false},
		{"NAND", and, true},
		{"OR", or, false},
		{"NOR", or, true},
		{"XOR", xor, false},
		{"XNOR", xor, true},
		{"EOR", xor, false},
		{"ENOR", xor, true},
	}
	for _, d := range data {
		for _, n := range []int{2, 3, 5} {
			d, n := d, n
			t.Run(d.typ+"_"+strconv.Itoa(n), func(t *testing.T) {
				c, _ := build(t, []simcir.DeviceDef{{ID: "dev0", Type: d.typ, Params: map[string]interface{}{"numInputs": n}}})
				ins, outs := simtest.Ports(c, "dev0")
				if d.typ == "BUF" || d.typ == "NOT" {
					require.Len(t, ins, 1)
				} else {
					require.Len(t, ins, n)
				}
				simtest.TruthTable(t, c, ins, outs, func(in []bool) []bool {
					return fold(in, d.f, d.invert)
				})
			})
		}
	}
}

func TestGates_encoding(t *testing.T) {
	c, _ := build(t, []simcir.DeviceDef{
		{ID: "dev0", Type: "AND"},
		{ID: "dev1", Type: "NAND"},
	})
	set(t, c, "dev0.in0", simcir.High)
	set(t, c, "dev0.in1", simcir.High)
	assert.Equal(t, simcir.High, value(t, c, "dev0.out0"))
	set(t, c, "dev0.in1", nil)
	assert.Nil(t, value(t, c, "dev0.out0"))

	// gates are evaluated on input changes only
	assert.Nil(t, value(t, c, "dev1.out0"))
	set(t, c, "dev1.in0", simcir.High)
	assert.Equal(t, simcir.High, value(t, c, "dev1.out0"))
	set(t, c, "dev1.in1", simcir.High)
	assert.Nil(t, value(t, c, "dev1.out0"))
}

func TestGates_minInputs(t *testing.T) {
	c, _ := build(t, []simcir.DeviceDef{{ID: "dev0", Type: "OR", Params: map[string]interface{}{"numInputs": 1}}})
	d := c.Device("dev0")
	assert.Len(t, d.Inputs(), 2)
	assert.Equal(t, simcir.Size{Width: simcir.Unit * 2, Height: simcir.Unit * 2}, d.Size())
}

func TestGates_maxInputs(t *testing.T) {
	c, _ := build(t, []simcir.DeviceDef{{ID: "dev0", Type: "AND", Params: map[string]interface{}{"numInputs": 1e9}}})
	assert.Len(t, c.Device("dev0").Inputs(), 64)
}

func TestGates_compare(t *testing.T) {
	r := testRegistry(t)
	simtest.CompareDevices(t, r, "XOR", "EOR")
	simtest.CompareDevices(t, r, "XNOR", "ENOR")
}
