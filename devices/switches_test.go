package devices_test

import (
	"testing"

	"github.com/db47h/simcir"
	"github.com/db47h/simcir/devices"
	"github.com/stretchr/testify/assert"
)

func TestSwitches(t *testing.T) {
	type step struct {
		op   string // press, release
		want bool
	}
	data := []struct {
		typ   string
		start bool
		steps []step
	}{
		{"PushOn", false, []step{{"press", true}, {"release", false}}},
		{"PushOff", true, []step{{"press", false}, {"release", true}}},
		{"Toggle", false, []step{{"press", true}, {"release", true}, {"press", false}, {"release", false}}},
	}
	for _, d := range data {
		d := d
		t.Run(d.typ, func(t *testing.T) {
			c, _ := build(t, []simcir.DeviceDef{
				{ID: "dev0", Type: "DC"},
				{ID: "dev1", Type: d.typ},
			},
				simcir.Connector{From: "dev1.in0", To: "dev0.out0"},
			)
			assert.Equal(t, d.start, high(t, c, "dev1.out0"), "initial")
			for i, s := range d.steps {
				do(t, c, "dev1", func(dev *simcir.Device, sw *devices.Switch) {
					if s.op == "press" {
						sw.Press(dev)
					} else {
						sw.Release(dev)
					}
				})
				assert.Equal(t, s.want, high(t, c, "dev1.out0"), "step %d: %s", i, s.op)
			}
		})
	}
}

func TestToggle_state(t *testing.T) {
	c, _ := build(t, []simcir.DeviceDef{
		{ID: "dev0", Type: "DC"},
		{ID: "dev1", Type: "Toggle", State: simcir.State{"on": true}},
		{ID: "dev2", Type: "PushOn"},
	},
		simcir.Connector{From: "dev1.in0", To: "dev0.out0"},
	)
	assert.True(t, high(t, c, "dev1.out0"))
	assert.Equal(t, simcir.State{"on": true}, c.Device("dev1").State())
	assert.Nil(t, c.Device("dev2").State())
}

func TestDC(t *testing.T) {
	c, _ := build(t, []simcir.DeviceDef{
		{ID: "dev0", Type: "DC"},
		{ID: "dev1", Type: "LED"},
	},
		simcir.Connector{From: "dev1.in0", To: "dev0.out0"},
	)
	assert.True(t, high(t, c, "dev1.in0"))
	assert.NoError(t, c.RemoveDevice(c.Device("dev0")))
	assert.False(t, high(t, c, "dev1.in0"))
}
