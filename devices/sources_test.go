package devices_test

import (
	"testing"
	"time"

	"github.com/db47h/simcir"
	"github.com/db47h/simcir/devices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSC(t *testing.T) {
	data := []struct {
		freq   interface{}
		period time.Duration
	}{
		{nil, 50 * time.Millisecond},
		{10, 50 * time.Millisecond},
		{2, 250 * time.Millisecond},
		{3, 166 * time.Millisecond},
		{1000, time.Millisecond},
		{-1, 50 * time.Millisecond},
	}
	for _, d := range data {
		def := simcir.DeviceDef{ID: "dev0", Type: "OSC"}
		if d.freq != nil {
			def.Params = map[string]interface{}{"freq": d.freq}
		}
		c, _ := build(t, []simcir.DeviceDef{def})
		o := c.Device("dev0").Behavior().(*devices.Osc)
		assert.Equal(t, d.period, o.Period(), "freq %v", d.freq)
	}
}

func TestOSC_ticks(t *testing.T) {
	c, clk := build(t, []simcir.DeviceDef{
		{ID: "dev0", Type: "OSC", Params: map[string]interface{}{"freq": 10}},
		{ID: "dev1", Type: "LED"},
	},
		simcir.Connector{From: "dev1.in0", To: "dev0.out0"},
	)
	var got []bool
	for i := 0; i < 5; i++ {
		clk.Advance(50 * time.Millisecond)
		got = append(got, high(t, c, "dev1.in0"))
	}
	assert.Equal(t, []bool{false, true, false, true, false}, got)

	require.NoError(t, c.RemoveDevice(c.Device("dev0")))
	assert.Zero(t, clk.Pending())
}

func TestDelay(t *testing.T) {
	c, clk := build(t, []simcir.DeviceDef{
		{ID: "dev0", Type: "In"},
		{ID: "dev1", Type: "Delay", Params: map[string]interface{}{"delay": 100}},
		{ID: "dev2", Type: "LED"},
	},
		simcir.Connector{From: "dev1.in0", To: "dev0.out0"},
		simcir.Connector{From: "dev2.in0", To: "dev1.out0"},
	)
	assert.Equal(t, 100*time.Millisecond, c.Device("dev1").Behavior().(*devices.Delay).Delay())

	set(t, c, "dev0.in0", simcir.High)
	assert.False(t, high(t, c, "dev2.in0"))
	clk.Advance(60 * time.Millisecond)
	set(t, c, "dev0.in0", nil)
	clk.Advance(60 * time.Millisecond)
	assert.True(t, high(t, c, "dev2.in0"), "first edge after 100ms")
	clk.Advance(60 * time.Millisecond)
	assert.False(t, high(t, c, "dev2.in0"), "second edge after 160ms")
}

func TestDelay_params(t *testing.T) {
	data := []struct {
		delay interface{}
		want  time.Duration
	}{
		{nil, devices.DefaultDelay},
		{0, devices.DefaultDelay},
		{-5, 0},
		{12.5, 12500 * time.Microsecond},
	}
	for _, d := range data {
		def := simcir.DeviceDef{ID: "dev0", Type: "Delay"}
		if d.delay != nil {
			def.Params = map[string]interface{}{"delay": d.delay}
		}
		c, _ := build(t, []simcir.DeviceDef{def})
		assert.Equal(t, d.want, c.Device("dev0").Behavior().(*devices.Delay).Delay(), "delay %v", d.delay)
	}
}

func TestOriented(t *testing.T) {
	c, _ := build(t, []simcir.DeviceDef{
		{ID: "dev0", Type: "Joint", State: simcir.State{"direction": 1}},
		{ID: "dev1", Type: "Joint"},
	})
	d := c.Device("dev0")
	j := d.Behavior().(*devices.Joint)
	assert.Equal(t, devices.NS, j.Direction())
	in, _ := d.Place(d.Input(0))
	out, _ := d.Place(d.Output(0))
	assert.Equal(t, simcir.Point{X: simcir.Unit / 2, Y: 0}, in)
	assert.Equal(t, simcir.Point{X: simcir.Unit / 2, Y: simcir.Unit}, out)
	assert.Equal(t, simcir.Size{Width: simcir.Unit, Height: simcir.Unit}, d.Size())

	require.NoError(t, c.Do(func() { j.Rotate(); j.Rotate(); j.Rotate() }))
	assert.Equal(t, devices.WE, j.Direction())
	assert.Equal(t, simcir.State{"direction": 0}, d.State())

	set(t, c, "dev1.in0", simcir.High)
	assert.True(t, high(t, c, "dev1.out0"))
}
