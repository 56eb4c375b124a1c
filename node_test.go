package simcir_test

import (
	"strconv"
	"testing"

	"github.com/db47h/simcir"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_singleDriver(t *testing.T) {
	c, _ := newCircuit(t, devs("Src", "Src", "Sink"), conn("dev2.in0", "dev0.out0"))
	o1, o2, in := node(t, c, "dev0.out0"), node(t, c, "dev1.out0"), node(t, c, "dev2.in0")
	require.NoError(t, c.Set("dev1.out0", simcir.High))

	assert.Equal(t, o1, in.Driver())
	assert.Equal(t, []*simcir.Node{in}, o1.Targets())
	assert.Nil(t, in.Value())

	require.NoError(t, c.Connect(o2, in))
	assert.Equal(t, o2, in.Driver())
	assert.Empty(t, o1.Targets())
	assert.False(t, o1.IsConnected())
	assert.Equal(t, []*simcir.Node{in}, o2.Targets())
	assert.Equal(t, simcir.High, in.Value(), "driver value forced into the input")

	// the old driver no longer propagates
	require.NoError(t, c.Set("dev0.out0", simcir.High))
	require.NoError(t, c.Set("dev1.out0", nil))
	assert.Nil(t, in.Value())
}

func TestConnect_errors(t *testing.T) {
	c, _ := newCircuit(t, devs("Src", "Sink", "Sink"))
	other, _ := newCircuit(t, devs("Src"))

	data := []struct {
		name string
		f    func() error
	}{
		{"input to output", func() error { return c.Connect(node(t, c, "dev1.in0"), node(t, c, "dev0.out0")) }},
		{"same kind", func() error { return c.ConnectPath("dev1.in0", "dev2.in0") }},
		{"no such port", func() error { return c.ConnectPath("dev1.in1", "dev0.out0") }},
		{"no such device", func() error { return c.ConnectPath("dev9.in0", "dev0.out0") }},
		{"bad path", func() error { return c.ConnectPath("dev1.foo", "dev0.out0") }},
		{"other circuit", func() error { return c.Connect(node(t, other, "dev0.out0"), node(t, c, "dev1.in0")) }},
		{"not connected", func() error { return c.DisconnectFrom(node(t, c, "dev0.out0"), node(t, c, "dev1.in0")) }},
		{"disconnect output", func() error { return c.Disconnect(node(t, c, "dev0.out0")) }},
	}
	for _, d := range data {
		err := d.f()
		assert.Error(t, err, d.name)
		assert.True(t, simcir.IsIntegrityError(err), "%s: %v", d.name, err)
	}
	assert.False(t, node(t, c, "dev1.in0").IsConnected())
}

func TestDisconnect(t *testing.T) {
	c, _ := newCircuit(t, devs("Src", "Sink"), conn("dev1.in0", "dev0.out0"))
	require.NoError(t, c.Set("dev0.out0", simcir.High))
	in := node(t, c, "dev1.in0")
	assert.Equal(t, simcir.High, in.Value())

	require.NoError(t, c.DisconnectFrom(node(t, c, "dev0.out0"), in))
	assert.Nil(t, in.Value(), "disconnected inputs are forced low")
	assert.Nil(t, in.Driver())
	// no-op
	require.NoError(t, c.Disconnect(in))
}

func TestFanOut_property(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	properties := gopter.NewProperties(params)

	properties.Property("an output sets every input it drives", prop.ForAll(
		func(k int, high bool) bool {
			ds := devs("Src")
			var cs []simcir.Connector
			for i := 1; i <= k; i++ {
				ds = append(ds, simcir.DeviceDef{ID: "dev" + strconv.Itoa(i), Type: "Sink"})
				cs = append(cs, conn("dev"+strconv.Itoa(i)+".in0", "dev0.out0"))
			}
			c, _ := newCircuit(t, ds, cs...)
			defer c.Close()
			v := simcir.BoolValue(high)
			if err := c.Set("dev0.out0", v); err != nil {
				return false
			}
			if value(t, c, "dev0.out0") != v {
				return false
			}
			for i := 1; i <= k; i++ {
				if value(t, c, "dev"+strconv.Itoa(i)+".in0") != v {
					return false
				}
			}
			return len(node(t, c, "dev0.out0").Targets()) == k
		},
		gen.IntRange(0, 12),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestBusIdentity(t *testing.T) {
	c, _ := newCircuit(t, devs("Src", "Sink"), conn("dev1.in0", "dev0.out0"))
	changes := 0
	c.Subscribe(func(e simcir.Event) {
		if e.Kind == simcir.EventValueChanged && e.Node.Kind() == simcir.Input {
			changes++
		}
	})
	bus := simcir.Bus{simcir.High, nil}
	require.NoError(t, c.Set("dev0.out0", bus))
	require.NoError(t, c.Set("dev0.out0", bus))
	assert.Equal(t, 1, changes, "same bus")
	require.NoError(t, c.Set("dev0.out0", simcir.Bus{simcir.High, nil}))
	assert.Equal(t, 2, changes, "equal bus with a distinct identity")
	require.NoError(t, c.Set("dev0.out0", simcir.High))
	require.NoError(t, c.Set("dev0.out0", simcir.High))
	assert.Equal(t, 3, changes, "scalar")
}

type payload struct{ V interface{} }

func TestUncomparableValue(t *testing.T) {
	c, _ := newCircuit(t, devs("Src", "Sink"), conn("dev1.in0", "dev0.out0"))
	changes := 0
	c.Subscribe(func(e simcir.Event) {
		if e.Kind == simcir.EventValueChanged && e.Node.Kind() == simcir.Input {
			changes++
		}
	})
	require.NotPanics(t, func() {
		require.NoError(t, c.Set("dev0.out0", payload{[]int{1}}))
		require.NoError(t, c.Set("dev0.out0", payload{[]int{1}}))
	})
	assert.Equal(t, 2, changes, "uncomparable contents always change")
	require.NoError(t, c.Set("dev0.out0", payload{"x"}))
	require.NoError(t, c.Set("dev0.out0", payload{"x"}))
	assert.Equal(t, 3, changes, "comparable contents")
	assert.Equal(t, payload{"x"}, value(t, c, "dev1.in0"))
}

func TestPropagation_afterPanic(t *testing.T) {
	c, _ := newCircuit(t, devs("Src", "NOT", "Sink"),
		conn("dev1.in0", "dev0.out0"),
		conn("dev2.in0", "dev1.out0"))

	assert.Panics(t, func() { _ = c.Do(func() { panic("interrupted") }) })
	require.NoError(t, c.Set("dev0.out0", simcir.High))
	assert.Nil(t, value(t, c, "dev2.in0"))

	armed := true
	c.Subscribe(func(e simcir.Event) {
		if armed && e.Kind == simcir.EventInputsChanged {
			armed = false
			panic("interrupted")
		}
	})
	assert.Panics(t, func() { _ = c.Set("dev0.out0", nil) })
	require.NoError(t, c.Set("dev0.out0", simcir.High))
	assert.Nil(t, value(t, c, "dev2.in0"))
	require.NoError(t, c.Set("dev0.out0", nil))
	assert.Equal(t, simcir.High, value(t, c, "dev2.in0"))
}

func TestValue(t *testing.T) {
	assert.Equal(t, 0, simcir.Bit(nil))
	assert.Equal(t, 1, simcir.Bit(false), "any non-nil value is high")
	assert.True(t, simcir.IsHigh(simcir.Bus{}))
	assert.Nil(t, simcir.BoolValue(false))
	assert.Equal(t, simcir.High, simcir.BoolValue(true))
	assert.Equal(t, simcir.High, simcir.Line(simcir.Bus{nil, simcir.High}, 1))
	assert.Nil(t, simcir.Line(simcir.Bus{nil, simcir.High}, 2))
	assert.Nil(t, simcir.Line(simcir.High, 0))
}

func TestNode_accessors(t *testing.T) {
	c, _ := newCircuit(t, devs("Src", "AND"), conn("dev1.in1", "dev0.out0"))
	n := node(t, c, "dev1.in1")
	assert.Equal(t, simcir.Input, n.Kind())
	assert.Equal(t, "in", n.Kind().String())
	assert.Equal(t, 1, n.Index())
	assert.Equal(t, "dev1.in1", n.Path())
	assert.Equal(t, c.Device("dev1"), n.Device())
	assert.True(t, n.IsConnected())
	assert.Nil(t, node(t, c, "dev0.out0").Driver())
	assert.Nil(t, n.Targets())
}
