package simcir_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/db47h/simcir"
	"github.com/db47h/simcir/simtest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

// test devices:
//
//	Src: one output, set by the test
//	Sink: one input
//	NOT, AND: 1 and 2 input gates
//	Tick: output toggles every 10ms once started, state {"on": bool}
//
func testRegistry() *simcir.Registry {
	r := simcir.NewRegistry()
	r.Register("Src", simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
		d.AddOutput("", "")
		return simcir.BehaviorFunc(func(*simcir.Device) {}), nil
	}))
	r.Register("Sink", simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
		d.AddInput("", "")
		return simcir.BehaviorFunc(func(*simcir.Device) {}), nil
	}))
	r.Register("NOT", simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
		d.AddInput("", "")
		d.AddOutput("", "")
		return simcir.BehaviorFunc(func(d *simcir.Device) {
			d.Output(0).SetValue(simcir.BoolValue(!d.Input(0).IsHigh()))
		}), nil
	}))
	r.Register("AND", simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
		var p struct {
			NumInputs int `param:"numInputs" default:"2" min:"2" max:"64"`
		}
		if err := d.DecodeParams(&p); err != nil {
			return nil, err
		}
		for i := 0; i < p.NumInputs; i++ {
			d.AddInput("", "")
		}
		d.AddOutput("", "")
		return simcir.BehaviorFunc(func(d *simcir.Device) {
			v := true
			for _, in := range d.Inputs() {
				v = v && in.IsHigh()
			}
			d.Output(0).SetValue(simcir.BoolValue(v))
		}), nil
	}))
	r.Register("Tick", simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
		d.AddOutput("", "")
		return &ticker{on: d.InitialState().Bool("on", false)}, nil
	}))
	return r
}

type ticker struct {
	on    bool
	timer simcir.Timer
}

func (t *ticker) InputsChanged(*simcir.Device) {}

func (t *ticker) Start(d *simcir.Device) {
	t.timer = d.Every(10*time.Millisecond, func() {
		t.on = !t.on
		d.Output(0).SetValue(simcir.BoolValue(t.on))
	})
}

func (t *ticker) State() simcir.State { return simcir.State{"on": t.on} }

func devs(types ...string) []simcir.DeviceDef {
	var ds []simcir.DeviceDef
	for i, typ := range types {
		ds = append(ds, simcir.DeviceDef{ID: "dev" + strconv.Itoa(i), Type: typ})
	}
	return ds
}

func conn(from, to string) simcir.Connector { return simcir.Connector{From: from, To: to} }

func newCircuit(t *testing.T, ds []simcir.DeviceDef, cs ...simcir.Connector) (*simcir.Circuit, *simtest.Clock) {
	t.Helper()
	clk := simtest.NewClock()
	c, err := simcir.Build(&simcir.Definition{Devices: ds, Connectors: cs},
		simcir.WithRegistry(testRegistry()),
		simcir.WithClock(clk),
		simcir.StrictConnectors(true))
	if err != nil {
		trace(t, err)
	}
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, clk
}

func node(t *testing.T, c *simcir.Circuit, path string) *simcir.Node {
	t.Helper()
	n, err := c.Node(path)
	require.NoError(t, err)
	return n
}

func value(t *testing.T, c *simcir.Circuit, path string) simcir.Value {
	t.Helper()
	v, err := c.Value(path)
	require.NoError(t, err)
	return v
}
