package devices

import "github.com/db47h/simcir"

var numSize = simcir.Size{Width: simcir.Unit * 2, Height: simcir.Unit}

// A NumSrc is a push button source: each Toggle flips its output between high
// and low.
//
//	Outputs: out0
//	State: {"on": bool}
//
type NumSrc struct {
	on bool
}

// NewNumSrc builds NumSrc devices.
//
var NewNumSrc = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	d.AddOutput("", "")
	return &NumSrc{on: d.InitialState().Bool("on", false)}, nil
})

func (n *NumSrc) InputsChanged(*simcir.Device) {}

func (n *NumSrc) Start(d *simcir.Device) {
	d.Output(0).SetValue(simcir.BoolValue(n.on))
}

// Toggle flips the output.
//
func (n *NumSrc) Toggle(d *simcir.Device) {
	n.on = !n.on
	d.Output(0).SetValue(simcir.BoolValue(n.on))
}

// On returns the button position.
//
func (n *NumSrc) On() bool { return n.on }

// State implements simcir.Stater.
//
func (n *NumSrc) State() simcir.State { return simcir.State{"on": n.on} }

func (n *NumSrc) Size(*simcir.Device) simcir.Size { return numSize }

// NumDsp displays the state of its input.
//
//	Inputs: in0
//
type NumDsp struct{}

// NewNumDsp builds NumDsp devices.
//
var NewNumDsp = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	d.AddInput("", "")
	return NumDsp{}, nil
})

func (NumDsp) InputsChanged(*simcir.Device) {}

// On returns true if the input is high.
//
func (NumDsp) On(d *simcir.Device) bool { return d.Input(0).IsHigh() }

func (NumDsp) Size(*simcir.Device) simcir.Size { return numSize }
