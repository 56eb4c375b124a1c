// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package devices

import (
	"strconv"

	"github.com/db47h/simcir"
)

type busIn struct{}

// BusIn splits a bus signal into its lines. Missing lines are low.
//
//	Inputs: in0 (bus, described as "x<N>")
//	Outputs: out0..outN-1 with N = numOutputs (default 8, min 2, max 64)
//
var BusIn = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	var p struct {
		NumOutputs int `param:"numOutputs" default:"8" min:"2" max:"64"`
	}
	if err := d.DecodeParams(&p); err != nil {
		return nil, err
	}
	d.SetHalfPitch(true)
	d.AddInput("", "x"+strconv.Itoa(p.NumOutputs))
	for i := 0; i < p.NumOutputs; i++ {
		d.AddOutput("", "")
	}
	return busIn{}, nil
})

func (busIn) InputsChanged(d *simcir.Device) {
	v := d.Input(0).Value()
	for i, out := range d.Outputs() {
		out.SetValue(simcir.Line(v, i))
	}
}

type busOut struct{}

// BusOut merges its inputs into a bus signal. The output is low when all
// inputs are low.
//
//	Inputs: in0..inN-1 with N = numInputs (default 8, min 2, max 64)
//	Outputs: out0 (bus, described as "x<N>")
//
var BusOut = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	var p struct {
		NumInputs int `param:"numInputs" default:"8" min:"2" max:"64"`
	}
	if err := d.DecodeParams(&p); err != nil {
		return nil, err
	}
	d.SetHalfPitch(true)
	for i := 0; i < p.NumInputs; i++ {
		d.AddInput("", "")
	}
	d.AddOutput("", "x"+strconv.Itoa(p.NumInputs))
	return busOut{}, nil
})

func (busOut) InputsChanged(d *simcir.Device) {
	ins := d.Inputs()
	bus := make(simcir.Bus, len(ins))
	hot := false
	for i, in := range ins {
		bus[i] = in.Value()
		hot = hot || bus[i] != nil
	}
	if !hot {
		d.Output(0).SetValue(nil)
		return
	}
	d.Output(0).SetValue(bus)
}
