// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package devices provides the standard library of simcir devices.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package devices

import (
	"github.com/db47h/simcir"
)

// gate is a logic gate folding its inputs with op, then optionally inverting
// the result. A nil op makes a single input gate (BUF or NOT).
//
type gate struct {
	op     func(a, b int) int
	invert bool
}

func and(a, b int) int { return a & b }
func or(a, b int) int  { return a | b }
func xor(a, b int) int { return a ^ b }

type gateParams struct {
	NumInputs int `param:"numInputs" default:"2" min:"2" max:"64"`
}

func (g *gate) Build(d *simcir.Device) (simcir.Behavior, error) {
	n := 1
	if g.op != nil {
		var p gateParams
		if err := d.DecodeParams(&p); err != nil {
			return nil, err
		}
		n = p.NumInputs
	}
	d.SetHalfPitch(n > 2)
	for i := 0; i < n; i++ {
		d.AddInput("", "")
	}
	d.AddOutput("", "")
	return g, nil
}

func (g *gate) InputsChanged(d *simcir.Device) {
	ins := d.Inputs()
	v := simcir.Bit(ins[0].Value())
	if g.op != nil {
		for _, in := range ins[1:] {
			v = g.op(v, simcir.Bit(in.Value()))
		}
	}
	if g.invert {
		v ^= 1
	}
	d.Output(0).SetValue(simcir.BoolValue(v == 1))
}

// Gate factories.
//
//	Inputs: in0 (BUF, NOT) or in0..inN-1 with N = numInputs, 2 by default
//	Outputs: out0
//
var (
	BUF  simcir.Factory = &gate{}
	NOT  simcir.Factory = &gate{invert: true}
	AND  simcir.Factory = &gate{op: and}
	NAND simcir.Factory = &gate{op: and, invert: true}
	OR   simcir.Factory = &gate{op: or}
	NOR  simcir.Factory = &gate{op: or, invert: true}
	XOR  simcir.Factory = &gate{op: xor}
	XNOR simcir.Factory = &gate{op: xor, invert: true}
)
