// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package devices

import (
	"math"

	"github.com/db47h/simcir"
)

// Knob angle limits, in degrees.
//
const (
	MinAngle = 45
	MaxAngle = 315
)

// A RotaryEncoder encodes the angle of its knob on its outputs: output i
// carries the input value if bit i of the encoded angle is set.
//
//	Inputs: in0
//	Outputs: out0..outN-1 with N = numOutputs (default 4, min 2, max 16)
//	State: {"angle": degrees}
//
type RotaryEncoder struct {
	angle float64
}

type encoderParams struct {
	NumOutputs int `param:"numOutputs" default:"4" min:"2" max:"16"`
}

// NewRotaryEncoder builds rotary encoders.
//
var NewRotaryEncoder = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	var p encoderParams
	if err := d.DecodeParams(&p); err != nil {
		return nil, err
	}
	d.SetHalfPitch(p.NumOutputs > 4)
	d.AddInput("", "")
	for i := 0; i < p.NumOutputs; i++ {
		d.AddOutput("", "")
	}
	return &RotaryEncoder{angle: clampAngle(d.InitialState().Float("angle", MinAngle))}, nil
})

func clampAngle(a float64) float64 {
	return math.Max(MinAngle, math.Min(a, MaxAngle))
}

// Angle returns the knob angle.
//
func (r *RotaryEncoder) Angle() float64 { return r.angle }

// SetAngle turns the knob. The angle is clamped to [MinAngle, MaxAngle].
//
func (r *RotaryEncoder) SetAngle(d *simcir.Device, angle float64) {
	r.angle = clampAngle(angle)
	r.InputsChanged(d)
}

// Value returns the encoded value for n outputs.
//
func (r *RotaryEncoder) Value(n int) int {
	top := float64(int(1) << uint(n))
	return int(math.Min((r.angle-MinAngle)/(MaxAngle-MinAngle)*top, top-1))
}

func (r *RotaryEncoder) InputsChanged(d *simcir.Device) {
	outs := d.Outputs()
	v := r.Value(len(outs))
	in := d.Input(0).Value()
	for i, out := range outs {
		if v&(1<<uint(i)) != 0 {
			out.SetValue(in)
		} else {
			out.SetValue(nil)
		}
	}
}

func (r *RotaryEncoder) Size(d *simcir.Device) simcir.Size {
	n := float64(len(d.Outputs()))
	if n > 4 {
		n = (n + 1) / 2
	}
	return simcir.Size{Width: simcir.Unit * 4, Height: simcir.Unit * math.Max(2, n)}
}

// State implements simcir.Stater.
//
func (r *RotaryEncoder) State() simcir.State {
	return simcir.State{"angle": r.angle}
}
