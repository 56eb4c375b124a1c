// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package devices

import (
	"time"

	"github.com/db47h/simcir"
)

// Direction is the orientation of a one unit device, from input to output.
//
type Direction int

// Directions.
//
const (
	WE Direction = iota // west to east
	NS                  // north to south
	EW                  // east to west
	SN                  // south to north
)

// ends returns the input and output positions on a one unit body.
func (dir Direction) ends() (in, out simcir.Point) {
	const c, h = simcir.Unit / 2, simcir.Unit / 2
	in, out = simcir.Point{X: c, Y: c}, simcir.Point{X: c, Y: c}
	switch dir {
	case NS:
		in.Y -= h
		out.Y += h
	case EW:
		in.X += h
		out.X -= h
	case SN:
		in.Y += h
		out.Y -= h
	default:
		in.X -= h
		out.X += h
	}
	return in, out
}

// oriented is the part common to devices that can be rotated.
type oriented struct {
	dir Direction
}

func newOriented(d *simcir.Device) oriented {
	dir := Direction(d.InitialState().Float("direction", 0))
	if dir < WE || dir > SN {
		dir = WE
	}
	return oriented{dir}
}

// Direction returns the device orientation.
//
func (o *oriented) Direction() Direction { return o.dir }

// Rotate turns the device a quarter turn clockwise.
//
func (o *oriented) Rotate() { o.dir = (o.dir + 1) % 4 }

func (o *oriented) State() simcir.State {
	return simcir.State{"direction": int(o.dir)}
}

func (o *oriented) Size(*simcir.Device) simcir.Size {
	return simcir.Size{Width: simcir.Unit, Height: simcir.Unit}
}

func (o *oriented) Place(d *simcir.Device, n *simcir.Node) (simcir.Point, bool) {
	in, out := o.dir.ends()
	if n.Kind() == simcir.Input {
		return in, true
	}
	return out, true
}

// DefaultDelay is the default latency of Delay devices.
//
const DefaultDelay = 50 * time.Millisecond

// A Delay echoes every input change to its output after a fixed latency.
//
//	Inputs: in0
//	Outputs: out0
//	Params: delay in milliseconds (default 50), color
//	State: {"direction": 0..3}
//
type Delay struct {
	oriented
	delay time.Duration
	color string
}

// NewDelay builds delay lines.
//
var NewDelay = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	delay := DefaultDelay
	if ms := d.FloatParam("delay", 0); ms < 0 {
		delay = 0
	} else if ms > 0 {
		delay = time.Duration(ms * float64(time.Millisecond))
	}
	d.AddInput("", "")
	d.AddOutput("", "")
	return &Delay{
		oriented: newOriented(d),
		delay:    delay,
		color:    d.StringParam("color", DefaultColor),
	}, nil
})

// Delay returns the device latency.
//
func (dl *Delay) Delay() time.Duration { return dl.delay }

func (dl *Delay) InputsChanged(d *simcir.Device) {
	v := d.Input(0).Value()
	d.AfterFunc(dl.delay, func() { d.Output(0).SetValue(v) })
}

// A Joint is a connection point: its output mirrors its input.
//
//	Inputs: in0
//	Outputs: out0
//	State: {"direction": 0..3}
//
type Joint struct {
	oriented
}

// NewJoint builds joints.
//
var NewJoint = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	d.AddInput("", "")
	d.AddOutput("", "")
	return &Joint{newOriented(d)}, nil
})

func (j *Joint) InputsChanged(d *simcir.Device) {
	d.Output(0).SetValue(d.Input(0).Value())
}
