// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package devices

import (
	"time"

	"github.com/db47h/simcir"
)

type dc struct{}

// DC is a direct current source: its output is high while it is part of a
// circuit.
//
//	Outputs: out0
//
var DC = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	d.AddOutput("", "")
	return dc{}, nil
})

func (dc) InputsChanged(*simcir.Device) {}

func (dc) Start(d *simcir.Device) { d.Output(0).SetValue(simcir.High) }

func (dc) Stop(d *simcir.Device) { d.Output(0).SetValue(nil) }

// Osc is an oscillator.
//
//	Outputs: out0
//	Params: freq, frequency in Hz (default 10)
//
type Osc struct {
	period time.Duration
	on     bool
	timer  simcir.Timer
}

// OSC builds oscillators. The output toggles every 500/freq milliseconds.
//
var OSC = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	freq := d.FloatParam("freq", 10)
	if freq <= 0 {
		freq = 10
	}
	ms := int(500 / freq)
	if ms < 1 {
		ms = 1
	}
	d.AddOutput("", "")
	return &Osc{period: time.Duration(ms) * time.Millisecond}, nil
})

// Period returns the time between two output toggles.
//
func (o *Osc) Period() time.Duration { return o.period }

func (o *Osc) InputsChanged(*simcir.Device) {}

func (o *Osc) Start(d *simcir.Device) {
	o.timer = d.Every(o.period, func() {
		d.Output(0).SetValue(simcir.BoolValue(o.on))
		o.on = !o.on
	})
}

func (o *Osc) Stop(*simcir.Device) {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}
