// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package devices

import (
	"time"

	"github.com/db47h/simcir"
)

// TimeRanges are the selectable time ranges of a DSO. Samples are kept for the
// longest one.
//
var TimeRanges = []time.Duration{10 * time.Second, 5 * time.Second, 2 * time.Second, time.Second}

// A Sample is a value recorded by a DSO probe.
//
type Sample struct {
	Time  time.Time
	Value simcir.Value
}

// A DSO is a digital storage oscilloscope: it records the value transitions
// of its inputs.
//
//	Inputs: in0..inN-1 with N = numInputs (default 4, min 1, max 64)
//	State: {"playing": bool, "rangeIndex": int}
//
type DSO struct {
	playing    bool
	rangeIndex int
	samples    [][]Sample
}

// NewDSO builds oscilloscopes.
//
var NewDSO = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	var p struct {
		NumInputs int `param:"numInputs" default:"4" min:"1" max:"64"`
	}
	if err := d.DecodeParams(&p); err != nil {
		return nil, err
	}
	for i := 0; i < p.NumInputs; i++ {
		d.AddInput("", "")
	}
	st := d.InitialState()
	o := &DSO{
		playing:    st.Bool("playing", true),
		rangeIndex: int(st.Float("rangeIndex", 0)),
		samples:    make([][]Sample, p.NumInputs),
	}
	if o.rangeIndex < 0 || o.rangeIndex >= len(TimeRanges) {
		o.rangeIndex = 0
	}
	return o, nil
})

func (o *DSO) record(d *simcir.Device, force bool) {
	now := d.Now()
	for i, in := range d.Inputs() {
		ss := o.samples[i]
		v := in.Value()
		if !force && len(ss) > 0 && simcir.Bit(ss[len(ss)-1].Value) == simcir.Bit(v) {
			continue
		}
		ss = append(ss, Sample{now, v})
		for len(ss) > 1 && now.Sub(ss[0].Time) > TimeRanges[0] {
			ss = ss[1:]
		}
		o.samples[i] = ss
	}
}

func (o *DSO) InputsChanged(d *simcir.Device) {
	if o.playing {
		o.record(d, false)
	}
}

func (o *DSO) Start(d *simcir.Device) { o.record(d, true) }

// Samples returns the recorded samples of channel ch, oldest first.
//
func (o *DSO) Samples(ch int) []Sample {
	return append([]Sample(nil), o.samples[ch]...)
}

// Playing returns true if the scope is recording.
//
func (o *DSO) Playing() bool { return o.playing }

// TogglePlaying pauses or resumes recording.
//
func (o *DSO) TogglePlaying(d *simcir.Device) {
	o.playing = !o.playing
	if o.playing {
		o.record(d, true)
	}
}

// TimeRange returns the selected time range.
//
func (o *DSO) TimeRange() time.Duration { return TimeRanges[o.rangeIndex] }

// NextTimeRange selects the next time range.
//
func (o *DSO) NextTimeRange() {
	o.rangeIndex = (o.rangeIndex + 1) % len(TimeRanges)
}

func (o *DSO) Size(d *simcir.Device) simcir.Size {
	return simcir.Size{Width: simcir.Unit * 4, Height: simcir.Unit * float64(len(d.Inputs())+2)}
}

// State implements simcir.Stater.
//
func (o *DSO) State() simcir.State {
	return simcir.State{"playing": o.playing, "rangeIndex": o.rangeIndex}
}
