// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package devices

import (
	"strings"

	"github.com/db47h/simcir"
)

// Default display colors.
//
const (
	DefaultColor   = "#ff0000"
	DefaultBgColor = "#000000"
)

type colors struct {
	Color   string `param:"color" default:"#ff0000"`
	BgColor string `param:"bgColor" default:"#000000"`
}

// An LED lights up when its input is high.
//
//	Inputs: in0
//	Params: color, bgColor
//
type LED struct {
	colors
}

// NewLED builds LEDs.
//
var NewLED = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	l := new(LED)
	if err := d.DecodeParams(&l.colors); err != nil {
		return nil, err
	}
	d.AddInput("", "")
	return l, nil
})

func (l *LED) InputsChanged(*simcir.Device) {}

// Lit returns true if the LED is on.
//
func (l *LED) Lit(d *simcir.Device) bool { return d.Input(0).IsHigh() }

// Colors returns the LED color and background color.
//
func (l *LED) Colors() (color, bgColor string) { return l.Color, l.BgColor }

// A SegmentDisplay is a 7 or 16 segment LED display, with one input per
// segment, or a 7 segment display decoding a 4 bit hexadecimal digit.
//
type SegmentDisplay struct {
	colors
	segments string // segment names, in input order
	hex      bool
}

var hexPatterns = [16]string{
	"abcdef", "bc", "abdeg", "abcdg", "bcfg", "acdfg", "acdefg", "abc",
	"abcdefg", "abcdfg", "abcefg", "cdefg", "adef", "bcdeg", "adefg", "aefg",
}

func newSegments(segments string, hex bool) simcir.Factory {
	return simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
		s := &SegmentDisplay{segments: segments, hex: hex}
		if err := d.DecodeParams(&s.colors); err != nil {
			return nil, err
		}
		n := 4
		if !hex {
			n = len(segments)
			d.SetHalfPitch(true)
		}
		for i := 0; i < n; i++ {
			d.AddInput("", "")
		}
		return s, nil
	})
}

// Segment display factories.
//
//	7seg: inputs a, b, c, d, e, f, g, dot
//	16seg: inputs a to p, dot
//	4bit7seg: inputs bit 0 to bit 3
//
var (
	SevenSeg        = newSegments("abcdefg.", false)
	SixteenSeg      = newSegments("abcdefghijklmnop.", false)
	FourBitSevenSeg = newSegments("abcdefg", true)
)

func (s *SegmentDisplay) InputsChanged(*simcir.Device) {}

func (s *SegmentDisplay) Size(d *simcir.Device) simcir.Size {
	n := float64(len(d.Inputs()))
	if !s.hex {
		n = (n + 1) / 2
	}
	if n < 2 {
		n = 2
	}
	return simcir.Size{Width: simcir.Unit * 4, Height: simcir.Unit * n}
}

// Pattern returns the names of the lit segments, in segment order. A lit dot
// is reported as '.'.
//
func (s *SegmentDisplay) Pattern(d *simcir.Device) string {
	if s.hex {
		v := 0
		for i, in := range d.Inputs() {
			if in.IsHigh() {
				v |= 1 << uint(i)
			}
		}
		return hexPatterns[v]
	}
	var b strings.Builder
	for i, in := range d.Inputs() {
		if in.IsHigh() {
			b.WriteByte(s.segments[i])
		}
	}
	return b.String()
}

// Colors returns the display color and background color.
//
func (s *SegmentDisplay) Colors() (color, bgColor string) { return s.Color, s.BgColor }
