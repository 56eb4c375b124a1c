// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package devices

import (
	"embed"

	"github.com/db47h/simcir"
	"github.com/pkg/errors"
)

//go:embed library/*.json
var library embed.FS

// Composite devices shipped with the library, in registration order. A
// composite must be registered after the types it uses.
//
var composites = []struct {
	typ, file string
}{
	{"HalfAdder", "library/halfadder.json"},
	{"FullAdder", "library/fulladder.json"},
	{"AltFullAdder", "library/altfulladder.json"},
	{"RSLatch", "library/rslatch.json"},
}

// RegisterAll registers the standard device library into r: primitive devices
// first, then the built-in composite devices.
//
func RegisterAll(r *simcir.Registry) error {
	for _, p := range []struct {
		typ string
		f   simcir.Factory
	}{
		{"DC", DC},
		{"LED", NewLED},
		{"PushOff", NewSwitch(PushOff)},
		{"PushOn", NewSwitch(PushOn)},
		{"Toggle", NewSwitch(Toggle)},
		{"BUF", BUF},
		{"NOT", NOT},
		{"AND", AND},
		{"NAND", NAND},
		{"OR", OR},
		{"NOR", NOR},
		{"XOR", XOR},
		{"XNOR", XNOR},
		{"OSC", OSC},
		{"7seg", SevenSeg},
		{"16seg", SixteenSeg},
		{"4bit7seg", FourBitSevenSeg},
		{"RotaryEncoder", NewRotaryEncoder},
		{"BusIn", BusIn},
		{"BusOut", BusOut},
		{"Delay", NewDelay},
		{"Joint", NewJoint},
		{"Transmitter", NewTransmitter},
		{"NumSrc", NewNumSrc},
		{"NumDsp", NewNumDsp},
		{"DSO", NewDSO},
	} {
		r.Register(p.typ, p.f)
	}
	// deprecated names
	r.RegisterHidden("EOR", XOR)
	r.RegisterHidden("ENOR", XNOR)

	for _, c := range composites {
		data, err := library.ReadFile(c.file)
		if err != nil {
			return errors.Wrapf(err, "composite device %q", c.typ)
		}
		def, err := simcir.ParseDefinition(data)
		if err != nil {
			return errors.Wrapf(err, "composite device %q", c.typ)
		}
		if err = r.RegisterDefinition(c.typ, def); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a new registry holding the standard device library.
//
func NewRegistry() (*simcir.Registry, error) {
	r := simcir.NewRegistry()
	if err := RegisterAll(r); err != nil {
		return nil, err
	}
	return r, nil
}
