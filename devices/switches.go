package devices

import "github.com/db47h/simcir"

// SwitchKind selects the behavior of a Switch.
//
type SwitchKind int

// Switch kinds.
//
const (
	PushOn SwitchKind = iota
	PushOff
	Toggle
)

// A Switch passes its input to its output while it is on.
//
//	Inputs: in0
//	Outputs: out0
//	State: {"on": bool} (Toggle only)
//
type Switch struct {
	kind SwitchKind
	on   bool
}

// NewSwitch returns a factory for switches of the given kind. PushOff
// switches are on until pressed, PushOn switches are off until pressed and
// Toggle switches keep their position.
//
func NewSwitch(kind SwitchKind) simcir.Factory {
	return simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
		d.AddInput("", "")
		d.AddOutput("", "")
		s := &Switch{kind: kind, on: kind == PushOff}
		if kind == Toggle {
			s.on = d.InitialState().Bool("on", false)
		}
		return s, nil
	})
}

// On returns the switch position.
//
func (s *Switch) On() bool { return s.on }

func (s *Switch) InputsChanged(d *simcir.Device) {
	if s.on {
		d.Output(0).SetValue(d.Input(0).Value())
	}
}

func (s *Switch) update(d *simcir.Device) {
	if s.on {
		d.Output(0).SetValue(d.Input(0).Value())
	} else {
		d.Output(0).SetValue(nil)
	}
}

// Press presses the switch button. Toggle switches change position.
//
func (s *Switch) Press(d *simcir.Device) {
	switch s.kind {
	case PushOn:
		s.on = true
	case PushOff:
		s.on = false
	case Toggle:
		s.on = !s.on
	}
	s.update(d)
}

// Release releases the switch button. Push switches return to their rest
// position.
//
func (s *Switch) Release(d *simcir.Device) {
	switch s.kind {
	case PushOn:
		s.on = false
	case PushOff:
		s.on = true
	}
	s.update(d)
}

// Toggle is a Press followed by a Release.
//
func (s *Switch) Toggle(d *simcir.Device) {
	s.Press(d)
	s.Release(d)
}

// State implements simcir.Stater.
//
func (s *Switch) State() simcir.State {
	if s.kind != Toggle {
		return nil
	}
	return simcir.State{"on": s.on}
}
