package simcir

// port is the behavior of the In and Out devices: its output mirrors its
// input. Composite devices use them as tap points.
//
type port struct{}

func newPort(d *Device) (Behavior, error) {
	d.AddInput("", "")
	d.AddOutput("", "")
	return port{}, nil
}

func (port) InputsChanged(d *Device) {
	d.Output(0).SetValue(d.Input(0).Value())
}

func (port) Size(*Device) Size { return Size{Unit * 2, Unit * 2} }

// relay decorates the behavior of an Out marker in a composite so that the
// composite output follows the marker input.
//
type relay struct {
	Behavior
	to *Node
}

func (r *relay) InputsChanged(d *Device) {
	r.Behavior.InputsChanged(d)
	r.to.SetValue(d.Input(0).Value())
}
