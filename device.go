package simcir

import (
	"math"
	"strings"
	"time"
)

// Unit is the grid unit of the device geometry.
//
const Unit = 16

// Size is a device body size in workspace units.
//
type Size struct {
	Width, Height float64
}

// Point is a position on a device body or on the workspace.
//
type Point struct {
	X, Y float64
}

// A Device is a typed unit owning ordered input and output nodes. Its logic is
// provided by a Behavior built by the Factory registered for its type.
//
// Devices are created by a Circuit. Their methods are not safe for concurrent
// use: call them from behaviors, listeners or within Circuit.Do.
//
type Device struct {
	net *network
	h   handle
	id  string

	def   DeviceDef // definition the device was built from
	typ   string
	label string
	pos   Point

	inputs, outputs []*Node
	behavior        Behavior
	degraded        bool
	built           bool

	halfPitch bool
	selected  bool

	queued, started, disposed bool

	timers   map[*deviceTimer]struct{}
	parent   handle
	children []handle
	scope    *Scope
}

// ID returns the device id in its circuit. Composite internal devices keep the
// id of their definition.
//
func (d *Device) ID() string { return d.id }

// Type returns the device type.
//
func (d *Device) Type() string { return d.typ }

// Label returns the device label. It defaults to the device type.
//
func (d *Device) Label() string { return d.label }

// Position returns the device position on its workspace.
//
func (d *Device) Position() Point { return d.pos }

// Def returns a copy of the definition the device was built from.
//
func (d *Device) Def() DeviceDef { return d.def.Clone() }

// Behavior returns the device behavior. Interactive devices expose their
// controls through it, for example:
//
//	c.Do(func() { d.Behavior().(*devices.Switch).Toggle(d) })
//
func (d *Device) Behavior() Behavior { return d.behavior }

// Degraded returns true if the device type was unknown when the device was
// built. A degraded device has no behavior and never changes its outputs.
//
func (d *Device) Degraded() bool { return d.degraded }

// Disposed returns true once the device has been removed from its circuit.
//
func (d *Device) Disposed() bool { return d.disposed }

// Inputs returns the device input nodes. The returned slice must not be
// modified.
//
func (d *Device) Inputs() []*Node { return d.inputs }

// Outputs returns the device output nodes. The returned slice must not be
// modified.
//
func (d *Device) Outputs() []*Node { return d.outputs }

// Input returns input node i. It panics if i is out of range.
//
func (d *Device) Input(i int) *Node { return d.inputs[i] }

// Output returns output node i. It panics if i is out of range.
//
func (d *Device) Output(i int) *Node { return d.outputs[i] }

// AddInput appends a new input node to the device. It must only be called by
// factories while the device is being built.
//
func (d *Device) AddInput(label, description string) *Node {
	return d.addNode(Input, label, description)
}

// AddOutput appends a new output node to the device. It must only be called
// by factories while the device is being built.
//
func (d *Device) AddOutput(label, description string) *Node {
	return d.addNode(Output, label, description)
}

func (d *Device) addNode(k NodeKind, label, description string) *Node {
	if d.built {
		panic("node added to device " + d.id + " after construction")
	}
	n := &Node{
		kind:        k,
		owner:       d.h,
		net:         d.net,
		label:       label,
		description: description,
	}
	if k == Input {
		n.index = len(d.inputs)
		d.inputs = append(d.inputs, n)
	} else {
		n.index = len(d.outputs)
		d.outputs = append(d.outputs, n)
	}
	return n
}

// Param returns the raw value of a device parameter.
//
func (d *Device) Param(name string) (interface{}, bool) {
	v, ok := d.def.Params[name]
	return v, ok
}

// IntParam returns the named parameter as an int, or def if it is missing or
// is not a number.
//
func (d *Device) IntParam(name string, def int) int {
	v, ok := d.def.Params[name]
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	return int(f)
}

// FloatParam returns the named parameter as a float64, or def if it is
// missing or is not a number.
//
func (d *Device) FloatParam(name string, def float64) float64 {
	v, ok := d.def.Params[name]
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	return f
}

// StringParam returns the named parameter as a string, or def if it is
// missing or is not a string.
//
func (d *Device) StringParam(name string, def string) string {
	if s, ok := d.def.Params[name].(string); ok {
		return s
	}
	return def
}

// InitialState returns the state supplied by the device definition, or nil.
// Stateful factories seed their state from it.
//
func (d *Device) InitialState() State { return d.def.State }

// State returns the current persistent state of the device, nil if it has
// none.
//
func (d *Device) State() State {
	if s, ok := d.behavior.(Stater); ok {
		return s.State()
	}
	return nil
}

// SetHalfPitch switches the default node layout to a half unit pitch.
//
func (d *Device) SetHalfPitch(b bool) { d.halfPitch = b }

// Selected returns the transient selection flag.
//
func (d *Device) Selected() bool { return d.selected }

// SetSelected sets the transient selection flag. It has no effect on logic.
//
func (d *Device) SetSelected(b bool) { d.selected = b }

// Size returns the device body size.
//
// The default size is 2 units wide and tall enough to lay out the largest
// node count at the current pitch, with a minimum of 2 units.
//
func (d *Device) Size() Size {
	if s, ok := d.behavior.(Sizer); ok {
		return s.Size(d)
	}
	return d.defaultSize(Unit * 2)
}

func (d *Device) defaultSize(width float64) Size {
	n := float64(len(d.inputs))
	if o := float64(len(d.outputs)); o > n {
		n = o
	}
	if d.halfPitch {
		n = (n + 1) / 2
	}
	return Size{width, Unit * math.Max(2, n)}
}

// Place returns the position of node n relative to the device body. It
// returns false if n is not exposed on the body.
//
// By default, inputs are laid out on the left edge and outputs on the right
// edge, vertically centered at a 1 unit pitch (half a unit in half pitch
// mode).
//
func (d *Device) Place(n *Node) (Point, bool) {
	if l, ok := d.behavior.(Layouter); ok {
		return l.Place(d, n)
	}
	return d.defaultPlace(n), true
}

func (d *Device) defaultPlace(n *Node) Point {
	sz := d.Size()
	pitch := float64(Unit)
	if d.halfPitch {
		pitch /= 2
	}
	ns, x := d.inputs, 0.0
	if n.kind == Output {
		ns, x = d.outputs, sz.Width
	}
	offset := (sz.Height - pitch*float64(len(ns)-1)) / 2
	return Point{x, pitch*float64(n.index) + offset}
}

// Now returns the current time of the circuit clock.
//
func (d *Device) Now() time.Time { return d.net.clock.Now() }

// Scope returns the scope the device was built in. Devices at the top of a
// circuit share one scope; each composite device creates a scope for its
// internal devices.
//
func (d *Device) Scope() *Scope { return d.scope }

// Children returns the internal devices of a composite device.
//
func (d *Device) Children() []*Device {
	var ds []*Device
	for _, h := range d.children {
		if c := d.net.device(h); c != nil {
			ds = append(ds, c)
		}
	}
	return ds
}

// Logger-friendly name.
func (d *Device) String() string {
	if d == nil {
		return "<nil>"
	}
	if d.id == "" {
		return d.typ
	}
	return d.id + "(" + d.typ + ")"
}

func (d *Device) setLabel(label string) (old string, changed bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = d.typ
	}
	old = d.label
	d.label = label
	return old, old != label
}

// A Scope holds values shared by the devices of one circuit level, keyed like
// context values.
//
type Scope struct {
	values map[interface{}]interface{}
}

func newScope() *Scope {
	return &Scope{values: make(map[interface{}]interface{})}
}

// Value returns the value associated with key, or nil.
//
func (s *Scope) Value(key interface{}) interface{} { return s.values[key] }

// SetValue associates v with key.
//
func (s *Scope) SetValue(key, v interface{}) { s.values[key] = v }
