// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simcir

// A Behavior implements the logic of a device type.
//
// InputsChanged is called once per cascade step after one or more inputs of
// the device changed value. It reads the device inputs and sets its outputs:
//
//	type notGate struct{}
//
//	func (notGate) InputsChanged(d *simcir.Device) {
//		d.Output(0).SetValue(simcir.BoolValue(!d.Input(0).IsHigh()))
//	}
//
// A behavior is the only code expected to set the outputs of its device.
// Optional capabilities are expressed by implementing one or more of the
// Stater, Sizer, Starter, Stopper, InputConnector, Relabeler and Layouter
// interfaces.
//
type Behavior interface {
	InputsChanged(d *Device)
}

// BehaviorFunc adapts a function to the Behavior interface.
//
type BehaviorFunc func(d *Device)

// InputsChanged calls f(d).
//
func (f BehaviorFunc) InputsChanged(d *Device) { f(d) }

// A Stater reports the persistent state of a device, saved by
// Circuit.ToDefinition. A nil State is omitted from the definition.
//
type Stater interface {
	State() State
}

// A Sizer overrides the default device size.
//
type Sizer interface {
	Size(d *Device) Size
}

// A Starter is notified when its device enters a live circuit.
//
type Starter interface {
	Start(d *Device)
}

// A Stopper is notified when its device leaves the circuit, before its nodes
// get disconnected.
//
type Stopper interface {
	Stop(d *Device)
}

// An InputConnector is notified when one of its device inputs gets connected,
// before the driver value is forced into the input.
//
type InputConnector interface {
	InputConnected(d *Device, in *Node)
}

// A Relabeler is notified after its device label changed.
//
type Relabeler interface {
	LabelChanged(d *Device, old string)
}

// A Layouter overrides the default node placement. Place returns false for
// nodes that are not exposed on the device body.
//
type Layouter interface {
	Place(d *Device, n *Node) (Point, bool)
}

// A Factory builds the behavior of a new device. Build is given the device
// shell: it adds the device nodes according to the device params and returns
// the behavior.
//
type Factory interface {
	Build(d *Device) (Behavior, error)
}

// FactoryFunc adapts a function to the Factory interface.
//
type FactoryFunc func(d *Device) (Behavior, error)

// Build calls f(d).
//
func (f FactoryFunc) Build(d *Device) (Behavior, error) { return f(d) }

type nopBehavior struct{}

func (nopBehavior) InputsChanged(*Device) {}
