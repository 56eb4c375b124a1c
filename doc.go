/*
Package simcir provides an event driven digital logic circuit engine.

A circuit is a set of devices (gates, switches, displays, ...) whose output
nodes drive the input nodes of other devices. Setting the value of an output
propagates to every input it drives; devices whose inputs changed re-evaluate
their logic and set their own outputs, until the circuit settles.

Circuits are built from a JSON (or YAML) definition:

	def, err := simcir.ParseDefinition(data)
	if err != nil {
		// ...
	}
	c, err := simcir.Build(def, simcir.WithRegistry(reg))

where reg is a Registry holding the device types used by the definition (see
package devices for the standard library of devices). A definition can itself
be registered as a device type: its In and Out devices become the ports of the
new composite device.

Signal values are opaque: nil is low, anything else is high. Bus signals carry
a Bus value.

Combinational loops that never settle are detected and reported as a
*LoopError. Devices with time based behavior use the circuit Clock, so that
tests can run them deterministically.

*/
package simcir
