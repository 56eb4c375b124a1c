// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simcir

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// A Circuit is a live circuit: a set of devices and the connections between
// their nodes.
//
// All Circuit methods are safe for concurrent use. Device behaviors, timer
// callbacks and listeners run with the circuit locked.
//
type Circuit struct {
	net     *network
	id      uuid.UUID
	meta    Definition // workspace attributes, devices and connectors excluded
	devices []*Device  // pane order
	dropped []Connector
	scope   *Scope
	strict  bool
}

// New returns an empty circuit.
//
func New(opts ...Option) *Circuit {
	o := newOptions(opts)
	id := uuid.New()
	return &Circuit{
		net: &network{
			reg:      o.reg,
			clock:    o.clock,
			log:      o.log.WithValues("circuit", id.String()),
			metrics:  o.metrics,
			maxSteps: o.maxSteps,
		},
		id:     id,
		scope:  newScope(),
		strict: o.strict,
	}
}

// Build builds a circuit from its definition.
//
// All devices are created first, then connectors are applied and finally every
// device is started. Unknown device types yield degraded devices. Connectors
// that cannot be resolved are skipped and reported by Dropped, unless the
// StrictConnectors option is set. Duplicate or missing device ids are an
// error.
//
// The returned error may be a *LoopError if the initial propagation did not
// settle. The circuit is usable in that case.
//
func Build(def *Definition, opts ...Option) (*Circuit, error) {
	c := New(opts...)
	c.meta = *def.Clone()
	c.meta.Devices, c.meta.Connectors = nil, nil

	net := c.net
	net.mu.Lock()
	defer net.mu.Unlock()
	err := net.batch(func() error {
		devs, dropped, err := net.buildDevices(def, c.scope, noHandle, c.strict)
		if err != nil {
			return err
		}
		c.devices, c.dropped = devs, dropped
		for _, d := range devs {
			net.start(d)
		}
		return nil
	})
	if err != nil && !IsLoopError(err) {
		return nil, errors.Wrap(err, "build circuit")
	}
	net.log.V(1).Info("circuit built", "devices", len(c.devices), "dropped", len(c.dropped))
	return c, err
}

// InstanceID returns the unique id of this circuit instance.
//
func (c *Circuit) InstanceID() uuid.UUID { return c.id }

// Dropped returns the connectors skipped by Build.
//
func (c *Circuit) Dropped() []Connector {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return append([]Connector(nil), c.dropped...)
}

// Devices returns the devices of the circuit in pane order. Composite internal
// devices are not included.
//
func (c *Circuit) Devices() []*Device {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return append([]*Device(nil), c.devices...)
}

// Device returns the device with the given id, or nil.
//
func (c *Circuit) Device(id string) *Device {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return c.byID()[id]
}

func (c *Circuit) byID() map[string]*Device {
	m := make(map[string]*Device, len(c.devices))
	for _, d := range c.devices {
		m[d.id] = d
	}
	return m
}

func (c *Circuit) owns(d *Device) bool {
	return d != nil && d.net == c.net && d.parent == noHandle && !d.disposed
}

// Node returns the node at the given port path ("dev3.in0").
//
func (c *Circuit) Node(path string) (*Node, error) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return resolvePath(c.byID(), path)
}

// Value returns the value of the node at the given port path.
//
func (c *Circuit) Value(path string) (Value, error) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	n, err := resolvePath(c.byID(), path)
	if err != nil {
		return nil, err
	}
	return n.value, nil
}

// Set sets the value of the node at the given port path and propagates the
// change.
//
func (c *Circuit) Set(path string, v Value) error {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	n, err := resolvePath(c.byID(), path)
	if err != nil {
		return err
	}
	return c.net.batch(func() error {
		c.net.set(n, v, false)
		return nil
	})
}

// Do calls f with the circuit locked, then propagates the value changes f
// made. f must not call Circuit methods.
//
func (c *Circuit) Do(f func()) error {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	return c.net.batch(func() error {
		f()
		return nil
	})
}

// Subscribe registers a listener. The returned function unsubscribes it; it
// must not be called from a listener.
//
func (c *Circuit) Subscribe(l Listener) (unsubscribe func()) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	rm := c.net.ls.add(l)
	return func() {
		c.net.mu.Lock()
		rm()
		c.net.mu.Unlock()
	}
}

// nextID returns the first unused "devN" id.
//
func (c *Circuit) nextID() string {
	ids := c.byID()
	for i := 0; ; i++ {
		id := "dev" + strconv.Itoa(i)
		if ids[id] == nil {
			return id
		}
	}
}

// AddDevice creates a device and starts it. If def.ID is empty or already in
// use, a new id is assigned.
//
func (c *Circuit) AddDevice(def DeviceDef) (*Device, error) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if def.ID == "" || c.byID()[def.ID] != nil {
		def.ID = c.nextID()
	}
	var d *Device
	err := c.net.batch(func() error {
		var err error
		if d, err = c.net.newDevice(def, c.scope, noHandle); err != nil {
			return err
		}
		c.devices = append(c.devices, d)
		c.net.start(d)
		return nil
	})
	if d == nil {
		return nil, err
	}
	return d, err
}

// RemoveDevice disconnects d from its peers and disposes it.
//
func (c *Circuit) RemoveDevice(d *Device) error {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if !c.owns(d) {
		return integrityError("remove", d.String(), "device is not part of the circuit")
	}
	return c.net.batch(func() error {
		c.net.dispose(d)
		for i, cd := range c.devices {
			if cd == d {
				c.devices = append(c.devices[:i], c.devices[i+1:]...)
				break
			}
		}
		return nil
	})
}

// MoveDevice sets the position of d.
//
func (c *Circuit) MoveDevice(d *Device, x, y float64) {
	c.net.mu.Lock()
	d.pos = Point{x, y}
	c.net.mu.Unlock()
}

// Relabel changes the label of d. An empty label resets it to the device type.
//
func (c *Circuit) Relabel(d *Device, label string) error {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if !c.owns(d) {
		return integrityError("relabel", d.String(), "device is not part of the circuit")
	}
	return c.net.batch(func() error {
		old, changed := d.setLabel(label)
		if !changed {
			return nil
		}
		c.net.emit(Event{Kind: EventLabelChanged, Device: d, Label: old})
		if r, ok := d.behavior.(Relabeler); ok {
			r.LabelChanged(d, old)
		}
		return nil
	})
}

// SetParam sets (or deletes if value is nil) a device param. Since params are
// read at construction time, the device is rebuilt: the new device replaces d
// in the circuit, keeps its id, position, label and state, and connections to
// ports that still exist are restored.
//
func (c *Circuit) SetParam(d *Device, key string, value interface{}) (*Device, error) {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if !c.owns(d) {
		return nil, integrityError("setParam", d.String(), "device is not part of the circuit")
	}
	def := c.deviceDef(d, d.id)
	if def.Params == nil {
		def.Params = make(map[string]interface{})
	}
	if value == nil {
		delete(def.Params, key)
	} else {
		def.Params[key] = value
	}

	// connections from d to itself are kept as port indices: d's nodes are
	// gone once it is disposed.
	type loop struct{ out, in int }
	var loops []loop
	drivers := make([]*Node, len(d.inputs))
	for i, in := range d.inputs {
		drv := in.Driver()
		if drv != nil && drv.owner == d.h {
			loops = append(loops, loop{drv.index, i})
			continue
		}
		drivers[i] = drv
	}
	targets := make([][]*Node, len(d.outputs))
	for i, out := range d.outputs {
		for _, t := range out.Targets() {
			if t.owner != d.h {
				targets[i] = append(targets[i], t)
			}
		}
	}

	var nd *Device
	err := c.net.batch(func() error {
		var err error
		if nd, err = c.net.newDevice(def, c.scope, noHandle); err != nil {
			return err
		}
		c.net.dispose(d)
		for i, cd := range c.devices {
			if cd == d {
				c.devices[i] = nd
				break
			}
		}
		for i, drv := range drivers {
			if drv != nil && i < len(nd.inputs) && drv.Device() != nil {
				_ = c.net.connect(drv, nd.inputs[i])
			}
		}
		for i, ts := range targets {
			if i >= len(nd.outputs) {
				break
			}
			for _, t := range ts {
				if t.Device() != nil {
					_ = c.net.connect(nd.outputs[i], t)
				}
			}
		}
		for _, l := range loops {
			if l.out < len(nd.outputs) && l.in < len(nd.inputs) {
				_ = c.net.connect(nd.outputs[l.out], nd.inputs[l.in])
			}
		}
		c.net.start(nd)
		return nil
	})
	if nd == nil {
		return nil, err
	}
	return nd, err
}

// Connect connects output out to input in. If in already has a driver, it is
// disconnected first.
//
func (c *Circuit) Connect(out, in *Node) error {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if !c.owns(out.Device()) || !c.owns(in.Device()) {
		return integrityError("connect", in.Path(), "node is not part of the circuit")
	}
	return c.net.batch(func() error { return c.net.connect(out, in) })
}

// ConnectPath connects two nodes given by their port paths, in any order.
//
func (c *Circuit) ConnectPath(a, b string) error {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	ids := c.byID()
	na, err := resolvePath(ids, a)
	if err != nil {
		return err
	}
	nb, err := resolvePath(ids, b)
	if err != nil {
		return err
	}
	return c.net.batch(func() error { return c.net.connectAny(na, nb) })
}

// Disconnect disconnects input in from its driver, if any.
//
func (c *Circuit) Disconnect(in *Node) error {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if in.kind != Input || !c.owns(in.Device()) {
		return integrityError("disconnect", in.Path(), "not an input of the circuit")
	}
	drv := in.Driver()
	if drv == nil {
		return nil
	}
	return c.net.batch(func() error { return c.net.disconnect(drv, in) })
}

// DisconnectFrom disconnects input in from output out. It fails with a
// *GraphIntegrityError if out is not the driver of in.
//
func (c *Circuit) DisconnectFrom(out, in *Node) error {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	if !c.owns(out.Device()) || !c.owns(in.Device()) {
		return integrityError("disconnect", in.Path(), "node is not part of the circuit")
	}
	return c.net.batch(func() error { return c.net.disconnect(out, in) })
}

// Close removes every device from the circuit, cancelling their timers.
//
func (c *Circuit) Close() {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	_ = c.net.batch(func() error {
		for _, d := range c.devices {
			c.net.dispose(d)
		}
		c.devices = nil
		return nil
	})
	c.net.queue = nil
}

func (c *Circuit) deviceDef(d *Device, id string) DeviceDef {
	def := d.def.Clone()
	def.ID = id
	def.Type = d.typ
	def.X, def.Y = d.pos.X, d.pos.Y
	def.Label = d.label
	def.State = nil
	if st := d.State(); st != nil {
		def.State = State(copyMap(st))
	}
	return def
}

// ToDefinition returns the definition of the circuit. Device ids are
// renumbered "dev0", "dev1"... in pane order and one connector is emitted per
// connected input, from the input path to the output path.
//
func (c *Circuit) ToDefinition() *Definition {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	def := c.meta.Clone()
	if def.Toolbox == nil {
		def.Toolbox = []DeviceDef{}
	}
	ids := make(map[handle]string, len(c.devices))
	for i, d := range c.devices {
		ids[d.h] = "dev" + strconv.Itoa(i)
	}
	def.Devices = make([]DeviceDef, 0, len(c.devices))
	def.Connectors = []Connector{}
	for _, d := range c.devices {
		def.Devices = append(def.Devices, c.deviceDef(d, ids[d.h]))
		for _, in := range d.inputs {
			if !in.driven {
				continue
			}
			oid, ok := ids[in.driver.h]
			if !ok {
				continue
			}
			def.Connectors = append(def.Connectors, Connector{
				From: formatPath(ids[d.h], Input, in.index),
				To:   formatPath(oid, Output, in.driver.i),
			})
		}
	}
	return def
}

// WriteJSON writes the JSON definition of the circuit to w.
//
func (c *Circuit) WriteJSON(w io.Writer) error {
	b, err := json.MarshalIndent(c.ToDefinition(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode definition")
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return errors.WithStack(err)
}

// String returns a short description of the circuit for logging.
//
func (c *Circuit) String() string {
	return "circuit " + c.id.String()
}
