// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simcir

import (
	"sync"

	"github.com/go-logr/logr"
)

// DefaultMaxSteps is the default number of device evaluations allowed in a
// single propagation cascade.
//
const DefaultMaxSteps = 100000

// network is the device arena shared by a circuit and every composite device
// built in it. All nodes reference their peers through it.
//
type network struct {
	mu sync.Mutex

	devices []*Device // indexed by handle, nil once disposed
	live    int

	queue    []handle
	busy     int // >0 while a cascade or a batched mutation is running
	maxSteps int

	reg      *Registry
	clock    Clock
	log      logr.Logger
	metrics  *Metrics
	ls       listeners
	building []string // composite types under construction
}

func (net *network) device(h handle) *Device {
	if h < 0 || int(h) >= len(net.devices) {
		return nil
	}
	return net.devices[h]
}

func (net *network) node(r portRef, k NodeKind) *Node {
	d := net.device(r.h)
	if d == nil {
		return nil
	}
	ns := d.inputs
	if k == Output {
		ns = d.outputs
	}
	if r.i < 0 || r.i >= len(ns) {
		return nil
	}
	return ns[r.i]
}

func (net *network) emit(e Event) { net.ls.emit(e) }

// set stores v in n. Inputs that change schedule their device; outputs always
// push v to the inputs they drive, each of which decides whether it changed.
//
func (net *network) set(n *Node, v Value, force bool) {
	d := net.device(n.owner)
	if d == nil {
		return
	}
	if force || !sameValue(n.value, v) {
		n.value = v
		net.metrics.valueChanged(n.kind)
		net.emit(Event{Kind: EventValueChanged, Device: d, Node: n})
		if n.kind == Input {
			net.schedule(d)
		}
	}
	if n.kind == Output {
		for _, r := range n.targets {
			if in := net.node(r, Input); in != nil {
				net.set(in, v, false)
			}
		}
	}
}

func (net *network) schedule(d *Device) {
	if d.queued {
		return
	}
	d.queued = true
	net.queue = append(net.queue, d.h)
}

// batch runs f with propagation deferred, then flushes the work list.
//
func (net *network) batch(f func() error) error {
	err := net.deferred(f)
	if ferr := net.flush(); err == nil {
		err = ferr
	}
	return err
}

func (net *network) deferred(f func() error) error {
	net.busy++
	defer func() { net.busy-- }()
	return f()
}

// flush processes the work list to a fixed point. It is a no-op when called
// from within a cascade or a batch.
//
func (net *network) flush() error {
	if net.busy > 0 || len(net.queue) == 0 {
		return nil
	}
	net.busy++
	i := 0
	defer func() {
		net.busy--
		// a panicking behavior leaves the rest of the work list pending
		if i < len(net.queue) {
			net.queue = append(net.queue[:0], net.queue[i+1:]...)
		}
	}()

	steps := 0
	for ; i < len(net.queue); i++ {
		d := net.device(net.queue[i])
		if d == nil {
			continue
		}
		if steps >= net.maxSteps {
			return net.abort(i, steps)
		}
		d.queued = false
		steps++
		net.emit(Event{Kind: EventInputsChanged, Device: d})
		if d.behavior != nil {
			d.behavior.InputsChanged(d)
		}
	}
	net.queue = net.queue[:0]
	net.metrics.cascade(steps, false)
	net.log.V(2).Info("cascade settled", "steps", steps)
	return nil
}

func (net *network) abort(from, steps int) error {
	seen := make(map[handle]bool)
	var pending []string
	for _, h := range net.queue[from:] {
		d := net.device(h)
		if d == nil || seen[h] {
			continue
		}
		seen[h] = true
		d.queued = false
		pending = append(pending, d.Label())
	}
	net.queue = net.queue[:0]
	err := &LoopError{Steps: steps, Devices: pending}
	net.metrics.cascade(steps, true)
	net.log.Error(err, "propagation aborted", "steps", steps, "pending", len(pending))
	net.emit(Event{Kind: EventLoopDetected, Err: err})
	return err
}

// connect links out to in, replacing any previous driver of in, then forces
// the current value of out into in.
//
func (net *network) connect(out, in *Node) error {
	if out.kind != Output || in.kind != Input {
		return integrityError("connect", in.Path(), "connection must go from an output to an input")
	}
	if out.net != net || in.net != net {
		return integrityError("connect", in.Path(), "nodes belong to another circuit")
	}
	od, id := net.device(out.owner), net.device(in.owner)
	if od == nil || id == nil {
		return integrityError("connect", in.Path(), "device has been removed")
	}
	if in.driven {
		if prev := net.node(in.driver, Output); prev != nil {
			if err := net.disconnect(prev, in); err != nil {
				return err
			}
		}
	}
	in.driver, in.driven = out.ref(), true
	out.targets = append(out.targets, in.ref())
	net.emit(Event{Kind: EventConnected, Device: id, Node: in})
	if ic, ok := id.behavior.(InputConnector); ok {
		ic.InputConnected(id, in)
	}
	net.set(in, out.value, true)
	return nil
}

// disconnect unlinks out from in and forces in to nil. It fails if out is not
// the driver of in.
//
func (net *network) disconnect(out, in *Node) error {
	if in.kind != Input || !in.driven || in.driver != out.ref() || out.kind != Output {
		return integrityError("disconnect", in.Path(), "not connected")
	}
	in.driven = false
	in.driver = portRef{}
	r := in.ref()
	for i, t := range out.targets {
		if t == r {
			out.targets = append(out.targets[:i], out.targets[i+1:]...)
			break
		}
	}
	if d := net.device(in.owner); d != nil {
		net.emit(Event{Kind: EventDisconnected, Device: d, Node: in})
	}
	net.set(in, nil, true)
	return nil
}

// connectAny connects two nodes given in any order.
//
func (net *network) connectAny(a, b *Node) error {
	switch {
	case a.kind == Output && b.kind == Input:
		return net.connect(a, b)
	case a.kind == Input && b.kind == Output:
		return net.connect(b, a)
	}
	return integrityError("connect", a.Path(), "cannot connect two nodes of the same kind")
}

func (net *network) start(d *Device) {
	if d == nil || d.started || d.disposed {
		return
	}
	d.started = true
	net.log.V(1).Info("device added", "id", d.id, "type", d.typ)
	net.emit(Event{Kind: EventDeviceAdded, Device: d})
	if s, ok := d.behavior.(Starter); ok {
		s.Start(d)
	}
}

func (net *network) stop(d *Device) {
	if d == nil || !d.started {
		return
	}
	if s, ok := d.behavior.(Stopper); ok {
		s.Stop(d)
	}
	d.started = false
	net.log.V(1).Info("device removed", "id", d.id, "type", d.typ)
	net.emit(Event{Kind: EventDeviceRemoved, Device: d})
}

// dispose tears d down: timers first, then the behavior is stopped, every node
// is disconnected, composite children are disposed and the arena slot is
// cleared.
//
func (net *network) dispose(d *Device) {
	if d == nil || d.disposed {
		return
	}
	for t := range d.timers {
		t.stopped = true
		t.t.Stop()
	}
	d.timers = nil
	net.stop(d)
	for _, in := range d.inputs {
		if in.driven {
			if out := net.node(in.driver, Output); out != nil {
				_ = net.disconnect(out, in)
			}
		}
	}
	for _, out := range d.outputs {
		for len(out.targets) > 0 {
			in := net.node(out.targets[0], Input)
			if in == nil {
				out.targets = out.targets[1:]
				continue
			}
			_ = net.disconnect(out, in)
		}
	}
	for _, h := range d.children {
		net.dispose(net.device(h))
	}
	d.disposed = true
	net.devices[d.h] = nil
	net.live--
	net.metrics.deviceCount(-1)
}
