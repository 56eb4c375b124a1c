// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package devices

import "github.com/db47h/simcir"

// group is a set of transmitters sharing a label. input is the member whose
// input is driven, if any.
//
type group struct {
	members []*simcir.Device
	input   *simcir.Device
}

func newGroup(members []*simcir.Device) *group {
	g := &group{members: members}
	for _, m := range members {
		if m.Input(0).IsConnected() {
			g.input = m
			break
		}
	}
	return g
}

func (g *group) value() simcir.Value {
	if g == nil || g.input == nil {
		return nil
	}
	return g.input.Input(0).Value()
}

func (g *group) setValue(v simcir.Value) {
	if g == nil {
		return
	}
	for _, m := range g.members {
		m.Output(0).SetValue(v)
	}
}

// setInput elects d as the group input and disconnects the inputs of the
// other members.
func (g *group) setInput(d *simcir.Device) {
	if g == nil {
		return
	}
	g.input = d
	for _, m := range g.members {
		if m != d {
			m.Input(0).Disconnect()
		}
	}
}

// groups tracks the transmitters of one scope. Groups are computed lazily and
// cached until membership or labels change.
//
type groups struct {
	members []*simcir.Device
	cache   map[string]*group
}

type groupsKey struct{}

func scopeGroups(d *simcir.Device) *groups {
	sc := d.Scope()
	if gs, ok := sc.Value(groupsKey{}).(*groups); ok {
		return gs
	}
	gs := new(groups)
	sc.SetValue(groupsKey{}, gs)
	return gs
}

func (gs *groups) register(d *simcir.Device) {
	gs.members = append(gs.members, d)
	gs.reset()
}

func (gs *groups) unregister(d *simcir.Device) {
	for i, m := range gs.members {
		if m == d {
			gs.members = append(gs.members[:i], gs.members[i+1:]...)
			break
		}
	}
	gs.reset()
}

func (gs *groups) reset() { gs.cache = nil }

func (gs *groups) byLabel(label string) *group {
	if gs.cache == nil {
		byLabel := make(map[string][]*simcir.Device)
		var order []string
		for _, m := range gs.members {
			l := m.Label()
			if byLabel[l] == nil {
				order = append(order, l)
			}
			byLabel[l] = append(byLabel[l], m)
		}
		gs.cache = make(map[string]*group, len(order))
		for _, l := range order {
			gs.cache[l] = newGroup(byLabel[l])
		}
	}
	return gs.cache[label]
}

// A Transmitter couples devices without wires: all transmitters of a circuit
// sharing the same label output the value of the one whose input is driven.
// Connecting the input of a transmitter disconnects the inputs of the other
// members of its group.
//
//	Inputs: in0
//	Outputs: out0
//
type Transmitter struct {
	gs *groups
}

// NewTransmitter builds transmitters.
//
var NewTransmitter = simcir.FactoryFunc(func(d *simcir.Device) (simcir.Behavior, error) {
	d.AddInput("", "")
	d.AddOutput("", "")
	t := &Transmitter{gs: scopeGroups(d)}
	t.gs.register(d)
	return t, nil
})

func (t *Transmitter) InputsChanged(d *simcir.Device) {
	t.gs.byLabel(d.Label()).setValue(d.Input(0).Value())
}

// InputConnected implements simcir.InputConnector.
//
func (t *Transmitter) InputConnected(d *simcir.Device, _ *simcir.Node) {
	t.gs.byLabel(d.Label()).setInput(d)
}

func (t *Transmitter) Start(d *simcir.Device) {
	d.Output(0).SetValue(t.gs.byLabel(d.Label()).value())
}

func (t *Transmitter) Stop(d *simcir.Device) {
	t.gs.unregister(d)
	g := t.gs.byLabel(d.Label())
	g.setValue(g.value())
}

// LabelChanged implements simcir.Relabeler: d leaves the group of its old
// label and joins the one of its new label.
//
func (t *Transmitter) LabelChanged(d *simcir.Device, old string) {
	t.gs.reset()
	last := t.gs.byLabel(old)
	last.setValue(last.value())
	g := t.gs.byLabel(d.Label())
	if d.Input(0).IsConnected() {
		g.setInput(d)
	}
	g.setValue(g.value())
}

func (t *Transmitter) Size(*simcir.Device) simcir.Size {
	return simcir.Size{Width: simcir.Unit, Height: simcir.Unit}
}
