package simcir

import (
	"sort"
)

// composite is the behavior of a device built from a Definition.
//
type composite struct {
	taps   []*Node // In marker outputs, indexed like the composite inputs
	layout *Layout
}

// Build implements Factory: it builds the definition as the internal circuit
// of composite device d.
//
// The In and Out devices of the definition become the composite ports,
// ordered by ascending x then y. An In marker output becomes a composite
// input and an Out marker input becomes a composite output. Connections into
// In markers and out of Out markers are removed.
//
// A composite device is built from scratch every time:
//
//	halfAdder := &simcir.Definition{
//		Devices: []simcir.DeviceDef{
//			{ID: "dev0", Type: "In", X: 0, Y: 0, Label: "A"},
//			{ID: "dev1", Type: "In", X: 0, Y: 64, Label: "B"},
//			{ID: "dev2", Type: "XOR", X: 64, Y: 0},
//			{ID: "dev3", Type: "AND", X: 64, Y: 64},
//			{ID: "dev4", Type: "Out", X: 128, Y: 0, Label: "S"},
//			{ID: "dev5", Type: "Out", X: 128, Y: 64, Label: "C"},
//		},
//		Connectors: []simcir.Connector{
//			{From: "dev2.in0", To: "dev0.out0"},
//			// ...
//		},
//	}
//	reg.Register("HalfAdder", halfAdder)
//
func (def *Definition) Build(d *Device) (Behavior, error) {
	net := d.net
	for _, t := range net.building {
		if t == d.typ {
			return nil, integrityError("build", d.typ, "composite device contains itself")
		}
	}
	net.building = append(net.building, d.typ)
	defer func() { net.building = net.building[:len(net.building)-1] }()

	devs, dropped, err := net.buildDevices(def, newScope(), d.h, false)
	if err != nil {
		return nil, err
	}
	if len(dropped) > 0 {
		net.log.Info("composite definition has unresolved connectors", "type", d.typ, "dropped", len(dropped))
	}
	for _, c := range devs {
		d.children = append(d.children, c.h)
	}

	var ports []*Device
	for _, c := range devs {
		if c.typ == "In" || c.typ == "Out" {
			ports = append(ports, c)
		}
	}
	sort.SliceStable(ports, func(i, j int) bool {
		a, b := ports[i].pos, ports[j].pos
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})

	c := &composite{layout: def.Layout}
	for _, p := range ports {
		switch p.typ {
		case "In":
			tap := p.outputs[0]
			desc := ""
			if ts := tap.Targets(); len(ts) > 0 {
				desc = ts[0].description
			}
			d.AddInput(p.label, desc)
			in := p.inputs[0]
			if drv := in.Driver(); drv != nil {
				_ = net.disconnect(drv, in)
			}
			c.taps = append(c.taps, tap)
		case "Out":
			tap := p.inputs[0]
			desc := ""
			if drv := tap.Driver(); drv != nil {
				desc = drv.description
			}
			ext := d.AddOutput(p.label, desc)
			out := p.outputs[0]
			for _, in := range out.Targets() {
				_ = net.disconnect(out, in)
			}
			p.behavior = &relay{Behavior: p.behavior, to: ext}
		}
	}
	return c, nil
}

func (c *composite) InputsChanged(d *Device) {
	for i, t := range c.taps {
		t.SetValue(d.inputs[i].value)
	}
}

func (c *composite) Start(d *Device) {
	for _, ch := range d.Children() {
		d.net.start(ch)
	}
}

func (c *composite) Stop(d *Device) {
	for _, ch := range d.Children() {
		d.net.stop(ch)
	}
}

func (c *composite) rowsCols() (rows, cols int) {
	even := func(n int) int {
		if n < 2 {
			return 2
		}
		return (n + 1) / 2 * 2
	}
	return even(c.layout.Rows), even(c.layout.Cols)
}

func (c *composite) Size(d *Device) Size {
	if c.layout == nil {
		return d.defaultSize(Unit * 4)
	}
	rows, cols := c.rowsCols()
	return Size{float64(cols * Unit), float64(rows * Unit)}
}

// Place implements Layouter. Without a layout, nodes use the default pitch
// layout.
//
func (c *composite) Place(d *Device, n *Node) (Point, bool) {
	if c.layout == nil {
		return d.defaultPlace(n), true
	}
	code, ok := c.layout.Nodes[n.label]
	if !ok {
		return Point{}, false
	}
	edge, off, err := parsePlacement(code)
	if err != nil {
		return Point{}, false
	}
	sz := c.Size(d)
	pos := float64(off) * Unit / 2
	switch edge {
	case 'T':
		return Point{pos, 0}, true
	case 'B':
		return Point{pos, sz.Height}, true
	case 'L':
		return Point{0, pos}, true
	default:
		return Point{sz.Width, pos}, true
	}
}

// HideLabel reports whether the composite label should be hidden on the
// workspace.
//
func (c *composite) HideLabel() bool {
	return c.layout != nil && c.layout.HideLabelOnWorkspace
}
