package simcir

import (
	"strings"

	"github.com/pkg/errors"
)

// newDevice creates a device from its definition and builds its behavior. The
// device is not started.
//
func (net *network) newDevice(def DeviceDef, sc *Scope, parent handle) (*Device, error) {
	d := &Device{
		net:    net,
		h:      handle(len(net.devices)),
		id:     def.ID,
		def:    def.Clone(),
		typ:    def.Type,
		pos:    Point{def.X, def.Y},
		parent: parent,
		scope:  sc,
	}
	d.setLabel(def.Label)
	net.devices = append(net.devices, d)
	net.live++
	net.metrics.deviceCount(1)

	f, ok := net.reg.Lookup(def.Type)
	if !ok {
		net.log.Info("unknown device type, device will do nothing", "id", def.ID, "type", def.Type)
		d.degraded = true
		d.behavior = nopBehavior{}
		d.built = true
		return d, nil
	}
	b, err := f.Build(d)
	if err != nil {
		net.dispose(d)
		return nil, errors.Wrapf(err, "build device %s", d)
	}
	d.behavior = b
	d.built = true
	return d, nil
}

// buildDevices creates the devices of def in one scope and applies its
// connectors. Connectors that cannot be resolved are returned unless strict is
// set, in which case they fail the build. On error, every device created so
// far is disposed.
//
func (net *network) buildDevices(def *Definition, sc *Scope, parent handle, strict bool) (devs []*Device, dropped []Connector, err error) {
	if err := checkIDs(def.Devices); err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			for _, d := range devs {
				net.dispose(d)
			}
			devs, dropped = nil, nil
		}
	}()
	byID := make(map[string]*Device, len(def.Devices))
	for _, dd := range def.Devices {
		d, err := net.newDevice(dd, sc, parent)
		if err != nil {
			return devs, nil, err
		}
		devs = append(devs, d)
		byID[dd.ID] = d
	}
	for _, c := range def.Connectors {
		cerr := net.applyConnector(byID, c)
		if cerr == nil {
			continue
		}
		if strict {
			return devs, nil, cerr
		}
		net.log.Info("connector dropped", "from", c.From, "to", c.To, "reason", errors.Cause(cerr).Error())
		dropped = append(dropped, c)
	}
	net.metrics.dropped(len(dropped))
	return devs, dropped, nil
}

func (net *network) applyConnector(byID map[string]*Device, c Connector) error {
	a, err := resolvePath(byID, c.From)
	if err != nil {
		return err
	}
	b, err := resolvePath(byID, c.To)
	if err != nil {
		return err
	}
	return net.connectAny(a, b)
}

func resolvePath(byID map[string]*Device, path string) (*Node, error) {
	p, err := parsePath(strings.TrimSpace(path))
	if err != nil {
		return nil, integrityError("resolve", path, err.Error())
	}
	d := byID[p.id]
	if d == nil {
		return nil, integrityError("resolve", path, "no such device")
	}
	ns := d.inputs
	if p.kind == Output {
		ns = d.outputs
	}
	if p.index >= len(ns) {
		return nil, integrityError("resolve", path, "no such port")
	}
	return ns[p.index], nil
}
