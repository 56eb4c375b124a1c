// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simcir

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// A Registry maps device types to factories.
//
// A registry is populated once at startup, primitive types first, then
// composite types. Registration of an existing type replaces it. A Registry is
// safe for concurrent use.
//
type Registry struct {
	mu      sync.RWMutex
	m       map[string]Factory
	toolbox []string // visible types, in registration order
	log     logr.Logger
}

// NewRegistry returns a registry holding the In and Out port devices.
//
func NewRegistry() *Registry {
	r := &Registry{
		m:   make(map[string]Factory),
		log: logr.Discard(),
	}
	r.Register("In", FactoryFunc(newPort))
	r.Register("Out", FactoryFunc(newPort))
	return r
}

// DefaultRegistry is the registry used by circuits built without the
// WithRegistry option.
//
var DefaultRegistry = NewRegistry()

// SetLogger sets the logger used to report registrations.
//
func (r *Registry) SetLogger(l logr.Logger) {
	r.mu.Lock()
	r.log = l
	r.mu.Unlock()
}

// Register registers a device type.
//
// If f is a *Definition, the type is a composite device built from a copy of
// that definition.
//
func (r *Registry) Register(typ string, f Factory) {
	r.register(typ, f, true)
}

// RegisterHidden registers a device type that is not listed in the default
// toolbox. It is used for deprecated type aliases.
//
func (r *Registry) RegisterHidden(typ string, f Factory) {
	r.register(typ, f, false)
}

// RegisterDefinition validates def and registers it as a composite device
// type.
//
func (r *Registry) RegisterDefinition(typ string, def *Definition) error {
	if err := def.Validate(); err != nil {
		return errors.Wrapf(err, "composite device %q", typ)
	}
	r.Register(typ, def)
	return nil
}

func (r *Registry) register(typ string, f Factory, visible bool) {
	if def, ok := f.(*Definition); ok {
		f = def.Clone()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[typ]; ok {
		r.log.V(1).Info("device type replaced", "type", typ)
	} else if visible {
		r.toolbox = append(r.toolbox, typ)
	}
	r.m[typ] = f
}

// Lookup returns the factory registered for typ.
//
func (r *Registry) Lookup(typ string) (Factory, bool) {
	r.mu.RLock()
	f, ok := r.m[typ]
	r.mu.RUnlock()
	return f, ok
}

// Toolbox returns the default toolbox: one entry per visible type, in
// registration order.
//
func (r *Registry) Toolbox() []DeviceDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tb := make([]DeviceDef, 0, len(r.toolbox))
	for _, typ := range r.toolbox {
		tb = append(tb, DeviceDef{Type: typ})
	}
	return tb
}
