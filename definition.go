// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simcir

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// State is the persistent, type specific state of a device, like the position
// of a toggle switch.
//
type State map[string]interface{}

// Bool returns the named state entry as a bool.
//
func (s State) Bool(key string, def bool) bool {
	if b, ok := s[key].(bool); ok {
		return b
	}
	return def
}

// Float returns the named state entry as a float64.
//
func (s State) Float(key string, def float64) float64 {
	if f, ok := toFloat(s[key]); ok {
		return f
	}
	return def
}

// A DeviceDef describes one device of a definition, or one toolbox entry.
//
// Keys of the JSON object other than id, type, x, y, label and state are
// device params.
//
type DeviceDef struct {
	ID     string                 `yaml:"id,omitempty"`
	Type   string                 `yaml:"type" validate:"required"`
	X      float64                `yaml:"x,omitempty"`
	Y      float64                `yaml:"y,omitempty"`
	Label  string                 `yaml:"label,omitempty"`
	State  State                  `yaml:"state,omitempty"`
	Params map[string]interface{} `yaml:",inline"`
}

var reservedKeys = map[string]bool{"id": true, "type": true, "x": true, "y": true, "label": true, "state": true}

// UnmarshalJSON implements json.Unmarshaler.
//
func (dd *DeviceDef) UnmarshalJSON(b []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return errors.WithStack(err)
	}
	var d DeviceDef
	for k, v := range m {
		var ok bool
		switch k {
		case "id":
			d.ID, ok = v.(string)
		case "type":
			d.Type, ok = v.(string)
		case "label":
			d.Label, ok = v.(string)
		case "x":
			d.X, ok = v.(float64)
		case "y":
			d.Y, ok = v.(float64)
		case "state":
			var sm map[string]interface{}
			if sm, ok = v.(map[string]interface{}); ok {
				d.State = State(sm)
			} else {
				ok = v == nil
			}
		default:
			if d.Params == nil {
				d.Params = make(map[string]interface{})
			}
			d.Params[k], ok = v, true
		}
		if !ok {
			return errors.Errorf("device definition: invalid value %v for %q", v, k)
		}
	}
	*dd = d
	return nil
}

// MarshalJSON implements json.Marshaler. Keys are written in the order type,
// id, x, y, label, params in lexical order, state. Position and id are only
// written for devices that have an id.
//
func (dd DeviceDef) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	put := func(k string, v interface{}) error {
		b, err := json.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, "key %q", k)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}
	if err := put("type", dd.Type); err != nil {
		return nil, err
	}
	if dd.ID != "" {
		_ = put("id", dd.ID)
		_ = put("x", dd.X)
		_ = put("y", dd.Y)
	}
	if dd.Label != "" {
		_ = put("label", dd.Label)
	}
	keys := make([]string, 0, len(dd.Params))
	for k := range dd.Params {
		if !reservedKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := put(k, dd.Params[k]); err != nil {
			return nil, err
		}
	}
	if dd.State != nil {
		if err := put("state", dd.State); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Clone returns a deep copy of dd.
//
func (dd DeviceDef) Clone() DeviceDef {
	c := dd
	if dd.State != nil {
		c.State = State(copyMap(dd.State))
	}
	if dd.Params != nil {
		c.Params = copyMap(dd.Params)
	}
	return c
}

// A Connector connects two port paths. In saved definitions From is the input
// path and To the output path, but both orientations are accepted.
//
type Connector struct {
	From string `json:"from" yaml:"from" validate:"required"`
	To   string `json:"to" yaml:"to" validate:"required"`
}

// Layout is the custom pin layout of a composite device. Nodes maps port labels
// to placement codes: an edge letter (T, B, L or R) followed by the offset
// along that edge in half units.
//
type Layout struct {
	Rows                 int               `json:"rows" yaml:"rows" validate:"gte=0"`
	Cols                 int               `json:"cols" yaml:"cols" validate:"gte=0"`
	HideLabelOnWorkspace bool              `json:"hideLabelOnWorkspace,omitempty" yaml:"hideLabelOnWorkspace,omitempty"`
	Nodes                map[string]string `json:"nodes" yaml:"nodes" validate:"dive,placement"`
}

// A Definition is the interchange form of a circuit. It is also the definition
// of a composite device type, in which case In and Out devices are the
// composite ports.
//
type Definition struct {
	Width       int         `json:"width" yaml:"width,omitempty" validate:"gte=0"`
	Height      int         `json:"height" yaml:"height,omitempty" validate:"gte=0"`
	ShowToolbox bool        `json:"showToolbox" yaml:"showToolbox"`
	Editable    bool        `json:"editable" yaml:"editable"`
	Toolbox     []DeviceDef `json:"toolbox" yaml:"toolbox,omitempty" validate:"dive"`
	Layout      *Layout     `json:"layout,omitempty" yaml:"layout,omitempty"`
	Devices     []DeviceDef `json:"devices" yaml:"devices" validate:"dive"`
	Connectors  []Connector `json:"connectors" yaml:"connectors" validate:"dive"`
}

// ParseDefinition decodes a JSON definition.
//
func ParseDefinition(data []byte) (*Definition, error) {
	def := new(Definition)
	if err := json.Unmarshal(data, def); err != nil {
		return nil, errors.Wrap(err, "parse definition")
	}
	return def, nil
}

// ParseDefinitionYAML decodes a YAML definition. Its structure is the same as
// the JSON form.
//
func ParseDefinitionYAML(data []byte) (*Definition, error) {
	def := new(Definition)
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, errors.Wrap(err, "parse YAML definition")
	}
	for i := range def.Devices {
		normalizeYAML(&def.Devices[i])
	}
	for i := range def.Toolbox {
		normalizeYAML(&def.Toolbox[i])
	}
	return def, nil
}

// normalizeYAML drops reserved keys captured by the inline params map.
func normalizeYAML(dd *DeviceDef) {
	for k := range dd.Params {
		if reservedKeys[k] {
			delete(dd.Params, k)
		}
	}
	if len(dd.Params) == 0 {
		dd.Params = nil
	}
}

// YAML returns the YAML encoding of def.
//
func (def *Definition) YAML() ([]byte, error) {
	b, err := yaml.Marshal(def)
	return b, errors.WithStack(err)
}

// Clone returns a deep copy of def.
//
func (def *Definition) Clone() *Definition {
	c := *def
	c.Toolbox = cloneDefs(def.Toolbox)
	c.Devices = cloneDefs(def.Devices)
	if def.Connectors != nil {
		c.Connectors = append([]Connector(nil), def.Connectors...)
	}
	if def.Layout != nil {
		l := *def.Layout
		if l.Nodes != nil {
			l.Nodes = make(map[string]string, len(def.Layout.Nodes))
			for k, v := range def.Layout.Nodes {
				l.Nodes[k] = v
			}
		}
		c.Layout = &l
	}
	return &c
}

func cloneDefs(ds []DeviceDef) []DeviceDef {
	if ds == nil {
		return nil
	}
	c := make([]DeviceDef, len(ds))
	for i := range ds {
		c[i] = ds[i].Clone()
	}
	return c
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("placement", func(fl validator.FieldLevel) bool {
		_, _, err := parsePlacement(fl.Field().String())
		return err == nil
	})
}

// Validate checks the structure of def: non-negative sizes, device types and
// connector ends present, valid layout placement codes and unique non-empty
// device ids. It does not check that connectors resolve; Build reports those
// that do not.
//
func (def *Definition) Validate() error {
	if err := validate.Struct(def); err != nil {
		return formatValidationError(err)
	}
	return checkIDs(def.Devices)
}

func checkIDs(ds []DeviceDef) error {
	seen := make(map[string]bool, len(ds))
	for i := range ds {
		id := ds[i].ID
		if id == "" {
			return integrityError("validate", "", "device #"+strconv.Itoa(i)+" has no id")
		}
		if seen[id] {
			return integrityError("validate", id, "duplicate device id")
		}
		seen[id] = true
	}
	return nil
}

func formatValidationError(err error) error {
	ves, ok := err.(validator.ValidationErrors)
	if !ok || len(ves) == 0 {
		return errors.WithStack(err)
	}
	var msgs []string
	for _, e := range ves {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+": field is required")
		case "placement":
			msgs = append(msgs, field+": invalid placement code "+strings.TrimSpace(e.Value().(string)))
		default:
			msgs = append(msgs, field+": validation failed ("+e.Tag()+" "+e.Param()+")")
		}
	}
	return errors.New("invalid definition: " + strings.Join(msgs, "; "))
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	c := make(map[string]interface{}, len(m))
	for k, v := range m {
		c[k] = copyValue(v)
	}
	return c
}

func copyValue(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		return copyMap(v)
	case State:
		return State(copyMap(v))
	case []interface{}:
		c := make([]interface{}, len(v))
		for i := range v {
			c[i] = copyValue(v[i])
		}
		return c
	}
	return v
}
