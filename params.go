// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simcir

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

// DecodeParams fills the struct pointed to by v from the device params.
//
// Fields are identified by their `param:"name"` tag. A `default:"value"` tag
// gives the value used when the param is missing, and `min:"value"` and
// `max:"value"` tags clamp numeric fields. Supported field kinds are bool,
// int, float64 and string:
//
//	var p struct {
//		NumInputs int    `param:"numInputs" default:"2" min:"2" max:"64"`
//		Color     string `param:"color" default:"#ff0000"`
//	}
//	if err := d.DecodeParams(&p); err != nil {
//		return nil, err
//	}
//
func (d *Device) DecodeParams(v interface{}) error {
	pv := reflect.ValueOf(v)
	if pv.Kind() != reflect.Ptr || pv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("DecodeParams: unsupported type %T", v)
	}
	e := pv.Elem()
	typ := e.Type()
	n := typ.NumField()
	for i := 0; i < n; i++ {
		f := typ.Field(i)
		name, ok := f.Tag.Lookup("param")
		if !ok || name == "" {
			continue
		}
		fv := e.Field(i)
		raw, ok := d.def.Params[name]
		if !ok {
			def, ok := f.Tag.Lookup("default")
			if !ok {
				continue
			}
			raw = def
		}
		if err := setParam(fv, raw); err != nil {
			return errors.Wrapf(err, "param %q of %s", name, d)
		}
		for _, bound := range []string{"min", "max"} {
			lim, ok := f.Tag.Lookup(bound)
			if !ok {
				continue
			}
			if err := clampParam(fv, lim, bound == "min"); err != nil {
				return errors.Wrapf(err, "%s tag of field %q in %q", bound, f.Name, typ.Name())
			}
		}
	}
	return nil
}

func setParam(fv reflect.Value, raw interface{}) error {
	switch fv.Kind() {
	case reflect.String:
		switch s := raw.(type) {
		case string:
			fv.SetString(s)
		case fmtStringer:
			fv.SetString(s.String())
		default:
			return errors.Errorf("cannot use %v (%T) as string", raw, raw)
		}
	case reflect.Bool:
		switch b := raw.(type) {
		case bool:
			fv.SetBool(b)
		case string:
			v, err := strconv.ParseBool(b)
			if err != nil {
				return errors.WithStack(err)
			}
			fv.SetBool(v)
		default:
			return errors.Errorf("cannot use %v (%T) as bool", raw, raw)
		}
	case reflect.Int, reflect.Int64, reflect.Int32:
		f, ok := toFloat(raw)
		if !ok {
			return errors.Errorf("cannot use %v (%T) as int", raw, raw)
		}
		fv.SetInt(int64(math.Max(math.MinInt32, math.Min(f, math.MaxInt32))))
	case reflect.Float64, reflect.Float32:
		f, ok := toFloat(raw)
		if !ok {
			return errors.Errorf("cannot use %v (%T) as float", raw, raw)
		}
		fv.SetFloat(f)
	default:
		return errors.Errorf("unsupported field kind %q", fv.Kind())
	}
	return nil
}

func clampParam(fv reflect.Value, lim string, lower bool) error {
	m, err := strconv.ParseFloat(lim, 64)
	if err != nil {
		return errors.WithStack(err)
	}
	out := func(v float64) bool {
		if lower {
			return v < m
		}
		return v > m
	}
	switch fv.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32:
		if out(float64(fv.Int())) {
			fv.SetInt(int64(m))
		}
	case reflect.Float64, reflect.Float32:
		if out(fv.Float()) {
			fv.SetFloat(m)
		}
	default:
		return errors.Errorf("bound on non numeric field kind %q", fv.Kind())
	}
	return nil
}

type fmtStringer interface {
	String() string
}

// toFloat converts numeric param values as decoded from JSON or YAML.
// Numeric strings are accepted too.
//
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
