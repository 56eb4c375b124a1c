// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simcir

import "reflect"

// A Value is the signal carried by a node. A nil Value is low (or undriven),
// any other value is high. Values may also carry structured payloads such as
// a Bus.
//
type Value interface{}

// High is the conventional high signal value.
//
var High Value = 1

// A Bus is an ordered sequence of per-line values carried as a single signal.
//
// Buses are compared by identity: two distinct Bus values always compare as
// different, even with identical contents. Devices producing buses must build
// a fresh Bus on every update.
//
type Bus []Value

// IsHigh returns true if v is a high signal.
//
func IsHigh(v Value) bool { return v != nil }

// Bit coerces v to 0 (low) or 1 (high).
//
func Bit(v Value) int {
	if v != nil {
		return 1
	}
	return 0
}

// BoolValue returns High for true and nil for false.
//
func BoolValue(b bool) Value {
	if b {
		return High
	}
	return nil
}

// sameValue reports whether a and b are the same signal. A change is recorded
// whenever it returns false.
//
func sameValue(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ba, aIsBus := a.(Bus)
	bb, bIsBus := b.(Bus)
	if aIsBus || bIsBus {
		if !aIsBus || !bIsBus || len(ba) != len(bb) || cap(ba) != cap(bb) {
			return false
		}
		// identity of the backing array
		return len(ba) > 0 && &ba[0] == &bb[0]
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return equal(a, b)
}

// equal compares two values of the same comparable type. Struct or array
// values holding uncomparable dynamic values make == panic; they compare as
// different.
//
func equal(a, b Value) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// Line returns the value of line i in bus value v. It returns nil if v is not
// a bus or if i is out of range.
//
func Line(v Value, i int) Value {
	b, ok := v.(Bus)
	if !ok || i < 0 || i >= len(b) {
		return nil
	}
	return b[i]
}
