// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simcir

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A GraphIntegrityError is returned when an operation would break one of the
// circuit graph invariants. The offending mutation is never applied.
//
type GraphIntegrityError struct {
	Op   string // operation that failed
	Path string // port path or device id involved, if any
	Msg  string
}

func (e *GraphIntegrityError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

func integrityError(op, path, msg string) error {
	return errors.WithStack(&GraphIntegrityError{Op: op, Path: path, Msg: msg})
}

// IsIntegrityError returns true if the cause of err is a *GraphIntegrityError.
//
func IsIntegrityError(err error) bool {
	_, ok := errors.Cause(err).(*GraphIntegrityError)
	return ok
}

// A LoopError is returned when a propagation cascade does not settle within the
// configured number of steps. This happens with combinational loops that have
// no stable state, like a NOT gate feeding its own input.
//
type LoopError struct {
	Steps   int
	Devices []string // labels of the devices still pending when the cascade was aborted
}

func (e *LoopError) Error() string {
	return "combinational loop detected: cascade did not settle after " +
		strconv.Itoa(e.Steps) + " steps (pending: " + strings.Join(e.Devices, ", ") + ")"
}

// IsLoopError returns true if the cause of err is a *LoopError.
//
func IsLoopError(err error) bool {
	_, ok := errors.Cause(err).(*LoopError)
	return ok
}
