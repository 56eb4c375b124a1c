// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package simtest provides utilities for testing circuits and devices: a
// manual clock and exhaustive or randomized comparison of device outputs.
//
package simtest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/simcir"
	"github.com/stretchr/testify/require"
)

// maxExhaustive is the largest input count for which all input combinations
// are tried. Wider devices get random combinations.
//
const maxExhaustive = 12

func inputString(names []string, in []bool) string {
	var b strings.Builder
	for i, n := range names {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", n, in[i])
	}
	return b.String()
}

func combination(in []bool, k uint64) {
	for i := range in {
		in[i] = k&(1<<uint(i)) != 0
	}
}

// prime drives every input high so that the first combination, which may
// leave inputs low, triggers an evaluation.
func prime(t testing.TB, c *simcir.Circuit, paths []string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, c.Set(p, simcir.High), "set %s", p)
	}
}

func apply(t testing.TB, c *simcir.Circuit, paths []string, in []bool) {
	t.Helper()
	for i, p := range paths {
		require.NoError(t, c.Set(p, simcir.BoolValue(in[i])), "set %s", p)
	}
}

func read(t testing.TB, c *simcir.Circuit, paths []string) []bool {
	t.Helper()
	out := make([]bool, len(paths))
	for i, p := range paths {
		v, err := c.Value(p)
		require.NoError(t, err, "read %s", p)
		out[i] = simcir.IsHigh(v)
	}
	return out
}

// TruthTable sets the nodes at the ins paths to every combination of values,
// input i being bit i of the combination, and checks that the nodes at the
// outs paths match the result of f.
//
func TruthTable(t testing.TB, c *simcir.Circuit, ins, outs []string, f func(in []bool) []bool) {
	t.Helper()
	require.LessOrEqual(t, len(ins), maxExhaustive, "too many inputs")
	in := make([]bool, len(ins))
	prime(t, c, ins)
	for k := uint64(0); k < 1<<uint(len(ins)); k++ {
		combination(in, k)
		apply(t, c, ins, in)
		require.Equal(t, f(in), read(t, c, outs), "inputs: %s", inputString(ins, in))
	}
}

// Ports returns the paths of the inputs and outputs of device id in c.
//
func Ports(c *simcir.Circuit, id string) (ins, outs []string) {
	d := c.Device(id)
	if d == nil {
		return nil, nil
	}
	for _, n := range d.Inputs() {
		ins = append(ins, n.Path())
	}
	for _, n := range d.Outputs() {
		outs = append(outs, n.Path())
	}
	return ins, outs
}

// CompareDevices builds one device of each type from r and checks that they
// produce the same outputs given the same inputs. Both types must have the same
// number of inputs and outputs. Up to 12 inputs, all combinations are tried;
// wider devices are tested with random values.
//
func CompareDevices(t testing.TB, r *simcir.Registry, typ1, typ2 string) {
	t.Helper()
	c, err := simcir.Build(&simcir.Definition{
		Devices: []simcir.DeviceDef{
			{ID: "dev0", Type: typ1},
			{ID: "dev1", Type: typ2},
		},
	}, simcir.WithRegistry(r), simcir.WithClock(NewClock()))
	require.NoError(t, err)
	defer c.Close()

	in1, out1 := Ports(c, "dev0")
	in2, out2 := Ports(c, "dev1")
	require.Len(t, in2, len(in1), "input count")
	require.Len(t, out2, len(out1), "output count")

	in := make([]bool, len(in1))
	prime(t, c, in1)
	prime(t, c, in2)
	check := func() {
		t.Helper()
		apply(t, c, in1, in)
		apply(t, c, in2, in)
		require.Equal(t, read(t, c, out1), read(t, c, out2),
			"%s vs %s, inputs: %s", typ1, typ2, inputString(in1, in))
	}

	start := time.Now()
	n := 0
	if len(in) <= maxExhaustive {
		for k := uint64(0); k < 1<<uint(len(in)); k++ {
			combination(in, k)
			check()
			n++
		}
	} else {
		seed := time.Now().UnixNano()
		rnd := rand.New(rand.NewSource(seed))
		t.Logf("random seed: %d", seed)
		for n = 0; n < 1<<maxExhaustive; n++ {
			for i := range in {
				in[i] = rnd.Int63()&(1<<62) != 0
			}
			check()
		}
	}
	t.Logf("%s vs %s: %d input combinations in %v", typ1, typ2, n, time.Since(start))
}
