// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simtest

import (
	"sort"
	"sync"
	"time"

	"github.com/db47h/simcir"
)

// Epoch is the initial time of a Clock.
//
var Epoch = time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC)

// Clock is a manual simcir.Clock. Time only moves forward when Advance is
// called.
//
// Timer callbacks lock the circuit they belong to: Advance must not be called
// from within Circuit.Do or a listener.
//
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*timer
}

type timer struct {
	c   *Clock
	at  time.Time
	seq int
	f   func()
}

// NewClock returns a Clock set to Epoch.
//
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

// Now implements simcir.Clock.
//
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc implements simcir.Clock.
//
func (c *Clock) AfterFunc(d time.Duration, f func()) simcir.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d < 0 {
		d = 0
	}
	t := &timer{c: c, at: c.now.Add(d), seq: c.seq, f: f}
	c.seq++
	c.timers = append(c.timers, t)
	return t
}

func (t *timer) Stop() bool {
	c := t.c
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.timers {
		if p == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Pending returns the number of timers waiting to fire.
//
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// next removes and returns the earliest timer due at or before limit.
func (c *Clock) next(limit time.Time) *timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		a, b := c.timers[i], c.timers[j]
		if a.at.Equal(b.at) {
			return a.seq < b.seq
		}
		return a.at.Before(b.at)
	})
	t := c.timers[0]
	if t.at.After(limit) {
		return nil
	}
	c.timers = c.timers[1:]
	if t.at.After(c.now) {
		c.now = t.at
	}
	return t
}

// Advance moves the clock forward by d, firing due timers in order. Timers
// scheduled by callbacks fire too if they are due before the new time.
//
func (c *Clock) Advance(d time.Duration) {
	limit := c.Now().Add(d)
	for t := c.next(limit); t != nil; t = c.next(limit) {
		t.f()
	}
	c.mu.Lock()
	c.now = limit
	c.mu.Unlock()
}
