package simcir

import "time"

// deviceTimer is a timer owned by a device. It is cancelled when the device is
// disposed and its callback runs as a cascade of its own, under the circuit
// lock.
//
type deviceTimer struct {
	t       Timer
	d       *Device
	stopped bool
}

func (t *deviceTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	if t.d.timers != nil {
		delete(t.d.timers, t)
	}
	return t.t.Stop()
}

func (net *network) fire(t *deviceTimer, f func()) {
	net.mu.Lock()
	defer net.mu.Unlock()
	if t.stopped || t.d.disposed {
		return
	}
	t.stopped = true
	delete(t.d.timers, t)
	net.metrics.timerFired()
	_ = net.batch(func() error {
		f()
		return nil
	})
}

// AfterFunc calls f after duration dur, unless the timer is stopped or the
// device disposed first. f runs under the circuit lock and its value changes
// are propagated when it returns.
//
func (d *Device) AfterFunc(dur time.Duration, f func()) Timer {
	t := &deviceTimer{d: d}
	if d.disposed {
		t.stopped = true
		t.t = stoppedTimer{}
		return t
	}
	if d.timers == nil {
		d.timers = make(map[*deviceTimer]struct{})
	}
	d.timers[t] = struct{}{}
	t.t = d.net.clock.AfterFunc(dur, func() { d.net.fire(t, f) })
	return t
}

type repeatTimer struct {
	cur     Timer
	stopped bool
}

func (t *repeatTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return t.cur.Stop()
}

// Every calls f every period until the returned timer is stopped or the device
// disposed.
//
func (d *Device) Every(period time.Duration, f func()) Timer {
	rt := new(repeatTimer)
	var tick func()
	tick = func() {
		f()
		if !rt.stopped {
			rt.cur = d.AfterFunc(period, tick)
		}
	}
	rt.cur = d.AfterFunc(period, tick)
	return rt
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }
