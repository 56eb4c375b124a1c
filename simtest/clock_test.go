package simtest_test

import (
	"testing"
	"time"

	"github.com/db47h/simcir/simtest"
	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	c := simtest.NewClock()
	var fired []string
	c.AfterFunc(20*time.Millisecond, func() { fired = append(fired, "b") })
	c.AfterFunc(10*time.Millisecond, func() {
		fired = append(fired, "a")
		c.AfterFunc(5*time.Millisecond, func() { fired = append(fired, "a2") })
	})
	c.AfterFunc(20*time.Millisecond, func() { fired = append(fired, "c") })
	stopped := c.AfterFunc(15*time.Millisecond, func() { fired = append(fired, "never") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	c.Advance(9 * time.Millisecond)
	assert.Empty(t, fired)
	assert.Equal(t, simtest.Epoch.Add(9*time.Millisecond), c.Now())

	c.Advance(11 * time.Millisecond)
	assert.Equal(t, []string{"a", "a2", "b", "c"}, fired)
	assert.Equal(t, simtest.Epoch.Add(20*time.Millisecond), c.Now())
	assert.Zero(t, c.Pending())
}

func TestClock_now(t *testing.T) {
	c := simtest.NewClock()
	var at time.Time
	c.AfterFunc(30*time.Millisecond, func() { at = c.Now() })
	c.Advance(time.Second)
	assert.Equal(t, simtest.Epoch.Add(30*time.Millisecond), at)
	assert.Equal(t, simtest.Epoch.Add(time.Second), c.Now())
}
