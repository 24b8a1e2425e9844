package operation

import (
	"strings"
	"time"
)

// Counters is a registry of named integer counters. Reading a counter that was never written returns
// zero. The zero value is ready to use.
type Counters struct {
	values map[string]int
	names  []string
}

// Get returns the value of the named counter, registering the name if it is new.
func (c *Counters) Get(name string) int {
	c.register(name)

	return c.values[name]
}

// Increment adds delta to the named counter. Blank names are ignored.
func (c *Counters) Increment(name string, delta int) {
	if strings.TrimSpace(name) == "" {
		return
	}
	c.register(name)
	c.values[name] += delta
}

// Names returns every counter name ever read or written, in the order they were first touched.
func (c *Counters) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)

	return out
}

func (c *Counters) register(name string) {
	if c.values == nil {
		c.values = make(map[string]int)
	}
	if _, ok := c.values[name]; !ok {
		c.values[name] = 0
		c.names = append(c.names, name)
	}
}

// Timers is a registry of named stopwatches.
type Timers struct {
	starts map[string]time.Time
	now    func() time.Time
}

func newTimers(now func() time.Time) Timers {
	return Timers{starts: make(map[string]time.Time), now: now}
}

// Start (re)starts the named timer.
func (t *Timers) Start(name string) {
	if t.starts == nil {
		t.starts = make(map[string]time.Time)
	}
	t.starts[name] = t.clock()
}

// ElapsedMillis returns the milliseconds since the named timer was started, or -1 if it never was.
// Every call reads the clock again.
func (t *Timers) ElapsedMillis(name string) int64 {
	start, ok := t.starts[name]
	if !ok {
		return -1
	}

	return t.clock().Sub(start).Milliseconds()
}

// ElapsedSeconds is ElapsedMillis in whole seconds, or -1 if the timer never started.
func (t *Timers) ElapsedSeconds(name string) int64 {
	millis := t.ElapsedMillis(name)
	if millis < 0 {
		return millis
	}

	return millis / 1000
}

func (t *Timers) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}

	return t.now()
}
