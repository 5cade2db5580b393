// Package metrics records counters and stage timings for a single run.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Metric names recorded by the review engine.
const (
	MetricCommandsRun      = "gitcritic_commands_run_total"
	MetricCommandFailures  = "gitcritic_command_failures_total"
	MetricProviderRequests = "gitcritic_provider_requests_total"
	MetricProviderErrors   = "gitcritic_provider_errors_total"
	MetricDiffBytes        = "gitcritic_diff_bytes"
	MetricStageDuration    = "gitcritic_stage"
)

// Collector collects and manages metrics.
type Collector struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	timers   map[string]*Timer
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		counters: make(map[string]*Counter),
		timers:   make(map[string]*Timer),
	}
}

// Counter is a monotonically increasing counter.
type Counter struct {
	value int64
	mu    sync.Mutex
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	c.Add(1)
}

// Add adds n to the counter.
func (c *Counter) Add(n int64) {
	c.mu.Lock()
	c.value += n
	c.mu.Unlock()
}

// Value returns the current counter value.
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Timer accumulates observed durations.
type Timer struct {
	mu    sync.Mutex
	count int
	total time.Duration
	last  time.Duration
}

// Start starts a new timer context.
func (t *Timer) Start() *TimerContext {
	return &TimerContext{timer: t, start: time.Now()}
}

// Observe records d.
func (t *Timer) Observe(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.total += d
	t.last = d
}

// Stats returns a snapshot of the timer.
func (t *Timer) Stats() TimerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TimerStats{Count: t.count, Total: t.total, Last: t.last}
}

// TimerStats is a point-in-time view of a Timer.
type TimerStats struct {
	Count int           `json:"count"`
	Total time.Duration `json:"total_ns"`
	Last  time.Duration `json:"last_ns"`
}

// TimerContext represents an active timer.
type TimerContext struct {
	timer *Timer
	start time.Time
}

// Stop stops the timer and records the duration.
func (tc *TimerContext) Stop() time.Duration {
	d := time.Since(tc.start)
	tc.timer.Observe(d)
	return d
}

// Counter returns or creates a counter.
func (c *Collector) Counter(name string) *Counter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, ok := c.counters[name]; ok {
		return counter
	}

	counter := &Counter{}
	c.counters[name] = counter
	return counter
}

// Timer returns or creates a timer.
func (c *Collector) Timer(name string) *Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.timers[name]; ok {
		return timer
	}

	timer := &Timer{}
	c.timers[name] = timer
	return timer
}

// StartTimer is shorthand for c.Timer(name).Start().
func (c *Collector) StartTimer(name string) *TimerContext {
	return c.Timer(name).Start()
}

// Summary renders counters and timers on one line, sorted by name, for debug
// logging at the end of a run.
func (c *Collector) Summary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	parts := make([]string, 0, len(c.counters)+len(c.timers))
	for name, counter := range c.counters {
		parts = append(parts, fmt.Sprintf("%s=%d", name, counter.Value()))
	}
	for name, timer := range c.timers {
		parts = append(parts, fmt.Sprintf("%s=%s", name, timer.Stats().Total.Round(time.Millisecond)))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
