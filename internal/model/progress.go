package model

// ProgressEvent is a transient progress update emitted by an engine.
// Percent, Speed and ETA are preformatted; empty means unknown.
type ProgressEvent struct {
	Status   ProgressStatus
	Percent  string
	Speed    string
	ETA      string
	Filename string
}

// ProgressHandler receives progress events synchronously from an engine
type ProgressHandler interface {
	OnProgress(event ProgressEvent)
}

// ProgressHandlerFunc adapts a function to ProgressHandler
type ProgressHandlerFunc func(ProgressEvent)

// OnProgress calls f(event)
func (f ProgressHandlerFunc) OnProgress(event ProgressEvent) {
	f(event)
}

// DiscardProgress ignores every event
var DiscardProgress ProgressHandler = ProgressHandlerFunc(func(ProgressEvent) {})

// AttemptCounter tracks failed attempts of one request. It only grows.
type AttemptCounter struct {
	max int
	n   int
}

// NewAttemptCounter creates a counter bounded by max attempts
func NewAttemptCounter(max int) *AttemptCounter {
	if max < 1 {
		max = 1
	}
	return &AttemptCounter{max: max}
}

// Inc records one failed attempt and returns the new count
func (c *AttemptCounter) Inc() int {
	if c.n < c.max {
		c.n++
	}
	return c.n
}

// Count returns the number of failed attempts so far
func (c *AttemptCounter) Count() int {
	return c.n
}

// Max returns the attempt bound
func (c *AttemptCounter) Max() int {
	return c.max
}

// Remaining returns how many attempts are still allowed
func (c *AttemptCounter) Remaining() int {
	return c.max - c.n
}

// Exhausted reports whether no attempts remain
func (c *AttemptCounter) Exhausted() bool {
	return c.n >= c.max
}
