package session

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/pkg/errors"
)

// Clock is the playback time the judgement follows. Clocks start paused.
type Clock interface {
	Now() time.Duration
	Pause()
	Resume()
	Seek(t time.Duration) error
}

// WallClock follows the monotonic system clock.
type WallClock struct {
	mu      sync.Mutex
	base    time.Duration
	started time.Time
	running bool
	now     func() time.Time
}

func NewWallClock(at time.Duration) *WallClock {
	return &WallClock{base: at, now: time.Now}
}

func (c *WallClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return c.base
	}
	return c.base + c.now().Sub(c.started)
}

func (c *WallClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.base += c.now().Sub(c.started)
		c.running = false
	}
}

func (c *WallClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		c.started = c.now()
		c.running = true
	}
}

func (c *WallClock) Seek(t time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = t
	c.started = c.now()
	return nil
}

// StreamClock reads the time from the position of an audio stream. The
// stream has to be consumed by someone else, usually the speaker, and
// lock guards it against that consumer.
type StreamClock struct {
	stream beep.StreamSeeker
	ctrl   *beep.Ctrl
	rate   beep.SampleRate
	lock   sync.Locker
}

// NewStreamClock pauses ctrl, which must wrap stream.
func NewStreamClock(stream beep.StreamSeeker, ctrl *beep.Ctrl, rate beep.SampleRate, lock sync.Locker) *StreamClock {
	if nil == lock {
		lock = &sync.Mutex{}
	}
	lock.Lock()
	ctrl.Paused = true
	lock.Unlock()
	return &StreamClock{stream: stream, ctrl: ctrl, rate: rate, lock: lock}
}

func (c *StreamClock) Now() time.Duration {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.rate.D(c.stream.Position())
}

func (c *StreamClock) Pause() {
	c.lock.Lock()
	c.ctrl.Paused = true
	c.lock.Unlock()
}

func (c *StreamClock) Resume() {
	c.lock.Lock()
	c.ctrl.Paused = false
	c.lock.Unlock()
}

// Seek clamps to the stream.
func (c *StreamClock) Seek(t time.Duration) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	n := c.rate.N(t)
	if n < 0 {
		n = 0
	}
	if l := c.stream.Len(); n > l {
		n = l
	}
	return errors.Wrap(c.stream.Seek(n), "unable to seek track")
}
