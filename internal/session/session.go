package session

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
	"git.lost.host/meutraa/maisim/internal/input"
	"git.lost.host/meutraa/maisim/internal/judge"
	"git.lost.host/meutraa/maisim/internal/score"
	"github.com/pkg/errors"
)

// Frame is what a subscriber sees after every tick.
type Frame struct {
	Now    time.Duration
	Sheet  *game.Sheet
	Events []judge.NoteEvent
	Active []judge.ShowingNote
	Record *score.GameRecord
	Paused bool
}

type Subscriber interface {
	Frame(f *Frame)
}

type Options struct {
	Period time.Duration
	Auto   judge.AutoMode
	Offset time.Duration // input latency, taken off every input time
	Clock  Clock         // a paused WallClock at zero when nil
	Logger *log.Logger
}

// Session drives one engine from a clock and an input queue.
type Session struct {
	sheet  *game.Sheet
	engine *judge.Engine
	record *score.GameRecord
	clock  Clock
	queue  *input.Queue
	period time.Duration
	offset time.Duration
	log    *log.Logger
	subs   []Subscriber

	mu       sync.Mutex
	controls []func()

	paused   bool
	seeked   bool
	inputs   []game.Input
	lastTick time.Duration
}

func New(sheet *game.Sheet, opts Options) (*Session, error) {
	if nil == sheet {
		return nil, errors.New("session: no chart to play")
	}
	if opts.Period <= 0 {
		opts.Period = judge.DefaultPeriod
	}
	if nil == opts.Logger {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if nil == opts.Clock {
		opts.Clock = NewWallClock(0)
	}
	record := score.NewGameRecord(sheet)
	engine, err := judge.New(sheet, judge.Options{
		Period:   opts.Period,
		Auto:     opts.Auto,
		Recorder: record,
		Logger:   opts.Logger,
	})
	if nil != err {
		return nil, err
	}
	return &Session{
		sheet:  sheet,
		engine: engine,
		record: record,
		clock:  opts.Clock,
		queue:  &input.Queue{},
		period: opts.Period,
		offset: opts.Offset,
		log:    opts.Logger,
	}, nil
}

func (s *Session) Queue() *input.Queue {
	return s.queue
}

func (s *Session) Record() *score.GameRecord {
	return s.record
}

func (s *Session) Clock() Clock {
	return s.clock
}

func (s *Session) Engine() *judge.Engine {
	return s.engine
}

func (s *Session) Subscribe(sub Subscriber) {
	s.subs = append(s.subs, sub)
}

// Inputs is the log of every input applied so far.
func (s *Session) Inputs() []game.Input {
	return s.inputs
}

// Practised reports whether the run was seeked, such runs are not
// comparable with others.
func (s *Session) Practised() bool {
	return s.seeked
}

func (s *Session) enqueue(f func()) {
	s.mu.Lock()
	s.controls = append(s.controls, f)
	s.mu.Unlock()
}

// Pause, Resume, TogglePause and Seek may be called from any goroutine,
// they take effect on the next tick.
func (s *Session) Pause() {
	s.enqueue(func() {
		s.paused = true
		s.clock.Pause()
	})
}

func (s *Session) Resume() {
	s.enqueue(func() {
		s.paused = false
		s.clock.Resume()
	})
}

func (s *Session) TogglePause() {
	s.enqueue(func() {
		s.paused = !s.paused
		if s.paused {
			s.clock.Pause()
		} else {
			s.clock.Resume()
		}
	})
}

// Seek moves playback. Going back forgets every grade.
func (s *Session) Seek(t time.Duration) {
	s.enqueue(func() { s.seek(t) })
}

// SeekBy moves relative to the current time.
func (s *Session) SeekBy(d time.Duration) {
	s.enqueue(func() { s.seek(s.clock.Now() + d) })
}

func (s *Session) seek(t time.Duration) {
	if t < 0 {
		t = 0
	}
	if err := s.clock.Seek(t); nil != err {
		s.log.Println("unable to seek", err)
		return
	}
	// the clock may clamp to its track
	t = s.clock.Now()
	if t < s.lastTick {
		s.record.Reset()
	}
	s.engine.Seek(t)
	s.lastTick = t
	s.seeked = true
	s.queue.Drain()
}

func (s *Session) runControls() {
	s.mu.Lock()
	controls := s.controls
	s.controls = nil
	s.mu.Unlock()
	for _, f := range controls {
		f()
	}
}

// Tick applies queued controls and inputs, then advances the engine to
// the clock. It reports whether the chart is over.
func (s *Session) Tick() (bool, error) {
	s.runControls()
	inputs := s.queue.Drain()
	if s.paused {
		s.publish(s.lastTick, nil)
		return false, nil
	}

	now := s.clock.Now()
	for _, in := range inputs {
		in.Time -= s.offset
		s.inputs = append(s.inputs, in)
		s.engine.Apply(in)
	}
	events, err := s.engine.Advance(now)
	if nil != err {
		return false, errors.Wrapf(err, "tick at %v", now)
	}
	for _, ev := range events {
		if nil != ev.Fault {
			s.log.Println("note failed", ev.Serial, ev.Fault)
		}
	}
	s.lastTick = now
	s.publish(now, events)
	return s.engine.Done(), nil
}

func (s *Session) publish(now time.Duration, events []judge.NoteEvent) {
	if len(s.subs) == 0 {
		return
	}
	f := &Frame{
		Now:    now,
		Sheet:  s.sheet,
		Events: events,
		Active: s.engine.Active(),
		Record: s.record,
		Paused: s.paused,
	}
	for _, sub := range s.subs {
		sub.Frame(f)
	}
}

// Run ticks at the session period until the chart is over or ctx ends.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	s.clock.Resume()
	defer s.clock.Pause()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		done, err := s.Tick()
		if nil != err {
			return err
		}
		if done {
			return nil
		}
	}
}
