package input

import (
	"sync"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
)

// Queue collects inputs from any goroutine until the session drains them.
type Queue struct {
	mu    sync.Mutex
	items []game.Input
}

func (q *Queue) Push(in game.Input) {
	q.mu.Lock()
	q.items = append(q.items, in)
	q.mu.Unlock()
}

// Drain hands over everything queued so far, oldest first.
func (q *Queue) Drain() []game.Input {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// keyState turns a stream of key events without releases into presses
// and releases. A key counts as held while its events keep arriving
// within hold of each other.
type keyState struct {
	hold time.Duration
	last map[game.Position]time.Duration
}

func newKeyState(hold time.Duration) *keyState {
	return &keyState{hold: hold, last: map[game.Position]time.Duration{}}
}

func (k *keyState) event(pos game.Position, t time.Duration) []game.Input {
	prev, down := k.last[pos]
	k.last[pos] = t
	if down && t-prev <= k.hold {
		return nil
	}
	var out []game.Input
	if down {
		out = append(out, game.Input{Pos: pos, Time: prev + k.hold})
	}
	return append(out, game.Input{Pos: pos, Pressed: true, Time: t})
}

// expire releases every key not seen for longer than hold.
func (k *keyState) expire(t time.Duration) []game.Input {
	var out []game.Input
	for pos, prev := range k.last {
		if t-prev > k.hold {
			out = append(out, game.Input{Pos: pos, Time: prev + k.hold})
			delete(k.last, pos)
		}
	}
	return out
}
