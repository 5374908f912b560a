package input

import (
	"sync"
	"testing"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
	"github.com/eiannone/keyboard"
)

func TestQueue(t *testing.T) {
	var q Queue
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(game.Input{Pos: game.RingPosition(uint8(i + 1)), Time: time.Duration(j)})
			}
		}(i)
	}
	wg.Wait()
	if q.Len() != 800 {
		t.Error("queued", q.Len())
	}
	if n := len(q.Drain()); n != 800 {
		t.Error("drained", n)
	}
	if q.Len() != 0 || q.Drain() != nil {
		t.Error("not empty after drain")
	}
}

func TestKeyState(t *testing.T) {
	ms := time.Millisecond
	p := game.RingPosition(2)
	k := newKeyState(100 * ms)

	if in := k.event(p, 0); len(in) != 1 || !in[0].Pressed {
		t.Fatal("first event", in)
	}
	// key repeat keeps it held
	if in := k.event(p, 80*ms); len(in) != 0 {
		t.Error("repeat", in)
	}
	if in := k.expire(150 * ms); len(in) != 0 {
		t.Error("released early", in)
	}
	in := k.expire(200 * ms)
	if len(in) != 1 || in[0].Pressed || in[0].Time != 180*ms {
		t.Error("release", in)
	}

	// a late event releases then presses again
	k.event(p, 300*ms)
	in = k.event(p, 500*ms)
	if len(in) != 2 || in[0].Pressed || in[0].Time != 400*ms || !in[1].Pressed || in[1].Time != 500*ms {
		t.Error("press again", in)
	}
}

func TestKeyboardPosition(t *testing.T) {
	k := KeyboardSource{Keys: "96321478", CenterKey: '5'}
	tests := map[rune]game.Position{
		'9': game.RingPosition(1),
		'8': game.RingPosition(8),
		'2': game.RingPosition(4),
		'5': game.CenterPosition,
	}
	for r, expected := range tests {
		if pos, ok := k.position(r); !ok || pos != expected {
			t.Log("key", string(r), "got", pos, "expected", expected)
			t.Fail()
		}
	}
	if _, ok := k.position('x'); ok {
		t.Error("unmapped key matched")
	}
}

func TestKeyboardRead(t *testing.T) {
	var q Queue
	var controls []Control
	k := &KeyboardSource{
		Keys:      "96321478",
		CenterKey: '5',
		Hold:      DefaultHold,
		Now:       func() time.Duration { return time.Second },
		OnControl: func(c Control) { controls = append(controls, c) },
	}
	keys := make(chan keyboard.KeyEvent)
	tick := make(chan time.Time)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		k.read(&q, keys, tick, done)
		close(finished)
	}()

	keys <- keyboard.KeyEvent{Rune: '9'}
	keys <- keyboard.KeyEvent{Key: keyboard.KeySpace}
	close(done)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("reader kept running after stop")
	}

	got := q.Drain()
	if len(got) != 1 || got[0].Pos != game.RingPosition(1) || !got[0].Pressed || got[0].Time != time.Second {
		t.Error("inputs", got)
	}
	if len(controls) != 1 || controls[0] != Pause {
		t.Error("controls", controls)
	}
}
