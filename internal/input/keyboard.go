package input

import (
	"log"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
	"github.com/eiannone/keyboard"
	"github.com/pkg/errors"
)

// DefaultHold outlasts the usual key repeat delay.
const DefaultHold = 250 * time.Millisecond

type Control uint8

const (
	Quit Control = iota
	Pause
	Back
	Forward
)

// KeyboardSource reads the terminal keyboard. Keys[i] presses button
// i+1, CenterKey the centre sensor.
type KeyboardSource struct {
	Keys      string
	CenterKey rune
	Hold      time.Duration // how long a key stays down after its last event

	// Now stamps every event with playback time.
	Now       func() time.Duration
	OnControl func(Control)

	done chan struct{}
}

func (k *KeyboardSource) position(r rune) (game.Position, bool) {
	if r == k.CenterKey && r != 0 {
		return game.CenterPosition, true
	}
	for i, c := range []rune(k.Keys) {
		if c == r && i < 8 {
			return game.RingPosition(uint8(i + 1)), true
		}
	}
	return game.Position{}, false
}

func (k *KeyboardSource) control(key keyboard.Key) (Control, bool) {
	switch {
	case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC:
		return Quit, true
	case key == keyboard.KeySpace:
		return Pause, true
	case key == keyboard.KeyArrowLeft:
		return Back, true
	case key == keyboard.KeyArrowRight:
		return Forward, true
	}
	return 0, false
}

// Start opens the keyboard and feeds q until Stop.
func (k *KeyboardSource) Start(q *Queue) error {
	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return errors.Wrap(err, "unable to open keyboard")
	}
	if k.Hold <= 0 {
		k.Hold = DefaultHold
	}
	done := make(chan struct{})
	k.done = done
	ticker := time.NewTicker(k.Hold / 2)
	go func() {
		defer ticker.Stop()
		k.read(q, keys, ticker.C, done)
	}()
	return nil
}

// read feeds q from keys until done is closed or keys runs dry.
func (k *KeyboardSource) read(q *Queue, keys <-chan keyboard.KeyEvent, tick <-chan time.Time, done <-chan struct{}) {
	state := newKeyState(k.Hold)
	for {
		select {
		case <-done:
			return
		case <-tick:
			for _, in := range state.expire(k.Now()) {
				q.Push(in)
			}
		case ev, ok := <-keys:
			if !ok {
				return
			}
			if nil != ev.Err {
				log.Println("unable to read keyboard input", ev.Err)
				continue
			}
			if c, ok := k.control(ev.Key); ok {
				if nil != k.OnControl {
					k.OnControl(c)
				}
				continue
			}
			if pos, ok := k.position(ev.Rune); ok {
				for _, in := range state.event(pos, k.Now()) {
					q.Push(in)
				}
			}
		}
	}
}

func (k *KeyboardSource) Stop() error {
	if nil != k.done {
		close(k.done)
		k.done = nil
	}
	return keyboard.Close()
}
