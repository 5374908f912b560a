package score

import (
	"testing"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
)

func TestCompactInputs(t *testing.T) {
	a1 := game.SensorPosition('A', 1)
	tests := map[string]struct {
		in       []game.Input
		expected []InputsCompact
	}{
		"empty": {nil, []InputsCompact{}},
		"two positions": {
			[]game.Input{
				{Pos: game.RingPosition(1), Pressed: true, Time: 100},
				{Pos: a1, Pressed: true, Time: 150},
				{Pos: game.RingPosition(1), Time: 200},
			},
			[]InputsCompact{
				{Pos: "1", Presses: []time.Duration{100}, Releases: []time.Duration{200}},
				{Pos: "A1", Presses: []time.Duration{150}},
			},
		},
		"order kept": {
			[]game.Input{{Pos: game.CenterPosition, Pressed: true, Time: 2}, {Pos: game.CenterPosition, Pressed: true, Time: 1}},
			[]InputsCompact{{Pos: "C", Presses: []time.Duration{2, 1}}},
		},
	}

	equal := func(p, q []time.Duration) bool {
		if len(p) != len(q) {
			return false
		}
		for i := range p {
			if p[i] != q[i] {
				return false
			}
		}
		return true
	}

	for name, tc := range tests {
		out := compactInputs(tc.in)
		ok := len(out) == len(tc.expected)
		for i := 0; ok && i < len(out); i++ {
			ok = out[i].Pos == tc.expected[i].Pos &&
				equal(out[i].Presses, tc.expected[i].Presses) &&
				equal(out[i].Releases, tc.expected[i].Releases)
		}
		if !ok {
			t.Log(name)
			t.Log("out     ", out)
			t.Log("expected", tc.expected)
			t.Fail()
		}
	}
}

func TestUncompactInputs(t *testing.T) {
	in := []game.Input{
		{Pos: game.RingPosition(3), Pressed: true, Time: 100},
		{Pos: game.SensorPosition('B', 2), Pressed: true, Time: 120},
		{Pos: game.RingPosition(3), Time: 300},
		{Pos: game.RingPosition(3), Pressed: true, Time: 300},
		{Pos: game.SensorPosition('B', 2), Time: 400},
	}
	out, err := uncompactInputs(compactInputs(in))
	if nil != err {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatal("out", out)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Log("index   ", i)
			t.Log("out     ", out[i])
			t.Log("expected", in[i])
			t.Fail()
		}
	}

	if _, err := uncompactInputs([]InputsCompact{{Pos: "Z9"}}); nil == err {
		t.Error("bad position accepted")
	}
}
