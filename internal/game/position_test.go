package game

import (
	"testing"
)

var positionTests = map[string]Position{
	"1":         RingPosition(1),
	"8":         RingPosition(8),
	"C":         CenterPosition,
	"C1":        CenterPosition,
	"c2":        CenterPosition,
	"A3":        SensorPosition('A', 3),
	"e7":        SensorPosition('E', 7),
	"@(-90,50)": {Kind: Free, Group: '@', X: 270, Y: 50},
	"#(10, -4)": {Kind: Free, Group: '#', X: 10, Y: -4},
}

func TestParsePosition(t *testing.T) {
	for s, expected := range positionTests {
		p, err := ParsePosition(s)
		if nil != err || p != expected {
			t.Log("label   ", s, err)
			t.Log("got     ", p)
			t.Log("expected", expected)
			t.Fail()
		}
	}
	for _, s := range []string{"", "0", "9", "F1", "A9", "C3", "#(1)", "@(x,1)", "12"} {
		if _, err := ParsePosition(s); nil == err {
			t.Log("accepted", s)
			t.Fail()
		}
	}
}

func TestFlip(t *testing.T) {
	positions := []Position{CenterPosition, {Kind: Free, Group: '@', X: 30, Y: 1}, {Kind: Free, Group: '#', X: 3, Y: 4}}
	for i := uint8(1); i <= 8; i++ {
		positions = append(positions, RingPosition(i))
		for _, g := range []byte("ABDE") {
			positions = append(positions, SensorPosition(g, i))
		}
	}
	for _, mode := range []FlipMode{FlipNone, FlipLeftRight, FlipUpDown, FlipRotate} {
		for _, p := range positions {
			twice := p.Flip(mode).Flip(mode)
			if p.Kind == Free && p.Group == '@' {
				// angles come back normalised
				if twice.X-p.X > 1e-9 || p.X-twice.X > 1e-9 || twice.Y != p.Y {
					t.Log(mode, p, twice)
					t.Fail()
				}
				continue
			}
			if twice != p {
				t.Log(mode, p, twice)
				t.Fail()
			}
		}
	}

	flips := map[FlipMode]map[Position]Position{
		FlipLeftRight: {RingPosition(1): RingPosition(8), RingPosition(3): RingPosition(6), SensorPosition('D', 1): SensorPosition('D', 1), SensorPosition('D', 3): SensorPosition('D', 7)},
		FlipUpDown:    {RingPosition(1): RingPosition(4), RingPosition(8): RingPosition(5), SensorPosition('D', 1): SensorPosition('D', 5), SensorPosition('E', 3): SensorPosition('E', 3)},
		FlipRotate:    {RingPosition(1): RingPosition(5), SensorPosition('B', 7): SensorPosition('B', 3)},
	}
	for mode, m := range flips {
		for from, to := range m {
			if got := from.Flip(mode); got != to {
				t.Log(mode, from, "got", got, "expected", to)
				t.Fail()
			}
		}
	}
}

func TestParseFlipMode(t *testing.T) {
	if m, err := ParseFlipMode("LR"); nil != err || m != FlipLeftRight {
		t.Error("lr", m, err)
	}
	if _, err := ParseFlipMode("diagonal"); nil == err {
		t.Error("unknown mode accepted")
	}
}

func TestOffset(t *testing.T) {
	tests := map[int]uint8{1: 4, -3: 8, 8: 3, -11: 8, 0: 3}
	for by, expected := range tests {
		if got := RingPosition(3).Offset(by); got.Index != expected {
			t.Log("offset", by, "got", got.Index, "expected", expected)
			t.Fail()
		}
	}
	if CenterPosition.Offset(2) != CenterPosition {
		t.Error("centre moved")
	}
}

func TestLineSections(t *testing.T) {
	a := func(i uint8) Position { return SensorPosition('A', i) }
	b := func(i uint8) Position { return SensorPosition('B', i) }
	tests := map[string]struct {
		shape           SlideShape
		start, turn, to uint8
		expected        []Position
	}{
		"straight across": {ShapeStraight, 1, 0, 5, []Position{a(1), b(1), CenterPosition, b(5), a(5)}},
		"straight near":   {ShapeStraight, 1, 0, 3, []Position{a(1), b(1), b(3), a(3)}},
		"short arc":       {ShapeShortArc, 1, 0, 3, []Position{a(1), a(2), a(3)}},
		"short arc back":  {ShapeShortArc, 1, 0, 7, []Position{a(1), a(8), a(7)}},
		"arc right":       {ShapeArcRight, 1, 0, 3, []Position{a(1), a(2), a(3)}},
		"arc right low":   {ShapeArcRight, 4, 0, 2, []Position{a(4), a(3), a(2)}},
		"arc full":        {ShapeArcLeft, 1, 0, 1, []Position{a(1), a(8), a(7), a(6), a(5), a(4), a(3), a(2), a(1)}},
		"v":               {ShapeV, 1, 0, 4, []Position{a(1), b(1), CenterPosition, b(4), a(4)}},
		"turn":            {ShapeTurn, 1, 7, 5, []Position{a(1), b(1), b(7), a(7), b(7), b(5), a(5)}},
	}
	for name, tc := range tests {
		got := LineSections(tc.shape, RingPosition(tc.start), RingPosition(tc.turn), RingPosition(tc.to))
		ok := len(got) == len(tc.expected)
		for i := 0; ok && i < len(got); i++ {
			ok = got[i] == tc.expected[i]
		}
		if !ok {
			t.Log(name, "got", got, "expected", tc.expected)
			t.Fail()
		}
	}

	got := LineSections(ShapeStraight, RingPosition(1), Position{}, CenterPosition)
	if len(got) != 2 || got[1] != CenterPosition {
		t.Error("off the ring", got)
	}
}

func TestShapeFlip(t *testing.T) {
	tests := map[FlipMode]map[SlideShape]SlideShape{
		FlipLeftRight: {ShapeArcLeft: ShapeArcRight, ShapeCurveP: ShapeCurveQ, ShapeZigzagS: ShapeZigzagZ, ShapeStraight: ShapeStraight},
		FlipUpDown:    {ShapeArcLeft: ShapeArcLeft, ShapeLoopPP: ShapeLoopQQ},
		FlipRotate:    {ShapeCurveP: ShapeCurveP},
	}
	for mode, m := range tests {
		for from, to := range m {
			if got := from.Flip(mode); got != to {
				t.Log(mode, from, "got", got, "expected", to)
				t.Fail()
			}
		}
	}
}

func TestTrackSections(t *testing.T) {
	track := &Track{SlideLines: []SlideLine{
		{Sections: []Position{RingPosition(1), CenterPosition}},
		{Sections: []Position{RingPosition(5)}},
	}}
	note := &Note{Type: SlideTrack, Time: 3, RemainTime: 2, Track: track}
	got := note.Track.Sections()
	if len(got) != 3 || got[1] != CenterPosition || got[2] != RingPosition(5) {
		t.Error("sections", got)
	}
	if note.End() != note.Time {
		t.Error("slide track ends at", note.End())
	}
}
