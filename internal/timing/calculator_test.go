package timing

import (
	"testing"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
)

func sheet() *game.Sheet {
	return &game.Sheet{
		Notes: []*game.Note{
			{Serial: 0, Type: game.Tap, Time: time.Second},
			{Serial: 1, Type: game.Touch, Time: time.Second, BeatIndex: 0},
			{Serial: 2, Type: game.SlideTrack, Time: 2 * time.Second, RemainTime: 500 * time.Millisecond, StopTime: 500 * time.Millisecond},
			{Serial: 3, Type: game.EndMark, Time: 3 * time.Second, BeatIndex: 1},
		},
		Beats: []game.Beat{{NoteIndexes: []int{0, 1, 2}}, {NoteIndexes: []int{3}}},
	}
}

func TestApplyTap(t *testing.T) {
	c := Calculator{Params: Params{SpeedTap: 9, SpeedTouch: 9, Multiplier: 1}}
	out, err := c.Apply(sheet())
	if nil != err {
		t.Fatal(err)
	}
	tap := out.Notes[0]
	for _, n := range out.Notes {
		if n.Serial == 0 {
			tap = n
		}
	}
	if tap.MoveTime != 600*time.Millisecond || tap.EmergeTime >= tap.MoveTime {
		t.Log("tap", tap.EmergeTime, tap.MoveTime, tap.Time)
		t.Fail()
	}
	if c.TapApproach() != 400*time.Millisecond {
		t.Errorf("approach %v", c.TapApproach())
	}
}

func TestApplySlideTrack(t *testing.T) {
	tests := map[float64]time.Duration{
		0:   600 * time.Millisecond,
		0.5: 800 * time.Millisecond,
		1:   time.Second,
	}
	for offset, emerge := range tests {
		c := Calculator{Params: Params{SpeedTap: 9, SpeedTouch: 9, Multiplier: 1, SlideTrackOffset: offset}}
		out, err := c.Apply(sheet())
		if nil != err {
			t.Fatal(err)
		}
		var track *game.Note
		for _, n := range out.Notes {
			if n.Type == game.SlideTrack {
				track = n
			}
		}
		if track.MoveTime != 1500*time.Millisecond || track.GuideStarEmergeTime != time.Second || track.EmergeTime != emerge {
			t.Log("offset", offset)
			t.Log("times ", track.EmergeTime, track.GuideStarEmergeTime, track.MoveTime)
			t.Fail()
		}
	}
}

func TestApplyNoTameSlide(t *testing.T) {
	s := sheet()
	s.Notes[2].IsNoTapNoTameTimeSlide = true
	c := Calculator{Params: DefaultParams()}
	out, err := c.Apply(s)
	if nil != err {
		t.Fatal(err)
	}
	for _, n := range out.Notes {
		if n.Type == game.SlideTrack && n.GuideStarEmergeTime != n.MoveTime {
			t.Errorf("guide star at %v, moves at %v", n.GuideStarEmergeTime, n.MoveTime)
		}
	}
}

func TestApplyOrdersByEmergence(t *testing.T) {
	c := Calculator{Params: DefaultParams()}
	out, err := c.Apply(sheet())
	if nil != err {
		t.Fatal(err)
	}
	for i, n := range out.Notes {
		if n.Index != i {
			t.Errorf("note %d has index %d", i, n.Index)
		}
		if i > 0 && n.EmergeTime < out.Notes[i-1].EmergeTime {
			t.Errorf("note %d emerges before note %d", i, i-1)
		}
	}
	// touches converge over a shorter distance than taps travel
	if out.Notes[0].Type != game.Tap || out.Notes[1].Type != game.Touch {
		t.Errorf("order is %v, %v", out.Notes[0].Type, out.Notes[1].Type)
	}
	for _, i := range out.Beats[1].NoteIndexes {
		if out.Notes[i].Type != game.EndMark {
			t.Errorf("beat 1 lists a %v", out.Notes[i].Type)
		}
	}
}

func TestApplyIsNotCached(t *testing.T) {
	s := sheet()
	slow := Calculator{Params: Params{SpeedTap: 2, SpeedTouch: 2, Multiplier: 1}}
	fast := Calculator{Params: Params{SpeedTap: 9, SpeedTouch: 9, Multiplier: 1}}
	a, err := slow.Apply(s)
	if nil != err {
		t.Fatal(err)
	}
	b, err := fast.Apply(s)
	if nil != err {
		t.Fatal(err)
	}
	if s.Notes[0].EmergeTime != 0 || s.Notes[0].Index != 0 {
		t.Error("input sheet was modified")
	}
	find := func(out *game.Sheet, serial int) *game.Note {
		for _, n := range out.Notes {
			if n.Serial == serial {
				return n
			}
		}
		return nil
	}
	if find(a, 0).EmergeTime >= find(b, 0).EmergeTime {
		t.Log("slow", find(a, 0).EmergeTime, "fast", find(b, 0).EmergeTime)
		t.Fail()
	}
}

func TestApplyEndMark(t *testing.T) {
	c := Calculator{Params: DefaultParams()}
	out, err := c.Apply(sheet())
	if nil != err {
		t.Fatal(err)
	}
	end := out.Notes[len(out.Notes)-1]
	if end.Type != game.EndMark || end.EmergeTime != end.Time || end.MoveTime != end.Time {
		t.Log("end", end)
		t.Fail()
	}
}

func TestValidate(t *testing.T) {
	bad := []Params{
		{SpeedTap: 0, SpeedTouch: 7, Multiplier: 1},
		{SpeedTap: 7, SpeedTouch: -1, Multiplier: 1},
		{SpeedTap: 7, SpeedTouch: 7, Multiplier: 0},
		{SpeedTap: 7, SpeedTouch: 7, Multiplier: 1, SlideTrackOffset: 2},
	}
	for _, p := range bad {
		if nil == p.Validate() {
			t.Errorf("%+v should not validate", p)
		}
	}
	if err := DefaultParams().Validate(); nil != err {
		t.Error(err)
	}
	if _, err := (&Calculator{Params: bad[0]}).Apply(sheet()); nil == err {
		t.Error("apply accepted invalid params")
	}
}
