package judge

import (
	"math"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
)

func ms(v float64) time.Duration {
	return time.Duration(math.Round(v * float64(time.Millisecond)))
}

func table(edges ...float64) []game.Window {
	w := make([]game.Window, len(edges))
	for i, e := range edges {
		w[i] = game.Window{Time: ms(e), Level: i + 1}
	}
	return w
}

// Grading tables, symmetric around the target time. Row i is level i+1.
var (
	TapWindows   = table(16.67, 33.33, 50, 66.67, 83.33, 100, 150)
	TouchWindows = table(150, 158, 167, 183, 200, 217, 250)
	SlideWindows = table(290, 320, 350, 420, 460, 500, 600)
)

// How long results stay on screen, and how long after its end a hold can
// still be let go of.
const (
	ResultShowTime = 300 * time.Millisecond
	HoldTailTime   = 100 * time.Millisecond
)

func edge(windows []game.Window) time.Duration {
	return windows[len(windows)-1].Time
}

// grade looks the offset of a press up in a table. Anything outside the
// table is a miss.
func grade(offset time.Duration, windows []game.Window) game.Judgement {
	j := game.Judgement{Offset: offset, Timing: game.Late}
	if offset < 0 {
		j.Timing = game.Fast
	}
	abs := offset
	if abs < 0 {
		abs = -abs
	}
	for _, w := range windows {
		if abs <= w.Time {
			j.Level = w.Level
			j.Grade = game.GradeOfLevel(w.Level)
			return j
		}
	}
	return j
}

func windowsFor(t game.NoteType) []game.Window {
	switch t {
	case game.Touch, game.TouchHold, game.SpecTouchSlide:
		return TouchWindows
	case game.SlideTrack:
		return SlideWindows
	}
	return TapWindows
}
