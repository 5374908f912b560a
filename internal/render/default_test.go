package render

import (
	"strings"
	"testing"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
	"git.lost.host/meutraa/maisim/internal/judge"
	"git.lost.host/meutraa/maisim/internal/score"
	"git.lost.host/meutraa/maisim/internal/session"
	"git.lost.host/meutraa/maisim/internal/theme"
)

func TestPlace(t *testing.T) {
	l := layout{cx: 40, cy: 12, radius: 10}
	type at struct{ row, col uint16 }
	tests := map[string]struct {
		pos      game.Position
		progress float64
		expected at
	}{
		"centre":       {game.CenterPosition, 1, at{12, 40}},
		"ring start":   {game.RingPosition(1), 0, at{12, 40}},
		"d1 top":       {game.SensorPosition('D', 1), 1, at{3, 40}},
		"d5 bottom":    {game.SensorPosition('D', 5), 1, at{21, 40}},
		"d3 right":     {game.SensorPosition('D', 3), 1, at{12, 58}},
		"free top":     {game.Position{Kind: game.Free, Group: '@', X: 0, Y: freeRadius}, 1, at{2, 40}},
		"free left":    {game.Position{Kind: game.Free, Group: '@', X: 270, Y: freeRadius / 2}, 1, at{12, 30}},
		"free centred": {game.Position{Kind: game.Free, Group: '#'}, 1, at{12, 40}},
	}
	for name, tc := range tests {
		row, col := l.place(tc.pos, tc.progress)
		if row != tc.expected.row || col != tc.expected.col {
			t.Log(name, "got", row, col, "expected", tc.expected)
			t.Fail()
		}
	}

	// button 1 sits up and to the right, 8 mirrors it
	r1, c1 := l.place(game.RingPosition(1), 1)
	r8, c8 := l.place(game.RingPosition(8), 1)
	if r1 >= 12 || c1 <= 40 || r1 != r8 || int(c1)-40 != 40-int(c8) {
		t.Error("ring", r1, c1, r8, c8)
	}
}

func TestFrame(t *testing.T) {
	note := &game.Note{Serial: 1, Type: game.Tap, Pos: game.RingPosition(3), Time: time.Second, MoveTime: 500 * time.Millisecond}
	sheet := &game.Sheet{Notes: []*game.Note{note}}
	sheet.Evaluate()
	rec := score.NewGameRecord(sheet)
	rec.Record(note, game.Judgement{Grade: game.Great, Level: 4})

	var out strings.Builder
	r := &DefaultRenderer{Theme: &theme.DefaultTheme{}, Out: &out}
	r.Frame(&session.Frame{
		Now:    time.Second,
		Sheet:  sheet,
		Record: rec,
		Active: []judge.ShowingNote{{Serial: 1, State: judge.Approaching}},
		Events: []judge.NoteEvent{{Serial: 1, Type: game.Tap, To: judge.Resolved, Judgement: game.Judgement{Grade: game.Great}}},
	})
	s := out.String()
	for _, want := range []string{"GREAT", "●", "80.0000%", "1 / 3", "Great:       1"} {
		if !strings.Contains(s, want) {
			t.Log("missing", want)
			t.Fail()
		}
	}
	if len(r.drawn) != 1 || len(r.decorations) != 1 {
		t.Error("drawn", r.drawn, "decorations", len(r.decorations))
	}

	out.Reset()
	r.Frame(&session.Frame{Sheet: sheet, Record: rec, Paused: true})
	if !strings.Contains(out.String(), "(paused)") || len(r.drawn) != 0 {
		t.Error("second frame", len(r.drawn))
	}
}
