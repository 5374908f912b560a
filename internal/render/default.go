package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"git.lost.host/meutraa/maisim/internal/game"
	"git.lost.host/meutraa/maisim/internal/judge"
	"git.lost.host/meutraa/maisim/internal/session"
	"git.lost.host/meutraa/maisim/internal/theme"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// How many frames a grade stays next to its note.
const gradeFrames = 30

type DefaultRenderer struct {
	Theme theme.Theme
	Out   io.Writer

	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
	drawn        []cell
	field        layout
}

type decoration struct {
	X, Y    uint16
	Content string
	Frames  int // remaining frames until removed
}

type cell struct {
	row, col uint16
}

// layout is the playfield: the judgement ring around a centre cell. A
// terminal cell is about twice as tall as it is wide.
type layout struct {
	cx, cy int
	radius int
	side   int // first column of the stats panel
}

func newLayout(columns, rows int) layout {
	radius := rows/2 - 2
	if radius > columns/4-2 {
		radius = columns/4 - 2
	}
	if radius < 3 {
		radius = 3
	}
	cx := radius*2 + 3
	return layout{cx: cx, cy: rows / 2, radius: radius, side: cx + radius*2 + 6}
}

func (l layout) at(angle, r float64) (uint16, uint16) {
	a := angle * math.Pi / 180
	row := l.cy - int(math.Round(math.Cos(a)*r*float64(l.radius)))
	col := l.cx + int(math.Round(math.Sin(a)*r*float64(l.radius)*2))
	if row < 1 {
		row = 1
	}
	if col < 1 {
		col = 1
	}
	return uint16(row), uint16(col)
}

// place maps a position to a cell. progress scales the distance from the
// centre, 1 is the judgement ring.
func (l layout) place(pos game.Position, progress float64) (uint16, uint16) {
	ring := func(i uint8) float64 { return (float64(i) - 0.5) * 45 }
	edge := func(i uint8) float64 { return float64(i-1) * 45 }
	switch pos.Kind {
	case game.Ring:
		return l.at(ring(pos.Index), progress)
	case game.Sensor:
		switch pos.Group {
		case 'A':
			return l.at(ring(pos.Index), 0.9)
		case 'B':
			return l.at(ring(pos.Index), 0.45)
		case 'D':
			return l.at(edge(pos.Index), 0.9)
		case 'E':
			return l.at(edge(pos.Index), 0.6)
		}
	case game.Free:
		if pos.Group == '@' {
			return l.at(pos.X, pos.Y/freeRadius)
		}
		return l.at(math.Atan2(pos.X, -pos.Y)*180/math.Pi, math.Hypot(pos.X, pos.Y)/freeRadius)
	}
	return uint16(l.cy), uint16(l.cx)
}

// freeRadius is the judgement ring radius in free position units.
const freeRadius = 400

func (r *DefaultRenderer) Init() error {
	if nil == r.Out {
		r.Out = os.Stdout
	}
	if nil == r.Theme {
		r.Theme = &theme.DefaultTheme{}
	}
	fd := int(os.Stdout.Fd())
	columns, rows, err := term.GetSize(fd)
	if nil != err {
		columns, rows = 80, 24
	}
	r.field = newLayout(columns, rows)

	state, err := term.MakeRaw(fd)
	if nil != err {
		return err
	}
	r.restoreState = state

	fmt.Fprintf(r.Out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Fprintf(r.Out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if nil == r.restoreState {
		return nil
	}
	return term.Restore(int(os.Stdout.Fd()), r.restoreState)
}

func (r *DefaultRenderer) AddDecoration(col, row uint16, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, "        ")
			continue
		}
		nd = append(nd, d)
		r.Fill(d.Y, d.X, d.Content)
		d.Frames--
	}
	r.decorations = nd
}

func (r *DefaultRenderer) Fill(row, column uint16, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column uint16, c color.RGBA, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H\033[38;2;")
	r.buffer.WriteString(strconv.FormatInt(int64(c.R), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.G), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.B), 10))
	r.buffer.WriteString("m")
	r.buffer.WriteString(message)
	r.buffer.WriteString("\033[0m")
}

func (r *DefaultRenderer) draw(row, col uint16, s string) {
	r.Fill(row, col, s)
	r.drawn = append(r.drawn, cell{row, col})
}

func progress(now, from, to int64) float64 {
	if to <= from {
		return 1
	}
	p := float64(now-from) / float64(to-from)
	return math.Max(0, math.Min(1, p))
}

func (r *DefaultRenderer) note(f *session.Frame, sn *judge.ShowingNote) {
	if sn.Index < 0 || sn.Index >= len(f.Sheet.Notes) || sn.State >= judge.Expired {
		return
	}
	note := f.Sheet.Notes[sn.Index]
	sym := r.Theme.RenderNote(note, sn)
	if sym == "" {
		return
	}
	switch note.Type {
	case game.SlideTrack:
		if sn.State != judge.Tracing && sn.State != judge.Stopped || nil == note.Track {
			return
		}
		sections := note.Track.Sections()
		next := sn.Section + 1
		if next >= len(sections) {
			next = len(sections) - 1
		}
		if next < 0 {
			return
		}
		row, col := r.field.place(sections[next], 1)
		r.draw(row, col, sym)
	case game.Tap, game.Slide, game.Hold:
		p := progress(int64(f.Now), int64(note.MoveTime), int64(note.Time))
		if sn.State == judge.Emerging {
			p = 0.1
		}
		row, col := r.field.place(note.Pos, p)
		r.draw(row, col, sym)
	default:
		row, col := r.field.place(note.Pos, 1)
		r.draw(row, col, sym)
	}
}

func (r *DefaultRenderer) stats(f *session.Frame) {
	rec := f.Record
	side := uint16(r.field.side)
	state := "        "
	if f.Paused {
		state = "(paused)"
	}
	lines := []string{
		fmt.Sprintf("        Time:  %8.2fs %v", f.Now.Seconds(), state),
		fmt.Sprintf(" Achievement:  %8.4f%%", rec.AchievingRate()),
		fmt.Sprintf("   Reachable:  %8.4f%%", rec.AchievingRateEx()),
		fmt.Sprintf("    DX Score:  %v / %v", humanize.Comma(rec.DXScore), humanize.Comma(rec.DXScoreMax())),
		fmt.Sprintf("   Old Score:  %v", humanize.Commaf(math.Round(rec.OldScore()))),
		fmt.Sprintf("       Combo:  %6v", rec.Combo),
		fmt.Sprintf("   Max Combo:  %6v", rec.MaxCombo),
		"",
		fmt.Sprintf("    Critical:  %6v", rec.Total.CriticalPerfect),
		fmt.Sprintf("     Perfect:  %6v", rec.Total.Perfect),
		fmt.Sprintf("       Great:  %6v", rec.Total.Great),
		fmt.Sprintf("        Good:  %6v", rec.Total.Good),
		fmt.Sprintf("        Miss:  %6v", rec.Total.Miss),
		fmt.Sprintf("   Fast/Late:  %v / %v", rec.Total.Fast, rec.Total.Late),
		fmt.Sprintf("        Mean:  %6.2fms", float64(rec.Mean().Microseconds())/1000),
		fmt.Sprintf("       Stdev:  %6.2fms", float64(rec.StdDev().Microseconds())/1000),
	}
	for i, l := range lines {
		r.Fill(uint16(2+i), side, "\033[K"+l)
	}
}

// Frame redraws the playfield and stats. It satisfies session.Subscriber.
func (r *DefaultRenderer) Frame(f *session.Frame) {
	if nil == r.Theme {
		r.Theme = &theme.DefaultTheme{}
	}
	if r.field.radius == 0 {
		r.field = newLayout(80, 24)
	}
	for _, c := range r.drawn {
		r.Fill(c.row, c.col, " ")
	}
	r.drawn = r.drawn[:0]

	for i := uint8(1); i <= 8; i++ {
		row, col := r.field.place(game.RingPosition(i), 1)
		r.Fill(row, col, r.Theme.RenderButton(int(i)))
	}
	for i := range f.Active {
		r.note(f, &f.Active[i])
	}
	for _, ev := range f.Events {
		if ev.To != judge.Resolved || !ev.Type.IsJudged() || ev.Index >= len(f.Sheet.Notes) {
			continue
		}
		row, col := r.field.place(f.Sheet.Notes[ev.Index].Pos, 1)
		r.AddDecoration(col+2, row, r.Theme.RenderGrade(ev.Judgement), gradeFrames)
	}
	r.tickDecorations()
	r.stats(f)
	r.flush()
}

func (r *DefaultRenderer) flush() {
	out := r.Out
	if nil == out {
		out = os.Stdout
	}
	io.WriteString(out, r.buffer.String())
	r.buffer.Reset()
}
