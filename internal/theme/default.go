package theme

import (
	"fmt"
	"image/color"

	"git.lost.host/meutraa/maisim/internal/game"
	"git.lost.host/meutraa/maisim/internal/judge"
)

type DefaultTheme struct {
}

func paint(c color.RGBA, s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

func (t *DefaultTheme) RenderNote(note *game.Note, sn *judge.ShowingNote) string {
	sym, ok := syms[note.Type]
	if !ok {
		return ""
	}
	if note.IsStarTap && note.Type == game.Tap {
		sym = syms[game.Slide]
	}
	if note.IsTapStar && note.Type == game.Slide {
		sym = syms[game.Tap]
	}
	if nil != sn && sn.State == judge.Holding && sn.Pressing {
		sym = pressedSym
	}
	return paint(noteColor(note), sym)
}

func (t *DefaultTheme) RenderGrade(j game.Judgement) string {
	return paint(gradeColors[j.Grade], gradeNames[j.Grade])
}

func (t *DefaultTheme) RenderButton(index int) string {
	return buttonSym
}

const (
	buttonSym  = "○"
	pressedSym = "◉"
)

var (
	syms = map[game.NoteType]string{
		game.Tap:            "●",
		game.Hold:           "◆",
		game.Slide:          "★",
		game.Touch:          "◇",
		game.TouchHold:      "◈",
		game.SlideTrack:     "☆",
		game.SpecTouchSlide: "◇",
	}
	gradeNames = map[game.Grade]string{
		game.CriticalPerfect: "CRITICAL",
		game.Perfect:         "PERFECT",
		game.Great:           "GREAT",
		game.Good:            "GOOD",
		game.Miss:            "MISS",
	}
	gradeColors = map[game.Grade]color.RGBA{
		game.CriticalPerfect: {255, 236, 120, 255},
		game.Perfect:         {255, 180, 0, 255},
		game.Great:           {236, 0, 106, 255},
		game.Good:            {0, 200, 90, 255},
		game.Miss:            {150, 150, 150, 255},
	}
	tapColor   = color.RGBA{255, 100, 180, 255}
	eachColor  = color.RGBA{236, 195, 0, 255}
	breakColor = color.RGBA{236, 128, 0, 255}
	slideColor = color.RGBA{0, 160, 236, 255}
	touchColor = color.RGBA{0, 118, 236, 255}
	exColor    = color.RGBA{255, 255, 255, 255}
)

func noteColor(n *game.Note) color.RGBA {
	switch {
	case n.IsBreak:
		return breakColor
	case n.IsEx:
		return exColor
	case n.IsEach:
		return eachColor
	case n.Type == game.SlideTrack:
		return slideColor
	case n.Type.IsTouchType():
		return touchColor
	}
	return tapColor
}
