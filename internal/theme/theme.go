package theme

import (
	"git.lost.host/meutraa/maisim/internal/game"
	"git.lost.host/meutraa/maisim/internal/judge"
)

type Theme interface {
	RenderNote(note *game.Note, sn *judge.ShowingNote) string
	RenderGrade(j game.Judgement) string
	RenderButton(index int) string
}
