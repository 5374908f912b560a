package render

import (
	"image/color"

	"git.lost.host/meutraa/maisim/internal/session"
)

// Renderer draws every frame of a session, it is a session subscriber.
type Renderer interface {
	Init() error
	Deinit() error
	AddDecoration(col, row uint16, content string, frames int)
	Fill(row, column uint16, message string)
	FillColor(row, column uint16, color color.RGBA, message string)
	Frame(f *session.Frame)
}
