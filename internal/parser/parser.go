package parser

import (
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
)

type Parser interface {
	// Parse reads a maidata file, one chart per difficulty.
	Parse(file string) ([]*game.Chart, error)
	// ParseSheet parses the note text of a single difficulty.
	ParseSheet(text string, first time.Duration, bpm float64) (*game.Sheet, error)
}
