package score

import (
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
)

// Scorer keeps the input log of every run so it can be judged again.
type Scorer interface {
	Init() error
	Deinit()

	// Save the inputs and result of this performance
	Save(chart *game.Chart, history *History) error

	// Load up previous runs of the chart, oldest first
	Load(chart *game.Chart) ([]History, error)
}

type History struct {
	ID          int64
	Sum         string
	Auto        string
	Achievement float64
	Played      time.Time
	Inputs      []game.Input
}
