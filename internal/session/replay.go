package session

import (
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
	"git.lost.host/meutraa/maisim/internal/judge"
	"git.lost.host/meutraa/maisim/internal/score"
)

// Replay judges a recorded input log again, as fast as possible. Inputs
// must be in time order.
func Replay(sheet *game.Sheet, inputs []game.Input, opts Options) (*score.GameRecord, error) {
	opts.Clock = NewWallClock(0)
	s, err := New(sheet, opts)
	if nil != err {
		return nil, err
	}
	if len(sheet.Notes) == 0 {
		return s.record, nil
	}

	now := sheet.Notes[0].EmergeTime
	if len(inputs) > 0 && inputs[0].Time < now {
		now = inputs[0].Time
	}
	end := sheet.Duration() + judge.ResultShowTime + time.Second
	i := 0
	for ; now <= end; now += s.period {
		for i < len(inputs) && inputs[i].Time <= now {
			s.engine.Apply(inputs[i])
			i++
		}
		if _, err := s.engine.Advance(now); nil != err {
			return s.record, err
		}
		if s.engine.Done() && i >= len(inputs) {
			break
		}
	}
	return s.record, nil
}
