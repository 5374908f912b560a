package judge

import (
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
)

// trap inverts a grade: a perfect press on a trap is the worst result.
func trap(j game.Judgement) game.Judgement {
	switch j.Grade {
	case game.CriticalPerfect:
		j.Grade, j.Level = game.Miss, 0
	case game.Perfect:
		j.Grade, j.Level = game.Good, 7
	case game.Great:
		j.Level = 10 - j.Level
	case game.Good:
		j.Grade, j.Level = game.Perfect, 2
	case game.Miss:
		j.Grade, j.Level = game.CriticalPerfect, 1
	}
	return j
}

func critical(j game.Judgement) game.Judgement {
	j.Grade, j.Level = game.CriticalPerfect, 1
	return j
}

// override applies the modifier rules in order: trap, direct auto play,
// then ex.
func override(note *game.Note, j game.Judgement, auto AutoMode) game.Judgement {
	if note.IsTrap {
		j = trap(j)
	}
	if auto == AutoDirect {
		j = critical(j)
	}
	if note.IsEx && j.Grade != game.Miss {
		j = critical(j)
	}
	return j
}

// isShortHold reports holds too short to grade on press duration.
func isShortHold(note *game.Note, period time.Duration) bool {
	if note.IsShortHold {
		return true
	}
	switch note.Type {
	case game.Hold:
		return note.RemainTime <= 18*period
	case game.TouchHold:
		return note.RemainTime <= 27*period
	}
	return false
}

// holdingPercent is the pressed share of the part of a hold that has to
// be held, the last frames of it are free.
func holdingPercent(note *game.Note, held, period time.Duration) float64 {
	free := 6
	if note.Type == game.TouchHold {
		free = 15
	}
	required := note.RemainTime - time.Duration(12+free)*period
	if required <= 0 {
		return 1
	}
	return float64(held) / float64(required)
}

// holdGrade corrects the head grade of a hold by how long it was held.
func holdGrade(j game.Judgement, percent float64) game.Judgement {
	if j.Grade == game.Miss {
		if percent >= 0.05 {
			j.Grade, j.Level = game.Good, 7
		}
		return j
	}
	switch {
	case percent >= 1:
	case percent >= 0.67:
		if j.Grade == game.CriticalPerfect {
			j.Grade, j.Level = game.Perfect, 2
		}
	case percent >= 0.33:
		if j.Grade == game.CriticalPerfect || j.Grade == game.Perfect {
			j.Grade, j.Level = game.Great, 4
		}
	default:
		j.Grade, j.Level = game.Good, 7
	}
	return j
}

// slideGrade gives partial credit to a slide traced past its middle.
func slideGrade(j game.Judgement, section, sections int) game.Judgement {
	if j.Grade == game.Miss && float64(section+1) > float64(sections)/2 {
		j.Grade, j.Level = game.Good, 7
	}
	return j
}
