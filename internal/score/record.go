package score

import (
	"math"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
)

// Counts tallies final grades. Fast and Late only count grades between
// critical perfect and miss.
type Counts struct {
	CriticalPerfect int64
	Perfect         int64
	Great           int64
	Good            int64
	Miss            int64
	Fast            int64
	Late            int64
}

func (c *Counts) add(j game.Judgement) {
	switch j.Grade {
	case game.CriticalPerfect:
		c.CriticalPerfect++
	case game.Perfect:
		c.Perfect++
	case game.Great:
		c.Great++
	case game.Good:
		c.Good++
	default:
		c.Miss++
	}
	if j.Grade == game.CriticalPerfect || j.Grade == game.Miss {
		return
	}
	if j.Timing == game.Fast {
		c.Fast++
	} else {
		c.Late++
	}
}

// Total is the number of notes counted.
func (c Counts) Total() int64 {
	return c.CriticalPerfect + c.Perfect + c.Great + c.Good + c.Miss
}

var (
	breakRate   = [...]float64{0, 1, 1, 1, 0.8, 0.6, 0.5, 0.4}
	breakBonus  = [...]float64{0, 1, 0.75, 0.5, 0.4, 0.4, 0.4, 0.3}
	breakOld    = [...]float64{0, 2600, 2550, 2500, 2000, 1500, 1250, 1000}
	dxPoints    = [...]int64{game.CriticalPerfect: 3, game.Perfect: 2, game.Great: 1}
	regularRate = [...]float64{game.Miss: 0, game.Good: 0.5, game.Great: 0.8, game.Perfect: 1, game.CriticalPerfect: 1}
)

func level(j game.Judgement) int {
	if j.Grade == game.Miss || j.Level < 1 || j.Level > 7 {
		return 0
	}
	return j.Level
}

// GameRecord aggregates every final grade of a run. It satisfies the
// judge recorder.
type GameRecord struct {
	sheet *game.Sheet

	Categories [game.CategoryBreak + 1]Counts
	Total      Counts
	Combo      int64
	MaxCombo   int64
	DXScore    int64

	basic, bonus         float64
	lostBasic, lostBonus float64
	old                  float64

	offsets []time.Duration
}

// NewGameRecord scores against the denominators of the sheet.
func NewGameRecord(sheet *game.Sheet) *GameRecord {
	return &GameRecord{sheet: sheet}
}

func (r *GameRecord) Reset() {
	*r = GameRecord{sheet: r.sheet}
}

func (r *GameRecord) Record(note *game.Note, j game.Judgement) {
	c := game.CategoryOf(note)
	r.Categories[c].add(j)
	r.Total.add(j)

	if j.Grade == game.Miss {
		r.Combo = 0
	} else {
		r.Combo++
		if r.Combo > r.MaxCombo {
			r.MaxCombo = r.Combo
		}
		r.offsets = append(r.offsets, j.Offset)
	}
	r.DXScore += dxPoints[j.Grade]

	w := c.Weight()
	if c == game.CategoryBreak {
		l := level(j)
		r.basic += w * breakRate[l]
		r.lostBasic += w * (1 - breakRate[l])
		r.bonus += breakBonus[l]
		r.lostBonus += 1 - breakBonus[l]
		r.old += breakOld[l]
		return
	}
	rate := regularRate[j.Grade]
	r.basic += w * rate
	r.lostBasic += w * (1 - rate)
	r.old += c.OldScore() * rate
}

func ratio(v, of float64) float64 {
	if of <= 0 {
		return 0
	}
	return v / of
}

// AchievingRate is the percentage earned so far, 101 at most.
func (r *GameRecord) AchievingRate() float64 {
	return 100*ratio(r.basic, r.sheet.BasicEvaluation) + ratio(r.bonus, r.sheet.ExEvaluation)
}

// AchievingRateLost is the percentage that can no longer be earned.
func (r *GameRecord) AchievingRateLost() float64 {
	return 100*ratio(r.lostBasic, r.sheet.BasicEvaluation) + ratio(r.lostBonus, r.sheet.ExEvaluation)
}

// AchievingRateEx is the best percentage still reachable.
func (r *GameRecord) AchievingRateEx() float64 {
	best := 100.0
	if r.sheet.ExEvaluation > 0 {
		best++
	}
	return best - r.AchievingRateLost()
}

// OldScore is the legacy points total, break bonus included.
func (r *GameRecord) OldScore() float64 {
	return r.old
}

// OldAchievingRate can pass 100 through break bonuses.
func (r *GameRecord) OldAchievingRate() float64 {
	return 100 * ratio(r.old, r.sheet.OldTheoreticalScore)
}

func (r *GameRecord) DXScoreMax() int64 {
	return 3 * r.sheet.NoteCount
}

// Mean of the press offsets of every note that was not missed.
func (r *GameRecord) Mean() time.Duration {
	if len(r.offsets) == 0 {
		return 0
	}
	var sum float64
	for _, o := range r.offsets {
		sum += float64(o)
	}
	return time.Duration(math.Round(sum / float64(len(r.offsets))))
}

func (r *GameRecord) StdDev() time.Duration {
	if len(r.offsets) < 2 {
		return 0
	}
	mean := float64(r.Mean())
	var sum float64
	for _, o := range r.offsets {
		d := float64(o) - mean
		sum += d * d
	}
	return time.Duration(math.Round(math.Sqrt(sum / float64(len(r.offsets)))))
}
