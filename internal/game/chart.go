package game

import (
	"time"
)

// Beat is one rhythmic subdivision of the chart.
type Beat struct {
	NoteValue   float64 // beat divisor, 4 = quarter notes
	BPM         float64
	Time        time.Duration
	NoteIndexes []int
}

type Sheet struct {
	Notes    []*Note
	Beats    []Beat
	First    time.Duration // delay between track start and chart start
	WholeBPM float64

	// Scoring denominators.
	BasicEvaluation     float64
	ExEvaluation        float64
	OldTheoreticalScore float64

	NoteCount  int64
	HoldCount  int64
	SlideCount int64
	TouchCount int64
	BreakCount int64
}

// Chart is one difficulty of a song.
type Chart struct {
	Title      string
	Artist     string
	Difficulty Difficulty
	Sheet      *Sheet
}

// Evaluate fills in the counters and the scoring denominators.
func (s *Sheet) Evaluate() {
	s.BasicEvaluation, s.ExEvaluation, s.OldTheoreticalScore = 0, 0, 0
	s.NoteCount, s.HoldCount, s.SlideCount, s.TouchCount, s.BreakCount = 0, 0, 0, 0, 0
	for _, n := range s.Notes {
		if !n.Type.IsJudged() {
			continue
		}
		c := CategoryOf(n)
		s.BasicEvaluation += c.Weight()
		s.OldTheoreticalScore += c.OldScore()
		s.NoteCount++
		switch c {
		case CategoryHold:
			s.HoldCount++
		case CategorySlide:
			s.SlideCount++
		case CategoryTouch:
			s.TouchCount++
		case CategoryBreak:
			s.BreakCount++
			s.ExEvaluation++
		}
	}
}

// Duration is the time of the last judged moment in the chart.
func (s *Sheet) Duration() time.Duration {
	var d time.Duration
	for _, n := range s.Notes {
		if e := n.End(); e > d {
			d = e
		}
	}
	return d
}

// BySerial finds a note by its serial.
func (s *Sheet) BySerial(serial int) *Note {
	for _, n := range s.Notes {
		if n.Serial == serial {
			return n
		}
	}
	return nil
}
