package game

import (
	"time"
)

type Grade uint8

const (
	Miss Grade = iota
	Good
	Great
	Perfect
	CriticalPerfect
)

var gradeNames = [...]string{"Miss", "Good", "Great", "Perfect", "Critical Perfect"}

func (g Grade) String() string {
	return gradeNames[g]
}

type Timing uint8

const (
	Late Timing = iota
	Fast
)

func (t Timing) String() string {
	if t == Fast {
		return "Fast"
	}
	return "Late"
}

// Judgement is a grade with its sub level: 1 critical perfect, 2-3
// perfect, 4-6 great, 7 good, 0 miss.
type Judgement struct {
	Grade  Grade
	Level  int
	Timing Timing
	Offset time.Duration // press time minus target time
}

// GradeOfLevel maps a sub level to its grade.
func GradeOfLevel(level int) Grade {
	switch {
	case level == 1:
		return CriticalPerfect
	case level == 2 || level == 3:
		return Perfect
	case level >= 4 && level <= 6:
		return Great
	case level == 7:
		return Good
	}
	return Miss
}

// Window is one row of a grading table.
type Window struct {
	Time  time.Duration
	Level int
}
