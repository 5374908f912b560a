package judge

import (
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
)

// State is the phase of a showing note. States only move forward.
type State uint8

const (
	Emerging    State = iota // growing in place
	Approaching              // moving to the judgement line, or converging
	Holding                  // hold head reached the line, body passing
	Releasing                // hold tail leaving the line
	Hangup                   // slide guide star waiting out its tame time
	Tracing                  // slide guide star moving
	Stopped                  // at the line, waiting for the window to close
	Expired                  // window closed, grade about to be finalised
	Resolved                 // graded, result showing
	Removed
)

var stateNames = [...]string{
	"emerging", "approaching", "holding", "releasing", "hangup",
	"tracing", "stopped", "expired", "resolved", "removed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

type AutoMode uint8

const (
	AutoOff       AutoMode = iota
	AutoDirect             // presses every note on time, every grade forced to critical perfect
	AutoSimulated          // presses every note on time, graded normally
)

var autoModeNames = [...]string{"off", "direct", "simulated"}

func (m AutoMode) String() string {
	if int(m) < len(autoModeNames) {
		return autoModeNames[m]
	}
	return "unknown"
}

func ParseAutoMode(s string) (AutoMode, bool) {
	switch s {
	case "off", "":
		return AutoOff, true
	case "direct":
		return AutoDirect, true
	case "simulated":
		return AutoSimulated, true
	}
	return AutoOff, false
}

// ShowingNote is the live state of one admitted note.
type ShowingNote struct {
	Index  int // into the engine's sheet
	Serial int
	State  State

	// Provisional until the note is resolved.
	Judgement game.Judgement
	Judged    bool // the head has been graded, by a press or a missed window

	// Holds.
	Pressing       bool
	PressedAt      time.Duration
	Held           time.Duration
	HoldingPercent float64

	// Slide tracks: the last section reached, -1 before the first.
	Section   int
	LineIndex int // guide star line
	Completed bool
}

// NoteEvent reports one state change of a note.
type NoteEvent struct {
	Serial    int
	Index     int
	Type      game.NoteType
	From, To  State
	Time      time.Duration
	Judgement game.Judgement // final once To is Resolved
	Fault     error          // set when the note failed and was resolved as a miss
}

// Recorder receives every final grade.
type Recorder interface {
	Record(note *game.Note, j game.Judgement)
}
