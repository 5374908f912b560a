package game

import (
	"time"
)

// Modifiers are the per-note flags a chart token can carry.
type Modifiers struct {
	IsBreak     bool
	IsEx        bool
	HasFirework bool
	IsTrap      bool
	IsInvisible bool
	IsGhost     bool

	IsStarTap     bool // $, draw a tap as a star
	StarTapRotate bool // $$
	IsTapStar     bool // @, draw a slide head as a circle

	IsNoTapSlide           bool // ?, no head, guide star shown while waiting
	IsNoTapNoTameTimeSlide bool // !, no head, guide star appears when moving

	IsNiseEach bool // pseudo each, highlighted as each but alone
	Reverse    bool

	// Flags that belong to the slide track rather than its head, only
	// used while reading a chart.
	TrackBreak     bool
	TrackEx        bool
	TrackInvisible bool
	TrackGhost     bool
}

// Appearance holds the exhibition <speed;zoom;alpha|r;g;b> prefix.
type Appearance struct {
	Speed        float64
	Zoom         float64
	Transparency float64
	RShift       float64
	GShift       float64
	BShift       float64
}

type Note struct {
	Index  int // position in the sheet, changes whenever the sheet is resorted
	Serial int // stable identifier

	Pos  Position
	Type NoteType
	Modifiers
	Appearance *Appearance

	IsEach      bool
	IsShortHold bool
	DoSpecJudge bool

	// The [value:count] pair a duration was given with, zero for literal
	// durations.
	NoteValue  float64
	NoteNumber float64

	BeatIndex     int
	PartNoteValue float64 // beat divisor active at this note
	BPM           float64

	Time       time.Duration // when the note must be judged
	RemainTime time.Duration // hold length, or slide travel length
	StopTime   time.Duration // slide only, wait before the guide star moves

	// Derived from speed settings, never set by the parser.
	EmergeTime          time.Duration
	MoveTime            time.Duration
	GuideStarEmergeTime time.Duration

	// Slide heads: every track that follows this head.
	SlideTracks []Track

	// Slide track notes.
	Track          *Track
	SlideTapSerial int
}

// SlideLine is one drawn segment of a slide.
type SlideLine struct {
	Shape   SlideShape
	Pos     Position
	TurnPos Position // V only
	EndPos  Position

	RemainTime time.Duration
	BeginTime  time.Duration // relative to the start of the track

	// Ordered sensor areas the segment passes through.
	Sections []Position

	// Segments that start or end off the ring cannot be judged normally.
	DoSpecJudge bool
}

// Track is a whole slide gesture, one or more lines.
type Track struct {
	Shape   SlideShape
	EndPos  Position
	TurnPos Position

	NoteValue  float64
	NoteNumber float64

	RemainTime time.Duration
	StopTime   time.Duration

	IsChain    bool
	SlideLines []SlideLine
}

// Sections concatenates the judgement areas of every line.
func (t *Track) Sections() []Position {
	n := 0
	for _, l := range t.SlideLines {
		n += len(l.Sections)
	}
	s := make([]Position, 0, n)
	for _, l := range t.SlideLines {
		s = append(s, l.Sections...)
	}
	return s
}

// End is when a held note is released. Slide track notes are timed on
// their arrival already.
func (note *Note) End() time.Duration {
	if note.Type == SlideTrack {
		return note.Time
	}
	return note.Time + note.RemainTime
}
