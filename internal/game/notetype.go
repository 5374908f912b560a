package game

type NoteType uint8

const (
	Undefined NoteType = iota
	Tap
	Hold
	Slide
	Touch
	TouchHold
	SlideTrack
	SpecTouchSlide
	Empty
	EndMark
)

var noteTypeNames = [...]string{
	Undefined:      "undefined",
	Tap:            "tap",
	Hold:           "hold",
	Slide:          "slide",
	Touch:          "touch",
	TouchHold:      "touch-hold",
	SlideTrack:     "slide-track",
	SpecTouchSlide: "touch-slide",
	Empty:          "empty",
	EndMark:        "end",
}

func (t NoteType) String() string {
	if int(t) < len(noteTypeNames) {
		return noteTypeNames[t]
	}
	return "unknown"
}

// IsHoldType reports notes graded on press duration.
func (t NoteType) IsHoldType() bool {
	return t == Hold || t == TouchHold
}

// IsTouchType reports notes that converge on a sensor instead of
// travelling to the judgement ring.
func (t NoteType) IsTouchType() bool {
	return t == Touch || t == TouchHold || t == SpecTouchSlide
}

// IsJudged reports whether the note produces a grade at all.
func (t NoteType) IsJudged() bool {
	return t != Undefined && t != Empty && t != EndMark
}
