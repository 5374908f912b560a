package judge

import (
	"io"
	"log"
	"sort"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
	"github.com/pkg/errors"
)

// DefaultPeriod is one frame at 60Hz.
const DefaultPeriod = time.Second / 60

type Options struct {
	Period   time.Duration // tick period, also the frame unit of hold rules
	Auto     AutoMode
	Recorder Recorder
	Logger   *log.Logger
}

// Engine judges a timed sheet against a playback time and press events.
// It is not safe for concurrent use, every call has to come from the
// thread that ticks it.
type Engine struct {
	sheet    *game.Sheet
	period   time.Duration
	auto     AutoMode
	recorder Recorder
	log      *log.Logger

	active  []*ShowingNote
	next    int
	now     time.Duration
	pending []NoteEvent
	ended   bool
}

// New needs a sheet that went through the timing calculator, ordered by
// emergence.
func New(sheet *game.Sheet, opts Options) (*Engine, error) {
	if nil == sheet {
		return nil, errors.New("judge: no sheet")
	}
	if opts.Period <= 0 {
		opts.Period = DefaultPeriod
	}
	if nil == opts.Logger {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		sheet:    sheet,
		period:   opts.Period,
		auto:     opts.Auto,
		recorder: opts.Recorder,
		log:      opts.Logger,
	}, nil
}

func (e *Engine) Sheet() *game.Sheet {
	return e.sheet
}

func (e *Engine) Now() time.Duration {
	return e.now
}

// Active returns a copy of every showing note.
func (e *Engine) Active() []ShowingNote {
	out := make([]ShowingNote, len(e.active))
	for i, sn := range e.active {
		out[i] = *sn
	}
	return out
}

// Done reports whether the end mark was reached, or every note has been
// admitted, and nothing is showing any more.
func (e *Engine) Done() bool {
	return len(e.active) == 0 && (e.ended || e.next >= len(e.sheet.Notes))
}

func (e *Engine) admit(i int) {
	e.active = append(e.active, &ShowingNote{
		Index:   i,
		Serial:  e.sheet.Notes[i].Serial,
		State:   Emerging,
		Section: -1,
	})
}

// Advance runs one tick: notes that have emerged by now are admitted,
// then every showing note is moved along. Events from presses since the
// last tick come first.
func (e *Engine) Advance(now time.Duration) ([]NoteEvent, error) {
	e.now = now
	events := e.pending
	e.pending = nil

	notes := e.sheet.Notes
	for e.next < len(notes) && now >= notes[e.next].EmergeTime {
		e.admit(e.next)
		e.next++
	}

	for _, sn := range e.active {
		note, err := e.note(sn)
		if nil != err {
			return events, err
		}
		events = e.step(sn, note, now, events)
	}

	kept := e.active[:0]
	for _, sn := range e.active {
		if sn.State != Removed {
			kept = append(kept, sn)
		}
	}
	for i := len(kept); i < len(e.active); i++ {
		e.active[i] = nil
	}
	e.active = kept
	return events, nil
}

func (e *Engine) note(sn *ShowingNote) (*game.Note, error) {
	if sn.Index < 0 || sn.Index >= len(e.sheet.Notes) {
		return nil, &InvariantError{Serial: sn.Serial, Index: sn.Index, Reason: "index outside the sheet"}
	}
	note := e.sheet.Notes[sn.Index]
	if note.Serial != sn.Serial {
		return nil, &InvariantError{Serial: sn.Serial, Index: sn.Index, Reason: "serial does not match the sheet"}
	}
	return note, nil
}

// Seek drops every showing note and starts over from t. Notes that are
// visible at t but not yet due come back fresh.
func (e *Engine) Seek(t time.Duration) {
	for i := range e.active {
		e.active[i] = nil
	}
	e.active = e.active[:0]
	e.pending = nil
	e.ended = false
	e.now = t

	notes := e.sheet.Notes
	e.next = sort.Search(len(notes), func(i int) bool {
		return notes[i].EmergeTime > t
	})
	for i := 0; i < e.next; i++ {
		if notes[i].Time >= t {
			e.admit(i)
		}
	}
}

// Reset goes back to before the first note.
func (e *Engine) Reset() {
	e.Seek(0)
	e.next = 0
	e.active = e.active[:0]
}

func (e *Engine) move(sn *ShowingNote, note *game.Note, to State, t time.Duration, events []NoteEvent) []NoteEvent {
	if sn.State == to {
		return events
	}
	ev := NoteEvent{
		Serial:    sn.Serial,
		Index:     sn.Index,
		Type:      note.Type,
		From:      sn.State,
		To:        to,
		Time:      t,
		Judgement: sn.Judgement,
	}
	sn.State = to
	return append(events, ev)
}

// step isolates a fault in one note, the note becomes a miss and the
// tick carries on.
func (e *Engine) step(sn *ShowingNote, note *game.Note, now time.Duration, events []NoteEvent) (out []NoteEvent) {
	out = events
	defer func() {
		if r := recover(); nil != r {
			fault := errors.Errorf("note %d: %v", sn.Serial, r)
			e.log.Println("recovered", fault)
			out = e.fail(sn, note, fault, now, out)
		}
	}()
	return e.update(sn, note, now, events)
}

func (e *Engine) fail(sn *ShowingNote, note *game.Note, fault error, t time.Duration, events []NoteEvent) []NoteEvent {
	if sn.State >= Resolved {
		sn.State = Removed
		return events
	}
	sn.Judgement = game.Judgement{Grade: game.Miss}
	sn.Judged = true
	if nil != e.recorder && note.Type.IsJudged() {
		e.recorder.Record(note, sn.Judgement)
	}
	events = append(events, NoteEvent{
		Serial:    sn.Serial,
		Index:     sn.Index,
		Type:      note.Type,
		From:      sn.State,
		To:        Resolved,
		Time:      t,
		Judgement: sn.Judgement,
		Fault:     fault,
	})
	sn.State = Resolved
	return events
}

func (e *Engine) update(sn *ShowingNote, note *game.Note, now time.Duration, events []NoteEvent) []NoteEvent {
	switch sn.State {
	case Expired:
		return e.finalise(sn, note, now, events)
	case Resolved:
		if now >= note.End()+ResultShowTime {
			events = e.move(sn, note, Removed, now, events)
		}
		return events
	case Removed:
		return events
	}

	switch note.Type {
	case game.Tap, game.Slide:
		return e.updateTap(sn, note, now, events)
	case game.Touch, game.SpecTouchSlide:
		return e.updateTouch(sn, note, now, events)
	case game.Hold, game.TouchHold:
		return e.updateHold(sn, note, now, events)
	case game.SlideTrack:
		return e.updateSlide(sn, note, now, events)
	case game.EndMark:
		if now >= note.Time {
			e.ended = true
			events = e.move(sn, note, Resolved, now, events)
			return e.move(sn, note, Removed, now, events)
		}
		return events
	}
	return e.move(sn, note, Removed, now, events)
}

// autoPresses reports whether the engine presses the note itself.
// Exhibition notes at free positions cannot be reached by a player.
func (e *Engine) autoPresses(note *game.Note) bool {
	if note.DoSpecJudge {
		return true
	}
	return e.auto != AutoOff && !note.IsTrap
}

func (e *Engine) judgeHead(sn *ShowingNote, note *game.Note, t time.Duration) {
	sn.Judgement = grade(t-note.Time, windowsFor(note.Type))
	sn.Judged = true
}

func (e *Engine) expire(sn *ShowingNote, note *game.Note, t time.Duration, events []NoteEvent) []NoteEvent {
	events = e.move(sn, note, Expired, t, events)
	return e.finalise(sn, note, t, events)
}

func (e *Engine) updateTap(sn *ShowingNote, note *game.Note, now time.Duration, events []NoteEvent) []NoteEvent {
	if sn.State == Emerging && now >= note.MoveTime {
		events = e.move(sn, note, Approaching, now, events)
	}
	if sn.State != Approaching {
		return events
	}
	if !sn.Judged && e.autoPresses(note) && now >= note.Time {
		e.judgeHead(sn, note, note.Time)
	}
	if sn.Judged || now > note.Time+edge(TapWindows) {
		return e.expire(sn, note, now, events)
	}
	return events
}

func (e *Engine) updateTouch(sn *ShowingNote, note *game.Note, now time.Duration, events []NoteEvent) []NoteEvent {
	if sn.State == Emerging && now >= note.MoveTime {
		events = e.move(sn, note, Approaching, now, events)
	}
	if sn.State != Approaching && sn.State != Stopped {
		return events
	}
	if !sn.Judged && e.autoPresses(note) && now >= note.Time {
		e.judgeHead(sn, note, note.Time)
	}
	if sn.Judged {
		return e.expire(sn, note, now, events)
	}
	if sn.State == Approaching && now >= note.Time {
		events = e.move(sn, note, Stopped, now, events)
	}
	if now > note.Time+edge(TouchWindows) {
		return e.expire(sn, note, now, events)
	}
	return events
}

// span is the part of [from, to) that lies on the body of a hold.
func span(note *game.Note, from, to time.Duration) time.Duration {
	if from < note.Time {
		from = note.Time
	}
	if end := note.End(); to > end {
		to = end
	}
	if to > from {
		return to - from
	}
	return 0
}

func (e *Engine) updateHold(sn *ShowingNote, note *game.Note, now time.Duration, events []NoteEvent) []NoteEvent {
	if sn.State == Emerging && now >= note.MoveTime {
		events = e.move(sn, note, Approaching, now, events)
	}
	if sn.State == Emerging {
		return events
	}

	if !sn.Judged && e.autoPresses(note) && now >= note.Time {
		e.judgeHead(sn, note, note.Time)
		sn.Pressing, sn.PressedAt = true, note.Time
	}
	if !sn.Judged && now > note.Time+edge(windowsFor(note.Type)) {
		sn.Judged = true
		sn.Judgement = game.Judgement{Grade: game.Miss, Timing: game.Late}
	}
	if sn.Judged && isShortHold(note, e.period) {
		return e.expire(sn, note, now, events)
	}

	if sn.State == Approaching && now >= note.Time {
		events = e.move(sn, note, Holding, now, events)
	}
	if sn.State == Holding && now >= note.End() {
		events = e.move(sn, note, Releasing, now, events)
	}
	if sn.State == Releasing && now >= note.End()+HoldTailTime {
		if sn.Pressing {
			sn.Held += span(note, sn.PressedAt, note.End())
			sn.Pressing = false
		}
		return e.expire(sn, note, now, events)
	}
	return events
}

func sections(note *game.Note) []game.Position {
	if nil == note.Track {
		return nil
	}
	return note.Track.Sections()
}

func (e *Engine) completeSlide(sn *ShowingNote, note *game.Note, t time.Duration) {
	j := grade(t-note.Time, SlideWindows)
	if j.Grade == game.Miss {
		j.Grade, j.Level = game.Good, 7
	}
	sn.Judgement, sn.Judged, sn.Completed = j, true, true
	if n := len(sections(note)); n > 0 {
		sn.Section = n - 1
	}
}

func (e *Engine) updateSlide(sn *ShowingNote, note *game.Note, now time.Duration, events []NoteEvent) []NoteEvent {
	if sn.State == Emerging && now >= note.GuideStarEmergeTime {
		events = e.move(sn, note, Hangup, now, events)
	}
	if sn.State == Hangup && now >= note.MoveTime {
		events = e.move(sn, note, Tracing, now, events)
	}
	if sn.State != Tracing && sn.State != Stopped {
		return events
	}

	secs := sections(note)
	auto := e.autoPresses(note) || len(secs) == 0
	if nil != note.Track {
		lines := note.Track.SlideLines
		for sn.LineIndex < len(lines) && now-note.MoveTime >= lines[sn.LineIndex].BeginTime+lines[sn.LineIndex].RemainTime {
			sn.LineIndex++
		}
	}
	if auto && !sn.Completed {
		if now >= note.Time {
			e.completeSlide(sn, note, note.Time)
		} else if note.RemainTime > 0 && len(secs) > 1 {
			k := int(float64(now-note.MoveTime) / float64(note.RemainTime) * float64(len(secs)))
			if k > len(secs)-2 {
				k = len(secs) - 2
			}
			if k > sn.Section {
				sn.Section = k
			}
		}
	}
	if sn.Completed {
		return e.expire(sn, note, now, events)
	}
	if sn.State == Tracing && now >= note.Time {
		events = e.move(sn, note, Stopped, now, events)
	}
	if now > note.Time+edge(SlideWindows) {
		return e.expire(sn, note, now, events)
	}
	return events
}

// finalise settles the grade of an expired note, applies the modifier
// overrides and hands it to the recorder.
func (e *Engine) finalise(sn *ShowingNote, note *game.Note, t time.Duration, events []NoteEvent) []NoteEvent {
	j := sn.Judgement
	if !sn.Judged {
		j = game.Judgement{Grade: game.Miss, Timing: game.Late}
	}
	switch {
	case note.Type.IsHoldType() && !isShortHold(note, e.period):
		if sn.Pressing {
			sn.Held += span(note, sn.PressedAt, t)
			sn.Pressing = false
		}
		p := holdingPercent(note, sn.Held, e.period)
		sn.HoldingPercent = p
		if p > 1 {
			sn.HoldingPercent = 1
		}
		j = holdGrade(j, p)
	case note.Type == game.SlideTrack && !sn.Completed:
		j = slideGrade(j, sn.Section, len(sections(note)))
	}
	sn.Judgement = override(note, j, e.auto)
	sn.Judged = true
	if nil != e.recorder && note.Type.IsJudged() {
		e.recorder.Record(note, sn.Judgement)
	}
	return e.move(sn, note, Resolved, t, events)
}

// covers reports whether a press at pos reaches a note placed at target.
// A button and the A sensor next to it count as the same spot.
func covers(target, pos game.Position) bool {
	if target == pos {
		return true
	}
	return target.IsRingLike() && pos.IsRingLike() && target.Index == pos.Index
}

func pressable(sn *ShowingNote, note *game.Note, in game.Input) bool {
	if sn.Judged || note.DoSpecJudge || !covers(note.Pos, in.Pos) {
		return false
	}
	switch note.Type {
	case game.Tap, game.Slide, game.Touch, game.SpecTouchSlide, game.Hold, game.TouchHold:
	default:
		return false
	}
	switch sn.State {
	case Emerging, Approaching, Stopped, Holding, Releasing:
	default:
		return false
	}
	offset := in.Time - note.Time
	if offset < 0 {
		offset = -offset
	}
	return offset <= edge(windowsFor(note.Type))
}

// Apply routes an input to Press or Release.
func (e *Engine) Apply(in game.Input) bool {
	if in.Pressed {
		return e.Press(in)
	}
	return e.Release(in)
}

// Press grades the earliest note the press can reach, then advances every
// slide it traces. Presses that reach nothing are ignored. The resulting
// events are returned by the next Advance.
func (e *Engine) Press(in game.Input) bool {
	var best *ShowingNote
	var bestNote *game.Note
	for _, sn := range e.active {
		note, err := e.note(sn)
		if nil != err {
			continue
		}
		if !pressable(sn, note, in) {
			continue
		}
		if nil == best || note.Time < bestNote.Time {
			best, bestNote = sn, note
		}
	}

	matched := false
	if nil != best {
		matched = true
		e.judgeHead(best, bestNote, in.Time)
		if bestNote.Type.IsHoldType() {
			best.Pressing, best.PressedAt = true, in.Time
			if isShortHold(bestNote, e.period) {
				e.pending = e.expire(best, bestNote, in.Time, e.pending)
			}
		} else {
			e.pending = e.expire(best, bestNote, in.Time, e.pending)
		}
	} else {
		// pressing a hold again after letting go
		for _, sn := range e.active {
			note, err := e.note(sn)
			if nil != err || !note.Type.IsHoldType() {
				continue
			}
			if sn.Judged && !sn.Pressing && sn.State < Expired && covers(note.Pos, in.Pos) && in.Time < note.End() {
				sn.Pressing, sn.PressedAt = true, in.Time
				matched = true
			}
		}
	}

	for _, sn := range e.active {
		note, err := e.note(sn)
		if nil != err || note.Type != game.SlideTrack {
			continue
		}
		if e.trace(sn, note, in) {
			matched = true
		}
	}
	return matched
}

func (e *Engine) trace(sn *ShowingNote, note *game.Note, in game.Input) bool {
	if sn.Completed || sn.Judged || e.autoPresses(note) {
		return false
	}
	switch sn.State {
	case Hangup, Tracing, Stopped:
	case Emerging:
		// a fast head press may land before the guide star shows
		if in.Time < note.GuideStarEmergeTime-edge(TapWindows) {
			return false
		}
	default:
		return false
	}
	secs := sections(note)
	for step := 1; step <= 2; step++ {
		k := sn.Section + step
		if k >= len(secs) {
			break
		}
		if covers(secs[k], in.Pos) {
			sn.Section = k
			if k == len(secs)-1 {
				e.completeSlide(sn, note, in.Time)
				e.pending = e.expire(sn, note, in.Time, e.pending)
			}
			return true
		}
	}
	return false
}

// Release stops every hold pressed at the position.
func (e *Engine) Release(in game.Input) bool {
	matched := false
	for _, sn := range e.active {
		note, err := e.note(sn)
		if nil != err || !note.Type.IsHoldType() || !sn.Pressing {
			continue
		}
		if covers(note.Pos, in.Pos) {
			sn.Held += span(note, sn.PressedAt, in.Time)
			sn.Pressing = false
			matched = true
		}
	}
	return matched
}
