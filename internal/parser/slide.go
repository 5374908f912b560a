package parser

import (
	"strings"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
)

// shapeRun is a tokenized run of bare shape+position pieces, e.g. "-3V57".
type shapeRun struct {
	shapes []game.SlideShape
	turns  []string
	ends   []string
}

// readLabel reads one position label starting at i.
func readLabel(s string, i int) (string, int, bool) {
	if i >= len(s) {
		return "", i, false
	}
	c := s[i]
	switch {
	case c == '#' || c == '@':
		j := strings.IndexByte(s[i:], ')')
		if j < 0 {
			return "", i, false
		}
		return s[i : i+j+1], i + j + 1, true
	case c >= '1' && c <= '8':
		return s[i : i+1], i + 1, true
	case c >= 'A' && c <= 'E':
		if i+1 < len(s) && s[i+1] >= '1' && s[i+1] <= '8' {
			return s[i : i+2], i + 2, true
		}
		if c == 'C' {
			return s[i : i+1], i + 1, true
		}
	}
	return "", i, false
}

// tokenizeShapes splits a run like "pp3w6V57-3" into parallel shape,
// turn and end slices. A position that is not a valid label, such as a
// stray 'p', is an error rather than a guess.
func tokenizeShapes(s string) (shapeRun, error) {
	var run shapeRun
	for i := 0; i < len(s); {
		c := s[i]
		if !game.IsShapeByte(c) {
			return run, parseError(s, i, "unknown slide shape %q", string(c))
		}
		shape := game.SlideShape(s[i : i+1])
		i++
		if (c == 'p' || c == 'q') && i < len(s) && s[i] == c {
			shape = game.SlideShape(s[i-1 : i+1])
			i++
		}
		turn := ""
		if shape == game.ShapeTurn {
			var ok bool
			if turn, i, ok = readLabel(s, i); !ok {
				return run, parseError(s, i, "turn slide needs a turn position")
			}
		}
		end, next, ok := readLabel(s, i)
		if !ok {
			return run, parseError(s, i, "slide shape %q needs an end position", string(shape))
		}
		i = next
		run.shapes = append(run.shapes, shape)
		run.turns = append(run.turns, turn)
		run.ends = append(run.ends, end)
	}
	return run, nil
}

func position(label string, flip game.FlipMode, token string, offset int) (game.Position, error) {
	p, err := game.ParsePosition(unescapeFree(label))
	if nil != err {
		return p, parseError(token, offset, "%v", err)
	}
	return p.Flip(flip), nil
}

// validateLine rejects shapes that cannot be drawn between two ring
// positions.
func validateLine(shape game.SlideShape, start, turn, end game.Position) string {
	if !start.IsRingLike() || !end.IsRingLike() {
		return ""
	}
	d := start.Distance(end)
	switch shape {
	case game.ShapeStraight:
		if d == 0 {
			return "straight slide to its own start"
		}
	case game.ShapeShortArc, game.ShapeV:
		if d == 0 || d == 4 {
			return "ambiguous " + string(shape) + " slide"
		}
	case game.ShapeZigzagS, game.ShapeZigzagZ, game.ShapeWifi:
		if d != 4 {
			return string(shape) + " slide must end opposite its start"
		}
	case game.ShapeTurn:
		if !turn.IsRingLike() {
			return "turn slide needs a ring turn position"
		}
		if t := start.Distance(turn); t != 2 && t != 6 {
			return "turn position must be two away from the start"
		}
		if turn == end {
			return "turn slide ends on its turn position"
		}
	}
	return ""
}

func makeLine(shape game.SlideShape, start, turn, end game.Position) game.SlideLine {
	return game.SlideLine{
		Shape:       shape,
		Pos:         start,
		TurnPos:     turn,
		EndPos:      end,
		Sections:    game.LineSections(shape, start, turn, end),
		DoSpecJudge: !(start.IsRingLike() && end.IsRingLike()),
	}
}

// bracket splits "shapes[content]" and checks nothing trails the bracket.
func bracket(seg string, offset int) (string, string, error) {
	open := strings.IndexByte(seg, '[')
	shut := strings.IndexByte(seg, ']')
	if open < 0 || shut < 0 || shut < open || shut != len(seg)-1 {
		return "", "", parseError(seg, offset, "slide needs one trailing [duration]")
	}
	return seg[:open], seg[open+1 : shut], nil
}

// parseSlideLine parses one bracketed segment such as "-5[4:1]" or
// "V35[8:1]".
func parseSlideLine(seg string, start game.Position, bpm float64, flip game.FlipMode, offset int) (game.Track, error) {
	var track game.Track
	shapes, content, err := bracket(seg, offset)
	if nil != err {
		return track, err
	}
	run, err := tokenizeShapes(shapes)
	if nil != err {
		return track, reoffset(err, seg, offset)
	}
	if len(run.shapes) != 1 {
		return track, parseError(seg, offset, "expected one slide shape, found %d", len(run.shapes))
	}
	d, err := parseDuration(content, bpm)
	if nil != err {
		return track, parseError(seg, offset, "%v", err)
	}

	shape := run.shapes[0].Flip(flip)
	end, err := position(run.ends[0], flip, seg, offset)
	if nil != err {
		return track, err
	}
	var turn game.Position
	if run.turns[0] != "" {
		if turn, err = position(run.turns[0], flip, seg, offset); nil != err {
			return track, err
		}
	}
	if reason := validateLine(shape, start, turn, end); reason != "" {
		return track, parseError(seg, offset, "%s", reason)
	}

	line := makeLine(shape, start, turn, end)
	line.RemainTime = d.Remain
	track = game.Track{
		Shape:      shape,
		EndPos:     end,
		TurnPos:    turn,
		NoteValue:  d.NoteValue,
		NoteNumber: d.NoteNumber,
		RemainTime: d.Remain,
		StopTime:   d.Stop,
		SlideLines: []game.SlideLine{line},
	}
	return track, nil
}

// parseSlideTrack parses everything that follows a slide head up to the
// next '*'. Both chain notations are accepted, but not mixed.
func parseSlideTrack(s string, head game.Position, bpm float64, flip game.FlipMode, offset int) (game.Track, error) {
	opens, closes := strings.Count(s, "["), strings.Count(s, "]")
	if opens != closes {
		return game.Track{}, parseError(s, offset, "unbalanced brackets")
	}
	if opens == 0 {
		return game.Track{}, parseError(s, offset, "slide without a duration")
	}
	if opens > 1 {
		return parseBracketChain(s, head, bpm, flip, offset)
	}
	shapes, _, err := bracket(s, offset)
	if nil != err {
		return game.Track{}, err
	}
	run, err := tokenizeShapes(shapes)
	if nil != err {
		return game.Track{}, reoffset(err, s, offset)
	}
	if len(run.shapes) > 1 {
		return parseCompactChain(s, run, head, bpm, flip, offset)
	}
	return parseSlideLine(s, head, bpm, flip, offset)
}

// parseBracketChain handles "-3[4:1]-5[4:1]": every segment has its own
// duration, the track's stop time is the first segment's.
func parseBracketChain(s string, head game.Position, bpm float64, flip game.FlipMode, offset int) (game.Track, error) {
	track := game.Track{IsChain: true}
	start := head
	at := offset
	for i, piece := range strings.Split(s, "]") {
		if piece == "" {
			continue
		}
		seg := piece + "]"
		if strings.Count(seg, "[") != 1 {
			return track, parseError(s, at, "unbalanced brackets")
		}
		shapes := seg[:strings.IndexByte(seg, '[')]
		if run, err := tokenizeShapes(shapes); nil == err && len(run.shapes) > 1 {
			return track, parseError(s, at, "chain mixes bracketed and compact segments")
		}
		line, err := parseSlideLine(seg, start, bpm, flip, at)
		if nil != err {
			return track, err
		}
		if i == 0 {
			track.StopTime = line.StopTime
			track.NoteValue, track.NoteNumber = line.NoteValue, line.NoteNumber
		}
		l := line.SlideLines[0]
		l.BeginTime = track.RemainTime
		track.RemainTime += l.RemainTime
		track.SlideLines = append(track.SlideLines, l)
		start = l.EndPos
		at += len(seg)
	}
	last := track.SlideLines[len(track.SlideLines)-1]
	track.Shape, track.EndPos, track.TurnPos = last.Shape, last.EndPos, last.TurnPos
	return track, nil
}

// parseCompactChain handles "-3-5[4:1]": one duration split evenly.
func parseCompactChain(s string, run shapeRun, head game.Position, bpm float64, flip game.FlipMode, offset int) (game.Track, error) {
	track := game.Track{IsChain: true}
	_, content, err := bracket(s, offset)
	if nil != err {
		return track, err
	}
	d, err := parseDuration(content, bpm)
	if nil != err {
		return track, parseError(s, offset, "%v", err)
	}
	track.NoteValue, track.NoteNumber = d.NoteValue, d.NoteNumber
	track.RemainTime, track.StopTime = d.Remain, d.Stop

	n := len(run.shapes)
	start := head
	for j := 0; j < n; j++ {
		shape := run.shapes[j].Flip(flip)
		end, err := position(run.ends[j], flip, s, offset)
		if nil != err {
			return track, err
		}
		var turn game.Position
		if run.turns[j] != "" {
			if turn, err = position(run.turns[j], flip, s, offset); nil != err {
				return track, err
			}
		}
		if reason := validateLine(shape, start, turn, end); reason != "" {
			return track, parseError(s, offset, "%s", reason)
		}
		line := makeLine(shape, start, turn, end)
		line.BeginTime = d.Remain * time.Duration(j) / time.Duration(n)
		line.RemainTime = d.Remain*time.Duration(j+1)/time.Duration(n) - line.BeginTime
		track.SlideLines = append(track.SlideLines, line)
		start = end
	}
	last := track.SlideLines[n-1]
	track.Shape, track.EndPos, track.TurnPos = last.Shape, last.EndPos, last.TurnPos
	return track, nil
}

// reoffset moves an error found inside a sub string to the token.
func reoffset(err error, token string, offset int) error {
	if pe, ok := err.(*ChartParseError); ok {
		return parseError(token, offset+pe.Offset, "%s", pe.Reason)
	}
	return err
}
