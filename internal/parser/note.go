package parser

import (
	"strconv"
	"strings"

	"git.lost.host/meutraa/maisim/internal/game"
)

// ParseNote parses one note token at the given bpm. Blank and "0" tokens
// give an Empty note. Errors are *ChartParseError with offsets relative
// to the token.
func ParseNote(token string, bpm float64, flip game.FlipMode) (*game.Note, error) {
	note := &game.Note{Serial: -1, BPM: bpm}
	s := token
	at := 0
	if strings.TrimSpace(s) == "" {
		note.Type = game.Empty
		return note, nil
	}

	// <speed;zoom;alpha|r;g;b>
	if s[0] == '<' {
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return nil, parseError(token, 0, "unterminated <...> prefix")
		}
		a, err := parseAppearance(s[1:end])
		if nil != err {
			return nil, parseError(token, 0, "%v", err)
		}
		note.Appearance = a
		s = s[end+1:]
		at += end + 1
	}

	if strings.HasPrefix(s, "-") {
		note.Reverse = true
		s = s[1:]
		at++
	}

	if strings.HasPrefix(s, "0") {
		// xx/0 marks a lone note as each
		note.Type = game.Empty
		return note, nil
	}

	matches, err := scanModifiers(s)
	if nil != err {
		return nil, reoffset(err, token, at)
	}
	mods, rest, err := applyModifiers(s, matches)
	if nil != err {
		return nil, reoffset(err, token, at)
	}
	reverse := note.Reverse
	note.Modifiers = mods
	note.Reverse = reverse
	rest = escapeFree(rest)

	if rest == "" {
		return nil, parseError(token, at, "note without a position")
	}

	switch {
	case strings.Contains(rest, "["):
		if strings.Contains(rest, "h") {
			err = parseHold(note, rest, bpm, flip, token, at)
		} else {
			err = parseSlide(note, rest, bpm, flip, token, at)
		}
	case strings.HasSuffix(rest, "h"):
		err = parseShortHold(note, rest[:len(rest)-1], flip, token, at)
	case strings.ContainsAny(rest, "]"):
		err = parseError(token, at, "unbalanced brackets")
	default:
		err = parseSingle(note, rest, flip, token, at)
	}
	if nil != err {
		return nil, err
	}
	return note, nil
}

func parseAppearance(s string) (*game.Appearance, error) {
	a := &game.Appearance{Speed: 1, Zoom: 1, Transparency: 1}
	groups := strings.Split(s, "|")
	if len(groups) > 2 {
		return nil, parseError(s, 0, "too many groups")
	}
	targets := [][]*float64{
		{&a.Speed, &a.Zoom, &a.Transparency},
		{&a.RShift, &a.GShift, &a.BShift},
	}
	for g, group := range groups {
		if group == "" {
			continue
		}
		for i, v := range strings.Split(group, ";") {
			if i >= 3 {
				return nil, parseError(s, 0, "too many values")
			}
			if v == "" {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if nil != err {
				return nil, parseError(s, 0, "%q is not a number", v)
			}
			*targets[g][i] = f
		}
	}
	return a, nil
}

// parseSingle handles taps, touches and exhibition touches.
func parseSingle(note *game.Note, s string, flip game.FlipMode, token string, at int) error {
	p, err := position(s, flip, token, at)
	if nil != err {
		return err
	}
	note.Pos = p
	switch p.Kind {
	case game.Ring:
		note.Type = game.Tap
	case game.Free:
		note.Type = game.Touch
		note.DoSpecJudge = true
	default:
		note.Type = game.Touch
	}
	return nil
}

func holdType(note *game.Note, p game.Position) {
	note.Pos = p
	if p.Kind == game.Ring {
		note.Type = game.Hold
		return
	}
	note.Type = game.TouchHold
	note.DoSpecJudge = p.Kind == game.Free
}

func parseShortHold(note *game.Note, label string, flip game.FlipMode, token string, at int) error {
	p, err := position(label, flip, token, at)
	if nil != err {
		return err
	}
	holdType(note, p)
	note.IsShortHold = true
	return nil
}

// parseHold handles "1h[4:1]", "Ch[#1.5]" and friends.
func parseHold(note *game.Note, s string, bpm float64, flip game.FlipMode, token string, at int) error {
	h := strings.IndexByte(s, 'h')
	if h < 0 || h+1 >= len(s) || s[h+1] != '[' {
		return parseError(token, at, "hold marker must be followed by [duration]")
	}
	if strings.Count(s, "[") != 1 || strings.Count(s, "]") != 1 || s[len(s)-1] != ']' {
		return parseError(token, at, "unbalanced brackets")
	}
	p, err := position(s[:h], flip, token, at)
	if nil != err {
		return err
	}
	d, err := parseDuration(s[h+2:len(s)-1], bpm)
	if nil != err {
		return parseError(token, at, "%v", err)
	}
	holdType(note, p)
	note.RemainTime = d.Remain
	note.NoteValue, note.NoteNumber = d.NoteValue, d.NoteNumber
	return nil
}

// parseSlide handles slide heads followed by one or more '*' separated
// tracks.
func parseSlide(note *game.Note, s string, bpm float64, flip game.FlipMode, token string, at int) error {
	n := 1
	switch {
	case s[0] >= '1' && s[0] <= '8':
		note.Type = game.Slide
	case s[0] == '#' || s[0] == '@':
		n = strings.IndexByte(s, ')') + 1
		note.Type = game.SpecTouchSlide
		note.DoSpecJudge = true
	default:
		_, next, ok := readLabel(s, 0)
		if !ok {
			return parseError(token, at, "slide without a head position")
		}
		n = next
		note.Type = game.SpecTouchSlide
	}
	if n <= 0 || n >= len(s) {
		return parseError(token, at, "slide without a track")
	}
	p, err := position(s[:n], flip, token, at)
	if nil != err {
		return err
	}
	note.Pos = p

	off := at + n
	for i, part := range strings.Split(s[n:], "*") {
		if part == "" {
			return parseError(token, off, "empty slide track")
		}
		body := part
		// 1-5[4:1]*1-8[4:1] repeats the head after the star
		if i > 0 && strings.HasPrefix(body, s[:n]) {
			body = body[n:]
		}
		track, err := parseSlideTrack(body, p, bpm, flip, off+len(part)-len(body))
		if nil != err {
			return relocate(err, token)
		}
		note.SlideTracks = append(note.SlideTracks, track)
		off += len(part) + 1
	}
	return nil
}

// relocate keeps the offset of an inner error but reports the whole token.
func relocate(err error, token string) error {
	if pe, ok := err.(*ChartParseError); ok {
		return parseError(token, pe.Offset, "%s", pe.Reason)
	}
	return err
}
