package parser

import (
	"strings"
	"unicode/utf8"

	"git.lost.host/meutraa/maisim/internal/game"
)

type flag uint8

const (
	flagBreak flag = iota
	flagEx
	flagFirework
	flagTrap
	flagInvisible
	flagGhost
	flagStarTap
	flagTapStar
	flagNoTap
	flagNoTapNoTame
	flagNiseEach
)

var modifierRunes = map[rune]flag{
	'b': flagBreak,
	'x': flagEx,
	'f': flagFirework,
	'm': flagTrap,
	'i': flagInvisible,
	'g': flagGhost,
	'$': flagStarTap,
	'@': flagTapStar,
	'?': flagNoTap,
	'!': flagNoTapNoTame,
	'速': flagNiseEach,
}

// Flags that can be meant for the head, the slide, or both.
var splitFlags = map[flag]bool{
	flagBreak:     true,
	flagEx:        true,
	flagInvisible: true,
	flagGhost:     true,
}

// match is one modifier found in a token, as a byte span.
type match struct {
	flag       flag
	start, end int
}

// scanModifiers lists every modifier in the token, skipping the inside of
// free positions. An '@' directly followed by '(' opens a free position.
func scanModifiers(s string) ([]match, error) {
	matches := []match{}
	depth := 0
	for i, r := range s {
		switch {
		case r == '(':
			depth++
			continue
		case r == ')':
			depth--
			if depth < 0 {
				return nil, parseError(s, i, "unbalanced parenthesis")
			}
			continue
		case depth > 0:
			continue
		}
		f, ok := modifierRunes[r]
		if !ok {
			continue
		}
		if r == '@' && (i == 0 || strings.HasPrefix(s[i+1:], "(")) {
			continue
		}
		matches = append(matches, match{flag: f, start: i, end: i + utf8.RuneLen(r)})
	}
	if depth != 0 {
		return nil, parseError(s, len(s), "unbalanced parenthesis")
	}
	return matches, nil
}

// headLength is the length of the leading position label of a residual
// token.
func headLength(s string) int {
	if s == "" {
		return 0
	}
	switch {
	case s[0] == '#' || s[0] == '@':
		if i := strings.IndexByte(s, ')'); i >= 0 {
			return i + 1
		}
		return len(s)
	case s[0] >= '1' && s[0] <= '8':
		return 1
	case len(s) > 1 && s[1] >= '1' && s[1] <= '8':
		return 2
	}
	return 1
}

// applyModifiers turns the matches into flags and returns the token with
// every match removed. For slides, b/x/i/g are split between head and
// track: twice means both, once right after the head means the head,
// otherwise the track.
func applyModifiers(s string, matches []match) (game.Modifiers, string, error) {
	var m game.Modifiers
	slide := strings.Contains(s, "[") && !strings.Contains(s, "h")

	var residual strings.Builder
	last := 0
	for _, mt := range matches {
		residual.WriteString(s[last:mt.start])
		last = mt.end
	}
	residual.WriteString(s[last:])
	rest := residual.String()

	// The run of modifiers glued to the head, in token coordinates.
	head := headLength(rest)
	adjacentEnd := 0
	for taken, j := 0, 0; adjacentEnd < len(s) && taken < head; {
		if j < len(matches) && matches[j].start == adjacentEnd {
			adjacentEnd = matches[j].end
			j++
			continue
		}
		adjacentEnd++
		taken++
	}
	for _, mt := range matches {
		if mt.start == adjacentEnd {
			adjacentEnd = mt.end
		} else if mt.start > adjacentEnd {
			break
		}
	}

	counts := map[flag]int{}
	for _, mt := range matches {
		counts[mt.flag]++
	}

	for i, mt := range matches {
		toHead, toTrack := true, false
		if slide && splitFlags[mt.flag] {
			switch n := counts[mt.flag]; {
			case n == 2:
				toHead, toTrack = true, true
			case n == 1:
				toHead = mt.start < adjacentEnd
				toTrack = !toHead
			default:
				return m, "", parseError(s, mt.start, "modifier %q repeated %d times", s[mt.start:mt.end], n)
			}
		}
		switch mt.flag {
		case flagBreak:
			m.IsBreak = m.IsBreak || toHead
			m.TrackBreak = m.TrackBreak || toTrack
		case flagEx:
			m.IsEx = m.IsEx || toHead
			m.TrackEx = m.TrackEx || toTrack
		case flagInvisible:
			m.IsInvisible = m.IsInvisible || toHead
			m.TrackInvisible = m.TrackInvisible || toTrack
		case flagGhost:
			m.IsGhost = m.IsGhost || toHead
			m.TrackGhost = m.TrackGhost || toTrack
		case flagFirework:
			m.HasFirework = true
		case flagTrap:
			m.IsTrap = true
		case flagStarTap:
			if m.IsStarTap && matches[i-1].flag == flagStarTap && matches[i-1].end == mt.start {
				m.StarTapRotate = true
			}
			m.IsStarTap = true
		case flagTapStar:
			m.IsTapStar = true
		case flagNoTap:
			m.IsNoTapSlide = true
		case flagNoTapNoTame:
			m.IsNoTapNoTameTimeSlide = true
		case flagNiseEach:
			m.IsNiseEach = true
		}
	}
	return m, rest, nil
}

// escapeFree hides the '-' of negative numbers inside free positions from
// the slide shape tokenizer.
func escapeFree(s string) string {
	if !strings.ContainsAny(s, "#@") {
		return s
	}
	b := []byte(s)
	depth := 0
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == '(' && i > 0 && (b[i-1] == '#' || b[i-1] == '@'):
			depth++
		case b[i] == ')' && depth > 0:
			depth--
		case b[i] == '-' && depth > 0:
			b[i] = '_'
		}
	}
	return string(b)
}

func unescapeFree(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}
