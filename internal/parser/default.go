package parser

import (
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"git.lost.host/meutraa/maisim/internal/game"
	"github.com/pkg/errors"
	"github.com/remeh/sizedwaitgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// PseudoEachInterval separates the notes of a backtick group.
const PseudoEachInterval = 10 * time.Millisecond

type DefaultParser struct {
	Flip    game.FlipMode
	Workers int // difficulties parsed at once, one per cpu when zero
}

// Parse reads a maidata.txt file and returns one chart per difficulty
// that has notes.
func (p *DefaultParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, errors.Wrapf(err, "reading %s", file)
	}
	return p.ParseMaidata(data)
}

// decode strips a UTF-8 byte order mark, anything that is not UTF-8 is
// taken to be Shift-JIS.
func decode(data []byte) (string, error) {
	var dec *encoding.Decoder
	if utf8.Valid(data) {
		dec = unicode.UTF8BOM.NewDecoder()
	} else {
		dec = japanese.ShiftJIS.NewDecoder()
	}
	out, _, err := transform.Bytes(dec, data)
	if nil != err {
		return "", errors.Wrap(err, "decoding chart")
	}
	return strings.ReplaceAll(string(out), "\r", ""), nil
}

func (p *DefaultParser) ParseMaidata(data []byte) ([]*game.Chart, error) {
	str, err := decode(data)
	if nil != err {
		return nil, err
	}

	var title, artist string
	var bpm float64
	var first time.Duration
	levels := map[int]string{}
	difficulties := []game.Difficulty{}

	for _, field := range strings.Split("\n"+str, "\n&") {
		eq := strings.IndexByte(field, '=')
		if eq < 0 {
			continue
		}
		key, value := strings.TrimSpace(field[:eq]), strings.TrimSpace(field[eq+1:])
		switch {
		case key == "title":
			title = value
		case key == "artist":
			artist = value
		case key == "wholebpm":
			if bpm, err = strconv.ParseFloat(value, 64); nil != err {
				return nil, errors.Wrapf(err, "wholebpm %q", value)
			}
		case key == "first":
			f, err := strconv.ParseFloat(value, 64)
			if nil != err {
				return nil, errors.Wrapf(err, "first %q", value)
			}
			first = ms(f * 1000)
		case strings.HasPrefix(key, "lv_"):
			if n, err := strconv.Atoi(key[3:]); nil == err {
				levels[n] = value
			}
		case strings.HasPrefix(key, "inote_"):
			n, err := strconv.Atoi(key[6:])
			if nil != err || value == "" {
				continue
			}
			difficulties = append(difficulties, game.Difficulty{
				Index:   n,
				Name:    game.DifficultyNames[n],
				Section: value,
			})
		}
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	charts := make([]*game.Chart, len(difficulties))
	errs := make([]error, len(difficulties))
	wg := sizedwaitgroup.New(workers)
	for i := range difficulties {
		wg.Add()
		go func(i int) {
			defer wg.Done()
			d := difficulties[i]
			d.Level = levels[d.Index]
			sheet, err := p.ParseSheet(d.Section, first, bpm)
			if nil != err {
				errs[i] = errors.Wrapf(err, "inote_%d", d.Index)
				return
			}
			charts[i] = &game.Chart{
				Title:      title,
				Artist:     artist,
				Difficulty: d,
				Sheet:      sheet,
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if nil != err {
			return nil, err
		}
	}
	return charts, nil
}

// beatText is the note text of one beat with the chart offset of every
// byte, whitespace removed.
type beatText struct {
	s   []byte
	off []int
}

func (t *beatText) add(c byte, off int) {
	t.s = append(t.s, c)
	t.off = append(t.off, off)
}

func (t *beatText) addRange(text string, from, to int) {
	for i := from; i <= to; i++ {
		t.add(text[i], i)
	}
}

func (t *beatText) reset() {
	t.s, t.off = t.s[:0], t.off[:0]
}

func (t *beatText) last() byte {
	if len(t.s) == 0 {
		return 0
	}
	return t.s[len(t.s)-1]
}

// tokenStart reports whether the next byte begins a note token, where a
// '<' opens an appearance prefix rather than an arc slide.
func (t *beatText) tokenStart() bool {
	l := t.last()
	return l == 0 || l == '/' || l == '`'
}

func (t beatText) split(sep byte) []beatText {
	out := []beatText{}
	start := 0
	for i := 0; i <= len(t.s); i++ {
		if i == len(t.s) || t.s[i] == sep {
			out = append(out, beatText{s: t.s[start:i], off: t.off[start:i]})
			start = i + 1
		}
	}
	return out
}

// sheetBuilder is the running state while walking chart text.
type sheetBuilder struct {
	flip    game.FlipMode
	text    string
	bpm     float64
	divisor float64
	fixed   time.Duration // {#seconds}, zero when unset
	now     time.Duration
	ended   bool

	sheet *game.Sheet
	heads map[*game.Note]*game.Note // slide track note to its head
}

// ParseSheet converts the text of one difficulty into a sheet. first is
// added to every note time, bpm is used until the chart sets its own.
func (p *DefaultParser) ParseSheet(text string, first time.Duration, bpm float64) (*game.Sheet, error) {
	b := &sheetBuilder{
		flip:    p.Flip,
		text:    text,
		bpm:     bpm,
		divisor: 4,
		now:     first,
		sheet:   &game.Sheet{First: first, WholeBPM: bpm},
		heads:   map[*game.Note]*game.Note{},
	}

	var buf beatText
	for i := 0; i < len(text) && !b.ended; i++ {
		c := text[i]
		switch {
		case c == '|' && i+1 < len(text) && text[i+1] == '|':
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		case c == '(' && buf.last() != '#' && buf.last() != '@':
			end, err := b.closing(i, ')')
			if nil != err {
				return nil, err
			}
			v, err := parsePositive(text[i+1 : end])
			if nil != err {
				return nil, b.errorAt(text[i:end+1], i, "bad bpm: %v", err)
			}
			b.bpm = v
			i = end
		case c == '(':
			end, err := b.closing(i, ')')
			if nil != err {
				return nil, err
			}
			buf.addRange(text, i, end)
			i = end
		case c == '{':
			end, err := b.closing(i, '}')
			if nil != err {
				return nil, err
			}
			if err := b.setDivisor(text[i+1:end], i); nil != err {
				return nil, err
			}
			i = end
		case c == '<' && buf.tokenStart():
			end, err := b.closing(i, '>')
			if nil != err {
				return nil, err
			}
			// hi-speed directives are for the renderer only
			if len(buf.s) > 0 || !strings.HasPrefix(text[i:], "<HS") {
				buf.addRange(text, i, end)
			}
			i = end
		case c == 'E' && len(buf.s) == 0 && (i+1 >= len(text) || text[i+1] < '1' || text[i+1] > '8'):
			b.endMark()
		case c == ',':
			if err := b.beat(&buf, i); nil != err {
				return nil, err
			}
		default:
			buf.add(c, i)
		}
	}
	if len(buf.s) > 0 {
		if err := b.notes(buf); nil != err {
			return nil, err
		}
	}
	return b.finish(), nil
}

func (b *sheetBuilder) errorAt(token string, offset int, format string, args ...interface{}) error {
	return parseError(token, offset, format, args...).locate(b.text)
}

func (b *sheetBuilder) closing(i int, c byte) (int, error) {
	j := strings.IndexByte(b.text[i:], c)
	if j < 0 {
		end := i + 16
		if end > len(b.text) {
			end = len(b.text)
		}
		return 0, b.errorAt(b.text[i:end], i, "unterminated %q", b.text[i])
	}
	return i + j, nil
}

func (b *sheetBuilder) setDivisor(s string, offset int) error {
	if strings.HasPrefix(s, "#") {
		sec, err := parsePositive(s[1:])
		if nil != err {
			return b.errorAt("{"+s+"}", offset, "bad beat length: %v", err)
		}
		b.fixed = ms(sec * 1000)
		return nil
	}
	v, err := parsePositive(s)
	if nil != err {
		return b.errorAt("{"+s+"}", offset, "bad beat divisor: %v", err)
	}
	b.divisor, b.fixed = v, 0
	return nil
}

func (b *sheetBuilder) endMark() {
	b.sheet.Notes = append(b.sheet.Notes, &game.Note{
		Serial:    -1,
		Type:      game.EndMark,
		Time:      b.now,
		BPM:       b.bpm,
		BeatIndex: len(b.sheet.Beats),
	})
	b.ended = true
}

// beat closes the current beat and moves the clock on by one step.
func (b *sheetBuilder) beat(buf *beatText, offset int) error {
	if len(buf.s) > 0 {
		if err := b.notes(*buf); nil != err {
			return err
		}
		buf.reset()
	}
	b.sheet.Beats = append(b.sheet.Beats, game.Beat{
		NoteValue: b.divisor,
		BPM:       b.bpm,
		Time:      b.now,
	})
	if b.fixed > 0 {
		b.now += b.fixed
		return nil
	}
	if b.bpm <= 0 {
		return b.errorAt(",", offset, "no bpm set before the first beat")
	}
	b.now += beatLength(b.bpm, b.divisor, 1)
	return nil
}

func isEachShorthand(s []byte) bool {
	if len(s) < 2 {
		return false
	}
	for _, c := range s {
		if c < '1' || c > '8' {
			return false
		}
	}
	return true
}

// notes parses every token of one beat.
func (b *sheetBuilder) notes(buf beatText) error {
	beat := len(b.sheet.Beats)
	heads := []*game.Note{}
	empty := false

	for k, part := range buf.split('`') {
		at := b.now + time.Duration(k)*PseudoEachInterval
		for _, group := range part.split('/') {
			tokens := []beatText{group}
			if isEachShorthand(group.s) {
				tokens = tokens[:0]
				for j := range group.s {
					tokens = append(tokens, beatText{s: group.s[j : j+1], off: group.off[j : j+1]})
				}
			}
			for _, t := range tokens {
				if len(t.s) == 0 {
					continue
				}
				note, err := ParseNote(string(t.s), b.bpm, b.flip)
				if nil != err {
					return b.relocate(err, t)
				}
				if note.Type == game.Empty {
					empty = true
					continue
				}
				note.Time = at
				note.BeatIndex = beat
				note.PartNoteValue = b.divisor
				heads = append(heads, note)
				b.add(note)
			}
		}
	}

	if len(heads) > 1 || (len(heads) == 1 && empty) {
		for _, n := range heads {
			n.IsEach = true
		}
	}
	for _, n := range heads {
		if n.IsNiseEach {
			n.IsEach = true
		}
	}
	return nil
}

func (b *sheetBuilder) relocate(err error, t beatText) error {
	pe, ok := err.(*ChartParseError)
	if !ok {
		return errors.WithStack(err)
	}
	rel := pe.Offset
	if rel >= len(t.off) {
		rel = len(t.off) - 1
	}
	if rel < 0 {
		rel = 0
	}
	return b.errorAt(string(t.s), t.off[rel], "%s", pe.Reason)
}

// add puts a note on the sheet, slide heads are followed by one note per
// track.
func (b *sheetBuilder) add(note *game.Note) {
	slide := note.Type == game.Slide || note.Type == game.SpecTouchSlide
	if !slide || !(note.IsNoTapSlide || note.IsNoTapNoTameTimeSlide) {
		b.sheet.Notes = append(b.sheet.Notes, note)
	}
	if !slide {
		return
	}
	for i := range note.SlideTracks {
		tr := &note.SlideTracks[i]
		n := &game.Note{
			Serial:         -1,
			Pos:            note.Pos,
			Type:           game.SlideTrack,
			Appearance:     note.Appearance,
			NoteValue:      tr.NoteValue,
			NoteNumber:     tr.NoteNumber,
			BeatIndex:      note.BeatIndex,
			PartNoteValue:  note.PartNoteValue,
			BPM:            note.BPM,
			Time:           note.Time + tr.StopTime + tr.RemainTime,
			RemainTime:     tr.RemainTime,
			StopTime:       tr.StopTime,
			Track:          tr,
			SlideTapSerial: -1,
		}
		n.IsBreak = note.TrackBreak
		n.IsEx = note.TrackEx
		n.IsInvisible = note.TrackInvisible
		n.IsGhost = note.TrackGhost
		n.IsTrap = note.IsTrap
		n.IsNoTapSlide = note.IsNoTapSlide
		n.IsNoTapNoTameTimeSlide = note.IsNoTapNoTameTimeSlide
		for _, l := range tr.SlideLines {
			n.DoSpecJudge = n.DoSpecJudge || l.DoSpecJudge
		}
		b.heads[n] = note
		b.sheet.Notes = append(b.sheet.Notes, n)
	}
}

func (b *sheetBuilder) finish() *game.Sheet {
	s := b.sheet
	sort.SliceStable(s.Notes, func(i, j int) bool {
		return s.Notes[i].Time < s.Notes[j].Time
	})
	for i, n := range s.Notes {
		n.Index, n.Serial = i, i
	}
	for track, head := range b.heads {
		track.SlideTapSerial = head.Serial
	}
	for i, n := range s.Notes {
		if n.BeatIndex < len(s.Beats) {
			s.Beats[n.BeatIndex].NoteIndexes = append(s.Beats[n.BeatIndex].NoteIndexes, i)
		}
	}
	s.Evaluate()
	return s
}
