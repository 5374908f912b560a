package parser

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// duration is the content of one [...] bracket.
type duration struct {
	Remain     time.Duration
	Stop       time.Duration // slides only, one beat unless given
	NoteValue  float64
	NoteNumber float64
}

func ms(v float64) time.Duration {
	return time.Duration(math.Round(v * float64(time.Millisecond)))
}

// beatLength is the length of count notes of the given value, 240 being
// the milliseconds*1000 of a whole note at 60 bpm.
func beatLength(bpm, value, count float64) time.Duration {
	return ms(240 * count * 1000 / (bpm * value))
}

func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if nil != err {
		return 0, errors.Errorf("%q is not a number", s)
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.Errorf("%q must be positive", s)
	}
	return v, nil
}

func parseNonNegative(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if nil != err || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.Errorf("%q is not a valid length", s)
	}
	return v, nil
}

// parseRatio reads "value:count" at the given bpm.
func parseRatio(s string, bpm float64, d *duration) error {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return errors.Errorf("%q is not value:count", s)
	}
	v, err := parsePositive(parts[0])
	if nil != err {
		return err
	}
	n, err := parsePositive(parts[1])
	if nil != err {
		return err
	}
	d.NoteValue, d.NoteNumber = v, n
	d.Remain = beatLength(bpm, v, n)
	return nil
}

// parseDuration understands
//
//	v:n  bpm#v:n  #seconds  bpm#seconds  stop##seconds  stop##v:n  stop##bpm#v:n
func parseDuration(s string, bpm float64) (duration, error) {
	var d duration
	if bpm <= 0 {
		return d, errors.New("no bpm set before the note")
	}
	d.Stop = ms(60000 / bpm)

	if i := strings.Index(s, "##"); i >= 0 {
		stop, err := parseNonNegative(s[:i])
		if nil != err {
			return d, err
		}
		rest := s[i+2:]
		if strings.Contains(rest, ":") {
			local := bpm
			if j := strings.IndexByte(rest, '#'); j >= 0 {
				if local, err = parsePositive(rest[:j]); nil != err {
					return d, err
				}
				rest = rest[j+1:]
			}
			if err := parseRatio(rest, local, &d); nil != err {
				return d, err
			}
		} else {
			sec, err := parseNonNegative(rest)
			if nil != err {
				return d, err
			}
			d.Remain = ms(sec * 1000)
		}
		d.Stop = ms(stop * 1000)
		return d, nil
	}

	if i := strings.IndexByte(s, '#'); i >= 0 {
		rest := s[i+1:]
		local := bpm
		if i > 0 {
			var err error
			if local, err = parsePositive(s[:i]); nil != err {
				return d, err
			}
			d.Stop = ms(60000 / local)
		}
		if strings.Contains(rest, ":") {
			return d, parseRatio(rest, local, &d)
		}
		sec, err := parseNonNegative(rest)
		if nil != err {
			return d, err
		}
		d.Remain = ms(sec * 1000)
		return d, nil
	}

	return d, parseRatio(s, bpm, &d)
}
