package game

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type PositionKind uint8

const (
	NoPosition PositionKind = iota
	Ring                    // 1-8, the outer buttons
	Sensor                  // A1-E8 touch sensors
	Center                  // C
	Free                    // #(x,y) or @(angle,radius), exhibition charts only
)

// Position is any place a note can sit on or a press can land on.
// The zero value is "no position".
type Position struct {
	Kind  PositionKind
	Group byte  // 'A'-'E' for sensors, '#' or '@' for free points
	Index uint8 // 1-8 for ring and sensor positions

	// Free points only. For '@' X is the angle in degrees clockwise from
	// the top, normalised to [0, 360), and Y the radius. For '#' they are a
	// cartesian offset from the centre.
	X, Y float64
}

type FlipMode uint8

const (
	FlipNone FlipMode = iota
	FlipLeftRight
	FlipUpDown
	FlipRotate
)

var flipModeNames = map[string]FlipMode{
	"none":   FlipNone,
	"lr":     FlipLeftRight,
	"ud":     FlipUpDown,
	"rotate": FlipRotate,
}

func ParseFlipMode(s string) (FlipMode, error) {
	m, ok := flipModeNames[strings.ToLower(s)]
	if !ok {
		return FlipNone, errors.Errorf("unknown flip mode %q", s)
	}
	return m, nil
}

func RingPosition(i uint8) Position {
	return Position{Kind: Ring, Index: i}
}

func SensorPosition(group byte, i uint8) Position {
	return Position{Kind: Sensor, Group: group, Index: i}
}

var CenterPosition = Position{Kind: Center, Group: 'C'}

func isRingDigit(c byte) bool {
	return c >= '1' && c <= '8'
}

func isSensorGroup(c byte) bool {
	return c == 'A' || c == 'B' || c == 'C' || c == 'D' || c == 'E'
}

// ParsePosition resolves a positional label. Lower case sensor letters are
// accepted, C1 and C2 collapse to C.
func ParsePosition(s string) (Position, error) {
	switch {
	case len(s) == 1 && isRingDigit(s[0]):
		return RingPosition(s[0] - '0'), nil
	case len(s) == 1 && (s[0] == 'C' || s[0] == 'c'):
		return CenterPosition, nil
	case len(s) == 2:
		g := s[0]
		if g >= 'a' && g <= 'e' {
			g -= 'a' - 'A'
		}
		if !isSensorGroup(g) {
			break
		}
		if g == 'C' {
			if s[1] == '1' || s[1] == '2' {
				return CenterPosition, nil
			}
			break
		}
		if !isRingDigit(s[1]) {
			break
		}
		return SensorPosition(g, s[1]-'0'), nil
	case len(s) > 3 && (s[0] == '#' || s[0] == '@') && s[1] == '(' && s[len(s)-1] == ')':
		parts := strings.Split(s[2:len(s)-1], ",")
		if len(parts) != 2 {
			return Position{}, errors.Errorf("free position %q needs two values", s)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if nil != err {
			return Position{}, errors.Wrapf(err, "free position %q", s)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if nil != err {
			return Position{}, errors.Wrapf(err, "free position %q", s)
		}
		if s[0] == '@' {
			x = normaliseAngle(x)
		}
		return Position{Kind: Free, Group: s[0], X: x, Y: y}, nil
	}
	return Position{}, errors.Errorf("unknown position %q", s)
}

func normaliseAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

func (p Position) IsZero() bool {
	return p.Kind == NoPosition
}

// IsRingLike reports whether the position is a numbered spot on the outer
// circle (a button or an A sensor).
func (p Position) IsRingLike() bool {
	return p.Kind == Ring || (p.Kind == Sensor && p.Group == 'A')
}

// Offset returns the ring position i steps clockwise (negative for
// counter-clockwise) keeping kind and group.
func (p Position) Offset(i int) Position {
	if p.Kind != Ring && p.Kind != Sensor {
		return p
	}
	n := (int(p.Index)-1+i)%8 + 1
	if n <= 0 {
		n += 8
	}
	p.Index = uint8(n)
	return p
}

// Distance is the clockwise step count from p to q on the ring.
func (p Position) Distance(q Position) int {
	return ((int(q.Index)-int(p.Index))%8 + 8) % 8
}

// Flip mirrors the position. Every mode is its own inverse.
func (p Position) Flip(mode FlipMode) Position {
	if mode == FlipNone {
		return p
	}
	switch p.Kind {
	case Ring, Sensor:
		i := int(p.Index)
		// D and E sensors sit between two buttons, D1 at the very top
		edge := p.Kind == Sensor && (p.Group == 'D' || p.Group == 'E')
		switch mode {
		case FlipLeftRight:
			if edge {
				i = (9-i+8)%8 + 1
			} else {
				i = 9 - i
			}
		case FlipUpDown:
			if edge {
				i = (13-i)%8 + 1
			} else {
				i = (12-i)%8 + 1
			}
		case FlipRotate:
			i = (i+3)%8 + 1
		}
		p.Index = uint8(i)
	case Free:
		if p.Group == '@' {
			switch mode {
			case FlipLeftRight:
				p.X = normaliseAngle(-p.X)
			case FlipUpDown:
				p.X = normaliseAngle(180 - p.X)
			case FlipRotate:
				p.X = normaliseAngle(p.X + 180)
			}
		} else {
			switch mode {
			case FlipLeftRight:
				p.X = -p.X
			case FlipUpDown:
				p.Y = -p.Y
			case FlipRotate:
				p.X, p.Y = -p.X, -p.Y
			}
		}
	}
	return p
}

func (p Position) String() string {
	switch p.Kind {
	case Ring:
		return strconv.Itoa(int(p.Index))
	case Sensor:
		return string(p.Group) + strconv.Itoa(int(p.Index))
	case Center:
		return "C"
	case Free:
		return string(p.Group) + "(" +
			strconv.FormatFloat(p.X, 'g', -1, 64) + "," +
			strconv.FormatFloat(p.Y, 'g', -1, 64) + ")"
	}
	return ""
}
