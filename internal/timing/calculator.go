package timing

import (
	"math"
	"sort"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
	"github.com/pkg/errors"
)

// Distances are in screen units where the judgement ring has a radius of
// 350.
const (
	MoveDistance  = 280.0 // summon line to judgement line
	TapRadius     = 30.0  // a tap grows to this size before it moves
	TouchDistance = 180.0 // touch petals converge over this distance

	TapMoveSpeed   = 1.0
	TapEmergeSpeed = 0.2
	speedFactor    = 0.07
)

type Params struct {
	SpeedTap   float64 // 1-10, the in game tap speed setting
	SpeedTouch float64 // 1-10, the in game touch speed setting
	Multiplier float64 // global speed multiplier, 1 is normal

	// How early, as a fraction of the tap approach, slide tracks appear
	// before their guide star. 0 is on the head's emergence.
	SlideTrackOffset float64
}

func DefaultParams() Params {
	return Params{
		SpeedTap:   7.5,
		SpeedTouch: 7,
		Multiplier: 1,
	}
}

func (p Params) Validate() error {
	switch {
	case p.SpeedTap <= 0 || math.IsNaN(p.SpeedTap):
		return errors.Errorf("tap speed %v must be positive", p.SpeedTap)
	case p.SpeedTouch <= 0 || math.IsNaN(p.SpeedTouch):
		return errors.Errorf("touch speed %v must be positive", p.SpeedTouch)
	case p.Multiplier <= 0 || math.IsNaN(p.Multiplier):
		return errors.Errorf("speed multiplier %v must be positive", p.Multiplier)
	case p.SlideTrackOffset < 0 || p.SlideTrackOffset > 1:
		return errors.Errorf("slide track offset %v must be within [0, 1]", p.SlideTrackOffset)
	}
	return nil
}

// Calculator derives when notes appear and start moving.
type Calculator struct {
	Params Params
}

func ms(v float64) time.Duration {
	return time.Duration(math.Round(v * float64(time.Millisecond)))
}

// travel is how long something takes to cover distance at speed units
// per millisecond.
func travel(distance, speed float64) time.Duration {
	return ms(distance / speed)
}

func (c *Calculator) tapFactor() float64 {
	return (c.Params.SpeedTap + 1) * speedFactor * c.Params.Multiplier
}

func (c *Calculator) touchFactor() float64 {
	return (c.Params.SpeedTouch + 1) * speedFactor * c.Params.Multiplier
}

// TapApproach is the time a tap spends moving to the judgement line.
func (c *Calculator) TapApproach() time.Duration {
	return travel(MoveDistance, c.tapFactor()*TapMoveSpeed)
}

// Times fills in the derived times of one note in place.
func (c *Calculator) Times(n *game.Note) {
	speed := 1.0
	if nil != n.Appearance && n.Appearance.Speed > 0 {
		speed = n.Appearance.Speed
	}
	tap, touch := c.tapFactor()*speed, c.touchFactor()*speed

	switch n.Type {
	case game.Tap, game.Hold, game.Slide:
		n.MoveTime = n.Time - travel(MoveDistance, tap*TapMoveSpeed)
		n.EmergeTime = n.MoveTime - travel(TapRadius, tap*TapEmergeSpeed)
		n.GuideStarEmergeTime = n.EmergeTime
	case game.Touch, game.TouchHold, game.SpecTouchSlide:
		n.MoveTime = n.Time - travel(TouchDistance, touch*TapMoveSpeed)
		n.EmergeTime = n.MoveTime - travel(TapRadius, touch*TapEmergeSpeed)
		n.GuideStarEmergeTime = n.EmergeTime
	case game.SlideTrack:
		n.MoveTime = n.Time - n.RemainTime
		n.GuideStarEmergeTime = n.MoveTime - n.StopTime
		if n.IsNoTapNoTameTimeSlide {
			n.GuideStarEmergeTime = n.MoveTime
		}
		lead := travel(MoveDistance, tap*TapMoveSpeed)
		n.EmergeTime = n.GuideStarEmergeTime - time.Duration(float64(lead)*(1-c.Params.SlideTrackOffset))
	default:
		n.MoveTime, n.EmergeTime, n.GuideStarEmergeTime = n.Time, n.Time, n.Time
	}
}

// Apply returns a copy of the sheet with every derived time computed and
// the notes ordered by emergence. The input sheet is left untouched, so
// a change of speed is just another call.
func (c *Calculator) Apply(sheet *game.Sheet) (*game.Sheet, error) {
	if nil == sheet {
		return nil, errors.New("no sheet to time")
	}
	if err := c.Params.Validate(); nil != err {
		return nil, err
	}

	out := *sheet
	out.Notes = make([]*game.Note, len(sheet.Notes))
	for i, n := range sheet.Notes {
		cp := *n
		c.Times(&cp)
		out.Notes[i] = &cp
	}
	sort.SliceStable(out.Notes, func(i, j int) bool {
		return out.Notes[i].EmergeTime < out.Notes[j].EmergeTime
	})

	out.Beats = make([]game.Beat, len(sheet.Beats))
	for i, b := range sheet.Beats {
		b.NoteIndexes = nil
		out.Beats[i] = b
	}
	for i, n := range out.Notes {
		n.Index = i
		if n.BeatIndex >= 0 && n.BeatIndex < len(out.Beats) {
			out.Beats[n.BeatIndex].NoteIndexes = append(out.Beats[n.BeatIndex].NoteIndexes, i)
		}
	}
	return &out, nil
}
