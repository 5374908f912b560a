package game

type Category uint8

const (
	CategoryTap Category = iota
	CategoryHold
	CategorySlide
	CategoryTouch
	CategoryBreak
)

func (c Category) String() string {
	return [...]string{"tap", "hold", "slide", "touch", "break"}[c]
}

// Weight is the number of tap-equivalents a note is worth in the
// percentage based score.
func (c Category) Weight() float64 {
	return [...]float64{1, 2, 3, 1, 5}[c]
}

// OldScore is the maximum the legacy points formula awards, break bonus
// excluded.
func (c Category) OldScore() float64 {
	return [...]float64{500, 1000, 1500, 500, 2500}[c]
}

// CategoryOf puts a note into its scoring bucket, break wins over type.
func CategoryOf(n *Note) Category {
	if n.IsBreak {
		return CategoryBreak
	}
	switch n.Type {
	case Hold, TouchHold:
		return CategoryHold
	case SlideTrack:
		return CategorySlide
	case Touch, SpecTouchSlide:
		return CategoryTouch
	}
	return CategoryTap
}
