package game

// SlideShape is the track shape letter of one slide segment.
type SlideShape string

const (
	ShapeStraight  SlideShape = "-"
	ShapeShortArc  SlideShape = "^"
	ShapeArcLeft   SlideShape = "<"
	ShapeArcRight  SlideShape = ">"
	ShapeV         SlideShape = "v"
	ShapeCurveP    SlideShape = "p"
	ShapeCurveQ    SlideShape = "q"
	ShapeZigzagS   SlideShape = "s"
	ShapeZigzagZ   SlideShape = "z"
	ShapeLoopPP    SlideShape = "pp"
	ShapeLoopQQ    SlideShape = "qq"
	ShapeWifi      SlideShape = "w"
	ShapeTurn      SlideShape = "V"
)

const shapeAlphabet = "-^<>vpqszwV"

// IsShapeByte reports whether c can start a slide shape.
func IsShapeByte(c byte) bool {
	for i := 0; i < len(shapeAlphabet); i++ {
		if shapeAlphabet[i] == c {
			return true
		}
	}
	return false
}

// Flip mirrors the handedness of the shape. '<' and '>' are relative to
// the start position, so an up-down mirror flips them twice and leaves
// them alone.
func (s SlideShape) Flip(mode FlipMode) SlideShape {
	if mode != FlipLeftRight && mode != FlipUpDown {
		return s
	}
	switch s {
	case ShapeArcLeft:
		if mode == FlipLeftRight {
			return ShapeArcRight
		}
	case ShapeArcRight:
		if mode == FlipLeftRight {
			return ShapeArcLeft
		}
	case ShapeCurveP:
		return ShapeCurveQ
	case ShapeCurveQ:
		return ShapeCurveP
	case ShapeLoopPP:
		return ShapeLoopQQ
	case ShapeLoopQQ:
		return ShapeLoopPP
	case ShapeZigzagS:
		return ShapeZigzagZ
	case ShapeZigzagZ:
		return ShapeZigzagS
	}
	return s
}
