package game

// LineSections lists the sensor areas a slide segment passes through, in
// order. Segments with an end off the outer ring only get their two ends.
func LineSections(shape SlideShape, start, turn, end Position) []Position {
	if !start.IsRingLike() || !end.IsRingLike() {
		s := []Position{}
		if start.Kind != Free {
			s = append(s, start)
		}
		if end.Kind != Free {
			s = append(s, end)
		}
		return s
	}
	s, e := SensorPosition('A', start.Index), SensorPosition('A', end.Index)
	bs, be := SensorPosition('B', start.Index), SensorPosition('B', end.Index)
	d := s.Distance(e)

	switch shape {
	case ShapeStraight:
		return straight(s, e)
	case ShapeShortArc:
		if d <= 4 {
			return walk(s, d, 1)
		}
		return walk(s, 8-d, -1)
	case ShapeArcLeft, ShapeArcRight:
		cw := shape == ShapeArcRight
		// direction is relative to which half the slide starts in
		if s.Index >= 3 && s.Index <= 6 {
			cw = !cw
		}
		if cw {
			if d == 0 {
				d = 8
			}
			return walk(s, d, 1)
		}
		ccw := (8 - d) % 8
		if ccw == 0 {
			ccw = 8
		}
		return walk(s, ccw, -1)
	case ShapeV, ShapeWifi, ShapeLoopPP, ShapeLoopQQ:
		return []Position{s, bs, CenterPosition, be, e}
	case ShapeCurveP, ShapeCurveQ:
		step := 1
		if shape == ShapeCurveP {
			step = -1
		}
		n := d
		if step < 0 {
			n = (8 - d) % 8
		}
		if n == 0 {
			n = 8
		}
		out := []Position{s}
		out = append(out, walk(bs, n, step)...)
		return append(out, e)
	case ShapeZigzagS, ShapeZigzagZ:
		step := -1
		if shape == ShapeZigzagZ {
			step = 1
		}
		return []Position{s, bs.Offset(step), CenterPosition, be.Offset(step), e}
	case ShapeTurn:
		t := SensorPosition('A', turn.Index)
		first := straight(s, t)
		return append(first, straight(t, e)[1:]...)
	}
	return []Position{s, e}
}

func straight(s, e Position) []Position {
	bs, be := SensorPosition('B', s.Index), SensorPosition('B', e.Index)
	switch s.Distance(e) {
	case 0:
		return []Position{s}
	case 1, 7:
		return []Position{s, e}
	case 4:
		return []Position{s, bs, CenterPosition, be, e}
	}
	return []Position{s, bs, be, e}
}

// walk steps n times from p, p included.
func walk(p Position, n, step int) []Position {
	out := make([]Position, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, p.Offset(i*step))
	}
	return out
}
