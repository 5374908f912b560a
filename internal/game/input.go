package game

import (
	"time"
)

// Input is a single press or release of a button or sensor.
type Input struct {
	Pos     Position
	Pressed bool
	Time    time.Duration // chart time of the event
}
