package session

import (
	"io"
	"strings"
	"testing"
)

type closeCounter struct {
	io.Reader
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestOpenTrackClosesOnError(t *testing.T) {
	defer func(open func(string) (io.ReadCloser, error)) { openFile = open }(openFile)

	for _, path := range []string{"song.ogg", "song.wav"} {
		f := &closeCounter{Reader: strings.NewReader("not a track")}
		openFile = func(string) (io.ReadCloser, error) { return f, nil }
		clock, stop, err := OpenTrack(path)
		if nil == err || nil != clock || nil != stop {
			t.Error(path, "opened")
		}
		if f.closed == 0 {
			t.Error(path, "left open")
		}
	}
}
