package session

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/pkg/errors"
)

var openFile = func(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// OpenTrack decodes an mp3 or ogg file and hands it to the speaker,
// paused. The returned clock starts it. Close stops playback.
func OpenTrack(path string) (*StreamClock, func(), error) {
	f, err := openFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to open track")
	}
	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		f.Close()
		return nil, nil, errors.Errorf("unsupported track %v", path)
	}
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "unable to decode %v", path)
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/60)); nil != err {
		streamer.Close()
		return nil, nil, errors.Wrap(err, "unable to open speaker")
	}
	ctrl := &beep.Ctrl{Streamer: streamer, Paused: true}
	clock := NewStreamClock(streamer, ctrl, format.SampleRate, speakerLock{})
	speaker.Play(ctrl)

	return clock, func() {
		speaker.Lock()
		ctrl.Streamer = nil
		speaker.Unlock()
		streamer.Close()
	}, nil
}
