package config

import (
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
	"git.lost.host/meutraa/maisim/internal/judge"
	"git.lost.host/meutraa/maisim/internal/timing"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.1.0"

// Commands.
const (
	CommandParse   = "parse"
	CommandAuto    = "auto"
	CommandPlay    = "play"
	CommandReplays = "replays"
)

type Config struct {
	Command    string
	Chart      string
	Difficulty int
	Flip       game.FlipMode
	Timing     timing.Params
	Period     time.Duration
	Auto       judge.AutoMode
	Offset     time.Duration
	Database   string
	Workers    int
	Track      string
	Keys       string
	CenterKey  rune
	Hold       time.Duration
	Seek       time.Duration
	Verbose    bool
}

type values struct {
	flip, auto, center string
	charts             map[string]*string
}

func app(c *Config, v *values) *kingpin.Application {
	a := kingpin.New("maisim", "Parse, play and judge simai charts.")
	a.Version(Version)
	// usage errors come back from Parse instead of exiting
	a.Terminate(func(int) {})

	a.Flag("difficulty", "Difficulty to use, the N of inote_N. The hardest when zero").Default("0").Short('d').IntVar(&c.Difficulty)
	a.Flag("flip", "Mirror the chart: none, lr, ud or rotate").Default("none").Short('f').StringVar(&v.flip)
	a.Flag("speed-tap", "Tap and slide approach speed").Default("7.5").Short('s').Float64Var(&c.Timing.SpeedTap)
	a.Flag("speed-touch", "Touch approach speed").Default("7").Short('t').Float64Var(&c.Timing.SpeedTouch)
	a.Flag("multiplier", "Speed multiplier").Default("1.0").Short('m').Float64Var(&c.Timing.Multiplier)
	a.Flag("slide-offset", "How early slides appear, as a fraction of the tap approach").Default("0").Float64Var(&c.Timing.SlideTrackOffset)
	a.Flag("period", "Judgement tick period").Default("16666us").Short('p').DurationVar(&c.Period)
	a.Flag("auto", "Auto play: off, direct or simulated").Default("").EnumVar(&v.auto, "", "off", "direct", "simulated")
	a.Flag("offset", "Input latency, taken off every press").Default("0ms").Short('o').DurationVar(&c.Offset)
	a.Flag("db", "Replay database").Default("./scores.db").StringVar(&c.Database)
	a.Flag("workers", "Difficulties parsed at once").Default("0").IntVar(&c.Workers)
	a.Flag("verbose", "Log to stderr").Short('v').BoolVar(&c.Verbose)

	v.charts = map[string]*string{}
	help := map[string]string{
		CommandParse:   "Parse a chart and print its notes",
		CommandPlay:    "Play a chart in the terminal",
		CommandAuto:    "Watch a chart being played",
		CommandReplays: "List and re-judge the saved runs of a chart",
	}
	for _, name := range []string{CommandParse, CommandPlay, CommandAuto, CommandReplays} {
		cmd := a.Command(name, help[name])
		v.charts[name] = cmd.Arg("chart", "maidata.txt file").Required().ExistingFile()
		if name != CommandPlay && name != CommandAuto {
			continue
		}
		cmd.Flag("track", "Backing track, mp3 or ogg").ExistingFileVar(&c.Track)
		cmd.Flag("keys", "Keys for buttons 1 to 8").Default("96321478").StringVar(&c.Keys)
		cmd.Flag("center-key", "Key for the centre sensor").Default("5").StringVar(&v.center)
		cmd.Flag("hold", "How long a key stays down after its last repeat").Default("250ms").DurationVar(&c.Hold)
		cmd.Flag("seek", "Start this far in").Default("0s").DurationVar(&c.Seek)
	}
	return a
}

// ErrUsage is returned once help or the version has been printed.
var ErrUsage = errors.New("usage shown")

func asksUsage(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "--help", "--help-long", "--help-man", "--version",
			"--completion-bash", "--completion-script-bash", "--completion-script-zsh":
			return true
		}
	}
	return false
}

// Parse reads the command line, without the program name.
func Parse(args []string) (*Config, error) {
	c := &Config{}
	v := &values{}
	cmd, err := app(c, v).Parse(args)
	if asksUsage(args) {
		return nil, ErrUsage
	}
	if nil != err {
		return nil, err
	}
	chart, ok := v.charts[cmd]
	if !ok {
		// the built in help command
		return nil, ErrUsage
	}
	c.Command = cmd
	c.Chart = *chart

	if c.Flip, err = game.ParseFlipMode(v.flip); nil != err {
		return nil, err
	}

	mode := v.auto
	if mode == "" && cmd == CommandAuto {
		mode = "direct"
	}
	c.Auto, _ = judge.ParseAutoMode(mode)

	if r := []rune(v.center); len(r) > 0 {
		c.CenterKey = r[0]
	}
	if len([]rune(c.Keys)) > 8 {
		return nil, errors.Errorf("%d keys given for 8 buttons", len([]rune(c.Keys)))
	}
	if err := c.Timing.Validate(); nil != err {
		return nil, errors.Wrap(err, "invalid speed")
	}
	if c.Period <= 0 {
		return nil, errors.New("period must be positive")
	}
	return c, nil
}
