package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
	"git.lost.host/meutraa/maisim/internal/judge"
	"git.lost.host/meutraa/maisim/internal/timing"
)

func chartFile(t *testing.T) string {
	p := filepath.Join(t.TempDir(), "maidata.txt")
	if err := os.WriteFile(p, []byte("&inote_5=1,E\n"), 0o644); nil != err {
		t.Fatal(err)
	}
	return p
}

func TestDefaults(t *testing.T) {
	file := chartFile(t)
	c, err := Parse([]string{"parse", file})
	if nil != err {
		t.Fatal(err)
	}
	if c.Command != CommandParse || c.Chart != file || c.Flip != game.FlipNone || c.Auto != judge.AutoOff {
		t.Error("parsed", c)
	}
	if c.Timing != timing.DefaultParams() || c.Period != 16666*time.Microsecond || c.Database != "./scores.db" {
		t.Error("defaults", c.Timing, c.Period, c.Database)
	}
}

func TestCommands(t *testing.T) {
	file := chartFile(t)
	tests := map[string]struct {
		args []string
		auto judge.AutoMode
		flip game.FlipMode
	}{
		"play":           {[]string{"play", file}, judge.AutoOff, game.FlipNone},
		"auto":           {[]string{"auto", file}, judge.AutoDirect, game.FlipNone},
		"auto simulated": {[]string{"--auto", "simulated", "auto", file}, judge.AutoSimulated, game.FlipNone},
		"flipped play":   {[]string{"-f", "lr", "play", file}, judge.AutoOff, game.FlipLeftRight},
		"replays":        {[]string{"replays", "--flip=rotate", file}, judge.AutoOff, game.FlipRotate},
	}
	for name, tc := range tests {
		c, err := Parse(tc.args)
		if nil != err {
			t.Log(name, err)
			t.Fail()
			continue
		}
		if c.Auto != tc.auto || c.Flip != tc.flip || c.Chart != file {
			t.Log(name, "got", c.Auto, c.Flip, c.Chart)
			t.Fail()
		}
	}
}

func TestPlayFlags(t *testing.T) {
	file := chartFile(t)
	c, err := Parse([]string{"play", file, "--keys", "qwertyui", "--center-key", "g", "--hold", "100ms", "--seek", "30s", "-o", "15ms"})
	if nil != err {
		t.Fatal(err)
	}
	if c.Keys != "qwertyui" || c.CenterKey != 'g' || c.Hold != 100*time.Millisecond || c.Seek != 30*time.Second || c.Offset != 15*time.Millisecond {
		t.Error("play flags", c)
	}
}

func TestBadArgs(t *testing.T) {
	file := chartFile(t)
	tests := map[string][]string{
		"flip":        {"--flip", "sideways", "parse", file},
		"missing":     {"parse", filepath.Join(t.TempDir(), "none.txt")},
		"speed":       {"--speed-tap=-1", "parse", file},
		"keys":        {"play", file, "--keys", "123456789"},
		"auto":        {"--auto", "always", "play", file},
		"no command":  {},
		"flags only":  {"-v", "--flip", "lr"},
		"no chart":    {"play"},
		"slide range": {"--slide-offset", "2", "parse", file},
	}
	for name, args := range tests {
		if _, err := Parse(args); nil == err {
			t.Log(name, "accepted")
			t.Fail()
		}
	}
}

func TestUsage(t *testing.T) {
	file := chartFile(t)
	tests := map[string][]string{
		"help":         {"--help"},
		"version":      {"--version"},
		"command help": {"play", file, "--help"},
		"help command": {"help", "play"},
	}
	for name, args := range tests {
		c, err := Parse(args)
		if err != ErrUsage || nil != c {
			t.Log(name, "got", c, err)
			t.Fail()
		}
	}
}
