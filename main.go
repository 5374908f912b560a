package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"git.lost.host/meutraa/maisim/internal/config"
	"git.lost.host/meutraa/maisim/internal/game"
	"git.lost.host/meutraa/maisim/internal/input"
	"git.lost.host/meutraa/maisim/internal/judge"
	"git.lost.host/meutraa/maisim/internal/parser"
	"git.lost.host/meutraa/maisim/internal/render"
	"git.lost.host/meutraa/maisim/internal/score"
	"git.lost.host/meutraa/maisim/internal/session"
	"git.lost.host/meutraa/maisim/internal/theme"
	"git.lost.host/meutraa/maisim/internal/timing"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/pkg/errors"
)

// How far the playfield runs ahead of the first note.
const leadIn = 2 * time.Second

func main() {
	c, err := config.Parse(os.Args[1:])
	if err == config.ErrUsage {
		return
	}
	if nil != err {
		log.Fatalln(err)
	}
	if err := run(c); nil != err {
		log.Fatalln(err)
	}
}

func logger(c *config.Config) *log.Logger {
	if c.Verbose {
		return log.New(os.Stderr, "[maisim] ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func run(c *config.Config) error {
	// Ensure our Default implementations are used as interfaces
	var psr parser.Parser = &parser.DefaultParser{Flip: c.Flip, Workers: c.Workers}

	charts, err := psr.Parse(c.Chart)
	if nil != err {
		return err
	}
	if len(charts) == 0 {
		return errors.Errorf("%v has no charts", c.Chart)
	}
	chart, err := selectChart(charts, c.Difficulty)
	if nil != err {
		return err
	}

	switch c.Command {
	case config.CommandParse:
		printCharts(os.Stdout, charts)
		printNotes(os.Stdout, chart)
		return nil
	case config.CommandReplays:
		return replays(c, chart)
	}
	return play(c, chart)
}

// selectChart picks by inote index, the hardest chart when index is zero.
func selectChart(charts []*game.Chart, index int) (*game.Chart, error) {
	sorted := append([]*game.Chart{}, charts...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Difficulty.Index < sorted[j].Difficulty.Index
	})
	if index == 0 {
		return sorted[len(sorted)-1], nil
	}
	for _, ch := range sorted {
		if ch.Difficulty.Index == index {
			return ch, nil
		}
	}
	return nil, errors.Errorf("no inote_%d in chart", index)
}

func length(d time.Duration) string {
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).String()
}

func printCharts(w io.Writer, charts []*game.Chart) {
	if len(charts) > 0 {
		fmt.Fprintf(w, "%v - %v\n", charts[0].Title, charts[0].Artist)
	}
	for _, ch := range charts {
		s := ch.Sheet
		fmt.Fprintf(w, "%2v) %-10v %4v  %5v notes  %4v holds  %4v slides  %4v touches  %4v breaks  %v\n",
			ch.Difficulty.Index, ch.Difficulty.Name, ch.Difficulty.Level,
			humanize.Comma(s.NoteCount), s.HoldCount, s.SlideCount, s.TouchCount, s.BreakCount,
			length(s.Duration()))
	}
}

func printNotes(w io.Writer, ch *game.Chart) {
	for _, n := range ch.Sheet.Notes {
		fmt.Fprintf(w, "%10.4f  %-11v %-8v", n.Time.Seconds(), n.Type, n.Pos)
		switch {
		case n.Type == game.SlideTrack && nil != n.Track:
			fmt.Fprintf(w, " %v -> %v  %v sections", n.Track.Shape, n.Track.EndPos, len(n.Track.Sections()))
		case n.Type.IsHoldType():
			fmt.Fprintf(w, " %vs", n.RemainTime.Seconds())
		}
		if n.IsBreak {
			fmt.Fprint(w, " break")
		}
		if n.IsEx {
			fmt.Fprint(w, " ex")
		}
		if n.IsEach {
			fmt.Fprint(w, " each")
		}
		fmt.Fprintln(w)
	}
}

func printResult(w io.Writer, r *score.GameRecord) {
	fmt.Fprintf(w, "Achievement  %8.4f%%\n", r.AchievingRate())
	fmt.Fprintf(w, "DX Score     %v / %v\n", humanize.Comma(r.DXScore), humanize.Comma(r.DXScoreMax()))
	fmt.Fprintf(w, "Old Score    %v (%.2f%%)\n", humanize.Commaf(r.OldScore()), r.OldAchievingRate())
	fmt.Fprintf(w, "Max Combo    %v\n", r.MaxCombo)
	fmt.Fprintf(w, "CP %v  P %v  Gr %v  Gd %v  Miss %v  Fast %v  Late %v\n",
		r.Total.CriticalPerfect, r.Total.Perfect, r.Total.Great, r.Total.Good, r.Total.Miss,
		r.Total.Fast, r.Total.Late)
	fmt.Fprintf(w, "Mean %v  Stdev %v\n", r.Mean().Round(time.Microsecond), r.StdDev().Round(time.Microsecond))
}

func timed(c *config.Config, ch *game.Chart) (*game.Sheet, error) {
	calc := timing.Calculator{Params: c.Timing}
	return calc.Apply(ch.Sheet)
}

func play(c *config.Config, chart *game.Chart) error {
	sheet, err := timed(c, chart)
	if nil != err {
		return err
	}

	var clock session.Clock
	if c.Track != "" {
		track, closeTrack, err := session.OpenTrack(c.Track)
		if nil != err {
			return err
		}
		defer closeTrack()
		clock = track
	} else {
		start := -leadIn
		if len(sheet.Notes) > 0 && sheet.Notes[0].EmergeTime < 0 {
			start += sheet.Notes[0].EmergeTime
		}
		clock = session.NewWallClock(start)
	}

	s, err := session.New(sheet, session.Options{
		Period: c.Period,
		Auto:   c.Auto,
		Offset: c.Offset,
		Clock:  clock,
		Logger: logger(c),
	})
	if nil != err {
		return err
	}
	if c.Seek > 0 {
		s.Seek(c.Seek)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys := &input.KeyboardSource{
		Keys:      c.Keys,
		CenterKey: c.CenterKey,
		Hold:      c.Hold,
		Now:       s.Clock().Now,
		OnControl: func(ctl input.Control) {
			switch ctl {
			case input.Quit:
				cancel()
			case input.Pause:
				s.TogglePause()
			case input.Back:
				s.SeekBy(-5 * time.Second)
			case input.Forward:
				s.SeekBy(5 * time.Second)
			}
		},
	}
	if err := keys.Start(s.Queue()); nil != err {
		return err
	}
	defer func() {
		if err := keys.Stop(); nil != err {
			log.Println("unable to close keyboard", err)
		}
	}()

	var r render.Renderer = &render.DefaultRenderer{Theme: &theme.DefaultTheme{}}
	if err := r.Init(); nil != err {
		return errors.Wrap(err, "unable to set up the terminal")
	}
	s.Subscribe(r)

	err = s.Run(ctx)
	if err := r.Deinit(); nil != err {
		log.Println("unable to restore the terminal", err)
	}
	if nil != err && err != context.Canceled {
		return err
	}

	fmt.Printf("%v - %v [%v %v]\n", chart.Title, chart.Artist, chart.Difficulty.Name, chart.Difficulty.Level)
	printResult(os.Stdout, s.Record())
	if err == context.Canceled || s.Practised() || c.Command == config.CommandAuto {
		return nil
	}

	var store score.Scorer = &score.DefaultScorer{Path: c.Database}
	if err := store.Init(); nil != err {
		return err
	}
	defer store.Deinit()
	return store.Save(chart, &score.History{
		Auto:        c.Auto.String(),
		Achievement: s.Record().AchievingRate(),
		Played:      time.Now(),
		Inputs:      s.Inputs(),
	})
}

func replays(c *config.Config, chart *game.Chart) error {
	sheet, err := timed(c, chart)
	if nil != err {
		return err
	}
	var store score.Scorer = &score.DefaultScorer{Path: c.Database}
	if err := store.Init(); nil != err {
		return err
	}
	defer store.Deinit()

	histories, err := store.Load(chart)
	if nil != err {
		return err
	}
	if len(histories) == 0 {
		fmt.Println("no saved runs of", chart.Title, chart.Difficulty.Name)
		return nil
	}
	for i, h := range histories {
		auto, ok := judge.ParseAutoMode(h.Auto)
		if !ok {
			log.Println("unknown auto mode in run", h.ID, h.Auto)
			continue
		}
		r, err := session.Replay(sheet, h.Inputs, session.Options{Period: c.Period, Auto: auto, Logger: logger(c)})
		if nil != err {
			log.Println("unable to replay run", h.ID, err)
			continue
		}
		fmt.Printf("%v run, %v, %v inputs: saved %8.4f%%, judged again %8.4f%%  max combo %v\n",
			humanize.Ordinal(i+1), humanize.Time(h.Played), humanize.Comma(int64(len(h.Inputs))),
			h.Achievement, r.AchievingRate(), r.MaxCombo)
	}
	return nil
}
