package main

import (
	"strings"
	"testing"

	"git.lost.host/meutraa/maisim/internal/game"
	"git.lost.host/meutraa/maisim/internal/parser"
	"git.lost.host/meutraa/maisim/internal/testdata"
)

func charts(t *testing.T) []*game.Chart {
	p := parser.DefaultParser{}
	charts, err := p.ParseMaidata(testdata.Maidata())
	if nil != err {
		t.Fatal(err)
	}
	return charts
}

func TestSelectChart(t *testing.T) {
	cs := charts(t)
	tests := map[int]string{0: "Master", 5: "Master", 2: "Basic"}
	for index, name := range tests {
		ch, err := selectChart(cs, index)
		if nil != err || ch.Difficulty.Name != name {
			t.Log("index", index, "got", ch, err)
			t.Fail()
		}
	}
	if _, err := selectChart(cs, 3); nil == err {
		t.Error("selected a missing difficulty")
	}
}

func TestPrintCharts(t *testing.T) {
	var out strings.Builder
	printCharts(&out, charts(t))
	s := out.String()
	for _, want := range []string{"Test Song - Nobody", "Basic", "12+", "Master"} {
		if !strings.Contains(s, want) {
			t.Log("missing", want)
			t.Fail()
		}
	}

	out.Reset()
	ch, _ := selectChart(charts(t), 2)
	printNotes(&out, ch)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(ch.Sheet.Notes) || !strings.Contains(out.String(), "hold") || !strings.Contains(out.String(), "each") {
		t.Log(out.String())
		t.Fail()
	}
}
