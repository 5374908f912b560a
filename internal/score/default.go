package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"log"
	"sort"
	"time"

	"git.lost.host/meutraa/maisim/internal/game"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DefaultScorer stores runs in a sqlite database.
type DefaultScorer struct {
	Path string
	db   *sql.DB
}

// InputsCompact holds every press and release of one position.
type InputsCompact struct {
	Pos      string
	Presses  []time.Duration `json:",omitempty"`
	Releases []time.Duration `json:",omitempty"`
}

func compactInputs(inputs []game.Input) []InputsCompact {
	ins := []InputsCompact{}
	at := map[game.Position]int{}
	for _, i := range inputs {
		k, ok := at[i.Pos]
		if !ok {
			k = len(ins)
			at[i.Pos] = k
			ins = append(ins, InputsCompact{Pos: i.Pos.String()})
		}
		if i.Pressed {
			ins[k].Presses = append(ins[k].Presses, i.Time)
		} else {
			ins[k].Releases = append(ins[k].Releases, i.Time)
		}
	}
	return ins
}

// uncompactInputs restores time order. A release sorts before a press at
// the same time.
func uncompactInputs(inputs []InputsCompact) ([]game.Input, error) {
	ins := []game.Input{}
	for _, i := range inputs {
		pos, err := game.ParsePosition(i.Pos)
		if nil != err {
			return nil, err
		}
		for _, t := range i.Releases {
			ins = append(ins, game.Input{Pos: pos, Time: t})
		}
		for _, t := range i.Presses {
			ins = append(ins, game.Input{Pos: pos, Pressed: true, Time: t})
		}
	}
	sort.SliceStable(ins, func(a, b int) bool {
		if ins[a].Time != ins[b].Time {
			return ins[a].Time < ins[b].Time
		}
		return !ins[a].Pressed && ins[b].Pressed
	})
	return ins, nil
}

func (s *DefaultScorer) Init() error {
	path := s.Path
	if path == "" {
		path = "./scores.db"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return errors.Wrap(err, "unable to open score database")
	}

	initStatement := `
	create table if not exists scores 
	  (
		  id integer not null primary key, 
		  sum text,
		  auto text,
		  achievement real,
		  played integer,
		  inputs bytearray
	  );
	`
	_, err = db.Exec(initStatement)
	if nil != err {
		db.Close()
		return errors.Wrap(err, "unable to create score table")
	}

	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

// Sum identifies a chart by its notation text.
func Sum(c *game.Chart) string {
	sum := sha256.Sum256([]byte(c.Difficulty.Section))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (s *DefaultScorer) Save(c *game.Chart, h *History) error {
	data, err := json.Marshal(compactInputs(h.Inputs))
	if nil != err {
		return errors.Wrap(err, "unable to marshal inputs")
	}
	played := h.Played
	if played.IsZero() {
		played = time.Now()
	}
	_, err = s.db.Exec("insert into scores(sum, auto, achievement, played, inputs) values(?, ?, ?, ?, ?)",
		Sum(c), h.Auto, h.Achievement, played.Unix(), data)
	return errors.Wrap(err, "unable to save score")
}

func (s *DefaultScorer) Load(c *game.Chart) ([]History, error) {
	histories := []History{}
	rows, err := s.db.Query("select id, sum, auto, achievement, played, inputs from scores where sum = ? order by id", Sum(c))
	if nil != err {
		if err == sql.ErrNoRows {
			return histories, nil
		}
		return histories, errors.Wrap(err, "unable to load scores")
	}
	defer rows.Close()
	for rows.Next() {
		var h History
		var played int64
		var data []byte
		if err := rows.Scan(&h.ID, &h.Sum, &h.Auto, &h.Achievement, &played, &data); nil != err {
			return histories, errors.Wrap(err, "unable to read score")
		}
		var ns []InputsCompact
		if err := json.Unmarshal(data, &ns); nil != err {
			log.Println("unable to unmarshal input history", h.ID, err)
			continue
		}
		h.Inputs, err = uncompactInputs(ns)
		if nil != err {
			log.Println("unable to restore input history", h.ID, err)
			continue
		}
		h.Played = time.Unix(played, 0)
		histories = append(histories, h)
	}
	return histories, errors.Wrap(rows.Err(), "unable to load scores")
}
