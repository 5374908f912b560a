package game

type Difficulty struct {
	Index   int // the N of &inote_N
	Name    string
	Level   string
	Section string
}

var DifficultyNames = map[int]string{
	1: "Easy",
	2: "Basic",
	3: "Advanced",
	4: "Expert",
	5: "Master",
	6: "Re:Master",
	7: "Original",
}
