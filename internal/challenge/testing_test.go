package challenge

import "math/rand/v2"

// coinRand forces the generation coin-flip while keeping a seeded source for uniform picks.
type coinRand struct {
	*rand.Rand
	coin float64
}

func (r coinRand) Float64() float64 { return r.coin }

func newCoinRand(coin float64) coinRand {
	return coinRand{Rand: rand.New(rand.NewPCG(7, 11)), coin: coin}
}

// seqRand returns scripted IntN results in order, wrapping each into [0,n).
type seqRand struct {
	ints []int
	pos  int
	coin float64
}

func (r *seqRand) Float64() float64 { return r.coin }

func (r *seqRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.pos%len(r.ints)]
	r.pos++
	return v % n
}

func threeEntryCatalog(withTemplates bool) Data {
	data := Data{
		Default: Challenge{ID: "0", Level: 1, Title: "Default", Description: "d", Category: "Well-being", Difficulty: 1, Duration: "5 min", XP: 10, FocusKey: "introspection"},
		Challenges: []Challenge{
			{ID: "101", Level: 1, Title: "A", Description: "a", Category: "Social", Difficulty: 1, Duration: "2 min", XP: 15, FocusKey: "social"},
			{ID: "102", Level: 1, Title: "B", Description: "b", Category: "Social", Difficulty: 1, Duration: "1 min", XP: 20, FocusKey: "conversation"},
			{ID: "103", Level: 1, Title: "C", Description: "c", Category: "Digital", Difficulty: 1, Duration: "5 min", XP: 15, FocusKey: "confidence"},
		},
	}
	if withTemplates {
		data.Templates = map[string][]Template{
			"social": {{
				Title:      "spontaneous interaction",
				Templates:  []string{"Greet {target}."},
				Vars:       map[string][]string{"target": {"a neighbour"}},
				Category:   "Social",
				Level:      1,
				BaseXP:     20,
				Difficulty: 1,
				Duration:   "2 min",
			}},
		}
	}
	return data
}
