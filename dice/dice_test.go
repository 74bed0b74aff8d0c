package dice

import (
	"math/rand/v2"
	"testing"
)

func TestParseSet(t *testing.T) {
	t.Run("accepts known sets", func(t *testing.T) {
		for _, want := range Sets() {
			got, err := ParseSet(want.String())
			if err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}
			if got != want {
				t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, got)
			}
		}
	})

	t.Run("rejects unknown set", func(t *testing.T) {
		if _, err := ParseSet("loaded"); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestFacesRoundTrip(t *testing.T) {
	values := []int{1, 3, 3, 6}
	for _, set := range Sets() {
		rendered := set.Faces(values)
		parsed, err := ParseFaces(set, rendered)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(parsed) != len(values) {
			t.Fatalf("\nwanted:\n%d values\ngot:\n%d", len(values), len(parsed))
		}
		for i := range values {
			if parsed[i] != values[i] {
				t.Fatalf("\nwanted:\n%v\ngot:\n%v", values, parsed)
			}
		}
	}
}

func TestParseFacesRejectsGarbage(t *testing.T) {
	if _, err := ParseFaces(SetClassic, "⚀ bogus"); err == nil {
		t.Fatalf("\nwanted:\nerror\ngot:\nnil")
	}
	if _, err := ParseFaces(SetClassic, ""); err == nil {
		t.Fatalf("\nwanted:\nerror\ngot:\nnil")
	}
}

func TestEvaluate(t *testing.T) {
	t.Run("no matches", func(t *testing.T) {
		outcome := Evaluate([]int{1, 2, 3, 4})
		if len(outcome.Successes) != 0 {
			t.Fatalf("\nwanted:\nno successes\ngot:\n%v", outcome.Successes)
		}
		if len(outcome.Unmatched) != 4 {
			t.Fatalf("\nwanted:\n4 unmatched\ngot:\n%v", outcome.Unmatched)
		}
	})

	t.Run("orders successes best first", func(t *testing.T) {
		outcome := Evaluate([]int{2, 2, 5, 5, 5, 1})
		if len(outcome.Successes) != 2 {
			t.Fatalf("\nwanted:\n2 successes\ngot:\n%v", outcome.Successes)
		}
		best, _ := outcome.Best()
		if best.Face != 5 || best.Count != 3 || best.Level() != LevelCritical {
			t.Fatalf("\nwanted:\ncritical set of 5s\ngot:\n%+v", best)
		}
		if outcome.Unmatched[0] != 1 {
			t.Fatalf("\nwanted:\nunmatched [1]\ngot:\n%v", outcome.Unmatched)
		}
	})

	t.Run("levels by set size", func(t *testing.T) {
		cases := map[int]Level{2: LevelBasic, 3: LevelCritical, 4: LevelExtreme, 5: LevelImpossible, 6: LevelJackpot, 7: LevelJackpot}
		for count, want := range cases {
			got := Success{Face: 4, Count: count}.Level()
			if got != want {
				t.Fatalf("\nwanted:\n%s for %d dice\ngot:\n%s", want, count, got)
			}
		}
	})
}

func TestCompare(t *testing.T) {
	critical := Evaluate([]int{5, 5, 5})
	pair := Evaluate([]int{5, 5, 1})
	twoPairs := Evaluate([]int{5, 5, 2, 2})
	nothing := Evaluate([]int{1, 2, 3})

	if Compare(critical, pair) <= 0 {
		t.Fatalf("\nwanted:\ncritical beats pair\ngot:\n%d", Compare(critical, pair))
	}
	if Compare(critical, twoPairs) <= 0 {
		t.Fatalf("\nwanted:\none critical beats two pairs\ngot:\n%d", Compare(critical, twoPairs))
	}
	if Compare(pair, nothing) <= 0 {
		t.Fatalf("\nwanted:\npair beats nothing\ngot:\n%d", Compare(pair, nothing))
	}
	if Compare(pair, pair) != 0 {
		t.Fatalf("\nwanted:\n0\ngot:\n%d", Compare(pair, pair))
	}
}

func TestD6AndCoin(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 100; i++ {
		value := D6(rng)
		if value < 1 || value > 6 {
			t.Fatalf("\nwanted:\nvalue in 1..6\ngot:\n%d", value)
		}
	}
	// Both faces should show up over enough flips.
	heads, tails := 0, 0
	for i := 0; i < 100; i++ {
		if CoinHeads(rng) {
			heads++
		} else {
			tails++
		}
	}
	if heads == 0 || tails == 0 {
		t.Fatalf("\nwanted:\nboth coin faces\ngot:\nheads=%d tails=%d", heads, tails)
	}
}
