// Package dice implements the Outgunned dice mechanics: six-sided action
// rolls, matched-set success evaluation, and the roll history state machine
// that gates re-rolls, free re-rolls, and going all in.
package dice

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
)

// MinDice and MaxDice bound the size of an action roll.
const (
	MinDice = 2
	MaxDice = 9
)

// Set identifies the dice skin used to render rolls in a channel.
type Set string

const (
	SetClassic Set = "classic" // unicode die faces
	SetDigits  Set = "digits"  // keycap digits
	SetPlain   Set = "plain"   // bracketed numbers
)

// DefaultSet is used for channels that have no stored setting.
const DefaultSet = SetClassic

var setFaces = map[Set][6]string{
	SetClassic: {"⚀", "⚁", "⚂", "⚃", "⚄", "⚅"},
	SetDigits:  {"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣"},
	SetPlain:   {"[1]", "[2]", "[3]", "[4]", "[5]", "[6]"},
}

// ParseSet validates the short string form of a dice set as received from
// the /settings command or a button custom id.
func ParseSet(value string) (Set, error) {
	set := Set(value)
	if _, ok := setFaces[set]; !ok {
		return "", fmt.Errorf("unknown dice set %q", value)
	}
	return set, nil
}

// Sets returns every known dice set in stable order.
func Sets() []Set {
	return []Set{SetClassic, SetDigits, SetPlain}
}

func (set Set) String() string {
	return string(set)
}

// Face renders a single die value in this set's skin.
// Values outside 1-6 fall back to the plain numeric form.
func (set Set) Face(value int) string {
	faces, ok := setFaces[set]
	if !ok || value < 1 || value > 6 {
		return fmt.Sprintf("[%d]", value)
	}
	return faces[value-1]
}

// Faces renders a slice of die values separated by spaces.
func (set Set) Faces(values []int) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = set.Face(value)
	}
	return strings.Join(parts, " ")
}

// ParseFaces is the inverse of Faces. It is used by the message parser to
// recover die values from a rendered roll line.
func ParseFaces(set Set, rendered string) ([]int, error) {
	fields := strings.Fields(rendered)
	values := make([]int, 0, len(fields))
	for _, field := range fields {
		value, err := parseFace(set, field)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no die faces in %q", rendered)
	}
	return values, nil
}

func parseFace(set Set, face string) (int, error) {
	faces, ok := setFaces[set]
	if ok {
		for i, known := range faces {
			if face == known {
				return i + 1, nil
			}
		}
	}
	// Plain fallback form, accepted for every set.
	var value int
	if _, err := fmt.Sscanf(face, "[%d]", &value); err == nil && value >= 1 && value <= 6 {
		return value, nil
	}
	return 0, fmt.Errorf("unknown die face %q for set %s", face, set)
}

// D6 rolls a single unopposed six-sided die, as used by the /d6 command.
func D6(rng *rand.Rand) int {
	return rollDie(rng)
}

// CoinHeads flips a coin for the /coin command.
func CoinHeads(rng *rand.Rand) bool {
	if rng == nil {
		return rand.IntN(2) == 0
	}
	return rng.IntN(2) == 0
}

func rollDie(rng *rand.Rand) int {
	if rng == nil {
		return rand.IntN(6) + 1
	}
	return rng.IntN(6) + 1
}

func rollDice(rng *rand.Rand, n int) []int {
	values := make([]int, n)
	for i := range values {
		values[i] = rollDie(rng)
	}
	return values
}

// Level classifies a matched set by its size.
type Level int

const (
	LevelBasic      Level = iota + 1 // pair
	LevelCritical                    // three of a kind
	LevelExtreme                     // four of a kind
	LevelImpossible                  // five of a kind
	LevelJackpot                     // six or more of a kind
)

func (level Level) String() string {
	switch level {
	case LevelBasic:
		return "Basic"
	case LevelCritical:
		return "Critical"
	case LevelExtreme:
		return "Extreme"
	case LevelImpossible:
		return "Impossible"
	case LevelJackpot:
		return "Jackpot"
	}
	return fmt.Sprintf("Level(%d)", int(level))
}

// levelFor maps a matched-set size to its success level.
func levelFor(count int) Level {
	switch {
	case count >= 6:
		return LevelJackpot
	case count == 5:
		return LevelImpossible
	case count == 4:
		return LevelExtreme
	case count == 3:
		return LevelCritical
	default:
		return LevelBasic
	}
}

// Success is a matched set of dice showing the same face.
type Success struct {
	Face  int `json:"face"`
	Count int `json:"count"`
}

// Level returns the success level implied by the set size.
func (s Success) Level() Level {
	return levelFor(s.Count)
}

// Outcome is the evaluation of a single attempt's dice.
type Outcome struct {
	Successes []Success `json:"successes,omitempty"`
	Unmatched []int     `json:"unmatched,omitempty"`
}

// Evaluate groups dice by face. Faces appearing at least twice form a
// success; the rest are unmatched. Successes are ordered best first.
func Evaluate(values []int) Outcome {
	counts := map[int]int{}
	for _, value := range values {
		counts[value]++
	}

	var outcome Outcome
	for face, count := range counts {
		if count >= 2 {
			outcome.Successes = append(outcome.Successes, Success{Face: face, Count: count})
		} else {
			outcome.Unmatched = append(outcome.Unmatched, face)
		}
	}

	sort.Slice(outcome.Successes, func(i, j int) bool {
		a, b := outcome.Successes[i], outcome.Successes[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Face > b.Face
	})
	sort.Ints(outcome.Unmatched)

	return outcome
}

// Best returns the highest success of the outcome, or false when there is none.
func (o Outcome) Best() (Success, bool) {
	if len(o.Successes) == 0 {
		return Success{}, false
	}
	return o.Successes[0], true
}

// Compare orders two outcomes by their multiset of success levels, highest
// level first. It returns a positive number when a beats b, a negative
// number when b beats a, and zero when they are equivalent.
func Compare(a, b Outcome) int {
	for level := LevelJackpot; level >= LevelBasic; level-- {
		diff := countAtLevel(a, level) - countAtLevel(b, level)
		if diff != 0 {
			return diff
		}
	}
	return 0
}

func countAtLevel(o Outcome, level Level) int {
	count := 0
	for _, s := range o.Successes {
		if s.Level() == level {
			count++
		}
	}
	return count
}

// matchedDice returns the dice belonging to a success set, face-sorted, and
// the unmatched remainder.
func matchedDice(values []int) (matched, unmatched []int) {
	counts := map[int]int{}
	for _, value := range values {
		counts[value]++
	}
	for face := 1; face <= 6; face++ {
		count := counts[face]
		if count >= 2 {
			for i := 0; i < count; i++ {
				matched = append(matched, face)
			}
		} else if count == 1 {
			unmatched = append(unmatched, face)
		}
	}
	return matched, unmatched
}
