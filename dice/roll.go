package dice

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// AttemptKind labels the stage of a roll history an attempt belongs to.
type AttemptKind string

const (
	AttemptInitial    AttemptKind = "initial"
	AttemptReroll     AttemptKind = "reroll"
	AttemptFreeReroll AttemptKind = "free_reroll"
	AttemptAllIn      AttemptKind = "all_in"
)

// Attempt is one stage of a roll: the full set of dice on the table after
// that stage resolved.
type Attempt struct {
	Kind AttemptKind `json:"kind"`
	Dice []int       `json:"dice"`
}

// History tracks every attempt of a single action roll together with the
// penalties incurred along the way. It carries no reference to the process
// that produced it, so it can be rebuilt from a rendered message after a
// restart.
type History struct {
	NumDice  int       `json:"num_dice"`
	Attempts []Attempt `json:"attempts"`

	// LostHighest is set when a risky re-roll failed to improve the
	// outcome, costing the highest success.
	LostHighest bool `json:"lost_highest,omitempty"`
	// Busted is set when going all in failed, forfeiting every success.
	Busted bool `json:"busted,omitempty"`
}

// Current returns the dice on the table after the latest attempt.
func (h *History) Current() []int {
	if len(h.Attempts) == 0 {
		return nil
	}
	return h.Attempts[len(h.Attempts)-1].Dice
}

// Last returns the latest attempt, or false when nothing was rolled yet.
func (h *History) Last() (Attempt, bool) {
	if len(h.Attempts) == 0 {
		return Attempt{}, false
	}
	return h.Attempts[len(h.Attempts)-1], true
}

func (h *History) has(kind AttemptKind) bool {
	for _, attempt := range h.Attempts {
		if attempt.Kind == kind {
			return true
		}
	}
	return false
}

// Outcome evaluates the latest dice and applies the recorded penalties:
// a bust forfeits every success, a lost highest success drops the best set.
func (h *History) Outcome() Outcome {
	outcome := Evaluate(h.Current())
	if h.Busted {
		var unmatched []int
		unmatched = append(unmatched, outcome.Unmatched...)
		for _, s := range outcome.Successes {
			for i := 0; i < s.Count; i++ {
				unmatched = append(unmatched, s.Face)
			}
		}
		return Outcome{Unmatched: unmatched}
	}
	if h.LostHighest && len(outcome.Successes) > 0 {
		lost := outcome.Successes[0]
		outcome.Successes = outcome.Successes[1:]
		for i := 0; i < lost.Count; i++ {
			outcome.Unmatched = append(outcome.Unmatched, lost.Face)
		}
	}
	return outcome
}

// CanReroll reports whether the risky re-roll is still on the table: once
// per roll, not after going all in, and only when there is both a success
// to protect and an unmatched die to throw again. A free re-roll does not
// consume it.
func (h *History) CanReroll() bool {
	if len(h.Attempts) == 0 || h.Busted || h.has(AttemptReroll) || h.has(AttemptAllIn) {
		return false
	}
	outcome := Evaluate(h.Current())
	return len(outcome.Successes) > 0 && len(outcome.Unmatched) > 0
}

// CanFreeReroll reports whether a free re-roll is available. It is granted
// once per roll and carries no risk, so it only needs unmatched dice.
func (h *History) CanFreeReroll() bool {
	if len(h.Attempts) == 0 || h.Busted {
		return false
	}
	if h.has(AttemptFreeReroll) || h.has(AttemptAllIn) {
		return false
	}
	return len(Evaluate(h.Current()).Unmatched) > 0
}

// CanGoAllIn reports whether going all in is allowed: only after a re-roll,
// with unmatched dice remaining, and only once.
func (h *History) CanGoAllIn() bool {
	if h.Busted || h.has(AttemptAllIn) {
		return false
	}
	if !h.has(AttemptReroll) {
		return false
	}
	return len(Evaluate(h.Current()).Unmatched) > 0
}

// Roller mutates a History according to the Outgunned rules.
type Roller struct {
	History *History
	rng     *rand.Rand
}

// ErrNumDice is returned when a roll is requested outside the 2-9 dice range.
var ErrNumDice = fmt.Errorf("action rolls take between %d and %d dice", MinDice, MaxDice)

// Gate errors returned when a follow-up action is requested that the
// history does not allow.
var (
	ErrCannotReroll     = errors.New("cannot re-roll this roll")
	ErrCannotFreeReroll = errors.New("cannot free re-roll this roll")
	ErrCannotGoAllIn    = errors.New("cannot go all in on this roll")
	ErrAlreadyRolled    = errors.New("roll already made")
)

// NewRoller prepares a roller for a fresh action roll of numDice dice.
func NewRoller(numDice int, options ...func(*Roller)) (*Roller, error) {
	if numDice < MinDice || numDice > MaxDice {
		return nil, ErrNumDice
	}
	roller := &Roller{History: &History{NumDice: numDice}}
	for _, option := range options {
		option(roller)
	}
	return roller, nil
}

// NewRollerFromHistory wraps an existing history, typically one rebuilt by
// the message parser, so follow-up actions can be applied to it.
func NewRollerFromHistory(history *History, options ...func(*Roller)) *Roller {
	roller := &Roller{History: history}
	for _, option := range options {
		option(roller)
	}
	return roller
}

// WithRand injects a deterministic source, used by tests.
func WithRand(rng *rand.Rand) func(*Roller) {
	return func(roller *Roller) {
		roller.rng = rng
	}
}

// Roll makes the initial attempt.
func (roller *Roller) Roll() error {
	if len(roller.History.Attempts) != 0 {
		return ErrAlreadyRolled
	}
	roller.History.Attempts = append(roller.History.Attempts, Attempt{
		Kind: AttemptInitial,
		Dice: rollDice(roller.rng, roller.History.NumDice),
	})
	return nil
}

// Reroll throws the unmatched dice again, keeping every matched set. If the
// outcome does not improve, the highest success is lost.
func (roller *Roller) Reroll() error {
	if !roller.History.CanReroll() {
		return ErrCannotReroll
	}
	before := Evaluate(roller.History.Current())
	roller.retryUnmatched(AttemptReroll)
	after := Evaluate(roller.History.Current())
	if Compare(after, before) <= 0 {
		roller.History.LostHighest = true
	}
	return nil
}

// FreeReroll throws the unmatched dice again with no strings attached.
func (roller *Roller) FreeReroll() error {
	if !roller.History.CanFreeReroll() {
		return ErrCannotFreeReroll
	}
	roller.retryUnmatched(AttemptFreeReroll)
	return nil
}

// AllIn throws the remaining unmatched dice one last time. Failing to
// improve forfeits every success.
func (roller *Roller) AllIn() error {
	if !roller.History.CanGoAllIn() {
		return ErrCannotGoAllIn
	}
	before := Evaluate(roller.History.Current())
	roller.retryUnmatched(AttemptAllIn)
	after := Evaluate(roller.History.Current())
	if Compare(after, before) > 0 {
		// A successful all in wipes earlier penalties: the new dice
		// stand on their own.
		roller.History.LostHighest = false
	} else {
		roller.History.Busted = true
	}
	return nil
}

func (roller *Roller) retryUnmatched(kind AttemptKind) {
	matched, unmatched := matchedDice(roller.History.Current())
	rerolled := rollDice(roller.rng, len(unmatched))
	dice := make([]int, 0, len(matched)+len(rerolled))
	dice = append(dice, matched...)
	dice = append(dice, rerolled...)
	roller.History.Attempts = append(roller.History.Attempts, Attempt{Kind: kind, Dice: dice})
}
