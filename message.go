package outgunned

import (
	"fmt"
	"strings"

	"github.com/dicemill/outgunned/dice"
)

// Roll messages double as the bot's persistent state: the message parser
// rebuilds the full roll history from the embed description, so the reroll
// buttons keep working across process restarts. Every line the generator
// emits below is therefore part of a small, stable format.

const (
	lineInitial    = "Roll:"
	lineReroll     = "Re-roll:"
	lineFreeReroll = "Free re-roll:"
	lineAllIn      = "All in:"
	lineResult     = "Result:"

	markLostHighest = "(highest success lost)"
	markBust        = "(bust)"
)

var linePrefixes = map[dice.AttemptKind]string{
	dice.AttemptInitial:    lineInitial,
	dice.AttemptReroll:     lineReroll,
	dice.AttemptFreeReroll: lineFreeReroll,
	dice.AttemptAllIn:      lineAllIn,
}

// MessageGenerator renders bot replies using a channel's dice set.
type MessageGenerator struct {
	Set dice.Set
}

// NewMessageGenerator returns a generator for the given dice set.
func NewMessageGenerator(set dice.Set) MessageGenerator {
	return MessageGenerator{Set: set}
}

// RollMessage renders a roll history: one line per attempt, then the
// outcome. The output is parseable by MessageParser.
func (generator MessageGenerator) RollMessage(history *dice.History) string {
	var lines []string
	for _, attempt := range history.Attempts {
		line := fmt.Sprintf("%s %s", linePrefixes[attempt.Kind], generator.Set.Faces(attempt.Dice))
		switch {
		case attempt.Kind == dice.AttemptReroll && history.LostHighest:
			line += " " + markLostHighest
		case attempt.Kind == dice.AttemptAllIn && history.Busted:
			line += " " + markBust
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", generator.resultLine(history))
	return strings.Join(lines, "\n")
}

func (generator MessageGenerator) resultLine(history *dice.History) string {
	if history.Busted {
		return fmt.Sprintf("%s **Bust!** Every success is lost.", lineResult)
	}

	outcome := history.Outcome()
	if len(outcome.Successes) == 0 {
		return fmt.Sprintf("%s no successes.", lineResult)
	}

	var parts []string
	for _, success := range outcome.Successes {
		parts = append(parts, fmt.Sprintf("**%s** (%d×%s)", success.Level(), success.Count, generator.Set.Face(success.Face)))
	}
	return fmt.Sprintf("%s %s", lineResult, strings.Join(parts, ", "))
}

// D6Message renders a plain d6 roll.
func (generator MessageGenerator) D6Message(value int) string {
	return fmt.Sprintf("You rolled %s", generator.Set.Face(value))
}

// CoinMessage renders a coin flip.
func (generator MessageGenerator) CoinMessage(heads bool) string {
	if heads {
		return "The coin comes up **Heads**."
	}
	return "The coin comes up **Tails**."
}

// SettingsMessage confirms a dice-set change.
func (generator MessageGenerator) SettingsMessage(set dice.Set) string {
	return fmt.Sprintf("Set the dice set to %s", set)
}

// StatsMessage renders a channel's roll statistics.
func (generator MessageGenerator) StatsMessage(rolls, busts, allIns int64) string {
	return fmt.Sprintf("Rolls recorded: **%d**\nAll ins: **%d**\nBusts: **%d**", rolls, allIns, busts)
}

// HelpMessage renders the command overview. Extra lines describe loaded
// extension commands.
func (generator MessageGenerator) HelpMessage(extras []string) string {
	lines := []string{
		"**Outgunned dice bot**",
		"`/roll <dice>` action roll (2-9 dice), with Re-roll, Free Re-roll and All In buttons",
		"`/coin` flip a coin",
		"`/d6` roll a single die",
		"`/stats` roll statistics for this channel",
		fmt.Sprintf("`/settings <set>` pick the dice set for this channel (%s)", setList()),
		"`/help` this message",
	}
	lines = append(lines, extras...)
	return strings.Join(lines, "\n")
}

func setList() string {
	var names []string
	for _, set := range dice.Sets() {
		names = append(names, set.String())
	}
	return strings.Join(names, ", ")
}

// MessageParser rebuilds a roll history from a rendered roll message.
type MessageParser struct {
	Set dice.Set
}

// NewMessageParser returns a parser for the given dice set.
func NewMessageParser(set dice.Set) MessageParser {
	return MessageParser{Set: set}
}

// ParseRollMessage is the inverse of MessageGenerator.RollMessage.
func (parser MessageParser) ParseRollMessage(description string) (*dice.History, error) {
	history := &dice.History{}

	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, lineResult) {
			continue
		}

		kind, rest, ok := splitAttemptLine(line)
		if !ok {
			return nil, fmt.Errorf("unrecognized roll line %q", line)
		}

		if marked := strings.TrimSuffix(rest, markLostHighest); marked != rest {
			history.LostHighest = true
			rest = marked
		}
		if marked := strings.TrimSuffix(rest, markBust); marked != rest {
			history.Busted = true
			rest = marked
		}

		values, err := dice.ParseFaces(parser.Set, rest)
		if err != nil {
			return nil, fmt.Errorf("parsing %s line : %w", kind, err)
		}
		history.Attempts = append(history.Attempts, dice.Attempt{Kind: kind, Dice: values})
	}

	if len(history.Attempts) == 0 || history.Attempts[0].Kind != dice.AttemptInitial {
		return nil, fmt.Errorf("roll message has no initial roll")
	}
	history.NumDice = len(history.Attempts[0].Dice)

	return history, nil
}

func splitAttemptLine(line string) (dice.AttemptKind, string, bool) {
	// Longer prefixes first so "Re-roll:" never matches a free re-roll.
	ordered := []dice.AttemptKind{dice.AttemptFreeReroll, dice.AttemptReroll, dice.AttemptAllIn, dice.AttemptInitial}
	for _, kind := range ordered {
		prefix := linePrefixes[kind]
		if strings.HasPrefix(line, prefix) {
			return kind, strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", "", false
}
