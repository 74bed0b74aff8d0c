package outgunned

import "github.com/dicemill/outgunned/dice"

// Application-command option types, per the Discord API.
const (
	OptionString  = 3
	OptionInteger = 4
)

// CommandChoice is a predefined value for a command option.
type CommandChoice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CommandOptionDefinition describes one argument of a slash command.
type CommandOptionDefinition struct {
	Type        int             `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Required    bool            `json:"required,omitempty"`
	MinValue    *int            `json:"min_value,omitempty"`
	MaxValue    *int            `json:"max_value,omitempty"`
	Choices     []CommandChoice `json:"choices,omitempty"`
}

// CommandDefinition is a slash command as registered with Discord.
type CommandDefinition struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Options     []CommandOptionDefinition `json:"options,omitempty"`
}

// builtinCommands names the commands extensions may not shadow.
var builtinCommands = map[string]struct{}{
	"roll": {}, "settings": {}, "coin": {}, "d6": {}, "stats": {}, "help": {},
}

// CommandDefinitions returns every command the bot answers, including the
// commands contributed by loaded extensions. The gateway package registers
// these with Discord on startup.
func (bot *Bot) CommandDefinitions() []CommandDefinition {
	minDice, maxDice := dice.MinDice, dice.MaxDice

	var setChoices []CommandChoice
	for _, set := range dice.Sets() {
		setChoices = append(setChoices, CommandChoice{Name: set.String(), Value: set.String()})
	}

	definitions := []CommandDefinition{
		{
			Name:        "roll",
			Description: "Make an Outgunned action roll",
			Options: []CommandOptionDefinition{{
				Type:        OptionInteger,
				Name:        "dice",
				Description: "Number of dice to roll",
				Required:    true,
				MinValue:    &minDice,
				MaxValue:    &maxDice,
			}},
		},
		{
			Name:        "settings",
			Description: "Configure this channel's dice set",
			Options: []CommandOptionDefinition{{
				Type:        OptionString,
				Name:        "dice_set",
				Description: "Dice skin used to render rolls",
				Required:    true,
				Choices:     setChoices,
			}},
		},
		{Name: "coin", Description: "Flip a coin"},
		{Name: "d6", Description: "Roll a single d6"},
		{Name: "stats", Description: "Roll statistics for this channel"},
		{Name: "help", Description: "Show the command overview"},
	}

	for command, runtime := range bot.Extensions {
		definitions = append(definitions, CommandDefinition{
			Name:        command,
			Description: runtime.Data.Description,
		})
	}

	return definitions
}
