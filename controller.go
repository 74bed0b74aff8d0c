package outgunned

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/dicemill/outgunned/dice"
	"github.com/dicemill/outgunned/domain"
)

// Button actions, also the second segment of the button custom ids.
const (
	actionReroll     = "reroll"
	actionFreeReroll = "free_reroll"
	actionAllIn      = "all_in"
)

// customIDPattern matches the stable custom-id format the reroll buttons
// use: roll:<action>:user:<user_id>:dice_set:<set>. Everything a button
// needs beyond the message itself lives in its custom id, so buttons keep
// working after a restart.
var customIDPattern = regexp.MustCompile(`^roll:(reroll|free_reroll|all_in):user:([0-9]+):dice_set:(\w+)$`)

func buttonCustomID(action, userID string, set dice.Set) string {
	return fmt.Sprintf("roll:%s:user:%s:dice_set:%s", action, userID, set)
}

type buttonRef struct {
	action string
	userID string
	set    dice.Set
}

func parseButtonCustomID(customID string) (buttonRef, error) {
	match := customIDPattern.FindStringSubmatch(customID)
	if match == nil {
		return buttonRef{}, fmt.Errorf("unrecognized custom id %q", customID)
	}
	set, err := dice.ParseSet(match[3])
	if err != nil {
		return buttonRef{}, fmt.Errorf("custom id %q : %w", customID, err)
	}
	return buttonRef{action: match[1], userID: match[2], set: set}, nil
}

// rollView builds the button row for a roll, one button per action the
// history still allows. An exhausted roll gets no components at all.
func rollView(userID string, set dice.Set, history *dice.History) []Component {
	var buttons []Component
	if history.CanReroll() {
		buttons = append(buttons, Component{
			Type: ComponentButton, Style: ButtonSuccess, Label: "Re-roll",
			CustomID: buttonCustomID(actionReroll, userID, set),
		})
	}
	if history.CanFreeReroll() {
		buttons = append(buttons, Component{
			Type: ComponentButton, Style: ButtonPrimary, Label: "Free Re-roll",
			CustomID: buttonCustomID(actionFreeReroll, userID, set),
		})
	}
	if history.CanGoAllIn() {
		buttons = append(buttons, Component{
			Type: ComponentButton, Style: ButtonDanger, Label: "All In",
			CustomID: buttonCustomID(actionAllIn, userID, set),
		})
	}
	if len(buttons) == 0 {
		return nil
	}
	return []Component{{Type: ComponentActionRow, Components: buttons}}
}

// RollController handles the /roll command and its follow-up buttons.
type RollController struct {
	bot *Bot
}

// HandleRoll handles the /roll command: makes the initial roll, records it,
// and responds with the rendered history plus the follow-up buttons.
func (controller *RollController) HandleRoll(interaction *Interaction) (*InteractionResponse, error) {
	numDice, ok := interaction.IntOption("dice")
	if !ok {
		return ephemeralResponse("Tell me how many dice to roll (2-9)."), nil
	}

	roller, err := dice.NewRoller(numDice, controller.bot.rollerOptions()...)
	if err != nil {
		if errors.Is(err, dice.ErrNumDice) {
			return ephemeralResponse(err.Error()), nil
		}
		return nil, fmt.Errorf("preparing roller : %w", err)
	}
	if err := roller.Roll(); err != nil {
		return nil, fmt.Errorf("rolling : %w", err)
	}

	set := controller.bot.diceSetFor(interaction.ChannelID)
	controller.bot.recordRoll(interaction, roller.History)

	content := NewMessageGenerator(set).RollMessage(roller.History)
	return messageResponse(content, rollView(interaction.UserID(), set, roller.History)), nil
}

// HandleButton handles a press on one of the roll follow-up buttons. The
// roll history is rebuilt from the message the button sits on.
func (controller *RollController) HandleButton(interaction *Interaction) (*InteractionResponse, error) {
	ref, err := parseButtonCustomID(interaction.Data.CustomID)
	if err != nil {
		return nil, err
	}

	if ref.userID != interaction.UserID() {
		return ephemeralResponse("You cannot re-roll someone else's roll."), nil
	}

	if interaction.Message == nil || len(interaction.Message.Embeds) == 0 {
		return nil, fmt.Errorf("button interaction has no roll message")
	}

	history, err := NewMessageParser(ref.set).ParseRollMessage(interaction.Message.Embeds[0].Description)
	if err != nil {
		return nil, fmt.Errorf("parsing roll message : %w", err)
	}

	roller := dice.NewRollerFromHistory(history, controller.bot.rollerOptions()...)
	switch ref.action {
	case actionReroll:
		err = roller.Reroll()
	case actionFreeReroll:
		err = roller.FreeReroll()
	case actionAllIn:
		err = roller.AllIn()
	default:
		err = fmt.Errorf("unknown action %q", ref.action)
	}
	if err != nil {
		if errors.Is(err, dice.ErrCannotReroll) || errors.Is(err, dice.ErrCannotFreeReroll) || errors.Is(err, dice.ErrCannotGoAllIn) {
			return ephemeralResponse("That option is no longer available for this roll."), nil
		}
		return nil, fmt.Errorf("applying %s : %w", ref.action, err)
	}

	controller.bot.updateRoll(interaction, history)

	content := NewMessageGenerator(ref.set).RollMessage(history)
	return updateResponse(content, rollView(ref.userID, ref.set, history)), nil
}

// SettingsController handles the /settings command.
type SettingsController struct {
	bot *Bot
}

// HandleSettings sets the dice set for the channel. It may be used to set
// additional settings in the future.
func (controller *SettingsController) HandleSettings(interaction *Interaction) (*InteractionResponse, error) {
	value, ok := interaction.StringOption("dice_set")
	if !ok {
		return ephemeralResponse(fmt.Sprintf("Pick a dice set: %s.", setList())), nil
	}

	set, err := dice.ParseSet(value)
	if err != nil {
		return ephemeralResponse(fmt.Sprintf("Unknown dice set %q. Pick one of: %s.", value, setList())), nil
	}

	if controller.bot.Repo == nil {
		return ephemeralResponse("Channel settings are not available right now."), nil
	}

	if err := controller.bot.Repo.SetDiceSet(interaction.ChannelID, set); err != nil {
		return nil, fmt.Errorf("storing dice set : %w", err)
	}

	return messageResponse(NewMessageGenerator(set).SettingsMessage(set), nil), nil
}

// CoinController handles the /coin command.
type CoinController struct {
	bot *Bot
}

// HandleCoin responds with the result of a coin flip.
func (controller *CoinController) HandleCoin(interaction *Interaction) (*InteractionResponse, error) {
	set := controller.bot.diceSetFor(interaction.ChannelID)
	heads := dice.CoinHeads(controller.bot.rng)
	return messageResponse(NewMessageGenerator(set).CoinMessage(heads), nil), nil
}

// D6Controller handles the /d6 command.
type D6Controller struct {
	bot *Bot
}

// HandleD6 responds with the result of a single d6 roll.
func (controller *D6Controller) HandleD6(interaction *Interaction) (*InteractionResponse, error) {
	set := controller.bot.diceSetFor(interaction.ChannelID)
	value := dice.D6(controller.bot.rng)
	return messageResponse(NewMessageGenerator(set).D6Message(value), nil), nil
}

// StatsController handles the /stats command.
type StatsController struct {
	bot *Bot
}

// HandleStats responds with the channel's recorded roll statistics.
func (controller *StatsController) HandleStats(interaction *Interaction) (*InteractionResponse, error) {
	if controller.bot.Repo == nil {
		return ephemeralResponse("Roll statistics are not available right now."), nil
	}

	stats, err := controller.bot.Repo.GetRollStats(interaction.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("aggregating stats : %w", err)
	}
	set := controller.bot.diceSetFor(interaction.ChannelID)
	return messageResponse(NewMessageGenerator(set).StatsMessage(stats.Rolls, stats.Busts, stats.AllIns), nil), nil
}

// HelpController handles the /help command.
type HelpController struct {
	bot *Bot
}

// HandleHelp responds with the command overview, including any loaded
// extension commands.
func (controller *HelpController) HandleHelp(interaction *Interaction) (*InteractionResponse, error) {
	var extras []string
	for _, extension := range controller.bot.Extensions {
		extras = append(extras, fmt.Sprintf("`/%s` %s", extension.Data.Command, extension.Data.Description))
	}
	set := controller.bot.diceSetFor(interaction.ChannelID)
	return messageResponse(NewMessageGenerator(set).HelpMessage(extras), nil), nil
}

// recordRoll stores a freshly made roll. Failures are logged, never
// surfaced: the roll itself already happened. A bot without a repository
// simply does not record.
func (bot *Bot) recordRoll(interaction *Interaction, history *dice.History) {
	if bot.Repo == nil {
		return
	}
	id, err := uuid.NewV7()
	if err != nil {
		bot.logError("creating roll id", err)
		return
	}
	record := domain.RollRecord{
		ID:        id,
		ChannelID: interaction.ChannelID,
		UserID:    interaction.UserID(),
		History:   history,
		CreatedAt: time.Now().UTC(),
	}
	if err := bot.Repo.InsertRoll(record); err != nil {
		bot.logError("recording roll", err)
	}
}

// updateRoll refreshes the stored history after a follow-up action. The
// button has no roll id, so the user's latest roll in the channel is the
// one updated; a missing row (for example after a database reset) is not
// an error worth failing the interaction over.
func (bot *Bot) updateRoll(interaction *Interaction, history *dice.History) {
	if bot.Repo == nil {
		return
	}
	err := bot.Repo.UpdateLatestRoll(interaction.ChannelID, interaction.UserID(), history)
	if err != nil && !errors.Is(err, domain.ErrNoRoll) {
		bot.logError("updating roll", err)
	}
}
