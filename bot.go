// Package outgunned implements a Discord dice bot for the Outgunned
// tabletop RPG. It is decoupled from any particular transport: interactions
// come in through HandleInteraction and are answered synchronously, which
// is how the gateway package drives it from the HTTP interactions endpoint.
//
// The core functionality includes:
//   - Action rolls with the Outgunned success ladder and the Re-roll,
//     Free Re-roll, and All In follow-up buttons
//   - Coin flips and plain d6 rolls
//   - Per-channel dice-set settings and roll statistics in SQLite
//   - Lua-based extension system for scripted custom commands
package outgunned

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/dicemill/outgunned/dice"
	"github.com/dicemill/outgunned/domain"
	"github.com/dicemill/outgunned/extensions"
)

// Repository defines the methods consumed by the bot to interact with the
// SQLite backend. It aggregates the repository interfaces from the domain
// package.
type Repository interface {
	domain.ChannelRepository
	domain.RollRepository
	domain.LogRepository
	domain.ExtensionRepository
	Close() error
}

// Bot is the main struct that orchestrates the command controllers,
// extension runtimes, and database operations.
type Bot struct {
	ConfigDir  string                         // The configuration directory
	Config     *Config                        // The bot configuration
	Repo       Repository                     // DB Repository Interface, optional: without it nothing is persisted
	Logger     *slog.Logger                   // Structured logger
	Extensions map[string]*extensions.Runtime // Loaded extensions, keyed by command name

	defaultSet dice.Set
	rng        *rand.Rand

	roll     *RollController
	settings *SettingsController
	coin     *CoinController
	d6       *D6Controller
	stats    *StatsController
	help     *HelpController
}

// New creates a new Bot instance with default configuration and applies any
// provided options.
//
// Parameters:
//   - options: Variadic list of option functions to configure the bot
//
// Returns:
//   - *Bot: Configured bot instance
//   - error: Configuration error if any option fails
func New(options ...func(*Bot) error) (*Bot, error) {
	bot := &Bot{
		Logger:     slog.Default(),
		Extensions: make(map[string]*extensions.Runtime),
		defaultSet: dice.DefaultSet,
	}
	bot.roll = &RollController{bot: bot}
	bot.settings = &SettingsController{bot: bot}
	bot.coin = &CoinController{bot: bot}
	bot.d6 = &D6Controller{bot: bot}
	bot.stats = &StatsController{bot: bot}
	bot.help = &HelpController{bot: bot}

	err := bot.WithOptions(options...)
	if err != nil {
		return nil, err
	}
	return bot, nil
}

// HandleInteraction routes an incoming interaction to the matching
// controller and returns the synchronous response.
func (bot *Bot) HandleInteraction(interaction *Interaction) (*InteractionResponse, error) {
	switch interaction.Type {
	case InteractionPing:
		return &InteractionResponse{Type: ResponsePong}, nil
	case InteractionApplicationCommand:
		return bot.handleCommand(interaction)
	case InteractionMessageComponent:
		return bot.roll.HandleButton(interaction)
	}
	return nil, fmt.Errorf("unsupported interaction type %d", interaction.Type)
}

func (bot *Bot) handleCommand(interaction *Interaction) (*InteractionResponse, error) {
	if interaction.Data == nil {
		return nil, fmt.Errorf("command interaction has no data")
	}

	switch interaction.Data.Name {
	case "roll":
		return bot.roll.HandleRoll(interaction)
	case "settings":
		return bot.settings.HandleSettings(interaction)
	case "coin":
		return bot.coin.HandleCoin(interaction)
	case "d6":
		return bot.d6.HandleD6(interaction)
	case "stats":
		return bot.stats.HandleStats(interaction)
	case "help":
		return bot.help.HandleHelp(interaction)
	}

	if runtime, ok := bot.Extensions[interaction.Data.Name]; ok {
		return bot.handleExtensionCommand(runtime, interaction)
	}

	return nil, fmt.Errorf("unknown command %q", interaction.Data.Name)
}

func (bot *Bot) handleExtensionCommand(runtime *extensions.Runtime, interaction *Interaction) (*InteractionResponse, error) {
	ctx := extensions.CommandContext{
		Command:   interaction.Data.Name,
		ChannelID: interaction.ChannelID,
		UserID:    interaction.UserID(),
		Options:   map[string]string{},
	}
	for _, option := range interaction.Data.Options {
		if value, ok := interaction.StringOption(option.Name); ok {
			ctx.Options[option.Name] = value
		} else if value, ok := interaction.IntOption(option.Name); ok {
			ctx.Options[option.Name] = fmt.Sprintf("%d", value)
		}
	}

	content, err := runtime.HandleCommand(ctx)
	if err != nil {
		// A broken script must not take the bot down with it.
		bot.logError(fmt.Sprintf("extension %s", runtime.Data.Name), err)
		return ephemeralResponse(fmt.Sprintf("Extension %s failed.", runtime.Data.Name)), nil
	}
	return messageResponse(content, nil), nil
}

// diceSetFor returns the dice set configured for the channel, falling back
// to the default on lookup problems.
func (bot *Bot) diceSetFor(channelID string) dice.Set {
	if bot.Repo == nil {
		return bot.defaultSet
	}
	set, err := bot.Repo.GetDiceSet(channelID)
	if err != nil {
		bot.logError("looking up dice set", err)
		return bot.defaultSet
	}
	bot.Logger.Debug("resolved dice set", "channel_id", channelID, "dice_set", set)
	return set
}

func (bot *Bot) rollerOptions() []func(*dice.Roller) {
	if bot.rng == nil {
		return nil
	}
	return []func(*dice.Roller){dice.WithRand(bot.rng)}
}

func (bot *Bot) logError(context string, err error) {
	bot.Logger.Error(context, "error", err)
	if bot.Repo != nil {
		_ = bot.Repo.InsertLog(domain.Log{Level: "ERROR", Message: fmt.Sprintf("%s : %v", context, err)})
	}
}

// WriteLog implements the extensions.BotService interface: it writes to the
// structured logger and mirrors the entry into the database.
func (bot *Bot) WriteLog(level string, message string) error {
	switch level {
	case "DEBUG":
		bot.Logger.Debug(message)
	case "WARN":
		bot.Logger.Warn(message)
	case "ERROR":
		bot.Logger.Error(message)
	default:
		bot.Logger.Info(message)
	}
	if bot.Repo == nil {
		return nil
	}
	if err := bot.Repo.InsertLog(domain.Log{Level: level, Message: message}); err != nil {
		return fmt.Errorf("persisting log : %w", err)
	}
	return nil
}

// RollAction implements the extensions.BotService interface.
func (bot *Bot) RollAction(numDice int) (*dice.History, error) {
	roller, err := dice.NewRoller(numDice, bot.rollerOptions()...)
	if err != nil {
		return nil, err
	}
	if err := roller.Roll(); err != nil {
		return nil, err
	}
	return roller.History, nil
}

// RollD6 implements the extensions.BotService interface.
func (bot *Bot) RollD6() int {
	return dice.D6(bot.rng)
}

// FlipCoin implements the extensions.BotService interface.
func (bot *Bot) FlipCoin() bool {
	return dice.CoinHeads(bot.rng)
}

// DiceSetFor implements the extensions.BotService interface.
func (bot *Bot) DiceSetFor(channelID string) string {
	return bot.diceSetFor(channelID).String()
}

// Close releases the bot's resources: extension states and the repository.
func (bot *Bot) Close() error {
	for _, runtime := range bot.Extensions {
		runtime.Close()
	}
	if bot.Repo == nil {
		return nil
	}
	if err := bot.Repo.Close(); err != nil {
		return fmt.Errorf("closing repository : %w", err)
	}
	return nil
}
