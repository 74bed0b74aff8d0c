package outgunned

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/viper"

	"github.com/dicemill/outgunned/dice"
	"github.com/dicemill/outgunned/domain"
	"github.com/dicemill/outgunned/extensions"
)

// WithOptions applies a series of configuration functions to the bot
// instance. Each option function can modify the bot configuration and
// return an error if it fails.
//
// Parameters:
//   - options: Variadic list of configuration functions
//
// Returns:
//   - error: First error encountered from any option function
func (bot *Bot) WithOptions(options ...func(*Bot) error) error {
	for _, option := range options {
		err := option(bot)
		if err != nil {
			return fmt.Errorf("applying option on bot : %w", err)
		}
	}
	return nil
}

// WithConfigDir configures the bot to use the specified configuration
// directory. It creates the directory if it doesn't exist and initializes
// the configuration file using Viper.
//
// Parameters:
//   - appConfigDir: Path to the configuration directory
//
// Returns:
//   - func(*Bot) error: Configuration function that sets up the config directory
func WithConfigDir(appConfigDir string) func(*Bot) error {
	return func(bot *Bot) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if os.IsNotExist(err) {
				bot.Logger.Info("creating config dir", "dir", appConfigDir)
				err := os.MkdirAll(appConfigDir, 0700)
				if err != nil {
					return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
				}
			} else {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
		}
		bot.ConfigDir = appConfigDir

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(appConfigDir)
		v.SetDefault("address", "127.0.0.1")
		v.SetDefault("port", "8194")
		v.SetDefault("database", "outgunned.db")
		v.SetDefault("default_dice_set", dice.DefaultSet.String())
		err = v.ReadInConfig()
		if err != nil {
			// need to check if the error is config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				err = v.SafeWriteConfig()
				if err != nil {
					return fmt.Errorf("writing config file : %w", err)
				}
			} else {
				return fmt.Errorf("reading config file : %w", err)
			}
		}
		bot.Config = &Config{viper: v}
		if err := v.Unmarshal(bot.Config); err != nil {
			return fmt.Errorf("unmarshalling config to struct : %w", err)
		}
		bot.Config.ConfigDir = appConfigDir

		if bot.Config.DefaultDiceSet != "" {
			set, err := dice.ParseSet(bot.Config.DefaultDiceSet)
			if err != nil {
				return fmt.Errorf("configured default dice set : %w", err)
			}
			bot.defaultSet = set
		}

		// Rewrite entire file from struct
		err = v.WriteConfig()
		if err != nil {
			return fmt.Errorf("writing config after unmarshalling : %w", err)
		}
		return nil
	}
}

// WithRepo wires the bot to its database repository.
func WithRepo(repo Repository) func(*Bot) error {
	return func(bot *Bot) error {
		if repo == nil {
			return errors.New("repository is nil")
		}
		bot.Repo = repo
		return nil
	}
}

// WithLogger sets the bot's structured logger. A nil logger leaves the
// default in place.
func WithLogger(logger *slog.Logger) func(*Bot) error {
	return func(bot *Bot) error {
		if logger == nil {
			return nil
		}
		bot.Logger = logger
		return nil
	}
}

// WithRand injects a deterministic random source, used by tests.
func WithRand(rng *rand.Rand) func(*Bot) error {
	return func(bot *Bot) error {
		bot.rng = rng
		return nil
	}
}

// WithExtension loads a single Lua extension and registers its command.
// Disabled extensions are skipped silently.
func WithExtension(data domain.Extension) func(*Bot) error {
	return func(bot *Bot) error {
		if !data.Enabled {
			return nil
		}
		if _, reserved := builtinCommands[data.Command]; reserved {
			return fmt.Errorf("extension %s : command %q is reserved", data.Name, data.Command)
		}
		if _, taken := bot.Extensions[data.Command]; taken {
			return fmt.Errorf("extension %s : command %q already registered", data.Name, data.Command)
		}

		runtime := &extensions.Runtime{Data: data}
		if err := runtime.PrepareState(bot); err != nil {
			return fmt.Errorf("preparing extension %s : %w", data.Name, err)
		}
		bot.Extensions[data.Command] = runtime
		return nil
	}
}

// WithStoredExtensions loads every enabled extension from the repository.
// It requires WithRepo to be applied first.
func WithStoredExtensions() func(*Bot) error {
	return func(bot *Bot) error {
		if bot.Repo == nil {
			return errors.New("loading stored extensions requires a repository")
		}
		stored, err := bot.Repo.GetExtensions()
		if err != nil {
			return fmt.Errorf("loading stored extensions : %w", err)
		}
		for _, data := range stored {
			if err := WithExtension(data)(bot); err != nil {
				return err
			}
		}
		return nil
	}
}
