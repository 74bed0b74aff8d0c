package outgunned

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/spf13/viper"
)

// Config is the bot configuration persisted in the viper-managed YAML file
// under the config directory. Secrets (public key, token) are expected to
// be filled in by the operator after the first run writes the defaults.
type Config struct {
	viper          *viper.Viper
	ConfigDir      string `mapstructure:"config_dir"`       // Current config dir
	ApplicationID  string `mapstructure:"application_id"`   // Discord application id
	PublicKey      string `mapstructure:"public_key"`       // Hex-encoded ed25519 interaction verification key
	BotToken       string `mapstructure:"bot_token"`        // Bot token for the REST API
	Address        string `mapstructure:"address"`          // Interactions endpoint bind address
	Port           string `mapstructure:"port"`             // Interactions endpoint port
	Database       string `mapstructure:"database"`         // SQLite database file name, relative to the config dir
	DefaultDiceSet string `mapstructure:"default_dice_set"` // Dice set for channels without settings
}

// VerificationKey decodes the configured interaction verification key.
func (cfg *Config) VerificationKey() (ed25519.PublicKey, error) {
	if cfg.PublicKey == "" {
		return nil, fmt.Errorf("public_key is not configured")
	}
	decoded, err := hex.DecodeString(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("decoding public_key : %w", err)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public_key has %d bytes, want %d", len(decoded), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(decoded), nil
}

// Save rewrites the configuration file from the struct.
func (cfg *Config) Save() error {
	if cfg.viper == nil {
		return fmt.Errorf("config has no backing file")
	}
	cfg.viper.Set("application_id", cfg.ApplicationID)
	cfg.viper.Set("public_key", cfg.PublicKey)
	cfg.viper.Set("bot_token", cfg.BotToken)
	cfg.viper.Set("address", cfg.Address)
	cfg.viper.Set("port", cfg.Port)
	cfg.viper.Set("database", cfg.Database)
	cfg.viper.Set("default_dice_set", cfg.DefaultDiceSet)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}
