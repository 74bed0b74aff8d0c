package domain

import "github.com/dicemill/outgunned/dice"

// ChannelSettings holds the per-channel configuration the /settings command
// manages. Today that is just the dice set; the shape leaves room for more.
type ChannelSettings struct {
	ChannelID string   // Discord channel id (snowflake, stored as text)
	DiceSet   dice.Set // Dice skin used to render rolls in this channel
}

// ChannelRepository manages per-channel settings.
type ChannelRepository interface {
	// GetDiceSet returns the dice set configured for the channel.
	// Channels with no stored settings fall back to dice.DefaultSet.
	GetDiceSet(channelID string) (dice.Set, error)

	// SetDiceSet creates or updates the channel's dice set.
	SetDiceSet(channelID string, set dice.Set) error
}
