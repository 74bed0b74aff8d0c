package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dicemill/outgunned/dice"
	"github.com/dicemill/outgunned/domain"
)

var _ domain.ChannelRepository = (*Repository)(nil)

// GetDiceSet implements the domain.ChannelRepository interface.
// Channels without a stored row fall back to dice.DefaultSet.
func (repo *Repository) GetDiceSet(channelID string) (dice.Set, error) {
	var stored string
	query := `SELECT dice_set FROM channel WHERE channel_id = ?`

	err := repo.dbConn.Get(&stored, query, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return dice.DefaultSet, nil
	}
	if err != nil {
		return "", fmt.Errorf("getting dice set for channel %s: %w", channelID, err)
	}

	set, err := dice.ParseSet(stored)
	if err != nil {
		return "", fmt.Errorf("stored dice set for channel %s: %w", channelID, err)
	}
	return set, nil
}

// SetDiceSet implements the domain.ChannelRepository interface.
// It creates the channel row on first use and updates it afterwards.
func (repo *Repository) SetDiceSet(channelID string, set dice.Set) error {
	query := `INSERT INTO channel(channel_id, dice_set)
		      VALUES (?, ?)
		      ON CONFLICT(channel_id) DO UPDATE SET dice_set=excluded.dice_set`

	_, err := repo.dbConn.Exec(query, channelID, set.String())
	if err != nil {
		return fmt.Errorf("setting dice set for channel %s: %w", channelID, err)
	}

	return nil
}
