package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dicemill/outgunned/dice"
)

// ErrNoRoll is returned when an update targets a roll that does not exist.
var ErrNoRoll = errors.New("no roll recorded")

// RollRecord is one completed (or in-progress) action roll as stored for
// the stats surface. The full history is kept so past rolls can be
// inspected attempt by attempt.
type RollRecord struct {
	ID        uuid.UUID     // Unique id of the roll
	ChannelID string        // Channel the roll happened in
	UserID    string        // User who rolled
	History   *dice.History // Every attempt plus incurred penalties
	CreatedAt time.Time     // When the initial roll was made
}

// RollStats summarizes the recorded rolls of a channel.
type RollStats struct {
	Rolls  int64 // Total recorded rolls
	Busts  int64 // Rolls that ended in a bust
	AllIns int64 // Rolls where the user went all in
}

// RollRepository stores completed rolls and answers stats queries.
type RollRepository interface {
	// InsertRoll records a roll. The id must be set by the caller.
	InsertRoll(record RollRecord) error

	// UpdateLatestRoll replaces the stored history of the user's most
	// recent roll in the channel. Returns ErrNoRoll when the user has no
	// recorded roll there.
	UpdateLatestRoll(channelID, userID string, history *dice.History) error

	// GetRolls returns the channel's rolls, newest first, up to limit.
	GetRolls(channelID string, limit int) ([]RollRecord, error)

	// GetRollStats aggregates the channel's recorded rolls.
	GetRollStats(channelID string) (RollStats, error)
}
