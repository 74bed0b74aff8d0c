package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dicemill/outgunned/dice"
	"github.com/dicemill/outgunned/domain"
)

var _ domain.RollRepository = (*Repository)(nil)

// dbRoll represents a roll as stored in the database. The attempt history
// is serialized as JSON; the busted and all_in flags are denormalized so
// stats queries stay in SQL.
type dbRoll struct {
	ID        string    `db:"id"`
	ChannelID string    `db:"channel_id"`
	UserID    string    `db:"user_id"`
	History   string    `db:"history"`
	Busted    bool      `db:"busted"`
	AllIn     bool      `db:"all_in"`
	CreatedAt time.Time `db:"created_at"`
}

func toDomainRoll(row *dbRoll) (domain.RollRecord, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.RollRecord{}, fmt.Errorf("parsing roll id %s: %w", row.ID, err)
	}

	history := &dice.History{}
	if err := json.Unmarshal([]byte(row.History), history); err != nil {
		return domain.RollRecord{}, fmt.Errorf("unmarshalling history for roll %s: %w", row.ID, err)
	}

	return domain.RollRecord{
		ID:        id,
		ChannelID: row.ChannelID,
		UserID:    row.UserID,
		History:   history,
		CreatedAt: row.CreatedAt,
	}, nil
}

// InsertRoll implements the domain.RollRepository interface.
func (repo *Repository) InsertRoll(record domain.RollRecord) error {
	if record.History == nil {
		return fmt.Errorf("inserting roll %s: history is nil", record.ID)
	}

	marshalled, err := json.Marshal(record.History)
	if err != nil {
		return fmt.Errorf("marshalling history for roll %s: %w", record.ID, err)
	}

	wentAllIn := false
	for _, attempt := range record.History.Attempts {
		if attempt.Kind == dice.AttemptAllIn {
			wentAllIn = true
		}
	}

	query := `INSERT INTO roll(id, channel_id, user_id, history, busted, all_in, created_at)
		      VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = repo.dbConn.Exec(query,
		record.ID.String(), record.ChannelID, record.UserID,
		string(marshalled), record.History.Busted, wentAllIn, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting roll %s: %w", record.ID, err)
	}

	return nil
}

// UpdateLatestRoll implements the domain.RollRepository interface.
// The follow-up buttons carry no roll id, so the user's newest roll in the
// channel is the one refreshed.
func (repo *Repository) UpdateLatestRoll(channelID, userID string, history *dice.History) error {
	marshalled, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshalling history for channel %s: %w", channelID, err)
	}

	wentAllIn := false
	for _, attempt := range history.Attempts {
		if attempt.Kind == dice.AttemptAllIn {
			wentAllIn = true
		}
	}

	query := `UPDATE roll SET history = ?, busted = ?, all_in = ?
		      WHERE id = (SELECT id FROM roll WHERE channel_id = ? AND user_id = ?
		                  ORDER BY created_at DESC LIMIT 1)`

	result, err := repo.dbConn.Exec(query, string(marshalled), history.Busted, wentAllIn, channelID, userID)
	if err != nil {
		return fmt.Errorf("updating latest roll for channel %s: %w", channelID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for channel %s: %w", channelID, err)
	}
	if rowsAffected == 0 {
		return domain.ErrNoRoll
	}

	return nil
}

// GetRolls implements the domain.RollRepository interface.
func (repo *Repository) GetRolls(channelID string, limit int) ([]domain.RollRecord, error) {
	var rows []*dbRoll
	query := `SELECT id, channel_id, user_id, history, busted, all_in, created_at
		      FROM roll WHERE channel_id = ?
		      ORDER BY created_at DESC LIMIT ?`

	err := repo.dbConn.Select(&rows, query, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieving rolls for channel %s: %w", channelID, err)
	}

	records := make([]domain.RollRecord, len(rows))
	for i, row := range rows {
		records[i], err = toDomainRoll(row)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

// GetRollStats implements the domain.RollRepository interface.
func (repo *Repository) GetRollStats(channelID string) (domain.RollStats, error) {
	var stats domain.RollStats
	query := `SELECT COUNT(*) AS rolls,
		             COALESCE(SUM(busted), 0) AS busts,
		             COALESCE(SUM(all_in), 0) AS all_ins
		      FROM roll WHERE channel_id = ?`

	row := repo.dbConn.QueryRow(query, channelID)
	if err := row.Scan(&stats.Rolls, &stats.Busts, &stats.AllIns); err != nil {
		return domain.RollStats{}, fmt.Errorf("aggregating roll stats for channel %s: %w", channelID, err)
	}

	return stats, nil
}
