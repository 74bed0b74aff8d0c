package db

import (
	"fmt"
	"time"

	"github.com/dicemill/outgunned/domain"
)

var _ domain.LogRepository = (*Repository)(nil)

type dbLog struct {
	Level     string    `db:"level"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

// InsertLog implements the domain.LogRepository interface.
func (repo *Repository) InsertLog(log domain.Log) error {
	createdAt := log.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO log(level, message, created_at) VALUES (?, ?, ?)`
	_, err := repo.dbConn.Exec(query, log.Level, log.Message, createdAt)
	if err != nil {
		return fmt.Errorf("inserting log: %w", err)
	}

	return nil
}

// GetLogs implements the domain.LogRepository interface.
func (repo *Repository) GetLogs(limit int) ([]domain.Log, error) {
	var rows []*dbLog
	query := `SELECT level, message, created_at FROM log ORDER BY id DESC LIMIT ?`

	err := repo.dbConn.Select(&rows, query, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieving logs: %w", err)
	}

	logs := make([]domain.Log, len(rows))
	for i, row := range rows {
		logs[i] = domain.Log{Level: row.Level, Message: row.Message, CreatedAt: row.CreatedAt}
	}

	return logs, nil
}
