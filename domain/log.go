package domain

import "time"

// Log is a persisted log line. The bot writes interaction-level events
// here so operators can inspect them without scraping process output.
type Log struct {
	Level     string    // slog level string (DEBUG, INFO, WARN, ERROR)
	Message   string    // Log message
	CreatedAt time.Time // When the entry was written
}

// LogRepository stores and retrieves persisted log lines.
type LogRepository interface {
	InsertLog(log Log) error
	GetLogs(limit int) ([]Log, error)
}
