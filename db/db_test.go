package db

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dicemill/outgunned/dice"
	"github.com/dicemill/outgunned/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}

	repo := NewBotRepo(dbConn)

	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}

	return repo, teardown
}

func testRoll(t *testing.T, repo *Repository, channelID string, history *dice.History) uuid.UUID {
	t.Helper()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("creating uuid: %v", err)
	}

	record := domain.RollRecord{
		ID:        id,
		ChannelID: channelID,
		UserID:    "user-1",
		History:   history,
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.InsertRoll(record); err != nil {
		t.Fatalf("inserting roll: %v", err)
	}
	return id
}
