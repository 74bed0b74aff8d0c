package db

import (
	"testing"

	"github.com/dicemill/outgunned/dice"
)

func TestChannelRepo_GetDiceSet(t *testing.T) {
	t.Run("should fall back to the default set for unknown channels", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		set, err := repo.GetDiceSet("123456789")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if set != dice.DefaultSet {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", dice.DefaultSet, set)
		}
	})

	t.Run("should return the stored set", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		if err := repo.SetDiceSet("123456789", dice.SetDigits); err != nil {
			t.Fatalf("setting dice set : %v", err)
		}

		set, err := repo.GetDiceSet("123456789")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if set != dice.SetDigits {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", dice.SetDigits, set)
		}
	})
}

func TestChannelRepo_SetDiceSet(t *testing.T) {
	t.Run("should update an existing channel row", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		if err := repo.SetDiceSet("42", dice.SetDigits); err != nil {
			t.Fatalf("setting dice set : %v", err)
		}
		if err := repo.SetDiceSet("42", dice.SetPlain); err != nil {
			t.Fatalf("updating dice set : %v", err)
		}

		set, err := repo.GetDiceSet("42")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if set != dice.SetPlain {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", dice.SetPlain, set)
		}
	})

	t.Run("should keep settings per channel", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		if err := repo.SetDiceSet("1", dice.SetDigits); err != nil {
			t.Fatalf("setting dice set : %v", err)
		}

		set, err := repo.GetDiceSet("2")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if set != dice.DefaultSet {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", dice.DefaultSet, set)
		}
	})
}
