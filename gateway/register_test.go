package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dicemill/outgunned"
)

func testCommands() []outgunned.CommandDefinition {
	return []outgunned.CommandDefinition{
		{Name: "roll", Description: "Make an Outgunned action roll"},
	}
}

func TestRegistrar_RegisterCommands(t *testing.T) {
	t.Run("should retry rate limits until success", func(t *testing.T) {
		attempts := 0
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if r.Method != http.MethodPut {
				t.Errorf("method: wanted PUT, got %s", r.Method)
			}
			if got := r.Header.Get("Authorization"); got != "Bot token-1" {
				t.Errorf("authorization: wanted Bot token-1, got %s", got)
			}
			if attempts < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer api.Close()

		registrar := NewRegistrar("app-1", "token-1", nil)
		registrar.BaseURL = api.URL

		if err := registrar.RegisterCommands(context.Background(), testCommands()); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if attempts != 3 {
			t.Fatalf("\nwanted:\n3 attempts\ngot:\n%d", attempts)
		}
	})

	t.Run("should not retry client errors", func(t *testing.T) {
		attempts := 0
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer api.Close()

		registrar := NewRegistrar("app-1", "token-1", nil)
		registrar.BaseURL = api.URL

		if err := registrar.RegisterCommands(context.Background(), testCommands()); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
		if attempts != 1 {
			t.Fatalf("\nwanted:\n1 attempt\ngot:\n%d", attempts)
		}
	})
}
