package outgunned

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/dicemill/outgunned/dice"
	"github.com/dicemill/outgunned/domain"
)

// mockRepo is an in-memory Repository used to exercise the controllers.
type mockRepo struct {
	diceSets map[string]dice.Set
	rolls    []domain.RollRecord
	updated  []*dice.History
	logs     []domain.Log
	stats    domain.RollStats
}

func newMockRepo() *mockRepo {
	return &mockRepo{diceSets: map[string]dice.Set{}}
}

func (repo *mockRepo) GetDiceSet(channelID string) (dice.Set, error) {
	if set, ok := repo.diceSets[channelID]; ok {
		return set, nil
	}
	return dice.DefaultSet, nil
}

func (repo *mockRepo) SetDiceSet(channelID string, set dice.Set) error {
	repo.diceSets[channelID] = set
	return nil
}

func (repo *mockRepo) InsertRoll(record domain.RollRecord) error {
	repo.rolls = append(repo.rolls, record)
	return nil
}

func (repo *mockRepo) UpdateLatestRoll(channelID, userID string, history *dice.History) error {
	if len(repo.rolls) == 0 {
		return domain.ErrNoRoll
	}
	repo.updated = append(repo.updated, history)
	return nil
}

func (repo *mockRepo) GetRolls(channelID string, limit int) ([]domain.RollRecord, error) {
	return repo.rolls, nil
}

func (repo *mockRepo) GetRollStats(channelID string) (domain.RollStats, error) {
	return repo.stats, nil
}

func (repo *mockRepo) InsertLog(log domain.Log) error {
	repo.logs = append(repo.logs, log)
	return nil
}

func (repo *mockRepo) GetLogs(limit int) ([]domain.Log, error) { return repo.logs, nil }

func (repo *mockRepo) CreateExtension(extension domain.Extension) error { return nil }

func (repo *mockRepo) GetExtensions() ([]domain.Extension, error) { return nil, nil }

func (repo *mockRepo) GetExtension(name string) (domain.Extension, error) {
	return domain.Extension{}, nil
}

func (repo *mockRepo) UpdateLuaCode(name string, code string) error { return nil }

func (repo *mockRepo) SetExtensionEnabled(name string, enabled bool) error { return nil }

func (repo *mockRepo) RemoveExtension(name string) error { return nil }

func (repo *mockRepo) Close() error { return nil }

func newTestBot(t *testing.T, repo Repository) *Bot {
	t.Helper()
	bot, err := New(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRepo(repo),
		WithRand(rand.New(rand.NewPCG(7, 13))),
	)
	if err != nil {
		t.Fatalf("creating bot: %v", err)
	}
	return bot
}

func commandInteraction(name, channelID, userID string, options ...CommandOption) *Interaction {
	return &Interaction{
		ID:        "interaction-1",
		Type:      InteractionApplicationCommand,
		ChannelID: channelID,
		Member:    &Member{User: &User{ID: userID}},
		Data:      &InteractionData{Name: name, Options: options},
	}
}

func intOption(name string, value string) CommandOption {
	return CommandOption{Name: name, Value: json.RawMessage(value)}
}

func stringOption(name, value string) CommandOption {
	return CommandOption{Name: name, Value: json.RawMessage(`"` + value + `"`)}
}

func embedDescription(t *testing.T, response *InteractionResponse) string {
	t.Helper()
	if response.Data == nil || len(response.Data.Embeds) == 0 {
		t.Fatalf("response has no embeds: %+v", response)
	}
	return response.Data.Embeds[0].Description
}

func TestBot_WithoutRepository(t *testing.T) {
	bot, err := New(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRand(rand.New(rand.NewPCG(7, 13))),
	)
	if err != nil {
		t.Fatalf("creating bot: %v", err)
	}

	t.Run("should roll without recording", func(t *testing.T) {
		response, err := bot.HandleInteraction(commandInteraction("roll", "c1", "42", intOption("dice", "3")))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Type != ResponseChannelMessage {
			t.Fatalf("\nwanted:\nchannel message\ngot:\n%d", response.Type)
		}
	})

	t.Run("should apply button actions without recording", func(t *testing.T) {
		rerollable := &dice.History{
			NumDice:  4,
			Attempts: []dice.Attempt{{Kind: dice.AttemptInitial, Dice: []int{3, 3, 5, 1}}},
		}
		description := NewMessageGenerator(dice.SetClassic).RollMessage(rerollable)
		customID := buttonCustomID(actionReroll, "42", dice.SetClassic)

		response, err := bot.HandleInteraction(buttonInteraction(customID, "c1", "42", description))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Type != ResponseUpdateMessage {
			t.Fatalf("\nwanted:\nupdate message\ngot:\n%d", response.Type)
		}
	})

	t.Run("should decline settings", func(t *testing.T) {
		response, err := bot.HandleInteraction(commandInteraction("settings", "c1", "42", stringOption("dice_set", "digits")))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Data.Flags&FlagEphemeral == 0 {
			t.Fatalf("\nwanted:\nephemeral reply\ngot:\n%+v", response.Data)
		}
	})

	t.Run("should decline stats", func(t *testing.T) {
		response, err := bot.HandleInteraction(commandInteraction("stats", "c1", "42"))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Data.Flags&FlagEphemeral == 0 {
			t.Fatalf("\nwanted:\nephemeral reply\ngot:\n%+v", response.Data)
		}
	})
}

func TestBot_HandleInteraction(t *testing.T) {
	t.Run("should answer ping with pong", func(t *testing.T) {
		bot := newTestBot(t, newMockRepo())

		response, err := bot.HandleInteraction(&Interaction{ID: "1", Type: InteractionPing})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Type != ResponsePong {
			t.Fatalf("\nwanted:\npong\ngot:\n%d", response.Type)
		}
	})

	t.Run("should reject unknown commands", func(t *testing.T) {
		bot := newTestBot(t, newMockRepo())

		_, err := bot.HandleInteraction(commandInteraction("fireball", "c1", "42"))
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestRollController_HandleRoll(t *testing.T) {
	t.Run("should roll and record", func(t *testing.T) {
		repo := newMockRepo()
		bot := newTestBot(t, repo)

		response, err := bot.HandleInteraction(commandInteraction("roll", "c1", "42", intOption("dice", "3")))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Type != ResponseChannelMessage {
			t.Fatalf("\nwanted:\nchannel message\ngot:\n%d", response.Type)
		}
		if response.Data.Embeds[0].Color != EmbedColor {
			t.Fatalf("\nwanted:\ngold embed\ngot:\n%#x", response.Data.Embeds[0].Color)
		}

		history, err := NewMessageParser(dice.DefaultSet).ParseRollMessage(embedDescription(t, response))
		if err != nil {
			t.Fatalf("parsing rendered roll: %v", err)
		}
		if history.NumDice != 3 {
			t.Fatalf("\nwanted:\n3 dice\ngot:\n%d", history.NumDice)
		}
		if len(repo.rolls) != 1 {
			t.Fatalf("\nwanted:\n1 recorded roll\ngot:\n%d", len(repo.rolls))
		}
	})

	t.Run("should ask for the dice count when missing", func(t *testing.T) {
		bot := newTestBot(t, newMockRepo())

		response, err := bot.HandleInteraction(commandInteraction("roll", "c1", "42"))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Data.Flags&FlagEphemeral == 0 {
			t.Fatalf("\nwanted:\nephemeral reply\ngot:\n%+v", response.Data)
		}
	})

	t.Run("should reject an out of range dice count", func(t *testing.T) {
		bot := newTestBot(t, newMockRepo())

		response, err := bot.HandleInteraction(commandInteraction("roll", "c1", "42", intOption("dice", "12")))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Data.Flags&FlagEphemeral == 0 {
			t.Fatalf("\nwanted:\nephemeral reply\ngot:\n%+v", response.Data)
		}
	})
}

func buttonInteraction(customID, channelID, userID, description string) *Interaction {
	return &Interaction{
		ID:        "interaction-2",
		Type:      InteractionMessageComponent,
		ChannelID: channelID,
		Member:    &Member{User: &User{ID: userID}},
		Data:      &InteractionData{CustomID: customID, ComponentType: ComponentButton},
		Message:   &Message{ID: "message-1", Embeds: goldEmbed(description)},
	}
}

func TestRollController_HandleButton(t *testing.T) {
	rerollable := &dice.History{
		NumDice:  4,
		Attempts: []dice.Attempt{{Kind: dice.AttemptInitial, Dice: []int{3, 3, 5, 1}}},
	}
	description := NewMessageGenerator(dice.SetClassic).RollMessage(rerollable)
	customID := buttonCustomID(actionReroll, "42", dice.SetClassic)

	t.Run("should block other users", func(t *testing.T) {
		bot := newTestBot(t, newMockRepo())

		response, err := bot.HandleInteraction(buttonInteraction(customID, "c1", "99", description))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Data.Flags&FlagEphemeral == 0 {
			t.Fatalf("\nwanted:\nephemeral reply\ngot:\n%+v", response.Data)
		}
	})

	t.Run("should reroll and update the message", func(t *testing.T) {
		repo := newMockRepo()
		repo.rolls = append(repo.rolls, domain.RollRecord{ChannelID: "c1", UserID: "42", History: rerollable})
		bot := newTestBot(t, repo)

		response, err := bot.HandleInteraction(buttonInteraction(customID, "c1", "42", description))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Type != ResponseUpdateMessage {
			t.Fatalf("\nwanted:\nupdate message\ngot:\n%d", response.Type)
		}

		updated, err := NewMessageParser(dice.SetClassic).ParseRollMessage(embedDescription(t, response))
		if err != nil {
			t.Fatalf("parsing updated roll: %v", err)
		}
		if len(updated.Attempts) != 2 {
			t.Fatalf("\nwanted:\n2 attempts\ngot:\n%d", len(updated.Attempts))
		}
		if updated.Attempts[1].Kind != dice.AttemptReroll {
			t.Fatalf("\nwanted:\nreroll attempt\ngot:\n%s", updated.Attempts[1].Kind)
		}
		if len(repo.updated) != 1 {
			t.Fatalf("\nwanted:\n1 stored update\ngot:\n%d", len(repo.updated))
		}
	})

	t.Run("should refuse an exhausted action", func(t *testing.T) {
		bot := newTestBot(t, newMockRepo())
		spent := &dice.History{
			NumDice: 4,
			Attempts: []dice.Attempt{
				{Kind: dice.AttemptInitial, Dice: []int{3, 3, 5, 1}},
				{Kind: dice.AttemptReroll, Dice: []int{3, 3, 2, 6}},
			},
		}
		spentDescription := NewMessageGenerator(dice.SetClassic).RollMessage(spent)

		response, err := bot.HandleInteraction(buttonInteraction(customID, "c1", "42", spentDescription))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Data.Flags&FlagEphemeral == 0 {
			t.Fatalf("\nwanted:\nephemeral reply\ngot:\n%+v", response.Data)
		}
	})
}

func TestSettingsController_HandleSettings(t *testing.T) {
	t.Run("should store the dice set", func(t *testing.T) {
		repo := newMockRepo()
		bot := newTestBot(t, repo)

		response, err := bot.HandleInteraction(commandInteraction("settings", "c1", "42", stringOption("dice_set", "digits")))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if repo.diceSets["c1"] != dice.SetDigits {
			t.Fatalf("\nwanted:\ndigits stored\ngot:\n%s", repo.diceSets["c1"])
		}
		if !strings.Contains(embedDescription(t, response), "digits") {
			t.Fatalf("\nwanted:\nconfirmation naming the set\ngot:\n%s", embedDescription(t, response))
		}
	})

	t.Run("should reject an unknown dice set", func(t *testing.T) {
		bot := newTestBot(t, newMockRepo())

		response, err := bot.HandleInteraction(commandInteraction("settings", "c1", "42", stringOption("dice_set", "holographic")))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if response.Data.Flags&FlagEphemeral == 0 {
			t.Fatalf("\nwanted:\nephemeral reply\ngot:\n%+v", response.Data)
		}
	})
}

func TestStatsController_HandleStats(t *testing.T) {
	repo := newMockRepo()
	repo.stats = domain.RollStats{Rolls: 12, Busts: 2, AllIns: 3}
	bot := newTestBot(t, repo)

	response, err := bot.HandleInteraction(commandInteraction("stats", "c1", "42"))
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	description := embedDescription(t, response)
	for _, fragment := range []string{"12", "2", "3"} {
		if !strings.Contains(description, fragment) {
			t.Fatalf("\nwanted:\n%s in stats\ngot:\n%s", fragment, description)
		}
	}
}

func TestHelpController_HandleHelp(t *testing.T) {
	bot := newTestBot(t, newMockRepo())

	response, err := bot.HandleInteraction(commandInteraction("help", "c1", "42"))
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	description := embedDescription(t, response)
	for _, fragment := range []string{"/roll", "/coin", "/d6", "/stats", "/settings", "/help"} {
		if !strings.Contains(description, fragment) {
			t.Fatalf("\nwanted:\n%s in help\ngot:\n%s", fragment, description)
		}
	}
}

func TestBot_CommandDefinitions(t *testing.T) {
	bot := newTestBot(t, newMockRepo())

	definitions := bot.CommandDefinitions()
	names := map[string]bool{}
	for _, definition := range definitions {
		names[definition.Name] = true
	}
	for _, name := range []string{"roll", "settings", "coin", "d6", "stats", "help"} {
		if !names[name] {
			t.Fatalf("\nwanted:\n%s defined\ngot:\n%v", name, names)
		}
	}
}
