package extensions

import (
	"fmt"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"

	"github.com/dicemill/outgunned/dice"
	"github.com/dicemill/outgunned/domain"
)

// BotService defines the bot functionality exposed to Lua extensions.
// The root package's Bot satisfies it.
type BotService interface {
	// WriteLog writes a message to the bot's log.
	WriteLog(level string, message string) error

	// RollAction makes a fresh Outgunned action roll.
	RollAction(numDice int) (*dice.History, error)

	// RollD6 rolls a single plain d6.
	RollD6() int

	// FlipCoin flips a coin, true meaning heads.
	FlipCoin() bool

	// DiceSetFor returns the name of the dice set configured for a channel.
	DiceSetFor(channelID string) string
}

// CommandContext is the invocation context handed to a script's `handle`
// function as a table.
type CommandContext struct {
	Command   string            // The slash command that was invoked
	ChannelID string            // Channel the command was used in
	UserID    string            // Invoking user
	Options   map[string]string // Command options, stringified
}

// Runtime couples a stored extension with its prepared Lua state.
type Runtime struct {
	Data     domain.Extension // The extension as stored in the repository
	LuaState *lua.State       // The prepared interpreter state
}

// PrepareState creates the Lua state for the extension: it opens the
// standard libraries, registers the `outgunned` library, redirects print to
// the bot's log, runs the extension source, and checks that it defined a
// `handle` function.
func (runtime *Runtime) PrepareState(bot BotService, options ...func(*Runtime) error) error {
	l := lua.NewState()
	lua.OpenLibraries(l)

	registerOutgunnedLibrary(l, bot)
	registerCustomPrint(l, bot)

	if err := lua.DoString(l, runtime.Data.LuaContent); err != nil {
		return fmt.Errorf("loading extension %s : %w", runtime.Data.Name, err)
	}

	l.Global("handle")
	isFunction := l.IsFunction(-1)
	l.Pop(1)
	if !isFunction {
		return fmt.Errorf("extension %s does not define a handle function", runtime.Data.Name)
	}

	runtime.LuaState = l

	for _, option := range options {
		if err := option(runtime); err != nil {
			return fmt.Errorf("applying option on extension %s : %w", runtime.Data.Name, err)
		}
	}
	return nil
}

// HandleCommand invokes the script's `handle` function with the command
// context and returns the message it produced.
func (runtime *Runtime) HandleCommand(ctx CommandContext) (string, error) {
	if runtime.LuaState == nil {
		return "", fmt.Errorf("extension %s has no prepared state", runtime.Data.Name)
	}

	l := runtime.LuaState
	l.Global("handle")

	options := map[string]interface{}{}
	for name, value := range ctx.Options {
		options[name] = value
	}
	util.DeepPush(l, map[string]interface{}{
		"command":    ctx.Command,
		"channel_id": ctx.ChannelID,
		"user_id":    ctx.UserID,
		"options":    options,
	})

	if err := l.ProtectedCall(1, 1, 0); err != nil {
		return "", fmt.Errorf("running extension %s : %w", runtime.Data.Name, err)
	}

	result, ok := l.ToString(-1)
	l.Pop(1)
	if !ok {
		return "", fmt.Errorf("extension %s : handle did not return a string", runtime.Data.Name)
	}
	return result, nil
}

// Close drops the interpreter state. The state carries no external
// resources, so letting it go is enough.
func (runtime *Runtime) Close() {
	runtime.LuaState = nil
}
