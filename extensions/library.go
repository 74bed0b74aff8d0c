package extensions

import (
	"fmt"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
)

// registerOutgunnedLibrary registers the `outgunned` global library into
// the Lua state. This is the entry point for exposing the bot's
// functionality to Lua scripts. Library functions use method-call syntax:
// outgunned:roll(3), outgunned:log("msg").
func registerOutgunnedLibrary(l *lua.State, bot BotService) {
	funcs := []lua.RegistryFunction{
		// log writes a message to the bot's log.
		//
		// @param message string The message to log.
		// @param level string (optional) The log level (e.g., "INFO", "WARN",
		// "ERROR"). Defaults to "INFO".
		{Name: "log", Function: func(l *lua.State) int {
			message := lua.CheckString(l, 2)
			level := lua.OptString(l, 3, "INFO")
			if err := bot.WriteLog(level, message); err != nil {
				lua.Errorf(l, fmt.Sprintf("writing log : %s", err.Error()))
				return 0
			}
			return 0
		}},
		// roll makes an Outgunned action roll.
		//
		// @param dice integer The number of dice (2-9).
		// @return table {dice={...}, successes={{face,count,level}...}, unmatched={...}}
		{Name: "roll", Function: func(l *lua.State) int {
			numDice := lua.CheckInteger(l, 2)
			history, err := bot.RollAction(numDice)
			if err != nil {
				lua.Errorf(l, fmt.Sprintf("rolling : %s", err.Error()))
				return 0
			}

			outcome := history.Outcome()
			successes := make([]interface{}, 0, len(outcome.Successes))
			for _, success := range outcome.Successes {
				successes = append(successes, map[string]interface{}{
					"face":  success.Face,
					"count": success.Count,
					"level": strings.ToLower(success.Level().String()),
				})
			}
			unmatched := make([]interface{}, 0, len(outcome.Unmatched))
			for _, value := range outcome.Unmatched {
				unmatched = append(unmatched, value)
			}
			values := make([]interface{}, 0, len(history.Current()))
			for _, value := range history.Current() {
				values = append(values, value)
			}

			util.DeepPush(l, map[string]interface{}{
				"dice":      values,
				"successes": successes,
				"unmatched": unmatched,
			})
			return 1
		}},
		// d6 rolls a single plain die.
		//
		// @return integer The rolled value.
		{Name: "d6", Function: func(l *lua.State) int {
			l.PushInteger(bot.RollD6())
			return 1
		}},
		// coin flips a coin.
		//
		// @return boolean True on heads.
		{Name: "coin", Function: func(l *lua.State) int {
			l.PushBoolean(bot.FlipCoin())
			return 1
		}},
		// dice_set returns the dice set configured for a channel.
		//
		// @param channel_id string The channel id.
		// @return string The dice set name.
		{Name: "dice_set", Function: func(l *lua.State) int {
			channelID := lua.CheckString(l, 2)
			l.PushString(bot.DiceSetFor(channelID))
			return 1
		}},
	}

	lua.NewLibrary(l, funcs)
	l.SetGlobal("outgunned")
}

// registerCustomPrint redirects the script's print to the bot's log so
// extension output ends up with everything else instead of on stdout.
func registerCustomPrint(l *lua.State, bot BotService) {
	printFunc := func(l *lua.State) int {
		n := l.Top()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			value, _ := l.ToString(i)
			parts = append(parts, value)
		}
		_ = bot.WriteLog("INFO", strings.Join(parts, "\t"))
		return 0
	}
	l.Register("print", printFunc)
}
