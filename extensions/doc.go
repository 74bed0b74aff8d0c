// Package extensions implements the Lua extension system of the Outgunned
// bot. An extension is a stored Lua script that declares a `handle`
// function; the bot exposes one slash command per extension and forwards
// its invocations to that function.
//
// Scripts get an `outgunned` library with access to the dice engine, the
// per-channel settings, and the bot's log. A failing script only fails its
// own interaction.
package extensions
