package domain

import "time"

// Extension is a stored Lua extension: a scripted custom command the bot
// exposes alongside its built-in ones.
type Extension struct {
	Name        string    // Unique extension name
	Command     string    // Slash command the extension handles
	Author      string    // Extension author
	Description string    // Short description shown in /help
	LuaContent  string    // The Lua source of the extension
	Enabled     bool      // Disabled extensions are kept but not loaded
	CreatedAt   time.Time // When the extension was installed
}

// ExtensionRepository stores Lua extensions.
type ExtensionRepository interface {
	CreateExtension(extension Extension) error
	GetExtensions() ([]Extension, error)
	GetExtension(name string) (Extension, error)
	UpdateLuaCode(name string, code string) error
	SetExtensionEnabled(name string, enabled bool) error
	RemoveExtension(name string) error
}
