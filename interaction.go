package outgunned

import "encoding/json"

// Interaction wire types, the subset of the Discord interactions API the
// bot consumes and produces. Interactions arrive over the HTTP endpoint in
// the gateway package and are answered synchronously.

// InteractionType discriminates incoming interactions.
type InteractionType int

const (
	InteractionPing               InteractionType = 1
	InteractionApplicationCommand InteractionType = 2
	InteractionMessageComponent   InteractionType = 3
)

// ResponseType discriminates interaction responses.
type ResponseType int

const (
	ResponsePong           ResponseType = 1
	ResponseChannelMessage ResponseType = 4
	ResponseUpdateMessage  ResponseType = 7
)

// EmbedColor is the gold accent used on every bot embed.
const EmbedColor = 0xF1C40F

// FlagEphemeral marks a response as visible only to the invoking user.
const FlagEphemeral = 1 << 6

// Button styles.
const (
	ButtonPrimary = 1 // blurple
	ButtonSuccess = 3 // green
	ButtonDanger  = 4 // red
)

// Component type discriminators.
const (
	ComponentActionRow = 1
	ComponentButton    = 2
)

// User is the author of an interaction.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// Member wraps the user for guild interactions.
type Member struct {
	User *User `json:"user,omitempty"`
}

// CommandOption is a named argument of an application command.
type CommandOption struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value,omitempty"`
}

// InteractionData carries either application-command or message-component
// payloads, depending on the interaction type.
type InteractionData struct {
	Name          string          `json:"name,omitempty"`           // command name
	Options       []CommandOption `json:"options,omitempty"`        // command arguments
	CustomID      string          `json:"custom_id,omitempty"`      // component custom id
	ComponentType int             `json:"component_type,omitempty"` // component discriminator
}

// Message is the message a component interaction was triggered on. Only the
// embeds are needed: the roll history is parsed back out of the embed
// description.
type Message struct {
	ID     string  `json:"id,omitempty"`
	Embeds []Embed `json:"embeds,omitempty"`
}

// Interaction is an incoming interaction.
type Interaction struct {
	ID        string           `json:"id"`
	Type      InteractionType  `json:"type"`
	ChannelID string           `json:"channel_id,omitempty"`
	Member    *Member          `json:"member,omitempty"`
	User      *User            `json:"user,omitempty"`
	Data      *InteractionData `json:"data,omitempty"`
	Message   *Message         `json:"message,omitempty"`
}

// UserID returns the id of the invoking user, wherever Discord put it.
func (interaction *Interaction) UserID() string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

// IntOption extracts an integer command option by name.
func (interaction *Interaction) IntOption(name string) (int, bool) {
	raw, ok := interaction.rawOption(name)
	if !ok {
		return 0, false
	}
	var value int
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, false
	}
	return value, true
}

// StringOption extracts a string command option by name.
func (interaction *Interaction) StringOption(name string) (string, bool) {
	raw, ok := interaction.rawOption(name)
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

func (interaction *Interaction) rawOption(name string) (json.RawMessage, bool) {
	if interaction.Data == nil {
		return nil, false
	}
	for _, option := range interaction.Data.Options {
		if option.Name == name {
			return option.Value, true
		}
	}
	return nil, false
}

// Embed is a rich message block. The bot only ever sets a description and
// the gold accent color.
type Embed struct {
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
}

// Component is an action row or button. Rows nest buttons in Components.
type Component struct {
	Type       int         `json:"type"`
	Style      int         `json:"style,omitempty"`
	Label      string      `json:"label,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// ResponseData is the message payload of an interaction response.
type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []Component `json:"components,omitempty"`
	Flags      int         `json:"flags,omitempty"`
}

// InteractionResponse is the synchronous answer to an interaction.
type InteractionResponse struct {
	Type ResponseType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// goldEmbed wraps a description in the bot's standard embed.
func goldEmbed(description string) []Embed {
	return []Embed{{Description: description, Color: EmbedColor}}
}

// messageResponse builds a regular channel-message response.
func messageResponse(description string, components []Component) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseChannelMessage,
		Data: &ResponseData{Embeds: goldEmbed(description), Components: components},
	}
}

// updateResponse builds a response that edits the original message in place.
func updateResponse(description string, components []Component) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseUpdateMessage,
		Data: &ResponseData{Embeds: goldEmbed(description), Components: components},
	}
}

// ephemeralResponse builds a reply only the invoking user can see.
func ephemeralResponse(content string) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseChannelMessage,
		Data: &ResponseData{Content: content, Flags: FlagEphemeral},
	}
}
