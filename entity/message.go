// ABOUTME: Message data type, wire conversion, and the outgoing message builder.
// ABOUTME: Reply references are stored as ids only; resolution goes through the hydrator.

package entity

import (
	"encoding/json"
	"fmt"
)

// MessageReference points at another message by id. The referenced
// message itself is never embedded; callers resolve it on demand.
type MessageReference struct {
	MessageID       string `json:"message_id,omitempty"`
	ChannelID       string `json:"channel_id,omitempty"`
	GuildID         string `json:"guild_id,omitempty"`
	FailIfNotExists bool   `json:"fail_if_not_exists"`
}

// Attachment is an uploaded file on a message.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	ProxyURL string `json:"proxy_url,omitempty"`
	Size     int    `json:"size,omitempty"`
}

// Component styles and types for message components.
const (
	ComponentTypeActionRow  = 1
	ComponentTypeButton     = 2
	ComponentTypeSelectMenu = 3

	ButtonStylePrimary   = 1
	ButtonStyleSecondary = 2
	ButtonStyleSuccess   = 3
	ButtonStyleDanger    = 4
	ButtonStyleLink      = 5
)

// SelectOption is a single choice inside a select menu component.
type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

// Component is a UI element attached to a message: an action row, a
// button, or a select menu. Interactions route back by CustomID.
type Component struct {
	Type       int            `json:"type"`
	Style      int            `json:"style,omitempty"`
	Label      string         `json:"label,omitempty"`
	CustomID   string         `json:"custom_id,omitempty"`
	URL        string         `json:"url,omitempty"`
	Disabled   bool           `json:"disabled,omitempty"`
	Emoji      *Emoji         `json:"emoji,omitempty"`
	Options    []SelectOption `json:"options,omitempty"`
	Components []Component    `json:"components,omitempty"`
}

// Button builds a button component.
func Button(style int, label, customID string) Component {
	return Component{Type: ComponentTypeButton, Style: style, Label: label, CustomID: customID}
}

// SelectMenu builds a select menu component.
func SelectMenu(customID string, options ...SelectOption) Component {
	return Component{Type: ComponentTypeSelectMenu, CustomID: customID, Options: options}
}

// Message is a chat message, inbound or outbound. Outbound messages
// are composed with the builder methods and serialized by WireBody.
type Message struct {
	ID              string            `json:"id,omitempty"`
	ChannelID       string            `json:"channel_id,omitempty"`
	GuildID         string            `json:"guild_id,omitempty"`
	Author          *User             `json:"author,omitempty"`
	Content         string            `json:"content"`
	Timestamp       string            `json:"timestamp,omitempty"`
	EditedTimestamp string            `json:"edited_timestamp,omitempty"`
	TTS             bool              `json:"tts,omitempty"`
	MentionEveryone bool              `json:"mention_everyone,omitempty"`
	Mentions        []*User           `json:"mentions,omitempty"`
	MentionRoles    []string          `json:"mention_roles,omitempty"`
	Attachments     []*Attachment     `json:"attachments,omitempty"`
	Embeds          []*Embed          `json:"embeds,omitempty"`
	Components      []Component       `json:"components,omitempty"`
	Pinned          bool              `json:"pinned,omitempty"`
	WebhookID       string            `json:"webhook_id,omitempty"`
	Type            int               `json:"type,omitempty"`
	Flags           int               `json:"flags,omitempty"`
	Reference       *MessageReference `json:"message_reference,omitempty"`
}

// NewMessage starts an outgoing message.
func NewMessage() *Message {
	return &Message{}
}

// MessageFromWire decodes a raw message payload.
func MessageFromWire(raw json.RawMessage) (*Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}
	return &m, nil
}

// SetContent sets the text body.
func (m *Message) SetContent(content string) *Message {
	m.Content = content
	return m
}

// AddEmbed appends an embed.
func (m *Message) AddEmbed(e *Embed) *Message {
	m.Embeds = append(m.Embeds, e)
	return m
}

// AddComponents appends components wrapped in an action row.
func (m *Message) AddComponents(components ...Component) *Message {
	m.Components = append(m.Components, Component{
		Type:       ComponentTypeActionRow,
		Components: components,
	})
	return m
}

// SetReference marks the message as a reply to target. The target must
// carry its own id and channel id.
func (m *Message) SetReference(target *Message) error {
	if target == nil || target.ID == "" || target.ChannelID == "" {
		return fmt.Errorf("reference target needs message and channel ids")
	}
	m.Reference = &MessageReference{
		MessageID: target.ID,
		ChannelID: target.ChannelID,
		GuildID:   target.GuildID,
	}
	return nil
}

// WireBody returns the REST body for creating or editing this message.
func (m *Message) WireBody() map[string]any {
	body := map[string]any{
		"content": m.Content,
	}
	if len(m.Embeds) > 0 {
		body["embeds"] = m.Embeds
	}
	if len(m.Components) > 0 {
		body["components"] = m.Components
	}
	if m.Reference != nil {
		body["message_reference"] = m.Reference
	}
	return body
}
