// ABOUTME: Interaction payload types: application commands and component interactions.
// ABOUTME: Type 2 carries a named option list; type 3 carries the component custom_id.

package entity

import (
	"encoding/json"
	"fmt"
)

// Interaction types as transmitted by the platform.
const (
	InteractionTypePing      = 1
	InteractionTypeCommand   = 2
	InteractionTypeComponent = 3
)

// InteractionOption is one supplied option of an application command
// invocation. The value is already typed by the declared option type.
type InteractionOption struct {
	Name  string `json:"name"`
	Type  int    `json:"type"`
	Value any    `json:"value"`
}

// CommandData is the data block of a type-2 (application command)
// interaction.
type CommandData struct {
	ID      string              `json:"id,omitempty"`
	Name    string              `json:"name"`
	Type    int                 `json:"type,omitempty"`
	Options []InteractionOption `json:"options,omitempty"`
}

// ComponentData is the data block of a type-3 (component) interaction.
type ComponentData struct {
	CustomID      string   `json:"custom_id"`
	ComponentType int      `json:"component_type,omitempty"`
	Values        []string `json:"values,omitempty"`
}

// Interaction is an inbound interaction event. Exactly one of Command
// or Component is set, matching Type.
type Interaction struct {
	ID            string         `json:"id"`
	ApplicationID string         `json:"application_id,omitempty"`
	Type          int            `json:"type"`
	Token         string         `json:"token"`
	GuildID       string         `json:"guild_id,omitempty"`
	ChannelID     string         `json:"channel_id,omitempty"`
	Guild         *Guild         `json:"guild,omitempty"`
	Member        *Member        `json:"member,omitempty"`
	User          *User          `json:"user,omitempty"`
	Message       *Message       `json:"message,omitempty"`
	Command       *CommandData   `json:"-"`
	Component     *ComponentData `json:"-"`
}

// Invoker returns the user who triggered the interaction, whether it
// arrived as a guild member or a bare user.
func (i *Interaction) Invoker() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// InteractionFromWire decodes a raw interaction payload, splitting the
// data block by interaction type.
func InteractionFromWire(raw json.RawMessage) (*Interaction, error) {
	var wire struct {
		Interaction
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decoding interaction: %w", err)
	}

	in := wire.Interaction
	switch in.Type {
	case InteractionTypeCommand:
		if len(wire.Data) == 0 {
			return nil, fmt.Errorf("command interaction %s has no data block", in.ID)
		}
		var cd CommandData
		if err := json.Unmarshal(wire.Data, &cd); err != nil {
			return nil, fmt.Errorf("decoding command data: %w", err)
		}
		in.Command = &cd
	case InteractionTypeComponent:
		if len(wire.Data) == 0 {
			return nil, fmt.Errorf("component interaction %s has no data block", in.ID)
		}
		var cd ComponentData
		if err := json.Unmarshal(wire.Data, &cd); err != nil {
			return nil, fmt.Errorf("decoding component data: %w", err)
		}
		in.Component = &cd
	}
	return &in, nil
}
