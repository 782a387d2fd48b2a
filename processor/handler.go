// ABOUTME: Handler variants (plain function vs. command descriptor) and their argument shapes.
// ABOUTME: Dispatch switches on the variant tag, never on runtime reflection.

package processor

import (
	"context"
	"encoding/json"

	"github.com/unicord/unicord/dispatch"
	"github.com/unicord/unicord/entity"
)

// Category partitions the handler registry.
type Category int

const (
	// Events are generic gateway dispatches addressed by event name.
	Events Category = iota
	// ChatCommands are prefix-triggered text commands.
	ChatCommands
	// SlashCommands are platform-declared application commands.
	SlashCommands
	// Components are UI component interactions addressed by custom id.
	Components
)

func (c Category) String() string {
	switch c {
	case Events:
		return "events"
	case ChatCommands:
		return "chat_commands"
	case SlashCommands:
		return "slash_commands"
	case Components:
		return "components"
	default:
		return "unknown"
	}
}

// Args is the raw input carried into Execute. Exactly one field is
// populated, matching the trigger: positional strings for text
// commands, typed options for application commands, component data for
// component interactions, and the raw payload for generic events.
type Args struct {
	Positional []string
	Options    []entity.InteractionOption
	Component  *entity.ComponentData
	Payload    json.RawMessage
}

// Handler is either a Func or a *Command.
type Handler interface {
	isHandler()
}

// Func is the plain handler variant: it receives the context and the
// raw arguments unchanged.
type Func func(ctx context.Context, dctx *dispatch.Context, args *Args) error

func (Func) isHandler() {}

// Option types as declared to the platform.
const (
	OptionSubCommand  = 1
	OptionString      = 3
	OptionInteger     = 4
	OptionBoolean     = 5
	OptionUser        = 6
	OptionChannel     = 7
	OptionRole        = 8
	OptionMentionable = 9
	OptionNumber      = 10
	OptionAttachment  = 11
)

// Choice is one allowed value of an enumerated option.
type Choice struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Option is one declared argument of a Command: its name, type tag,
// required flag, and optional enumerated choices.
type Option struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Type        int      `json:"type"`
	Required    bool     `json:"required,omitempty"`
	Choices     []Choice `json:"choices,omitempty"`
}

// Values holds validated, named arguments. Optional options with no
// input are present with an explicit nil value.
type Values map[string]any

// String returns the named value as a string, or "".
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// User returns the named value as a resolved user, or nil.
func (v Values) User(name string) *entity.User {
	u, _ := v[name].(*entity.User)
	return u
}

// Channel returns the named value as a resolved channel, or nil.
func (v Values) Channel(name string) *entity.Channel {
	c, _ := v[name].(*entity.Channel)
	return c
}

// Command is the structured handler variant: an ordered option schema
// plus an execute function receiving pre-validated, named arguments.
type Command struct {
	Description string
	Type        int // command type discriminator; 0 defaults to chat input
	Options     []Option
	Run         func(ctx context.Context, dctx *dispatch.Context, values Values) error
}

func (*Command) isHandler() {}

// declaration is the REST body registering the command under a name.
func (c *Command) declaration(name string) map[string]any {
	cmdType := c.Type
	if cmdType == 0 {
		cmdType = 1
	}
	body := map[string]any{
		"name":        name,
		"description": c.Description,
		"type":        cmdType,
	}
	if len(c.Options) > 0 {
		body["options"] = c.Options
	}
	return body
}
