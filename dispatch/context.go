// ABOUTME: Per-dispatch Context carrying resolved ids and the reply/send paths.
// ABOUTME: Message-shaped and interaction-shaped triggers produce the same Context surface.

package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/unicord/unicord/cache"
	"github.com/unicord/unicord/entity"
	"github.com/unicord/unicord/rest"
)

var (
	// ErrNoChannel means the context has no channel to send into.
	ErrNoChannel = errors.New("dispatch: context has no channel id")

	// ErrNoInteraction means Respond was called on a message-shaped
	// context.
	ErrNoInteraction = errors.New("dispatch: context carries no interaction")
)

// Context is the ephemeral per-event view handed to handlers. Exactly
// one of Message or Interaction is set at construction; Guild, Channel,
// and (for interaction contexts) Message are filled by hydration.
type Context struct {
	MessageID string
	ChannelID string
	GuildID   string

	Message     *entity.Message
	Interaction *entity.Interaction

	// Hydrated relations. Nil until requested via Hydrate.
	Guild   *entity.Guild
	Channel *entity.Channel

	api    rest.API
	caches *cache.Caches
}

// NewMessageContext builds a context from a message-shaped dispatch.
// The message must carry its own id and channel id.
func NewMessageContext(api rest.API, caches *cache.Caches, msg *entity.Message) (*Context, error) {
	if msg == nil || msg.ID == "" {
		return nil, fmt.Errorf("message id is required to create a context")
	}
	if msg.ChannelID == "" {
		return nil, fmt.Errorf("channel id is required to create a context")
	}
	return &Context{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
		Message:   msg,
		api:       api,
		caches:    caches,
	}, nil
}

// NewInteractionContext builds a context from an interaction dispatch.
func NewInteractionContext(api rest.API, caches *cache.Caches, in *entity.Interaction) (*Context, error) {
	if in == nil || in.ID == "" {
		return nil, fmt.Errorf("interaction id is required to create a context")
	}
	c := &Context{
		ChannelID:   in.ChannelID,
		GuildID:     in.GuildID,
		Interaction: in,
		api:         api,
		caches:      caches,
	}
	if in.Message != nil {
		c.MessageID = in.Message.ID
		c.Message = in.Message
	}
	return c, nil
}

// Send posts msg to the context's channel and returns the created
// message.
func (c *Context) Send(ctx context.Context, msg *entity.Message) (*entity.Message, error) {
	if c.ChannelID == "" {
		return nil, ErrNoChannel
	}
	raw, err := c.api.Post(ctx, "/channels/"+c.ChannelID+"/messages", msg.WireBody())
	if err != nil {
		return nil, err
	}
	return entity.MessageFromWire(raw)
}

// SendText posts plain text to the context's channel.
func (c *Context) SendText(ctx context.Context, content string) (*entity.Message, error) {
	return c.Send(ctx, entity.NewMessage().SetContent(content))
}

// Reply sends msg as a reference reply to the triggering message. When
// the context has no triggering message the reply degrades to a plain
// send.
func (c *Context) Reply(ctx context.Context, msg *entity.Message) (*entity.Message, error) {
	if c.Message != nil {
		if err := msg.SetReference(c.Message); err != nil {
			return nil, err
		}
	}
	return c.Send(ctx, msg)
}

// ReplyText replies with plain text.
func (c *Context) ReplyText(ctx context.Context, content string) (*entity.Message, error) {
	return c.Reply(ctx, entity.NewMessage().SetContent(content))
}

// Respond acknowledges an interaction with a channel-message-with-source
// callback carrying the given text.
func (c *Context) Respond(ctx context.Context, content string) error {
	if c.Interaction == nil {
		return ErrNoInteraction
	}
	path := "/interactions/" + c.Interaction.ID + "/" + c.Interaction.Token + "/callback"
	_, err := c.api.Post(ctx, path, map[string]any{
		"type": 4,
		"data": map[string]any{"content": content},
	})
	return err
}

// EditMessage patches a message in the context's channel. An empty
// messageID targets the triggering message.
func (c *Context) EditMessage(ctx context.Context, messageID string, msg *entity.Message) (*entity.Message, error) {
	if c.ChannelID == "" {
		return nil, ErrNoChannel
	}
	if messageID == "" {
		messageID = c.MessageID
	}
	raw, err := c.api.Patch(ctx, "/channels/"+c.ChannelID+"/messages/"+messageID, msg.WireBody())
	if err != nil {
		return nil, err
	}
	return entity.MessageFromWire(raw)
}

// DeleteMessage deletes a message in the context's channel. An empty
// messageID targets the triggering message.
func (c *Context) DeleteMessage(ctx context.Context, messageID string) error {
	if c.ChannelID == "" {
		return ErrNoChannel
	}
	if messageID == "" {
		messageID = c.MessageID
	}
	_, err := c.api.Delete(ctx, "/channels/"+c.ChannelID+"/messages/"+messageID)
	return err
}
