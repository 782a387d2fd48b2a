// ABOUTME: On-demand hydration of a context's or message's related entities.
// ABOUTME: Hydrate fails on the first missing prerequisite; Hydrator softens that to a flag.

package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/unicord/unicord/cache"
	"github.com/unicord/unicord/entity"
)

// Expectation names a relation a caller asks hydration to resolve.
type Expectation int

const (
	// ExpectMessage resolves the triggering message (contexts) or the
	// reply-reference message (messages).
	ExpectMessage Expectation = iota + 1
	// ExpectGuild resolves the guild the source belongs to.
	ExpectGuild
	// ExpectChannel resolves the channel the source belongs to.
	ExpectChannel
)

func (e Expectation) String() string {
	switch e {
	case ExpectMessage:
		return "message"
	case ExpectGuild:
		return "guild"
	case ExpectChannel:
		return "channel"
	default:
		return fmt.Sprintf("expectation(%d)", int(e))
	}
}

// ErrMissingID means an expectation was requested whose prerequisite
// identifier the source does not possess (e.g. guild hydration on a
// guild-less DM). This is an error, never a silent no-op.
var ErrMissingID = errors.New("dispatch: expectation prerequisite id is absent")

// Hydrate resolves the requested relations through the caches and
// returns an augmented copy of the context. The receiver is never
// mutated. It fails on the first unresolvable expectation.
func (c *Context) Hydrate(ctx context.Context, expectations ...Expectation) (*Context, error) {
	out := *c
	for _, exp := range expectations {
		switch exp {
		case ExpectMessage:
			if c.MessageID == "" || c.ChannelID == "" {
				return nil, fmt.Errorf("hydrating %s: %w", exp, ErrMissingID)
			}
			msg, err := c.caches.Messages.Get(ctx, c.ChannelID, c.MessageID)
			if err != nil {
				return nil, fmt.Errorf("hydrating %s: %w", exp, err)
			}
			out.Message = msg
		case ExpectGuild:
			if c.GuildID == "" {
				return nil, fmt.Errorf("hydrating %s: %w", exp, ErrMissingID)
			}
			guild, err := c.caches.Guilds.Get(ctx, c.GuildID)
			if err != nil {
				return nil, fmt.Errorf("hydrating %s: %w", exp, err)
			}
			out.Guild = guild
		case ExpectChannel:
			if c.ChannelID == "" {
				return nil, fmt.Errorf("hydrating %s: %w", exp, ErrMissingID)
			}
			channel, err := c.caches.Channels.Get(ctx, c.ChannelID)
			if err != nil {
				return nil, fmt.Errorf("hydrating %s: %w", exp, err)
			}
			out.Channel = channel
		default:
			return nil, fmt.Errorf("invalid expectation %s for context", exp)
		}
	}
	return &out, nil
}

// Hydration is the soft result of Hydrator: call sites branch on OK
// instead of propagating an error.
type Hydration struct {
	ctx *Context
	err error
}

// OK reports whether every expectation resolved.
func (h *Hydration) OK() bool { return h.err == nil }

// Context returns the hydrated copy, or nil when hydration failed.
func (h *Hydration) Context() *Context { return h.ctx }

// Err returns the swallowed hydration error, if any.
func (h *Hydration) Err() error { return h.err }

// Hydrator attempts Hydrate and swallows failure. It is the softened
// variant of Hydrate, not a separate algorithm.
func (c *Context) Hydrator(ctx context.Context, expectations ...Expectation) *Hydration {
	hydrated, err := c.Hydrate(ctx, expectations...)
	return &Hydration{ctx: hydrated, err: err}
}

// HydratedMessage is a message with its requested relations attached.
// The source message is shared, not copied deep, and never mutated.
type HydratedMessage struct {
	*entity.Message

	Reference *entity.Message
	Guild     *entity.Guild
	Channel   *entity.Channel
}

// HydrateMessage resolves the requested relations of a message entity:
// the reply-reference message, the guild, and the channel. It fails on
// the first unresolvable expectation.
func HydrateMessage(ctx context.Context, caches *cache.Caches, msg *entity.Message, expectations ...Expectation) (*HydratedMessage, error) {
	out := &HydratedMessage{Message: msg}
	for _, exp := range expectations {
		switch exp {
		case ExpectMessage:
			ref := msg.Reference
			if ref == nil || ref.MessageID == "" || ref.ChannelID == "" {
				return nil, fmt.Errorf("hydrating %s: %w", exp, ErrMissingID)
			}
			resolved, err := caches.Messages.Get(ctx, ref.ChannelID, ref.MessageID)
			if err != nil {
				return nil, fmt.Errorf("hydrating %s: %w", exp, err)
			}
			out.Reference = resolved
		case ExpectGuild:
			if msg.GuildID == "" {
				return nil, fmt.Errorf("hydrating %s: %w", exp, ErrMissingID)
			}
			guild, err := caches.Guilds.Get(ctx, msg.GuildID)
			if err != nil {
				return nil, fmt.Errorf("hydrating %s: %w", exp, err)
			}
			out.Guild = guild
		case ExpectChannel:
			if msg.ChannelID == "" {
				return nil, fmt.Errorf("hydrating %s: %w", exp, ErrMissingID)
			}
			channel, err := caches.Channels.Get(ctx, msg.ChannelID)
			if err != nil {
				return nil, fmt.Errorf("hydrating %s: %w", exp, err)
			}
			out.Channel = channel
		default:
			return nil, fmt.Errorf("invalid expectation %s for message", exp)
		}
	}
	return out, nil
}

// MessageHydration is the soft result of MessageHydrator.
type MessageHydration struct {
	msg *HydratedMessage
	err error
}

// OK reports whether every expectation resolved.
func (h *MessageHydration) OK() bool { return h.err == nil }

// Message returns the hydrated message, or nil when hydration failed.
func (h *MessageHydration) Message() *HydratedMessage { return h.msg }

// Err returns the swallowed hydration error, if any.
func (h *MessageHydration) Err() error { return h.err }

// MessageHydrator attempts HydrateMessage and swallows failure.
func MessageHydrator(ctx context.Context, caches *cache.Caches, msg *entity.Message, expectations ...Expectation) *MessageHydration {
	hydrated, err := HydrateMessage(ctx, caches, msg, expectations...)
	return &MessageHydration{msg: hydrated, err: err}
}
