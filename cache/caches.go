// ABOUTME: Typed entity caches and their write-through bindings to the event bus.
// ABOUTME: Messages carry the two-key (channel id, message id) lookup the REST path demands.

package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/unicord/unicord/bus"
	"github.com/unicord/unicord/entity"
	"github.com/unicord/unicord/rest"
)

// Default capacities. Guilds are the bot's own guild set and stay
// unbounded; everything else is high-cardinality over a long-running
// process and gets an LRU bound.
const (
	defaultUserCapacity    = 4096
	defaultChannelCapacity = 1024
	defaultMessageCapacity = 1024
)

// Caches bundles the per-type entity caches.
type Caches struct {
	Users    *Store[*entity.User]
	Guilds   *Store[*entity.Guild]
	Channels *Store[*entity.Channel]
	Messages *Messages

	logger *slog.Logger
}

// New builds the typed caches over the given transport. Pass nil
// logger for default.
func New(api rest.API, logger *slog.Logger) *Caches {
	if logger == nil {
		logger = slog.Default()
	}
	return &Caches{
		Users: NewStore("users", defaultUserCapacity, func(ctx context.Context, id string) (*entity.User, error) {
			raw, err := api.Get(ctx, "/users/"+id)
			if err != nil {
				return nil, err
			}
			return entity.UserFromWire(raw)
		}, logger),
		Guilds: NewStore("guilds", 0, func(ctx context.Context, id string) (*entity.Guild, error) {
			raw, err := api.Get(ctx, "/guilds/"+id)
			if err != nil {
				return nil, err
			}
			return entity.GuildFromWire(raw)
		}, logger),
		Channels: NewStore("channels", defaultChannelCapacity, func(ctx context.Context, id string) (*entity.Channel, error) {
			raw, err := api.Get(ctx, "/channels/"+id)
			if err != nil {
				return nil, err
			}
			return entity.ChannelFromWire(raw)
		}, logger),
		Messages: newMessages(api, logger),
		logger:   logger.With("component", "caches"),
	}
}

// Bind subscribes the write-through hooks for entity-bearing push
// events. The bus delivers synchronously, so a cached value is in
// place before command handlers for the same frame run.
func (c *Caches) Bind(b *bus.Bus) {
	writeThrough := func(names []string, apply func(json.RawMessage) error) {
		for _, name := range names {
			event := name
			b.Subscribe(event, func(ev bus.Event) {
				if err := apply(ev.Payload); err != nil {
					c.logger.Warn("write-through failed", "event", event, "err", err)
				}
			})
		}
	}

	writeThrough([]string{"GUILD_CREATE", "GUILD_UPDATE"}, func(raw json.RawMessage) error {
		g, err := entity.GuildFromWire(raw)
		if err != nil {
			return err
		}
		c.Guilds.Set(g.ID, g)
		return nil
	})
	writeThrough([]string{"CHANNEL_CREATE", "CHANNEL_UPDATE"}, func(raw json.RawMessage) error {
		ch, err := entity.ChannelFromWire(raw)
		if err != nil {
			return err
		}
		c.Channels.Set(ch.ID, ch)
		return nil
	})
	writeThrough([]string{"MESSAGE_CREATE", "MESSAGE_UPDATE"}, func(raw json.RawMessage) error {
		m, err := entity.MessageFromWire(raw)
		if err != nil {
			return err
		}
		c.Messages.Set(m.ID, m)
		if m.Author != nil {
			c.Users.Set(m.Author.ID, m.Author)
		}
		return nil
	})
}

// Messages is the message cache. Message lookups over REST need the
// channel id, so Get and Fetch take both keys; the store itself is
// keyed by message id alone.
type Messages struct {
	store *Store[*entity.Message]
	api   rest.API
}

func newMessages(api rest.API, logger *slog.Logger) *Messages {
	return &Messages{
		store: NewStore[*entity.Message]("messages", defaultMessageCapacity, nil, logger),
		api:   api,
	}
}

// Get returns the cached message or fetches it by (channel, message).
func (m *Messages) Get(ctx context.Context, channelID, messageID string) (*entity.Message, error) {
	if v, ok := m.store.Lookup(messageID); ok {
		return v, nil
	}
	return m.Fetch(ctx, channelID, messageID)
}

// Fetch loads the message over REST, coalescing concurrent fetches for
// the same message id.
func (m *Messages) Fetch(ctx context.Context, channelID, messageID string) (*entity.Message, error) {
	return m.store.do(ctx, messageID, func(ctx context.Context, id string) (*entity.Message, error) {
		raw, err := m.api.Get(ctx, "/channels/"+channelID+"/messages/"+id)
		if err != nil {
			return nil, err
		}
		return entity.MessageFromWire(raw)
	})
}

// Set stores a message under its id, overwriting whole.
func (m *Messages) Set(messageID string, msg *entity.Message) {
	m.store.Set(messageID, msg)
}

// Lookup reports the resolved message without fetching.
func (m *Messages) Lookup(messageID string) (*entity.Message, bool) {
	return m.store.Lookup(messageID)
}

// Len reports how many messages are cached.
func (m *Messages) Len() int {
	return m.store.Len()
}
