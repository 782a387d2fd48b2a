// ABOUTME: Tests for hydration of context and message relations.
// ABOUTME: Covers cache hits, fetch fallbacks, missing-id errors, and the soft variants.

package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicord/unicord/cache"
	"github.com/unicord/unicord/entity"
)

// hydrateAPI serves guild, channel, and message lookups from canned
// payloads keyed by path suffix.
func hydrateAPI() *fakeAPI {
	return &fakeAPI{handle: func(method, path string) (json.RawMessage, error) {
		switch {
		case path == "/guilds/g1":
			return json.RawMessage(`{"id":"g1","name":"Guild One"}`), nil
		case path == "/channels/ch1":
			return json.RawMessage(`{"id":"ch1","name":"general","guild_id":"g1"}`), nil
		case strings.HasPrefix(path, "/channels/ch1/messages/"):
			id := strings.TrimPrefix(path, "/channels/ch1/messages/")
			return json.RawMessage(fmt.Sprintf(`{"id":%q,"channel_id":"ch1","content":"stored"}`, id)), nil
		default:
			return nil, fmt.Errorf("unexpected %s %s", method, path)
		}
	}}
}

func TestContext_Hydrate_ResolvesRelations(t *testing.T) {
	api := hydrateAPI()
	caches := cache.New(api, nil)
	c, err := NewMessageContext(api, caches, testMessage())
	require.NoError(t, err)

	hydrated, err := c.Hydrate(context.Background(), ExpectGuild, ExpectChannel, ExpectMessage)
	require.NoError(t, err)

	require.NotNil(t, hydrated.Guild)
	assert.Equal(t, "Guild One", hydrated.Guild.Name)
	require.NotNil(t, hydrated.Channel)
	assert.Equal(t, "general", hydrated.Channel.Name)
	require.NotNil(t, hydrated.Message)
	assert.Equal(t, "stored", hydrated.Message.Content)

	// The receiver is never mutated.
	assert.Nil(t, c.Guild)
	assert.Nil(t, c.Channel)
}

func TestContext_Hydrate_PrefersCachedEntities(t *testing.T) {
	api := hydrateAPI()
	caches := cache.New(api, nil)
	caches.Guilds.Set("g1", &entity.Guild{ID: "g1", Name: "Cached Guild"})

	c, err := NewMessageContext(api, caches, testMessage())
	require.NoError(t, err)

	hydrated, err := c.Hydrate(context.Background(), ExpectGuild)
	require.NoError(t, err)
	assert.Equal(t, "Cached Guild", hydrated.Guild.Name)
	assert.Empty(t, api.calls, "cached guild must not trigger a fetch")
}

func TestContext_Hydrate_MissingGuildID(t *testing.T) {
	api := hydrateAPI()
	caches := cache.New(api, nil)

	dm := &entity.Message{ID: "m1", ChannelID: "dm1", Content: "hi"}
	c, err := NewMessageContext(api, caches, dm)
	require.NoError(t, err)

	_, err = c.Hydrate(context.Background(), ExpectGuild)
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestContext_Hydrate_InvalidExpectation(t *testing.T) {
	api := hydrateAPI()
	caches := cache.New(api, nil)
	c, err := NewMessageContext(api, caches, testMessage())
	require.NoError(t, err)

	_, err = c.Hydrate(context.Background(), Expectation(99))
	assert.Error(t, err)
}

func TestContext_Hydrator_SwallowsFailure(t *testing.T) {
	api := hydrateAPI()
	caches := cache.New(api, nil)

	dm := &entity.Message{ID: "m1", ChannelID: "dm1", Content: "hi"}
	c, err := NewMessageContext(api, caches, dm)
	require.NoError(t, err)

	h := c.Hydrator(context.Background(), ExpectGuild)
	assert.False(t, h.OK())
	assert.Nil(t, h.Context())
	assert.ErrorIs(t, h.Err(), ErrMissingID)
}

func TestContext_Hydrator_Success(t *testing.T) {
	api := hydrateAPI()
	caches := cache.New(api, nil)
	c, err := NewMessageContext(api, caches, testMessage())
	require.NoError(t, err)

	h := c.Hydrator(context.Background(), ExpectChannel)
	require.True(t, h.OK())
	require.NotNil(t, h.Context())
	assert.Equal(t, "general", h.Context().Channel.Name)
}

func TestHydrateMessage_ResolvesReference(t *testing.T) {
	api := hydrateAPI()
	caches := cache.New(api, nil)

	msg := testMessage()
	msg.Reference = &entity.MessageReference{MessageID: "m0", ChannelID: "ch1"}

	hydrated, err := HydrateMessage(context.Background(), caches, msg, ExpectMessage, ExpectGuild)
	require.NoError(t, err)
	require.NotNil(t, hydrated.Reference)
	assert.Equal(t, "m0", hydrated.Reference.ID)
	require.NotNil(t, hydrated.Guild)
	assert.Equal(t, "g1", hydrated.Guild.ID)
	assert.Same(t, msg, hydrated.Message, "source message is shared, not copied")
}

func TestHydrateMessage_NoReference(t *testing.T) {
	api := hydrateAPI()
	caches := cache.New(api, nil)

	_, err := HydrateMessage(context.Background(), caches, testMessage(), ExpectMessage)
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestMessageHydrator_SwallowsFailure(t *testing.T) {
	api := hydrateAPI()
	caches := cache.New(api, nil)

	h := MessageHydrator(context.Background(), caches, testMessage(), ExpectMessage)
	assert.False(t, h.OK())
	assert.Nil(t, h.Message())
	assert.ErrorIs(t, h.Err(), ErrMissingID)
}
