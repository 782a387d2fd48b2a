// ABOUTME: Tests for the client facade: config validation, wiring, and registration.
// ABOUTME: REST-backed paths run against an httptest server through WithBaseURL.

package unicord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicord/unicord/bus"
	"github.com/unicord/unicord/entity"
	"github.com/unicord/unicord/gateway"
	"github.com/unicord/unicord/processor"
	"github.com/unicord/unicord/rest"
)

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(Config{ApplicationID: "app1"})
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = New(Config{Token: "tok"})
	assert.ErrorIs(t, err, ErrNoApplicationID)

	c, err := New(Config{Token: "tok", ApplicationID: "app1"})
	require.NoError(t, err)
	assert.NotNil(t, c.Caches())
	assert.NotNil(t, c.REST())
	assert.Equal(t, gateway.StateDisconnected, c.State())
	assert.Nil(t, c.Self())
}

func TestClient_RegistrationHelpers(t *testing.T) {
	c, err := New(Config{Token: "tok", ApplicationID: "app1"})
	require.NoError(t, err)

	handler := Func(func(ctx context.Context, dctx *Context, args *Args) error {
		return nil
	})

	require.NoError(t, c.Command("ping", handler, "p"))
	require.NoError(t, c.On(handler, "MESSAGE_CREATE"))
	require.NoError(t, c.Component(handler, "confirm"))

	c.Unregister(processor.ChatCommands, nil, "ping", "p")

	// Slash registration rejects plain funcs.
	assert.ErrorIs(t, c.Slash("greet", nil), processor.ErrNotCommand)
}

func TestClient_Slash_DeclaresCommand(t *testing.T) {
	declared := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			var decl struct {
				Name string `json:"name"`
			}
			_ = json.Unmarshal(body, &decl)
			declared <- r.URL.Path + ":" + decl.Name
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		Token:         "tok",
		ApplicationID: "app1",
		RESTOptions:   []rest.Option{rest.WithBaseURL(srv.URL)},
	})
	require.NoError(t, err)

	cmd := &Command{
		Description: "greets",
		Run: func(ctx context.Context, dctx *Context, values Values) error {
			return nil
		},
	}
	require.NoError(t, c.Slash("greet", cmd))

	assert.Equal(t, "/applications/app1/commands:greet", <-declared)
}

func TestClient_SendMessage(t *testing.T) {
	var mu sync.Mutex
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		mu.Unlock()
		w.Write([]byte(`{"id":"m9","channel_id":"ch1","content":"hi"}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		Token:         "tok",
		ApplicationID: "app1",
		RESTOptions:   []rest.Option{rest.WithBaseURL(srv.URL)},
	})
	require.NoError(t, err)

	sent, err := c.SendMessage(context.Background(), "ch1", entity.NewMessage().SetContent("hi"))
	require.NoError(t, err)
	assert.Equal(t, "m9", sent.ID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/channels/ch1/messages", gotPath)
	assert.JSONEq(t, `{"content":"hi"}`, string(gotBody))

	_, err = c.SendMessage(context.Background(), "", entity.NewMessage())
	assert.Error(t, err)
}

func TestClient_Subscribe_TapsWriteThroughBus(t *testing.T) {
	c, err := New(Config{Token: "tok", ApplicationID: "app1"})
	require.NoError(t, err)

	var seen []string
	c.Subscribe("GUILD_CREATE", func(ev bus.Event) {
		seen = append(seen, ev.Name)
	})

	// The caches subscribe to the same bus; feeding it directly proves
	// the binding without a live socket.
	c.events.Publish(bus.Event{
		Name:    "GUILD_CREATE",
		Payload: []byte(`{"id":"g1","name":"Guild"}`),
	})

	assert.Equal(t, []string{"GUILD_CREATE"}, seen)
	g, ok := c.Caches().Guilds.Lookup("g1")
	require.True(t, ok)
	assert.Equal(t, "Guild", g.Name)
}
