// ABOUTME: Top-level client facade wiring transport, caches, bus, processor, and gateway.
// ABOUTME: Registration helpers and send paths delegate to the owning subsystem.

package unicord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/unicord/unicord/bus"
	"github.com/unicord/unicord/cache"
	"github.com/unicord/unicord/dispatch"
	"github.com/unicord/unicord/entity"
	"github.com/unicord/unicord/gateway"
	"github.com/unicord/unicord/processor"
	"github.com/unicord/unicord/rest"
)

// Convenience aliases so simple bots only import this package.
type (
	// Context is the per-event view handed to handlers.
	Context = dispatch.Context

	// Args carries the raw inputs of one invocation.
	Args = processor.Args

	// Func is a plain handler.
	Func = processor.Func

	// Command is a declarative command descriptor with typed options.
	Command = processor.Command

	// Option declares one command parameter.
	Option = processor.Option

	// Choice restricts an option to a fixed value set.
	Choice = processor.Choice

	// Values is the validated name-to-value map handed to Command.Run.
	Values = processor.Values

	// Intent selects a gateway event family.
	Intent = gateway.Intent
)

// Option types, re-exported for descriptor literals.
const (
	OptionString     = processor.OptionString
	OptionInteger    = processor.OptionInteger
	OptionBoolean    = processor.OptionBoolean
	OptionUser       = processor.OptionUser
	OptionChannel    = processor.OptionChannel
	OptionRole       = processor.OptionRole
	OptionNumber     = processor.OptionNumber
	OptionAttachment = processor.OptionAttachment
)

var (
	// ErrNoToken means Config.Token was empty.
	ErrNoToken = errors.New("unicord: bot token is required")

	// ErrNoApplicationID means Config.ApplicationID was empty.
	ErrNoApplicationID = errors.New("unicord: application id is required")
)

// Config carries everything New needs to assemble a client.
type Config struct {
	// Token authenticates both the REST transport and the gateway.
	Token string

	// ApplicationID scopes application command declarations.
	ApplicationID string

	// Prefix triggers text commands; mentioning the bot works as an
	// alternative prefix regardless. Empty defaults to "!".
	Prefix string

	// Intents selects gateway event families. Empty selects the
	// default set (guilds and guild messages).
	Intents []Intent

	// Logger receives structured logs from every subsystem. Nil uses
	// slog.Default().
	Logger *slog.Logger

	// NotFound, when set, runs for prefixed text commands with no
	// registered handler.
	NotFound func(ctx context.Context, dctx *Context, command string)

	// RESTOptions tune the underlying transport (base URL, http client).
	RESTOptions []rest.Option
}

// Client is the assembled bot: one REST transport, one gateway
// connection, shared caches, and a handler processor.
type Client struct {
	rest    *rest.Client
	caches  *cache.Caches
	events  *bus.Bus
	proc    *processor.Processor
	gateway *gateway.Gateway
	logger  *slog.Logger
}

// New validates cfg and wires the subsystems together. The gateway
// stays disconnected until Connect.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrNoToken
	}
	if cfg.ApplicationID == "" {
		return nil, ErrNoApplicationID
	}

	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	restClient := rest.NewClient(cfg.Token, logger, cfg.RESTOptions...)
	caches := cache.New(restClient, logger)
	events := bus.New(logger)
	caches.Bind(events)
	proc := processor.New(restClient, caches, cfg.ApplicationID, logger)
	gw := gateway.New(gateway.Config{
		Token:         cfg.Token,
		ApplicationID: cfg.ApplicationID,
		Prefix:        cfg.Prefix,
		Intents:       cfg.Intents,
		NotFound:      cfg.NotFound,
	}, restClient, caches, proc, events, logger)

	return &Client{
		rest:    restClient,
		caches:  caches,
		events:  events,
		proc:    proc,
		gateway: gw,
		logger:  logger,
	}, nil
}

// Connect opens the gateway connection. The handshake and reconnect
// loop run in the background; Connect returns once the socket is open.
func (c *Client) Connect(ctx context.Context) error {
	return c.gateway.Connect(ctx)
}

// Close tears the gateway down deliberately. The REST transport stays
// usable.
func (c *Client) Close() {
	c.gateway.Close()
}

// State reports the gateway connection state.
func (c *Client) State() gateway.State {
	return c.gateway.State()
}

// Self returns the bot's own user once the connection is ready.
func (c *Client) Self() *entity.User {
	return c.gateway.Self()
}

// On registers fn for the named gateway events (e.g. "MESSAGE_CREATE").
func (c *Client) On(fn Func, events ...string) error {
	return c.proc.Register(processor.Events, fn, events...)
}

// Command registers a text command under the given names. The handler
// may be a Func (raw positional args) or a *Command (validated options).
func (c *Client) Command(name string, handler processor.Handler, aliases ...string) error {
	names := append([]string{name}, aliases...)
	return c.proc.Register(processor.ChatCommands, handler, names...)
}

// Slash registers and declares an application command. The handler must
// be a *Command descriptor.
func (c *Client) Slash(name string, cmd *Command) error {
	if cmd == nil {
		return processor.ErrNotCommand
	}
	return c.proc.Register(processor.SlashCommands, cmd, name)
}

// Component registers a handler for message component interactions with
// the given custom ids.
func (c *Client) Component(fn Func, customIDs ...string) error {
	return c.proc.Register(processor.Components, fn, customIDs...)
}

// Unregister removes a handler from the named entries of a category, or
// every handler for those names when handler is nil.
func (c *Client) Unregister(cat processor.Category, handler processor.Handler, names ...string) {
	c.proc.Unregister(cat, handler, names...)
}

// Subscribe taps the raw event bus for the named gateway event. Unlike
// On, bus subscribers run synchronously on the frame loop and must
// return quickly.
func (c *Client) Subscribe(event string, fn bus.HandlerFunc) {
	c.events.Subscribe(event, fn)
}

// SendMessage posts msg to a channel outside any dispatch context.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg *entity.Message) (*entity.Message, error) {
	if channelID == "" {
		return nil, fmt.Errorf("unicord: channel id is required")
	}
	raw, err := c.rest.Post(ctx, "/channels/"+channelID+"/messages", msg.WireBody())
	if err != nil {
		return nil, err
	}
	return entity.MessageFromWire(raw)
}

// SetPresence publishes a presence update on the live connection.
func (c *Client) SetPresence(status string, activities ...map[string]any) error {
	return c.gateway.SetPresence(status, activities...)
}

// Caches exposes the shared entity caches.
func (c *Client) Caches() *cache.Caches {
	return c.caches
}

// REST exposes the authenticated transport for endpoints the facade
// does not wrap.
func (c *Client) REST() rest.API {
	return c.rest
}
