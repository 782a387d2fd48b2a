// ABOUTME: Handler registry and execution engine partitioned by handler category.
// ABOUTME: Application command registration fires the platform declaration without blocking.

package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"sync"
	"time"

	"github.com/unicord/unicord/cache"
	"github.com/unicord/unicord/dispatch"
	"github.com/unicord/unicord/rest"
)

// commandNamePattern is the platform's naming contract for application
// commands and their options.
var commandNamePattern = regexp.MustCompile(`^[-_\p{L}\p{N}]{1,32}$`)

var (
	// ErrInvalidName means a command or option name violates the
	// platform naming pattern.
	ErrInvalidName = errors.New("processor: invalid command name")

	// ErrNotCommand means an application command was registered with a
	// plain Func instead of a *Command descriptor.
	ErrNotCommand = errors.New("processor: application commands require a *Command handler")
)

// declareTimeout bounds the fire-and-forget REST declaration call.
const declareTimeout = 30 * time.Second

// Processor routes named events to their registered handlers and owns
// argument validation for Command descriptors.
type Processor struct {
	mu       sync.RWMutex
	handlers map[Category]map[string][]Handler

	api           rest.API
	caches        *cache.Caches
	applicationID string
	logger        *slog.Logger
}

// New creates a processor. The application id scopes command
// declarations; pass nil logger for default.
func New(api rest.API, caches *cache.Caches, applicationID string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		handlers: map[Category]map[string][]Handler{
			Events:        {},
			ChatCommands:  {},
			SlashCommands: {},
			Components:    {},
		},
		api:           api,
		caches:        caches,
		applicationID: applicationID,
		logger:        logger.With("component", "processor"),
	}
}

// Register appends handler to the ordered list for each name.
// Registration order is execution order. Application command names and
// option names are validated against the platform pattern, and the
// command is declared over REST without blocking the registration.
func (p *Processor) Register(cat Category, handler Handler, names ...string) error {
	if handler == nil || len(names) == 0 {
		return fmt.Errorf("processor: handler and at least one name are required")
	}

	if cat == SlashCommands {
		cmd, ok := handler.(*Command)
		if !ok || cmd == nil {
			return ErrNotCommand
		}
		for _, name := range names {
			if !commandNamePattern.MatchString(name) {
				return fmt.Errorf("%w: %q", ErrInvalidName, name)
			}
		}
		for _, opt := range cmd.Options {
			if !commandNamePattern.MatchString(opt.Name) {
				return fmt.Errorf("%w: option %q", ErrInvalidName, opt.Name)
			}
		}
		for _, name := range names {
			go p.declare(name, cmd)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, name := range names {
		p.handlers[cat][name] = append(p.handlers[cat][name], handler)
	}
	return nil
}

// declare registers the command with the platform. Failures are logged;
// local registration has already succeeded.
func (p *Processor) declare(name string, cmd *Command) {
	ctx, cancel := context.WithTimeout(context.Background(), declareTimeout)
	defer cancel()

	path := "/applications/" + p.applicationID + "/commands"
	if _, err := p.api.Post(ctx, path, cmd.declaration(name)); err != nil {
		p.logger.Warn("command declaration failed", "command", name, "err", err)
		return
	}
	p.logger.Debug("command declared", "command", name)
}

// Unregister removes handler from each name's list (first match by
// identity), or clears all handlers for the names when handler is nil.
func (p *Processor) Unregister(cat Category, handler Handler, names ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, name := range names {
		if handler == nil {
			delete(p.handlers[cat], name)
			continue
		}
		list := p.handlers[cat][name]
		for i, h := range list {
			if sameHandler(h, handler) {
				p.handlers[cat][name] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(p.handlers[cat][name]) == 0 {
			delete(p.handlers[cat], name)
		}
	}
}

// sameHandler compares handler identity. Command descriptors compare
// by pointer; Funcs by code pointer.
func sameHandler(a, b Handler) bool {
	if ca, ok := a.(*Command); ok {
		cb, ok := b.(*Command)
		return ok && ca == cb
	}
	fa, ok1 := a.(Func)
	fb, ok2 := b.(Func)
	if !ok1 || !ok2 {
		return false
	}
	return reflect.ValueOf(fa).Pointer() == reflect.ValueOf(fb).Pointer()
}

// Has reports whether at least one handler is registered for name.
func (p *Processor) Has(cat Category, name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handlers[cat][name]) > 0
}

// Execute runs the handlers registered for (cat, name) in registration
// order. A Command descriptor gets its inputs validated and coerced
// first; a Func receives the raw args unchanged. One handler's failure
// does not stop the rest; all failures come back joined. An unknown
// name is a no-op — the caller decides whether that is user-visible.
func (p *Processor) Execute(ctx context.Context, cat Category, name string, dctx *dispatch.Context, args *Args) error {
	p.mu.RLock()
	list := p.handlers[cat][name]
	handlers := make([]Handler, len(list))
	copy(handlers, list)
	p.mu.RUnlock()

	if args == nil {
		args = &Args{}
	}

	var errs []error
	for _, handler := range handlers {
		var err error
		switch h := handler.(type) {
		case *Command:
			var values Values
			values, err = p.resolveArgs(ctx, h.Options, args)
			if err == nil {
				err = h.Run(ctx, dctx, values)
			}
		case Func:
			err = h(ctx, dctx, args)
		}
		if err != nil {
			p.logger.Warn("handler failed",
				"category", cat.String(),
				"name", name,
				"err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
