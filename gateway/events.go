// ABOUTME: Dispatch-frame handling: sequence tracking, cache write-through, context
// ABOUTME: construction, and routing into the text-command and interaction paths.

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"github.com/unicord/unicord/bus"
	"github.com/unicord/unicord/dispatch"
	"github.com/unicord/unicord/entity"
	"github.com/unicord/unicord/processor"
)

// handleDispatch processes an opcode-0 frame: sequence update, bus
// publish (cache write-through happens synchronously there), context
// construction, and handler dispatch. Handler invocations go through
// the session's dispatch worker, so they start in wire-arrival order
// and the frame loop never waits on them.
func (g *Gateway) handleDispatch(sess *session, f *frame) {
	if f.T == nil || *f.T == "" {
		g.logger.Warn("dropping dispatch without event name", "session", sess.id)
		return
	}
	name := *f.T
	payload := f.D

	// Sequence numbers are monotonic; stale frames never move it back.
	if f.S != nil {
		sess.mu.Lock()
		if *f.S > sess.seq {
			sess.seq = *f.S
		}
		sess.mu.Unlock()
	}

	// First successful dispatch completes the handshake.
	g.mu.Lock()
	if g.state != StateConnected {
		g.state = StateConnected
	}
	g.mu.Unlock()

	// Write-through for entity-bearing events before any handler runs.
	g.events.Publish(bus.Event{Name: name, Payload: payload})

	var dctx *dispatch.Context
	switch name {
	case "READY":
		g.handleReady(sess, payload)
	case "MESSAGE_CREATE", "MESSAGE_UPDATE":
		msg, err := entity.MessageFromWire(payload)
		if err != nil {
			g.logger.Warn("dropping malformed message event", "event", name, "err", err)
			return
		}
		dctx, err = dispatch.NewMessageContext(g.api, g.caches, msg)
		if err != nil {
			g.logger.Warn("cannot build message context", "event", name, "err", err)
			return
		}
		if name == "MESSAGE_CREATE" {
			sess.enqueue(func() { g.routeTextCommand(dctx, msg) })
		}
	case "INTERACTION_CREATE":
		in, err := entity.InteractionFromWire(payload)
		if err != nil {
			g.logger.Warn("dropping malformed interaction event", "err", err)
			return
		}
		dctx, err = dispatch.NewInteractionContext(g.api, g.caches, in)
		if err != nil {
			g.logger.Warn("cannot build interaction context", "err", err)
			return
		}
		sess.enqueue(func() { g.routeInteraction(dctx, in) })
	}

	// Generic event handlers run for every named dispatch.
	sess.enqueue(func() {
		if err := g.proc.Execute(context.Background(), processor.Events, name, dctx, &processor.Args{Payload: payload}); err != nil {
			g.logger.Warn("event handlers failed", "event", name, "err", err)
		}
	})
}

// handleReady captures the connection's own user and caches it.
func (g *Gateway) handleReady(sess *session, payload json.RawMessage) {
	var ready struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(payload, &ready); err != nil || len(ready.User) == 0 {
		g.logger.Warn("malformed READY payload", "session", sess.id, "err", err)
		return
	}
	self, err := entity.UserFromWire(ready.User)
	if err != nil {
		g.logger.Warn("malformed READY user", "session", sess.id, "err", err)
		return
	}

	g.mu.Lock()
	g.self = self
	g.mu.Unlock()
	g.caches.Users.Set(self.ID, self)

	g.logger.Info("ready", "session", sess.id, "user", self.Tag())
}

// routeTextCommand runs the prefix/mention command path for a created
// message: not from a bot, not from self, content starting with the
// prefix or a self-mention.
func (g *Gateway) routeTextCommand(dctx *dispatch.Context, msg *entity.Message) {
	self := g.Self()
	if self == nil {
		g.logger.Warn("message before READY, skipping command routing")
		return
	}
	if msg.Author == nil || msg.Author.Bot || msg.Author.ID == self.ID {
		return
	}

	content := strings.TrimSpace(msg.Content)
	var remainder string
	switch {
	case g.cfg.Prefix != "" && strings.HasPrefix(content, g.cfg.Prefix):
		remainder = content[len(g.cfg.Prefix):]
	case strings.HasPrefix(content, self.Mention()):
		remainder = content[len(self.Mention()):]
	default:
		return
	}

	args := splitArgs(strings.TrimSpace(remainder))
	if len(args) == 0 {
		return
	}
	command, args := args[0], args[1:]

	ctx := context.Background()
	if !g.proc.Has(processor.ChatCommands, command) {
		if g.cfg.NotFound != nil {
			g.cfg.NotFound(ctx, dctx, command)
		}
		return
	}

	err := g.proc.Execute(ctx, processor.ChatCommands, command, dctx, &processor.Args{Positional: args})
	g.reportInvocationError(ctx, dctx, command, err)
}

// routeInteraction branches an interaction by type: application
// commands validate options and run the structured path; component
// interactions route by custom id.
func (g *Gateway) routeInteraction(dctx *dispatch.Context, in *entity.Interaction) {
	// Interactions embed partial guild/member/user objects; write them
	// through before handlers run.
	if in.Guild != nil {
		g.caches.Guilds.Set(in.Guild.ID, in.Guild)
	}
	if in.Member != nil && in.Member.User != nil {
		g.caches.Users.Set(in.Member.User.ID, in.Member.User)
	}
	if in.User != nil {
		g.caches.Users.Set(in.User.ID, in.User)
	}

	ctx := context.Background()
	switch in.Type {
	case entity.InteractionTypeCommand:
		command := in.Command.Name
		if !g.proc.Has(processor.SlashCommands, command) {
			g.respondOrLog(ctx, dctx, "Unknown command: "+command)
			return
		}
		err := g.proc.Execute(ctx, processor.SlashCommands, command, dctx, &processor.Args{Options: in.Command.Options})
		g.reportInvocationError(ctx, dctx, command, err)
	case entity.InteractionTypeComponent:
		customID := in.Component.CustomID
		if !g.proc.Has(processor.Components, customID) {
			g.respondOrLog(ctx, dctx, "Unknown interaction: `"+customID+"`")
			return
		}
		err := g.proc.Execute(ctx, processor.Components, customID, dctx, &processor.Args{Component: in.Component})
		g.reportInvocationError(ctx, dctx, customID, err)
	default:
		g.logger.Debug("ignoring interaction type", "type", in.Type)
	}
}

// reportInvocationError makes validation failures user-visible on the
// triggering invocation. Other handler errors are already logged by the
// processor.
func (g *Gateway) reportInvocationError(ctx context.Context, dctx *dispatch.Context, name string, err error) {
	if err == nil {
		return
	}
	var verr *processor.ValidationError
	if errors.As(err, &verr) {
		g.respondOrLog(ctx, dctx, verr.Error())
	}
}

// respondOrLog prefers the interaction callback, falls back to a
// channel reply, and logs when neither lands.
func (g *Gateway) respondOrLog(ctx context.Context, dctx *dispatch.Context, content string) {
	var err error
	if dctx.Interaction != nil {
		err = dctx.Respond(ctx, content)
	} else {
		_, err = dctx.ReplyText(ctx, content)
	}
	if err != nil {
		g.logger.Warn("cannot deliver response", "err", err)
	}
}

// splitArgs splits a command remainder on whitespace, keeping quoted
// segments (single or double) together with their quotes stripped.
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	var quote rune
	inToken := false

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				args = append(args, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		args = append(args, current.String())
	}
	return args
}
