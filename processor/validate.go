// ABOUTME: Argument validation and coercion for Command descriptors.
// ABOUTME: Pairs inputs with declared options, checks choices, and resolves entity references.

package processor

import (
	"context"
	"fmt"
	"strings"
)

// ValidationError is an invalid argument at dispatch time. It is
// reported to the specific invocation (typically as a user-visible
// reply), never as a process fault.
type ValidationError struct {
	Option string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid option %q: %s", e.Option, e.Reason)
}

// resolveArgs pairs each declared option with its input — by position
// for text commands, by option name for application commands — and
// produces the named value map handed to Command.Run.
//
// Excess inputs are ignored. A missing required option fails; a missing
// optional option resolves to an explicit nil entry.
func (p *Processor) resolveArgs(ctx context.Context, defs []Option, args *Args) (Values, error) {
	values := make(Values, len(defs))

	for i, def := range defs {
		input, ok := inputFor(def, i, args)
		if !ok {
			if def.Required {
				return nil, &ValidationError{Option: def.Name, Reason: "required option missing"}
			}
			values[def.Name] = nil
			continue
		}

		if len(def.Choices) > 0 {
			matched := false
			for _, choice := range def.Choices {
				if choiceEqual(choice.Value, input) {
					values[def.Name] = choice.Value
					matched = true
					break
				}
			}
			if !matched {
				return nil, &ValidationError{
					Option: def.Name,
					Reason: fmt.Sprintf("must be one of %s, got %v", choiceList(def.Choices), input),
				}
			}
			continue
		}

		resolved, err := p.coerce(ctx, def, input)
		if err != nil {
			return nil, err
		}
		values[def.Name] = resolved
	}

	return values, nil
}

// inputFor finds the input paired with def: positional index for text
// commands, declared option name for application commands.
func inputFor(def Option, position int, args *Args) (any, bool) {
	if args.Options != nil {
		for _, opt := range args.Options {
			if opt.Name == def.Name {
				return opt.Value, true
			}
		}
		return nil, false
	}
	if position < len(args.Positional) {
		return args.Positional[position], true
	}
	return nil, false
}

// coerce resolves entity-typed options through the caches and passes
// everything else through under the declared name.
func (p *Processor) coerce(ctx context.Context, def Option, input any) (any, error) {
	switch def.Type {
	case OptionUser:
		id, ok := entityRef(input, "@")
		if !ok {
			return nil, &ValidationError{Option: def.Name, Reason: fmt.Sprintf("not a user reference: %v", input)}
		}
		user, err := p.caches.Users.Get(ctx, id)
		if err != nil {
			return nil, &ValidationError{Option: def.Name, Reason: fmt.Sprintf("cannot resolve user %s: %v", id, err)}
		}
		return user, nil
	case OptionChannel:
		id, ok := entityRef(input, "#")
		if !ok {
			return nil, &ValidationError{Option: def.Name, Reason: fmt.Sprintf("not a channel reference: %v", input)}
		}
		channel, err := p.caches.Channels.Get(ctx, id)
		if err != nil {
			return nil, &ValidationError{Option: def.Name, Reason: fmt.Sprintf("cannot resolve channel %s: %v", id, err)}
		}
		return channel, nil
	case OptionRole:
		id, ok := entityRef(input, "@&")
		if !ok {
			return nil, &ValidationError{Option: def.Name, Reason: fmt.Sprintf("not a role reference: %v", input)}
		}
		return id, nil
	default:
		return input, nil
	}
}

// entityRef extracts an id from a mention token ("<@123>", "<@!123>",
// "<#123>", "<@&123>") or accepts a raw numeric id.
func entityRef(input any, sigil string) (string, bool) {
	s, ok := input.(string)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		inner := s[1 : len(s)-1]
		inner, found := strings.CutPrefix(inner, sigil)
		if !found {
			return "", false
		}
		// Nickname mentions carry an extra bang after the sigil.
		inner = strings.TrimPrefix(inner, "!")
		if isID(inner) {
			return inner, true
		}
		return "", false
	}
	if isID(s) {
		return s, true
	}
	return "", false
}

func isID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// choiceEqual compares an input against a declared choice value.
// Numeric values normalize to float64 so a declared int matches the
// float64 the JSON decoder produces.
func choiceEqual(choice, input any) bool {
	return normalize(choice) == normalize(input)
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

func choiceList(choices []Choice) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = fmt.Sprintf("%v", c.Value)
	}
	return strings.Join(parts, ", ")
}
