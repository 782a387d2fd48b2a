// Package processor maintains the handler registry and executes
// registered handlers for a named event, text command, application
// command, or component interaction.
//
// Handlers come in two variants: a plain Func receiving the raw
// argument list or payload, and a Command descriptor declaring a typed
// option schema whose inputs are validated and coerced before its Run
// function sees them. Application command registration also declares
// the command to the platform over REST, fire-and-forget relative to
// local registration.
package processor
