// Package bus is the owned event bus carrying raw gateway dispatches.
// The gateway publishes every named event here before handler dispatch;
// the entity caches subscribe their write-through hooks and integrators
// may tap the stream for events the command layer does not model. A Bus
// is constructed explicitly and passed in; there is no package-level
// instance.
package bus
