// Package dispatch holds the per-event Context handed to handlers and
// the hydration layer that resolves a context's or message's related
// entities on demand through the caches.
//
// A Context is created once per inbound dispatch and discarded when
// handler execution completes. Hydration never mutates its input; it
// returns an augmented copy, and the soft Hydrator variant converts
// hydration failure into a branchable result instead of an error.
package dispatch
