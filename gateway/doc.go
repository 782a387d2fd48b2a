// Package gateway owns the persistent websocket connection to the
// platform: the opcode state machine, heartbeat scheduling, identify
// and reconnect sequencing, and the translation of inbound frames into
// cache write-through and processor dispatch.
//
// Frames are handled one at a time in arrival order on a single read
// loop per connection. Handler invocations are queued to a dispatch
// worker owned by the session, so they start in wire-arrival order
// while the frame loop never stalls on a slow handler. Each connection
// generation gets a fresh session (socket, sequence, heartbeat timer,
// dispatch worker) that is destroyed on reconnect.
package gateway
