// Package entity holds the plain data types exchanged with the platform:
// users, guilds, roles, channels, messages, interactions, and the builder
// conveniences for composing outgoing messages and embeds. Each cacheable
// type has a FromWire function that is the canonical decode path from a
// raw REST or gateway payload.
package entity
