// ABOUTME: Guild, role, and emoji data types with wire conversions.
// ABOUTME: Guilds arrive whole on GUILD_CREATE/UPDATE and partially embedded in interactions.

package entity

import (
	"encoding/json"
	"fmt"
)

// Role is a guild permission group.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       int    `json:"color"`
	Hoist       bool   `json:"hoist"`
	Position    int    `json:"position"`
	Permissions string `json:"permissions"`
	Managed     bool   `json:"managed"`
	Mentionable bool   `json:"mentionable"`
}

// Emoji is a custom guild emoji. Unicode emoji have a nil ID.
type Emoji struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Animated bool   `json:"animated,omitempty"`
}

// Guild is a server the bot is a member of.
type Guild struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon,omitempty"`
	OwnerID     string   `json:"owner_id,omitempty"`
	Description string   `json:"description,omitempty"`
	MemberCount int      `json:"approximate_member_count,omitempty"`
	Roles       []*Role  `json:"roles,omitempty"`
	Emojis      []*Emoji `json:"emojis,omitempty"`
}

// GuildFromWire decodes a raw guild payload.
func GuildFromWire(raw json.RawMessage) (*Guild, error) {
	var g Guild
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decoding guild: %w", err)
	}
	return &g, nil
}

// Role returns the guild role with the given id, or nil.
func (g *Guild) Role(id string) *Role {
	for _, r := range g.Roles {
		if r.ID == id {
			return r
		}
	}
	return nil
}
