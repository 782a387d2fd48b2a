// ABOUTME: Channel data type with wire conversion.
// ABOUTME: DM channels have no guild id; that absence drives hydration errors.

package entity

import (
	"encoding/json"
	"fmt"
)

// Channel types as transmitted by the platform.
const (
	ChannelTypeGuildText  = 0
	ChannelTypeDM         = 1
	ChannelTypeGuildVoice = 2
	ChannelTypeGroupDM    = 3
	ChannelTypeCategory   = 4
)

// Channel is a message container: a guild text channel, a DM, a
// category, and so on.
type Channel struct {
	ID       string `json:"id"`
	Type     int    `json:"type"`
	GuildID  string `json:"guild_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Topic    string `json:"topic,omitempty"`
	Position int    `json:"position,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
	NSFW     bool   `json:"nsfw,omitempty"`
}

// Mention returns the token that renders as a channel link.
func (c *Channel) Mention() string {
	return "<#" + c.ID + ">"
}

// ChannelFromWire decodes a raw channel payload.
func ChannelFromWire(raw json.RawMessage) (*Channel, error) {
	var c Channel
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decoding channel: %w", err)
	}
	return &c, nil
}
