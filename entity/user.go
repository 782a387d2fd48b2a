// ABOUTME: User and guild-member data types with their wire conversions.
// ABOUTME: Users are the most commonly cached entity (authors, mentions, interaction invokers).

package entity

import (
	"encoding/json"
	"fmt"
)

// User is a platform account. Bot accounts carry Bot=true and are
// excluded from text-command processing.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
	Bot           bool   `json:"bot,omitempty"`
	System        bool   `json:"system,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

// Tag returns the legacy username#discriminator form, or the bare
// username when the account has no discriminator.
func (u *User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// Mention returns the token that renders as a mention of this user.
func (u *User) Mention() string {
	return "<@" + u.ID + ">"
}

// UserFromWire decodes a raw user payload.
func UserFromWire(raw json.RawMessage) (*User, error) {
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}
	return &u, nil
}

// Member is a user's guild-scoped profile. Interaction payloads carry
// the invoker as a member (with the user embedded) inside guilds.
type Member struct {
	User     *User    `json:"user,omitempty"`
	Nick     string   `json:"nick,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	JoinedAt string   `json:"joined_at,omitempty"`
	Pending  bool     `json:"pending,omitempty"`
}
