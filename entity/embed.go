// ABOUTME: Rich embed type and its chaining builder.

package entity

import (
	"strconv"
	"strings"
)

// EmbedFooter is the small line under an embed.
type EmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// EmbedImage covers image, thumbnail, and video slots.
type EmbedImage struct {
	URL    string `json:"url,omitempty"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// EmbedAuthor is the byline at the top of an embed.
type EmbedAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// EmbedField is a titled value inside an embed body.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a rich content block attached to a message.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// NewEmbed starts an embed builder.
func NewEmbed() *Embed {
	return &Embed{}
}

// SetTitle sets the embed title.
func (e *Embed) SetTitle(title string) *Embed {
	e.Title = title
	return e
}

// SetDescription sets the embed body text.
func (e *Embed) SetDescription(description string) *Embed {
	e.Description = description
	return e
}

// SetURL makes the title a link.
func (e *Embed) SetURL(url string) *Embed {
	e.URL = url
	return e
}

// SetColor sets the accent color from an integer value.
func (e *Embed) SetColor(color int) *Embed {
	e.Color = color
	return e
}

// SetHexColor sets the accent color from a "#RRGGBB" string. Invalid
// input leaves the color unchanged.
func (e *Embed) SetHexColor(hex string) *Embed {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err == nil {
		e.Color = int(v)
	}
	return e
}

// SetFooter sets the footer line.
func (e *Embed) SetFooter(text, iconURL string) *Embed {
	e.Footer = &EmbedFooter{Text: text, IconURL: iconURL}
	return e
}

// SetImage sets the main image.
func (e *Embed) SetImage(url string) *Embed {
	e.Image = &EmbedImage{URL: url}
	return e
}

// SetThumbnail sets the corner thumbnail.
func (e *Embed) SetThumbnail(url string) *Embed {
	e.Thumbnail = &EmbedImage{URL: url}
	return e
}

// SetAuthor sets the byline.
func (e *Embed) SetAuthor(name, url, iconURL string) *Embed {
	e.Author = &EmbedAuthor{Name: name, URL: url, IconURL: iconURL}
	return e
}

// AddField appends a titled field.
func (e *Embed) AddField(name, value string, inline bool) *Embed {
	e.Fields = append(e.Fields, EmbedField{Name: name, Value: value, Inline: inline})
	return e
}

// ToMessage wraps the embed in a fresh outgoing message.
func (e *Embed) ToMessage() *Message {
	return NewMessage().AddEmbed(e)
}
