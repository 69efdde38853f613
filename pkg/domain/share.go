package domain

import (
	"net/url"
	"strings"
)

// ShareCard is the text a user can post about their result, with ready-made share links.
type ShareCard struct {
	Category    string `json:"category"`
	Text        string `json:"text"`
	TelegramURL string `json:"telegram_url"`
	VKURL       string `json:"vk_url"`
}

// NewShareCard fills the brand share template.
// The template understands {animal} and {bot_username}.
func NewShareCard(b Brand, c Category, botUsername string) ShareCard {
	tmpl := b.ShareTemplate
	if tmpl == "" {
		tmpl = "{animal}"
	}
	text := strings.NewReplacer(
		"{animal}", c.DisplayName(),
		"{bot_username}", botUsername,
	).Replace(tmpl)

	return ShareCard{
		Category:    c.Key,
		Text:        text,
		TelegramURL: "https://t.me/share/url?text=" + url.QueryEscape(text),
		VKURL:       "https://vk.com/share.php?comment=" + url.QueryEscape(text),
	}
}
