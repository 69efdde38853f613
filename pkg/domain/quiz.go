package domain

import (
	"fmt"
)

// Option is a selectable answer. Choosing it adds its trait tags to the session.
type Option struct {
	Text   string   `json:"text" yaml:"text" mapstructure:"text"`
	Traits []string `json:"traits" yaml:"traits" mapstructure:"traits"`
}

// Question is a prompt with an ordered list of options.
type Question struct {
	Text    string   `json:"text" yaml:"text" mapstructure:"text"`
	Options []Option `json:"options" yaml:"options" mapstructure:"options"`
}

// Category is a possible quiz outcome.
// Its Key is the trait tag that votes for it.
type Category struct {
	Key         string   `json:"key" yaml:"key" mapstructure:"key"`
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Description string   `json:"description" yaml:"description" mapstructure:"description"`
	Image       string   `json:"image,omitempty" yaml:"image" mapstructure:"image"`
	SponsorInfo string   `json:"sponsor_info" yaml:"sponsor_info" mapstructure:"sponsor_info"`
	Traits      []string `json:"traits" yaml:"traits" mapstructure:"traits"`
}

// DisplayName returns Name, falling back to Key.
func (c Category) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Key
}

// Brand holds the presentation copy shared by every front-end.
type Brand struct {
	Title         string `json:"title" yaml:"title" mapstructure:"title"`
	Welcome       string `json:"welcome" yaml:"welcome" mapstructure:"welcome"`
	Website       string `json:"website" yaml:"website" mapstructure:"website"`
	LogoPath      string `json:"logo_path,omitempty" yaml:"logo_path" mapstructure:"logo_path"`
	ShareTemplate string `json:"share_template" yaml:"share_template" mapstructure:"share_template"`
	ContactEmail  string `json:"contact_email" yaml:"contact_email" mapstructure:"contact_email"`
	ContactPhone  string `json:"contact_phone" yaml:"contact_phone" mapstructure:"contact_phone"`
	Address       string `json:"address" yaml:"address" mapstructure:"address"`
	OpeningHours  string `json:"opening_hours" yaml:"opening_hours" mapstructure:"opening_hours"`
	MapsURL       string `json:"maps_url,omitempty" yaml:"maps_url" mapstructure:"maps_url"`
	About         string `json:"about" yaml:"about" mapstructure:"about"`
}

// Quiz is the immutable question set and its result categories.
// It is shared read-only by all sessions.
type Quiz struct {
	Questions  []Question `json:"questions" yaml:"questions" mapstructure:"questions"`
	Categories []Category `json:"categories" yaml:"categories" mapstructure:"categories"`

	// DefaultKey names the category returned when no trait matches.
	// Empty means the first listed category.
	DefaultKey string `json:"default,omitempty" yaml:"default" mapstructure:"default"`

	Brand Brand `json:"brand" yaml:"brand" mapstructure:"brand"`
}

// Len returns the number of questions.
func (q *Quiz) Len() int {
	return len(q.Questions)
}

// Category looks up a category by key.
func (q *Quiz) Category(key string) (Category, bool) {
	for _, c := range q.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Default returns the fallback category.
func (q *Quiz) Default() Category {
	if q.DefaultKey != "" {
		if c, ok := q.Category(q.DefaultKey); ok {
			return c
		}
	}
	if len(q.Categories) == 0 {
		return Category{}
	}
	return q.Categories[0]
}

// Validate checks the structural rules every quiz must satisfy.
func (q *Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidQuiz)
	}
	for i, question := range q.Questions {
		if len(question.Options) == 0 {
			return fmt.Errorf("%w: question %d has no options", ErrInvalidQuiz, i+1)
		}
		for j, opt := range question.Options {
			if len(opt.Traits) == 0 {
				return fmt.Errorf("%w: question %d option %d has no traits", ErrInvalidQuiz, i+1, j+1)
			}
		}
	}

	if len(q.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidQuiz)
	}
	seen := make(map[string]bool, len(q.Categories))
	for _, c := range q.Categories {
		if c.Key == "" {
			return fmt.Errorf("%w: category without key", ErrInvalidQuiz)
		}
		if seen[c.Key] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidQuiz, c.Key)
		}
		seen[c.Key] = true
	}

	if q.DefaultKey != "" && !seen[q.DefaultKey] {
		return fmt.Errorf("%w: default category %q is not defined", ErrInvalidQuiz, q.DefaultKey)
	}
	return nil
}
