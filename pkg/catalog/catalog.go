// Package catalog loads quiz definitions.
//
// A catalog is a YAML (or JSON) document with brand copy, an ordered list of
// questions and an ordered list of result categories. The built-in zoo quiz is
// embedded and returned by Default.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/totem/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed zoo.yaml
var zooYAML []byte

// Format of a catalog document.
type Format int

const (
	YAML Format = iota
	JSON
)

// Default returns a fresh copy of the built-in zoo quiz.
func Default() *domain.Quiz {
	q, err := Parse(zooYAML, YAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return q
}

// Load reads a catalog file. Files ending in .json are read as JSON, anything else as YAML.
func Load(path string) (*domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	format := YAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = JSON
	}

	q, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*domain.Quiz, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes and validates a catalog document.
// Unknown keys are rejected so that typos do not silently drop data.
func Parse(data []byte, format Format) (*domain.Quiz, error) {
	var raw map[string]any
	switch format {
	case JSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidQuiz)
	}

	var quiz domain.Quiz
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &quiz,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuiz, err)
	}

	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	return &quiz, nil
}
