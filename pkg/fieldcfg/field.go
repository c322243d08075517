// Package fieldcfg describes the dynamically configured form: an ordered
// list of field definitions loaded from JSON, YAML, or derived from an
// OpenAPI request schema.
package fieldcfg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docgen/pkg/block"
	"github.com/goliatone/go-docgen/pkg/config"
)

// Field types understood by the pipeline. Anything outside this set renders
// as a plain text input but is still validated as a scalar value.
const (
	TypeText     = "text"
	TypeTextarea = "textarea"
	TypeSelect   = "select"
	TypeDate     = "date"
	TypeBlocks   = "analysisBlocks"
)

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes a single form field. Block-list fields additionally carry
// the subset of block kinds the field accepts.
type Field struct {
	Name        string `json:"name" yaml:"name"`
	Label       string `json:"label" yaml:"label"`
	Type        string `json:"type" yaml:"type"`
	Required    bool   `json:"required" yaml:"required"`
	Section     string `json:"section,omitempty" yaml:"section,omitempty"`
	Span        int    `json:"span,omitempty" yaml:"span,omitempty"`
	Rows        int    `json:"rows,omitempty" yaml:"rows,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`

	Options []Option `json:"options,omitempty" yaml:"options,omitempty"`

	// AllowedTypes constrains which block kinds a block-list field accepts.
	// Empty means both text and image.
	AllowedTypes []block.Kind `json:"allowedTypes,omitempty" yaml:"allowedTypes,omitempty"`

	AddTextLabel  string `json:"addTextLabel,omitempty" yaml:"addTextLabel,omitempty"`
	AddImageLabel string `json:"addImageLabel,omitempty" yaml:"addImageLabel,omitempty"`
}

// IsBlockField reports whether the field's value is a block list.
func (f Field) IsBlockField() bool {
	return f.Type == TypeBlocks
}

// EffectiveAllowedTypes resolves the allowed block kinds, defaulting to both
// when the configuration does not constrain them.
func (f Field) EffectiveAllowedTypes() []block.Kind {
	if len(f.AllowedTypes) == 0 {
		return []block.Kind{block.KindText, block.KindImage}
	}
	return f.AllowedTypes
}

// Parse decodes a field configuration document. JSON and YAML are both
// accepted; the format is detected from the first meaningful byte.
func Parse(data []byte) ([]Field, error) {
	var fields []Field
	if looksLikeJSON(data) {
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("fieldcfg: parse json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("fieldcfg: parse yaml: %w", err)
		}
	}
	return validate(fields)
}

// Load fetches and parses a field configuration from the given source.
func Load(ctx context.Context, loader *config.Loader, src config.Source) ([]Field, error) {
	data, err := loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fieldcfg: load: %w", err)
	}
	return Parse(data)
}

func validate(fields []Field) ([]Field, error) {
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("fieldcfg: field %d has no name", i)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("fieldcfg: duplicate field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		for _, kind := range f.AllowedTypes {
			if kind != block.KindText && kind != block.KindImage {
				return nil, fmt.Errorf("fieldcfg: field %q: unknown allowed type %q", f.Name, kind)
			}
		}
	}
	return fields, nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")
}
