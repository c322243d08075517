// Package templates manages the registry of document templates a user can
// pick from. Templates are opaque to the pipeline: a descriptor points at the
// DOCX bytes and nothing here inspects their internals.
package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docgen/pkg/config"
)

// ErrTemplateLoad reports a template descriptor or template bytes that could
// not be resolved.
var ErrTemplateLoad = errors.New("templates: template load failed")

// Template describes one selectable document template.
type Template struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Registry is the ordered list of available templates. The first entry is
// the default selection.
type Registry []Template

// Parse decodes a template registry document (JSON or YAML).
func Parse(data []byte) (Registry, error) {
	var registry Registry
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &registry); err != nil {
			return nil, fmt.Errorf("%w: parse json: %v", ErrTemplateLoad, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &registry); err != nil {
			return nil, fmt.Errorf("%w: parse yaml: %v", ErrTemplateLoad, err)
		}
	}

	for i, tpl := range registry {
		if strings.TrimSpace(tpl.ID) == "" {
			return nil, fmt.Errorf("%w: template %d has no id", ErrTemplateLoad, i)
		}
		if strings.TrimSpace(tpl.Path) == "" {
			return nil, fmt.Errorf("%w: template %q has no path", ErrTemplateLoad, tpl.ID)
		}
	}
	return registry, nil
}

// Load fetches and parses a registry from the given source.
func Load(ctx context.Context, loader *config.Loader, src config.Source) (Registry, error) {
	data, err := loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}
	return Parse(data)
}

// Find returns the template with the given id.
func (r Registry) Find(id string) (Template, bool) {
	for _, tpl := range r {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return Template{}, false
}

// Default returns the first registered template.
func (r Registry) Default() (Template, bool) {
	if len(r) == 0 {
		return Template{}, false
	}
	return r[0], true
}

// LoadBytes reads the binary template behind a descriptor. The path may be a
// local file or an HTTP URL.
func LoadBytes(ctx context.Context, loader *config.Loader, tpl Template) ([]byte, error) {
	var src config.Source
	if strings.HasPrefix(tpl.Path, "http://") || strings.HasPrefix(tpl.Path, "https://") {
		src = config.SourceFromURL(tpl.Path)
	} else {
		src = config.SourceFromFile(tpl.Path)
	}

	data, err := loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTemplateLoad, tpl.Path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", ErrTemplateLoad, tpl.Path)
	}
	return data, nil
}
