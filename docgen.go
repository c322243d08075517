// Package docgen turns structured form values into finished DOCX documents.
// It re-exports the most used types from the sub-packages and offers a single
// convenience entry point for callers that do not need to assemble the
// pipeline themselves.
package docgen

import (
	"context"

	"github.com/goliatone/go-docgen/pkg/block"
	"github.com/goliatone/go-docgen/pkg/fieldcfg"
	"github.com/goliatone/go-docgen/pkg/orchestrator"
	"github.com/goliatone/go-docgen/pkg/templates"
)

// Field describes one form field; see pkg/fieldcfg for the loaders.
type Field = fieldcfg.Field

// Template names one registered DOCX model; see pkg/templates.
type Template = templates.Template

// Registry is an ordered template collection.
type Registry = templates.Registry

// Block is one content unit of a block-list field.
type Block = block.Block

// Request describes one generation attempt.
type Request = orchestrator.Request

// Result carries the generated document.
type Result = orchestrator.Result

// ValidationError reports the required fields blocking generation.
type ValidationError = orchestrator.ValidationError

// Option configures the generation pipeline.
type Option = orchestrator.Option

// NewOrchestrator exposes the pipeline constructor from the module root.
func NewOrchestrator(options ...Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateDocument validates the values against the configured fields, builds
// the merge payload, and renders the selected template. An empty templateID
// picks the first registered template.
func GenerateDocument(ctx context.Context, values map[string]any, templateID string, options ...Option) (*Result, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, Request{
		TemplateID: templateID,
		Values:     values,
	})
}

// WithFields forwards the field definitions to the pipeline.
func WithFields(fields []Field) Option {
	return orchestrator.WithFields(fields)
}

// WithRegistry forwards the template registry to the pipeline.
func WithRegistry(registry Registry) Option {
	return orchestrator.WithRegistry(registry)
}
