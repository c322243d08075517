package formapi

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-docgen/pkg/fieldcfg"
	"github.com/goliatone/go-docgen/pkg/orchestrator"
	"github.com/goliatone/go-docgen/pkg/preview"
	"github.com/goliatone/go-docgen/pkg/templates"
)

// GuardFunc can reject a request before any handler logic runs. Returning an
// error that satisfies HTTPError controls the response status.
type GuardFunc func(r *http.Request) error

// Options carries the component configuration shared by every route.
type Options struct {
	FieldsPath    string
	TemplatesPath string
	ValidatePath  string
	GeneratePath  string
	PreviewPath   string

	// MaxBodyBytes bounds request bodies on the POST routes. Payloads carry
	// base64 image data so the default is deliberately generous.
	MaxBodyBytes int64

	Fields    []fieldcfg.Field
	Registry  templates.Registry
	Generator *orchestrator.Orchestrator
	Preview   *preview.Renderer
	Guard     GuardFunc
	Logger    *log.Logger
}

// OptionFn mutates Options during construction.
type OptionFn func(*Options)

// DefaultOptions returns the baseline configuration.
func DefaultOptions() Options {
	return Options{
		FieldsPath:    "/api/fields",
		TemplatesPath: "/api/templates",
		ValidatePath:  "/api/validate",
		GeneratePath:  "/api/generate",
		PreviewPath:   "/api/preview",
		MaxBodyBytes:  32 << 20,
	}
}

// NewOptions applies overrides on top of DefaultOptions and normalises the
// result.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.FieldsPath == "" {
		opts.FieldsPath = "/api/fields"
	}
	if opts.TemplatesPath == "" {
		opts.TemplatesPath = "/api/templates"
	}
	if opts.ValidatePath == "" {
		opts.ValidatePath = "/api/validate"
	}
	if opts.GeneratePath == "" {
		opts.GeneratePath = "/api/generate"
	}
	if opts.PreviewPath == "" {
		opts.PreviewPath = "/api/preview"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 32 << 20
	}
	if opts.Fields != nil {
		opts.Fields = append([]fieldcfg.Field{}, opts.Fields...)
	}
	if opts.Registry != nil {
		opts.Registry = append(templates.Registry{}, opts.Registry...)
	}
	return opts
}

// WithFields sets the field definitions served and validated against.
func WithFields(fields []fieldcfg.Field) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if fields == nil {
			o.Fields = nil
			return
		}
		o.Fields = append([]fieldcfg.Field{}, fields...)
	}
}

// WithRegistry sets the template registry listed and generated from.
func WithRegistry(registry templates.Registry) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if registry == nil {
			o.Registry = nil
			return
		}
		o.Registry = append(templates.Registry{}, registry...)
	}
}

// WithGenerator sets the pipeline used by the generate route.
func WithGenerator(generator *orchestrator.Orchestrator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Generator = generator
	}
}

// WithPreview sets the renderer behind the preview route.
func WithPreview(renderer *preview.Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Preview = renderer
	}
}

// WithGuard installs a request guard applied to every route.
func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithLogger sets the structured logger used for request failures.
func WithLogger(logger *log.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithMaxBodyBytes bounds request body size on the POST routes.
func WithMaxBodyBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = limit
	}
}
