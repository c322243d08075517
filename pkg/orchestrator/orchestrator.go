// Package orchestrator coordinates the full generation pipeline: validate
// the form state, normalize it into a merge payload, load the selected
// template, and merge. It applies sensible defaults while remaining open to
// dependency injection.
package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-docgen/pkg/config"
	"github.com/goliatone/go-docgen/pkg/fieldcfg"
	"github.com/goliatone/go-docgen/pkg/merge"
	"github.com/goliatone/go-docgen/pkg/payload"
	"github.com/goliatone/go-docgen/pkg/templates"
	"github.com/goliatone/go-docgen/pkg/validation"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithFields supplies the field configuration used for validation.
func WithFields(fields []fieldcfg.Field) Option {
	return func(o *Orchestrator) {
		o.fields = fields
	}
}

// WithRegistry supplies the template registry.
func WithRegistry(registry templates.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithEngine injects a custom merge engine.
func WithEngine(engine merge.Engine) Option {
	return func(o *Orchestrator) {
		if engine != nil {
			o.engine = engine
		}
	}
}

// WithPayloadBuilder injects a custom payload builder.
func WithPayloadBuilder(builder *payload.Builder) Option {
	return func(o *Orchestrator) {
		if builder != nil {
			o.builder = builder
		}
	}
}

// WithConfigLoader injects the loader used to fetch template bytes.
func WithConfigLoader(loader *config.Loader) Option {
	return func(o *Orchestrator) {
		if loader != nil {
			o.loader = loader
		}
	}
}

// WithLogger attaches a logger; the orchestrator stays quiet without one.
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock overrides the time source feeding the automatic fields.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithoutAutomaticValues disables merging the system-filled fields
// (mesAtual, anoAtual, data) over the user values.
func WithoutAutomaticValues() Option {
	return func(o *Orchestrator) {
		o.skipAutomatic = true
	}
}

// Orchestrator runs validate → normalize → load → merge.
type Orchestrator struct {
	fields        []fieldcfg.Field
	registry      templates.Registry
	engine        merge.Engine
	builder       *payload.Builder
	loader        *config.Loader
	logger        *log.Logger
	clock         func() time.Time
	skipAutomatic bool
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		clock: time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.engine == nil {
		o.engine = merge.NewDocxEngine()
	}
	if o.builder == nil {
		o.builder = payload.NewBuilder()
	}
	if o.loader == nil {
		o.loader = config.NewLoader(config.LoaderOptions{AllowHTTPFallback: true})
	}
	return o
}

// Request describes one document-generation attempt.
type Request struct {
	// TemplateID selects a template from the registry. Empty selects the
	// first registered template.
	TemplateID string

	// Values is the raw form-state mapping.
	Values map[string]any

	// SkipValidation bypasses the required-field gate.
	SkipValidation bool
}

// Result carries the generated artifact.
type Result struct {
	DocumentName   string
	Document       []byte
	ContainsImages bool
}

// ValidationError reports the required fields that block generation. It is
// recoverable data for the caller, keyed the same way the form renders.
type ValidationError struct {
	Fields map[string]validation.ErrorKind
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("orchestrator: %d required fields missing", len(e.Fields))
}

// Generate runs the pipeline and returns the merged document. No partial
// document is ever returned: any failure is terminal for the attempt.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !req.SkipValidation {
		if errs := validation.Validate(o.fields, req.Values); len(errs) > 0 {
			return nil, &ValidationError{Fields: errs}
		}
	}

	tpl, err := o.selectTemplate(req.TemplateID)
	if err != nil {
		return nil, err
	}

	values := req.Values
	if !o.skipAutomatic {
		values = make(map[string]any, len(req.Values)+3)
		for key, value := range req.Values {
			values[key] = value
		}
		for key, value := range payload.AutomaticValues(o.clock()) {
			values[key] = value
		}
	}

	data := o.builder.Build(values)
	embed := payload.ContainsEmbeddedImage(data)

	raw, err := templates.LoadBytes(ctx, o.loader, tpl)
	if err != nil {
		return nil, err
	}

	document, err := o.engine.Render(raw, data, merge.RenderOptions{EmbedImages: embed})
	if err != nil {
		return nil, err
	}

	name := DocumentName(req.Values)
	if o.logger != nil {
		o.logger.Info("document generated", "template", tpl.ID, "output", name, "images", embed)
	}

	return &Result{
		DocumentName:   name,
		Document:       document,
		ContainsImages: embed,
	}, nil
}

func (o *Orchestrator) selectTemplate(id string) (templates.Template, error) {
	if id == "" {
		tpl, ok := o.registry.Default()
		if !ok {
			return templates.Template{}, fmt.Errorf("%w: registry is empty", templates.ErrTemplateLoad)
		}
		return tpl, nil
	}
	tpl, ok := o.registry.Find(id)
	if !ok {
		return templates.Template{}, fmt.Errorf("%w: unknown template %q", templates.ErrTemplateLoad, id)
	}
	return tpl, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// DocumentName derives the output file name from the form values: the DFT
// name, falling back to the analyst name, whitespace collapsed to dashes.
func DocumentName(values map[string]any) string {
	base := ""
	for _, key := range []string{"nomeDFT", "nomeAnalista"} {
		if value, ok := values[key].(string); ok && strings.TrimSpace(value) != "" {
			base = strings.TrimSpace(value)
			break
		}
	}
	if base == "" {
		base = "sem-nome"
	}
	return whitespaceRun.ReplaceAllString(base, "-") + ".docx"
}
