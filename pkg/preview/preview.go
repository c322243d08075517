// Package preview renders an HTML summary of the captured form values so an
// operator can review the data before generating a document. Values are
// sanitized and block lists are collapsed to per-field counts; the preview
// never embeds image payloads.
package preview

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-docgen/pkg/block"
	"github.com/goliatone/go-docgen/pkg/fieldcfg"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const defaultTemplateName = "preview.html.tmpl"

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Row is one label/value pair in the rendered preview, in field order.
type Row struct {
	Label string
	Value string
}

// Option configures the Renderer before construction.
type Option func(*Renderer)

// WithTemplateFS overrides the embedded template filesystem.
func WithTemplateFS(files fs.FS) Option {
	return func(r *Renderer) {
		if files != nil {
			r.templates = files
		}
	}
}

// WithTemplateName selects a template file within the filesystem.
func WithTemplateName(name string) Option {
	return func(r *Renderer) {
		trimmed := strings.TrimSpace(name)
		if trimmed != "" {
			r.templateName = trimmed
		}
	}
}

// WithTitle overrides the heading shown above the preview rows.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		trimmed := strings.TrimSpace(title)
		if trimmed != "" {
			r.title = trimmed
		}
	}
}

// Renderer turns field definitions plus current values into a sanitized HTML
// fragment.
type Renderer struct {
	templates    fs.FS
	templateName string
	title        string

	mu       sync.Mutex
	set      *pongo2.TemplateSet
	compiled *pongo2.Template
}

// New constructs a Renderer backed by the embedded template unless options
// say otherwise.
func New(options ...Option) (*Renderer, error) {
	renderer := &Renderer{
		templateName: defaultTemplateName,
		title:        "Preview dos dados",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(renderer)
	}

	if renderer.templates == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("preview: open embedded templates: %w", err)
		}
		renderer.templates = sub
	}

	renderer.set = pongo2.NewSet("docgen-preview", pongo2.NewFSLoader(renderer.templates))
	return renderer, nil
}

// Render produces the preview HTML for the given fields and values. Fields
// render in definition order; missing or blank values display as "-".
func (r *Renderer) Render(fields []fieldcfg.Field, values map[string]any) (string, error) {
	if r == nil || r.set == nil {
		return "", fmt.Errorf("preview: renderer is nil")
	}

	tmpl, err := r.template()
	if err != nil {
		return "", err
	}

	rendered, err := tmpl.Execute(pongo2.Context{
		"title": r.title,
		"rows":  Rows(fields, values),
	})
	if err != nil {
		return "", fmt.Errorf("preview: execute template %q: %w", r.templateName, err)
	}
	return rendered, nil
}

func (r *Renderer) template() (*pongo2.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.compiled != nil {
		return r.compiled, nil
	}
	tmpl, err := r.set.FromFile(r.templateName)
	if err != nil {
		return nil, fmt.Errorf("preview: load template %q: %w", r.templateName, err)
	}
	r.compiled = tmpl
	return tmpl, nil
}

// Rows maps each field to its display value: block fields collapse to a
// count summary and every other field shows its sanitized scalar value.
func Rows(fields []fieldcfg.Field, values map[string]any) []Row {
	rows := make([]Row, 0, len(fields))
	for _, field := range fields {
		value := values[field.Name]
		display := ""
		if field.IsBlockField() {
			display = BlockSummary(value)
		} else {
			display = scalarDisplay(value)
		}
		rows = append(rows, Row{Label: field.Label, Value: display})
	}
	return rows
}

// BlockSummary collapses a block-list value to a short human description.
// Lists where every element lacks both text and image collapse to "-";
// image-only lists read as steps rather than blocks.
func BlockSummary(value any) string {
	views := block.Views(value)
	if len(views) == 0 {
		return "-"
	}

	textCount := 0
	imageCount := 0
	valid := 0
	for _, view := range views {
		switch view.Kind {
		case block.KindText:
			textCount++
		case block.KindImage:
			imageCount++
		}
		if strings.TrimSpace(view.Text) != "" || strings.TrimSpace(view.ImageData) != "" {
			valid++
		}
	}

	if valid == 0 {
		return "-"
	}
	if textCount == 0 {
		return fmt.Sprintf("%d passo(s) com imagem", valid)
	}
	return fmt.Sprintf("%d bloco(s) (%d texto, %d imagem)", valid, textCount, imageCount)
}

func scalarDisplay(value any) string {
	text := ""
	switch v := value.(type) {
	case nil:
	case string:
		text = v
	case fmt.Stringer:
		text = v.String()
	default:
		text = fmt.Sprintf("%v", v)
	}

	cleaned := strings.TrimSpace(sanitizer().Sanitize(text))
	if cleaned == "" {
		return "-"
	}
	return cleaned
}

func sanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
