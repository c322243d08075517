package formapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-docgen/pkg/orchestrator"
	"github.com/goliatone/go-docgen/pkg/templates"
	"github.com/goliatone/go-docgen/pkg/validation"
)

// HTTPError lets guards and downstream errors pick their response status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with an HTTP status code.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type fieldsResponse struct {
	Data []fieldJSON `json:"data"`
}

type fieldJSON struct {
	Name         string           `json:"name"`
	Label        string           `json:"label"`
	Type         string           `json:"type"`
	Required     bool             `json:"required"`
	Section      string           `json:"section,omitempty"`
	Span         int              `json:"span,omitempty"`
	Rows         int              `json:"rows,omitempty"`
	Placeholder  string           `json:"placeholder,omitempty"`
	Options      []optionJSON     `json:"options,omitempty"`
	AllowedTypes []string         `json:"allowedTypes,omitempty"`
	Labels       *blockLabelsJSON `json:"blockLabels,omitempty"`
}

type optionJSON struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type blockLabelsJSON struct {
	AddText  string `json:"addText,omitempty"`
	AddImage string `json:"addImage,omitempty"`
}

type templatesResponse struct {
	Data []templateJSON `json:"data"`
}

type templateJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type validateRequest struct {
	Values map[string]any `json:"values"`
}

type validateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

type generateRequest struct {
	TemplateID string         `json:"templateId"`
	Values     map[string]any `json:"values"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// FieldsHandler serves the field definitions as JSON.
func FieldsHandler(fns ...OptionFn) http.Handler {
	return FieldsHandlerWithOptions(NewOptions(fns...))
}

// FieldsHandlerWithOptions builds the fields handler from a pre-built Options
// value.
func FieldsHandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowRead(w, r, opts) {
			return
		}

		payload := fieldsResponse{Data: make([]fieldJSON, 0, len(opts.Fields))}
		for _, field := range opts.Fields {
			entry := fieldJSON{
				Name:        field.Name,
				Label:       field.Label,
				Type:        field.Type,
				Required:    field.Required,
				Section:     field.Section,
				Span:        field.Span,
				Rows:        field.Rows,
				Placeholder: field.Placeholder,
			}
			for _, opt := range field.Options {
				entry.Options = append(entry.Options, optionJSON{Value: opt.Value, Label: opt.Label})
			}
			if field.IsBlockField() {
				for _, kind := range field.EffectiveAllowedTypes() {
					entry.AllowedTypes = append(entry.AllowedTypes, string(kind))
				}
				if field.AddTextLabel != "" || field.AddImageLabel != "" {
					entry.Labels = &blockLabelsJSON{AddText: field.AddTextLabel, AddImage: field.AddImageLabel}
				}
			}
			payload.Data = append(payload.Data, entry)
		}
		writeJSON(w, r, http.StatusOK, payload)
	})
}

// TemplatesHandler serves the template registry as JSON.
func TemplatesHandler(fns ...OptionFn) http.Handler {
	return TemplatesHandlerWithOptions(NewOptions(fns...))
}

// TemplatesHandlerWithOptions builds the templates handler from a pre-built
// Options value.
func TemplatesHandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowRead(w, r, opts) {
			return
		}

		payload := templatesResponse{Data: make([]templateJSON, 0, len(opts.Registry))}
		for _, tpl := range opts.Registry {
			payload.Data = append(payload.Data, templateJSON{ID: tpl.ID, Name: tpl.Name})
		}
		writeJSON(w, r, http.StatusOK, payload)
	})
}

// ValidateHandler runs the required-field check without generating anything.
func ValidateHandler(fns ...OptionFn) http.Handler {
	return ValidateHandlerWithOptions(NewOptions(fns...))
}

// ValidateHandlerWithOptions builds the validate handler from a pre-built
// Options value.
func ValidateHandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowWrite(w, r, opts) {
			return
		}

		var req validateRequest
		if !decodeBody(w, r, opts, &req) {
			return
		}

		failures := validation.Validate(opts.Fields, req.Values)
		writeJSON(w, r, http.StatusOK, validateResponse{
			Valid:  len(failures) == 0,
			Errors: errorKinds(failures),
		})
	})
}

// GenerateHandler runs the full pipeline and streams the merged document.
func GenerateHandler(fns ...OptionFn) http.Handler {
	return GenerateHandlerWithOptions(NewOptions(fns...))
}

// GenerateHandlerWithOptions builds the generate handler from a pre-built
// Options value.
func GenerateHandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowWrite(w, r, opts) {
			return
		}
		if opts.Generator == nil {
			writeError(w, http.StatusServiceUnavailable, "generator not configured", nil)
			return
		}

		var req generateRequest
		if !decodeBody(w, r, opts, &req) {
			return
		}

		result, err := opts.Generator.Generate(r.Context(), orchestrator.Request{
			TemplateID: req.TemplateID,
			Values:     req.Values,
		})
		if err != nil {
			var validationErr *orchestrator.ValidationError
			switch {
			case errors.As(err, &validationErr):
				writeError(w, http.StatusUnprocessableEntity, "required fields missing", errorKinds(validationErr.Fields))
			case errors.Is(err, templates.ErrTemplateLoad):
				logError(opts, r, err)
				writeError(w, http.StatusBadGateway, "template unavailable", nil)
			default:
				logError(opts, r, err)
				writeError(w, http.StatusInternalServerError, "document generation failed", nil)
			}
			return
		}

		w.Header().Set("Content-Type", docxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.DocumentName))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Document)
	})
}

// PreviewHandler renders the sanitized HTML data preview.
func PreviewHandler(fns ...OptionFn) http.Handler {
	return PreviewHandlerWithOptions(NewOptions(fns...))
}

// PreviewHandlerWithOptions builds the preview handler from a pre-built
// Options value.
func PreviewHandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowWrite(w, r, opts) {
			return
		}
		if opts.Preview == nil {
			writeError(w, http.StatusServiceUnavailable, "preview not configured", nil)
			return
		}

		var req validateRequest
		if !decodeBody(w, r, opts, &req) {
			return
		}

		html, err := opts.Preview.Render(opts.Fields, req.Values)
		if err != nil {
			logError(opts, r, err)
			writeError(w, http.StatusInternalServerError, "preview rendering failed", nil)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	})
}

func allowRead(w http.ResponseWriter, r *http.Request, opts Options) bool {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}
	return passGuard(w, r, opts)
}

func allowWrite(w http.ResponseWriter, r *http.Request, opts Options) bool {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}
	return passGuard(w, r, opts)
}

func passGuard(w http.ResponseWriter, r *http.Request, opts Options) bool {
	if opts.Guard == nil {
		return true
	}
	err := opts.Guard(r)
	if err == nil {
		return true
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		if c := httpErr.StatusCode(); c > 0 {
			code = c
		}
	}
	http.Error(w, http.StatusText(code), code)
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, opts Options, into any) bool {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "missing request body", nil)
		return false
	}
	reader := http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes)
	defer func() { _ = reader.Close() }()

	if err := json.NewDecoder(reader).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return false
	}
	return true
}

func errorKinds(failures map[string]validation.ErrorKind) map[string]string {
	out := make(map[string]string, len(failures))
	for name, kind := range failures {
		out[name] = string(kind)
	}
	return out
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if r != nil && r.Method == http.MethodHead {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Fields: fields})
}

func logError(opts Options, r *http.Request, err error) {
	if opts.Logger == nil {
		return
	}
	path := ""
	if r != nil && r.URL != nil {
		path = r.URL.Path
	}
	opts.Logger.Error("request failed", "path", path, "error", err)
}
