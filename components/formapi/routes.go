package formapi

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux and by chi routers.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Routes lists the mounted pattern for each route after registration.
type Routes struct {
	Fields    string
	Templates string
	Validate  string
	Generate  string
	Preview   string
}

// RegisterRoutes mounts every route under basePath on mux.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (Routes, error) {
	return RegisterRoutesWithOptions(mux, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions mounts every route under basePath using a
// pre-built Options value. Callers are expected to pass an Options value
// produced by NewOptions (or equivalent) so defaults apply.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) (Routes, error) {
	if mux == nil {
		return Routes{}, fmt.Errorf("formapi: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })

	routes := Routes{
		Fields:    mountPath(basePath, opts.FieldsPath),
		Templates: mountPath(basePath, opts.TemplatesPath),
		Validate:  mountPath(basePath, opts.ValidatePath),
		Generate:  mountPath(basePath, opts.GeneratePath),
		Preview:   mountPath(basePath, opts.PreviewPath),
	}

	mux.Handle(routes.Fields, FieldsHandlerWithOptions(opts))
	mux.Handle(routes.Templates, TemplatesHandlerWithOptions(opts))
	mux.Handle(routes.Validate, ValidateHandlerWithOptions(opts))
	mux.Handle(routes.Generate, GenerateHandlerWithOptions(opts))
	mux.Handle(routes.Preview, PreviewHandlerWithOptions(opts))
	return routes, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
