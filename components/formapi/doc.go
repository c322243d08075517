// Package formapi exposes the document-generation pipeline over a small
// net/http surface: field definitions and template listings for building the
// form, a validation endpoint for pre-flight checks, an HTML data preview,
// and the generation endpoint that streams back the merged DOCX.
//
// The package follows the component layout used elsewhere in this module: a
// functional-options configuration, plain http.Handler constructors, and a
// RegisterRoutes helper that mounts every route on any mux exposing
// Handle(pattern, handler).
package formapi
