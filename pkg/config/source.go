// Package config loads configuration documents (field definitions, template
// registries) and template binaries from files, fs.FS bundles, or HTTP
// endpoints behind a single Source abstraction.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// SourceKind enumerates the supported source strategies.
type SourceKind int

const (
	SourceKindFile SourceKind = iota + 1
	SourceKindFS
	SourceKindURL
)

// Source identifies where a document lives.
type Source interface {
	Location() string
	Kind() SourceKind
}

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL parses the supplied URL string and returns a Source. It
// panics if the URL is invalid to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("config: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("config: invalid URL %q: %v", raw, err))
	}
	return urlSource{raw: raw}
}
