package config_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-docgen/pkg/config"
)

func TestLoaderLoadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fields.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	loader := config.NewLoader(config.LoaderOptions{})
	data, err := loader.Load(context.Background(), config.SourceFromFile(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != `[]` {
		t.Fatalf("Load() = %q, want %q", data, `[]`)
	}
}

func TestLoaderLoadsFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"configs/templates.yaml": {Data: []byte("- id: dft")},
	}
	loader := config.NewLoader(config.LoaderOptions{FileSystem: fsys})

	data, err := loader.Load(context.Background(), config.SourceFromFS("configs/templates.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != "- id: dft" {
		t.Fatalf("Load() = %q", data)
	}
}

func TestLoaderLoadsURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	loader := config.NewLoader(config.LoaderOptions{AllowHTTPFallback: true})
	data, err := loader.Load(context.Background(), config.SourceFromURL(server.URL))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("Load() = %q", data)
	}
}

func TestLoaderRejectsURLWithoutHTTP(t *testing.T) {
	t.Parallel()

	loader := config.NewLoader(config.LoaderOptions{})
	if _, err := loader.Load(context.Background(), config.SourceFromURL("http://localhost/none")); err == nil {
		t.Fatal("expected error for URL source without http support")
	}
}

func TestLoaderRejectsNilSource(t *testing.T) {
	t.Parallel()

	loader := config.NewLoader(config.LoaderOptions{})
	if _, err := loader.Load(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}
