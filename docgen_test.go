package docgen_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	docgen "github.com/goliatone/go-docgen"
	"github.com/goliatone/go-docgen/pkg/block"
	"github.com/goliatone/go-docgen/pkg/fieldcfg"
)

const documentShell = `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s</w:body></w:document>`

func writeTemplate(t *testing.T, body string) string {
	t.Helper()

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	entries := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml":            body,
	}
	for name, content := range entries {
		entry, err := archive.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %q: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %q: %v", name, err)
		}
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "modelo.docx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

func readDocumentXML(t *testing.T, archive []byte) string {
	t.Helper()

	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open generated archive: %v", err)
	}
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(data)
	}
	t.Fatal("generated archive has no word/document.xml")
	return ""
}

func TestGenerateDocument(t *testing.T) {
	t.Parallel()

	body := `<w:p><w:r><w:t>{nomeDFT}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>{#analise}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>{text}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>{/analise}</w:t></w:r></w:p>`
	path := writeTemplate(t, fmt.Sprintf(documentShell, body))

	fields := []docgen.Field{
		{Name: "nomeDFT", Label: "Nome do DFT", Type: fieldcfg.TypeText, Required: true},
		{Name: "analise", Label: "Análise", Type: fieldcfg.TypeBlocks},
	}
	registry := docgen.Registry{{ID: "dft", Name: "Modelo DFT", Path: path}}

	values := map[string]any{
		"nomeDFT": "Teste",
		"analise": []any{
			map[string]any{"type": "text", "text": "Passo 1"},
		},
	}

	result, err := docgen.GenerateDocument(context.Background(), values, "dft",
		docgen.WithFields(fields),
		docgen.WithRegistry(registry),
	)
	if err != nil {
		t.Fatalf("GenerateDocument() error = %v", err)
	}

	if result.DocumentName != "Teste.docx" {
		t.Fatalf("DocumentName = %q, want %q", result.DocumentName, "Teste.docx")
	}
	if result.ContainsImages {
		t.Fatal("ContainsImages = true for a text-only payload")
	}

	document := readDocumentXML(t, result.Document)
	if !strings.Contains(document, "Teste") {
		t.Fatalf("document missing scalar value:\n%s", document)
	}
	if !strings.Contains(document, "Passo 1") {
		t.Fatalf("document missing block text:\n%s", document)
	}
	if strings.Contains(document, "{#analise}") || strings.Contains(document, "{/analise}") {
		t.Fatalf("loop delimiters leaked into document:\n%s", document)
	}
}

func TestGenerateDocumentValidates(t *testing.T) {
	t.Parallel()

	fields := []docgen.Field{
		{Name: "nomeDFT", Label: "Nome do DFT", Type: fieldcfg.TypeText, Required: true},
	}
	registry := docgen.Registry{{ID: "dft", Name: "Modelo", Path: "/tmp/nope.docx"}}

	_, err := docgen.GenerateDocument(context.Background(), map[string]any{}, "dft",
		docgen.WithFields(fields),
		docgen.WithRegistry(registry),
	)

	var validationErr *docgen.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("GenerateDocument() error = %v, want ValidationError", err)
	}
	if _, ok := validationErr.Fields["nomeDFT"]; !ok {
		t.Fatalf("ValidationError.Fields = %#v, want nomeDFT entry", validationErr.Fields)
	}
}

func TestBlockAliasRoundTrip(t *testing.T) {
	t.Parallel()

	blocks := block.Normalize([]any{
		map[string]any{"type": "image", "image": "data:image/png;base64,AAA"},
	})
	if len(blocks) != 1 {
		t.Fatalf("Normalize() returned %d blocks, want 1", len(blocks))
	}
	if blocks[0].ImageData != "data:image/png;base64,AAA" {
		t.Fatalf("legacy image alias not honoured: %#v", blocks[0])
	}
}
