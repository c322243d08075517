package formapi

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-docgen/pkg/block"
	"github.com/goliatone/go-docgen/pkg/fieldcfg"
	"github.com/goliatone/go-docgen/pkg/orchestrator"
	"github.com/goliatone/go-docgen/pkg/preview"
	"github.com/goliatone/go-docgen/pkg/templates"
)

func testFields() []fieldcfg.Field {
	return []fieldcfg.Field{
		{Name: "nomeDFT", Label: "Nome do DFT", Type: fieldcfg.TypeText, Required: true},
		{
			Name:         "analise",
			Label:        "Análise",
			Type:         fieldcfg.TypeBlocks,
			AllowedTypes: []block.Kind{block.KindText, block.KindImage},
		},
	}
}

func writeDocxTemplate(t *testing.T, document string) string {
	t.Helper()

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	entries := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml":            document,
	}
	for name, body := range entries {
		entry, err := archive.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %q: %v", name, err)
		}
		if _, err := entry.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry %q: %v", name, err)
		}
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "modelo.docx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write template file: %v", err)
	}
	return path
}

func TestFieldsHandler_ServesDefinitions(t *testing.T) {
	h := FieldsHandler(WithFields(testFields()))

	req := httptest.NewRequest(http.MethodGet, "/api/fields", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}

	var payload fieldsResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Data) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(payload.Data))
	}
	if payload.Data[0].Name != "nomeDFT" || !payload.Data[0].Required {
		t.Fatalf("unexpected first field: %#v", payload.Data[0])
	}
	if got := payload.Data[1].AllowedTypes; len(got) != 2 || got[0] != "text" || got[1] != "image" {
		t.Fatalf("unexpected allowed types: %#v", got)
	}
}

func TestFieldsHandler_RejectsPost(t *testing.T) {
	h := FieldsHandler(WithFields(testFields()))

	req := httptest.NewRequest(http.MethodPost, "/api/fields", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestTemplatesHandler_ListsRegistry(t *testing.T) {
	registry := templates.Registry{
		{ID: "dft", Name: "Modelo DFT", Path: "/tmp/modelo.docx"},
		{ID: "resumo", Name: "Resumo Executivo", Path: "/tmp/resumo.docx"},
	}
	h := TemplatesHandler(WithRegistry(registry))

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload templatesResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Data) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(payload.Data))
	}
	if payload.Data[0].ID != "dft" || payload.Data[0].Name != "Modelo DFT" {
		t.Fatalf("unexpected first template: %#v", payload.Data[0])
	}
}

func TestValidateHandler_ReportsMissingFields(t *testing.T) {
	h := ValidateHandler(WithFields(testFields()))

	body := strings.NewReader(`{"values":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/validate", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload validateResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Valid {
		t.Fatal("expected valid=false")
	}
	if payload.Errors["nomeDFT"] != "required" {
		t.Fatalf("unexpected errors: %#v", payload.Errors)
	}
}

func TestValidateHandler_AcceptsCompleteValues(t *testing.T) {
	h := ValidateHandler(WithFields(testFields()))

	body := strings.NewReader(`{"values":{"nomeDFT":"Teste"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/validate", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload validateResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !payload.Valid || len(payload.Errors) != 0 {
		t.Fatalf("expected valid response, got %#v", payload)
	}
}

func TestValidateHandler_RejectsBadJSON(t *testing.T) {
	h := ValidateHandler(WithFields(testFields()))

	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestGenerateHandler_StreamsDocument(t *testing.T) {
	document := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>{nomeDFT}</w:t></w:r></w:p></w:body></w:document>`
	path := writeDocxTemplate(t, document)

	fields := testFields()
	registry := templates.Registry{{ID: "dft", Name: "Modelo DFT", Path: path}}
	generator := orchestrator.New(
		orchestrator.WithFields(fields),
		orchestrator.WithRegistry(registry),
	)

	h := GenerateHandler(
		WithFields(fields),
		WithRegistry(registry),
		WithGenerator(generator),
	)

	body := strings.NewReader(`{"templateId":"dft","values":{"nomeDFT":"Teste"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.StatusCode, rec.Body.String())
	}
	if ct := res.Header.Get("Content-Type"); ct != docxContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := res.Header.Get("Content-Disposition"); !strings.Contains(cd, `filename="Teste.docx"`) {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("expected a zip archive in the response body")
	}
}

func TestGenerateHandler_ValidationBlocksWith422(t *testing.T) {
	fields := testFields()
	generator := orchestrator.New(
		orchestrator.WithFields(fields),
		orchestrator.WithRegistry(templates.Registry{{ID: "dft", Name: "Modelo", Path: "/tmp/nope.docx"}}),
	)

	h := GenerateHandler(WithFields(fields), WithGenerator(generator))

	body := strings.NewReader(`{"templateId":"dft","values":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	var payload errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Fields["nomeDFT"] != "required" {
		t.Fatalf("unexpected error payload: %#v", payload)
	}
}

func TestGenerateHandler_WithoutGenerator(t *testing.T) {
	h := GenerateHandler(WithFields(testFields()))

	body := strings.NewReader(`{"values":{"nomeDFT":"Teste"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestPreviewHandler_RendersHTML(t *testing.T) {
	renderer, err := preview.New()
	if err != nil {
		t.Fatalf("preview.New() error = %v", err)
	}

	h := PreviewHandler(WithFields(testFields()), WithPreview(renderer))

	body := strings.NewReader(`{"values":{"nomeDFT":"Minha Demanda"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/preview", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Minha Demanda") {
		t.Fatalf("expected rendered value in body:\n%s", rec.Body.String())
	}
}

func TestGuard_RejectsRequests(t *testing.T) {
	h := FieldsHandler(
		WithFields(testFields()),
		WithGuard(func(*http.Request) error {
			return StatusError{Code: http.StatusUnauthorized}
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/fields", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}
