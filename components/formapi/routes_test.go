package formapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := mountPath("/admin", "/api/fields"); got != "/admin/api/fields" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := mountPath("admin", "api/fields"); got != "/admin/api/fields" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := mountPath("", "/api/fields"); got != "/api/fields" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := mountPath("/admin/", "/api/fields"); got != "/admin/api/fields" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_MountsEveryRoute(t *testing.T) {
	mux := http.NewServeMux()
	routes, err := RegisterRoutes(mux, "/admin", WithFields(testFields()))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if routes.Fields != "/admin/api/fields" {
		t.Fatalf("unexpected fields pattern: %q", routes.Fields)
	}
	if routes.Generate != "/admin/api/generate" {
		t.Fatalf("unexpected generate pattern: %q", routes.Generate)
	}

	req := httptest.NewRequest(http.MethodGet, routes.Fields, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on %q, got %d", routes.Fields, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, routes.Templates, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on %q, got %d", routes.Templates, rec.Code)
	}
}

func TestRegisterRoutes_MissingMux(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/admin"); err == nil {
		t.Fatal("expected error for nil mux")
	}
}

func TestComponent_RegisterRoutes(t *testing.T) {
	component := New(WithFields(testFields()))

	mux := http.NewServeMux()
	routes, err := component.RegisterRoutes(mux, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if routes.Validate != "/api/validate" {
		t.Fatalf("unexpected validate pattern: %q", routes.Validate)
	}
}
