package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docgen/pkg/store"
)

func TestSQLiteRoundTrip(t *testing.T) {
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "docgen.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	initial, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load on empty store: %v", err)
	}
	if len(initial) != 0 {
		t.Fatalf("empty store should load an empty mapping, got %v", initial)
	}

	values := map[string]any{
		"nomeDFT": "Teste",
		"analise": []any{
			map[string]any{"id": "1", "type": "text", "text": "Passo 1"},
		},
	}
	if err := s.Save(ctx, values); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(values, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteSaveOverwrites(t *testing.T) {
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "docgen.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Save(ctx, map[string]any{"nomeDFT": "Primeiro"}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := s.Save(ctx, map[string]any{"nomeDFT": "Segundo"}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded["nomeDFT"] != "Segundo" {
		t.Errorf("latest save should win, got %v", loaded)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	values := map[string]any{"nomeDFT": "Teste"}
	if err := m.Save(ctx, values); err != nil {
		t.Fatalf("Save: %v", err)
	}
	values["nomeDFT"] = "mutated after save"

	loaded, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded["nomeDFT"] != "Teste" {
		t.Errorf("store must keep its own copy, got %v", loaded)
	}
}
