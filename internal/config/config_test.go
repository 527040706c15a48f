package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/papersurf/papersurf/internal/embedding"
	"github.com/papersurf/papersurf/internal/query"
)

func TestInitAndLoad(t *testing.T) {
	root := t.TempDir()

	cfg, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if cfg.Ollama.Model != embedding.DefaultModel {
		t.Errorf("Model = %q, want default", cfg.Ollama.Model)
	}
	if !IsLibrary(root) {
		t.Error("IsLibrary = false after Init")
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded config %+v != initialized %+v", loaded, cfg)
	}
}

func TestInit_AlreadyInitialized(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := Init(root); err == nil {
		t.Fatal("second Init should fail")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}

	partial := "search:\n  limit: 25\n"
	if err := os.WriteFile(ConfigPath(root), []byte(partial), 0644); err != nil {
		t.Fatalf("writing partial config: %v", err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Limit != 25 {
		t.Errorf("Limit = %d, want 25", cfg.Search.Limit)
	}
	if cfg.Search.Threshold != query.DefaultThreshold {
		t.Errorf("Threshold = %v, want default", cfg.Search.Threshold)
	}
	if cfg.Ollama.Model != embedding.DefaultModel {
		t.Errorf("Model = %q, want default", cfg.Ollama.Model)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(LibraryPath(root), 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("got %+v, want pure defaults", cfg)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := os.WriteFile(ConfigPath(root), []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(root); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFindLibrary_WalksUp(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindLibrary(nested)
	if err != nil {
		t.Fatalf("FindLibrary: %v", err)
	}
	// t.TempDir may contain symlinked components on some platforms, so
	// compare resolved paths.
	wantResolved, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(found)
	if gotResolved != wantResolved {
		t.Errorf("FindLibrary = %q, want %q", found, root)
	}
}

func TestFindLibrary_NotFound(t *testing.T) {
	if _, err := FindLibrary(t.TempDir()); err == nil {
		t.Fatal("expected error outside any library")
	}
}
