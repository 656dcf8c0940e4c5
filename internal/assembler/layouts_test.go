package assembler

import (
	"errors"
	"fmt"
	"testing"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-press/posts"
)

type stubManifestLoader struct {
	manifest *gotheme.Manifest
	err      error
	calls    int
}

func (s *stubManifestLoader) Load(string) (*gotheme.Manifest, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.manifest, nil
}

func TestLayoutRegistryPropagatesLoaderFailure(t *testing.T) {
	loadErr := fmt.Errorf("manifest unreadable")
	registry := newLayoutRegistry(LayoutConfig{Path: "themes/aurora"}, &stubManifestLoader{err: loadErr})

	err := registry.ValidateLayout("post")
	if err == nil || !errors.Is(err, loadErr) {
		t.Fatalf("expected loader failure to surface, got %v", err)
	}
}

func TestLayoutRegistryUnknownLayout(t *testing.T) {
	loader := &stubManifestLoader{manifest: &gotheme.Manifest{Name: "aurora", Version: "1.0.0"}}
	registry := newLayoutRegistry(LayoutConfig{Path: "themes/aurora", Theme: "aurora"}, loader)

	err := registry.ValidateLayout("missing")
	if !errors.Is(err, posts.ErrUnknownLayout) {
		t.Fatalf("expected ErrUnknownLayout, got %v", err)
	}

	var unknown *posts.UnknownLayoutError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownLayoutError, got %T", err)
	}
	if unknown.Layout != "missing" || unknown.Theme != "aurora" {
		t.Errorf("unexpected error detail: %+v", unknown)
	}
}

func TestLayoutRegistryRejectsEmptyName(t *testing.T) {
	loader := &stubManifestLoader{manifest: &gotheme.Manifest{Name: "aurora", Version: "1.0.0"}}
	registry := newLayoutRegistry(LayoutConfig{Path: "themes/aurora"}, loader)

	if err := registry.ValidateLayout("   "); !errors.Is(err, posts.ErrUnknownLayout) {
		t.Fatalf("expected ErrUnknownLayout for blank name, got %v", err)
	}
	if loader.calls != 0 {
		t.Errorf("blank name must fail before loading the manifest, loader called %d times", loader.calls)
	}
}

func TestLayoutRegistryLoadsManifestOnce(t *testing.T) {
	loader := &stubManifestLoader{manifest: &gotheme.Manifest{Name: "aurora", Version: "1.0.0"}}
	registry := newLayoutRegistry(LayoutConfig{Path: "themes/aurora"}, loader)

	_ = registry.ValidateLayout("a")
	_ = registry.ValidateLayout("b")
	if loader.calls != 1 {
		t.Errorf("manifest should be cached after first load, loader called %d times", loader.calls)
	}
}
