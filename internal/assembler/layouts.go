package assembler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-press/posts"
)

// LayoutConfig points the registry at a theme directory containing a
// go-theme manifest.
type LayoutConfig struct {
	// Path is the theme directory holding the manifest and templates.
	Path string
	// Theme names the manifest entry to select; defaults to the manifest's
	// own name when empty.
	Theme string
	// Variant selects a theme variant (e.g. "dark"). Optional.
	Variant string
}

type manifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsManifestLoader struct{}

func (fsManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" {
		return nil, fmt.Errorf("theme path required")
	}
	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// LayoutRegistry validates layout names against a go-theme manifest. The
// manifest loads lazily on first use and is cached for the registry's
// lifetime.
type LayoutRegistry struct {
	registry *gotheme.MemoryRegistry
	loader   manifestLoader
	path     string
	theme    string
	variant  string

	mu       sync.Mutex
	manifest *gotheme.Manifest
}

var _ interfaces.LayoutValidator = (*LayoutRegistry)(nil)

// NewLayoutRegistry constructs a registry for the supplied theme directory.
func NewLayoutRegistry(cfg LayoutConfig) *LayoutRegistry {
	return newLayoutRegistry(cfg, fsManifestLoader{})
}

func newLayoutRegistry(cfg LayoutConfig, loader manifestLoader) *LayoutRegistry {
	if loader == nil {
		loader = fsManifestLoader{}
	}
	return &LayoutRegistry{
		registry: gotheme.NewRegistry(),
		loader:   loader,
		path:     strings.TrimSpace(cfg.Path),
		theme:    strings.TrimSpace(cfg.Theme),
		variant:  strings.TrimSpace(cfg.Variant),
	}
}

// ValidateLayout reports whether the named layout resolves to a template in
// the selected theme. Unknown layouts fail with posts.ErrUnknownLayout.
func (r *LayoutRegistry) ValidateLayout(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &posts.UnknownLayoutError{Theme: r.theme}
	}

	selection, err := r.selection()
	if err != nil {
		return err
	}
	if template := selection.Template(name, ""); template == "" {
		return &posts.UnknownLayoutError{Layout: name, Theme: selection.Theme}
	}
	return nil
}

// ResolveTemplate maps a layout name to the template path declared by the
// theme manifest.
func (r *LayoutRegistry) ResolveTemplate(name string) (string, error) {
	if err := r.ValidateLayout(name); err != nil {
		return "", err
	}
	selection, err := r.selection()
	if err != nil {
		return "", err
	}
	return selection.Template(strings.TrimSpace(name), ""), nil
}

func (r *LayoutRegistry) selection() (*gotheme.Selection, error) {
	manifest, err := r.ensureManifest()
	if err != nil {
		return nil, err
	}

	theme := r.theme
	if theme == "" {
		theme = manifest.Name
	}

	selector := gotheme.Selector{
		Registry:       r.registry,
		DefaultTheme:   theme,
		DefaultVariant: r.variant,
	}

	selection, err := selector.Select(theme, r.variant)
	if err != nil {
		return nil, fmt.Errorf("select theme %s: %w", theme, err)
	}
	return selection, nil
}

func (r *LayoutRegistry) ensureManifest() (*gotheme.Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.manifest != nil {
		return r.manifest, nil
	}

	manifest, err := r.loader.Load(r.path)
	if err != nil {
		return nil, fmt.Errorf("load theme manifest from %s: %w", r.path, err)
	}

	normalized := *manifest
	if r.theme != "" && !strings.EqualFold(strings.TrimSpace(normalized.Name), r.theme) {
		normalized.Name = r.theme
	}
	if strings.TrimSpace(normalized.Name) == "" {
		return nil, fmt.Errorf("theme name required for manifest registration")
	}

	if err := r.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("register theme manifest: %w", err)
	}
	r.manifest = &normalized
	return r.manifest, nil
}
