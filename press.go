package press

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/assembler"
	"github.com/goliatone/go-press/internal/commands"
	sitecmd "github.com/goliatone/go-press/internal/commands/site"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/logging/console"
	"github.com/goliatone/go-press/internal/logging/gologger"
	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// ErrModuleDisabled is returned by New when the configuration switches the
// module off entirely.
var ErrModuleDisabled = errors.New("press: module disabled")

// GeneratorService exports the static site generator contract for consumers
// of the press package.
type GeneratorService = generator.Service

// BuildOptions exports the generator build options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the generator build report.
type BuildResult = generator.BuildResult

// Document exports the parsed document DTO.
type Document = interfaces.Document

// OutputPage exports the assembled page DTO.
type OutputPage = interfaces.OutputPage

// BuildSiteCommand exports the site build command message.
type BuildSiteCommand = sitecmd.BuildSiteCommand

// RenderPostCommand exports the single-post render command message.
type RenderPostCommand = sitecmd.RenderPostCommand

// CleanSiteCommand exports the output directory clean command message.
type CleanSiteCommand = sitecmd.CleanSiteCommand

// ResultEnvelope exports the build command result envelope.
type ResultEnvelope = sitecmd.ResultEnvelope

// SiteCommands bundles the command handlers exposed by the module.
type SiteCommands struct {
	Build  *sitecmd.BuildSiteHandler
	Render *sitecmd.RenderPostHandler
	Clean  *sitecmd.CleanSiteHandler
}

// Press is the top level runtime facade. It wires the document service, the
// page assembler, and the static generator from a single configuration.
type Press struct {
	cfg       Config
	provider  interfaces.LoggerProvider
	documents *markdown.Service
	assembler *assembler.Assembler
	layouts   *assembler.LayoutRegistry
	generator generator.Service
}

var _ interfaces.DocumentService = (*Press)(nil)
var _ sitecmd.PostRenderer = (*Press)(nil)

// New constructs a press module using the provided configuration.
func New(cfg Config) (*Press, error) {
	if !cfg.Enabled {
		return nil, ErrModuleDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := newLoggerProvider(cfg)
	if err != nil {
		return nil, err
	}

	documents, err := markdown.NewService(markdown.Config{
		BasePath:  cfg.Content.Dir,
		Pattern:   cfg.Content.Pattern,
		Recursive: cfg.Content.Recursive,
		Render: interfaces.RenderOptions{
			Extensions: cfg.Render.Extensions,
			HardWraps:  cfg.Render.HardWraps,
			SafeMode:   cfg.Render.SafeMode,
		},
	}, nil)
	if err != nil {
		return nil, err
	}

	asmCfg := assembler.Config{DefaultLayout: cfg.Theme.DefaultLayout}
	var layouts *assembler.LayoutRegistry
	if cfg.Features.Layouts {
		layouts = assembler.NewLayoutRegistry(assembler.LayoutConfig{
			Path:    cfg.Theme.Path,
			Theme:   cfg.Theme.Name,
			Variant: cfg.Theme.Variant,
		})
		asmCfg.Layouts = layouts
	}
	asm := assembler.New(asmCfg)

	gen := generator.NewDisabledService()
	if cfg.GeneratorEnabled() {
		gen = generator.NewService(generator.Config{
			OutputDir:       cfg.Generator.OutputDir,
			BaseURL:         cfg.Generator.BaseURL,
			SiteTitle:       cfg.Generator.SiteTitle,
			SiteDescription: cfg.Generator.SiteDescription,
			CleanBuild:      cfg.Generator.CleanBuild,
			Incremental:     cfg.Generator.Incremental,
			GenerateSitemap: cfg.Generator.GenerateSitemap,
			GenerateRobots:  cfg.Generator.GenerateRobots,
			GenerateFeeds:   cfg.Generator.GenerateFeeds,
			Workers:         cfg.Generator.Workers,
		}, generator.Dependencies{
			Documents: documents,
			Assembler: asm,
			Logger:    provider,
		})
	}

	return &Press{
		cfg:       cfg,
		provider:  provider,
		documents: documents,
		assembler: asm,
		layouts:   layouts,
		generator: gen,
	}, nil
}

// Load reads and parses a single document relative to the content directory.
func (p *Press) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	return p.documents.Load(ctx, path, opts)
}

// LoadDirectory reads and parses every matching document under dir. Healthy
// documents still load when siblings fail; the failures come back aggregated
// in a *posts.CorpusError.
func (p *Press) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	return p.documents.LoadDirectory(ctx, dir, opts)
}

// RenderDocument renders a parsed document into a publishable page.
func (p *Press) RenderDocument(ctx context.Context, doc *interfaces.Document) (*interfaces.OutputPage, error) {
	nodes, err := p.documents.RenderDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	return p.assembler.AssemblePage(doc, nodes)
}

// RenderFile loads a document by path and renders it into a page.
func (p *Press) RenderFile(ctx context.Context, path string) (*interfaces.OutputPage, error) {
	doc, err := p.documents.Load(ctx, path, interfaces.LoadOptions{})
	if err != nil {
		return nil, err
	}
	return p.RenderDocument(ctx, doc)
}

// RenderSource parses raw markdown as if it had been read from path and
// renders it into a page. The path supplies the slug and, when present, the
// publication date.
func (p *Press) RenderSource(ctx context.Context, path string, source []byte) (*interfaces.OutputPage, error) {
	doc, err := markdown.BuildDocument(path, source, time.Time{})
	if err != nil {
		return nil, err
	}
	return p.RenderDocument(ctx, doc)
}

// Build runs the static generator over the content directory.
func (p *Press) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	return p.generator.Build(ctx, opts)
}

// Clean removes the generator output directory.
func (p *Press) Clean(ctx context.Context) error {
	return p.generator.Clean(ctx)
}

// Generator exposes the static generator service.
func (p *Press) Generator() GeneratorService {
	return p.generator
}

// Layouts exposes the layout registry, or nil when layouts are disabled.
func (p *Press) Layouts() *assembler.LayoutRegistry {
	return p.layouts
}

// LoggerProvider exposes the configured logging provider, or nil when logging
// is disabled.
func (p *Press) LoggerProvider() interfaces.LoggerProvider {
	return p.provider
}

// Commands wires the site command handlers against this module.
func (p *Press) Commands() SiteCommands {
	gates := sitecmd.FeatureGates{GeneratorEnabled: p.cfg.GeneratorEnabled}
	logger := commands.CommandLogger(p.provider, "site")
	return SiteCommands{
		Build:  sitecmd.NewBuildSiteHandler(p.generator, logger, gates),
		Render: sitecmd.NewRenderPostHandler(p, logger),
		Clean:  sitecmd.NewCleanSiteHandler(p.generator, logger, gates),
	}
}

func newLoggerProvider(cfg Config) (interfaces.LoggerProvider, error) {
	if !cfg.Features.Logger {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Provider)) {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
	case "console":
		return console.NewProvider(console.Options{MinLevel: consoleLevel(cfg.Logging.Level)}), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Logging.Provider)
	}
}

func consoleLevel(level string) *console.Level {
	var resolved console.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		resolved = console.LevelTrace
	case "debug":
		resolved = console.LevelDebug
	case "", "info":
		resolved = console.LevelInfo
	case "warn", "warning":
		resolved = console.LevelWarn
	case "error":
		resolved = console.LevelError
	case "fatal":
		resolved = console.LevelFatal
	default:
		return nil
	}
	return &resolved
}
