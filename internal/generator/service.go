package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-press/internal/identity"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-press/posts"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled   = errors.New("generator: service disabled")
	errSourceRequired    = errors.New("generator: document source is required")
	errAssemblerRequired = errors.New("generator: page assembler is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	BaseURL         string
	SiteTitle       string
	SiteDescription string
	CleanBuild      bool
	Incremental     bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	Workers         int
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// Slugs restricts the build to the named documents. Empty means all.
	Slugs  []string
	DryRun bool
	// Force renders every selected document even when the manifest marks it
	// unchanged.
	Force bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt   int
	PagesSkipped int
	Duration     time.Duration
	Rendered     []RenderedPage
	Diagnostics  []RenderDiagnostic
	Errors       []error
	DryRun       bool
}

// RenderedPage is a fully assembled page plus the bookkeeping the manifest
// and feeds need.
type RenderedPage struct {
	Slug         string
	SourcePath   string
	Route        string
	Output       string
	Layout       string
	Title        string
	Summary      string
	HTML         string
	Date         time.Time
	LastModified time.Time
	SourceHash   string
	Checksum     string
	Duration     time.Duration
}

// RenderDiagnostic records the outcome of a single document in a batch run.
type RenderDiagnostic struct {
	SourcePath string
	Slug       string
	Route      string
	Layout     string
	Skipped    bool
	Duration   time.Duration
	Err        error
}

// SiteMetadata describes the site the feeds and sitemap are generated for.
type SiteMetadata struct {
	Title       string
	Description string
	BaseURL     string
}

// DocumentSource supplies parsed documents and their rendered node
// sequences.
type DocumentSource interface {
	LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error)
	RenderDocument(ctx context.Context, doc *interfaces.Document) (*interfaces.NodeList, error)
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Documents DocumentSource
	Assembler interfaces.PageAssembler
	Logger    interfaces.LoggerProvider
}

// NewService wires a generator with the provided configuration and
// dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return &service{
		cfg:    cfg,
		deps:   deps,
		writer: newFSWriter(),
		log:    logging.GeneratorLogger(deps.Logger),
		now:    time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	deps   Dependencies
	writer artifactWriter
	log    interfaces.Logger
	now    func() time.Time
}

type disabledService struct{}

type renderOutcome struct {
	diagnostic RenderDiagnostic
	page       RenderedPage
	skipped    bool
	err        error
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Documents == nil {
		return nil, errSourceRequired
	}
	if s.deps.Assembler == nil {
		return nil, errAssemblerRequired
	}

	start := time.Now()
	generatedAt := s.now().UTC()
	baseDir := strings.TrimRight(strings.TrimSpace(s.cfg.OutputDir), "/")

	docs, loadErr := s.deps.Documents.LoadDirectory(ctx, ".", interfaces.LoadOptions{})
	var corpusErr *posts.CorpusError
	if loadErr != nil && !errors.As(loadErr, &corpusErr) {
		return nil, loadErr
	}
	docs = filterDocuments(docs, opts.Slugs)
	s.log.Info("build started",
		"build_id", identity.BuildUUID(s.cfg.OutputDir).String(),
		"documents", len(docs),
		"dry_run", opts.DryRun,
	)

	result := &BuildResult{
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(docs)),
	}

	var errorsSlice []error

	if corpusErr != nil {
		for _, failure := range corpusErr.Failures {
			s.log.Error("document failed to load", "source", failure.SourcePath, "error", failure.Err)
			result.Diagnostics = append(result.Diagnostics, RenderDiagnostic{
				SourcePath: failure.SourcePath,
				Err:        failure.Err,
			})
			errorsSlice = append(errorsSlice, failure.Err)
		}
	}

	manifest, manifestErr := s.loadManifest(ctx, baseDir)
	if manifestErr != nil {
		errorsSlice = append(errorsSlice, manifestErr)
	}
	if manifest == nil {
		manifest = newBuildManifest()
	}

	if s.cfg.CleanBuild && !opts.DryRun {
		if err := s.Clean(ctx); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
		manifest = newBuildManifest()
	}

	var (
		mu       sync.Mutex
		rendered = make([]RenderedPage, 0, len(docs))
		pageKeys = map[string]struct{}{}
	)
	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if key := manifest.pageKey(outcome.diagnostic.SourcePath); key != "" {
			pageKeys[key] = struct{}{}
		}
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		result.PagesBuilt++
		rendered = append(rendered, outcome.page)
	}

	workerCount := s.effectiveWorkerCount(len(docs))
	if workerCount <= 1 || len(docs) <= 1 {
		for _, doc := range docs {
			select {
			case <-ctx.Done():
				collect(cancelledOutcome(doc, ctx.Err()))
				return result, ctx.Err()
			default:
				collect(s.renderDocument(ctx, doc, manifest, baseDir, opts.Force))
			}
		}
	} else {
		s.renderConcurrently(ctx, docs, workerCount, manifest, baseDir, opts.Force, collect)
	}

	sortRendered(rendered)

	if opts.DryRun {
		result.Rendered = rendered
		result.Duration = time.Since(start)
		if len(errorsSlice) > 0 {
			result.Errors = append(result.Errors, errorsSlice...)
			return result, errors.Join(errorsSlice...)
		}
		return result, nil
	}

	if err := s.persistPages(ctx, rendered); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	siteMeta := SiteMetadata{
		Title:       s.cfg.SiteTitle,
		Description: s.cfg.SiteDescription,
		BaseURL:     strings.TrimRight(s.cfg.BaseURL, "/"),
	}

	if s.cfg.GenerateSitemap {
		sitemapPages := s.mergeRenderedForSitemap(docs, rendered, manifest)
		if err := s.writeSitemap(ctx, sitemapPages, generatedAt, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, siteMeta, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateFeeds {
		feedPages := s.mergeRenderedForSitemap(docs, rendered, manifest)
		if err := s.writeFeeds(ctx, siteMeta, feedPages, generatedAt, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if len(errorsSlice) == 0 {
		manifest.GeneratedAt = generatedAt
		for _, page := range rendered {
			if strings.TrimSpace(page.Checksum) == "" {
				continue
			}
			manifest.setPage(manifestPage{
				Slug:         page.Slug,
				SourcePath:   page.SourcePath,
				Route:        page.Route,
				Output:       page.Output,
				Layout:       page.Layout,
				SourceHash:   page.SourceHash,
				Checksum:     page.Checksum,
				LastModified: page.LastModified,
				RenderedAt:   generatedAt,
			})
		}
		if len(opts.Slugs) == 0 {
			manifest.prunePages(pageKeys)
		}
		if err := s.persistManifest(ctx, manifest, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Rendered = rendered
	result.Duration = time.Since(start)
	s.log.Info("build finished",
		"built", result.PagesBuilt,
		"skipped", result.PagesSkipped,
		"errors", len(errorsSlice),
		"duration", result.Duration.String(),
	)
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

func (s *service) Clean(ctx context.Context) error {
	baseDir := strings.TrimRight(strings.TrimSpace(s.cfg.OutputDir), "/")
	if baseDir == "" {
		return errors.New("generator: clean requires an output directory")
	}
	return s.writer.RemoveAll(ctx, baseDir)
}

func (s *service) renderConcurrently(
	ctx context.Context,
	docs []*interfaces.Document,
	workers int,
	manifest *buildManifest,
	baseDir string,
	force bool,
	collect func(renderOutcome),
) {
	jobs := make(chan *interfaces.Document)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				select {
				case <-ctx.Done():
					collect(cancelledOutcome(doc, ctx.Err()))
					return
				default:
					collect(s.renderDocument(ctx, doc, manifest, baseDir, force))
				}
			}
		}()
	}

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- doc:
		}
	}
	close(jobs)
	wg.Wait()
}

func (s *service) renderDocument(
	ctx context.Context,
	doc *interfaces.Document,
	manifest *buildManifest,
	baseDir string,
	force bool,
) renderOutcome {
	route := pageRoute(doc.Slug, doc.Date)
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			SourcePath: doc.SourcePath,
			Slug:       doc.Slug,
			Route:      route,
		},
	}

	select {
	case <-ctx.Done():
		outcome.err = ctx.Err()
		outcome.diagnostic.Err = ctx.Err()
		return outcome
	default:
	}

	expectedOutput := joinOutputPath(baseDir, routeOutputPath(route))
	if s.cfg.Incremental && !force && manifest.shouldSkipPage(doc.SourcePath, doc.Checksum, expectedOutput) {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		return outcome
	}

	start := time.Now()
	nodes, err := s.deps.Documents.RenderDocument(ctx, doc)
	if err != nil {
		wrapped := fmt.Errorf("generator: render %s: %w", doc.SourcePath, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		outcome.diagnostic.Duration = time.Since(start)
		return outcome
	}

	page, err := s.deps.Assembler.AssemblePage(doc, nodes)
	if err != nil {
		wrapped := fmt.Errorf("generator: assemble %s: %w", doc.SourcePath, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		outcome.diagnostic.Duration = time.Since(start)
		return outcome
	}

	duration := time.Since(start)
	outcome.diagnostic.Layout = page.LayoutName
	outcome.diagnostic.Duration = duration
	outcome.page = RenderedPage{
		Slug:         doc.Slug,
		SourcePath:   doc.SourcePath,
		Route:        route,
		Output:       expectedOutput,
		Layout:       page.LayoutName,
		Title:        page.Title,
		Summary:      page.Summary,
		HTML:         page.HTML,
		Date:         doc.Date,
		LastModified: doc.LastModified,
		SourceHash:   doc.Checksum,
		Duration:     duration,
	}
	return outcome
}

func (s *service) persistPages(ctx context.Context, pages []RenderedPage) error {
	if len(pages) == 0 {
		return nil
	}
	baseDir := strings.TrimRight(strings.TrimSpace(s.cfg.OutputDir), "/")
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := s.writer.EnsureDir(ctx, baseDir); err != nil {
			return err
		}
	}
	for i := range pages {
		fullPath := pages[i].Output
		if strings.TrimSpace(fullPath) == "" {
			fullPath = joinOutputPath(baseDir, routeOutputPath(pages[i].Route))
			pages[i].Output = fullPath
		}
		if err := ensureDir(ctx, s.writer, dirCache, path.Dir(fullPath)); err != nil {
			return err
		}
		checksum := computeHashFromString(pages[i].HTML)
		pages[i].Checksum = checksum

		metadata := map[string]string{
			"slug":   pages[i].Slug,
			"source": pages[i].SourcePath,
			"layout": pages[i].Layout,
		}
		if s.cfg.Incremental {
			metadata["incremental"] = "true"
		}
		req := writeFileRequest{
			Path:        fullPath,
			Content:     strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Category:    categoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    checksum,
			Metadata:    metadata,
		}
		if err := s.writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// mergeRenderedForSitemap combines this run's pages with manifest entries for
// documents skipped by the incremental check, so partial builds still emit a
// complete site map and feed.
func (s *service) mergeRenderedForSitemap(
	docs []*interfaces.Document,
	rendered []RenderedPage,
	manifest *buildManifest,
) []RenderedPage {
	renderedByKey := make(map[string]RenderedPage, len(rendered))
	for _, page := range rendered {
		renderedByKey[manifest.pageKey(page.SourcePath)] = page
	}

	merged := make([]RenderedPage, 0, len(docs))
	for _, doc := range docs {
		key := manifest.pageKey(doc.SourcePath)
		if page, ok := renderedByKey[key]; ok {
			merged = append(merged, page)
			continue
		}
		if entry, ok := manifest.lookupPage(doc.SourcePath); ok {
			merged = append(merged, RenderedPage{
				Slug:         entry.Slug,
				SourcePath:   entry.SourcePath,
				Route:        entry.Route,
				Output:       entry.Output,
				Layout:       entry.Layout,
				Title:        doc.FrontMatter.Title,
				Summary:      doc.FrontMatter.Summary,
				Date:         doc.Date,
				LastModified: entry.LastModified,
				SourceHash:   entry.SourceHash,
				Checksum:     entry.Checksum,
			})
			continue
		}
		merged = append(merged, RenderedPage{
			Slug:         doc.Slug,
			SourcePath:   doc.SourcePath,
			Route:        pageRoute(doc.Slug, doc.Date),
			Title:        doc.FrontMatter.Title,
			Summary:      doc.FrontMatter.Summary,
			Date:         doc.Date,
			LastModified: doc.LastModified,
		})
	}
	return merged
}

func (s *service) loadManifest(ctx context.Context, baseDir string) (*buildManifest, error) {
	target := joinOutputPath(baseDir, manifestFileName)
	if strings.TrimSpace(target) == "" {
		return newBuildManifest(), nil
	}
	data, err := s.writer.ReadFile(ctx, target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newBuildManifest(), nil
		}
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) persistManifest(ctx context.Context, manifest *buildManifest, baseDir string) error {
	if manifest == nil {
		return nil
	}
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	target := joinOutputPath(baseDir, manifestFileName)
	if strings.TrimSpace(target) == "" {
		return nil
	}
	if err := ensureDir(ctx, s.writer, map[string]struct{}{}, path.Dir(target)); err != nil {
		return err
	}
	metadata := map[string]string{
		"version": strconv.Itoa(manifest.Version),
	}
	if !manifest.GeneratedAt.IsZero() {
		metadata["generated_at"] = manifest.GeneratedAt.UTC().Format(time.RFC3339)
	}
	return s.writer.WriteFile(ctx, writeFileRequest{
		Path:        target,
		Content:     strings.NewReader(string(data)),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata:    metadata,
	})
}

func (s *service) writeSitemap(ctx context.Context, pages []RenderedPage, generatedAt time.Time, baseDir string) error {
	content := buildSitemap(s.cfg.BaseURL, pages, generatedAt)
	fullPath := joinOutputPath(baseDir, "sitemap.xml")
	if err := ensureDir(ctx, s.writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	return s.writer.WriteFile(ctx, writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": generatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (s *service) writeRobots(ctx context.Context, site SiteMetadata, baseDir string) error {
	content := buildRobots(site.BaseURL, s.cfg.GenerateSitemap)
	fullPath := joinOutputPath(baseDir, "robots.txt")
	if err := ensureDir(ctx, s.writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	return s.writer.WriteFile(ctx, writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": s.now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *service) writeFeeds(
	ctx context.Context,
	site SiteMetadata,
	pages []RenderedPage,
	generatedAt time.Time,
	baseDir string,
) error {
	items := s.buildFeedItems(pages)
	if len(items) == 0 {
		return nil
	}
	dirCache := map[string]struct{}{}

	rssContent := buildRSSFeed(site, items, generatedAt)
	rssPath := joinOutputPath(baseDir, "feed.xml")
	if err := ensureDir(ctx, s.writer, dirCache, path.Dir(rssPath)); err != nil {
		return err
	}
	if err := s.writer.WriteFile(ctx, writeFileRequest{
		Path:        rssPath,
		Content:     strings.NewReader(rssContent),
		Size:        int64(len(rssContent)),
		Category:    categoryFeed,
		ContentType: "application/rss+xml",
		Checksum:    computeHashFromString(rssContent),
		Metadata: map[string]string{
			"generated_at": generatedAt.UTC().Format(time.RFC3339),
			"feed_type":    "rss",
		},
	}); err != nil {
		return err
	}

	atomContent := buildAtomFeed(site, items, generatedAt)
	atomPath := joinOutputPath(baseDir, "feed.atom.xml")
	if err := ensureDir(ctx, s.writer, dirCache, path.Dir(atomPath)); err != nil {
		return err
	}
	return s.writer.WriteFile(ctx, writeFileRequest{
		Path:        atomPath,
		Content:     strings.NewReader(atomContent),
		Size:        int64(len(atomContent)),
		Category:    categoryFeed,
		ContentType: "application/atom+xml",
		Checksum:    computeHashFromString(atomContent),
		Metadata: map[string]string{
			"generated_at": generatedAt.UTC().Format(time.RFC3339),
			"feed_type":    "atom",
		},
	})
}

func (s *service) effectiveWorkerCount(documentCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if documentCount > 0 && workers > documentCount {
		return documentCount
	}
	return workers
}

func filterDocuments(docs []*interfaces.Document, slugs []string) []*interfaces.Document {
	if len(slugs) == 0 {
		return docs
	}
	wanted := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		wanted[strings.ToLower(strings.TrimSpace(slug))] = struct{}{}
	}
	filtered := make([]*interfaces.Document, 0, len(docs))
	for _, doc := range docs {
		if _, ok := wanted[strings.ToLower(doc.Slug)]; ok {
			filtered = append(filtered, doc)
		}
	}
	return filtered
}

func cancelledOutcome(doc *interfaces.Document, err error) renderOutcome {
	return renderOutcome{
		diagnostic: RenderDiagnostic{
			SourcePath: doc.SourcePath,
			Slug:       doc.Slug,
			Route:      pageRoute(doc.Slug, doc.Date),
			Err:        err,
		},
		err: err,
	}
}

func sortRendered(pages []RenderedPage) {
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].SourcePath < pages[j].SourcePath
	})
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
