package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	press "github.com/goliatone/go-press"
	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	var (
		contentDir      = flag.String("content-dir", "content", "Path to the markdown content root")
		pattern         = flag.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
		outputDir       = flag.String("output", "public", "Directory the generated site is written to")
		baseURL         = flag.String("base-url", "", "Absolute base URL used in sitemap and feed links")
		siteTitle       = flag.String("site-title", "", "Site title used in generated feeds")
		siteDescription = flag.String("site-description", "", "Site description used in generated feeds")
		clean           = flag.Bool("clean", false, "Remove the output directory before building")
		incremental     = flag.Bool("incremental", true, "Skip unchanged documents using the build manifest")
		force           = flag.Bool("force", false, "Rebuild every document even when unchanged")
		dryRun          = flag.Bool("dry-run", false, "Render documents without writing any files")
		sitemap         = flag.Bool("sitemap", true, "Generate sitemap.xml")
		robots          = flag.Bool("robots", false, "Generate robots.txt")
		feeds           = flag.Bool("feeds", false, "Generate RSS and Atom feeds")
		workers         = flag.Int("workers", 0, "Concurrent render workers (0 uses the CPU count)")
		slugs           = flag.String("slugs", "", "Comma separated list of slugs to build (defaults to all)")
		themePath       = flag.String("theme-path", "", "Path to a theme directory used to validate layouts")
		themeName       = flag.String("theme", "", "Theme name selected from the theme manifest")
		themeVariant    = flag.String("theme-variant", "", "Theme variant selected from the theme manifest")
		defaultLayout   = flag.String("default-layout", "default", "Layout applied when front matter names none")
		logLevel        = flag.String("log-level", "info", "Minimum log level")
		logFormat       = flag.String("log-format", "", "Log output format (json, console, pretty)")
		logProvider     = flag.String("log-provider", "console", "Logging provider (console, gologger)")
	)

	flag.Parse()

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:      *contentDir,
		Pattern:         *pattern,
		Recursive:       true,
		OutputDir:       *outputDir,
		BaseURL:         *baseURL,
		SiteTitle:       *siteTitle,
		SiteDescription: *siteDescription,
		CleanBuild:      *clean,
		Incremental:     *incremental,
		Sitemap:         *sitemap,
		Robots:          *robots,
		Feeds:           *feeds,
		Workers:         *workers,
		ThemePath:       *themePath,
		ThemeName:       *themeName,
		ThemeVariant:    *themeVariant,
		DefaultLayout:   *defaultLayout,
		Generator:       true,
		LogProvider:     *logProvider,
		LogLevel:        *logLevel,
		LogFormat:       *logFormat,
	})
	if err != nil {
		log.Fatalf("bootstrap module: %v", err)
	}

	result, err := module.Build(context.Background(), press.BuildOptions{
		Slugs:  bootstrap.SplitList(*slugs),
		Force:  *force,
		DryRun: *dryRun,
	})
	if err != nil {
		if result != nil {
			reportDiagnostics(result)
		}
		log.Fatalf("build site: %v", err)
	}

	reportDiagnostics(result)
	fmt.Fprintf(os.Stdout, "Built %d page(s), skipped %d, in %s\n", result.PagesBuilt, result.PagesSkipped, result.Duration)
	if result.DryRun {
		fmt.Fprintln(os.Stdout, "Dry run: no files were written")
	}
}

func reportDiagnostics(result *press.BuildResult) {
	for _, diag := range result.Diagnostics {
		if diag.Err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", diag.SourcePath, diag.Err)
		}
	}
}
