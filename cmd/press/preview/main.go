package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	var (
		contentDir    = flag.String("content-dir", "content", "Path to the markdown content root")
		pattern       = flag.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
		filePath      = flag.String("file", "", "Markdown file to preview (relative to the content root)")
		defaultLayout = flag.String("default-layout", "default", "Layout applied when front matter names none")
		showMetadata  = flag.Bool("metadata", true, "Print front matter metadata alongside the rendered page")
	)

	flag.Parse()

	if *filePath == "" {
		log.Fatalf("--file is required")
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:    *contentDir,
		Pattern:       *pattern,
		Recursive:     true,
		DefaultLayout: *defaultLayout,
		LogProvider:   "console",
		LogLevel:      "warn",
	})
	if err != nil {
		log.Fatalf("bootstrap module: %v", err)
	}

	page, err := module.RenderFile(context.Background(), *filePath)
	if err != nil {
		log.Fatalf("render markdown: %v", err)
	}

	fmt.Fprintf(os.Stdout, "Title: %s\nSlug: %s\nLayout: %s\n", page.Title, page.Slug, page.LayoutName)
	if !page.Date.IsZero() {
		fmt.Fprintf(os.Stdout, "Date: %s\n", page.Date.Format("2006-01-02"))
	}

	if *showMetadata && len(page.Metadata) > 0 {
		metadata, err := json.MarshalIndent(page.Metadata, "", "  ")
		if err == nil {
			fmt.Fprintf(os.Stdout, "\nMetadata:\n%s\n", metadata)
		}
	}

	fmt.Fprintf(os.Stdout, "\nRendered HTML:\n%s\n", page.HTML)
}
