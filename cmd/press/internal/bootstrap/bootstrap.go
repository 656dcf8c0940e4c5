package bootstrap

import (
	"fmt"
	"strings"

	press "github.com/goliatone/go-press"
)

// Options captures configuration for the press CLI bootstraps.
type Options struct {
	ContentDir      string
	Pattern         string
	Recursive       bool
	OutputDir       string
	BaseURL         string
	SiteTitle       string
	SiteDescription string
	CleanBuild      bool
	Incremental     bool
	Sitemap         bool
	Robots          bool
	Feeds           bool
	Workers         int
	ThemePath       string
	ThemeName       string
	ThemeVariant    string
	DefaultLayout   string
	Generator       bool
	LogProvider     string
	LogLevel        string
	LogFormat       string
}

// BuildModule constructs a press module configured from CLI options.
func BuildModule(opts Options) (*press.Press, error) {
	cfg := press.DefaultConfig()

	if trimmed := strings.TrimSpace(opts.ContentDir); trimmed != "" {
		cfg.Content.Dir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.Pattern); trimmed != "" {
		cfg.Content.Pattern = trimmed
	}
	cfg.Content.Recursive = opts.Recursive

	if trimmed := strings.TrimSpace(opts.DefaultLayout); trimmed != "" {
		cfg.Theme.DefaultLayout = trimmed
	}
	if trimmed := strings.TrimSpace(opts.ThemePath); trimmed != "" {
		cfg.Features.Layouts = true
		cfg.Theme.Path = trimmed
		cfg.Theme.Name = strings.TrimSpace(opts.ThemeName)
		cfg.Theme.Variant = strings.TrimSpace(opts.ThemeVariant)
	}

	if opts.Generator {
		cfg.Features.Generator = true
		if trimmed := strings.TrimSpace(opts.OutputDir); trimmed != "" {
			cfg.Generator.OutputDir = trimmed
		}
		cfg.Generator.BaseURL = strings.TrimSpace(opts.BaseURL)
		cfg.Generator.SiteTitle = strings.TrimSpace(opts.SiteTitle)
		cfg.Generator.SiteDescription = strings.TrimSpace(opts.SiteDescription)
		cfg.Generator.CleanBuild = opts.CleanBuild
		cfg.Generator.Incremental = opts.Incremental
		cfg.Generator.GenerateSitemap = opts.Sitemap
		cfg.Generator.GenerateRobots = opts.Robots
		cfg.Generator.GenerateFeeds = opts.Feeds
		cfg.Generator.Workers = opts.Workers
	}

	cfg.Features.Logger = true
	if trimmed := strings.TrimSpace(opts.LogProvider); trimmed != "" {
		cfg.Logging.Provider = trimmed
	}
	if trimmed := strings.TrimSpace(opts.LogLevel); trimmed != "" {
		cfg.Logging.Level = trimmed
	}
	cfg.Logging.Format = strings.TrimSpace(opts.LogFormat)

	module, err := press.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise press module: %w", err)
	}
	return module, nil
}

// SplitList parses a comma separated flag value into trimmed entries.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
