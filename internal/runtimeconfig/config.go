package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
)

var ErrContentDirRequired = errors.New("press config: content directory is required")
var ErrGeneratorOutputDirRequired = errors.New("press config: generator output directory is required when generator is enabled")
var ErrThemeFeatureRequired = errors.New("press config: layouts feature must be enabled to configure a theme")
var ErrThemePathRequired = errors.New("press config: theme path is required when layouts feature is enabled")
var ErrWorkersInvalid = errors.New("press config: generator worker count must be zero or positive")
var ErrLoggingProviderRequired = errors.New("press config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("press config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("press config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("press config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the press module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled   bool
	Content   ContentConfig
	Render    RenderConfig
	Theme     ThemeConfig
	Generator GeneratorConfig
	Commands  CommandsConfig
	Logging   LoggingConfig
	Features  Features
}

// ContentConfig captures filesystem discovery behaviour for source documents.
type ContentConfig struct {
	Dir       string
	Pattern   string
	Recursive bool
}

// RenderConfig mirrors interfaces.RenderOptions for runtime configuration.
type RenderConfig struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// ThemeConfig captures layout resolution for assembled pages.
type ThemeConfig struct {
	Path          string
	Name          string
	Variant       string
	DefaultLayout string
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	Enabled         bool
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

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Features toggles module functionality.
type Features struct {
	Layouts   bool
	Generator bool
	Logger    bool
}

// DefaultConfig returns opinionated defaults for a single-directory blog.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Content: ContentConfig{
			Dir:       "content",
			Pattern:   "*.md",
			Recursive: true,
		},
		Render: RenderConfig{},
		Theme: ThemeConfig{
			DefaultLayout: "default",
		},
		Generator: GeneratorConfig{
			OutputDir:       "public",
			CleanBuild:      false,
			Incremental:     true,
			GenerateSitemap: true,
			GenerateRobots:  false,
			GenerateFeeds:   false,
			Workers:         0,
		},
		Commands: CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
		Features: Features{},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if !cfg.Features.Layouts {
		if strings.TrimSpace(cfg.Theme.Name) != "" || strings.TrimSpace(cfg.Theme.Path) != "" {
			return ErrThemeFeatureRequired
		}
	}
	if cfg.Features.Layouts && strings.TrimSpace(cfg.Theme.Path) == "" {
		return ErrThemePathRequired
	}
	if cfg.Features.Generator || cfg.Generator.Enabled {
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
	}
	if cfg.Generator.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrWorkersInvalid, cfg.Generator.Workers)
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// GeneratorEnabled reports whether the static generator should be wired.
func (cfg Config) GeneratorEnabled() bool {
	return cfg.Features.Generator || cfg.Generator.Enabled
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
