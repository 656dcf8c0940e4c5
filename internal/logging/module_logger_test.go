package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-press/pkg/interfaces"
)

type captureLogger struct {
	fields map[string]any
}

var _ interfaces.Logger = (*captureLogger)(nil)
var _ interfaces.FieldsLogger = (*captureLogger)(nil)

func (l *captureLogger) Trace(string, ...any) {}
func (l *captureLogger) Debug(string, ...any) {}
func (l *captureLogger) Info(string, ...any)  {}
func (l *captureLogger) Warn(string, ...any)  {}
func (l *captureLogger) Error(string, ...any) {}
func (l *captureLogger) Fatal(string, ...any) {}

func (l *captureLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *captureLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &captureLogger{fields: merged}
}

type captureProvider struct {
	last string
}

func (p *captureProvider) GetLogger(name string) interfaces.Logger {
	p.last = name
	return &captureLogger{}
}

func TestModuleLoggerScopesByName(t *testing.T) {
	provider := &captureProvider{}

	logger := ModuleLogger(provider, "press.renderer")
	if provider.last != "press.renderer" {
		t.Fatalf("expected provider to receive module name, got %q", provider.last)
	}

	capture, ok := logger.(*captureLogger)
	if !ok {
		t.Fatalf("expected capture logger, got %T", logger)
	}
	if capture.fields["module"] != "press.renderer" {
		t.Fatalf("expected module field, got %#v", capture.fields)
	}
}

func TestModuleLoggerDefaultsToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected no-op logger, got %T", logger)
	}
}

func TestWithFieldsCopiesTheMap(t *testing.T) {
	fields := map[string]any{"slug": "variable-scope"}
	logger := WithFields(&captureLogger{}, fields)

	fields["slug"] = "mutated"

	captured, ok := logger.(*captureLogger)
	if !ok {
		t.Fatalf("expected captureLogger, got %T", logger)
	}
	if captured.fields["slug"] != "variable-scope" {
		t.Fatalf("expected field map to be copied, got %v", captured.fields)
	}
}

func TestWithFieldsNilSafety(t *testing.T) {
	if logger := WithFields(nil, map[string]any{"a": 1}); logger != nil {
		t.Fatalf("expected nil logger to stay nil, got %v", logger)
	}

	plain := NoOp()
	if logger := WithFields(plain, nil); logger != plain {
		t.Fatalf("expected empty fields to return the same logger")
	}
}

func TestWithDocumentContextSkipsEmptyValues(t *testing.T) {
	logger := WithDocumentContext(&captureLogger{}, " posts/a.md ", "", "render")

	capture := logger.(*captureLogger)
	if capture.fields[fieldSourcePath] != "posts/a.md" {
		t.Fatalf("expected trimmed source path, got %#v", capture.fields)
	}
	if _, ok := capture.fields[fieldSlug]; ok {
		t.Fatalf("expected empty slug to be skipped: %#v", capture.fields)
	}
	if capture.fields[fieldStage] != "render" {
		t.Fatalf("expected stage field, got %#v", capture.fields)
	}
}

func TestContextFieldsRoundTrip(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"build_id": "abc"})
	ctx = ContextWithFields(ctx, map[string]any{"slug": "post"})

	fields := ContextFields(ctx)
	if fields["build_id"] != "abc" || fields["slug"] != "post" {
		t.Fatalf("expected merged fields, got %#v", fields)
	}
}
