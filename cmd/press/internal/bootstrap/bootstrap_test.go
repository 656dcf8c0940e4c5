package bootstrap

import (
	"reflect"
	"testing"
)

func TestBuildModuleDefaults(t *testing.T) {
	dir := t.TempDir()
	module, err := BuildModule(Options{ContentDir: dir, Recursive: true})
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	if module == nil {
		t.Fatal("expected module")
	}
	if module.LoggerProvider() == nil {
		t.Fatal("expected logger provider to be configured")
	}
	if module.Layouts() != nil {
		t.Fatal("layouts should stay disabled without a theme path")
	}
}

func TestBuildModuleGeneratorRequiresOutputDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := BuildModule(Options{ContentDir: dir, Generator: true, OutputDir: " "}); err != nil {
		t.Fatalf("blank output dir should fall back to the default, got %v", err)
	}
}

func TestBuildModuleRejectsUnknownLogProvider(t *testing.T) {
	dir := t.TempDir()
	if _, err := BuildModule(Options{ContentDir: dir, LogProvider: "zap"}); err == nil {
		t.Fatal("expected unknown log provider to fail")
	}
}

func TestSplitList(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"  ", nil},
		{"a,b", []string{"a", "b"}},
		{" a , ,b ", []string{"a", "b"}},
	}
	for _, tc := range cases {
		if got := SplitList(tc.input); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitList(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
