package project

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadUpwardSearch(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[lint]\njobs = 4\n\n[output]\nformat = \"json\"\n")
	nested := filepath.Join(root, "src", "lib")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(nested, "app.js")
	if err := os.WriteFile(file, []byte("a && b()"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, start := range []string{nested, file} {
		m, err := Load(start)
		if err != nil {
			t.Fatalf("Load(%s): %v", start, err)
		}
		if m.Root != root {
			t.Errorf("root = %s, want %s", m.Root, root)
		}
		if m.Config.Lint.Jobs != 4 || m.Config.Output.Format != "json" {
			t.Errorf("unexpected config %+v", m.Config)
		}
		// незаданные ключи берутся из Default
		if !reflect.DeepEqual(m.Config.Lint.Extensions, Default().Lint.Extensions) {
			t.Errorf("extensions = %v", m.Config.Lint.Extensions)
		}
		if m.Config.Output.Color != "auto" || m.Config.Lint.MaxDiagnostics != 100 {
			t.Errorf("defaults not kept: %+v", m.Config)
		}
	}
}

func TestLoadNoConfig(t *testing.T) {
	_, err := Load(t.TempDir())
	// в temp-директории выше по дереву конфига быть не должно
	if err != nil && !errors.Is(err, ErrNoConfig) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[lint\n", "failed to parse TOML"},
		{"unknown key", "[lint]\nseverity = \"error\"\n", "unknown keys: lint.severity"},
		{"unknown table", "[rules]\nx = 1\n", "unknown keys"},
		{"negative jobs", "[lint]\njobs = -1\n", "[lint].jobs"},
		{"empty extensions", "[lint]\nextensions = []\n", "must not be empty"},
		{"extension without dot", "[lint]\nextensions = [\"js\"]\n", "must start with a dot"},
		{"bad format", "[output]\nformat = \"xml\"\n", "unknown format"},
		{"bad color", "[output]\ncolor = \"always\"\n", "[output].color"},
		{"bad path mode", "[output]\npath_mode = \"short\"\n", "[output].path_mode"},
		{"wrong type", "[lint]\njobs = \"many\"\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteDefault(dir)
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if !reflect.DeepEqual(m.Config, Default()) {
		t.Errorf("round trip = %+v, want %+v", m.Config, Default())
	}

	if _, err := WriteDefault(dir); err == nil {
		t.Error("second WriteDefault must refuse to overwrite")
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, ConfigFileName)
	got, ok, err := FindConfig(sub)
	if err != nil || !ok || got != want {
		t.Errorf("FindConfig = %q, %v, %v; want %q", got, ok, err, want)
	}
}
