package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "sinc.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadManifestWithMixedUnits(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "hello"
entry = "main"

[[units]]
path = "main.sinasm"

[[units]]
path = "lib.sinc"
kind = "object"
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "hello" || m.Entry != "main" {
		t.Fatalf("Manifest = %+v, want name=hello entry=main", m)
	}
	if len(m.Units) != 2 {
		t.Fatalf("Units = %v, want 2 entries", m.Units)
	}
	if m.Units[0].Kind != UnitAssembly {
		t.Fatalf("Units[0].Kind = %q, want inferred %q", m.Units[0].Kind, UnitAssembly)
	}
	if m.Units[1].Kind != UnitObject {
		t.Fatalf("Units[1].Kind = %q, want %q", m.Units[1].Kind, UnitObject)
	}
}

func TestLoadManifestMissingPackageSection(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[[units]]
path = "main.sinasm"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing [package]")
	}
}

func TestLoadManifestNoUnits(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "empty"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing [[units]]")
	}
}

func TestFindManifestWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[package]
name = "nested"

[[units]]
path = "main.sinasm"
`)
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	found, ok, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if !ok {
		t.Fatalf("expected to find sinc.toml above %s", nested)
	}
	want := filepath.Join(root, "sinc.toml")
	if found != want {
		t.Fatalf("found = %q, want %q", found, want)
	}
}

func TestResolveUnitPathRelativeToManifest(t *testing.T) {
	manifestPath := filepath.Join("/", "project", "sinc.toml")
	got := ResolveUnitPath(manifestPath, "src/main.sinasm")
	want := filepath.Join("/", "project", "src", "main.sinasm")
	if got != want {
		t.Fatalf("ResolveUnitPath = %q, want %q", got, want)
	}
}
