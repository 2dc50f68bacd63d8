package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"sinc/internal/objfile"
	"sinc/internal/project"
)

func writeUnit(t *testing.T, dir, name, contents string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestAssembleAllProducesResultsInManifestOrder(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "a.sinasm", "main:\n\tloada #1\n\thalt\n")
	writeUnit(t, dir, "b.sinasm", "main:\n\tloada #2\n\thalt\n")

	units := []project.Unit{
		{Path: "a.sinasm", Kind: project.UnitAssembly},
		{Path: "b.sinasm", Kind: project.UnitAssembly},
	}
	manifestPath := filepath.Join(dir, "sinc.toml")

	results, err := AssembleAll(context.Background(), manifestPath, units, 16, 2, nil, nil)
	if err != nil {
		t.Fatalf("AssembleAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Unit.Path != "a.sinasm" || results[1].Unit.Path != "b.sinasm" {
		t.Fatalf("results out of manifest order: %+v", results)
	}
}

func TestAssembleAllUsesDiskCacheOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "a.sinasm", "main:\n\tloada #1\n\thalt\n")

	units := []project.Unit{{Path: "a.sinasm", Kind: project.UnitAssembly}}
	manifestPath := filepath.Join(dir, "sinc.toml")

	cache, err := OpenCache(filepath.Join(dir, ".sinc-cache"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}

	first, err := AssembleAll(context.Background(), manifestPath, units, 16, 1, cache, nil)
	if err != nil {
		t.Fatalf("AssembleAll (first): %v", err)
	}

	second, err := AssembleAll(context.Background(), manifestPath, units, 16, 1, cache, nil)
	if err != nil {
		t.Fatalf("AssembleAll (second): %v", err)
	}
	if len(first[0].File.Text) != len(second[0].File.Text) {
		t.Fatalf("cached assembly text length differs: %d vs %d", len(first[0].File.Text), len(second[0].File.Text))
	}
}

func TestCacheGetMissReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	_, ok, err := cache.Get(contentKeyOf([]byte("nonexistent")))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected cache miss")
	}
}

func TestCachePutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(dir)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	key := contentKeyOf([]byte("source bytes"))
	want := DiskPayload{File: objfile.File{
		WordSize:   16,
		VMEndian:   objfile.LittleEndian,
		FileEndian: objfile.LittleEndian,
		Version:    objfile.SupportedVersion,
		VMVersion:  objfile.TargetVMVersion,
		Text:       []byte{0x01, 0x02, 0x03},
	}}
	if err := cache.Put(key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := cache.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected cache hit after Put")
	}
	if len(got.File.Text) != len(want.File.Text) {
		t.Fatalf("round-tripped Text length = %d, want %d", len(got.File.Text), len(want.File.Text))
	}
}
