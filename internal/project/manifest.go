// Package project loads a sinc.toml project manifest, grounded on the
// teacher's internal/project/modules.go and root.go: BurntSushi/toml
// decoding, a project-root search that walks upward from a starting
// directory, and metadata-driven validation of which sections were
// actually present in the file rather than trusting zero values.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// UnitKind distinguishes a translation unit that still needs assembling
// from one that is already an object file on disk.
type UnitKind string

const (
	UnitAssembly UnitKind = "asm"
	UnitObject   UnitKind = "object"
)

// Unit is one entry in [[units]]: a source or object file, assembled
// (or loaded) and linked in list order, matching spec.md §4.4's
// linking-in-order semantics.
type Unit struct {
	Path string   `toml:"path"`
	Kind UnitKind `toml:"kind"`
}

// Manifest is the decoded form of sinc.toml.
type Manifest struct {
	Name  string `toml:"name"`
	Entry string `toml:"entry"`
	Units []Unit `toml:"-"`
}

var (
	// ErrPackageSectionMissing indicates sinc.toml has no [package] table.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrNoUnits indicates sinc.toml declares no [[units]] entries.
	ErrNoUnits = errors.New("no [[units]] declared")
)

type manifestFile struct {
	Package struct {
		Name  string `toml:"name"`
		Entry string `toml:"entry"`
	} `toml:"package"`
	Units []struct {
		Path string `toml:"path"`
		Kind string `toml:"kind"`
	} `toml:"units"`
}

// Load parses path as a sinc.toml manifest.
func Load(path string) (Manifest, error) {
	var raw manifestFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("units") || len(raw.Units) == 0 {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrNoUnits)
	}

	m := Manifest{
		Name:  strings.TrimSpace(raw.Package.Name),
		Entry: strings.TrimSpace(raw.Package.Entry),
	}
	for _, u := range raw.Units {
		kind := UnitKind(strings.TrimSpace(u.Kind))
		if kind == "" {
			kind = kindFromExtension(u.Path)
		}
		if kind != UnitAssembly && kind != UnitObject {
			return Manifest{}, fmt.Errorf("%s: unit %q has unsupported kind %q", path, u.Path, u.Kind)
		}
		m.Units = append(m.Units, Unit{Path: strings.TrimSpace(u.Path), Kind: kind})
	}
	return m, nil
}

func kindFromExtension(path string) UnitKind {
	if strings.HasSuffix(path, ".sinc") {
		return UnitObject
	}
	return UnitAssembly
}

// FindManifest walks upward from startDir looking for sinc.toml, the
// same search pattern as the teacher's FindSurgeToml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "sinc.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// ResolveUnitPath resolves a unit's path relative to the manifest's own
// directory, matching how the teacher resolves module roots relative
// to the repository root rather than the process's working directory.
func ResolveUnitPath(manifestPath, unitPath string) string {
	if filepath.IsAbs(unitPath) {
		return unitPath
	}
	return filepath.Join(filepath.Dir(manifestPath), unitPath)
}
