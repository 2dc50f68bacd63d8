// Package driver assembles and links a sinc.toml project: it fans
// translation units out across goroutines with golang.org/x/sync/errgroup
// (grounded on the teacher's internal/driver/parallel.go), memoizing
// assembled object files on disk with internal/driver's Cache
// (grounded on the teacher's dcache.go). Assembly is a pure per-file
// transform (spec.md §5: "compilation is a pipeline of pure
// transformations"), so concurrent assembly across units never races.
package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"sinc/internal/assemble"
	"sinc/internal/objfile"
	"sinc/internal/project"
)

// UnitResult pairs one manifest unit with its assembled or loaded
// object file.
type UnitResult struct {
	Unit project.Unit
	File objfile.File
}

// AssembleAll resolves every unit in units against manifestPath's
// directory, assembling .sinasm sources and decoding .sinc object
// files, fanning the work out across jobs goroutines (GOMAXPROCS if
// jobs <= 0). Results preserve the manifest's declared order, which
// internal/link.Link then uses as link order. Progress is reported on
// events if non-nil; the caller owns the channel and closes it.
func AssembleAll(ctx context.Context, manifestPath string, units []project.Unit, wordSize uint8, jobs int, cache *Cache, events chan<- Event) ([]UnitResult, error) {
	if len(units) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]UnitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			emit(events, Event{Unit: u.Path, Stage: StageAssemble, Status: StatusWorking})
			path := project.ResolveUnitPath(manifestPath, u.Path)
			file, err := loadUnit(path, u.Kind, wordSize, cache)
			if err != nil {
				emit(events, Event{Unit: u.Path, Stage: StageAssemble, Status: StatusError, Err: err})
				return fmt.Errorf("%s: %w", u.Path, err)
			}
			emit(events, Event{Unit: u.Path, Stage: StageAssemble, Status: StatusDone})
			results[i] = UnitResult{Unit: u, File: file}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func loadUnit(path string, kind project.UnitKind, wordSize uint8, cache *Cache) (objfile.File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return objfile.File{}, err
	}

	if kind == project.UnitObject {
		return objfile.Decode(source)
	}

	key := contentKeyOf(source)
	if cache != nil {
		if payload, ok, err := cache.Get(key); err == nil && ok {
			return payload.File, nil
		}
	}

	file, err := assemble.Assemble(string(source), wordSize)
	if err != nil {
		return objfile.File{}, err
	}
	if cache != nil {
		_ = cache.Put(key, DiskPayload{File: file})
	}
	return file, nil
}
