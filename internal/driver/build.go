package driver

import (
	"context"
	"fmt"

	"sinc/internal/link"
	"sinc/internal/objfile"
	"sinc/internal/project"
)

// Build assembles every unit declared in manifest (in parallel, via
// AssembleAll) and links the results in manifest order, matching
// spec.md §4.4's linking-in-order semantics. Progress is reported on
// events if non-nil; the caller owns the channel and closes it once
// Build returns.
func Build(ctx context.Context, manifestPath string, manifest project.Manifest, wordSize uint8, base uint16, jobs int, cache *Cache, events chan<- Event) (link.Result, error) {
	results, err := AssembleAll(ctx, manifestPath, manifest.Units, wordSize, jobs, cache, events)
	if err != nil {
		return link.Result{}, err
	}

	emit(events, Event{Stage: StageLink, Status: StatusWorking})
	files := make([]objfile.File, len(results))
	for i, r := range results {
		files[i] = r.File
	}

	result, err := link.Link(files, base)
	if err != nil {
		emit(events, Event{Stage: StageLink, Status: StatusError, Err: err})
		return link.Result{}, fmt.Errorf("link: %w", err)
	}
	emit(events, Event{Stage: StageLink, Status: StatusDone})
	return result, nil
}
