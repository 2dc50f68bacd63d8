package diag

import "sort"

// Bag accumulates diagnostics across a single toolchain invocation, the
// way vovakirdan-surge's diag.Bag does for its own pipeline.
type Bag struct {
	items []Diagnostic
}

func NewBag() *Bag {
	return &Bag{}
}

func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int { return len(b.items) }

func (b *Bag) Items() []Diagnostic { return b.items }

// Sort orders diagnostics by file, then line, then severity descending,
// giving deterministic, most-important-first output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		return di.Severity > dj.Severity
	})
}
