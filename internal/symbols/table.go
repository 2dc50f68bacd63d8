package symbols

import "fmt"

// Error is returned by Table operations; it always carries the source
// line number that triggered it, when known.
type Error struct {
	Message string
	Line    int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
	}
	return e.Message
}

// Table is an ordered sequence of symbols, exactly the representation
// spec.md §9 recommends: a linear scan is cheap enough at this scale, and
// it makes the "deepest scope or global" lookup rule trivial to state
// correctly.
type Table struct {
	symbols []*Symbol
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{}
}

// ExistsInScope reports whether a symbol with this exact
// (name, scopeName, scopeLevel) triple is already present. Insert uses
// this (not IsInSymbolTable) to detect collisions, matching
// SymbolTable::exists_in_scope in the original implementation.
func (t *Table) ExistsInScope(name, scopeName string, scopeLevel int) bool {
	for _, s := range t.symbols {
		if s.Name == name && s.ScopeName == scopeName && s.ScopeLevel == scopeLevel {
			return true
		}
	}
	return false
}

// Insert adds sym to the table. It is an error to insert a symbol whose
// exact (name, scope_name, scope_level) triple already exists.
func (t *Table) Insert(sym Symbol, line int) error {
	if t.ExistsInScope(sym.Name, sym.ScopeName, sym.ScopeLevel) {
		return &Error{Message: fmt.Sprintf("'%s' already in symbol table", sym.Name), Line: line}
	}
	cp := sym
	t.symbols = append(t.symbols, &cp)
	return nil
}

// IsInSymbolTable reports whether a symbol with this name is visible
// from scopeName: either declared directly in scopeName, or declared in
// the global scope at level 0.
func (t *Table) IsInSymbolTable(name, scopeName string) bool {
	for _, s := range t.symbols {
		if s.Name == name && (s.ScopeName == scopeName || (s.ScopeName == GlobalScope && s.ScopeLevel == 0)) {
			return true
		}
	}
	return false
}

// Lookup finds the symbol most recently declared for the given name that
// is visible from scopeName: it considers only symbols declared in
// scopeName itself or in the global scope at level 0, and of those
// returns the one with the highest ScopeLevel (deepest scope wins).
//
// This mirrors SymbolTable::lookup in the original implementation,
// including its perhaps-surprising behavior when a name exists ONLY in a
// scope other than scopeName or global: that first match is still
// returned (spec.md's "Symbol table" section: "Lookup ... returns the
// deepest scope_level match whose scope_name is either the requested
// scope or global at level 0"). The original always seeds its search
// result with the first name match it finds, then only overrides it with
// a same-scope-or-global candidate of strictly greater level; we
// reproduce that exactly.
func (t *Table) Lookup(name, scopeName string) (*Symbol, error) {
	var found *Symbol
	for _, s := range t.symbols {
		if s.Name != name {
			continue
		}
		if found == nil {
			found = s
			continue
		}
		if s.ScopeName == scopeName || (s.ScopeName == GlobalScope && s.ScopeLevel == 0) {
			if s.ScopeLevel > found.ScopeLevel {
				found = s
			}
		}
	}
	if found == nil {
		return nil, &Error{Message: fmt.Sprintf("cannot find '%s' in symbol table", name)}
	}
	return found, nil
}

// Remove deletes every symbol matching (name, scopeName, scopeLevel).
// Used when leaving a block to drop symbols local to that block
// (spec.md §4.1 "Scope discipline").
func (t *Table) Remove(name, scopeName string, scopeLevel int) {
	out := t.symbols[:0]
	for _, s := range t.symbols {
		if s.Name == name && s.ScopeName == scopeName && s.ScopeLevel == scopeLevel {
			continue
		}
		out = append(out, s)
	}
	t.symbols = out
}

// RemoveScope removes every symbol declared at exactly
// (scopeName, scopeLevel) — used wholesale when a block ends, since the
// generator does not track individual names declared within it.
func (t *Table) RemoveScope(scopeName string, scopeLevel int) {
	out := t.symbols[:0]
	for _, s := range t.symbols {
		if s.ScopeName == scopeName && s.ScopeLevel == scopeLevel {
			continue
		}
		out = append(out, s)
	}
	t.symbols = out
}
