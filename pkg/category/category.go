/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package category holds the closed set of item category kinds and their
// mapping to symbolic constants such as CATEGORY.CONSUMABLE.
package category

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is a category tag as it appears in item definitions, e.g. "consumable".
type Kind string

const (
	Consumable Kind = "consumable"
	Equipment  Kind = "equipment"
	Resource   Kind = "resource"
)

// DefaultNamespace is the enumeration that owns the category constants.
const DefaultNamespace = "CATEGORY"

var (
	ErrEmptyNamespace = errors.New("namespace must not be empty")
	ErrNoKinds        = errors.New("at least one kind is required")
)

// Entry describes one kind in a Table.
type Entry struct {
	Kind   Kind
	Label  string
	Symbol string
}

// Table is an immutable kind -> symbol mapping. The zero value is empty; build
// one with NewTable or Default.
type Table struct {
	namespace string
	entries   []Entry
	index     map[Kind]int
}

// Spec is the input form of a table entry. An empty Label falls back to the
// title-cased tag.
type Spec struct {
	Tag   string
	Label string
}

// NewTable builds a table for namespace. Symbols are derived as
// NAMESPACE.TAG_UPPER; order of specs is preserved.
func NewTable(namespace string, specs ...Spec) (Table, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return Table{}, ErrEmptyNamespace
	}
	if len(specs) == 0 {
		return Table{}, ErrNoKinds
	}

	upper := cases.Upper(language.Und)
	title := cases.Title(language.Und)

	t := Table{
		namespace: namespace,
		entries:   make([]Entry, 0, len(specs)),
		index:     make(map[Kind]int, len(specs)),
	}
	for _, s := range specs {
		tag := strings.TrimSpace(s.Tag)
		if tag == "" {
			return Table{}, errors.New("kind tag must not be empty")
		}
		k := Kind(tag)
		if _, dup := t.index[k]; dup {
			return Table{}, fmt.Errorf("duplicate kind %q", tag)
		}
		label := s.Label
		if label == "" {
			label = title.String(tag)
		}
		t.index[k] = len(t.entries)
		t.entries = append(t.entries, Entry{
			Kind:   k,
			Label:  label,
			Symbol: namespace + "." + upper.String(tag),
		})
	}
	return t, nil
}

// Default returns the consumable/equipment/resource table under CATEGORY.
func Default() Table {
	t, err := NewTable(DefaultNamespace,
		Spec{Tag: string(Consumable), Label: "Consumables"},
		Spec{Tag: string(Equipment), Label: "Equipment"},
		Spec{Tag: string(Resource), Label: "Resources"},
	)
	if err != nil {
		// static input
		panic(err)
	}
	return t
}

// Namespace returns the enumeration name, e.g. "CATEGORY".
func (t Table) Namespace() string { return t.namespace }

// Entries returns a copy of the table entries in declaration order.
func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Kinds returns the kinds in declaration order.
func (t Table) Kinds() []Kind {
	out := make([]Kind, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Kind
	}
	return out
}

// Lookup returns the entry for k.
func (t Table) Lookup(k Kind) (Entry, bool) {
	i, ok := t.index[k]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Has reports whether k belongs to the table.
func (t Table) Has(k Kind) bool {
	_, ok := t.index[k]
	return ok
}

// Symbol returns the symbolic constant for k, or "" if k is unknown.
func (t Table) Symbol(k Kind) string {
	e, ok := t.Lookup(k)
	if !ok {
		return ""
	}
	return e.Symbol
}

// Literal returns the quoted key/value form of k as it appears before
// migration: "category": "<tag>".
func Literal(k Kind) string {
	return `"category": "` + string(k) + `"`
}
