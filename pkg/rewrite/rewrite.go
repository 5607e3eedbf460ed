/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package rewrite migrates item-definition source text from string-literal
// category tags to symbolic category constants.
//
// Two independent, idempotent steps run over the same buffer:
//
//  1. import augmentation: the namespace symbol (e.g. CATEGORY) is added as the
//     first name of the import clause that pulls from the constants module.
//  2. literal replacement: "category": "<tag>" becomes "category": NS.TAG.
//
// Text that already references any symbolic constant is returned untouched.
package rewrite

import (
	"regexp"
	"strings"

	"github.com/fulmenhq/catmigrate/pkg/category"
)

// DefaultImportPath is the constants module as referenced from
// data/items/definitions/<group>/<file>.ts.
const DefaultImportPath = "../../../constants/item-constants"

// Outcome is the result of a single rewrite step.
type Outcome int

const (
	// NotApplicable means the step's anchor pattern was not found.
	NotApplicable Outcome = iota
	// Applied means the step modified the text.
	Applied
	// AlreadyDone means the text was already in the migrated shape.
	AlreadyDone
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case AlreadyDone:
		return "already-done"
	case NotApplicable:
		return "not-applicable"
	default:
		return "unknown"
	}
}

// MarshalText lets outcomes serialize by name in reports.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is the outcome of Rewrite.
type Result struct {
	Text    string
	Changed bool
	Import  Outcome
	Literal Outcome
}

// Migrated reports whether the idempotence guard short-circuited the rewrite.
func (r Result) Migrated() bool {
	return r.Import == AlreadyDone && r.Literal == AlreadyDone && !r.Changed
}

// Rewriter applies the category migration to file text. It is safe to reuse
// and holds no mutable state.
type Rewriter struct {
	table      category.Table
	importRe   *regexp.Regexp
	importPath string
}

// New returns a Rewriter for table whose import step targets importPath.
func New(table category.Table, importPath string) *Rewriter {
	if importPath == "" {
		importPath = DefaultImportPath
	}
	pattern := `(import\s*\{)([^}]+)(\}\s*from\s*['"]` + regexp.QuoteMeta(importPath) + `['"];?)`
	return &Rewriter{
		table:      table,
		importRe:   regexp.MustCompile(pattern),
		importPath: importPath,
	}
}

// Table returns the kind table the rewriter was built with.
func (r *Rewriter) Table() category.Table { return r.table }

// ImportPath returns the constants module path matched by the import step.
func (r *Rewriter) ImportPath() string { return r.importPath }

// Rewrite migrates text. Only literals whose tag is in candidates are
// replaced; candidates outside the table are ignored.
func (r *Rewriter) Rewrite(text string, candidates ...category.Kind) Result {
	if r.IsMigrated(text) {
		return Result{Text: text, Import: AlreadyDone, Literal: AlreadyDone}
	}

	out, imp := r.augmentImport(text)
	out, lit := r.replaceLiterals(out, candidates)

	return Result{
		Text:    out,
		Changed: out != text,
		Import:  imp,
		Literal: lit,
	}
}

// IsMigrated reports whether text already references the symbolic form of
// any kind in the table.
func (r *Rewriter) IsMigrated(text string) bool {
	for _, e := range r.table.Entries() {
		if strings.Contains(text, e.Symbol) {
			return true
		}
	}
	return false
}

func (r *Rewriter) augmentImport(text string) (string, Outcome) {
	matches := r.importRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, NotApplicable
	}

	ns := r.table.Namespace()
	outcome := AlreadyDone
	var b strings.Builder
	last := 0
	for _, m := range matches {
		prefix, names, suffix := text[m[2]:m[3]], text[m[4]:m[5]], text[m[6]:m[7]]

		list := splitNames(names)
		if containsName(list, ns) {
			continue
		}
		list = append([]string{ns}, list...)

		b.WriteString(text[last:m[0]])
		b.WriteString(prefix)
		b.WriteString(" ")
		b.WriteString(strings.Join(list, ", "))
		b.WriteString(" ")
		b.WriteString(suffix)
		last = m[1]
		outcome = Applied
	}
	if outcome != Applied {
		return text, outcome
	}
	b.WriteString(text[last:])
	return b.String(), Applied
}

func (r *Rewriter) replaceLiterals(text string, candidates []category.Kind) (string, Outcome) {
	re := r.literalPattern(candidates)
	if re == nil {
		return text, NotApplicable
	}

	replaced := false
	out := re.ReplaceAllStringFunc(text, func(m string) string {
		tag := re.FindStringSubmatch(m)[1]
		replaced = true
		return `"category": ` + r.table.Symbol(category.Kind(tag))
	})
	if !replaced {
		return text, NotApplicable
	}
	return out, Applied
}

// literalPattern matches "category": "<tag>" for the eligible tags, or
// returns nil when none of the candidates are known.
func (r *Rewriter) literalPattern(candidates []category.Kind) *regexp.Regexp {
	var alts []string
	seen := make(map[category.Kind]bool, len(candidates))
	for _, k := range candidates {
		if seen[k] || !r.table.Has(k) {
			continue
		}
		seen[k] = true
		alts = append(alts, regexp.QuoteMeta(string(k)))
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`"category": "(` + strings.Join(alts, "|") + `)"`)
}

// splitNames splits an import name list on commas. Empty entries left by a
// trailing comma are dropped.
func splitNames(names string) []string {
	parts := strings.Split(names, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsName(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}
