/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package rewrite

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/catmigrate/pkg/category"
)

// DefaultPriority is the classification order for the resources group.
// Consumable is checked first, so a file carrying both tags is consumable.
var DefaultPriority = []category.Kind{category.Consumable, category.Resource}

// Classifier decides the kind of a file whose directory does not.
type Classifier struct {
	table    category.Table
	priority []category.Kind
}

// NewClassifier returns a classifier that checks kinds in priority order.
// Every kind must belong to table.
func NewClassifier(table category.Table, priority []category.Kind) (*Classifier, error) {
	if len(priority) == 0 {
		return nil, fmt.Errorf("classifier needs at least one kind")
	}
	p := make([]category.Kind, 0, len(priority))
	for _, k := range priority {
		if !table.Has(k) {
			return nil, fmt.Errorf("unknown kind %q in classification order", k)
		}
		p = append(p, k)
	}
	return &Classifier{table: table, priority: p}, nil
}

// Priority returns the classification order.
func (c *Classifier) Priority() []category.Kind {
	out := make([]category.Kind, len(c.priority))
	copy(out, c.priority)
	return out
}

// Classify returns the first kind in priority order whose literal tag or
// symbolic constant occurs in text. ok is false when none does.
func (c *Classifier) Classify(text string) (kind category.Kind, ok bool) {
	for _, k := range c.priority {
		if strings.Contains(text, category.Literal(k)) || strings.Contains(text, c.table.Symbol(k)) {
			return k, true
		}
	}
	return "", false
}
