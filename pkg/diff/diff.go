// Package diff renders unified diffs of pending rewrites using the
// sergi/go-diff line mode.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 3

type opKind byte

const (
	opEqual  opKind = ' '
	opDelete opKind = '-'
	opInsert opKind = '+'
)

type op struct {
	kind      opKind
	text      string
	oldBefore int
	newBefore int
}

// Unified returns a unified diff between oldText and newText labelled with
// path, or "" when they are equal.
func Unified(path, oldText, newText string, context int) string {
	if oldText == newText {
		return ""
	}
	if context < 0 {
		context = DefaultContext
	}

	ops := lineOps(oldText, newText)

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range hunks(ops, context) {
		writeHunk(&b, ops[h[0]:h[1]])
	}
	return b.String()
}

func lineOps(oldText, newText string) []op {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []op
	oldN, newN := 0, 0
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			o := op{text: line, oldBefore: oldN, newBefore: newN}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				o.kind = opEqual
				oldN++
				newN++
			case diffmatchpatch.DiffDelete:
				o.kind = opDelete
				oldN++
			case diffmatchpatch.DiffInsert:
				o.kind = opInsert
				newN++
			}
			ops = append(ops, o)
		}
	}
	return ops
}

// hunks returns [start, end) ranges of ops, merging changes whose context
// windows touch.
func hunks(ops []op, context int) [][2]int {
	var out [][2]int
	for i := 0; i < len(ops); i++ {
		if ops[i].kind == opEqual {
			continue
		}
		start := max(0, i-context)
		end := min(len(ops), i+context+1)
		if n := len(out); n > 0 && start <= out[n-1][1] {
			out[n-1][1] = end
		} else {
			out = append(out, [2]int{start, end})
		}
	}
	return out
}

func writeHunk(b *strings.Builder, ops []op) {
	oldCount, newCount := 0, 0
	for _, o := range ops {
		if o.kind != opInsert {
			oldCount++
		}
		if o.kind != opDelete {
			newCount++
		}
	}
	oldStart, newStart := ops[0].oldBefore, ops[0].newBefore
	if oldCount > 0 {
		oldStart++
	}
	if newCount > 0 {
		newStart++
	}

	fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	for _, o := range ops {
		b.WriteByte(byte(o.kind))
		b.WriteString(strings.TrimSuffix(o.text, "\n"))
		b.WriteByte('\n')
	}
}

func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
