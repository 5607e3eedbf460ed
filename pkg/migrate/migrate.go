// Package migrate drives the category migration over a discovered work
// manifest: one file at a time, read fully, rewritten in memory, written back
// fully.
package migrate

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/catmigrate/pkg/category"
	"github.com/fulmenhq/catmigrate/pkg/diff"
	"github.com/fulmenhq/catmigrate/pkg/logger"
	"github.com/fulmenhq/catmigrate/pkg/rewrite"
	"github.com/fulmenhq/catmigrate/pkg/safeio"
	"github.com/fulmenhq/catmigrate/pkg/work"
)

// Status is the per-file outcome of a run.
type Status string

const (
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
	StatusMigrated  Status = "migrated"
	StatusSkipped   Status = "skipped"
)

// FileResult records what happened to one file.
type FileResult struct {
	Path    string          `json:"path" yaml:"path" toml:"path"`
	Group   string          `json:"group" yaml:"group" toml:"group"`
	Kind    category.Kind   `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
	Status  Status          `json:"status" yaml:"status" toml:"status"`
	Import  rewrite.Outcome `json:"import" yaml:"import" toml:"import"`
	Literal rewrite.Outcome `json:"literal" yaml:"literal" toml:"literal"`
	Bytes   int64           `json:"bytes" yaml:"bytes" toml:"bytes"`
	Diff    string          `json:"diff,omitempty" yaml:"diff,omitempty" toml:"diff,omitempty"`
}

// KindCount is the number of changed files of one kind.
type KindCount struct {
	Kind  category.Kind `json:"kind" yaml:"kind" toml:"kind"`
	Label string        `json:"label" yaml:"label" toml:"label"`
	Count int           `json:"count" yaml:"count" toml:"count"`
}

// Summary aggregates a run. Total counts changed files only; files that were
// skipped, already migrated, or left unchanged are tallied separately.
type Summary struct {
	Root         string       `json:"root" yaml:"root" toml:"root"`
	DryRun       bool         `json:"dry_run" yaml:"dry_run" toml:"dry_run"`
	Total        int          `json:"total" yaml:"total" toml:"total"`
	Kinds        []KindCount  `json:"kinds" yaml:"kinds" toml:"kinds"`
	Unchanged    int          `json:"unchanged" yaml:"unchanged" toml:"unchanged"`
	Migrated     int          `json:"migrated" yaml:"migrated" toml:"migrated"`
	Skipped      int          `json:"skipped" yaml:"skipped" toml:"skipped"`
	BytesScanned int64        `json:"bytes_scanned" yaml:"bytes_scanned" toml:"bytes_scanned"`
	Files        []FileResult `json:"files" yaml:"files" toml:"files"`
}

// Count returns the number of changed files of kind k.
func (s *Summary) Count(k category.Kind) int {
	for _, kc := range s.Kinds {
		if kc.Kind == k {
			return kc.Count
		}
	}
	return 0
}

func (s *Summary) add(k category.Kind) {
	for i := range s.Kinds {
		if s.Kinds[i].Kind == k {
			s.Kinds[i].Count++
			s.Total++
			return
		}
	}
}

// Options controls a run.
type Options struct {
	// Root bounds every read; files outside it are refused.
	Root string
	// DryRun computes results without writing any file.
	DryRun bool
	// Diff attaches a unified diff to every changed file result.
	Diff        bool
	DiffContext int
}

// Runner applies a Rewriter to every item of a manifest, sequentially.
type Runner struct {
	rewriter    *rewrite.Rewriter
	opts        Options
	classifiers map[string]*rewrite.Classifier
}

// NewRunner returns a runner for rw.
func NewRunner(rw *rewrite.Rewriter, opts Options) *Runner {
	if opts.Root == "" {
		opts.Root = "."
	}
	return &Runner{
		rewriter:    rw,
		opts:        opts,
		classifiers: make(map[string]*rewrite.Classifier),
	}
}

// Run processes the manifest in order. The first read or write failure stops
// the run; the partial summary is returned with the error.
func (r *Runner) Run(manifest *work.WorkManifest) (*Summary, error) {
	table := r.rewriter.Table()
	summary := &Summary{Root: r.opts.Root, DryRun: r.opts.DryRun}
	for _, e := range table.Entries() {
		summary.Kinds = append(summary.Kinds, KindCount{Kind: e.Kind, Label: e.Label})
	}

	for _, item := range manifest.WorkItems {
		res, err := r.processItem(item)
		if err != nil {
			return summary, err
		}
		summary.BytesScanned += res.Bytes
		switch res.Status {
		case StatusChanged:
			summary.add(res.Kind)
		case StatusUnchanged:
			summary.Unchanged++
		case StatusMigrated:
			summary.Migrated++
		case StatusSkipped:
			summary.Skipped++
		}
		summary.Files = append(summary.Files, res)
	}
	return summary, nil
}

func (r *Runner) processItem(item work.WorkItem) (FileResult, error) {
	res := FileResult{Path: item.Path, Group: item.Group, Kind: item.Kind}

	data, err := safeio.ReadFileContained(r.opts.Root, item.Path)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", item.Path, err)
	}
	text := string(data)
	res.Bytes = int64(len(data))

	if res.Kind == "" {
		kind, ok, err := r.classify(item, text)
		if err != nil {
			return res, err
		}
		if !ok {
			logger.Debug("Skipping unclassified file", logger.String("file", item.Path), logger.String("group", item.Group))
			res.Status = StatusSkipped
			return res, nil
		}
		res.Kind = kind
	}

	out := r.rewriter.Rewrite(text, res.Kind)
	res.Import, res.Literal = out.Import, out.Literal

	switch {
	case out.Migrated():
		res.Status = StatusMigrated
		logger.Debug("Already migrated", logger.String("file", item.Path))
		return res, nil
	case !out.Changed:
		res.Status = StatusUnchanged
		logger.Debug("Nothing to rewrite", logger.String("file", item.Path), logger.String("kind", string(res.Kind)))
		return res, nil
	}

	res.Status = StatusChanged
	if r.opts.Diff {
		res.Diff = diff.Unified(item.Path, text, out.Text, r.opts.DiffContext)
	}

	if r.opts.DryRun {
		logger.Info("Would update", logger.String("file", item.Path), logger.String("kind", string(res.Kind)))
		return res, nil
	}
	if err := safeio.WriteFilePreservePerms(item.Path, []byte(out.Text)); err != nil {
		return res, fmt.Errorf("write %s: %w", item.Path, err)
	}
	logger.Info("Updated", logger.String("file", item.Path), logger.String("kind", string(res.Kind)),
		logger.String("import", out.Import.String()), logger.String("literal", out.Literal.String()))
	return res, nil
}

func (r *Runner) classify(item work.WorkItem, text string) (category.Kind, bool, error) {
	if len(item.Classify) == 0 {
		return "", false, nil
	}

	parts := make([]string, len(item.Classify))
	for i, k := range item.Classify {
		parts[i] = string(k)
	}
	key := strings.Join(parts, ",")

	c, ok := r.classifiers[key]
	if !ok {
		var err error
		c, err = rewrite.NewClassifier(r.rewriter.Table(), item.Classify)
		if err != nil {
			return "", false, fmt.Errorf("group %s: %w", item.Group, err)
		}
		r.classifiers[key] = c
	}

	kind, found := c.Classify(text)
	return kind, found, nil
}
