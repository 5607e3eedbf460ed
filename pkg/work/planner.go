package work

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/catmigrate/pkg/category"
	"github.com/fulmenhq/catmigrate/pkg/ignore"
	"github.com/fulmenhq/catmigrate/pkg/logger"
)

// GroupSpec describes one subdirectory of the root. Exactly one of Kind or
// Classify is set.
type GroupSpec struct {
	Name     string
	Dir      string
	Kind     category.Kind
	Classify []category.Kind
}

// Ambiguous reports whether items in the group must be classified by content
func (g GroupSpec) Ambiguous() bool {
	return g.Kind == "" && len(g.Classify) > 0
}

// WorkItem represents a single file to be migrated
type WorkItem struct {
	ID       string          `json:"id"`
	Path     string          `json:"path"`
	Group    string          `json:"group"`
	Kind     category.Kind   `json:"kind,omitempty"`
	Classify []category.Kind `json:"classify,omitempty"`
	Size     int64           `json:"size"`
}

// WorkGroup is the discovery result for one group directory
type WorkGroup struct {
	Name        string   `json:"name"`
	Dir         string   `json:"dir"`
	Missing     bool     `json:"missing,omitempty"`
	WorkItemIDs []string `json:"work_item_ids"`
}

// Plan summarizes a discovery pass
type Plan struct {
	Command      string    `json:"command"`
	Timestamp    time.Time `json:"timestamp"`
	Root         string    `json:"root"`
	FileGlob     string    `json:"file_glob"`
	TotalFiles   int       `json:"total_files"`
	IgnoredFiles int       `json:"ignored_files"`
}

// WorkManifest represents the complete work plan
type WorkManifest struct {
	Plan      Plan        `json:"plan"`
	WorkItems []WorkItem  `json:"work_items"`
	Groups    []WorkGroup `json:"groups"`
}

// PlannerConfig configures the work planner
type PlannerConfig struct {
	Command  string
	Root     string
	Groups   []GroupSpec
	FileGlob string
	// MaxDepth is how many directory levels below each group directory are
	// searched; 0 means the group directory only.
	MaxDepth        int
	ExcludePatterns []string
	NoIgnore        bool
	Verbose         bool
}

// Planner handles work planning and manifest generation
type Planner struct {
	config        PlannerConfig
	ignoreMatcher *ignore.Matcher
}

// NewPlanner creates a new work planner
func NewPlanner(config PlannerConfig) *Planner {
	if config.FileGlob == "" {
		config.FileGlob = "*.ts"
	}
	if config.Root == "" {
		config.Root = "."
	}
	planner := &Planner{config: config}

	if config.NoIgnore {
		return planner
	}
	if matcher, err := ignore.NewMatcher(config.Root, config.ExcludePatterns...); err != nil {
		logger.Warn(fmt.Sprintf("Failed to initialize ignore matcher: %v", err))
	} else {
		planner.ignoreMatcher = matcher
	}
	return planner
}

// GenerateManifest discovers the files of every group in configured order
func (p *Planner) GenerateManifest() (*WorkManifest, error) {
	if !doublestar.ValidatePattern(p.config.FileGlob) {
		return nil, fmt.Errorf("invalid file glob %q", p.config.FileGlob)
	}
	logger.Debug("Starting work plan generation", logger.String("root", p.config.Root))

	manifest := &WorkManifest{
		Plan: Plan{
			Command:   p.config.Command,
			Timestamp: time.Now(),
			Root:      p.config.Root,
			FileGlob:  p.config.FileGlob,
		},
	}

	for _, g := range p.config.Groups {
		group := WorkGroup{Name: g.Name, Dir: g.Dir, WorkItemIDs: []string{}}
		files, ignored, err := p.discoverFiles(g)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Group directory not found, skipping", logger.String("group", g.Name), logger.String("dir", p.groupDir(g)))
			group.Missing = true
			manifest.Groups = append(manifest.Groups, group)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to discover files in %s: %w", g.Name, err)
		}
		manifest.Plan.IgnoredFiles += ignored

		for _, f := range files {
			item := WorkItem{
				ID:    fmt.Sprintf("%s_%d", g.Name, len(group.WorkItemIDs)),
				Path:  f.path,
				Group: g.Name,
				Kind:  g.Kind,
				Size:  f.size,
			}
			if g.Ambiguous() {
				item.Classify = append([]category.Kind(nil), g.Classify...)
			}
			group.WorkItemIDs = append(group.WorkItemIDs, item.ID)
			manifest.WorkItems = append(manifest.WorkItems, item)
		}
		manifest.Groups = append(manifest.Groups, group)
	}

	manifest.Plan.TotalFiles = len(manifest.WorkItems)
	logger.Debug(fmt.Sprintf("Generated work manifest with %d work items in %d groups", len(manifest.WorkItems), len(manifest.Groups)))
	return manifest, nil
}

func (p *Planner) groupDir(g GroupSpec) string {
	return filepath.Join(p.config.Root, g.Dir)
}

type discovered struct {
	path string
	size int64
}

// discoverFiles walks one group directory; WalkDir visits entries in lexical
// order so items come out sorted by path.
func (p *Planner) discoverFiles(g GroupSpec) ([]discovered, int, error) {
	base := p.groupDir(g)
	info, err := os.Stat(base)
	if err != nil {
		return nil, 0, err
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%s is not a directory", base)
	}

	var files []discovered
	ignored := 0
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == base {
				return nil
			}
			if p.ignoreMatcher.IsIgnoredDir(path) {
				if p.config.Verbose {
					logger.Debug(fmt.Sprintf("Skipping directory %s: matches ignore pattern", path))
				}
				return filepath.SkipDir
			}
			rel, err := filepath.Rel(base, path)
			if err != nil {
				return err
			}
			if depth := strings.Count(rel, string(filepath.Separator)) + 1; depth > p.config.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if ok, _ := doublestar.Match(p.config.FileGlob, d.Name()); !ok {
			return nil
		}
		if p.ignoreMatcher.IsIgnored(path) {
			ignored++
			if p.config.Verbose {
				logger.Debug(fmt.Sprintf("Skipping %s: matches ignore pattern", path))
			}
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, discovered{path: path, size: fi.Size()})
		return nil
	})
	return files, ignored, err
}
