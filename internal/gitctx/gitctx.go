// Package gitctx reports uncommitted work below a directory, so a migration
// is not mixed into unrelated edits by accident.
package gitctx

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// ChangeContext captures a minimal view of the git state around a directory.
type ChangeContext struct {
	RepoRoot string `json:"repo_root"`
	Branch   string `json:"branch,omitempty"`
	GitSHA   string `json:"git_sha,omitempty"`
	// ModifiedFiles are repo-relative, slash-separated and sorted. Only paths
	// below the collected directory are listed.
	ModifiedFiles []string `json:"modified_files"`
}

// Dirty reports whether any file below the directory has staged, unstaged or
// untracked changes.
func (c *ChangeContext) Dirty() bool {
	return c != nil && len(c.ModifiedFiles) > 0
}

// Collect gathers change context for the repository containing target.
// It returns nil without error when target is not inside a repository.
func Collect(target string) (*ChangeContext, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", target, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		// bare repository
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, nil
		}
		return nil, err
	}
	ctx := &ChangeContext{RepoRoot: wt.Filesystem.Root()}

	// An unborn branch has no HEAD yet.
	if head, err := repo.Head(); err == nil {
		ctx.Branch = head.Name().Short()
		ctx.GitSHA = head.Hash().String()
	}

	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	prefix := ""
	if rel, err := filepath.Rel(ctx.RepoRoot, abs); err == nil && rel != "." {
		prefix = filepath.ToSlash(rel) + "/"
	}
	for path, s := range st {
		if s.Staging == git.Unmodified && s.Worktree == git.Unmodified {
			continue
		}
		path = filepath.ToSlash(path)
		if prefix != "" && !strings.HasPrefix(path, prefix) {
			continue
		}
		ctx.ModifiedFiles = append(ctx.ModifiedFiles, path)
	}
	sort.Strings(ctx.ModifiedFiles)
	return ctx, nil
}
