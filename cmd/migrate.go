/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/fulmenhq/catmigrate/internal/gitctx"
	"github.com/fulmenhq/catmigrate/pkg/category"
	"github.com/fulmenhq/catmigrate/pkg/config"
	"github.com/fulmenhq/catmigrate/pkg/diff"
	"github.com/fulmenhq/catmigrate/pkg/exitcode"
	"github.com/fulmenhq/catmigrate/pkg/logger"
	"github.com/fulmenhq/catmigrate/pkg/migrate"
	"github.com/fulmenhq/catmigrate/pkg/report"
	"github.com/fulmenhq/catmigrate/pkg/rewrite"
	"github.com/fulmenhq/catmigrate/pkg/work"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [root]",
		Short: "Rewrite category literals to namespace constants",
		Long: `Migrate walks the item definition groups below the root directory and, for
every file whose kind is known or can be classified, adds the category
namespace to the constants import and replaces "category": "<tag>" with the
matching constant. Files that are already migrated are left untouched.

The root comes from the positional argument, --root, CATMIGRATE_ROOT, or the
config file, in that order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runMigrate,
	}
	setupMigrateCommandFlags(cmd)
	return cmd
}

func setupMigrateCommandFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("root", ".", "Item definitions directory")
	f.String("config", "", "Config file (default .catmigrate.yaml in the working or home directory)")
	f.String("file-glob", "*.ts", "Glob matched against file names in each group")
	f.Int("max-depth", 0, "Directory levels searched below each group (0 = group directory only)")
	f.String("import-path", rewrite.DefaultImportPath, "Module path of the constants import to augment")
	f.String("namespace", category.DefaultNamespace, "Constants namespace inserted into the import")
	f.StringSlice("exclude", nil, "Additional gitignore-style patterns to skip")
	f.Bool("no-ignore", false, "Do not honor .gitignore or .catmigrateignore")
	f.Bool("dry-run", false, "Report what would change without writing files")
	f.Bool("check", false, "Like --dry-run, but exit 3 when any file needs migration")
	f.Bool("diff", false, "Print a unified diff for every pending change (implies --dry-run)")
	f.Int("diff-context", diff.DefaultContext, "Context lines around each diff hunk")
	f.String("format", string(report.FormatText), "Summary format (text|table|json|yaml|toml)")
	f.Bool("require-clean", false, "Refuse to write when the root has uncommitted git changes")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	check, _ := cmd.Flags().GetBool("check")
	showDiff, _ := cmd.Flags().GetBool("diff")
	diffContext, _ := cmd.Flags().GetInt("diff-context")
	formatStr, _ := cmd.Flags().GetString("format")
	requireClean, _ := cmd.Flags().GetBool("require-clean")

	format, err := report.ParseFormat(formatStr)
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}

	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile, Flags: cmd.Flags()})
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}
	if len(args) == 1 {
		cfg.Root = args[0]
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return fmt.Errorf("root %s: %w", cfg.Root, err)
	}
	if !info.IsDir() {
		return exitcode.Wrap(exitcode.ConfigError, fmt.Errorf("root %s is not a directory", cfg.Root))
	}

	table, err := cfg.Table()
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}
	rw := rewrite.New(table, cfg.ImportPath)

	manifest, err := work.NewPlanner(work.PlannerConfig{
		Command:         "migrate",
		Root:            cfg.Root,
		Groups:          groupSpecs(cfg),
		FileGlob:        cfg.FileGlob,
		MaxDepth:        cfg.MaxDepth,
		ExcludePatterns: cfg.Exclude,
		NoIgnore:        cfg.NoIgnore,
	}).GenerateManifest()
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Scanning %d files", manifest.Plan.TotalFiles),
		logger.String("root", cfg.Root), logger.Int("ignored", manifest.Plan.IgnoredFiles))

	preview := dryRun || check || showDiff
	if !preview {
		if err := checkWorktree(cfg.Root, requireClean); err != nil {
			return err
		}
	}
	runner := migrate.NewRunner(rw, migrate.Options{
		Root:        cfg.Root,
		DryRun:      preview,
		Diff:        showDiff,
		DiffContext: diffContext,
	})
	summary, err := runner.Run(manifest)
	if err != nil {
		return err
	}

	if err := report.Render(cmd.OutOrStdout(), summary, report.Options{Format: format}); err != nil {
		return err
	}

	if check && summary.Total > 0 {
		return exitcode.Wrap(exitcode.PendingChanges, fmt.Errorf("%d files need migration", summary.Total))
	}
	return nil
}

func groupSpecs(cfg *config.Config) []work.GroupSpec {
	specs := make([]work.GroupSpec, 0, len(cfg.Groups))
	for _, g := range cfg.Groups {
		spec := work.GroupSpec{Name: g.Name, Dir: g.Dir}
		if g.Ambiguous() {
			spec.Classify = g.ClassifyKinds()
		} else {
			spec.Kind = category.Kind(g.Kind)
		}
		specs = append(specs, spec)
	}
	return specs
}

// checkWorktree warns about uncommitted changes below root, or fails when
// requireClean is set.
func checkWorktree(root string, requireClean bool) error {
	ctx, err := gitctx.Collect(root)
	if err != nil {
		logger.Debug("Git status unavailable", logger.Err(err))
		return nil
	}
	if !ctx.Dirty() {
		return nil
	}
	if requireClean {
		return fmt.Errorf("%d uncommitted changes under %s (commit or stash them, or drop --require-clean)", len(ctx.ModifiedFiles), root)
	}
	logger.Warn("Uncommitted changes under root; migration edits will be mixed in",
		logger.Int("files", len(ctx.ModifiedFiles)), logger.String("branch", ctx.Branch))
	return nil
}
