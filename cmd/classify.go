package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulmenhq/catmigrate/pkg/category"
	"github.com/fulmenhq/catmigrate/pkg/config"
	"github.com/fulmenhq/catmigrate/pkg/exitcode"
	"github.com/fulmenhq/catmigrate/pkg/logger"
	"github.com/fulmenhq/catmigrate/pkg/rewrite"
	"github.com/spf13/cobra"
)

const unclassified = "unclassified"

func newClassifyCommand() *cobra.Command {
	defaultOrder := make([]string, len(rewrite.DefaultPriority))
	for i, k := range rewrite.DefaultPriority {
		defaultOrder[i] = string(k)
	}

	cmd := &cobra.Command{
		Use:   "classify <file>...",
		Short: "Print the category kind detected in each file",
		Long: `Classify reports the kind a file would be migrated as when it lives in a
mixed group. Kinds are checked in --order; the first whose string literal or
namespace constant appears in the file wins.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassify,
	}
	cmd.Flags().StringSlice("order", defaultOrder, "Kinds to check, highest priority first")
	cmd.Flags().String("config", "", "Config file providing the kind table and namespace")
	cmd.Flags().String("format", "text", "Output format (text|json)")
	return cmd
}

type classification struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	order, _ := cmd.Flags().GetStringSlice("order")
	configFile, _ := cmd.Flags().GetString("config")
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return exitcode.Wrap(exitcode.ConfigError, fmt.Errorf("unsupported format: %s", format))
	}

	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile})
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}
	table, err := cfg.Table()
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}

	priority := make([]category.Kind, len(order))
	for i, o := range order {
		priority[i] = category.Kind(o)
	}
	classifier, err := rewrite.NewClassifier(table, priority)
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}

	results := make([]classification, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path) // #nosec G304 - paths are explicit CLI arguments
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		res := classification{Path: path, Kind: unclassified}
		if kind, ok := classifier.Classify(string(data)); ok {
			res.Kind = string(kind)
		}
		logger.Debug("Classified", logger.String("file", path), logger.String("kind", res.Kind))
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(out, "%s: %s\n", r.Path, r.Kind); err != nil {
			return err
		}
	}
	return nil
}
