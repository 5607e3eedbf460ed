/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/catmigrate/pkg/buildinfo"
	"github.com/fulmenhq/catmigrate/pkg/exitcode"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show catmigrate version",
		Long:  `Show the catmigrate binary version. Use --extended for build and runtime details.`,
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show detailed build information")
	cmd.Flags().String("format", "text", "Output format (text|json)")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()
	info := buildinfo.Get()

	switch format {
	case "json":
		jsonData, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprintln(out, string(jsonData))
	case "text":
		fmt.Fprintf(out, "catmigrate %s\n", info.Version)
		if extended {
			if info.ModuleVersion != "" {
				fmt.Fprintf(out, "Module: %s\n", info.ModuleVersion)
			}
			commit := info.Commit
			if commit == "" {
				commit = "unknown"
			}
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
			fmt.Fprintf(out, "Platform: %s/%s\n", info.Platform, info.Arch)
		}
	default:
		return exitcode.Wrap(exitcode.ConfigError, fmt.Errorf("unsupported format: %s", format))
	}
	return nil
}
