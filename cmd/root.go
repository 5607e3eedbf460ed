/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/fulmenhq/catmigrate/internal/ops"
	"github.com/fulmenhq/catmigrate/pkg/buildinfo"
	"github.com/fulmenhq/catmigrate/pkg/exitcode"
	"github.com/fulmenhq/catmigrate/pkg/logger"
	"github.com/spf13/cobra"
)

// newRootCommand creates a fresh root command instance.
// Tests build isolated command trees from it without shared flag state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catmigrate",
		Short: "Migrate item category string literals to namespace constants",
		Long: `Catmigrate rewrites item definition files so that category string literals
("category": "consumable") become references to a shared constants namespace
(CATEGORY.CONSUMABLE), adding the namespace import where it is missing.

Examples:
   catmigrate migrate --dry-run --diff    # Preview changes
   catmigrate migrate --check             # Exit 3 if any file needs migration
   catmigrate migrate be/data/items/definitions
   catmigrate classify resources/Amber.ts`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("catmigrate {{.Version}}\n")

	// Grouped help for the root; subcommands keep plain usage.
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if c.HasParent() {
			c.Println(strings.TrimSpace(c.Long))
			c.Println()
			c.Print(c.UsageString())
			return
		}

		reg := ops.GetRegistry()
		c.Println(c.Long)
		c.Println()
		for _, g := range ops.Groups() {
			cmds := reg.GetCommandsByGroup(g)
			if len(cmds) == 0 {
				continue
			}
			c.Printf("%s:\n", g.Title())
			for _, r := range cmds {
				c.Printf("  %-12s %s\n", r.Name, r.Description)
			}
			c.Println()
		}
		c.Println("Flags:")
		c.Print(c.LocalFlags().FlagUsages())
	})

	return cmd
}

type subcommand struct {
	group ops.CommandGroup
	build func() *cobra.Command
}

var subcommands = []subcommand{
	{ops.GroupMigrate, newMigrateCommand},
	{ops.GroupInspect, newClassifyCommand},
	{ops.GroupSupport, newVersionCommand},
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	reg := ops.GetRegistry()
	for _, s := range subcommands {
		sub := s.build()
		cmd.AddCommand(sub)
		if _, exists := reg.GetCommand(sub.Name()); !exists {
			if err := ops.RegisterCommand(s.group, sub); err != nil {
				logger.Debug("Command registration skipped", logger.String("command", sub.Name()), logger.Err(err))
			}
		}
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command and exits with the code carried by the error.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	code := exitcode.Of(err)
	if code == exitcode.PendingChanges {
		logger.Warn(err.Error())
	} else {
		logger.Error("Command execution failed", logger.Err(err), logger.String("exit", exitcode.String(code)))
	}
	os.Exit(code)
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	// Only migrate defines these; lookups on other commands return false.
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	check, _ := cmd.Flags().GetBool("check")

	logLevel, ok := logger.ParseLevel(logLevelStr)

	if noColor {
		color.NoColor = true
	}

	config := logger.Config{
		Level:     logLevel,
		UseColor:  !noColor && !color.NoColor,
		JSON:      jsonLogs,
		Component: "catmigrate",
		DryRun:    dryRun || check,
	}

	if err := logger.Initialize(config); err != nil {
		if _, writeErr := os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n"); writeErr != nil {
			_ = writeErr
		}
		os.Exit(exitcode.ConfigError)
	}
	if !ok {
		logger.Warn("Unknown log level, using info", logger.String("log-level", logLevelStr))
	}
}
