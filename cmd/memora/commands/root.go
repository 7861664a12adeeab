// Package commands implements the CLI commands for the memora cache tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.memora.dev/memora/internal/adapters/detector"
	"go.memora.dev/memora/internal/app"
	"go.memora.dev/memora/internal/build"
)

// Application is the subset of internal/app.App the CLI depends on.
type Application interface {
	Lookup(ctx context.Context, name string, opts app.Options) (app.Outcome, error)
	Get(ctx context.Context, name string, opts app.Options) (app.Outcome, error)
	Insert(ctx context.Context, name string, opts app.Options) error
}

// OutputLogger is implemented by internal/adapters/logger.Logger; the CLI
// uses it to apply TTY-driven auto-detection and the --output override.
type OutputLogger interface {
	SetJSON(enable bool)
}

// CLI wires an Application to a cobra command tree.
type CLI struct {
	app      Application
	rootCmd  *cobra.Command
	exitCode int
}

// New builds the command tree rooted at "memora". log may be nil, in which
// case output-mode detection is skipped (used by command-level unit tests
// that don't care about log formatting).
func New(a Application, log OutputLogger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "memora",
		Short:         "A Git-content-addressed build artifact cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit, build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"
	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("directory", "C", "", "Run as if started in this directory instead of the current one")
	rootCmd.PersistentFlags().Bool("ignore-uncommitted-changes", false, "Bypass the worktree-cleanliness pre-check on an artifact's outputs")
	rootCmd.PersistentFlags().String("output", "auto", "Log output mode: auto, pretty, or json")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if log == nil {
			return nil
		}
		outputFlag, _ := cmd.Flags().GetString("output")
		mode := detector.ResolveMode(detector.DetectEnvironment(), outputFlag)
		log.SetJSON(mode == detector.ModeJSON)
		return nil
	}

	c := &CLI{app: a, rootCmd: rootCmd}
	rootCmd.AddCommand(c.newLookupCmd())
	rootCmd.AddCommand(c.newGetCmd())
	rootCmd.AddCommand(c.newInsertCmd())
	rootCmd.AddCommand(c.newVersionCmd())
	return c
}

// Execute runs the command tree against the args set via SetArgs.
func (c *CLI) Execute(ctx context.Context) error { c.rootCmd.SetContext(ctx); return c.rootCmd.Execute() }

// SetArgs sets the arguments the command tree parses on Execute.
func (c *CLI) SetArgs(args []string) { c.rootCmd.SetArgs(args) }

// SetOutput redirects the command tree's stdout/stderr.
func (c *CLI) SetOutput(out, err io.Writer) { c.rootCmd.SetOut(out); c.rootCmd.SetErr(err) }

// ExitCode reports the process exit code implied by the most recent
// Execute call: 0 on a hit or successful insert, 1 on a cache miss.
// Errors returned from Execute itself map to exit code 2, decided by
// the caller in cmd/memora/main.go.
func (c *CLI) ExitCode() int { return c.exitCode }

func (c *CLI) options(cmd *cobra.Command) app.Options {
	dir, _ := cmd.Flags().GetString("directory")
	ignore, _ := cmd.Flags().GetBool("ignore-uncommitted-changes")
	return app.Options{RepoRoot: dir, IgnoreUncommittedChanges: ignore}
}
