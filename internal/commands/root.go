package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lucasreid/stencil"
	"github.com/lucasreid/stencil/internal/output"
	"github.com/lucasreid/stencil/internal/task"
)

// RootCmd creates the root command for the stencil CLI.
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "stencil",
		Short: "Template-driven code generation with staged review",
		Long: `Stencil turns task templates and key=value inputs into generated files.

Nothing touches your project directly: output lands in a staging area
(.stencil/preview) where you can inspect it, diff it against existing
files, and apply or discard it.

Typical flow:
  stencil generate python_function function_name=greet
  stencil review
  stencil apply`,
		Version: stencil.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}

// newRegistry returns the task registry for a project: built-in tasks plus
// any YAML files under .stencil/tasks.
func newRegistry(projectDir string) *task.Registry {
	return task.NewRegistry(filepath.Join(projectDir, ".stencil", "tasks"))
}
