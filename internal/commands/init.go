package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lucasreid/stencil/internal/config"
	"github.com/lucasreid/stencil/internal/output"
	"github.com/lucasreid/stencil/internal/sandbox"
)

// InitCmd creates the 'init' command that sets up .stencil in the current
// directory.
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Set up stencil in the current directory",
		Long: `Creates the .stencil directory with:
• stencil.yml (default configuration)
• preview/ (staging area for generated files)
• tasks/ (drop custom task templates here)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			if _, err := sandbox.New(dir); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Join(dir, ".stencil", "tasks"), 0o755); err != nil {
				return err
			}

			mgr := config.NewManager(dir)
			if _, statErr := os.Stat(mgr.Path()); os.IsNotExist(statErr) {
				if err := mgr.Save(config.Default()); err != nil {
					return err
				}
				output.Success(fmt.Sprintf("Wrote %s", mgr.Path()))
			} else {
				output.Info(fmt.Sprintf("Config already exists at %s", mgr.Path()))
			}

			output.Success("Stencil initialized")
			output.Info("Next steps:")
			output.Step("stencil tasks                  # see available tasks")
			output.Step("stencil generate <task> k=v    # generate into staging")
			return nil
		},
	}
}
