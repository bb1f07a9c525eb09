package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucasreid/stencil/internal/output"
	"github.com/lucasreid/stencil/internal/sandbox"
)

// ApplyCmd creates the 'apply' command that copies staged files into the
// project.
func ApplyCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Copy staged files into the project",
		Long: `Copies every staged file from .stencil/preview into the project and
clears the staging area. Refuses when staged files would overwrite
existing files with different content, unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			sb, err := sandbox.New(dir)
			if err != nil {
				return err
			}

			applied, err := sb.Apply(force)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				output.Info("Nothing staged")
				return nil
			}
			for _, p := range applied {
				output.Success(fmt.Sprintf("Applied %s", p))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files that conflict")

	return cmd
}
