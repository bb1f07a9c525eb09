package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucasreid/stencil/internal/output"
	"github.com/lucasreid/stencil/internal/sandbox"
)

// DiscardCmd creates the 'discard' command for clearing the staging area.
func DiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard [path]",
		Short: "Drop staged files without applying them",
		Long: `With no argument, clears the entire staging area.
With a path, drops just that staged file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			sb, err := sandbox.New(dir)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				removed, err := sb.Remove(args[0])
				if err != nil {
					return err
				}
				if !removed {
					output.Info(fmt.Sprintf("%s is not staged", args[0]))
					return nil
				}
				output.Success(fmt.Sprintf("Dropped %s", args[0]))
				return nil
			}

			st, err := sb.Status()
			if err != nil {
				return err
			}
			if err := sb.Clear(); err != nil {
				return err
			}
			output.Success(fmt.Sprintf("Discarded %d staged file(s)", st.Pending))
			return nil
		},
	}
}
