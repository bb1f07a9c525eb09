package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucasreid/stencil/internal/output"
	"github.com/lucasreid/stencil/internal/review"
	"github.com/lucasreid/stencil/internal/sandbox"
)

// ReviewCmd creates the 'review' command for inspecting staged files.
func ReviewCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review staged files before applying them",
		Long: `Lists staged files and shows diffs for any that conflict with
existing project files. With --interactive, steps through each staged
file with a keep/drop/diff menu.`,
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

			pending, err := sb.SortedPending()
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				output.Info("Nothing staged")
				return nil
			}

			conflicts, err := sb.Conflicts()
			if err != nil {
				return err
			}
			byPath := make(map[string]*sandbox.FileConflict, len(conflicts))
			for i := range conflicts {
				byPath[conflicts[i].Path] = &conflicts[i]
			}

			if interactive {
				return reviewInteractive(sb, pending, byPath)
			}

			for _, f := range pending {
				if c, ok := byPath[f.RelPath]; ok {
					output.Warn(fmt.Sprintf("%s (conflicts with existing file)", f.RelPath))
					fmt.Print(c.Diff())
					output.Rule()
				} else {
					output.Success(fmt.Sprintf("%s (new file, %d bytes)", f.RelPath, len(f.Content)))
				}
			}
			if len(conflicts) > 0 {
				output.Info(fmt.Sprintf("%d conflict(s); resolve with 'stencil review --interactive' or 'stencil apply --force'", len(conflicts)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Step through each staged file with a keep/drop menu")

	return cmd
}

func reviewInteractive(sb *sandbox.Sandbox, pending []sandbox.PendingFile, conflicts map[string]*sandbox.FileConflict) error {
	for _, f := range pending {
		decision, err := review.ReviewFile(review.File{
			Pending:  f,
			Conflict: conflicts[f.RelPath],
		})
		if err != nil {
			return err
		}
		switch decision {
		case review.Keep:
			output.Verbose(fmt.Sprintf("Keeping %s", f.RelPath))
		case review.Drop:
			removed, err := sb.Remove(f.RelPath)
			if err != nil {
				return err
			}
			if removed {
				output.Info(fmt.Sprintf("Dropped %s", f.RelPath))
			}
		case review.Cancel:
			output.Info("Review cancelled; staging unchanged from here on")
			return nil
		}
	}
	output.Success("Review complete; apply with 'stencil apply'")
	return nil
}
