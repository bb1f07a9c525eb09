package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucasreid/stencil/internal/output"
	"github.com/lucasreid/stencil/internal/sandbox"
)

// StatusCmd creates the 'status' command summarizing the staging area.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what is staged and whether it conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			sb, err := sandbox.New(dir)
			if err != nil {
				return err
			}

			st, err := sb.Status()
			if err != nil {
				return err
			}

			if st.Pending == 0 {
				output.Info("Nothing staged")
				return nil
			}

			fmt.Printf("Staged:    %d file(s), %d bytes\n", st.Pending, st.TotalBytes)
			fmt.Printf("Conflicts: %d\n", st.Conflicts)
			fmt.Printf("Preview:   %s\n", st.PreviewDir)

			if st.Conflicts > 0 {
				output.Warn("Run 'stencil review' to inspect conflicts")
			}
			return nil
		},
	}
}
