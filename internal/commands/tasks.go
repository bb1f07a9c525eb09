package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasreid/stencil/internal/output"
)

// TasksCmd creates the 'tasks' command for listing and inspecting task
// templates.
func TasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List available task templates",
		Long: `Lists built-in tasks plus any custom tasks under .stencil/tasks.
When a custom task shares a name with a built-in one, the built-in wins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			reg := newRegistry(dir)
			templates := reg.List()
			if len(templates) == 0 {
				output.Info("No tasks available")
				return nil
			}

			seen := make(map[string]bool)
			for _, t := range templates {
				if seen[t.Name] {
					continue
				}
				seen[t.Name] = true
				fmt.Printf("  %-20s %s (v%s)\n", t.Name, t.Description, t.Version)
			}
			return nil
		},
	}

	cmd.AddCommand(tasksShowCmd())
	return cmd
}

func tasksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [task-name]",
		Short: "Show a task's inputs and outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			reg := newRegistry(dir)
			t, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("task %q not found (run 'stencil tasks' to list)", args[0])
			}

			fmt.Printf("%s (v%s)\n%s\n\nInputs:\n", t.Name, t.Version, t.Description)
			for _, in := range t.Inputs {
				req := "optional"
				if in.Required {
					req = "required"
				}
				line := fmt.Sprintf("  %-16s %s, %s", in.Name, in.Type, req)
				if in.Default != nil {
					line += fmt.Sprintf(", default=%v", in.Default)
				}
				if in.Pattern != "" {
					line += fmt.Sprintf(", pattern=%s", in.Pattern)
				}
				fmt.Println(line)
				if in.Description != "" {
					fmt.Printf("  %-16s %s\n", "", in.Description)
				}
			}

			fmt.Printf("\nOutput:\n  type=%s pattern=%s", t.Output.Type, t.Output.Pattern)
			if t.Output.Location != "" {
				fmt.Printf(" location=%s", t.Output.Location)
			}
			fmt.Println()

			if len(t.Validation) > 0 {
				fmt.Printf("\nValidation:\n  %s\n", strings.Join(t.Validation, "\n  "))
			}
			return nil
		},
	}
}
