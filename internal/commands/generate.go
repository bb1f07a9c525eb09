package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lucasreid/stencil/internal/config"
	"github.com/lucasreid/stencil/internal/execx"
	"github.com/lucasreid/stencil/internal/generate"
	"github.com/lucasreid/stencil/internal/llm"
	"github.com/lucasreid/stencil/internal/output"
	"github.com/lucasreid/stencil/internal/sandbox"
)

// GenerateCmd creates the 'generate' command: render a task into the
// staging area.
func GenerateCmd() *cobra.Command {
	var enhance bool
	var validate bool

	cmd := &cobra.Command{
		Use:   "generate [task-name] [key=value...]",
		Short: "Generate files from a task template into staging",
		Long: `Renders a task template with the given inputs and stages the result
under .stencil/preview. Nothing touches the project until 'stencil apply'.

Examples:
  stencil generate python_function function_name=greet return_value=hi
  stencil generate go_package package_name=store --enhance
  stencil generate python_function function_name=greet --validate`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			reg := newRegistry(dir)
			tmpl, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("task %q not found (run 'stencil tasks' to list)", args[0])
			}

			inputs, err := parseInputs(args[1:])
			if err != nil {
				return err
			}

			cfg, err := config.NewManager(dir).Load()
			if err != nil {
				return err
			}

			var provider llm.Provider
			if enhance {
				provider, err = llm.New(cfg.Provider, llm.Config{
					APIKey: cfg.APIKey,
					Model:  cfg.Model,
				})
				if err != nil {
					return err
				}
			}

			gen := generate.New(provider)
			result, err := gen.Generate(cmd.Context(), tmpl, inputs, generate.Options{Enhance: enhance})
			if err != nil {
				return err
			}

			sb, err := sandbox.New(dir)
			if err != nil {
				return err
			}

			paths := make([]string, 0, len(result.Files))
			for p := range result.Files {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				if err := sb.Write(p, result.Files[p]); err != nil {
					return err
				}
				output.Success(fmt.Sprintf("Staged %s", p))
			}

			output.Verbose(fmt.Sprintf("Generation %s (task %s v%s)", result.Metadata.ID, result.Metadata.Template, result.Metadata.Version))

			if validate {
				if err := runValidation(cmd, sb, result); err != nil {
					return err
				}
			} else if len(result.Commands) > 0 {
				output.Info("Validation commands (run with --validate):")
				for _, c := range result.Commands {
					output.Step(c)
				}
			}

			output.Info("Review with 'stencil review', apply with 'stencil apply'")
			return nil
		},
	}

	cmd.Flags().BoolVar(&enhance, "enhance", false, "Rewrite generated content through the configured language model")
	cmd.Flags().BoolVar(&validate, "validate", false, "Run the task's validation commands against the staged files")

	return cmd
}

// runValidation executes the task's validation commands inside the preview
// directory, so staged files are checked before they reach the project.
func runValidation(cmd *cobra.Command, sb *sandbox.Sandbox, result *generate.Result) error {
	if len(result.Commands) == 0 {
		output.Info("Task defines no validation commands")
		return nil
	}
	ex := execx.New(&execx.Options{
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		Dir:    sb.PreviewDir(),
	})
	spinner := output.StdoutIsTerminal()
	for _, line := range result.Commands {
		output.Verbose(fmt.Sprintf("Running %s", line))
		if spinner {
			// The spinner renders its own pass/fail line.
			if err := ex.RunLineWithSpinner(cmd.Context(), line); err != nil {
				return fmt.Errorf("validation %q: %w", line, err)
			}
			continue
		}
		if err := ex.RunLine(cmd.Context(), line); err != nil {
			return fmt.Errorf("validation %q: %w", line, err)
		}
		output.Success(line)
	}
	return nil
}
