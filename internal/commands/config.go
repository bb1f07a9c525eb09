package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucasreid/stencil/internal/config"
	"github.com/lucasreid/stencil/internal/output"
)

// ConfigCmd creates the 'config' command with get/set/list subcommands.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change stencil settings",
		Long: `Settings live in .stencil/stencil.yml. Environment variables with a
STENCIL_ prefix (e.g. STENCIL_API_KEY) override the file at load time.`,
	}

	cmd.AddCommand(configListCmd(), configGetCmd(), configSetCmd())
	return cmd
}

func configListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := manager()
			if err != nil {
				return err
			}
			for _, key := range config.Keys() {
				val, err := mgr.Get(key)
				if err != nil {
					return err
				}
				fmt.Printf("%-16s %s\n", key, val)
			}
			return nil
		},
	}
}

func configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Show one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := manager()
			if err != nil {
				return err
			}
			val, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Println(val)
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := manager()
			if err != nil {
				return err
			}
			if err := mgr.Set(args[0], args[1]); err != nil {
				return err
			}
			output.Success(fmt.Sprintf("Set %s", args[0]))
			return nil
		},
	}
}

func manager() (*config.Manager, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.NewManager(dir), nil
}
