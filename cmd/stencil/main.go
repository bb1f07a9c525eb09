package main

import (
	"os"

	"github.com/lucasreid/stencil/internal/commands"
)

func main() {
	rootCmd := commands.RootCmd()

	rootCmd.AddCommand(commands.InitCmd())
	rootCmd.AddCommand(commands.TasksCmd())
	rootCmd.AddCommand(commands.GenerateCmd())
	rootCmd.AddCommand(commands.ReviewCmd())
	rootCmd.AddCommand(commands.ApplyCmd())
	rootCmd.AddCommand(commands.DiscardCmd())
	rootCmd.AddCommand(commands.StatusCmd())
	rootCmd.AddCommand(commands.ConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
