package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the taskchat application
var rootCmd = &cobra.Command{
	Use:   "taskchat",
	Short: "Task management backend with MCP tools, HTTP API and chat agent",
	Long: `taskchat is a multi-user task management backend.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants (default)
  - An HTTP API server with JWT authentication and a chat endpoint`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "taskchat version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAPICmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())
}
