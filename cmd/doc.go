// Package cmd implements the command-line interface for taskchat.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the task management tools
//   - api: Start the HTTP API server (auth, tasks, chat)
//   - migrate: Apply pending database migrations
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
