// Command ctfd-admin is the command-line client for administering a CTFd
// instance through its REST API.
//
// Purpose:
//
//	Upload challenge files and manage users (create, bulk-add from CSV, list,
//	get, update, bulk-edit, delete) against one CTFd instance identified by
//	its base URL and an admin access token.
//
// Dependencies:
//   - internal/config: Configuration loading from flags, environment and config file
//   - internal/commands: Cobra command implementations
//   - internal/client/ctfd: CTFd REST API client
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/otherjamesbrown/ctfd-admin/internal/commands"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.Execute(ctx, versionString(), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func versionString() string {
	return version + " (commit " + gitCommit + ", built " + buildTime + ")"
}
