// Package main is the entry point for the invoicekit command-line tool.
package main

import "gitlab.com/yelinaung/invoicekit/internal/cli"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Execute(cli.BuildInfo{Version: version, Commit: commit, Date: date})
}
