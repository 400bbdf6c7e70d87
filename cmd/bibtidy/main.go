// Package main provides the entry point for the bibtidy CLI tool.
package main

import "github.com/bibtidy/bibtidy/cmd/bibtidy/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
