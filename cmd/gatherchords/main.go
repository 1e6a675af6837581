// Package main provides gather_chords, the interactive chord
// data-collection workflow.
package main

import (
	"os"
	"strings"

	"chordpref/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env, cli.GatherCmd)

	os.Exit(exitCode)
}
