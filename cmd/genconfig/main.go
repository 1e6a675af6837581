// Package main provides gen_config, which builds a session vocabulary
// and emits the keyboard config and trial decoder files.
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

	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env, cli.GenConfigCmd)

	os.Exit(exitCode)
}
