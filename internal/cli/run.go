package cli

import (
	"io"
	"math/rand/v2"
)

// Run is the entry point shared by the workflow binaries. Each binary
// hosts exactly one command; build constructs it with the process
// environment and stdin captured.
func Run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string, build func(env map[string]string, stdin io.Reader) *Command) int {
	cmd := build(env, stdin)
	o := NewIO(out, errOut)

	return cmd.Run(o, args[1:])
}

// newRNG builds the session RNG. Seed zero (the default) draws a fresh
// random state; a fixed seed reproduces sampling for tests.
func newRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return rand.New(rand.NewPCG(seed, seed))
}
