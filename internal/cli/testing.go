package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// CLI provides a clean interface for running the workflow commands in
// tests. It manages a temp data directory and environment variables.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewCLI creates a new test CLI whose DATA_PATH is a temp directory.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	dir := t.TempDir()

	return &CLI{
		t:   t,
		Dir: dir,
		Env: map[string]string{
			"DATA_PATH": dir,
			// Keep the developer's real global config out of tests.
			"XDG_CONFIG_HOME": filepath.Join(dir, "xdg"),
		},
	}
}

// GenConfig runs gen_config and returns stdout, stderr, and exit code.
func (r *CLI) GenConfig(args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"gen_config"}, args...)
	code := Run(strings.NewReader(""), &outBuf, &errBuf, fullArgs, r.Env, GenConfigCmd)

	return outBuf.String(), errBuf.String(), code
}

// MustGenConfig runs gen_config and fails the test on a non-zero exit.
// Returns trimmed stdout.
func (r *CLI) MustGenConfig(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.GenConfig(args...)
	if code != 0 {
		r.t.Fatalf("gen_config %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// Gather runs gather_chords with the given stdin script.
func (r *CLI) Gather(stdin string, args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"gather_chords"}, args...)
	code := Run(strings.NewReader(stdin), &outBuf, &errBuf, fullArgs, r.Env, GatherCmd)

	return outBuf.String(), errBuf.String(), code
}

// DataFiles returns the names of files in the data directory, sorted.
func (r *CLI) DataFiles() []string {
	r.t.Helper()

	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		r.t.Fatalf("reading data dir: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	sort.Strings(names)

	return names
}

// DataFile returns the path of the unique data file whose name starts
// with prefix.
func (r *CLI) DataFile(prefix string) string {
	r.t.Helper()

	var matches []string

	for _, name := range r.DataFiles() {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}

	if len(matches) != 1 {
		r.t.Fatalf("want exactly one %s* file, got %v", prefix, matches)
	}

	return filepath.Join(r.Dir, matches[0])
}

// AssertContains fails the test if output does not contain want.
func AssertContains(t *testing.T, output, want string) {
	t.Helper()

	if !strings.Contains(output, want) {
		t.Errorf("output %q does not contain %q", output, want)
	}
}
