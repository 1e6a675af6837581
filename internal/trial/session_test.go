package trial_test

import (
	"io"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chordpref/internal/code"
	"chordpref/internal/hid"
	"chordpref/internal/keyboard"
	"chordpref/internal/trial"
	"chordpref/internal/vocab"
)

// scriptReader feeds a canned sequence of input lines.
type scriptReader struct {
	lines []string
	pos   int
}

func (s *scriptReader) ReadLine() (string, error) {
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}

	line := s.lines[s.pos]
	s.pos++

	return line, nil
}

// sessionFixture is a two-chord vocabulary over a three-letter keyboard:
// chord {A} emits "a", chord {B} emits "b".
type sessionFixture struct {
	spec    *keyboard.Spec
	decoder *vocab.Decoder
	chordA  keyboard.Chord
	chordB  keyboard.Chord
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	spec, err := keyboard.NewSpec("mini", []keyboard.Key{
		{Label: "T", Thumb: true},
		{Label: "A"},
		{Label: "B"},
		{Label: "C"},
	}, nil)
	require.NoError(t, err)

	table, err := hid.NewTable(
		[]hid.Range{{Lo: 0x04, Hi: 0x07}},
		hid.Legend{0x04: {'a', 'A'}, 0x05: {'b', 'B'}, 0x06: {'c', 'C'}},
	)
	require.NoError(t, err)

	// Single-character words only: the root row fills and halts the
	// build exactly at the alphabet size.
	built, err := code.BuildWithCaps(table.Size(), table.Size(), 100)
	require.NoError(t, err)

	chordA, err := spec.ChordOf(1)
	require.NoError(t, err)

	chordB, err := spec.ChordOf(2)
	require.NoError(t, err)

	v, err := vocab.New([]vocab.Entry{
		{Chord: chordA, Output: "a"},
		{Chord: chordB, Output: "b"},
	})
	require.NoError(t, err)

	return &sessionFixture{
		spec:    spec,
		decoder: vocab.NewDecoder(table, built.Tree, v),
		chordA:  chordA,
		chordB:  chordB,
	}
}

func runSession(t *testing.T, fx *sessionFixture, lines ...string) (*trial.TrialResults, string, error) {
	t.Helper()

	var out strings.Builder

	sess, err := trial.NewSession(fx.decoder, rand.New(rand.NewPCG(3, 9)), &scriptReader{lines: lines}, &out, trial.SessionOptions{
		NRepetitions: 2,
		Clock:        time.Now,
	})
	require.NoError(t, err)

	results, runErr := sess.Run()

	return results, out.String(), runErr
}

func TestSessionAcceptThenImpossibleThenQuit(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture(t)

	results, out, err := runSession(t, fx,
		"GO", "abab", "Y",
		"IMP",
		"QUIT",
	)
	require.NoError(t, err)
	require.Len(t, results.Data, 2)

	first := results.Data[0]
	require.False(t, first.Input.Impossible)
	require.Equal(t, 2, first.NRepetitions)

	want := []keyboard.Chord{fx.chordA, fx.chordB, fx.chordA, fx.chordB}
	require.Len(t, first.Input.Chords, len(want))

	for i, c := range want {
		require.True(t, first.Input.Chords[i].Equal(c), "chord %d", i)
	}

	second := results.Data[1]
	require.True(t, second.Input.Impossible)

	for _, snippet := range []string{
		"you will be shown two chords",
		"type GO when you're ready to continue",
		"accept this trial (Y), or try again (N)?",
		"expected input:",
		"quitting...",
	} {
		require.Contains(t, out, snippet)
	}
}

func TestSessionRejectKeepsPair(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture(t)

	results, out, err := runSession(t, fx,
		"GO", "ab", "N",
		"QUIT",
	)
	require.NoError(t, err)
	require.Empty(t, results.Data)

	// After N the loop returns to the command prompt for the same pair.
	require.GreaterOrEqual(t, strings.Count(out, "type GO when you're ready"), 2)
}

func TestSessionSkipRecordsNothing(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture(t)

	results, _, err := runSession(t, fx, "SKIP", "QUIT")
	require.NoError(t, err)
	require.Empty(t, results.Data)
}

func TestSessionDecodeErrorReturnsToPrompt(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture(t)

	results, out, err := runSession(t, fx,
		"GO", "zz",
		"QUIT",
	)
	require.NoError(t, err)
	require.Empty(t, results.Data)
	require.Contains(t, out, "error parsing input:")
	require.Contains(t, out, "perhaps you entered text from the wrong device?")
}

func TestSessionUnknownWordError(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture(t)

	// "c" reaches a leaf but is not bound in the vocabulary.
	results, out, err := runSession(t, fx,
		"GO", "c",
		"QUIT",
	)
	require.NoError(t, err)
	require.Empty(t, results.Data)
	require.Contains(t, out, "error parsing input:")
}

func TestSessionUnknownCommandReprints(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture(t)

	results, out, err := runSession(t, fx, "hello", "QUIT")
	require.NoError(t, err)
	require.Empty(t, results.Data)
	require.GreaterOrEqual(t, strings.Count(out, "type GO when you're ready"), 2)
}

func TestSessionYorNReprompt(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture(t)

	results, out, err := runSession(t, fx,
		"GO", "ab", "maybe", "Y",
		"QUIT",
	)
	require.NoError(t, err)
	require.Len(t, results.Data, 1)
	require.Contains(t, out, "please type Y or N.")
}

func TestSessionEndOfInputBehavesLikeQuit(t *testing.T) {
	t.Parallel()

	fx := newSessionFixture(t)

	results, _, err := runSession(t, fx, "GO", "ab", "Y")
	require.NoError(t, err)
	require.Len(t, results.Data, 1)
}

func TestSessionEmptyVocabulary(t *testing.T) {
	t.Parallel()

	empty, err := vocab.New(nil)
	require.NoError(t, err)

	_, sessErr := trial.NewSession(
		vocab.NewDecoder(nil, nil, empty),
		rand.New(rand.NewPCG(1, 1)),
		&scriptReader{},
		io.Discard,
		trial.SessionOptions{},
	)
	require.Error(t, sessErr)
}
