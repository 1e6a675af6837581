package vocab_test

import (
	"math/rand/v2"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chordpref/internal/code"
	"chordpref/internal/hid"
	"chordpref/internal/keyboard"
	"chordpref/internal/vocab"
)

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

// newMiniDecoder binds {A}->"ab", {B}->"c", {C}->"b" over the hand-built
// tree.
func newMiniDecoder(t *testing.T) (*vocab.Decoder, *keyboard.Spec) {
	t.Helper()

	spec := miniSpec(t)

	v, err := vocab.New([]vocab.Entry{
		{Chord: miniChord(t, spec, 1), Output: "ab"},
		{Chord: miniChord(t, spec, 2), Output: "c"},
		{Chord: miniChord(t, spec, 3), Output: "b"},
	})
	require.NoError(t, err)

	return vocab.NewDecoder(miniTable(t), miniTree(t), v), spec
}

func TestParseTrialTwoChords(t *testing.T) {
	t.Parallel()

	dec, spec := newMiniDecoder(t)

	chords, err := dec.ParseTrial("abc")
	require.NoError(t, err)
	require.Len(t, chords, 2)
	require.True(t, chords[0].Equal(miniChord(t, spec, 1)))
	require.True(t, chords[1].Equal(miniChord(t, spec, 2)))
}

func TestParseTrialEmpty(t *testing.T) {
	t.Parallel()

	dec, _ := newMiniDecoder(t)

	chords, err := dec.ParseTrial("")
	require.NoError(t, err)
	require.Empty(t, chords)
}

func TestParseTrialTruncated(t *testing.T) {
	t.Parallel()

	dec, _ := newMiniDecoder(t)

	// 'a' starts the two-character word "ab" and the stream ends
	// mid-edge.
	_, err := dec.ParseTrial("a")
	require.ErrorIs(t, err, code.ErrTruncatedInput)

	_, err = dec.ParseTrial("abca")
	require.ErrorIs(t, err, code.ErrTruncatedInput)
}

func TestParseTrialUnmappableChar(t *testing.T) {
	t.Parallel()

	dec, _ := newMiniDecoder(t)

	_, err := dec.ParseTrial("ab!")
	require.ErrorIs(t, err, hid.ErrUnmappableChar)
}

func TestParseTrialUnknownWord(t *testing.T) {
	t.Parallel()

	dec, _ := newMiniDecoder(t)

	// "A" walks to an unbound leaf: device and config disagree.
	_, err := dec.ParseTrial("A")
	require.ErrorIs(t, err, vocab.ErrUnknownWord)
}

// TestParseTrialRecoversAnySequence is the decoding law: for any
// sequence over the vocabulary, decoding the concatenated outputs
// recovers the sequence exactly.
func TestParseTrialRecoversAnySequence(t *testing.T) {
	t.Parallel()

	dec, _ := newMiniDecoder(t)
	entries := dec.Vocab().Entries()
	rng := rand.New(rand.NewPCG(21, 22))

	for round := 0; round < 50; round++ {
		n := rng.IntN(12)
		seq := make([]vocab.Entry, n)

		var typed strings.Builder

		for i := range seq {
			seq[i] = entries[rng.IntN(len(entries))]
			typed.WriteString(seq[i].Output)
		}

		chords, err := dec.ParseTrial(typed.String())
		require.NoError(t, err, "round %d input %q", round, typed.String())
		require.Len(t, chords, n)

		for i := range seq {
			require.True(t, chords[i].Equal(seq[i].Chord), "round %d pos %d", round, i)
		}
	}
}

// TestParseTrialBuiltVocabulary runs the same law over a full built
// code bound by the exponential sampler, multi-character words included.
func TestParseTrialBuiltVocabulary(t *testing.T) {
	t.Parallel()

	spec := miniSpec(t)
	table := miniTable(t)

	built, err := code.BuildWithCaps(table.Size(), 25, 12)
	require.NoError(t, err)

	sampler, err := vocab.NewExponentialSampler(rand.New(rand.NewPCG(31, 32)), spec, 0.5)
	require.NoError(t, err)

	v, err := vocab.Bind(built, table, sampler)
	require.NoError(t, err)

	dec := vocab.NewDecoder(table, built.Tree, v)
	entries := v.Entries()
	rng := rand.New(rand.NewPCG(33, 34))

	for round := 0; round < 20; round++ {
		n := 1 + rng.IntN(8)

		var typed strings.Builder

		seq := make([]vocab.Entry, n)
		for i := range seq {
			seq[i] = entries[rng.IntN(len(entries))]
			typed.WriteString(seq[i].Output)
		}

		chords, err := dec.ParseTrial(typed.String())
		require.NoError(t, err)
		require.Len(t, chords, n)

		for i := range seq {
			require.True(t, chords[i].Equal(seq[i].Chord))
		}
	}
}
