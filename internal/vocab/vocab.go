// Package vocab binds the prefix code's words to sampled chords and
// decodes trial input back into chord sequences.
package vocab

import (
	"errors"
	"fmt"

	"chordpref/internal/code"
	"chordpref/internal/hid"
	"chordpref/internal/keyboard"
)

var (
	ErrDuplicateChord  = errors.New("duplicate chord in vocabulary")
	ErrDuplicateOutput = errors.New("duplicate output string in vocabulary")
	ErrInvalidChord    = errors.New("invalid chord in vocabulary")
	ErrUnknownWord     = errors.New("code word not bound in vocabulary")
)

// bindAttemptFactor bounds duplicate rejection during binding: the
// sampler may repeat chords, but a pool that cannot yield enough distinct
// chords must fail instead of spinning.
const bindAttemptFactor = 1000

// Entry is one binding of the session vocabulary.
type Entry struct {
	Chord  keyboard.Chord
	Output string
}

// Vocabulary is the session's bijection between chords and the strings
// the keyboard emits for them. It is immutable after construction.
type Vocabulary struct {
	entries  []Entry
	byChord  map[keyboard.Chord]string
	byOutput map[string]keyboard.Chord
}

// New validates entries (distinct valid chords, distinct outputs) and
// builds the lookup maps.
func New(entries []Entry) (*Vocabulary, error) {
	v := &Vocabulary{
		entries:  append([]Entry(nil), entries...),
		byChord:  make(map[keyboard.Chord]string, len(entries)),
		byOutput: make(map[string]keyboard.Chord, len(entries)),
	}

	for _, e := range v.entries {
		if !e.Chord.IsValid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidChord, e.Chord.Label())
		}

		if _, dup := v.byChord[e.Chord]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateChord, e.Chord.Label())
		}

		if _, dup := v.byOutput[e.Output]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateOutput, e.Output)
		}

		v.byChord[e.Chord] = e.Output
		v.byOutput[e.Output] = e.Chord
	}

	return v, nil
}

// Len returns the number of bindings.
func (v *Vocabulary) Len() int { return len(v.entries) }

// Entries returns the bindings in emission order.
func (v *Vocabulary) Entries() []Entry {
	return append([]Entry(nil), v.entries...)
}

// Chords returns the bound chords in emission order.
func (v *Vocabulary) Chords() []keyboard.Chord {
	chords := make([]keyboard.Chord, len(v.entries))
	for i, e := range v.entries {
		chords[i] = e.Chord
	}

	return chords
}

// ChordOutput looks up the string a chord emits.
func (v *Vocabulary) ChordOutput(c keyboard.Chord) (string, bool) {
	s, ok := v.byChord[c]
	return s, ok
}

// OutputChord looks up the chord bound to an output string.
func (v *Vocabulary) OutputChord(s string) (keyboard.Chord, bool) {
	c, ok := v.byOutput[s]
	return c, ok
}

// Bindings returns the vocabulary in the form the config emitter takes.
func (v *Vocabulary) Bindings() []keyboard.Binding {
	bs := make([]keyboard.Binding, len(v.entries))
	for i, e := range v.entries {
		bs[i] = keyboard.Binding{Chord: e.Chord, Output: e.Output}
	}

	return bs
}

// Bind pairs the built code's words with chords drawn from the sampler.
// Duplicate chords are rejected and redrawn; the pairing follows the
// builder's emission order, so it is deterministic given the RNG seed.
func Bind(c *code.Code, table *hid.Table, sampler Sampler) (*Vocabulary, error) {
	outputs := make([]string, len(c.Words))

	for i, w := range c.Words {
		s, err := table.WordString(w)
		if err != nil {
			return nil, err
		}

		outputs[i] = s
	}

	seen := make(map[keyboard.Chord]bool, len(outputs))
	chords := make([]keyboard.Chord, 0, len(outputs))
	attempts := 0

	for len(chords) < len(outputs) {
		attempts++
		if attempts > bindAttemptFactor*len(outputs) {
			return nil, fmt.Errorf("%w: %d of %d after %d draws", ErrSamplerStarved, len(chords), len(outputs), attempts)
		}

		ch := sampler.SampleChord()
		if seen[ch] {
			continue
		}

		seen[ch] = true
		chords = append(chords, ch)
	}

	entries := make([]Entry, len(outputs))
	for i := range outputs {
		entries[i] = Entry{Chord: chords[i], Output: outputs[i]}
	}

	return New(entries)
}
