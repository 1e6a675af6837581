package vocab

import (
	"fmt"

	"chordpref/internal/code"
	"chordpref/internal/hid"
	"chordpref/internal/keyboard"
)

// Decoder turns the raw string a trial produced back into the sequence of
// chords that was pressed: rune -> character index -> greedy tree walk ->
// vocabulary lookup.
type Decoder struct {
	table *hid.Table
	tree  *code.Node
	vocab *Vocabulary
}

// NewDecoder builds a decoder over a session's table, tree and
// vocabulary. All three are read-only from here on.
func NewDecoder(table *hid.Table, tree *code.Node, v *Vocabulary) *Decoder {
	return &Decoder{table: table, tree: tree, vocab: v}
}

// Vocab returns the decoder's vocabulary.
func (d *Decoder) Vocab() *Vocabulary { return d.vocab }

// Tree returns the decoder's prefix tree.
func (d *Decoder) Tree() *code.Node { return d.tree }

// ParseTrial decodes a typed trial string into chords in press order.
// A word that walks to a leaf but is not bound in the vocabulary means
// the typing device and the emitted config disagree; that is
// ErrUnknownWord, not a user typo.
func (d *Decoder) ParseTrial(s string) ([]keyboard.Chord, error) {
	idxs := make([]int, 0, len(s))

	for _, r := range s {
		idx, err := d.table.RuneToIdx(r)
		if err != nil {
			return nil, err
		}

		idxs = append(idxs, idx)
	}

	words, err := code.Tokenize(d.tree, idxs)
	if err != nil {
		return nil, err
	}

	chords := make([]keyboard.Chord, 0, len(words))

	for _, w := range words {
		out, err := d.table.WordString(w)
		if err != nil {
			return nil, err
		}

		ch, ok := d.vocab.OutputChord(out)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWord, out)
		}

		chords = append(chords, ch)
	}

	return chords, nil
}
