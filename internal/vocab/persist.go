package vocab

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"chordpref/internal/code"
	"chordpref/internal/hid"
	"chordpref/internal/keyboard"
)

var ErrBadDecoderFile = errors.New("malformed decoder file")

// chordKeys is the wire form of a chord.
type chordKeys struct {
	Keys []bool `json:"keys"`
}

// wirePair serializes a vocabulary entry as the two-element array
// [chord, string].
type wirePair struct {
	Chord  chordKeys
	Output string
}

func (p wirePair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Chord, p.Output})
}

func (p *wirePair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw) != 2 {
		return fmt.Errorf("%w: vocab pair has %d elements", ErrBadDecoderFile, len(raw))
	}

	if err := json.Unmarshal(raw[0], &p.Chord); err != nil {
		return err
	}

	return json.Unmarshal(raw[1], &p.Output)
}

// decoderFile is the persisted vocabulary+tree document.
type decoderFile struct {
	Vocab    []wirePair `json:"vocab"`
	CodeTree *code.Node `json:"code_tree"`
}

// SaveDecoder atomically writes the session vocabulary and prefix tree.
func SaveDecoder(path string, v *Vocabulary, tree *code.Node) error {
	doc := decoderFile{CodeTree: tree}

	for _, e := range v.entries {
		doc.Vocab = append(doc.Vocab, wirePair{
			Chord:  chordKeys{Keys: e.Chord.Keys()},
			Output: e.Output,
		})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	return atomic.WriteFile(path, bytes.NewReader(data))
}

// LoadDecoder reads a persisted decoder file back into a Decoder bound to
// the given keyboard and character table.
func LoadDecoder(path string, spec *keyboard.Spec, table *hid.Table) (*Decoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc decoderFile

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDecoderFile, err)
	}

	if doc.CodeTree == nil {
		return nil, fmt.Errorf("%w: missing code_tree", ErrBadDecoderFile)
	}

	entries := make([]Entry, 0, len(doc.Vocab))

	for _, p := range doc.Vocab {
		ch, err := spec.ChordFromKeys(p.Chord.Keys)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadDecoderFile, err)
		}

		entries = append(entries, Entry{Chord: ch, Output: p.Output})
	}

	v, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDecoderFile, err)
	}

	return NewDecoder(table, doc.CodeTree, v), nil
}

// scoresFile is the wire form of a reward-model scores dump.
type scoresFile struct {
	Scores []scoreEntry `json:"scores"`
}

type scoreEntry struct {
	Chord      chordKeys `json:"chord"`
	PrPossible float64   `json:"pr_possible"`
}

// LoadScores reads the reward model's (chord, pr_possible) pool for the
// model-driven samplers. Probabilities are validated at sampler
// construction; here only the chords are checked against the keyboard.
func LoadScores(path string, spec *keyboard.Spec) ([]ScoredChord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc scoresFile

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	scores := make([]ScoredChord, 0, len(doc.Scores))

	for _, e := range doc.Scores {
		ch, err := spec.ChordFromKeys(e.Chord.Keys)
		if err != nil {
			return nil, err
		}

		scores = append(scores, ScoredChord{Chord: ch, PrPossible: e.PrPossible})
	}

	return scores, nil
}
