package trial

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"chordpref/internal/keyboard"
)

var ErrBadResultsFile = errors.New("malformed results file")

// DefaultRepetitions is how many times a pair is typed per trial.
const DefaultRepetitions = 5

// Input is a trial's outcome: either the decoded chord sequence the user
// typed, or the distinguished Impossible verdict. Impossible is a
// successful outcome, not an error.
type Input struct {
	Chords     []keyboard.Chord
	Impossible bool
}

// Ok builds a typed-sequence outcome.
func Ok(chords []keyboard.Chord) Input {
	return Input{Chords: chords}
}

// Impossible is the outcome of a pair the user cannot physically press.
var Impossible = Input{Impossible: true}

// Equal reports deep equality of outcomes.
func (in Input) Equal(o Input) bool {
	if in.Impossible != o.Impossible || len(in.Chords) != len(o.Chords) {
		return false
	}

	for i := range in.Chords {
		if !in.Chords[i].Equal(o.Chords[i]) {
			return false
		}
	}

	return true
}

// TrialData is one recorded trial.
type TrialData struct {
	ChordPair    [2]keyboard.Chord
	NRepetitions int
	Input        Input
}

// Equal reports deep equality of trials.
func (d TrialData) Equal(o TrialData) bool {
	return d.ChordPair[0].Equal(o.ChordPair[0]) &&
		d.ChordPair[1].Equal(o.ChordPair[1]) &&
		d.NRepetitions == o.NRepetitions &&
		d.Input.Equal(o.Input)
}

// TrialResults accumulates trials in acceptance order.
type TrialResults struct {
	Data []TrialData
}

// Push appends a trial.
func (r *TrialResults) Push(d TrialData) {
	r.Data = append(r.Data, d)
}

// Equal reports deep equality, including order.
func (r *TrialResults) Equal(o *TrialResults) bool {
	if len(r.Data) != len(o.Data) {
		return false
	}

	for i := range r.Data {
		if !r.Data[i].Equal(o.Data[i]) {
			return false
		}
	}

	return true
}

// Wire formats. A chord serializes as its pressed-key vector; an outcome
// serializes as {"Ok": [...]} or {"Err": "Impossible"}.

type chordKeys struct {
	Keys []bool `json:"keys"`
}

const impossibleTag = "Impossible"

type wireTrial struct {
	ChordPair    [2]chordKeys    `json:"chord_pair"`
	NRepetitions int             `json:"n_repetitions"`
	Input        json.RawMessage `json:"input"`
}

type wireResults struct {
	Data []wireTrial `json:"data"`
}

func marshalInput(in Input) (json.RawMessage, error) {
	if in.Impossible {
		return json.Marshal(map[string]string{"Err": impossibleTag})
	}

	chords := make([]chordKeys, len(in.Chords))
	for i, c := range in.Chords {
		chords[i] = chordKeys{Keys: c.Keys()}
	}

	return json.Marshal(map[string][]chordKeys{"Ok": chords})
}

func unmarshalInput(data json.RawMessage, spec *keyboard.Spec) (Input, error) {
	var raw map[string]json.RawMessage

	if err := json.Unmarshal(data, &raw); err != nil {
		return Input{}, err
	}

	if errRaw, ok := raw["Err"]; ok {
		var tag string

		if err := json.Unmarshal(errRaw, &tag); err != nil {
			return Input{}, err
		}

		if tag != impossibleTag {
			return Input{}, fmt.Errorf("%w: unknown outcome %q", ErrBadResultsFile, tag)
		}

		return Impossible, nil
	}

	okRaw, ok := raw["Ok"]
	if !ok {
		return Input{}, fmt.Errorf("%w: outcome has neither Ok nor Err", ErrBadResultsFile)
	}

	var chords []chordKeys

	if err := json.Unmarshal(okRaw, &chords); err != nil {
		return Input{}, err
	}

	in := Input{Chords: make([]keyboard.Chord, len(chords))}

	for i, ck := range chords {
		c, err := spec.ChordFromKeys(ck.Keys)
		if err != nil {
			return Input{}, err
		}

		in.Chords[i] = c
	}

	return in, nil
}

// Save atomically writes the results as JSON.
func (r *TrialResults) Save(path string) error {
	doc := wireResults{Data: make([]wireTrial, len(r.Data))}

	for i, d := range r.Data {
		input, err := marshalInput(d.Input)
		if err != nil {
			return err
		}

		doc.Data[i] = wireTrial{
			ChordPair: [2]chordKeys{
				{Keys: d.ChordPair[0].Keys()},
				{Keys: d.ChordPair[1].Keys()},
			},
			NRepetitions: d.NRepetitions,
			Input:        input,
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	return atomic.WriteFile(path, bytes.NewReader(data))
}

// LoadResults reads persisted results back against a keyboard spec.
func LoadResults(path string, spec *keyboard.Spec) (*TrialResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc wireResults

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResultsFile, err)
	}

	results := &TrialResults{Data: make([]TrialData, len(doc.Data))}

	for i, wt := range doc.Data {
		first, err := spec.ChordFromKeys(wt.ChordPair[0].Keys)
		if err != nil {
			return nil, err
		}

		second, err := spec.ChordFromKeys(wt.ChordPair[1].Keys)
		if err != nil {
			return nil, err
		}

		input, err := unmarshalInput(wt.Input, spec)
		if err != nil {
			return nil, err
		}

		results.Data[i] = TrialData{
			ChordPair:    [2]keyboard.Chord{first, second},
			NRepetitions: wt.NRepetitions,
			Input:        input,
		}
	}

	return results, nil
}
