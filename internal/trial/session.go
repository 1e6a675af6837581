package trial

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"chordpref/internal/keyboard"
	"chordpref/internal/vocab"
)

// Session prompts. These strings are stable; tests observe them.
const (
	promptHeader = "you will be shown two chords. after some time to practice, you will need to type this pair of chords %d times, as quickly as possible.\n"
	promptPair   = "type GO when you're ready to continue, IMP if this contains an impossible combination, SKIP to skip this pair without recording any data, or QUIT to quit. hit Enter after you're done typing the chords.\n"
	promptAccept = "accept this trial (Y), or try again (N)?\n"
	promptYorN   = "please type Y or N.\n"
	promptQuit   = "quitting...\n"
)

// Commands the loop dispatches on.
const (
	cmdGo   = "GO"
	cmdImp  = "IMP"
	cmdSkip = "SKIP"
	cmdQuit = "QUIT"

	answerYes = "Y"
	answerNo  = "N"
)

// LineReader supplies one line of user input, without the trailing
// newline. It returns io.EOF when the input is exhausted.
type LineReader interface {
	ReadLine() (string, error)
}

// SessionOptions tune a collection session.
type SessionOptions struct {
	// NRepetitions is how many times the pair is typed per trial.
	// Zero means DefaultRepetitions.
	NRepetitions int

	// Policy is the alignment scoring policy.
	Policy AlignPolicy

	// Clock overrides the trial timer source. Nil means time.Now.
	Clock func() time.Time
}

// Session owns one data-collection run: it samples pairs from the
// vocabulary, drives the prompt state machine, and accumulates accepted
// trials in order. The session is the sole owner of its RNG and results;
// everything it touches besides the input reader is read-only.
type Session struct {
	dec     *vocab.Decoder
	rng     *rand.Rand
	in      LineReader
	out     io.Writer
	nReps   int
	policy  AlignPolicy
	clock   func() time.Time
	chords  []keyboard.Chord
	results TrialResults
}

// NewSession builds a session over a decoder's vocabulary. The session
// takes exclusive ownership of rng.
func NewSession(dec *vocab.Decoder, rng *rand.Rand, in LineReader, out io.Writer, opts SessionOptions) (*Session, error) {
	chords := dec.Vocab().Chords()
	if len(chords) == 0 {
		return nil, keyboard.ErrVocabularyEmpty
	}

	nReps := opts.NRepetitions
	if nReps == 0 {
		nReps = DefaultRepetitions
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Session{
		dec:    dec,
		rng:    rng,
		in:     in,
		out:    out,
		nReps:  nReps,
		policy: opts.Policy,
		clock:  clock,
		chords: chords,
	}, nil
}

// Run executes the collection loop until QUIT or end of input and
// returns the accepted trials in acceptance order. Results accumulated
// before an input error are returned alongside the error so the caller
// can persist them.
func (s *Session) Run() (*TrialResults, error) {
	fmt.Fprintf(s.out, promptHeader, s.nReps)

	for {
		pair := s.samplePair()

		for _, c := range pair {
			fmt.Fprintln(s.out, c.Graphical())
		}

		done, err := s.runPair(pair)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return &s.results, nil
			}

			return &s.results, err
		}

		if done {
			return &s.results, nil
		}
	}
}

// samplePair draws two chords uniformly at random, independently.
func (s *Session) samplePair() [2]keyboard.Chord {
	return [2]keyboard.Chord{
		s.chords[s.rng.IntN(len(s.chords))],
		s.chords[s.rng.IntN(len(s.chords))],
	}
}

// runPair drives one pair through the command/timing/accept states.
// It returns done=true when the user quit.
func (s *Session) runPair(pair [2]keyboard.Chord) (bool, error) {
	for {
		fmt.Fprint(s.out, promptPair)

		line, err := s.in.ReadLine()
		if err != nil {
			return false, err
		}

		switch line {
		case cmdGo:
			recorded, err := s.runTiming(pair)
			if err != nil {
				return false, err
			}

			if recorded {
				return false, nil
			}
			// Decode failure or retry: same pair, back to the prompt.
		case cmdImp:
			s.results.Push(TrialData{
				ChordPair:    pair,
				NRepetitions: s.nReps,
				Input:        Impossible,
			})

			return false, nil
		case cmdSkip:
			return false, nil
		case cmdQuit:
			fmt.Fprint(s.out, promptQuit)
			return true, nil
		default:
			// Reprint the prompt.
		}
	}
}

// runTiming times one typed trial, scores it, and runs the accept state.
// It returns recorded=false when the user rejects the trial or decoding
// fails, sending the loop back to the pair prompt.
func (s *Session) runTiming(pair [2]keyboard.Chord) (bool, error) {
	start := s.clock()

	line, err := s.in.ReadLine()
	if err != nil {
		return false, err
	}

	elapsed := s.clock().Sub(start)

	typed, decErr := s.dec.ParseTrial(line)
	if decErr != nil {
		fmt.Fprintf(s.out, "error parsing input: %v. perhaps you entered text from the wrong device?\n", decErr)
		return false, nil
	}

	expected := s.expectedSequence(pair)
	score := Align(expected, typed, s.policy)
	switchTime := elapsed.Seconds() / float64(2*s.nReps-1)

	fmt.Fprintf(s.out, "expected input: %s; accuracy: %v; average switching time: %v\n",
		s.expectedOutputs(expected), score.Accuracy(), switchTime)

	for {
		fmt.Fprint(s.out, promptAccept)

		answer, err := s.in.ReadLine()
		if err != nil {
			return false, err
		}

		fmt.Fprintln(s.out)

		switch answer {
		case answerYes:
			s.results.Push(TrialData{
				ChordPair:    pair,
				NRepetitions: s.nReps,
				Input:        Ok(typed),
			})

			return true, nil
		case answerNo:
			return false, nil
		default:
			fmt.Fprint(s.out, promptYorN)
		}
	}
}

// expectedSequence alternates the pair for 2*nReps presses.
func (s *Session) expectedSequence(pair [2]keyboard.Chord) []keyboard.Chord {
	seq := make([]keyboard.Chord, 2*s.nReps)
	for i := range seq {
		seq[i] = pair[i%2]
	}

	return seq
}

// expectedOutputs renders the expected sequence as its output strings.
// Every chord of the pair is in the vocabulary, so lookup cannot fail.
func (s *Session) expectedOutputs(seq []keyboard.Chord) string {
	outs := make([]string, len(seq))

	for i, c := range seq {
		out, _ := s.dec.Vocab().ChordOutput(c)
		outs[i] = out
	}

	return strings.Join(outs, " ")
}
