package vocab

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"chordpref/internal/keyboard"
)

var (
	ErrNoScores       = errors.New("scores pool is empty")
	ErrBadProbability = errors.New("probability outside [0, 1]")
	ErrAllImpossible  = errors.New("every chord in the pool has zero possibility")
	ErrBadKeyProb     = errors.New("key probability must be in [0, 1)")
	ErrSamplerStarved = errors.New("sampler failed to produce enough distinct chords")
)

// DefaultKeyProb is the probability of adding one more key while growing
// an exponential-sampler chord.
const DefaultKeyProb = 0.6

// Sampler produces candidate chords for binding. Sampling need not be
// uniform; the three strategies trade coverage against informativeness.
type Sampler interface {
	SampleChord() keyboard.Chord
}

// ExponentialSampler draws chords whose key count is roughly geometric:
// starting from one random key, each further key is added with
// probability keyProb. Invalid chords are discarded and redrawn.
type ExponentialSampler struct {
	rng     *rand.Rand
	spec    *keyboard.Spec
	keyProb float64
}

// NewExponentialSampler takes ownership of rng.
func NewExponentialSampler(rng *rand.Rand, spec *keyboard.Spec, keyProb float64) (*ExponentialSampler, error) {
	if keyProb < 0 || keyProb >= 1 {
		return nil, fmt.Errorf("%w: %v", ErrBadKeyProb, keyProb)
	}

	return &ExponentialSampler{rng: rng, spec: spec, keyProb: keyProb}, nil
}

// SampleChord implements Sampler.
func (s *ExponentialSampler) SampleChord() keyboard.Chord {
	for {
		c := s.spec.NewChord()
		c.Add(s.spec.RandomKey(s.rng))

		for s.rng.Float64() < s.keyProb {
			c.Add(s.spec.RandomKey(s.rng))
		}

		if c.IsValid() {
			return c
		}
	}
}

// ScoredChord is a valid chord with the reward model's predicted
// probability that a user can physically press it.
type ScoredChord struct {
	Chord      keyboard.Chord
	PrPossible float64
}

// validateScores checks a model-produced pool.
func validateScores(scores []ScoredChord) error {
	if len(scores) == 0 {
		return ErrNoScores
	}

	anyPossible := false

	for _, sc := range scores {
		if sc.PrPossible < 0 || sc.PrPossible > 1 {
			return fmt.Errorf("%w: %v", ErrBadProbability, sc.PrPossible)
		}

		if sc.PrPossible > 0 {
			anyPossible = true
		}
	}

	if !anyPossible {
		return ErrAllImpossible
	}

	return nil
}

// PossibleWeightedSampler rejection-samples from the scored pool: a chord
// drawn uniformly is accepted with its predicted possibility.
type PossibleWeightedSampler struct {
	rng    *rand.Rand
	scores []ScoredChord
}

// NewPossibleWeightedSampler takes ownership of rng.
func NewPossibleWeightedSampler(rng *rand.Rand, scores []ScoredChord) (*PossibleWeightedSampler, error) {
	if err := validateScores(scores); err != nil {
		return nil, err
	}

	return &PossibleWeightedSampler{rng: rng, scores: append([]ScoredChord(nil), scores...)}, nil
}

// SampleChord implements Sampler.
func (s *PossibleWeightedSampler) SampleChord() keyboard.Chord {
	for {
		sc := s.scores[s.rng.IntN(len(s.scores))]
		if s.rng.Float64() < sc.PrPossible {
			return sc.Chord
		}
	}
}

// MostUncertainSampler concentrates samples on chords whose possibility
// the model is least sure about. The pool is sorted by predicted
// possibility; indices are drawn from a shifted binomial centered on the
// first chord at or above 1/2, with out-of-range draws rejected.
type MostUncertainSampler struct {
	rng    *rand.Rand
	sorted []ScoredChord
	center int
}

// NewMostUncertainSampler takes ownership of rng.
func NewMostUncertainSampler(rng *rand.Rand, scores []ScoredChord) (*MostUncertainSampler, error) {
	if err := validateScores(scores); err != nil {
		return nil, err
	}

	sorted := append([]ScoredChord(nil), scores...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PrPossible < sorted[j].PrPossible
	})

	center := len(sorted) - 1

	for i, sc := range sorted {
		if sc.PrPossible >= 0.5 {
			center = i
			break
		}
	}

	return &MostUncertainSampler{rng: rng, sorted: sorted, center: center}, nil
}

// SampleChord implements Sampler.
func (s *MostUncertainSampler) SampleChord() keyboard.Chord {
	m := len(s.sorted)
	if m == 1 {
		return s.sorted[0].Chord
	}

	// Binomial(2(m-1), 1/2) has mean m-1 and variance (m-1)/2; shifting
	// by m-1-center moves the mean onto the center index.
	n := 2 * (m - 1)
	shift := m - 1 - s.center

	for {
		sum := 0

		for i := 0; i < n; i++ {
			if s.rng.Float64() < 0.5 {
				sum++
			}
		}

		idx := sum - shift
		if idx >= 0 && idx < m {
			return s.sorted[idx].Chord
		}
	}
}
