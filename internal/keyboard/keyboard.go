// Package keyboard models a chording keyboard: its key alphabet, chords
// (sets of simultaneously pressed keys), and the per-keyboard validity
// rules for chords.
package keyboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"math/rand/v2"
	"strings"
)

var (
	ErrTooManyKeys     = errors.New("keyboard has too many keys")
	ErrNoMainKeys      = errors.New("keyboard has no main keys")
	ErrKeyOutOfRange   = errors.New("key index out of range")
	ErrWrongKeyCount   = errors.New("wrong key count for keyboard")
	ErrDuplicateKey    = errors.New("duplicate key label")
	ErrReservedInvalid = errors.New("reserved chord refers to unknown key")
	ErrVocabularyEmpty = errors.New("vocabulary is empty")
)

// maxKeys is fixed by the chord bitset width.
const maxKeys = 32

// Key is one physical key. Thumb keys never count toward chord validity;
// a valid chord needs at least one main (non-thumb) key.
type Key struct {
	Label string
	Thumb bool
}

// Spec describes one keyboard instance: its keys in declaration order and
// the chords the firmware refuses to rebind. A Spec is immutable after
// construction and outlives every Chord that references it.
type Spec struct {
	name     string
	keys     []Key
	mainMask uint32
	reserved []uint32
}

// NewSpec builds a keyboard spec. Keys are indexed by declaration order.
// Reserved chords are given as lists of key indices.
func NewSpec(name string, keys []Key, reserved [][]int) (*Spec, error) {
	if len(keys) > maxKeys {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyKeys, len(keys), maxKeys)
	}

	seen := make(map[string]bool, len(keys))

	var mainMask uint32

	for i, k := range keys {
		if seen[k.Label] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, k.Label)
		}

		seen[k.Label] = true

		if !k.Thumb {
			mainMask |= 1 << uint(i)
		}
	}

	if mainMask == 0 {
		return nil, ErrNoMainKeys
	}

	s := &Spec{
		name:     name,
		keys:     append([]Key(nil), keys...),
		mainMask: mainMask,
	}

	for _, idxs := range reserved {
		c := s.NewChord()

		for _, idx := range idxs {
			if idx < 0 || idx >= len(keys) {
				return nil, fmt.Errorf("%w: %d", ErrReservedInvalid, idx)
			}

			c.Add(idx)
		}

		s.reserved = append(s.reserved, c.bits)
	}

	return s, nil
}

// Name returns the keyboard name.
func (s *Spec) Name() string { return s.name }

// KeyCount returns the number of keys on the keyboard.
func (s *Spec) KeyCount() int { return len(s.keys) }

// Key returns the key at declaration index i.
func (s *Spec) Key(i int) Key { return s.keys[i] }

// NewChord returns the empty chord for this keyboard.
func (s *Spec) NewChord() Chord { return Chord{spec: s} }

// ChordOf builds a chord from key indices.
func (s *Spec) ChordOf(idxs ...int) (Chord, error) {
	c := s.NewChord()

	for _, idx := range idxs {
		if idx < 0 || idx >= len(s.keys) {
			return Chord{}, fmt.Errorf("%w: %d", ErrKeyOutOfRange, idx)
		}

		c.Add(idx)
	}

	return c, nil
}

// ChordFromKeys builds a chord from a pressed-key vector, as persisted in
// JSON. The vector length must match the keyboard's key count.
func (s *Spec) ChordFromKeys(keys []bool) (Chord, error) {
	if len(keys) != len(s.keys) {
		return Chord{}, fmt.Errorf("%w: got %d, want %d", ErrWrongKeyCount, len(keys), len(s.keys))
	}

	c := s.NewChord()

	for i, pressed := range keys {
		if pressed {
			c.Add(i)
		}
	}

	return c, nil
}

// RandomKey returns a uniformly random key index.
func (s *Spec) RandomKey(rng *rand.Rand) int {
	return rng.IntN(len(s.keys))
}

// Chord is a set of keys pressed simultaneously, stored as a fixed-width
// bitset indexed by key declaration order. The zero Chord belongs to no
// keyboard and is only valid as a target for decoding helpers.
type Chord struct {
	spec *Spec
	bits uint32
}

// Spec returns the keyboard this chord belongs to.
func (c Chord) Spec() *Spec { return c.spec }

// Contains reports whether key index i is pressed.
func (c Chord) Contains(i int) bool {
	return c.bits&(1<<uint(i)) != 0
}

// Add presses key index i. Adding a key twice is a no-op.
func (c *Chord) Add(i int) {
	c.bits |= 1 << uint(i)
}

// Count returns the number of pressed keys.
func (c Chord) Count() int {
	return bits.OnesCount32(c.bits)
}

// Equal reports set equality of two chords on the same keyboard.
func (c Chord) Equal(o Chord) bool {
	return c.spec == o.spec && c.bits == o.bits
}

// IsValid reports whether the chord can be bound: it must press at least
// one main-grid key and must not be one of the keyboard's reserved chords.
func (c Chord) IsValid() bool {
	if c.bits&c.spec.mainMask == 0 {
		return false
	}

	for _, r := range c.spec.reserved {
		if c.bits == r {
			return false
		}
	}

	return true
}

// Keys returns the pressed-key vector in declaration order.
func (c Chord) Keys() []bool {
	keys := make([]bool, len(c.spec.keys))
	for i := range keys {
		keys[i] = c.Contains(i)
	}

	return keys
}

// Label returns the chord as the concatenated labels of its pressed keys.
func (c Chord) Label() string {
	var b strings.Builder

	for i, k := range c.spec.keys {
		if c.Contains(i) {
			b.WriteString(k.Label)
		}
	}

	return b.String()
}

// MarshalJSON encodes the chord as its pressed-key vector,
// {"keys": [bool, ...]}. Decoding goes through Spec.ChordFromKeys because
// a chord cannot exist without its keyboard.
func (c Chord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Keys []bool `json:"keys"`
	}{c.Keys()})
}

// AllValidChords enumerates every valid chord of the keyboard in bitmask
// order. For the reference keyboard this is a few tens of thousands of
// candidates, cheap to walk.
func AllValidChords(s *Spec) []Chord {
	total := 1 << uint(len(s.keys))
	chords := make([]Chord, 0, total/2)

	for mask := 1; mask < total; mask++ {
		c := Chord{spec: s, bits: uint32(mask)}
		if c.IsValid() {
			chords = append(chords, c)
		}
	}

	return chords
}
