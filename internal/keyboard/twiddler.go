package keyboard

import "chordpref/internal/hid"

// Reference keyboard: a Twiddler-style one-handed chorder with 4 thumb
// keys and a 4x3 main grid. Key order matches the hardware labels.

// TwiddlerKeys lists the keys in declaration order.
var TwiddlerKeys = []Key{
	{Label: "Z0", Thumb: true}, // Num
	{Label: "L0", Thumb: true}, // Alt
	{Label: "M0", Thumb: true}, // Ctrl
	{Label: "R0", Thumb: true}, // Shft
	{Label: "L1"}, {Label: "M1"}, {Label: "R1"},
	{Label: "L2"}, {Label: "M2"}, {Label: "R2"},
	{Label: "L3"}, {Label: "M3"}, {Label: "R3"},
	{Label: "L4"}, {Label: "M4"}, {Label: "R4"},
}

// NewTwiddlerSpec returns the reference keyboard spec. The firmware keeps
// no fixed bindings on this layout, so the reserved set is empty.
func NewTwiddlerSpec() *Spec {
	s, err := NewSpec("twiddler", TwiddlerKeys, nil)
	if err != nil {
		// The reference key list is a compile-time constant; it cannot fail.
		panic(err)
	}

	return s
}

// twiddlerRanges are the scancode bands the keyboard is allowed to emit:
// alphanumeric plus two special-character bands. Whitespace, escape and
// backspace are excluded so every emitted form is a single printable rune.
var twiddlerRanges = []hid.Range{
	{Lo: 0x04, Hi: 0x28},
	{Lo: 0x2d, Hi: 0x32},
	{Lo: 0x33, Hi: 0x39},
}

// twiddlerLegend is the US-layout printable form for each emitted
// scancode, unshifted then shifted.
var twiddlerLegend = hid.Legend{
	0x04: {'a', 'A'}, 0x05: {'b', 'B'}, 0x06: {'c', 'C'}, 0x07: {'d', 'D'},
	0x08: {'e', 'E'}, 0x09: {'f', 'F'}, 0x0a: {'g', 'G'}, 0x0b: {'h', 'H'},
	0x0c: {'i', 'I'}, 0x0d: {'j', 'J'}, 0x0e: {'k', 'K'}, 0x0f: {'l', 'L'},
	0x10: {'m', 'M'}, 0x11: {'n', 'N'}, 0x12: {'o', 'O'}, 0x13: {'p', 'P'},
	0x14: {'q', 'Q'}, 0x15: {'r', 'R'}, 0x16: {'s', 'S'}, 0x17: {'t', 'T'},
	0x18: {'u', 'U'}, 0x19: {'v', 'V'}, 0x1a: {'w', 'W'}, 0x1b: {'x', 'X'},
	0x1c: {'y', 'Y'}, 0x1d: {'z', 'Z'},
	0x1e: {'1', '!'}, 0x1f: {'2', '@'}, 0x20: {'3', '#'}, 0x21: {'4', '$'},
	0x22: {'5', '%'}, 0x23: {'6', '^'}, 0x24: {'7', '&'}, 0x25: {'8', '*'},
	0x26: {'9', '('}, 0x27: {'0', ')'},
	0x2d: {'-', '_'}, 0x2e: {'=', '+'}, 0x2f: {'[', '{'}, 0x30: {']', '}'},
	0x31: {'\\', '|'},
	0x33: {';', ':'}, 0x34: {'\'', '"'}, 0x35: {'`', '~'}, 0x36: {',', '<'},
	0x37: {'.', '>'}, 0x38: {'/', '?'},
}

// NewTwiddlerTable returns the character-code table for the reference
// keyboard.
func NewTwiddlerTable() *hid.Table {
	t, err := hid.NewTable(twiddlerRanges, twiddlerLegend)
	if err != nil {
		// Ranges and legend are compile-time constants; they cannot fail.
		panic(err)
	}

	return t
}
