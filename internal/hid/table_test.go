package hid_test

import (
	"errors"
	"testing"

	"chordpref/internal/hid"
)

// testTable covers two small ranges: a-c (0x04..0x06) and -,= (0x2d..0x2e).
func testTable(t *testing.T) *hid.Table {
	t.Helper()

	table, err := hid.NewTable(
		[]hid.Range{{Lo: 0x04, Hi: 0x07}, {Lo: 0x2d, Hi: 0x2f}},
		hid.Legend{
			0x04: {'a', 'A'},
			0x05: {'b', 'B'},
			0x06: {'c', 'C'},
			0x2d: {'-', '_'},
			0x2e: {'=', '+'},
		},
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	return table
}

func TestTableSize(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	if got, want := table.Half(), 5; got != want {
		t.Errorf("Half()=%d, want=%d", got, want)
	}

	if got, want := table.Size(), 10; got != want {
		t.Errorf("Size()=%d, want=%d", got, want)
	}
}

func TestIdxToUSBRoundTrip(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	for i := 0; i < table.Size(); i++ {
		stroke, err := table.IdxToUSB(i)
		if err != nil {
			t.Fatalf("IdxToUSB(%d): %v", i, err)
		}

		back, err := table.USBToIdx(stroke)
		if err != nil {
			t.Fatalf("USBToIdx(%v): %v", stroke, err)
		}

		if back != i {
			t.Errorf("round trip: %d -> %v -> %d", i, stroke, back)
		}
	}
}

func TestUSBToIdxRoundTrip(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	for _, shifted := range []bool{false, true} {
		for _, usb := range []byte{0x04, 0x05, 0x06, 0x2d, 0x2e} {
			stroke := hid.Stroke{Shifted: shifted, USB: usb}

			idx, err := table.USBToIdx(stroke)
			if err != nil {
				t.Fatalf("USBToIdx(%v): %v", stroke, err)
			}

			back, err := table.IdxToUSB(idx)
			if err != nil {
				t.Fatalf("IdxToUSB(%d): %v", idx, err)
			}

			if back != stroke {
				t.Errorf("round trip: %v -> %d -> %v", stroke, idx, back)
			}
		}
	}
}

func TestTableMappings(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	for _, tt := range []struct {
		name string
		idx  int
		want string
	}{
		{name: "first unshifted", idx: 0, want: "a"},
		{name: "range boundary", idx: 3, want: "-"},
		{name: "first shifted", idx: 5, want: "A"},
		{name: "shifted special", idx: 8, want: "_"},
		{name: "last shifted", idx: 9, want: "+"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := table.IdxToString(tt.idx)
			if err != nil {
				t.Fatalf("IdxToString(%d): %v", tt.idx, err)
			}

			if got != tt.want {
				t.Errorf("IdxToString(%d)=%q, want=%q", tt.idx, got, tt.want)
			}

			back, err := table.RuneToIdx([]rune(tt.want)[0])
			if err != nil {
				t.Fatalf("RuneToIdx(%q): %v", tt.want, err)
			}

			if back != tt.idx {
				t.Errorf("RuneToIdx(%q)=%d, want=%d", tt.want, back, tt.idx)
			}
		})
	}
}

func TestUSBToIdxOutOfRange(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	for _, usb := range []byte{0x00, 0x03, 0x07, 0x2c, 0x2f, 0xff} {
		_, err := table.USBToIdx(hid.Stroke{USB: usb})
		if !errors.Is(err, hid.ErrOutOfRange) {
			t.Errorf("USBToIdx(%#02x) err=%v, want ErrOutOfRange", usb, err)
		}
	}
}

func TestIdxBounds(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	for _, idx := range []int{-1, 10, 100} {
		if _, err := table.IdxToUSB(idx); !errors.Is(err, hid.ErrIndexOutOfRange) {
			t.Errorf("IdxToUSB(%d) err=%v, want ErrIndexOutOfRange", idx, err)
		}

		if _, err := table.IdxToString(idx); !errors.Is(err, hid.ErrIndexOutOfRange) {
			t.Errorf("IdxToString(%d) err=%v, want ErrIndexOutOfRange", idx, err)
		}
	}
}

func TestRuneToIdxUnmappable(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	for _, r := range []rune{' ', 'z', 'é', '\n'} {
		if _, err := table.RuneToIdx(r); !errors.Is(err, hid.ErrUnmappableChar) {
			t.Errorf("RuneToIdx(%q) err=%v, want ErrUnmappableChar", r, err)
		}
	}
}

func TestWordString(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	got, err := table.WordString([]int{0, 1, 5})
	if err != nil {
		t.Fatalf("WordString: %v", err)
	}

	if want := "abA"; got != want {
		t.Errorf("WordString=%q, want=%q", got, want)
	}
}

func TestNewTableValidation(t *testing.T) {
	t.Parallel()

	if _, err := hid.NewTable([]hid.Range{{Lo: 0x06, Hi: 0x04}}, nil); !errors.Is(err, hid.ErrBadRanges) {
		t.Errorf("inverted range err=%v, want ErrBadRanges", err)
	}

	_, err := hid.NewTable([]hid.Range{{Lo: 0x04, Hi: 0x05}}, hid.Legend{})
	if !errors.Is(err, hid.ErrLegendMissing) {
		t.Errorf("missing legend err=%v, want ErrLegendMissing", err)
	}

	_, err = hid.NewTable(
		[]hid.Range{{Lo: 0x04, Hi: 0x06}},
		hid.Legend{0x04: {'a', 'A'}, 0x05: {'a', 'B'}},
	)
	if !errors.Is(err, hid.ErrDuplicateGlyph) {
		t.Errorf("duplicate glyph err=%v, want ErrDuplicateGlyph", err)
	}
}
