package keyboard

import "strings"

// Rendering symbols. The pressed/unpressed circles follow the hardware
// documentation's chord diagrams.
const (
	symPressed   = "⚫"
	symUnpressed = "⚪"
	mainRowWidth = 3
)

// Graphical renders the chord as a keyboard diagram: the thumb row first,
// then the main grid in rows of three, indented by one cell because the
// thumb row has one more key than the grid rows.
func (c Chord) Graphical() string {
	var b strings.Builder

	for i, k := range c.spec.keys {
		if !k.Thumb {
			continue
		}

		b.WriteString(symbolFor(c, i))
	}

	b.WriteString("\n")

	col := 0

	for i, k := range c.spec.keys {
		if k.Thumb {
			continue
		}

		if col == 0 {
			b.WriteString(" ")
		}

		b.WriteString(symbolFor(c, i))

		col++
		if col == mainRowWidth {
			b.WriteString("\n")

			col = 0
		}
	}

	if col != 0 {
		b.WriteString("\n")
	}

	return b.String()
}

func symbolFor(c Chord, i int) string {
	if c.Contains(i) {
		return symPressed
	}

	return symUnpressed
}
