// Package trial scores typed trials against their expected chord
// sequences and runs the interactive data-collection loop.
package trial

// The scorer finds the best way to insert filler elements into both
// sequences so that the greatest fraction of positions match. Standard
// Needleman-Wunsch optimizes #matches - #mismatches, where an optimal
// prefix extends to an optimal whole; the ratio objective
// #matches / (#matches + #mismatches) has no such property, so each cell
// keeps every Pareto-optimal (correct, incorrect) pair instead of a
// single best score. A candidate is dominated when another one in the
// same cell has at least as many matches and at most as many mismatches.
// At cell (i, j) correct <= min(i, j), so at most min(i, j)+1 candidates
// survive and the whole table is O(|P|*|Q|*min(|P|,|Q|)).

type direction uint8

const (
	dirNone direction = iota
	dirVert
	dirDiag
	dirHorz
)

type candidate struct {
	correct   int
	incorrect int
	dir       direction
}

// AlignPolicy controls scoring details.
type AlignPolicy struct {
	// CollapseRepeatInsertions counts a run of consecutive insertions of
	// the same element as a single error. Holding a chord slightly too
	// long makes the keyboard repeat it; the extra copies are one
	// mistake, not several.
	CollapseRepeatInsertions bool
}

// Alignment is the score of the best alignment.
type Alignment struct {
	Correct   int
	Incorrect int
}

// Accuracy returns Correct/(Correct+Incorrect), or zero for two empty
// sequences.
func (a Alignment) Accuracy() float64 {
	total := a.Correct + a.Incorrect
	if total == 0 {
		return 0
	}

	return float64(a.Correct) / float64(total)
}

// Align scores the best alignment of a typed sequence against the
// predicted one. Pass the expected sequence first: the two arguments are
// scored symmetrically (when collapsing is off), but the collapse rule
// inspects repeats in the typed sequence only.
func Align[T comparable](predicted, typed []T, policy AlignPolicy) Alignment {
	cells := alignTable(predicted, typed, policy)
	best := bestCandidate(cells[len(predicted)][len(typed)])

	return Alignment{Correct: best.correct, Incorrect: best.incorrect}
}

// repeatAt reports whether typed[j-1] repeats typed[j-2], making a
// horizontal step into column j free under the collapse policy.
func repeatAt[T comparable](typed []T, j int, policy AlignPolicy) bool {
	return policy.CollapseRepeatInsertions && j >= 2 && typed[j-1] == typed[j-2]
}

func alignTable[T comparable](predicted, typed []T, policy AlignPolicy) [][][]candidate {
	cells := make([][][]candidate, len(predicted)+1)
	for i := range cells {
		cells[i] = make([][]candidate, len(typed)+1)
	}

	for i := 0; i <= len(predicted); i++ {
		for j := 0; j <= len(typed); j++ {
			switch {
			case i == 0 && j == 0:
				cells[0][0] = []candidate{{dir: dirNone}}
			case i == 0:
				// Fillers inserted before the predicted sequence starts:
				// no matches, one mismatch per filler unless the typed
				// element repeats its predecessor.
				prev := cells[0][j-1][0]

				cost := 1
				if repeatAt(typed, j, policy) {
					cost = 0
				}

				cells[0][j] = []candidate{{incorrect: prev.incorrect + cost, dir: dirHorz}}
			case j == 0:
				cells[i][0] = []candidate{{incorrect: i, dir: dirVert}}
			case predicted[i-1] == typed[j-1]:
				cells[i][j] = mergeMatch(cells, typed, i, j, policy)
			default:
				cells[i][j] = mergeMismatch(cells, typed, i, j, policy)
			}
		}
	}

	return cells
}

// mergeMatch handles cells whose elements are equal. Aligning them
// diagonally is never worse than a paid gap move, so those are the base
// candidates; a collapsed repeat insertion is free, though, and can beat
// the diagonal, so it is merged in when the policy allows it.
func mergeMatch[T comparable](cells [][][]candidate, typed []T, i, j int, policy AlignPolicy) []candidate {
	diag := cells[i-1][j-1]

	if !repeatAt(typed, j, policy) {
		cur := make([]candidate, len(diag))
		for k, c := range diag {
			cur[k] = candidate{correct: c.correct + 1, incorrect: c.incorrect, dir: dirDiag}
		}

		return cur
	}

	best := make(map[int]candidate)

	consider := func(c candidate) {
		old, ok := best[c.correct]
		if !ok || c.incorrect < old.incorrect {
			best[c.correct] = c
		}
	}

	for _, c := range diag {
		consider(candidate{correct: c.correct + 1, incorrect: c.incorrect, dir: dirDiag})
	}

	for _, c := range cells[i][j-1] {
		consider(candidate{correct: c.correct, incorrect: c.incorrect, dir: dirHorz})
	}

	merged := make([]candidate, 0, len(best))
	for _, c := range best {
		merged = append(merged, c)
	}

	return merged
}

// mergeMismatch combines the three predecessor cells, each step adding
// one mismatch (except a collapsed repeat insertion), and keeps the
// minimum-mismatch candidate for every match count.
func mergeMismatch[T comparable](cells [][][]candidate, typed []T, i, j int, policy AlignPolicy) []candidate {
	best := make(map[int]candidate)

	consider := func(c candidate) {
		old, ok := best[c.correct]
		if !ok || c.incorrect < old.incorrect {
			best[c.correct] = c
		}
	}

	for _, c := range cells[i-1][j] {
		consider(candidate{correct: c.correct, incorrect: c.incorrect + 1, dir: dirVert})
	}

	horzCost := 1
	if repeatAt(typed, j, policy) {
		horzCost = 0
	}

	for _, c := range cells[i][j-1] {
		consider(candidate{correct: c.correct, incorrect: c.incorrect + horzCost, dir: dirHorz})
	}

	for _, c := range cells[i-1][j-1] {
		consider(candidate{correct: c.correct, incorrect: c.incorrect + 1, dir: dirDiag})
	}

	merged := make([]candidate, 0, len(best))
	for _, c := range best {
		merged = append(merged, c)
	}

	return merged
}

// bestCandidate picks the candidate maximizing correct/(correct+incorrect),
// breaking ties toward more matches.
func bestCandidate(cands []candidate) candidate {
	best := cands[0]
	bestRatio := ratio(best)

	for _, c := range cands[1:] {
		r := ratio(c)
		if r > bestRatio || (r == bestRatio && c.correct > best.correct) {
			best = c
			bestRatio = r
		}
	}

	return best
}

func ratio(c candidate) float64 {
	total := c.correct + c.incorrect
	if total == 0 {
		return 0
	}

	return float64(c.correct) / float64(total)
}
