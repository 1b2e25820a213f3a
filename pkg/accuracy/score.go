// Package accuracy scores how closely a spoken transcript matches the caption
// text it was repeating. Matching is word-level: both strings are tokenized,
// then aligned in two greedy passes — an exact pass and an edit-distance
// fuzzy pass — and the result is the percentage of expected words that found
// a match.
//
// The aligner is deliberately not an optimal bipartite matching; it is a
// cheap, deterministic left-to-right scan with used-slot tracking. Word order
// is not required for a match, only availability.
//
// Score is a pure function of its two inputs, holds no state, and is safe to
// call concurrently.
package accuracy

import "math"

// fuzzyThreshold is the similarity a token pair must strictly exceed to count
// in the fuzzy pass. At 0.6, "cat"/"cot" (distance 1 over length 3, ~0.667)
// matches while "you"/"u" (distance 2 over length 3, ~0.333) does not.
const fuzzyThreshold = 0.6

// Score compares expected caption text against an actual spoken transcript
// and returns an integer accuracy percentage in [0, 100].
//
// Either input being empty (or containing no scorable words) yields 0; no
// string input causes an error.
func Score(expected, actual string) int {
	if expected == "" || actual == "" {
		return 0
	}

	expectedWords := Tokenize(expected)
	actualWords := Tokenize(actual)
	if len(expectedWords) == 0 || len(actualWords) == 0 {
		return 0
	}

	used := make([]bool, len(actualWords))
	matched := make([]bool, len(expectedWords))
	matches := 0

	// Pass 1: each expected word claims the first unused exactly-equal
	// actual word. Greedy first-available, not a global optimum.
	for i, want := range expectedWords {
		for j, got := range actualWords {
			if used[j] || want != got {
				continue
			}
			used[j] = true
			matched[i] = true
			matches++
			break
		}
	}

	// Pass 2: remaining expected words claim the first unused actual word
	// whose similarity strictly exceeds the threshold. Expected words that
	// already matched are skipped so no expected word is counted twice.
	for i, want := range expectedWords {
		if matches >= len(expectedWords) {
			break
		}
		if matched[i] {
			continue
		}
		for j, got := range actualWords {
			if used[j] || wordSimilarity(want, got) <= fuzzyThreshold {
				continue
			}
			used[j] = true
			matched[i] = true
			matches++
			break
		}
	}

	pct := math.Round(float64(matches) / float64(len(expectedWords)) * 100)
	if pct > 100 {
		pct = 100
	}
	return int(pct)
}
