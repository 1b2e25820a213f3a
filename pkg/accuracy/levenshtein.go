package accuracy

// wordSimilarity returns a similarity score in [0.0, 1.0] for two tokens,
// defined as (maxLen - editDistance(a, b)) / maxLen over rune lengths.
//
// Two empty tokens are defined as identical (1.0). The tokenizer never emits
// empty tokens, but the case is handled so the function stays total.
func wordSimilarity(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)

	maxLen := len(ar)
	if len(br) > maxLen {
		maxLen = len(br)
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein(ar, br)
	return float64(maxLen-dist) / float64(maxLen)
}

// levenshtein computes the classic edit distance with unit-cost insertions,
// deletions, and substitutions. Only the final distance is consumed, so the
// DP table is kept as a single rolling row instead of the full matrix.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		prev := row[0] // dp[i-1][j-1]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			diag := prev
			prev = row[j]

			if a[i-1] == b[j-1] {
				row[j] = diag
				continue
			}

			// 1 + min(substitution, insertion, deletion)
			best := diag
			if row[j] < best {
				best = row[j]
			}
			if row[j-1] < best {
				best = row[j-1]
			}
			row[j] = best + 1
		}
	}

	return row[len(b)]
}
