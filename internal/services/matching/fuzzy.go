package matching

import (
	"eiti-matching-backend/internal/services/normalize"
)

// Suggestion is the single best fuzzy candidate for an unmatched record.
// Discarded once a decision is recorded.
type Suggestion struct {
	Reference Reference
	Score     float64 // 0-100
}

// Suggest scores the record's name against every reference in the pool and
// returns the highest-scoring candidate. No threshold is applied here: even a
// low-confidence suggestion is surfaced and filtering is left to
// reconciliation. Ties go to the first reference in pool order. Returns false
// when the pool is empty.
//
// Cost is O(len(pool)) Levenshtein runs, fine for registries in the
// thousands. A blocking prefilter by first letter or token would fit here for
// larger pools without changing the contract.
func Suggest(name string, pool Registry) (Suggestion, bool) {
	if len(pool) == 0 {
		return Suggestion{}, false
	}

	target := normalize.Name(name)
	best := Suggestion{Score: -1}
	for _, ref := range pool {
		score := Ratio(target, normalize.Name(ref.Name))
		if score > best.Score {
			best = Suggestion{Reference: ref, Score: score}
		}
	}
	return best, true
}

// Ratio computes an edit-distance similarity between two strings scaled to
// 0-100. Equal strings score 100.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	ar, br := []rune(a), []rune(b)
	longest := len(ar)
	if len(br) > longest {
		longest = len(br)
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein(ar, br)
	return (1 - float64(dist)/float64(longest)) * 100
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		dp[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		dp[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			dp[i][j] = min(
				dp[i-1][j]+1,
				dp[i][j-1]+1,
				dp[i-1][j-1]+cost,
			)
		}
	}
	return dp[len(a)][len(b)]
}
