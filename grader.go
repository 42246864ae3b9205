package coachlens

import "strings"

// Grader scores free-text answers against a reference answer using
// token-overlap fuzzy matching. It is deliberately lenient: students are
// answering from memory, not quoting the page.
type Grader struct{}

// NewGrader creates a new answer grader.
func NewGrader() *Grader {
	return &Grader{}
}

// matchThreshold is the fraction of reference tokens that must overlap the
// user's answer for a non-exact match to count as correct.
const matchThreshold = 0.6

// Grade reports whether userAnswer matches referenceAnswer. Both strings are
// lowercased and trimmed; an exact match wins immediately. Otherwise each
// reference token longer than two characters counts as matched when it
// contains, or is contained in, any user token, and the answer is correct
// when matched/total exceeds the threshold. An empty reference never
// matches: there is no content to compare against.
func (g *Grader) Grade(userAnswer, referenceAnswer string) bool {
	user := strings.ToLower(strings.TrimSpace(userAnswer))
	reference := strings.ToLower(strings.TrimSpace(referenceAnswer))

	if reference == "" {
		return false
	}
	if user == reference {
		return true
	}

	referenceTokens := strings.Fields(reference)
	if len(referenceTokens) == 0 {
		return false
	}
	userTokens := strings.Fields(user)

	matches := 0
	for _, ref := range referenceTokens {
		if len(ref) <= 2 {
			continue
		}
		for _, ut := range userTokens {
			if strings.Contains(ref, ut) || strings.Contains(ut, ref) {
				matches++
				break
			}
		}
	}

	return float64(matches)/float64(len(referenceTokens)) > matchThreshold
}
