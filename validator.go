package coachlens

import "strings"

// Validator sanity-checks a quiz against the page it was generated for and
// regenerates a heuristic quiz when the supplied one is malformed, generic,
// or demonstrably unrelated to the page. The relevance check is a token
// heuristic, not a semantic one: false positives and negatives are expected
// and acceptable.
type Validator struct {
	analyzer    *Analyzer
	synthesizer *Synthesizer
}

// NewValidator creates a validator that regenerates through the given
// analyzer and synthesizer.
func NewValidator(analyzer *Analyzer, synthesizer *Synthesizer) *Validator {
	return &Validator{analyzer: analyzer, synthesizer: synthesizer}
}

// genericPhrases are filler strings that mark a quiz as not derived from the
// page at all.
var genericPhrases = []string{
	"subscribe",
	"information management",
	"general information processing",
	"data analysis methods",
}

// Validate returns the quiz unchanged when it passes all checks, or a fresh
// heuristic quiz generated from the page when it does not. Regeneration
// happens at most once per call; the regenerated quiz is returned as-is, so
// validation can never loop.
func (v *Validator) Validate(quiz []QuizItem, page PageContent) []QuizItem {
	switch {
	case !v.wellFormed(quiz):
		VerboseLog("validator: malformed quiz, regenerating from page %q", page.Title)
	case v.hasGenericContent(quiz):
		VerboseLog("validator: generic filler detected, regenerating from page %q", page.Title)
	case !v.referencesPage(quiz, page):
		VerboseLog("validator: quiz does not reference page %q, regenerating", page.Title)
	default:
		return quiz
	}
	return v.regenerate(page)
}

func (v *Validator) regenerate(page PageContent) []QuizItem {
	analysis := v.analyzer.Analyze(page.Body, page.Title)
	return v.synthesizer.Synthesize(analysis, page.Body, page.Title)
}

// wellFormed rejects empty quizzes, items without question text, and
// multiple-choice items whose correct answer is not one of the options.
func (v *Validator) wellFormed(quiz []QuizItem) bool {
	if len(quiz) == 0 {
		return false
	}
	for _, item := range quiz {
		if strings.TrimSpace(item.Question) == "" {
			return false
		}
		if item.Kind == KindMultipleChoice {
			found := false
			for _, opt := range item.Options {
				if opt == item.CorrectAnswer {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func (v *Validator) hasGenericContent(quiz []QuizItem) bool {
	for _, item := range quiz {
		text := strings.ToLower(item.Question + " " + strings.Join(item.Options, " "))
		for _, phrase := range genericPhrases {
			if strings.Contains(text, phrase) {
				return true
			}
		}
	}
	return false
}

// referencesPage reports whether at least one item's combined text shares a
// token with the page title (length > 3) or with the first fifty words of
// the body (length > 4).
func (v *Validator) referencesPage(quiz []QuizItem, page PageContent) bool {
	if page.Title == "" && page.Body == "" {
		return true
	}

	titleTokens := tokensLongerThan(strings.Fields(strings.ToLower(page.Title)), 3)
	bodyWords := strings.Fields(strings.ToLower(page.Body))
	if len(bodyWords) > 50 {
		bodyWords = bodyWords[:50]
	}
	bodyTokens := tokensLongerThan(bodyWords, 4)

	for _, item := range quiz {
		all := strings.ToLower(item.Question + " " +
			strings.Join(item.Options, " ") + " " +
			item.CorrectAnswer + " " + item.ReferenceAnswer)
		for _, tok := range titleTokens {
			if strings.Contains(all, tok) {
				return true
			}
		}
		for _, tok := range bodyTokens {
			if strings.Contains(all, tok) {
				return true
			}
		}
	}
	return false
}

func tokensLongerThan(words []string, minLen int) []string {
	out := words[:0:0]
	for _, w := range words {
		if len(w) > minLen {
			out = append(out, w)
		}
	}
	return out
}
