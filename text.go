package coachlens

import (
	"regexp"
	"strings"
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	nonWordRe       = regexp.MustCompile(`[^\w\s-]`)
	phraseCleanRe   = regexp.MustCompile(`[^\w\s]`)
)

// stopWords are single tokens too common to carry meaning.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
		"this", "that", "these", "those", "is", "are", "was", "were", "be", "been",
		"have", "has", "had", "do", "does", "did", "will", "would", "could", "should",
		"can", "may", "might", "must", "shall", "from", "into", "onto", "upon",
		"about", "above", "below", "between", "through", "during", "before", "after",
		"while", "when", "where", "why", "how", "what", "which", "who", "whom",
		"very", "more", "most", "some", "any", "all", "each", "every", "other",
		"such", "only", "own", "same", "so", "than", "too", "also", "just",
	} {
		stopWords[w] = struct{}{}
	}
}

// stopPhrases are multi-word windows with no topical value.
var stopPhrases = map[string]struct{}{}

func init() {
	for _, p := range []string{
		"in the", "of the", "to the", "for the", "on the", "at the", "by the",
		"this is", "that is", "it is", "there are", "there is", "you can",
		"we can", "they are", "will be", "can be", "may be", "should be",
	} {
		stopPhrases[p] = struct{}{}
	}
}

func isStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

func isStopPhrase(phrase string) bool {
	_, ok := stopPhrases[strings.ToLower(phrase)]
	return ok
}

// splitSentences splits text on sentence terminators and keeps trimmed
// sentences longer than minLen.
func splitSentences(text string, minLen int) []string {
	parts := sentenceSplitRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > minLen {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// truncateText shortens text to maxLen runes, appending an ellipsis marker
// when anything was cut.
func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}

// equalFold compares two answers ignoring case and surrounding whitespace.
func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// normalizePhrase lowercases a phrase and strips punctuation so repeated
// phrases count as one regardless of surrounding marks.
func normalizePhrase(phrase string) string {
	return strings.TrimSpace(phraseCleanRe.ReplaceAllString(strings.ToLower(phrase), ""))
}
