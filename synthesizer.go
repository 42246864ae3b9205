package coachlens

import (
	"math/rand"
	"regexp"
	"strings"
	"time"
)

const (
	// QuizSize is the number of items every generated quiz carries.
	QuizSize = 3

	maxAnswerLen = 150
	maxOptionLen = 50
)

// Synthesizer turns a ContentAnalysis into a fixed-size quiz. A template
// family is selected by content type; each family consumes analysis fields
// in its own priority order and pads from generic fields when its preferred
// sources are empty, so Synthesize always returns exactly QuizSize items.
//
// Distractors are drawn from fixed per-family pools at random with no
// uniqueness guarantee: two options may carry the same text. That is a known
// limitation of the pool approach, kept deliberately.
type Synthesizer struct {
	rng *rand.Rand
}

// NewSynthesizer creates a synthesizer. A nil rng falls back to a
// time-seeded source; tests inject a fixed seed to pin distractor choices.
func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{rng: rng}
}

// Distractor pools per template family. Generic by design: distractors are
// never derived from page content, only the correct answer is.
var (
	algorithmDistractors = []string{
		"random sampling", "linear regression", "decision trees",
		"gradient descent", "brute-force search",
	}
	recipeDistractors = []string{
		"basic flour", "regular water", "standard salt",
		"plain butter", "white sugar",
	}
	historyDistractors = []string{
		"an undocumented regional event", "a minor local figure",
		"an unrelated later period", "a disputed folk account",
	}
	conceptDistractors = []string{
		"Data processing workflows", "System optimization techniques",
		"Content organization", "Knowledge representation",
		"Pattern recognition", "Knowledge extraction",
	}
	classifyDistractors = []string{
		"General reference", "News article", "Personal blog",
		"Product catalog", "Discussion forum",
	}
)

var (
	stepPrefixRe    = regexp.MustCompile(`(?i)^(?:step|stage|phase)\s+\d+[:.]?\s*`)
	examplePrefixRe = regexp.MustCompile(`(?i)^(?:for example|such as|including|like)[:\s]*`)
)

// Synthesize builds exactly QuizSize quiz items from the analysis. rawText
// and title back the padding questions when the analysis fields run dry.
func (s *Synthesizer) Synthesize(analysis ContentAnalysis, rawText, title string) []QuizItem {
	var items []QuizItem
	switch analysis.ContentType {
	case ContentTypeAlgorithm:
		items = s.algorithmItems(analysis)
	case ContentTypeRecipe:
		items = s.recipeItems(analysis)
	case ContentTypeHistorical:
		items = s.historyItems(analysis)
	case ContentTypeResearch:
		items = s.researchItems(analysis)
	default:
		items = s.generalItems(analysis)
	}

	items = s.pad(items, analysis, title)
	return items[:QuizSize]
}

func (s *Synthesizer) algorithmItems(analysis ContentAnalysis) []QuizItem {
	items := []QuizItem{}
	if len(analysis.Processes) > 0 {
		answer := stepPrefixRe.ReplaceAllString(analysis.Processes[0], "")
		items = append(items, s.freeText(
			"How does the algorithm work? What is the key process involved?", answer))
	}
	if len(analysis.NumericalData) > 0 {
		items = append(items, s.freeText(
			"What is a critical parameter or value mentioned in this algorithm, and what does it control?",
			analysis.NumericalData[0]))
	}
	if len(analysis.Examples) > 0 {
		answer := examplePrefixRe.ReplaceAllString(analysis.Examples[0], "")
		items = append(items, s.freeText(
			"What are the main applications or use cases for this algorithm?", answer))
	}
	if len(items) < QuizSize && len(analysis.KeyConcepts) > 0 {
		items = append(items, s.multipleChoice(
			"What is the fundamental concept that this algorithm is based on?",
			analysis.KeyConcepts[0], algorithmDistractors))
	}
	return items
}

func (s *Synthesizer) recipeItems(analysis ContentAnalysis) []QuizItem {
	items := []QuizItem{}
	if len(analysis.Processes) > 0 {
		answer := stepPrefixRe.ReplaceAllString(analysis.Processes[0], "")
		items = append(items, s.freeText(
			"What is a key cooking technique or method described in this recipe?", answer))
	}
	if len(analysis.NumericalData) > 0 {
		items = append(items, s.freeText(
			"What specific measurement, temperature, or timing is mentioned?",
			analysis.NumericalData[0]))
	}
	if len(analysis.KeyConcepts) > 0 {
		items = append(items, s.multipleChoice(
			"What is a key ingredient or equipment mentioned in this recipe?",
			analysis.KeyConcepts[0], recipeDistractors))
	}
	return items
}

func (s *Synthesizer) historyItems(analysis ContentAnalysis) []QuizItem {
	items := []QuizItem{}
	if len(analysis.MainPoints) > 0 {
		items = append(items, s.freeText(
			"What is the historical significance or main impact discussed?",
			analysis.MainPoints[0]))
	}
	if len(analysis.NumericalData) > 0 {
		items = append(items, s.freeText(
			"What specific date, year, or time period is mentioned?",
			analysis.NumericalData[0]))
	}
	if len(analysis.KeyConcepts) > 0 {
		items = append(items, s.multipleChoice(
			"What is a key historical figure, event, or concept discussed?",
			analysis.KeyConcepts[0], historyDistractors))
	}
	return items
}

func (s *Synthesizer) researchItems(analysis ContentAnalysis) []QuizItem {
	items := []QuizItem{}
	if len(analysis.Processes) > 0 {
		items = append(items, s.freeText(
			"What research methodology or approach is described?",
			analysis.Processes[0]))
	}
	if len(analysis.NumericalData) > 0 {
		items = append(items, s.freeText(
			"What specific result, statistic, or measurement is reported?",
			analysis.NumericalData[0]))
	}
	if len(analysis.Relationships) > 0 {
		items = append(items, s.freeText(
			"What is an important finding or relationship discovered in this research?",
			analysis.Relationships[0]))
	}
	return items
}

func (s *Synthesizer) generalItems(analysis ContentAnalysis) []QuizItem {
	items := []QuizItem{}
	if len(analysis.KeyConcepts) > 0 {
		items = append(items, s.multipleChoice(
			"What is the core concept or principle discussed in this content?",
			analysis.KeyConcepts[0], conceptDistractors))
	}
	if len(analysis.Relationships) > 0 {
		items = append(items, s.freeText(
			"What is an important relationship or connection explained in this content?",
			analysis.Relationships[0]))
	}
	if len(analysis.NumericalData) > 0 {
		items = append(items, s.freeText(
			"What specific measurement, value, or quantitative detail is mentioned?",
			analysis.NumericalData[0]))
	}
	if len(items) < QuizSize && len(analysis.MainPoints) > 0 {
		items = append(items, s.freeText(
			"What is a key insight or main point from this content?",
			analysis.MainPoints[0]))
	}
	return items
}

// pad fills the quiz up to QuizSize from fields every family shares, ending
// with a classify-the-content item whose answer is the classification
// itself. That final item can always be produced, so padding never fails.
func (s *Synthesizer) pad(items []QuizItem, analysis ContentAnalysis, title string) []QuizItem {
	if len(items) < QuizSize && len(analysis.KeyTerms) > 0 {
		items = append(items, s.multipleChoice(
			"Which of the following terms is frequently mentioned in this content?",
			analysis.KeyTerms[0], conceptDistractors))
	}
	if len(items) < QuizSize && len(analysis.NamedEntities) > 0 {
		items = append(items, s.freeText(
			"What specific term or name is mentioned in this content?",
			analysis.NamedEntities[0]))
	}
	if len(items) < QuizSize && len(title) > 5 {
		items = append(items, s.multipleChoice(
			"What is the main topic of this page?", title, conceptDistractors))
	}
	for len(items) < QuizSize {
		label := contentTypeLabel(title)
		items = append(items, s.multipleChoice(
			"Based on the content, what type of information is this?",
			label, classifyDistractors))
	}
	return items
}

// freeText builds a free-text item, truncating long reference answers.
func (s *Synthesizer) freeText(question, answer string) QuizItem {
	return QuizItem{
		Kind:            KindFreeText,
		Question:        truncateText(question, maxAnswerLen),
		ReferenceAnswer: truncateText(strings.TrimSpace(answer), maxAnswerLen),
	}
}

// multipleChoice builds a four-option item. The truncated correct answer is
// canonical: it appears verbatim as the first option.
func (s *Synthesizer) multipleChoice(question, correct string, pool []string) QuizItem {
	correct = truncateText(strings.TrimSpace(correct), maxOptionLen)
	options := make([]string, 0, 4)
	options = append(options, correct)
	for i := 0; i < 3; i++ {
		options = append(options, pool[s.rng.Intn(len(pool))])
	}
	return QuizItem{
		Kind:          KindMultipleChoice,
		Question:      truncateText(question, maxAnswerLen),
		Options:       options,
		CorrectAnswer: correct,
	}
}

// contentTypeLabel maps a page title to a human-readable classification used
// by the padding fallback question.
func contentTypeLabel(title string) string {
	if title == "" {
		return "Web content"
	}
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "algorithm") || strings.Contains(lower, "machine learning") ||
		strings.Contains(lower, "knn") || strings.Contains(lower, "neural"):
		return "Machine Learning/AI content"
	case strings.Contains(lower, "recipe") || strings.Contains(lower, "cooking") ||
		strings.Contains(lower, "food"):
		return "Recipe/Cooking guide"
	case strings.Contains(lower, "news") || strings.Contains(lower, "breaking") ||
		strings.Contains(lower, "report"):
		return "News article"
	case strings.Contains(lower, "tutorial") || strings.Contains(lower, "guide") ||
		strings.Contains(lower, "how to"):
		return "Tutorial/Guide"
	case strings.Contains(lower, "wikipedia") || strings.Contains(lower, "encyclopedia"):
		return "Educational reference"
	default:
		return "Informational content"
	}
}
