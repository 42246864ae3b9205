package coachlens

import (
	"regexp"
	"sort"
	"strings"
)

// Analyzer extracts structure from raw page text: genre and domain
// classification, repeated concepts and terms, numeric facts, named
// entities, and the process/relationship/definition/example snippets the
// question synthesizer feeds on. Analyze never fails; degenerate input
// produces an analysis with empty slices and the general classifications.
type Analyzer struct{}

// NewAnalyzer creates a new text analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// classifierRule pairs a label with the keywords that vote for it. Rules are
// checked in slice order; the first rule with any keyword present wins.
type classifierRule[T ~string] struct {
	label    T
	keywords []string
}

var contentTypeRules = []classifierRule[ContentType]{
	{ContentTypeAlgorithm, []string{"algorithm", "machine learning"}},
	{ContentTypeRecipe, []string{"recipe", "ingredients", "cooking"}},
	{ContentTypeHistorical, []string{"history", "historical", "century"}},
	{ContentTypeTutorial, []string{"tutorial", "how to", "step"}},
	{ContentTypeResearch, []string{"research", "study", "analysis"}},
	{ContentTypeNews, []string{"news", "reported", "breaking"}},
}

var domainRules = []classifierRule[Domain]{
	{DomainAI, []string{"machine learning", "ai", "neural"}},
	{DomainComputerScience, []string{"programming", "code", "software"}},
	{DomainLifeSciences, []string{"biology", "medical", "health"}},
	{DomainPhysicalSciences, []string{"physics", "chemistry", "mathematics"}},
	{DomainBusiness, []string{"business", "marketing", "finance"}},
	{DomainCulinary, []string{"cooking", "food", "recipe"}},
}

func classify[T ~string](combined string, rules []classifierRule[T], fallback T) T {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(combined, kw) {
				return rule.label
			}
		}
	}
	return fallback
}

// patternRule is one extraction regex with its per-pattern match cap.
type patternRule struct {
	re  *regexp.Regexp
	cap int
}

var processRules = []patternRule{
	{regexp.MustCompile(`(?i)(?:step|stage|phase)\s+\d+[:.]?\s*[^.!?]+`), 3},
	{regexp.MustCompile(`(?i)(?:first|second|third|then|next|finally)[,\s]+[^.!?]+`), 3},
	{regexp.MustCompile(`(?i)(?:algorithm|process|method)\s+(?:works|involves|includes)[:\s]*[^.!?]+`), 3},
}

var relationshipRules = []patternRule{
	{regexp.MustCompile(`(?i)[^.!?]+\s(?:causes?|leads? to|results? in)\s[^.!?]+`), 2},
	{regexp.MustCompile(`(?i)[^.!?]+\s(?:compared to|versus|vs\.?|unlike)\s[^.!?]+`), 2},
	{regexp.MustCompile(`(?i)[^.!?]+\s(?:depends on|relies on|is based on)\s[^.!?]+`), 2},
}

var exampleRules = []patternRule{
	{regexp.MustCompile(`(?i)(?:for example|such as|including|like)[:\s]*[^.!?]+`), 3},
	{regexp.MustCompile(`(?i)(?:applications?|uses?|examples?)[:\s]*[^.!?]+`), 3},
}

var numericRules = []patternRule{
	{regexp.MustCompile(`\b\d+(?:\.\d+)?(?:\s*(?:%|°[CF]|degrees?|kg|g|ml|l|minutes?|hours?|seconds?|days?|years?))?`), 6},
	{regexp.MustCompile(`(?i)(?:accuracy|precision|recall|f1-score|error rate)[:\s]+\d+(?:\.\d+)?%?`), 6},
	{regexp.MustCompile(`(?i)\b[knp]\s*=\s*\d+`), 6},
}

var definitionRules = []patternRule{
	{regexp.MustCompile(`([A-Z][a-zA-Z \-]+?)\s+(?:is|are|refers to|means|defined as)\s+([^.!?]+)`), 5},
	{regexp.MustCompile(`([A-Z][a-zA-Z \-]+?):\s*([^.!?]+)`), 5},
}

var entityRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

// emphasisKeywords mark sentences that likely carry the page's main points.
var emphasisKeywords = []string{"important", "key", "main", "primary", "essential", "crucial", "significant"}

const (
	maxKeyConcepts   = 8
	maxKeyTerms      = 5
	maxNumericData   = 6
	maxNamedEntities = 3
	maxProcesses     = 5
	maxRelationships = 4
	maxDefinitions   = 5
	maxExamples      = 4
	maxMainPoints    = 5
)

// Analyze derives a ContentAnalysis from raw page text and its title.
func (a *Analyzer) Analyze(text, title string) ContentAnalysis {
	combined := strings.ToLower(title + " " + text)
	sentences := splitSentences(text, 20)
	words := strings.Fields(text)

	analysis := ContentAnalysis{
		ContentType:   classify(combined, contentTypeRules, ContentTypeGeneral),
		Domain:        classify(combined, domainRules, DomainGeneral),
		KeyConcepts:   a.extractKeyConcepts(words),
		KeyTerms:      a.extractKeyTerms(text),
		Processes:     matchRules(text, processRules, maxProcesses),
		Relationships: matchRules(text, relationshipRules, maxRelationships),
		Definitions:   a.extractDefinitions(text),
		NumericalData: a.extractNumericalData(text),
		NamedEntities: a.extractNamedEntities(text),
		Examples:      matchRules(text, exampleRules, maxExamples),
		MainPoints:    a.extractMainPoints(sentences),
		SentenceCount: len(sentences),
		WordCount:     len(words),
	}
	return analysis
}

// matchRules runs each pattern in order, keeping at most its own cap of
// matches, and returns at most total snippets overall.
func matchRules(text string, rules []patternRule, total int) []string {
	out := []string{}
	for _, rule := range rules {
		matches := rule.re.FindAllString(text, -1)
		if len(matches) > rule.cap {
			matches = matches[:rule.cap]
		}
		for _, m := range matches {
			out = append(out, strings.TrimSpace(m))
		}
	}
	if len(out) > total {
		out = out[:total]
	}
	return out
}

// freqEntry tracks one counted value with its first-seen position so ties
// resolve in document order.
type freqEntry struct {
	value string
	count int
	first int
}

func topByFrequency(counts map[string]*freqEntry, minCount, limit int) []string {
	entries := make([]*freqEntry, 0, len(counts))
	for _, e := range counts {
		if e.count > minCount {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].first < entries[j].first
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}

func countPhrase(counts map[string]*freqEntry, phrase string, pos int) {
	clean := normalizePhrase(phrase)
	if clean == "" {
		return
	}
	if e, ok := counts[clean]; ok {
		e.count++
	} else {
		counts[clean] = &freqEntry{value: clean, count: 1, first: pos}
	}
}

// extractKeyConcepts builds every 2- and 3-word sliding window, drops short
// windows and stock phrases, and keeps the most repeated normalized phrases.
func (a *Analyzer) extractKeyConcepts(words []string) []string {
	counts := make(map[string]*freqEntry)
	for i := 0; i < len(words)-2; i++ {
		twoWord := words[i] + " " + words[i+1]
		threeWord := twoWord + " " + words[i+2]
		if len(twoWord) > 6 && !isStopPhrase(twoWord) {
			countPhrase(counts, twoWord, i)
		}
		if len(threeWord) > 10 && !isStopPhrase(threeWord) {
			countPhrase(counts, threeWord, i)
		}
	}
	return topByFrequency(counts, 1, maxKeyConcepts)
}

// extractKeyTerms keeps the most repeated single words longer than three
// characters that are not stop words.
func (a *Analyzer) extractKeyTerms(text string) []string {
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(text), " ")
	counts := make(map[string]*freqEntry)
	for i, word := range strings.Fields(cleaned) {
		if len(word) <= 3 || isStopWord(word) {
			continue
		}
		if e, ok := counts[word]; ok {
			e.count++
		} else {
			counts[word] = &freqEntry{value: word, count: 1, first: i}
		}
	}
	return topByFrequency(counts, 1, maxKeyTerms)
}

// extractNumericalData collects numeric facts from all numeric patterns,
// ordered by position in the document. Duplicates and overlapping matches
// are allowed.
func (a *Analyzer) extractNumericalData(text string) []string {
	type posMatch struct {
		pos  int
		text string
	}
	var found []posMatch
	for _, rule := range numericRules {
		for _, loc := range a.findAll(rule, text) {
			found = append(found, posMatch{pos: loc[0], text: text[loc[0]:loc[1]]})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	out := []string{}
	for _, m := range found {
		out = append(out, m.text)
		if len(out) == maxNumericData {
			break
		}
	}
	return out
}

func (a *Analyzer) findAll(rule patternRule, text string) [][]int {
	return rule.re.FindAllStringIndex(text, -1)
}

// extractNamedEntities returns the first few Title-Case token runs that are
// not stop words.
func (a *Analyzer) extractNamedEntities(text string) []string {
	out := []string{}
	for _, m := range entityRe.FindAllString(text, -1) {
		if len(m) > 2 && !isStopWord(m) {
			out = append(out, m)
			if len(out) == maxNamedEntities {
				break
			}
		}
	}
	return out
}

// extractDefinitions captures "X is/means/refers to Y" style statements,
// skipping terms too long to be a real term.
func (a *Analyzer) extractDefinitions(text string) []Definition {
	out := []Definition{}
	for _, rule := range definitionRules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			term := strings.TrimSpace(m[1])
			def := strings.TrimSpace(m[2])
			if term == "" || def == "" || len(term) >= 50 {
				continue
			}
			out = append(out, Definition{Term: term, Definition: def})
			if len(out) == maxDefinitions {
				return out
			}
		}
	}
	return out
}

// extractMainPoints keeps sentences that either carry an emphasis keyword or
// sit in the 100-300 character band typical of substantive statements.
func (a *Analyzer) extractMainPoints(sentences []string) []string {
	out := []string{}
	for _, s := range sentences {
		lower := strings.ToLower(s)
		emphasized := false
		for _, kw := range emphasisKeywords {
			if strings.Contains(lower, kw) {
				emphasized = true
				break
			}
		}
		if emphasized || (len(s) >= 100 && len(s) <= 300) {
			out = append(out, s)
			if len(out) == maxMainPoints {
				break
			}
		}
	}
	return out
}
