package coachlens

import "time"

// PageContent is a snapshot of one web page, produced by the page extractor.
// It is immutable once captured and is the source of truth for one analysis
// cycle.
type PageContent struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Body      string `json:"body"`
	WordCount int    `json:"word_count"`
	Language  string `json:"language,omitempty"`
}

// ContentType is a coarse genre classification of page text.
type ContentType string

const (
	ContentTypeAlgorithm  ContentType = "technical_algorithm"
	ContentTypeRecipe     ContentType = "recipe_guide"
	ContentTypeHistorical ContentType = "historical_content"
	ContentTypeTutorial   ContentType = "tutorial_guide"
	ContentTypeResearch   ContentType = "research_academic"
	ContentTypeNews       ContentType = "news_article"
	ContentTypeGeneral    ContentType = "general_informational"
)

// Domain is a coarse subject-matter classification.
type Domain string

const (
	DomainAI               Domain = "artificial_intelligence"
	DomainComputerScience  Domain = "computer_science"
	DomainLifeSciences     Domain = "life_sciences"
	DomainPhysicalSciences Domain = "physical_sciences"
	DomainBusiness         Domain = "business"
	DomainCulinary         Domain = "culinary"
	DomainGeneral          Domain = "general"
)

// Definition is a (term, definition) pair extracted from page text.
type Definition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// ContentAnalysis is the result of analyzing one page. Every field is a
// best-effort extraction: an empty slice means the signal was not found and
// is a valid result, never an error. An analysis is recomputed per request
// and never persisted.
type ContentAnalysis struct {
	ContentType   ContentType  `json:"content_type"`
	Domain        Domain       `json:"domain"`
	KeyConcepts   []string     `json:"key_concepts"`
	KeyTerms      []string     `json:"key_terms"`
	Processes     []string     `json:"processes"`
	Relationships []string     `json:"relationships"`
	Definitions   []Definition `json:"definitions"`
	NumericalData []string     `json:"numerical_data"`
	NamedEntities []string     `json:"named_entities"`
	Examples      []string     `json:"examples"`
	MainPoints    []string     `json:"main_points"`
	SentenceCount int          `json:"sentence_count"`
	WordCount     int          `json:"word_count"`
}

// QuizItemKind discriminates the two quiz item shapes.
type QuizItemKind string

const (
	KindMultipleChoice QuizItemKind = "multiple_choice"
	KindFreeText       QuizItemKind = "free_text"
)

// QuizItem is a single quiz question. Kind selects the variant:
// multiple-choice items carry exactly four Options with CorrectAnswer equal
// to one of them verbatim; free-text items carry only a ReferenceAnswer.
type QuizItem struct {
	Kind            QuizItemKind `json:"kind"`
	Question        string       `json:"question"`
	Options         []string     `json:"options,omitempty"`
	CorrectAnswer   string       `json:"correct_answer,omitempty"`
	ReferenceAnswer string       `json:"reference_answer,omitempty"`
}

// QuizAttempt records one student response to one quiz item along with the
// grader's verdict.
type QuizAttempt struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
}

// QuizResult is an aggregated quiz score kept in the quiz history.
type QuizResult struct {
	Date       time.Time `json:"date"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
}

// LibraryItemType identifies what kind of study aid a library item holds.
type LibraryItemType string

const (
	ItemSummary     LibraryItemType = "summary"
	ItemExplanation LibraryItemType = "explanation"
	ItemQuiz        LibraryItemType = "quiz"
	ItemChat        LibraryItemType = "chat"
)

// LibraryItem is one saved study aid in the timeline library. Content holds
// prose output; Quiz holds the generated items when Type is ItemQuiz.
type LibraryItem struct {
	ID        string          `json:"id"`
	Type      LibraryItemType `json:"type"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Quiz      []QuizItem      `json:"quiz,omitempty"`
	URL       string          `json:"url"`
	Timestamp time.Time       `json:"timestamp"`
}

// RequestKind selects which study aid the AI router produces.
type RequestKind string

const (
	KindSummarize RequestKind = "summarize"
	KindExplain   RequestKind = "explain"
	KindQuiz      RequestKind = "quiz"
	KindChat      RequestKind = "chat"
	KindCompare   RequestKind = "compare"
)

// AIMode is the router's session-wide inference mode.
type AIMode string

const (
	ModeOnDevice AIMode = "on-device"
	ModeCloud    AIMode = "cloud"
	ModeMock     AIMode = "cloud-fallback-mock"
)

// Availability is the result of probing the on-device model.
type Availability string

const (
	AvailabilityReadily       Availability = "readily"
	AvailabilityAfterDownload Availability = "after-download"
	AvailabilityUnavailable   Availability = "unavailable"
)
