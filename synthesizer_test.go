package coachlens

import (
	"math/rand"
	"strings"
	"testing"
)

func testSynthesizer() *Synthesizer {
	return NewSynthesizer(rand.New(rand.NewSource(1)))
}

func TestSynthesizeAlgorithmContent(t *testing.T) {
	analysis := NewAnalyzer().Analyze(knnArticle, "K-Nearest Neighbors")
	if analysis.ContentType != ContentTypeAlgorithm {
		t.Fatalf("ContentType = %q, want %q", analysis.ContentType, ContentTypeAlgorithm)
	}

	quiz := testSynthesizer().Synthesize(analysis, knnArticle, "K-Nearest Neighbors")
	if len(quiz) != QuizSize {
		t.Fatalf("got %d items, want %d", len(quiz), QuizSize)
	}

	first := quiz[0]
	if first.Kind != KindFreeText {
		t.Fatalf("first item Kind = %q, want %q", first.Kind, KindFreeText)
	}
	if !strings.Contains(first.Question, "algorithm") {
		t.Errorf("first question = %q, want it to ask about the algorithm", first.Question)
	}
	if !strings.Contains(strings.ToLower(first.ReferenceAnswer), "computing the distance") {
		t.Errorf("first reference answer = %q, want the process description", first.ReferenceAnswer)
	}

	second := quiz[1]
	if second.ReferenceAnswer != "k=5" {
		t.Errorf("second reference answer = %q, want the first numeric fact %q", second.ReferenceAnswer, "k=5")
	}
}

func TestSynthesizePadsEmptyAnalysis(t *testing.T) {
	quiz := testSynthesizer().Synthesize(ContentAnalysis{
		ContentType: ContentTypeGeneral,
		Domain:      DomainGeneral,
	}, "", "")

	if len(quiz) != QuizSize {
		t.Fatalf("got %d items, want %d", len(quiz), QuizSize)
	}
	for i, item := range quiz {
		if item.Kind != KindMultipleChoice {
			t.Errorf("item %d Kind = %q, want %q", i, item.Kind, KindMultipleChoice)
		}
		if item.CorrectAnswer != "Web content" {
			t.Errorf("item %d CorrectAnswer = %q, want the fallback classification", i, item.CorrectAnswer)
		}
	}
}

func TestSynthesizeMultipleChoiceShape(t *testing.T) {
	analysis := ContentAnalysis{
		ContentType: ContentTypeGeneral,
		KeyConcepts: []string{"spaced repetition"},
	}
	quiz := testSynthesizer().Synthesize(analysis, "", "Study Techniques")

	item := quiz[0]
	if item.Kind != KindMultipleChoice {
		t.Fatalf("Kind = %q, want %q", item.Kind, KindMultipleChoice)
	}
	if len(item.Options) != 4 {
		t.Fatalf("got %d options, want 4", len(item.Options))
	}
	if item.Options[0] != item.CorrectAnswer {
		t.Errorf("Options[0] = %q, want the correct answer %q first", item.Options[0], item.CorrectAnswer)
	}
	if item.CorrectAnswer != "spaced repetition" {
		t.Errorf("CorrectAnswer = %q, want %q", item.CorrectAnswer, "spaced repetition")
	}
}

func TestSynthesizeTruncatesLongAnswers(t *testing.T) {
	long := strings.Repeat("a very long key concept ", 20)
	analysis := ContentAnalysis{
		ContentType: ContentTypeGeneral,
		KeyConcepts: []string{long},
	}
	quiz := testSynthesizer().Synthesize(analysis, "", "")

	item := quiz[0]
	if len(item.CorrectAnswer) > maxOptionLen+len("...") {
		t.Errorf("CorrectAnswer length = %d, want at most %d plus the ellipsis", len(item.CorrectAnswer), maxOptionLen)
	}
	if item.Options[0] != item.CorrectAnswer {
		t.Error("truncated correct answer must still appear verbatim as an option")
	}
}

func TestContentTypeLabel(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"", "Web content"},
		{"KNN from scratch", "Machine Learning/AI content"},
		{"Grandma's Apple Pie Recipe", "Recipe/Cooking guide"},
		{"Breaking: markets tumble", "News article"},
		{"Beginner's Guide to Soldering", "Tutorial/Guide"},
		{"Photosynthesis - Wikipedia", "Educational reference"},
		{"My trip to the coast", "Informational content"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := contentTypeLabel(tt.title); got != tt.want {
				t.Errorf("contentTypeLabel(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
