package coachlens

import (
	"math/rand"
	"strings"
	"testing"
)

func testValidator() *Validator {
	return NewValidator(NewAnalyzer(), NewSynthesizer(rand.New(rand.NewSource(1))))
}

var knnPage = PageContent{
	Title: "K-Nearest Neighbors",
	URL:   "https://example.org/knn",
	Body:  knnArticle,
}

func relevantQuiz() []QuizItem {
	return []QuizItem{
		{
			Kind:          KindMultipleChoice,
			Question:      "What does the neighbors parameter control?",
			Options:       []string{"The neighborhood size", "The learning rate", "The batch size", "The epoch count"},
			CorrectAnswer: "The neighborhood size",
		},
		{
			Kind:            KindFreeText,
			Question:        "How does the algorithm classify a query point?",
			ReferenceAnswer: "By letting the closest training points vote",
		},
		{
			Kind:            KindFreeText,
			Question:        "What accuracy did the model reach?",
			ReferenceAnswer: "92%",
		},
	}
}

func TestValidatePassesRelevantQuiz(t *testing.T) {
	quiz := relevantQuiz()
	got := testValidator().Validate(quiz, knnPage)

	if len(got) != len(quiz) {
		t.Fatalf("got %d items, want the original %d", len(got), len(quiz))
	}
	for i := range quiz {
		if got[i].Question != quiz[i].Question {
			t.Errorf("item %d question changed from %q to %q", i, quiz[i].Question, got[i].Question)
		}
	}
}

func TestValidateRegeneratesEmptyQuiz(t *testing.T) {
	got := testValidator().Validate(nil, knnPage)

	if len(got) != QuizSize {
		t.Fatalf("got %d items, want a regenerated quiz of %d", len(got), QuizSize)
	}
}

func TestValidateRegeneratesMalformedMultipleChoice(t *testing.T) {
	quiz := relevantQuiz()
	quiz[0].CorrectAnswer = "An answer that is not an option"

	got := testValidator().Validate(quiz, knnPage)
	for _, item := range got {
		if item.Kind != KindMultipleChoice {
			continue
		}
		found := false
		for _, opt := range item.Options {
			if opt == item.CorrectAnswer {
				found = true
			}
		}
		if !found {
			t.Errorf("regenerated item %q still has correct answer %q outside its options", item.Question, item.CorrectAnswer)
		}
	}
}

func TestValidateRegeneratesGenericQuiz(t *testing.T) {
	generic := []QuizItem{
		{
			Kind:          KindMultipleChoice,
			Question:      "What is the best way to stay informed?",
			Options:       []string{"Subscribe to our newsletter", "Read books", "Watch videos", "Ask friends"},
			CorrectAnswer: "Subscribe to our newsletter",
		},
		{
			Kind:            KindFreeText,
			Question:        "What is information management?",
			ReferenceAnswer: "Organizing data",
		},
		{
			Kind:            KindFreeText,
			Question:        "Name some data analysis methods.",
			ReferenceAnswer: "Various methods",
		},
	}

	got := testValidator().Validate(generic, knnPage)
	if len(got) != QuizSize {
		t.Fatalf("got %d items, want %d", len(got), QuizSize)
	}
	for _, item := range got {
		text := strings.ToLower(item.Question + " " + strings.Join(item.Options, " "))
		for _, phrase := range genericPhrases {
			if strings.Contains(text, phrase) {
				t.Errorf("regenerated item %q still contains generic phrase %q", item.Question, phrase)
			}
		}
	}
}

func TestValidateRegeneratesUnrelatedQuiz(t *testing.T) {
	unrelated := []QuizItem{
		{
			Kind:            KindFreeText,
			Question:        "Who won the cup final?",
			ReferenceAnswer: "Nobody",
		},
		{
			Kind:            KindFreeText,
			Question:        "When did it happen?",
			ReferenceAnswer: "Never",
		},
		{
			Kind:            KindFreeText,
			Question:        "Why would it?",
			ReferenceAnswer: "Who can say",
		},
	}

	got := testValidator().Validate(unrelated, knnPage)
	if got[0].Question == unrelated[0].Question {
		t.Error("quiz unrelated to the page was returned unchanged")
	}
}

func TestValidateAcceptsAnyQuizForEmptyPage(t *testing.T) {
	quiz := relevantQuiz()
	got := testValidator().Validate(quiz, PageContent{})

	if got[0].Question != quiz[0].Question {
		t.Error("quiz should pass relevance checks when the page carries no text")
	}
}
