package coachlens

import (
	"context"
	"strings"
	"testing"
)

func TestStudySessionQuizIsCachedUntilReset(t *testing.T) {
	session := NewStudySession(offlineEngine(), knnPage)
	ctx := context.Background()

	first := session.Quiz(ctx)
	if len(first) != QuizSize {
		t.Fatalf("got %d items, want %d", len(first), QuizSize)
	}
	second := session.Quiz(ctx)
	if &first[0] != &second[0] {
		t.Error("Quiz regenerated instead of returning the cached quiz")
	}

	session.ResetQuiz()
	if session.quiz != nil {
		t.Error("ResetQuiz did not clear the cached quiz")
	}
}

func TestStudySessionChatContext(t *testing.T) {
	session := NewStudySession(offlineEngine(), knnPage)
	ctx := context.Background()

	reply := session.Chat(ctx, "What does the k parameter do?")
	if reply == "" {
		t.Fatal("Chat returned an empty reply")
	}

	chatContext := session.buildChatContext()
	if !strings.Contains(chatContext, "CURRENT PAGE: K-Nearest Neighbors") {
		t.Errorf("context %q is missing the page header", chatContext)
	}
	if !strings.Contains(chatContext, "What does the k parameter do?") {
		t.Errorf("context %q is missing the recorded exchange", chatContext)
	}
}

func TestStudySessionChatHistoryTrimmed(t *testing.T) {
	session := NewStudySession(offlineEngine(), knnPage)
	ctx := context.Background()

	for i := 0; i < maxChatExchanges+2; i++ {
		session.Chat(ctx, "question number "+strings.Repeat("x", i+1))
	}
	if len(session.history) != maxChatExchanges {
		t.Errorf("history has %d exchanges, want at most %d", len(session.history), maxChatExchanges)
	}
	// Oldest exchanges fall off first.
	if session.history[0].User == "question number x" {
		t.Error("history kept the oldest exchange instead of the newest")
	}
}

func TestGenerateIDShapeAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := generateID(12)
		if len(id) != 12 {
			t.Fatalf("generateID(12) returned %q with length %d", id, len(id))
		}
		for _, r := range id {
			if !strings.ContainsRune(idCharset, r) {
				t.Fatalf("id %q contains unexpected character %q", id, r)
			}
		}
		seen[id] = struct{}{}
	}
	if len(seen) < 95 {
		t.Errorf("only %d unique IDs out of 100", len(seen))
	}
}
