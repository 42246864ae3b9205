package coachlens

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// maxChatExchanges bounds how much conversation history rides along with
// each chat request.
const maxChatExchanges = 3

// chatExchange is one user/assistant round trip.
type chatExchange struct {
	User      string
	Assistant string
}

// StudySession is the explicit per-user session context: the page being
// studied, the engine handling requests, the current quiz, and the
// accumulating chat history. All mutable interaction state lives here
// instead of in package globals; the caller serializes access (one user
// action in flight at a time).
type StudySession struct {
	ID      string
	engine  *Engine
	page    PageContent
	quiz    []QuizItem
	history []chatExchange
	started time.Time
}

// NewStudySession opens a session for one page.
func NewStudySession(engine *Engine, page PageContent) *StudySession {
	return &StudySession{
		ID:      generateID(12),
		engine:  engine,
		page:    page,
		started: time.Now(),
	}
}

// Page returns the session's page content.
func (s *StudySession) Page() PageContent { return s.page }

// Quiz returns the session's current quiz, generating one on first use.
func (s *StudySession) Quiz(ctx context.Context) []QuizItem {
	if s.quiz == nil {
		s.quiz = s.engine.GenerateQuiz(ctx, s.page)
	}
	return s.quiz
}

// ResetQuiz discards the current quiz so the next Quiz call regenerates.
func (s *StudySession) ResetQuiz() {
	s.quiz = nil
}

// Summarize produces a summary of the session's page.
func (s *StudySession) Summarize(ctx context.Context) string {
	return s.engine.Summarize(ctx, s.page)
}

// Explain explains a selected passage from the session's page.
func (s *StudySession) Explain(ctx context.Context, selectedText string) string {
	return s.engine.Explain(ctx, selectedText)
}

// Chat sends one user message with the accumulated page and conversation
// context and records the exchange.
func (s *StudySession) Chat(ctx context.Context, message string) string {
	resp, err := s.engine.Router().Respond(ctx, KindChat, message, s.buildChatContext())
	answer := resp.Text
	if err != nil {
		answer = mockResponse(KindChat, message, s.buildChatContext())
	}

	s.history = append(s.history, chatExchange{User: message, Assistant: answer})
	if len(s.history) > maxChatExchanges {
		s.history = s.history[len(s.history)-maxChatExchanges:]
	}
	return answer
}

// buildChatContext assembles the page preview plus recent exchanges that
// ground every chat request in what the user is actually reading.
func (s *StudySession) buildChatContext() string {
	var sb strings.Builder
	if s.page.Title != "" || s.page.Body != "" {
		fmt.Fprintf(&sb, "CURRENT PAGE: %s\n", s.page.Title)
		fmt.Fprintf(&sb, "PAGE CONTENT: %s\n", truncateText(s.page.Body, 500))
	}
	for _, ex := range s.history {
		fmt.Fprintf(&sb, "\nUSER: %s\nASSISTANT: %s\n", ex.User, truncateText(ex.Assistant, 200))
	}
	return sb.String()
}

const idCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// generateID returns a short random identifier for sessions and library
// items.
func generateID(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = idCharset[rand.Intn(len(idCharset))]
	}
	return string(b)
}
