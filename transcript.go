package coachlens

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Transcript records every AI interaction of one study session to a file:
// prompts, responses, and fallback transitions. It exists for debugging the
// fallback chain after the fact, not for end users.
type Transcript struct {
	file      *os.File
	mu        sync.Mutex
	sessionID string
}

// NewTranscript creates a transcript log for one session under dir.
func NewTranscript(dir, sessionID string) (*Transcript, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", sessionID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}

	t := &Transcript{file: file, sessionID: sessionID}
	t.logf("=== Study Session Transcript ===\n")
	t.logf("Session ID: %s\n", sessionID)
	t.logf("Started: %s\n\n", time.Now().Format(time.RFC3339))
	return t, nil
}

func (t *Transcript) logf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(t.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	t.file.Sync()
}

// LogRequest records an outgoing prompt.
func (t *Transcript) LogRequest(mode, kind, prompt string) {
	t.logf("=== REQUEST (%s, %s) ===\n%s\n\n", mode, kind, prompt)
}

// LogResponse records a model response.
func (t *Transcript) LogResponse(mode, response string) {
	t.logf("=== RESPONSE (%s) ===\n%s\n\n", mode, response)
}

// LogFallback records a fallback-chain transition and its trigger.
func (t *Transcript) LogFallback(from, to, reason string) {
	t.logf("FALLBACK %s -> %s: %s\n", from, to, reason)
}

// Close finalizes and closes the transcript file.
func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return nil
	}
	fmt.Fprintf(t.file, "[%s] === Session Complete: %s ===\n",
		time.Now().Format("15:04:05.000"), time.Now().Format(time.RFC3339))
	err := t.file.Close()
	t.file = nil
	return err
}
