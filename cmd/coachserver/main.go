package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"coachlens"

	"github.com/gorilla/sessions"
)

const sessionCookie = "coachlens-session"

// Server exposes the study flows (summarize, explain, quiz, chat, timeline)
// as a JSON API. The cookie session carries only the study-session ID; the
// session state itself lives server-side.
type Server struct {
	engine  *coachlens.Engine
	library *coachlens.Library
	store   *sessions.CookieStore

	mu       sync.Mutex
	sessions map[string]*studySessionState
}

type studySessionState struct {
	session  *coachlens.StudySession
	quiz     []coachlens.QuizItem
	attempts []coachlens.QuizAttempt
	saved    bool
}

func main() {
	var (
		addr     = flag.String("addr", ":8080", "Listen address")
		endpoint = flag.String("endpoint", "http://localhost:8787/api/generate", "Cloud proxy generate endpoint (empty for offline heuristics)")
		dbPath   = flag.String("db", "./coachlens.db", "Path to the library database")
		verbose  = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	coachlens.SetVerbose(*verbose)

	store, err := coachlens.OpenKVStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open library database: %v", err)
	}
	defer store.Close()

	var proxy *coachlens.ProxyClient
	if *endpoint != "" {
		proxy = coachlens.NewProxyClient(*endpoint)
	}
	router := coachlens.NewRouter(context.Background(), nil, proxy)

	secret := os.Getenv("COACHLENS_SESSION_SECRET")
	if secret == "" {
		secret = "coachlens-dev-secret"
		log.Println("COACHLENS_SESSION_SECRET not set, using development secret")
	}

	srv := &Server{
		engine:   coachlens.NewEngine(router, nil),
		library:  coachlens.NewLibrary(store),
		store:    sessions.NewCookieStore([]byte(secret)),
		sessions: make(map[string]*studySessionState),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/session", srv.handleNewSession)
	mux.HandleFunc("POST /api/summarize", srv.handleSummarize)
	mux.HandleFunc("POST /api/explain", srv.handleExplain)
	mux.HandleFunc("POST /api/quiz", srv.handleQuiz)
	mux.HandleFunc("POST /api/quiz/answer", srv.handleQuizAnswer)
	mux.HandleFunc("POST /api/chat", srv.handleChat)
	mux.HandleFunc("GET /api/timeline", srv.handleTimeline)
	mux.HandleFunc("GET /api/timeline/groups", srv.handleTimelineGroups)
	mux.HandleFunc("GET /api/timeline/similar", srv.handleTimelineSimilar)
	mux.HandleFunc("GET /api/history", srv.handleHistory)

	log.Printf("coachserver listening on %s", *addr)
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Fatal(httpServer.ListenAndServe())
}

type newSessionRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body,omitempty"`
	HTML  string `json:"html,omitempty"`
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "Request body must be JSON")
		return
	}

	var page coachlens.PageContent
	if req.HTML != "" {
		var err error
		page, err = coachlens.ExtractPage(req.URL, req.HTML)
		if err != nil {
			httpError(w, http.StatusBadRequest, "Failed to extract page: "+err.Error())
			return
		}
		if page.Title == "" {
			page.Title = req.Title
		}
	} else {
		page = coachlens.PageContent{
			Title:     req.Title,
			URL:       req.URL,
			Body:      req.Body,
			WordCount: len(strings.Fields(req.Body)),
		}
	}

	study := coachlens.NewStudySession(s.engine, page)
	s.mu.Lock()
	s.sessions[study.ID] = &studySessionState{session: study}
	s.mu.Unlock()

	cookie, _ := s.store.Get(r, sessionCookie)
	cookie.Values["study_id"] = study.ID
	if err := cookie.Save(r, w); err != nil {
		log.Printf("Failed to save session cookie: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": study.ID,
		"page":       page,
	})
}

// currentSession resolves the study session from the request cookie.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) *studySessionState {
	cookie, _ := s.store.Get(r, sessionCookie)
	id, _ := cookie.Values["study_id"].(string)
	if id == "" {
		httpError(w, http.StatusBadRequest, "No study session; POST /api/session first")
		return nil
	}

	s.mu.Lock()
	state := s.sessions[id]
	s.mu.Unlock()
	if state == nil {
		httpError(w, http.StatusBadRequest, "Study session expired; POST /api/session again")
		return nil
	}
	return state
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	state := s.currentSession(w, r)
	if state == nil {
		return
	}

	summary := state.session.Summarize(r.Context())
	page := state.session.Page()
	if _, err := s.library.SaveItem(coachlens.LibraryItem{
		Type:    coachlens.ItemSummary,
		Title:   page.Title,
		Content: summary,
		URL:     page.URL,
	}); err != nil {
		log.Printf("Failed to save summary to library: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	state := s.currentSession(w, r)
	if state == nil {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		httpError(w, http.StatusBadRequest, "A non-empty text field is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"explanation": state.session.Explain(r.Context(), req.Text),
	})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	state := s.currentSession(w, r)
	if state == nil {
		return
	}

	quiz := state.session.Quiz(r.Context())
	s.mu.Lock()
	state.quiz = quiz
	state.attempts = nil
	state.saved = false
	s.mu.Unlock()

	page := state.session.Page()
	if _, err := s.library.SaveItem(coachlens.LibraryItem{
		Type:  coachlens.ItemQuiz,
		Title: page.Title,
		Quiz:  quiz,
		URL:   page.URL,
	}); err != nil {
		log.Printf("Failed to save quiz to library: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"quiz": quiz})
}

type answerRequest struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	state := s.currentSession(w, r)
	if state == nil {
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "Request body must be JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if state.quiz == nil {
		httpError(w, http.StatusBadRequest, "No active quiz; POST /api/quiz first")
		return
	}
	if req.QuestionIndex < 0 || req.QuestionIndex >= len(state.quiz) {
		httpError(w, http.StatusBadRequest, "question_index out of range")
		return
	}

	item := state.quiz[req.QuestionIndex]
	attempt := s.engine.GradeQuiz([]coachlens.QuizItem{item}, []string{req.Answer})[0]
	attempt.QuestionIndex = req.QuestionIndex
	state.attempts = append(state.attempts, attempt)

	result := coachlens.Score(state.attempts)
	done := len(state.attempts) >= len(state.quiz)
	if done && !state.saved {
		if err := s.library.SaveQuizResult(result); err != nil {
			log.Printf("Failed to save quiz result: %v", err)
		}
		state.saved = true
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"correct":  attempt.Correct,
		"score":    result.Score,
		"answered": len(state.attempts),
		"total":    len(state.quiz),
		"done":     done,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	state := s.currentSession(w, r)
	if state == nil {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		httpError(w, http.StatusBadRequest, "A non-empty message field is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"reply": state.session.Chat(r.Context(), req.Message),
	})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	items, err := s.library.Items()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "Failed to load timeline")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleTimelineGroups(w http.ResponseWriter, r *http.Request) {
	items, err := s.library.Items()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "Failed to load timeline")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"groups": s.library.GroupByTopic(items),
	})
}

func (s *Server) handleTimelineSimilar(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpError(w, http.StatusBadRequest, "An id query parameter is required")
		return
	}
	item, err := s.library.Item(id)
	if err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return
	}
	items, err := s.library.Items()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "Failed to load timeline")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"similar": s.library.FindSimilar(item, items),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.library.QuizHistory()
	if err != nil {
		httpError(w, http.StatusInternalServerError, "Failed to load quiz history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func httpError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
