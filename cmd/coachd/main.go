package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"coachlens"

	openai "github.com/sashabaranov/go-openai"
)

// Server is the cloud proxy: it accepts the extension-facing generate
// contract and forwards prompts to an OpenAI-compatible upstream.
type Server struct {
	cfg     coachlens.ServerConfig
	client  *openai.Client
	limiter *rateLimiter
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		addr       = flag.String("addr", "", "Listen address (overrides config)")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	coachlens.SetVerbose(*verbose)

	cfg, err := coachlens.LoadServerConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	clientCfg := openai.DefaultConfig(cfg.Upstream.APIKey)
	if cfg.Upstream.BaseURL != "" {
		clientCfg.BaseURL = cfg.Upstream.BaseURL
	}

	srv := &Server{
		cfg:     cfg,
		client:  openai.NewClientWithConfig(clientCfg),
		limiter: newRateLimiter(cfg.RequestsPerMinute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", srv.handleHealth)
	mux.HandleFunc("POST /api/generate", srv.withRateLimit(srv.handleGenerate))
	mux.HandleFunc("POST /api/generate/batch", srv.withRateLimit(srv.handleBatch))

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("coachd listening on %s (model: %s)", cfg.Addr, cfg.Upstream.Model)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req coachlens.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Request body must be JSON")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameter", "Prompt is required")
		return
	}

	text, err := s.generate(r.Context(), req)
	if err != nil {
		log.Printf("Upstream generation failed: %v", err)
		writeError(w, http.StatusBadGateway, "AI generation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, coachlens.GenerateResponse{Response: text})
}

// batchRequest is one entry of a batch call; ID lets the caller correlate
// results.
type batchRequest struct {
	ID           string  `json:"id,omitempty"`
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"systemPrompt,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"maxTokens,omitempty"`
}

type batchResult struct {
	ID       string `json:"id,omitempty"`
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleBatch serves several prompts in one call. Requests run one at a
// time, each caught independently so a single upstream failure does not
// abort the batch.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Requests []batchRequest `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Request body must be JSON")
		return
	}
	if len(body.Requests) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid input", "Requests array is required")
		return
	}
	if len(body.Requests) > s.cfg.MaxBatchSize {
		writeError(w, http.StatusBadRequest, "Too many requests",
			"Batch size exceeds the configured maximum")
		return
	}

	results := make([]batchResult, 0, len(body.Requests))
	for _, req := range body.Requests {
		text, err := s.generate(r.Context(), coachlens.GenerateRequest{
			Prompt:       req.Prompt,
			SystemPrompt: req.SystemPrompt,
			Temperature:  req.Temperature,
			MaxTokens:    req.MaxTokens,
		})
		if err != nil {
			results = append(results, batchResult{ID: req.ID, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, batchResult{ID: req.ID, Success: true, Response: text})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":   results,
		"processed": len(results),
	})
}

func (s *Server) generate(ctx context.Context, req coachlens.GenerateRequest) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       s.cfg.Upstream.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	coachlens.VerboseLog("forwarding prompt (%d chars) to %s", len(req.Prompt), s.cfg.Upstream.Model)
	resp, err := s.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("upstream returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "Too many requests",
				"Rate limit exceeded. Please try again later.")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimiter is a fixed-window per-client counter. Windows reset a minute
// after the client's first request in the window.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	windows map[string]*window
}

type window struct {
	count int
	reset time.Time
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{limit: perMinute, windows: make(map[string]*window)}
}

func (rl *rateLimiter) allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[key]
	if !ok || now.After(w.reset) {
		rl.windows[key] = &window{count: 1, reset: now.Add(time.Minute)}
		return true
	}
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, errLabel, message string) {
	writeJSON(w, status, coachlens.GenerateResponse{Error: errLabel, Message: message})
}
