package coachlens

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrQuizUnavailable marks a failed quiz generation. Unlike the other
// request kinds, quiz failures are never papered over with a mock response:
// the caller is expected to fall back to the content-derived heuristic quiz,
// which is strictly more useful than generic filler.
var ErrQuizUnavailable = errors.New("quiz generation unavailable")

// OnDeviceModel is the capability surface of a local inference engine.
type OnDeviceModel interface {
	// Availability probes whether the model can serve prompts.
	Availability(ctx context.Context) Availability
	// NewSession opens a single-shot prompt session.
	NewSession(ctx context.Context) (ModelSession, error)
}

// ModelSession is one on-device inference session.
type ModelSession interface {
	Prompt(ctx context.Context, text string) (string, error)
	Destroy()
}

// GenerateRequest is the remote proxy's request body.
type GenerateRequest struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"systemPrompt,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"maxTokens,omitempty"`
}

// GenerateResponse is the remote proxy's response body. Error and Message
// are set on non-2xx responses.
type GenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ProxyClient talks to the cloud proxy server.
type ProxyClient struct {
	endpoint string
	client   *http.Client
}

// NewProxyClient creates a client for the given generate endpoint.
func NewProxyClient(endpoint string) *ProxyClient {
	return &ProxyClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Generate posts one request to the proxy and returns the generated text.
func (c *ProxyClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("proxy request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read proxy response: %w", err)
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(data, &genResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("proxy returned status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("failed to decode proxy response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("proxy returned status %d: %s - %s", resp.StatusCode, genResp.Error, genResp.Message)
	}
	return genResp.Response, nil
}

// RouterResponse is the normalized result of one routed request: prose for
// summarize/explain/chat/compare, quiz items for quiz.
type RouterResponse struct {
	Text string
	Quiz []QuizItem
}

// Router chooses between on-device inference, the cloud proxy, and a local
// mock for each request. The mode is selected once when the router is
// created and persists for the session; the single allowed transition is
// on-device demoting itself to cloud after an on-device failure mid-call.
type Router struct {
	mode       AIMode
	device     OnDeviceModel
	proxy      *ProxyClient
	transcript *Transcript

	temperature float64
	maxTokens   int
}

// NewRouter probes the on-device model (when one is supplied) and fixes the
// session mode: readily available on-device models are preferred, anything
// else routes to the cloud proxy, and with no proxy configured the router
// can only serve mocks and heuristic fallbacks.
func NewRouter(ctx context.Context, device OnDeviceModel, proxy *ProxyClient) *Router {
	r := &Router{
		device:      device,
		proxy:       proxy,
		mode:        ModeMock,
		temperature: 0.7,
		maxTokens:   1000,
	}

	if device != nil {
		if avail := device.Availability(ctx); avail == AvailabilityReadily {
			r.mode = ModeOnDevice
			VerboseLog("router: on-device model readily available")
			return r
		} else {
			VerboseLog("router: on-device model not ready (%s)", avail)
		}
	}
	if proxy != nil {
		r.mode = ModeCloud
		VerboseLog("router: using cloud proxy")
	} else {
		VerboseLog("router: no inference backend, mock responses only")
	}
	return r
}

// SetTranscript attaches a session transcript logger.
func (r *Router) SetTranscript(t *Transcript) {
	r.transcript = t
}

// Mode returns the router's current session mode.
func (r *Router) Mode() AIMode {
	return r.mode
}

// Respond routes one request through the fallback chain. For quiz requests a
// total failure is returned as an error wrapping ErrQuizUnavailable so the
// caller can produce a heuristic quiz; every other kind degrades to a mock
// response and never fails.
func (r *Router) Respond(ctx context.Context, kind RequestKind, content, reqContext string) (RouterResponse, error) {
	prompt := buildPrompt(kind, content, reqContext)
	system := systemPrompt(kind)

	if r.transcript != nil {
		r.transcript.LogRequest(string(r.mode), string(kind), prompt)
	}

	if r.mode == ModeOnDevice {
		text, err := r.promptOnDevice(ctx, system, prompt)
		if err == nil {
			return r.normalize(kind, text)
		}
		// One-way demotion: the on-device model stays out of the chain
		// for the rest of the session.
		r.mode = ModeCloud
		if r.transcript != nil {
			r.transcript.LogFallback("on-device", "cloud", err.Error())
		}
		VerboseLog("router: on-device inference failed, demoting to cloud: %v", err)
	}

	if r.proxy != nil {
		text, err := r.proxy.Generate(ctx, GenerateRequest{
			Prompt:       prompt,
			SystemPrompt: system,
			Temperature:  r.temperature,
			MaxTokens:    r.maxTokens,
		})
		if err == nil {
			return r.normalize(kind, text)
		}
		if kind == KindQuiz {
			return RouterResponse{}, fmt.Errorf("%w: %v", ErrQuizUnavailable, err)
		}
		if r.transcript != nil {
			r.transcript.LogFallback("cloud", "mock", err.Error())
		}
		VerboseLog("router: cloud request failed, using mock response: %v", err)
	} else if kind == KindQuiz {
		return RouterResponse{}, fmt.Errorf("%w: no inference backend configured", ErrQuizUnavailable)
	}

	return RouterResponse{Text: mockResponse(kind, content, reqContext)}, nil
}

func (r *Router) promptOnDevice(ctx context.Context, system, prompt string) (string, error) {
	session, err := r.device.NewSession(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create on-device session: %w", err)
	}
	defer session.Destroy()

	text, err := session.Prompt(ctx, system+"\n\n"+prompt)
	if err != nil {
		return "", fmt.Errorf("on-device prompt failed: %w", err)
	}
	return text, nil
}

// normalize converts raw model output into the single response shape. Quiz
// text that fails to parse is reported as an error: a malformed AI quiz is
// worth less than the heuristic one the caller can build instead.
func (r *Router) normalize(kind RequestKind, text string) (RouterResponse, error) {
	if r.transcript != nil {
		r.transcript.LogResponse(string(r.mode), text)
	}
	if kind != KindQuiz {
		return RouterResponse{Text: text}, nil
	}
	quiz, err := parseQuizResponse(text)
	if err != nil {
		return RouterResponse{}, fmt.Errorf("%w: %v", ErrQuizUnavailable, err)
	}
	return RouterResponse{Quiz: quiz}, nil
}
