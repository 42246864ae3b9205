package coachlens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeDevice is a scriptable on-device model.
type fakeDevice struct {
	availability Availability
	response     string
	promptErr    error
}

func (f *fakeDevice) Availability(ctx context.Context) Availability { return f.availability }

func (f *fakeDevice) NewSession(ctx context.Context) (ModelSession, error) {
	return &fakeSession{device: f}, nil
}

type fakeSession struct {
	device *fakeDevice
}

func (s *fakeSession) Prompt(ctx context.Context, text string) (string, error) {
	if s.device.promptErr != nil {
		return "", s.device.promptErr
	}
	return s.device.response, nil
}

func (s *fakeSession) Destroy() {}

// proxyStub serves canned responses in the cloud proxy's wire format.
func proxyStub(t *testing.T, status int, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("proxy received invalid request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(GenerateResponse{Response: response})
		} else {
			json.NewEncoder(w).Encode(GenerateResponse{Error: "upstream error", Message: "model unavailable"})
		}
	}))
}

const wireQuiz = `[
	{"question": "What does k control?", "options": ["Neighborhood size", "Learning rate", "Batch size", "Depth"], "correctAnswer": "Neighborhood size"},
	{"question": "How are neighbors chosen?", "answer": "By distance to the query point"},
	{"question": "What accuracy was reached?", "answer": "92%"}
]`

func TestNewRouterModeSelection(t *testing.T) {
	ctx := context.Background()
	srv := proxyStub(t, http.StatusOK, "ok")
	defer srv.Close()
	proxy := NewProxyClient(srv.URL)

	tests := []struct {
		name   string
		device OnDeviceModel
		proxy  *ProxyClient
		want   AIMode
	}{
		{"ready device wins", &fakeDevice{availability: AvailabilityReadily}, proxy, ModeOnDevice},
		{"downloading device falls through to cloud", &fakeDevice{availability: AvailabilityAfterDownload}, proxy, ModeCloud},
		{"unavailable device falls through to cloud", &fakeDevice{availability: AvailabilityUnavailable}, proxy, ModeCloud},
		{"no device uses cloud", nil, proxy, ModeCloud},
		{"nothing configured uses mock", nil, nil, ModeMock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(ctx, tt.device, tt.proxy)
			if got := r.Mode(); got != tt.want {
				t.Errorf("Mode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRespondOnDevice(t *testing.T) {
	device := &fakeDevice{availability: AvailabilityReadily, response: "A concise summary."}
	r := NewRouter(context.Background(), device, nil)

	resp, err := r.Respond(context.Background(), KindSummarize, "page text", "")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if resp.Text != "A concise summary." {
		t.Errorf("Text = %q, want the on-device response", resp.Text)
	}
}

func TestRespondDemotesFailedDevice(t *testing.T) {
	srv := proxyStub(t, http.StatusOK, "cloud summary")
	defer srv.Close()

	device := &fakeDevice{availability: AvailabilityReadily, promptErr: errors.New("session crashed")}
	r := NewRouter(context.Background(), device, NewProxyClient(srv.URL))
	if r.Mode() != ModeOnDevice {
		t.Fatalf("Mode() = %q, want %q before the failure", r.Mode(), ModeOnDevice)
	}

	resp, err := r.Respond(context.Background(), KindSummarize, "page text", "")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if resp.Text != "cloud summary" {
		t.Errorf("Text = %q, want the cloud response after demotion", resp.Text)
	}
	if r.Mode() != ModeCloud {
		t.Errorf("Mode() = %q, want %q after an on-device failure", r.Mode(), ModeCloud)
	}
}

func TestRespondQuizViaCloud(t *testing.T) {
	srv := proxyStub(t, http.StatusOK, "```json\n"+wireQuiz+"\n```")
	defer srv.Close()

	r := NewRouter(context.Background(), nil, NewProxyClient(srv.URL))
	resp, err := r.Respond(context.Background(), KindQuiz, knnArticle, "")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(resp.Quiz) != 3 {
		t.Fatalf("got %d quiz items, want 3", len(resp.Quiz))
	}
	if resp.Quiz[0].Kind != KindMultipleChoice {
		t.Errorf("Quiz[0].Kind = %q, want %q", resp.Quiz[0].Kind, KindMultipleChoice)
	}
	if resp.Quiz[1].Kind != KindFreeText {
		t.Errorf("Quiz[1].Kind = %q, want %q", resp.Quiz[1].Kind, KindFreeText)
	}
	if resp.Quiz[1].ReferenceAnswer != "By distance to the query point" {
		t.Errorf("Quiz[1].ReferenceAnswer = %q", resp.Quiz[1].ReferenceAnswer)
	}
}

func TestRespondQuizFailurePropagates(t *testing.T) {
	srv := proxyStub(t, http.StatusBadGateway, "")
	defer srv.Close()

	r := NewRouter(context.Background(), nil, NewProxyClient(srv.URL))
	_, err := r.Respond(context.Background(), KindQuiz, knnArticle, "")
	if !errors.Is(err, ErrQuizUnavailable) {
		t.Fatalf("Respond error = %v, want ErrQuizUnavailable", err)
	}
}

func TestRespondQuizWithoutBackends(t *testing.T) {
	r := NewRouter(context.Background(), nil, nil)
	_, err := r.Respond(context.Background(), KindQuiz, knnArticle, "")
	if !errors.Is(err, ErrQuizUnavailable) {
		t.Fatalf("Respond error = %v, want ErrQuizUnavailable", err)
	}
}

func TestRespondMalformedQuizIsUnavailable(t *testing.T) {
	srv := proxyStub(t, http.StatusOK, "I cannot write JSON today.")
	defer srv.Close()

	r := NewRouter(context.Background(), nil, NewProxyClient(srv.URL))
	_, err := r.Respond(context.Background(), KindQuiz, knnArticle, "")
	if !errors.Is(err, ErrQuizUnavailable) {
		t.Fatalf("Respond error = %v, want ErrQuizUnavailable for unparseable output", err)
	}
}

func TestRespondDegradesToMock(t *testing.T) {
	srv := proxyStub(t, http.StatusBadGateway, "")
	defer srv.Close()

	content := "Photosynthesis converts light into chemical energy stored in glucose molecules."
	r := NewRouter(context.Background(), nil, NewProxyClient(srv.URL))
	resp, err := r.Respond(context.Background(), KindSummarize, content, "")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.Contains(resp.Text, content[:50]) {
		t.Errorf("mock summary %q does not reference the content preview", resp.Text)
	}
}

func TestRespondMockModeNeverFailsForProse(t *testing.T) {
	r := NewRouter(context.Background(), nil, nil)
	for _, kind := range []RequestKind{KindSummarize, KindExplain, KindChat, KindCompare} {
		t.Run(string(kind), func(t *testing.T) {
			resp, err := r.Respond(context.Background(), kind, "some study content", "a topic")
			if err != nil {
				t.Fatalf("Respond(%q): %v", kind, err)
			}
			if resp.Text == "" {
				t.Errorf("Respond(%q) returned empty text", kind)
			}
		})
	}
}

func TestProxyClientErrorDetail(t *testing.T) {
	srv := proxyStub(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	_, err := NewProxyClient(srv.URL).Generate(context.Background(), GenerateRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("Generate returned nil error for a 429 response")
	}
	want := fmt.Sprintf("status %d", http.StatusTooManyRequests)
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not mention the %s", err, want)
	}
}
