package interview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/wayfinder-labs/wayfinder/backend/internal/content"
	"github.com/wayfinder-labs/wayfinder/backend/internal/dimension"
	model "github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
	"github.com/wayfinder-labs/wayfinder/backend/internal/service/ai"
	interviewService "github.com/wayfinder-labs/wayfinder/backend/internal/service/interview"
	"github.com/wayfinder-labs/wayfinder/backend/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	decks, err := content.Default()
	if err != nil {
		t.Fatalf("load decks: %v", err)
	}
	registry, err := dimension.NewRegistry(ai.Unavailable{}, decks)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	svc := interviewService.NewService(registry, ai.Unavailable{}, storage.NewMemoryStore())

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type createSessionResponse struct {
	Session model.Session               `json:"session"`
	Turn    interviewService.TurnResult `json:"turn"`
}

func createSession(t *testing.T, server *httptest.Server, body string) createSessionResponse {
	t.Helper()

	resp, err := http.Post(server.URL+"/session", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /session err: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /session status %d, want 201", resp.StatusCode)
	}

	var created createSessionResponse
	decodeBody(t, resp, &created)
	return created
}

func TestListDimensions(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/dimensions")
	if err != nil {
		t.Fatalf("GET /dimensions err: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var dims []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	decodeBody(t, resp, &dims)

	if len(dims) != 12 {
		t.Fatalf("expected 12 dimensions, got %d", len(dims))
	}
	for _, d := range dims {
		if d.ID == "" || d.Title == "" {
			t.Fatalf("dimension entry missing fields: %+v", d)
		}
	}
}

func TestCreateSessionReturnsOpeningTurn(t *testing.T) {
	server := newTestServer(t)

	created := createSession(t, server, `{"name": "Robin", "background": "recent graduate"}`)

	if created.Session.ID == "" {
		t.Fatal("session id must be set")
	}
	if strings.TrimSpace(created.Turn.Message) == "" {
		t.Fatal("opening turn must carry a question")
	}
	if created.Turn.Dimension != model.Personality {
		t.Fatalf("opening turn targets %q, want %q", created.Turn.Dimension, model.Personality)
	}
	if len(created.Turn.Progress.Remaining) != 12 {
		t.Fatalf("fresh session should have 12 remaining, got %d", len(created.Turn.Progress.Remaining))
	}
}

func TestCreateSessionAcceptsEmptyBody(t *testing.T) {
	server := newTestServer(t)

	created := createSession(t, server, "")
	if created.Session.ID == "" {
		t.Fatal("session id must be set for empty body")
	}
}

func TestCreateSessionRejectsMalformedBody(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/session", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST /session err: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestTurnEndpoint(t *testing.T) {
	server := newTestServer(t)
	created := createSession(t, server, "")

	resp, err := http.Post(server.URL+"/session/"+created.Session.ID+"/turn",
		"application/json", strings.NewReader(`{"message": "I like solving puzzles", "dimension": "interests"}`))
	if err != nil {
		t.Fatalf("POST turn err: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var result interviewService.TurnResult
	decodeBody(t, resp, &result)

	if result.Dimension != model.Interests {
		t.Fatalf("turn routed to %q, want interests", result.Dimension)
	}
	if strings.TrimSpace(result.Message) == "" {
		t.Fatal("turn response must be non-empty")
	}
}

func TestTurnUnknownSession(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/session/no-such-session/turn",
		"application/json", strings.NewReader(`{"message": "hello"}`))
	if err != nil {
		t.Fatalf("POST turn err: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want 404", resp.StatusCode)
	}
}

func TestProgressEndpoint(t *testing.T) {
	server := newTestServer(t)
	created := createSession(t, server, "")

	resp, err := http.Get(server.URL + "/session/" + created.Session.ID + "/progress")
	if err != nil {
		t.Fatalf("GET progress err: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var progress model.Progress
	decodeBody(t, resp, &progress)

	if len(progress.Completed)+len(progress.Remaining) != 12 {
		t.Fatalf("progress covers %d dimensions, want 12",
			len(progress.Completed)+len(progress.Remaining))
	}
}

func TestTranscriptEndpoint(t *testing.T) {
	server := newTestServer(t)
	created := createSession(t, server, "")

	resp, err := http.Get(server.URL + "/session/" + created.Session.ID + "/transcript")
	if err != nil {
		t.Fatalf("GET transcript err: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var turns []model.Turn
	decodeBody(t, resp, &turns)

	// Session creation runs the opening turn, so the transcript starts with
	// one assistant message.
	if len(turns) != 1 || turns[0].Role != model.RoleAssistant {
		t.Fatalf("unexpected transcript: %+v", turns)
	}
}

func TestSynthesisNotReadyConflict(t *testing.T) {
	server := newTestServer(t)
	created := createSession(t, server, "")

	resp, err := http.Post(server.URL+"/session/"+created.Session.ID+"/synthesis",
		"application/json", nil)
	if err != nil {
		t.Fatalf("POST synthesis err: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status %d, want 409", resp.StatusCode)
	}
}
