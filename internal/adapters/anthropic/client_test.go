package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func lyricsResponse(text string) string {
	out, _ := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return string(out)
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestGenerateParsesTitleAndContent(t *testing.T) {
	var captured messagesRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s, want /v1/messages", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q, want test-key", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("anthropic-version header missing")
		}
		json.NewDecoder(r.Body).Decode(&captured)
		fmt.Fprint(w, lyricsResponse("# Night Rain\n\nVerse one line\nVerse two line\n\nChorus line"))
	}))

	lyrics, err := client.Generate(context.Background(), "a rainy night", "jazz", 2, true)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if lyrics.Title != "Night Rain" {
		t.Errorf("Title = %q, want Night Rain with the heading marker stripped", lyrics.Title)
	}
	if !strings.HasPrefix(lyrics.Content, "Verse one line") {
		t.Errorf("Content = %q, want body without the title line", lyrics.Content)
	}

	if len(captured.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(captured.Messages))
	}
	prompt := captured.Messages[0].Content
	if !strings.Contains(prompt, "a rainy night") || !strings.Contains(prompt, "jazz") {
		t.Errorf("prompt = %q, want theme and style mentioned", prompt)
	}
	if !strings.Contains(prompt, "2 verses") || !strings.Contains(prompt, "chorus") {
		t.Errorf("prompt = %q, want verse count and chorus instruction", prompt)
	}
}

func TestGenerateWithoutChorus(t *testing.T) {
	var captured messagesRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		fmt.Fprint(w, lyricsResponse("Title\nBody"))
	}))

	if _, err := client.Generate(context.Background(), "trains", "", 3, false); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	prompt := captured.Messages[0].Content
	if strings.Contains(prompt, "chorus") {
		t.Errorf("prompt = %q, must not ask for a chorus", prompt)
	}
	if !strings.Contains(prompt, "3 verses") {
		t.Errorf("prompt = %q, want 3 verses", prompt)
	}
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))

	_, err := client.Generate(context.Background(), "anything", "", 2, true)
	if err == nil {
		t.Fatal("expected error for HTTP 401")
	}
	if !strings.Contains(err.Error(), "invalid x-api-key") {
		t.Errorf("err = %v, want the API error message surfaced", err)
	}
}

func TestGenerateRejectsEmptyResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[]}`)
	}))

	if _, err := client.Generate(context.Background(), "anything", "", 2, true); err == nil {
		t.Fatal("expected error for a response without text")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Options{}, zerolog.Nop()); err == nil {
		t.Error("NewClient must reject an empty api key")
	}
}

func TestGenerateNonJSONErrorBodyReportsStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html><body>Bad Gateway</body></html>")
	}))

	_, err := client.Generate(context.Background(), "a rainy night", "jazz", 2, true)
	if err == nil {
		t.Fatal("expected an error for a non-JSON error body")
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Errorf("error = %v, want the HTTP status surfaced", err)
	}
}

func TestNewClientUsesProvidedHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: 3 * time.Second}
	client, err := NewClient(Options{APIKey: "test-key", HTTPClient: hc}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.client != hc {
		t.Error("configured HTTP client was not used")
	}
}
