package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type generateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	SystemInstruction struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := New(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestComplete(t *testing.T) {
	var got generateRequest
	var path, apiKey string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"AAPL looks "},{"text":"steady."}]}}]}`)
	})

	answer, err := p.Complete(context.Background(), "You are an analyst.", "How is AAPL?")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if answer != "AAPL looks steady." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if !strings.HasSuffix(path, "models/"+DefaultModel+":generateContent") {
		t.Fatalf("unexpected path %q", path)
	}
	if apiKey != "test-key" {
		t.Fatalf("expected api key header, got %q", apiKey)
	}
	if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "How is AAPL?" {
		t.Fatalf("unexpected contents: %+v", got.Contents)
	}
	if len(got.SystemInstruction.Parts) != 1 || got.SystemInstruction.Parts[0].Text != "You are an analyst." {
		t.Fatalf("unexpected system instruction: %+v", got.SystemInstruction)
	}
}

func TestComplete_UpstreamError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	})

	if _, err := p.Complete(context.Background(), "sys", "q"); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestComplete_EmptyCandidates(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[]}`)
	})

	if _, err := p.Complete(context.Background(), "sys", "q"); err == nil {
		t.Fatal("expected error on empty candidates")
	}
}
