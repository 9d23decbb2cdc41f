package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	if _, err := NewClient("http://localhost:11434/api/chat"); err != nil {
		t.Errorf("Expected a URL with a path to be accepted: %v", err)
	}
	if _, err := NewClient("localhost"); err == nil {
		t.Error("Expected an error for a URL without scheme")
	}
	if _, err := NewClient("://bad"); err == nil {
		t.Error("Expected an error for an unparsable URL")
	}
}

func TestAnalyzeImage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"model": "llava",
			"message": map[string]any{
				"role":    "assistant",
				"content": `{"primary":{"label":"cat","confidence":0.7,"box":{"x":0.1,"y":0.1,"w":0.5,"h":0.5}},"keywords":["cat"]}`,
			},
			"done": true,
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	result, err := c.AnalyzeImage(context.Background(), "llava", "locate", "aGVsbG8=")
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
	if result.Primary.Label != "cat" || result.Keywords[0] != "cat" {
		t.Errorf("Unexpected result %+v", result)
	}
	if got["model"] != "llava" || got["stream"] != false {
		t.Errorf("Unexpected request %v", got)
	}
}

func TestBadImage(t *testing.T) {
	c, _ := NewClient("http://127.0.0.1:1")
	if _, err := c.SimpleQuery(context.Background(), "m", "p", "%%%"); err == nil {
		t.Error("Expected an error for invalid base64")
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.AnalyzeImage(context.Background(), "missing", "p", "aGVsbG8="); err == nil {
		t.Error("Expected an error for a missing model")
	}
}
