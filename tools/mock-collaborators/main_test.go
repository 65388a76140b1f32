package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTestAnnotation(t *testing.T) *annotateResponse {
	t.Helper()
	resp, err := loadAnnotationFixture(filepath.Join("testdata", "annotate_response.json"))
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	return resp
}

func TestLoadAnnotationFixture(t *testing.T) {
	fixture := loadTestAnnotation(t)
	if len(fixture.Responses) == 0 {
		t.Fatal("expected at least one response in fixture")
	}
}

func TestAnnotateHandler_Success(t *testing.T) {
	handler := annotateHandler(testLogger(), loadTestAnnotation(t))

	body := `{"requests":[{"image":{"content":"aW1hZ2UtYnl0ZXM="}}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/images:annotate", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Responses []struct {
			LabelAnnotations []struct {
				Description string `json:"description"`
			} `json:"labelAnnotations"`
		} `json:"responses"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Responses) == 0 || len(resp.Responses[0].LabelAnnotations) == 0 {
		t.Fatal("expected label annotations in response")
	}
}

func TestAnnotateHandler_MissingImage(t *testing.T) {
	handler := annotateHandler(testLogger(), loadTestAnnotation(t))

	req := httptest.NewRequest(http.MethodPost, "/v1/images:annotate", strings.NewReader(`{"requests":[]}`))
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d (errors travel in the body)", w.Code, http.StatusOK)
	}

	var resp struct {
		Responses []struct {
			Error *struct {
				Code int `json:"code"`
			} `json:"error"`
		} `json:"responses"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Responses) == 0 || resp.Responses[0].Error == nil {
		t.Fatal("expected an in-body error for an empty request set")
	}
}

func TestAnnotateHandler_MalformedBody(t *testing.T) {
	handler := annotateHandler(testLogger(), loadTestAnnotation(t))

	req := httptest.NewRequest(http.MethodPost, "/v1/images:annotate", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestPageHandler(t *testing.T) {
	page, err := os.ReadFile(filepath.Join("testdata", "amazon_results.html"))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	handler := pageHandler(testLogger(), "amazon", "k", page)

	req := httptest.NewRequest(http.MethodGet, "/s?k=sony+headphones", http.NoBody)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "s-search-result") {
		t.Error("expected result rows in the served page")
	}
}

func TestPageHandler_MissingQuery(t *testing.T) {
	handler := pageHandler(testLogger(), "flipkart", "q", []byte("<html></html>"))

	req := httptest.NewRequest(http.MethodGet, "/search", http.NoBody)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusBadRequest)
	}
}
