// Package main implements a mock server for pricelens's external
// collaborators. It serves a Google-Vision-shaped images:annotate endpoint
// and Amazon/Flipkart-shaped search result pages from fixtures, so the
// pipeline can run locally without real credentials or live stores.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

type annotateResponse struct {
	Responses []json.RawMessage `json:"responses"`
}

func main() {
	port := flag.Int("port", 8090, "port to listen on")
	fixtureDir := flag.String("fixtures", "tools/mock-collaborators/testdata", "fixture directory")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	annotation, err := loadAnnotationFixture(*fixtureDir + "/annotate_response.json")
	if err != nil {
		logger.Error("failed to load annotate fixture", "error", err)
		os.Exit(1)
	}

	amazonPage, err := os.ReadFile(*fixtureDir + "/amazon_results.html") //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		logger.Error("failed to load amazon fixture", "error", err)
		os.Exit(1)
	}
	flipkartPage, err := os.ReadFile(*fixtureDir + "/flipkart_results.html") //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		logger.Error("failed to load flipkart fixture", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/images:annotate", annotateHandler(logger, annotation))
	mux.HandleFunc("GET /s", pageHandler(logger, "amazon", "k", amazonPage))
	mux.HandleFunc("GET /search", pageHandler(logger, "flipkart", "q", flipkartPage))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock collaborator server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadAnnotationFixture(path string) (*annotateResponse, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var resp annotateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("fixture has no responses")
	}
	return &resp, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

// annotateHandler mimics the images:annotate contract: a JSON body with at
// least one image request, answered with the fixture annotation. Requests
// without an image payload get a Vision-style in-body error.
func annotateHandler(logger *slog.Logger, fixture *annotateResponse) http.HandlerFunc {
	type imageContent struct {
		Content string `json:"content"`
	}
	type imageRequest struct {
		Image imageContent `json:"image"`
	}
	type annotateRequest struct {
		Requests []imageRequest `json:"requests"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req annotateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("malformed annotate request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if len(req.Requests) == 0 || req.Requests[0].Image.Content == "" {
			//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
			json.NewEncoder(w).Encode(map[string]any{
				"responses": []map[string]any{{
					"error": map[string]any{"code": 3, "message": "image missing"},
				}},
			})
			return
		}

		logger.Info("annotated image", "bytes", len(req.Requests[0].Image.Content))
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(fixture)
	}
}

// pageHandler serves a canned search results page for one store. Requests
// without the store's query parameter get a 400 so misrouted adapters fail
// loudly instead of parsing an unrelated page.
func pageHandler(logger *slog.Logger, store, queryParam string, page []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get(queryParam)
		if query == "" {
			logger.Warn("search request missing query", "store", store)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		logger.Info("served results page", "store", store, "query", query)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		w.Write(page)
	}
}
