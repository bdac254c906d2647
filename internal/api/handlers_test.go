package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dbarrow/outliner/internal/config"
	"github.com/dbarrow/outliner/internal/pipeline"
	"github.com/dbarrow/outliner/internal/recommend"
	"github.com/dbarrow/outliner/internal/schema"
	"github.com/dbarrow/outliner/internal/store"
)

func testServer(t *testing.T, apiKey string) *Server {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	val, err := schema.NewValidator("", log)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	eng := recommend.NewEngine()

	cfg := config.Config{
		Port:           "0",
		APIKey:         apiKey,
		WorkerCount:    2,
		MaxQueueSize:   10,
		MaxUploadBytes: 10 << 20,
		JobTTL:         time.Hour,
		UseFontLevels:  true,
	}
	orch := pipeline.NewOrchestrator(cfg, st, eng, val, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return NewServer(orch, st, eng, log, cfg)
}

type uploadFile struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, field string, files []uploadFile, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatalf("write file data: %v", err)
		}
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHandleUpload_Sync(t *testing.T) {
	srv := testServer(t, "")

	body, ctype := multipartBody(t, "file",
		[]uploadFile{{"handbook.md", []byte("# Project Handbook\n\n## Getting Started\n")}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		SessionID string          `json:"session_id"`
		Status    string          `json:"status"`
		Result    schema.Document `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "completed" || resp.Result.Title != "Project Handbook" {
		t.Errorf("response = %+v", resp)
	}
	if resp.SessionID == "" {
		t.Error("expected generated session id")
	}
}

func TestHandleBatchUpload_ResultsAndInsights(t *testing.T) {
	srv := testServer(t, "")

	files := []uploadFile{
		{"deploy.md", []byte("# Deployment Practices\n\n## Rollback Strategy\n")},
		{"cooking.md", []byte("# Cooking Basics\n\n## Olive Oil\n")},
	}
	body, ctype := multipartBody(t, "files", files, map[string]string{
		"persona": "Platform Engineer",
		"job":     "improve deployment practices",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload/batch", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		SessionID string `json:"session_id"`
		Results   []struct {
			Filename string           `json:"filename"`
			Status   string           `json:"status"`
			Error    string           `json:"error"`
			Result   *schema.Document `json:"result"`
		} `json:"results"`
		Insights struct {
			Documents       int                        `json:"documents"`
			Headings        int                        `json:"headings"`
			Recommendations []recommend.Recommendation `json:"recommendations"`
		} `json:"insights"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(resp.Results))
	}
	for _, res := range resp.Results {
		if res.Status != "completed" {
			t.Errorf("%s status = %s (%s)", res.Filename, res.Status, res.Error)
		}
		if res.Result == nil || res.Result.Title == "" {
			t.Errorf("%s missing outline result", res.Filename)
		}
	}

	if resp.Insights.Documents != 2 || resp.Insights.Headings != 2 {
		t.Errorf("insights = %d docs / %d headings, want 2/2",
			resp.Insights.Documents, resp.Insights.Headings)
	}
	// The persona/job query overlaps the deployment document only.
	if len(resp.Insights.Recommendations) != 1 {
		t.Fatalf("recommendations = %d, want 1", len(resp.Insights.Recommendations))
	}
	if got := resp.Insights.Recommendations[0].Title; got != "Deployment Practices" {
		t.Errorf("top recommendation = %q", got)
	}
}

func TestHandleBatchUpload_FailureIsolated(t *testing.T) {
	srv := testServer(t, "")

	files := []uploadFile{
		{"good.md", []byte("# Valid Document\n\n## Section\n")},
		{"bad.bin", []byte("not a document")},
	}
	body, ctype := multipartBody(t, "files", files, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload/batch", body)
	req.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Results []struct {
			Filename string `json:"filename"`
			Status   string `json:"status"`
			Error    string `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	byName := make(map[string]string)
	for _, res := range resp.Results {
		if res.Error != "" {
			byName[res.Filename] = "error"
		} else {
			byName[res.Filename] = res.Status
		}
	}
	if byName["good.md"] != "completed" {
		t.Errorf("good.md = %s, want completed", byName["good.md"])
	}
	if byName["bad.bin"] != "error" {
		t.Errorf("bad.bin = %s, want rejected with error", byName["bad.bin"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := testServer(t, "secret-key")

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"health is public", "/health", "", http.StatusOK},
		{"missing header", "/api/stats", "", http.StatusUnauthorized},
		{"wrong key", "/api/stats", "Bearer wrong", http.StatusUnauthorized},
		{"valid key", "/api/stats", "Bearer secret-key", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		if rr.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rr.Code, tt.want)
		}
	}
}
