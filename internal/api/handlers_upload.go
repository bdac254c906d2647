package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dbarrow/outliner/internal/parser"
	"github.com/dbarrow/outliner/internal/pipeline"
)

// handleUpload processes a single document synchronously and returns its
// outline.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = pipeline.NewID()
	}

	job, ok := s.jobFromUpload(w, r, sessionID, "file")
	if !ok {
		return
	}

	s.orchestrator.ProcessSync(r.Context(), job)
	snap := job.Snapshot()

	switch snap.Status {
	case pipeline.StatusFailed:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"session_id": sessionID,
			"doc_id":     snap.DocID,
			"status":     snap.Status,
			"errors":     snap.Progress.Errors,
		})
		return
	case pipeline.StatusDupSkipped:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"session_id": sessionID,
			"doc_id":     snap.DocID,
			"status":     snap.Status,
		})
		return
	}

	rec, err := s.store.Get(r.Context(), snap.DocID)
	if err != nil {
		jsonError(w, "stored result unavailable: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sessionID,
		"doc_id":     snap.DocID,
		"filename":   snap.Filename,
		"status":     snap.Status,
		"result":     json.RawMessage(rec.ResultJSON),
	})
}

// handleBatchUpload runs multiple documents through the worker pool and
// responds once all of them settle, with per-document results and collection
// insights ranked against the caller's persona and job to be done. Failures
// stay isolated to their document.
func (s *Server) handleBatchUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = pipeline.NewID()
	}
	persona := r.FormValue("persona")
	jobToBeDone := r.FormValue("job")

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	type batchItem struct {
		filename string
		job      *pipeline.Job
		errMsg   string
	}

	items := make([]batchItem, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			items = append(items, batchItem{filename: filename,
				errMsg: fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename))})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			items = append(items, batchItem{filename: filename, errMsg: "failed to open file"})
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			items = append(items, batchItem{filename: filename, errMsg: "file too large or read error"})
			continue
		}

		job := newJob(sessionID, filename, data)
		if err := s.orchestrator.Submit(job); err != nil {
			items = append(items, batchItem{filename: filename, errMsg: err.Error()})
			continue
		}
		items = append(items, batchItem{filename: filename, job: job})
	}

	// Wait for all submitted jobs before building the response. A cancelled
	// request leaves the late jobs reported in-flight with their poll URLs.
	for i := range items {
		if items[i].job == nil {
			continue
		}
		select {
		case <-items[i].job.Done():
		case <-r.Context().Done():
		}
	}

	results := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if item.job == nil {
			results = append(results, map[string]any{
				"filename": item.filename,
				"error":    item.errMsg,
			})
			continue
		}
		results = append(results, s.batchJobResult(r, item.job))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sessionID,
		"results":    results,
		"insights":   s.sessionInsights(sessionID, persona, jobToBeDone),
	})
}

// batchJobResult renders one settled (or abandoned) batch job.
func (s *Server) batchJobResult(r *http.Request, job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	out := map[string]any{
		"filename": snap.Filename,
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"status":   snap.Status,
	}

	switch snap.Status {
	case pipeline.StatusCompleted:
		rec, err := s.store.Get(r.Context(), snap.DocID)
		if err != nil {
			out["error"] = "stored result unavailable: " + err.Error()
			return out
		}
		out["result"] = json.RawMessage(rec.ResultJSON)
	case pipeline.StatusFailed:
		out["errors"] = snap.Progress.Errors
	case pipeline.StatusDupSkipped:
		// No result body; the first upload of this content carries it.
	default:
		// Request cancelled mid-flight; the job keeps running in the pool.
		out["poll_url"] = fmt.Sprintf("/api/ingest/%s/status", snap.ID)
	}
	return out
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     snap.ID,
		"doc_id":     snap.DocID,
		"session_id": snap.SessionID,
		"status":     snap.Status,
		"phase":      snap.Phase,
		"progress":   snap.Progress,
	})
}

// jobFromUpload reads the named multipart file field and builds a queued job.
// Writes the error response itself and reports success via the bool.
func (s *Server) jobFromUpload(w http.ResponseWriter, r *http.Request, sessionID, field string) (*pipeline.Job, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		jsonError(w, field+" is required: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}

	return newJob(sessionID, filename, data), true
}

func newJob(sessionID, filename string, data []byte) *pipeline.Job {
	now := time.Now()
	job := &pipeline.Job{
		ID:        pipeline.NewID(),
		DocID:     pipeline.NewID(),
		SessionID: sessionID,
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)
	return job
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
