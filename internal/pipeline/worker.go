package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dbarrow/outliner/internal/outline"
	"github.com/dbarrow/outliner/internal/parser"
	"github.com/dbarrow/outliner/internal/recommend"
	"github.com/dbarrow/outliner/internal/schema"
	"github.com/dbarrow/outliner/internal/store"
)

// dedupIndex maps (session, content hash) to the document that first carried
// that content, so re-uploads within a session are skipped.
type dedupIndex struct {
	mu   sync.Mutex
	seen map[string]string
}

func newDedupIndex() *dedupIndex {
	return &dedupIndex{seen: make(map[string]string)}
}

// claim registers hash for the session and returns the previous holder if
// the content was already processed.
func (d *dedupIndex) claim(sessionID, hash, docID string) (string, bool) {
	key := sessionID + "\x00" + hash
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.seen[key]; ok {
		return existing, true
	}
	d.seen[key] = docID
	return "", false
}

func (d *dedupIndex) forgetSession(sessionID string) {
	prefix := sessionID + "\x00"
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.seen {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(d.seen, key)
		}
	}
}

// Worker processes a single document job.
type Worker struct {
	store     *store.Store
	engine    *recommend.Engine
	validator *schema.Validator
	stats     *Stats
	dedup     *dedupIndex
	log       *slog.Logger

	opts     outline.Options
	extended bool
}

func NewWorker(st *store.Store, eng *recommend.Engine, val *schema.Validator, stats *Stats, dedup *dedupIndex, log *slog.Logger, opts outline.Options, extended bool) *Worker {
	return &Worker{
		store:     st,
		engine:    eng,
		validator: val,
		stats:     stats,
		dedup:     dedup,
		log:       log,
		opts:      opts,
		extended:  extended,
	}
}

// Process runs the full pipeline for a job: parse, sanitize and validate,
// persist, index. Failures are recorded on the job; the pipeline never
// panics across documents.
func (w *Worker) Process(ctx context.Context, job *Job) {
	defer job.finish()
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "session_id", job.SessionID)
	start := time.Now()
	fail := func(phase, msg string) {
		job.AddError(msg)
		job.SetStatus(StatusFailed, phase)
		w.stats.Record(time.Since(start), 0, true)
	}

	// Phase 1: Parse.
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.opts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		fail("parsing", err.Error())
		return
	}

	data := job.FileData()
	job.SetContentHash(ContentHashHex(data))
	if existing, dup := w.dedup.claim(job.SessionID, job.ContentHash, job.DocID); dup {
		log.Info("duplicate document, skipping", "existing_doc_id", existing)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	res, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		fail("parsing", fmt.Sprintf("parse: %s", err))
		return
	}
	job.SetResultInfo(res.Title, len(res.Outline))
	log.Info("parsed document", "title", res.Title, "headings", len(res.Outline))

	// Phase 2: Sanitize and validate. Validation is observational.
	doc := schema.Sanitize(res)
	if err := w.validator.Validate(doc); err != nil {
		log.Warn("result failed schema validation", "error", err)
	}

	var payload any = doc
	if w.extended {
		payload = res
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error("marshal result failed", "error", err)
		fail("storing", fmt.Sprintf("marshal: %s", err))
		return
	}

	// Phase 3: Persist.
	job.SetStatus(StatusStoring, "storing")
	err = w.store.Save(ctx, store.Record{
		DocID:      job.DocID,
		SessionID:  job.SessionID,
		Filename:   job.Filename,
		Title:      doc.Title,
		ResultJSON: raw,
	})
	if err != nil {
		log.Error("store failed", "error", err)
		fail("storing", fmt.Sprintf("store: %s", err))
		return
	}

	// Phase 4: Index for recommendations.
	job.SetStatus(StatusIndexing, "indexing")
	w.engine.Add(recommend.Document{
		DocID:     job.DocID,
		SessionID: job.SessionID,
		Filename:  job.Filename,
		Title:     doc.Title,
		Outline:   res.Outline,
	})

	job.SetStatus(StatusCompleted, "done")
	w.stats.Record(time.Since(start), len(res.Outline), false)
	log.Info("document processed", "duration_ms", time.Since(start).Milliseconds())
}
