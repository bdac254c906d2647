package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func TestStore_SaveGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec := Record{
		DocID:      "doc-1",
		SessionID:  "sess-1",
		Filename:   "report.pdf",
		Title:      "Annual Report",
		ResultJSON: []byte(`{"title":"Annual Report","outline":[]}`),
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Annual Report" || got.Filename != "report.pdf" || got.SessionID != "sess-1" {
		t.Errorf("record = %+v", got)
	}
	if string(got.ResultJSON) != string(rec.ResultJSON) {
		t.Errorf("result json = %s", got.ResultJSON)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt filled in")
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := Record{DocID: "doc-1", SessionID: "s", Filename: "a.pdf", Title: "First", ResultJSON: []byte(`{}`)}
	second := Record{DocID: "doc-1", SessionID: "s", Filename: "a.pdf", Title: "Second", ResultJSON: []byte(`{}`)}
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Second" {
		t.Errorf("title = %q, want replacement", got.Title)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := testStore(t)
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListSessionOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"doc-a", "doc-b", "doc-c"} {
		rec := Record{
			DocID:      id,
			SessionID:  "sess-1",
			Filename:   id + ".pdf",
			Title:      id,
			ResultJSON: []byte(`{}`),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	other := Record{DocID: "doc-x", SessionID: "sess-2", Filename: "x.pdf", Title: "x", ResultJSON: []byte(`{}`)}
	if err := s.Save(ctx, other); err != nil {
		t.Fatalf("Save: %v", err)
	}

	recs, err := s.ListSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ListSession: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, want := range []string{"doc-a", "doc-b", "doc-c"} {
		if recs[i].DocID != want {
			t.Errorf("record %d = %q, want %q (oldest first)", i, recs[i].DocID, want)
		}
	}
}

func TestStore_DeleteSession(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"d1", "d2"} {
		rec := Record{DocID: id, SessionID: "gone", Filename: id, Title: id, ResultJSON: []byte(`{}`)}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	keep := Record{DocID: "d3", SessionID: "kept", Filename: "d3", Title: "d3", ResultJSON: []byte(`{}`)}
	if err := s.Save(ctx, keep); err != nil {
		t.Fatalf("Save: %v", err)
	}

	n, err := s.DeleteSession(ctx, "gone")
	if err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	if _, err := s.Get(ctx, "d1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected d1 gone, got %v", err)
	}
	if _, err := s.Get(ctx, "d3"); err != nil {
		t.Errorf("expected d3 kept, got %v", err)
	}
}
