package recommend

import (
	"testing"

	"github.com/dbarrow/outliner/internal/outline"
)

func seedEngine() *Engine {
	e := NewEngine()
	e.Add(Document{
		DocID:     "doc-ml",
		SessionID: "sess-1",
		Filename:  "ml.pdf",
		Title:     "Machine Learning Fundamentals",
		Outline: []outline.Entry{
			{Level: outline.LevelH1, Text: "Neural Networks", Page: 2},
			{Level: outline.LevelH2, Text: "Training Deep Models", Page: 5},
		},
	})
	e.Add(Document{
		DocID:     "doc-cook",
		SessionID: "sess-1",
		Filename:  "recipes.pdf",
		Title:     "Mediterranean Recipes",
		Outline: []outline.Entry{
			{Level: outline.LevelH1, Text: "Olive Oil Basics", Page: 1},
			{Level: outline.LevelH1, Text: "Seafood Dishes", Page: 9},
		},
	})
	e.Add(Document{
		DocID:     "doc-other",
		SessionID: "sess-2",
		Filename:  "other.pdf",
		Title:     "Unrelated Material",
		Outline:   nil,
	})
	return e
}

func TestEngine_Recommendations(t *testing.T) {
	e := seedEngine()
	recs := e.Recommendations("researcher", "study machine learning and neural networks", "")
	if len(recs) == 0 {
		t.Fatal("expected at least one recommendation")
	}
	if recs[0].DocumentID != "doc-ml" {
		t.Errorf("top recommendation = %q, want doc-ml", recs[0].DocumentID)
	}
	for _, r := range recs {
		if r.DocumentID == "doc-cook" {
			t.Error("cooking document should fall under the similarity cutoff")
		}
		if r.SimilarityScore <= simThreshold {
			t.Errorf("score %v at or below cutoff", r.SimilarityScore)
		}
	}
}

func TestEngine_RecommendationsEmptyQuery(t *testing.T) {
	e := seedEngine()
	if recs := e.Recommendations("", "", ""); recs != nil {
		t.Errorf("expected nil for empty query, got %v", recs)
	}
}

func TestEngine_RelevantSections(t *testing.T) {
	e := seedEngine()
	recs := e.Recommendations("", "neural networks training", "")
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	top := recs[0]
	if len(top.RelevantSections) == 0 {
		t.Fatal("expected relevant sections for matching headings")
	}
	if top.RelevantSections[0].Text != "Neural Networks" {
		t.Errorf("top section = %q", top.RelevantSections[0].Text)
	}
	if top.RelevantSections[0].RelevanceScore <= 0 {
		t.Errorf("relevance = %v", top.RelevantSections[0].RelevanceScore)
	}
}

func TestEngine_Snippet(t *testing.T) {
	e := seedEngine()
	recs := e.Recommendations("", "olive oil seafood recipes mediterranean", "")
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	if recs[0].Snippet != "Olive Oil Basics | Seafood Dishes" {
		t.Errorf("snippet = %q", recs[0].Snippet)
	}
}

func TestEngine_SectionRecommendations(t *testing.T) {
	e := seedEngine()
	recs := e.SectionRecommendations("Training Deep Models", "student", "learn", "doc-ml", 5)
	if len(recs) == 0 {
		t.Fatal("expected recommendations anchored to document context")
	}
	found := false
	for _, r := range recs {
		if r.DocumentID == "doc-ml" {
			found = true
		}
	}
	if !found {
		t.Error("expected anchored document in its own recommendation set")
	}
}

func TestEngine_ForSession(t *testing.T) {
	e := seedEngine()
	docs := e.ForSession("sess-1")
	if len(docs) != 2 {
		t.Fatalf("expected 2 session documents, got %d", len(docs))
	}
	if docs[0].DocID != "doc-cook" || docs[1].DocID != "doc-ml" {
		t.Errorf("unexpected order: %v, %v", docs[0].DocID, docs[1].DocID)
	}
}

func TestEngine_RemoveSession(t *testing.T) {
	e := seedEngine()
	if n := e.RemoveSession("sess-1"); n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	if e.Size() != 1 {
		t.Errorf("size = %d, want 1", e.Size())
	}
	if _, ok := e.Get("doc-ml"); ok {
		t.Error("expected doc-ml removed")
	}
	if _, ok := e.Get("doc-other"); !ok {
		t.Error("expected doc-other kept")
	}
}

func TestEngine_AddReindexes(t *testing.T) {
	e := NewEngine()
	doc := Document{DocID: "d", SessionID: "s", Filename: "f.pdf", Title: "Original Title"}
	e.Add(doc)
	doc.Title = "Updated Title"
	e.Add(doc)
	if e.Size() != 1 {
		t.Errorf("size = %d, want 1 after re-add", e.Size())
	}
	got, _ := e.Get("d")
	if got.Title != "Updated Title" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestCosine(t *testing.T) {
	a := map[string]float64{"x": 1, "y": 2}
	if got := cosine(a, a); got < 0.999 || got > 1.001 {
		t.Errorf("self-cosine = %v, want 1", got)
	}
	b := map[string]float64{"z": 3}
	if got := cosine(a, b); got != 0 {
		t.Errorf("disjoint cosine = %v, want 0", got)
	}
	if got := cosine(a, map[string]float64{}); got != 0 {
		t.Errorf("empty cosine = %v, want 0", got)
	}
}

func TestTermFreq_Stopwords(t *testing.T) {
	tf := termFreq("The cat and the hat")
	if _, ok := tf["the"]; ok {
		t.Error("expected stopword removed")
	}
	if tf["cat"] != 1 || tf["hat"] != 1 {
		t.Errorf("tf = %v", tf)
	}
}
