// Package recommend ranks documents in a session library against a query
// using TF-IDF weighted cosine similarity over title and heading text. The
// engine is an explicitly owned in-memory index: callers construct it and
// pass it in, and all access is mutex-guarded so independent document
// pipelines can index concurrently.
package recommend

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/dbarrow/outliner/internal/outline"
)

// simThreshold is the minimum cosine similarity for a document to appear in
// recommendations.
const simThreshold = 0.1

// snippetLen truncates section text in snippets.
const snippetLen = 50

// maxRelevantSections caps the per-document section list.
const maxRelevantSections = 3

// stopwords excluded from term vectors. A compact English list; headings are
// short, so the common-word noise floor matters more than coverage.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "this": true, "to": true, "was": true,
	"were": true, "will": true, "with": true,
}

// Document is one indexed library entry.
type Document struct {
	DocID     string
	SessionID string
	Filename  string
	Title     string
	Outline   []outline.Entry
}

// Section is a heading matched against a query.
type Section struct {
	Text           string  `json:"text"`
	Page           int     `json:"page"`
	Level          string  `json:"level"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Recommendation is one ranked library document with its matching sections.
type Recommendation struct {
	DocumentID       string    `json:"document_id"`
	Document         string    `json:"document"`
	Title            string    `json:"title"`
	SimilarityScore  float64   `json:"similarity_score"`
	RelevantSections []Section `json:"relevant_sections"`
	Snippet          string    `json:"snippet"`
}

type docEntry struct {
	doc   Document
	terms map[string]int // term frequency over title + heading text
}

// Engine is the in-memory TF-IDF index.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]*docEntry
}

// NewEngine creates an empty index.
func NewEngine() *Engine {
	return &Engine{docs: make(map[string]*docEntry)}
}

// Add indexes (or re-indexes) a document.
func (e *Engine) Add(doc Document) {
	var sb strings.Builder
	sb.WriteString(doc.Title)
	for _, entry := range doc.Outline {
		sb.WriteByte(' ')
		sb.WriteString(entry.Text)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[doc.DocID] = &docEntry{doc: doc, terms: termFreq(sb.String())}
}

// Get returns an indexed document by id.
func (e *Engine) Get(docID string) (Document, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.docs[docID]
	if !ok {
		return Document{}, false
	}
	return d.doc, true
}

// Size returns the number of indexed documents.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs)
}

// ForSession returns the indexed documents of one session.
func (e *Engine) ForSession(sessionID string) []Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []Document
	for _, d := range e.docs {
		if d.doc.SessionID == sessionID {
			out = append(out, d.doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out
}

// RemoveSession drops all documents of a session and returns how many.
func (e *Engine) RemoveSession(sessionID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for id, d := range e.docs {
		if d.doc.SessionID == sessionID {
			delete(e.docs, id)
			n++
		}
	}
	return n
}

// Recommendations ranks the whole library against a free-text query built
// from persona, job and context. Documents below the similarity cutoff are
// omitted.
func (e *Engine) Recommendations(persona, job, context string) []Recommendation {
	query := strings.TrimSpace(persona + " " + job + " " + context)
	queryTerms := termFreq(query)
	if len(queryTerms) == 0 {
		return nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.docs) == 0 {
		return nil
	}

	df := e.docFreqLocked()
	n := len(e.docs)
	queryVec := tfidf(queryTerms, df, n)

	var recs []Recommendation
	for id, d := range e.docs {
		sim := cosine(queryVec, tfidf(d.terms, df, n))
		if sim <= simThreshold {
			continue
		}
		recs = append(recs, Recommendation{
			DocumentID:       id,
			Document:         d.doc.Filename,
			Title:            d.doc.Title,
			SimilarityScore:  sim,
			RelevantSections: relevantSections(d.doc.Outline, query),
			Snippet:          snippet(d.doc.Outline),
		})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].SimilarityScore != recs[j].SimilarityScore {
			return recs[i].SimilarityScore > recs[j].SimilarityScore
		}
		return recs[i].DocumentID < recs[j].DocumentID
	})
	return recs
}

// SectionRecommendations anchors the query to a document (and optionally one
// page of it) and recommends related library documents for the selected
// section text.
func (e *Engine) SectionRecommendations(section, persona, job, docID string, page int) []Recommendation {
	context := section
	if doc, ok := e.Get(docID); ok {
		context = doc.Title
		if page >= 0 {
			var parts []string
			for _, entry := range doc.Outline {
				if entry.Page == page {
					parts = append(parts, entry.Text)
				}
			}
			if len(parts) > 0 {
				context += " " + strings.Join(parts, " ")
			}
		}
		if section != "" {
			context += " " + section
		}
	}
	return e.Recommendations(persona, job, context)
}

// relevantSections matches headings against the query by token overlap.
func relevantSections(entries []outline.Entry, query string) []Section {
	queryWords := tokenSet(query)
	if len(queryWords) == 0 {
		return nil
	}
	var out []Section
	for _, entry := range entries {
		overlap := 0
		for w := range tokenSet(entry.Text) {
			if queryWords[w] {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		out = append(out, Section{
			Text:           entry.Text,
			Page:           entry.Page,
			Level:          string(entry.Level),
			RelevanceScore: float64(overlap) / float64(len(queryWords)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RelevanceScore > out[j].RelevanceScore })
	if len(out) > maxRelevantSections {
		out = out[:maxRelevantSections]
	}
	return out
}

// snippet builds a short preview from the first headings.
func snippet(entries []outline.Entry) string {
	var parts []string
	for i, entry := range entries {
		if i >= 2 {
			break
		}
		text := entry.Text
		if len([]rune(text)) > snippetLen {
			text = string([]rune(text)[:snippetLen]) + "..."
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return "No content available"
	}
	return strings.Join(parts, " | ")
}

// docFreqLocked counts, per term, how many documents contain it. Caller
// holds at least a read lock.
func (e *Engine) docFreqLocked() map[string]int {
	df := make(map[string]int)
	for _, d := range e.docs {
		for t := range d.terms {
			df[t]++
		}
	}
	return df
}

func tfidf(terms map[string]int, df map[string]int, n int) map[string]float64 {
	vec := make(map[string]float64, len(terms))
	for t, tf := range terms {
		idf := math.Log(1 + float64(n)/float64(1+df[t]))
		vec[t] = float64(tf) * idf
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for t, va := range a {
		normA += va * va
		if vb, ok := b[t]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_'
	})
}

func termFreq(text string) map[string]int {
	tf := make(map[string]int)
	for _, w := range tokenize(text) {
		if stopwords[w] {
			continue
		}
		tf[w]++
	}
	return tf
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range tokenize(text) {
		set[w] = true
	}
	return set
}
