// Package documents keeps the client-side list of uploaded documents and
// drives batch uploads to the gateway.
package documents

import (
	"strings"

	"github.com/diogo/ragchat/internal/models"
)

// Library is the ordered list of uploaded documents. It is owned by one
// goroutine (the TUI update loop or a single command) and is not locked.
type Library struct {
	docs []models.Document
}

// NewLibrary creates a library seeded with docs
func NewLibrary(docs ...models.Document) *Library {
	l := &Library{}
	l.docs = append(l.docs, docs...)
	return l
}

// Add appends a document
func (l *Library) Add(doc models.Document) {
	l.docs = append(l.docs, doc)
}

// AddResults appends the successful results of a batch, in call order
func (l *Library) AddResults(results []Result) int {
	added := 0
	for _, r := range results {
		if r.Err == nil {
			l.Add(r.Document)
			added++
		}
	}
	return added
}

// Remove deletes the document with id. An unknown id leaves the list unchanged.
func (l *Library) Remove(id string) bool {
	for i, d := range l.docs {
		if d.ID == id {
			next := make([]models.Document, 0, len(l.docs)-1)
			next = append(next, l.docs[:i]...)
			l.docs = append(next, l.docs[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every document
func (l *Library) Clear() {
	l.docs = nil
}

// All returns a copy of the list
func (l *Library) All() []models.Document {
	out := make([]models.Document, len(l.docs))
	copy(out, l.docs)
	return out
}

// Len returns the number of documents
func (l *Library) Len() int {
	return len(l.docs)
}

// Search filters the full list by a case-insensitive substring of name or
// content. It never narrows the library itself.
func (l *Library) Search(query string) []models.Document {
	return Filter(l.docs, query)
}

// Filter is the projection behind Search
func Filter(docs []models.Document, query string) []models.Document {
	q := strings.ToLower(query)
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if q == "" ||
			strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Content), q) {
			out = append(out, d)
		}
	}
	return out
}
