package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/ragchat/internal/models"
)

func sampleDocs() []models.Document {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []models.Document{
		{ID: "1", Name: "Report.pdf", Content: "quarterly revenue grew", UploadedAt: at},
		{ID: "2", Name: "notes.md", Content: "meeting about REVENUE targets", UploadedAt: at},
		{ID: "3", Name: "todo.txt", Content: "buy milk", UploadedAt: at},
	}
}

func TestLibrary_AddAndAll(t *testing.T) {
	lib := NewLibrary()
	for _, d := range sampleDocs() {
		lib.Add(d)
	}

	require.Equal(t, 3, lib.Len())
	all := lib.All()
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, "3", all[2].ID)

	all[0].Name = "mutated"
	assert.Equal(t, "Report.pdf", lib.All()[0].Name, "All must return a copy")
}

func TestLibrary_Remove(t *testing.T) {
	lib := NewLibrary(sampleDocs()...)

	assert.True(t, lib.Remove("2"))
	assert.Equal(t, 2, lib.Len())
	assert.Equal(t, []string{"1", "3"}, ids(lib.All()))
}

func TestLibrary_RemoveUnknownID(t *testing.T) {
	lib := NewLibrary(sampleDocs()...)
	before := lib.All()

	assert.False(t, lib.Remove("does-not-exist"))
	assert.ElementsMatch(t, before, lib.All())
	assert.Equal(t, len(before), lib.Len())
}

func TestLibrary_Search(t *testing.T) {
	lib := NewLibrary(sampleDocs()...)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"revenue", []string{"1", "2"}},
		{"NOTES", []string{"2"}},
		{".txt", []string{"3"}},
		{"buy milk", []string{"3"}},
		{"  milk  ", []string{}},
		{"absent", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(lib.Search(tt.query)))
		})
	}
}

func TestFilter_WhitespaceIsLiteral(t *testing.T) {
	docs := []models.Document{
		{ID: "a", Name: "one.txt", Content: "single"},
		{ID: "b", Name: "two words.txt", Content: "x"},
		{ID: "c", Name: "three.md", Content: "has space"},
	}

	assert.Equal(t, []string{"b", "c"}, ids(Filter(docs, " ")))
	assert.Empty(t, Filter(docs, "\t"))
}

func TestLibrary_SearchIsPure(t *testing.T) {
	lib := NewLibrary(sampleDocs()...)

	first := lib.Search("revenue")
	require.Len(t, first, 2)

	// A second search runs against the full list, not the previous view.
	second := lib.Search("milk")
	assert.Equal(t, []string{"3"}, ids(second))
	assert.Empty(t, Filter(first, "milk"))
	assert.Equal(t, 3, lib.Len())

	combined := lib.Search("revenue" + "milk")
	assert.Empty(t, combined)
	assert.NotEqual(t, ids(Filter(first, "grew")), ids(combined))
}

func TestLibrary_AddResults(t *testing.T) {
	lib := NewLibrary()
	results := []Result{
		{Path: "a", Document: models.Document{ID: "a"}},
		{Path: "b", Err: assert.AnError},
		{Path: "c", Document: models.Document{ID: "c"}},
		{Path: "d", Err: assert.AnError},
	}

	added := lib.AddResults(results)
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"a", "c"}, ids(lib.All()))
}

func ids(docs []models.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
