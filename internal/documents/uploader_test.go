package documents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/ragchat/internal/api"
	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fixedUploader(client UploadClient) *Uploader {
	n := 0
	return NewUploader(client,
		WithClock(func() time.Time { return time.Date(2024, 1, 2, 15, 4, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("doc-%d", n) }),
	)
}

func TestUploader_UploadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "guide.md", "# Guide")

	client := &api.MockGatewayClient{UploadVal: &models.UploadResult{Content: "Guide text", HasContent: true, Chunks: 4, HasChunks: true}}
	doc, err := fixedUploader(client).UploadFile(context.Background(), path, "sk")
	require.NoError(t, err)

	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "guide.md", doc.Name)
	assert.Equal(t, int64(7), doc.Size)
	assert.Equal(t, "text/markdown", doc.MediaType)
	assert.Equal(t, "Guide text", doc.Content)
	assert.Equal(t, 4, doc.Chunks)
	assert.Equal(t, "# Guide", client.UploadedData["guide.md"])
}

func TestUploader_Fallbacks(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "")

	client := &api.MockGatewayClient{UploadVal: &models.UploadResult{Message: "ok"}}
	doc, err := fixedUploader(client).UploadFile(context.Background(), path, "sk")
	require.NoError(t, err)

	assert.Equal(t, models.FallbackDocumentContent, doc.Content)
	assert.Equal(t, 0, doc.Chunks)
	assert.Equal(t, "0 Bytes", FormatSize(doc.Size))
}

func TestUploader_NoCredential(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x")

	client := &api.MockGatewayClient{}
	_, err := fixedUploader(client).UploadFile(context.Background(), path, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrNoCredential))
	assert.Empty(t, client.UploadedNames)
}

func TestUploader_BatchIndependence(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "one.txt", "1"),
		writeFile(t, dir, "two.txt", "2"),
		writeFile(t, dir, "bad.png", "3"),
		writeFile(t, dir, "four.md", "4"),
		filepath.Join(dir, "missing.pdf"),
		writeFile(t, dir, "six.pdf", "6"),
	}

	client := &api.MockGatewayClient{
		UploadErrs: map[string]error{
			"one.txt": apierrors.NewAPIError(500, models.PathUploadDocument, "Upload failed"),
		},
	}

	lib := NewLibrary()
	results, err := fixedUploader(client).UploadFiles(context.Background(), paths, "sk")
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}

	failures := Failures(results)
	require.Len(t, failures, 3)
	assert.EqualError(t, failures[0], "Error uploading one.txt: API error [500] at /upload-document: Upload failed")
	for _, f := range failures {
		assert.True(t, apierrors.IsUploadError(f))
	}

	added := lib.AddResults(results)
	assert.Equal(t, 3, added)
	var names []string
	for _, d := range lib.All() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"two.txt", "four.md", "six.pdf"}, names)
	assert.Equal(t, []string{"one.txt", "two.txt", "four.md", "six.pdf"}, client.UploadedNames)
}

func TestUploader_EmptyBatch(t *testing.T) {
	_, err := fixedUploader(&api.MockGatewayClient{}).UploadFiles(context.Background(), nil, "sk")
	assert.ErrorIs(t, err, apierrors.ErrEmptyInput)
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "")
	writeFile(t, dir, "a.txt", "")
	writeFile(t, dir, "c.md", "")

	paths, err := ExpandPaths([]string{filepath.Join(dir, "*.txt"), filepath.Join(dir, "a.txt"), filepath.Join(dir, "nope.pdf")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "nope.pdf"),
	}, paths)

	_, err = ExpandPaths([]string{"", ""})
	assert.ErrorIs(t, err, apierrors.ErrEmptyInput)

	_, err = ExpandPaths([]string{"[unclosed"})
	assert.Error(t, err)
}
