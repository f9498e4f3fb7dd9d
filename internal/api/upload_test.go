package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

func TestUploadDocument_Multipart(t *testing.T) {
	mock := NewMockHttpClient([]byte(`{"message":"ok","chunks":3,"content":"hello","total_documents":1}`), 200)
	client := newTestClient(t, mock)

	result, err := client.UploadDocument(context.Background(), DocumentUpload{
		Name:      "notes.md",
		MediaType: "text/markdown",
		APIKey:    "sk-test",
		Reader:    strings.NewReader("# hello"),
	})
	if err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if !result.HasContent || result.Content != "hello" {
		t.Errorf("content = %q (has=%v)", result.Content, result.HasContent)
	}
	if !result.HasChunks || result.Chunks != 3 {
		t.Errorf("chunks = %d (has=%v)", result.Chunks, result.HasChunks)
	}

	req := mock.LastRequest()
	if req.URL.Path != "/api/upload-document" {
		t.Errorf("path = %s", req.URL.Path)
	}
	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("Content-Type = %s (%v)", req.Header.Get("Content-Type"), err)
	}

	reader := multipart.NewReader(strings.NewReader(mock.LastBody()), params["boundary"])
	fields := map[string]string{}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart() error = %v", err)
		}
		data, _ := io.ReadAll(part)
		fields[part.FormName()] = string(data)
		if part.FormName() == "file" {
			if part.FileName() != "notes.md" {
				t.Errorf("file name = %s", part.FileName())
			}
			if ct := part.Header.Get("Content-Type"); ct != "text/markdown" {
				t.Errorf("part Content-Type = %s", ct)
			}
		}
	}
	if fields["file"] != "# hello" {
		t.Errorf("file part = %q", fields["file"])
	}
	if fields["api_key"] != "sk-test" {
		t.Errorf("api_key part = %q", fields["api_key"])
	}
	if !strings.HasSuffix(strings.TrimSpace(mock.LastBody()), "--"+params["boundary"]+"--") {
		t.Error("multipart body should end with the closing boundary")
	}
}

func TestUploadDocument_MissingFields(t *testing.T) {
	client := newTestClient(t, NewMockHttpClient([]byte(`{"message":"ok"}`), 200))

	result, err := client.UploadDocument(context.Background(), DocumentUpload{
		Name:   "a.txt",
		Reader: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if result.HasContent || result.HasChunks {
		t.Errorf("absent fields should stay absent: %+v", result)
	}
}

func TestUploadDocument_Failure(t *testing.T) {
	client := newTestClient(t, NewMockHttpClient([]byte(`{"detail":"Unsupported file type"}`), 400))

	_, err := client.UploadDocument(context.Background(), DocumentUpload{
		Name:   "a.txt",
		Reader: strings.NewReader("x"),
	})
	if !apierrors.IsAPIError(err) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if !strings.Contains(err.Error(), "Upload failed: Unsupported file type") {
		t.Errorf("error = %v", err)
	}
}

func TestUploadDocument_EmptyName(t *testing.T) {
	client := newTestClient(t, NewMockHttpClient(nil, 200))
	_, err := client.UploadDocument(context.Background(), DocumentUpload{Reader: strings.NewReader("x")})
	if !errors.Is(err, apierrors.ErrEmptyInput) {
		t.Errorf("error = %v, want ErrEmptyInput", err)
	}
}

func TestParseUploadResult(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantContent bool
		wantChunks  bool
	}{
		{"full", `{"content":"c","chunks":2}`, true, true},
		{"null content", `{"content":null,"chunks":2}`, false, true},
		{"string chunks", `{"chunks":"2"}`, false, false},
		{"not json", `oops`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseUploadResult([]byte(tt.body))
			if got.HasContent != tt.wantContent || got.HasChunks != tt.wantChunks {
				t.Errorf("parseUploadResult(%s) = %+v", tt.body, got)
			}
		})
	}
}

func TestOpenDocumentUpload(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "readme.md")
	if err := os.WriteFile(good, []byte("hi"), 0o600); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "image.png")
	if err := os.WriteFile(bad, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}

	upload, file, size, err := OpenDocumentUpload(good, "sk")
	if err != nil {
		t.Fatalf("OpenDocumentUpload() error = %v", err)
	}
	defer file.Close()
	if upload.Name != "readme.md" || upload.MediaType != "text/markdown" || size != 2 {
		t.Errorf("upload = %+v size=%d", upload, size)
	}

	if _, _, _, err := OpenDocumentUpload(bad, "sk"); err == nil {
		t.Error("expected unsupported type error")
	}
	if _, _, _, err := OpenDocumentUpload(filepath.Join(dir, "missing.txt"), "sk"); err == nil {
		t.Error("expected stat error")
	}
	if _, ok := models.MediaTypeForFile("x.PDF"); !ok {
		t.Error("extension match should ignore case")
	}
}
