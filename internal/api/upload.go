package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

// MaxDocumentSize bounds a single upload
const MaxDocumentSize = 50 * 1024 * 1024 // 50MB

// DocumentUpload is one file handed to the gateway
type DocumentUpload struct {
	Name      string
	MediaType string
	APIKey    string
	Reader    io.Reader
}

// OpenDocumentUpload prepares a DocumentUpload from a file on disk.
// The caller closes the returned file.
func OpenDocumentUpload(path, apiKey string) (DocumentUpload, *os.File, int64, error) {
	mediaType, ok := models.MediaTypeForFile(path)
	if !ok {
		return DocumentUpload{}, nil, 0, apierrors.NewValidationError("file",
			fmt.Sprintf("unsupported document type %q", filepath.Ext(path)))
	}

	info, err := os.Stat(path)
	if err != nil {
		return DocumentUpload{}, nil, 0, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return DocumentUpload{}, nil, 0, apierrors.NewValidationError("file", fmt.Sprintf("%s is a directory", path))
	}
	if info.Size() > MaxDocumentSize {
		return DocumentUpload{}, nil, 0, fmt.Errorf("file size exceeds maximum %d bytes", MaxDocumentSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return DocumentUpload{}, nil, 0, fmt.Errorf("failed to open file: %w", err)
	}

	return DocumentUpload{
		Name:      filepath.Base(path),
		MediaType: mediaType,
		APIKey:    apiKey,
		Reader:    file,
	}, file, info.Size(), nil
}

// UploadDocument sends one file as multipart/form-data to /upload-document
func (c *Client) UploadDocument(ctx context.Context, upload DocumentUpload) (*models.UploadResult, error) {
	if upload.Name == "" {
		return nil, apierrors.NewEmptyInputError("file name")
	}
	if upload.Reader == nil {
		return nil, apierrors.NewEmptyInputError("file")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(upload.Name)))
	mediaType := upload.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	header.Set("Content-Type", mediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, io.LimitReader(upload.Reader, MaxDocumentSize+1)); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}
	if upload.APIKey != "" {
		if err := writer.WriteField("api_key", upload.APIKey); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := c.newRequest(ctx, fhttp.MethodPost, models.PathUploadDocument, &body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	keyedInBody(req, upload.APIKey)

	respBody, err := c.doJSON(ctx, req, "upload", models.PathUploadDocument, "Upload failed")
	if err != nil {
		return nil, err
	}

	return parseUploadResult(respBody), nil
}

// parseUploadResult tolerates missing or malformed fields; Resolve fills the gaps
func parseUploadResult(body []byte) *models.UploadResult {
	result := &models.UploadResult{}
	if !gjson.ValidBytes(body) {
		return result
	}

	if msg := gjson.GetBytes(body, "message"); msg.Exists() {
		result.Message = msg.String()
	}
	if content := gjson.GetBytes(body, "content"); content.Exists() && content.Type == gjson.String {
		result.Content = content.String()
		result.HasContent = true
	}
	if chunks := gjson.GetBytes(body, "chunks"); chunks.Exists() && chunks.Type == gjson.Number {
		result.Chunks = int(chunks.Int())
		result.HasChunks = true
	}
	return result
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
