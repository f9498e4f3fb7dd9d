package documents

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/ragchat/internal/api"
	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

// UploadClient is the part of the gateway client the uploader needs
type UploadClient interface {
	UploadDocument(ctx context.Context, upload api.DocumentUpload) (*models.UploadResult, error)
}

// Result is the outcome for one file of a batch
type Result struct {
	Path     string
	Document models.Document
	Err      error
}

// Uploader sends files to the gateway and turns responses into Documents
type Uploader struct {
	client UploadClient
	now    func() time.Time
	newID  func() string
}

// UploaderOption configures an Uploader
type UploaderOption func(*Uploader)

// WithClock replaces time.Now
func WithClock(now func() time.Time) UploaderOption {
	return func(u *Uploader) {
		u.now = now
	}
}

// WithIDGenerator replaces the uuid generator
func WithIDGenerator(fn func() string) UploaderOption {
	return func(u *Uploader) {
		u.newID = fn
	}
}

// NewUploader creates an uploader
func NewUploader(client UploadClient, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		client: client,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UploadFile uploads one file from disk. Any failure comes back as an
// UploadError naming the file.
func (u *Uploader) UploadFile(ctx context.Context, path, apiKey string) (models.Document, error) {
	name := filepath.Base(path)
	if apiKey == "" {
		return models.Document{}, apierrors.NewUploadError(name, apierrors.ErrNoCredential)
	}

	upload, file, size, err := api.OpenDocumentUpload(path, apiKey)
	if err != nil {
		return models.Document{}, apierrors.NewUploadError(name, err)
	}
	defer file.Close()

	result, err := u.client.UploadDocument(ctx, upload)
	if err != nil {
		return models.Document{}, apierrors.NewUploadError(name, err)
	}

	return result.Resolve(u.newID(), upload.Name, size, upload.MediaType, u.now()), nil
}

// UploadFiles processes paths one after another. A failure never stops the
// files after it; results are returned in call order.
func (u *Uploader) UploadFiles(ctx context.Context, paths []string, apiKey string) ([]Result, error) {
	if len(paths) == 0 {
		return nil, apierrors.NewEmptyInputError("files")
	}

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		doc, err := u.UploadFile(ctx, path, apiKey)
		results = append(results, Result{Path: path, Document: doc, Err: err})
	}
	return results, nil
}

// Failures returns the errors of a batch, in call order
func Failures(results []Result) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// ExpandPaths resolves glob patterns into a sorted, de-duplicated list of
// files. A pattern with no match is kept as-is so the upload reports it.
func ExpandPaths(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			if errors.Is(err, filepath.ErrBadPattern) {
				return nil, apierrors.NewValidationError("path", "bad pattern "+pattern)
			}
			return nil, err
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}

	if len(out) == 0 {
		return nil, apierrors.NewEmptyInputError("files")
	}
	return out, nil
}
