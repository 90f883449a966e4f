package vault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"vault/internal/api"
	"vault/internal/domain"
	"vault/internal/domain/models"
)

// Uploader runs the two-phase document ingestion protocol: a presigned
// write credential is issued for a destination-scoped object key, the
// bytes go directly to the object store over HTTP PUT, and only after
// the transfer succeeds is the metadata committed. The application
// server never sees the payload.
type Uploader struct {
	api       api.Client
	store     *http.Client
	companyID int64
	logger    *slog.Logger
}

// NewUploader creates an uploader for one company. The store client is
// used only for the direct object-store transfer.
func NewUploader(client api.Client, companyID int64, logger *slog.Logger) *Uploader {
	return &Uploader{
		api:       client,
		store:     &http.Client{}, // no timeout: transfers are bounded by ctx
		companyID: companyID,
		logger:    logger,
	}
}

// UploadRequest describes one file to ingest. Reader supplies exactly
// Size bytes.
type UploadRequest struct {
	Name     string
	Size     int64
	Reader   io.Reader
	FolderID *int64 // nil = company root
}

// CommitError reports a Phase 3 failure after a successful transfer.
// The bytes already sit in the object store under Pending.Key; retry
// the commit with RetryCommit rather than re-uploading.
type CommitError struct {
	Pending *models.CommitDocumentRequest
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit of %q (key %s) failed: %v", e.Pending.Name, e.Pending.Key, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Is allows errors.Is() to match against ErrCommitFailure
func (e *CommitError) Is(target error) bool { return target == domain.ErrCommitFailure }

// Upload runs all three phases. If the transfer fails no metadata
// record is created and the upload counts as not-started; partially
// written bytes are orphaned in the object store and not tracked here.
// Cancellation via ctx is honored mid-transfer only - once the commit
// is dispatched the operation is committed-or-failed.
func (u *Uploader) Upload(ctx context.Context, req *UploadRequest) (*models.Document, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ValidationError{Message: "file name must not be empty"}
	}
	if req.Size < 0 {
		return nil, &domain.ValidationError{Message: "file size must not be negative"}
	}

	// Phase 1: credential issuance. The returned key embeds the
	// destination and a timestamp, so concurrent uploads of the same
	// file name cannot collide.
	cred, err := u.api.RequestUploadCredential(ctx, &models.UploadCredentialRequest{
		FileName: req.Name,
		FileType: contentTypeFor(req.Name),
		FolderID: req.FolderID,
	})
	if err != nil {
		return nil, fmt.Errorf("request upload credential: %w", err)
	}

	start := time.Now()

	// Phase 2: direct transfer to the object store.
	if err := u.transfer(ctx, cred.PresignedURL, req); err != nil {
		u.logger.Warn("upload transfer failed",
			"name", req.Name,
			"key", cred.Key,
			"error", err,
		)
		return nil, err
	}

	u.logger.Debug("upload transfer complete",
		"name", req.Name,
		"key", cred.Key,
		"size", req.Size,
		"elapsed", time.Since(start),
	)

	// Phase 3: metadata commit. Once the transfer has succeeded the
	// commit is dispatched regardless of ctx cancellation.
	pending := &models.CommitDocumentRequest{
		Name:      req.Name,
		Key:       cred.Key,
		FolderID:  req.FolderID,
		CompanyID: u.companyID,
		Size:      req.Size,
		Extension: extensionFor(req.Name),
	}

	doc, err := u.api.CommitDocument(context.WithoutCancel(ctx), pending)
	if err != nil {
		return nil, &CommitError{Pending: pending, Err: err}
	}

	u.logger.Info("document uploaded",
		"id", doc.ID,
		"name", doc.Name,
		"key", doc.Key,
		"folder_id", logID(req.FolderID),
	)

	return doc, nil
}

// RetryCommit re-runs Phase 3 with the key of a failed commit. The
// store deduplicates on the key, so a retry yields exactly one record.
func (u *Uploader) RetryCommit(ctx context.Context, pending *models.CommitDocumentRequest) (*models.Document, error) {
	doc, err := u.api.CommitDocument(ctx, pending)
	if err != nil {
		return nil, &CommitError{Pending: pending, Err: err}
	}
	return doc, nil
}

// transfer PUTs the bytes against the presigned URL. Any failure here
// leaves the upload in the not-started state for retry purposes.
func (u *Uploader) transfer(ctx context.Context, presignedURL string, req *UploadRequest) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, req.Reader)
	if err != nil {
		return fmt.Errorf("create transfer request: %w", err)
	}
	httpReq.ContentLength = req.Size
	httpReq.Header.Set("Content-Type", contentTypeFor(req.Name))

	resp, err := u.store.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransferFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: object store returned %d: %s", domain.ErrTransferFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}

// Download streams a document's bytes to w via a presigned read URL,
// mirroring the upload path: the payload never touches the application
// server.
func (u *Uploader) Download(ctx context.Context, documentID int64, w io.Writer) (int64, error) {
	readURL, err := u.api.GetReadURL(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("request read url: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, readURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create download request: %w", err)
	}

	resp, err := u.store.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrTransferFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: object store returned %d", domain.ErrTransferFailure, resp.StatusCode)
	}

	return io.Copy(w, resp.Body)
}

// extensionFor returns the lowercase extension without the dot.
func extensionFor(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
