package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"vault/internal/domain"
	"vault/internal/domain/models"
)

// Client is the CRUD contract the vault core consumes. The exact HTTP
// shapes are owned by the external API layer; every operation reports
// success or failure through the uniform {data, success, message}
// envelope, and any non-success is a recoverable error, never a crash.
type Client interface {
	ListFolders(ctx context.Context, companyID int64) ([]models.Folder, error)
	ListDocuments(ctx context.Context, companyID int64, folderID *int64) ([]models.Document, error)
	GetFolder(ctx context.Context, folderID int64) (*FolderContents, error)
	CreateFolder(ctx context.Context, req *models.CreateFolderRequest) (*models.Folder, error)
	RenameFolder(ctx context.Context, folderID int64, name string) (*models.Folder, error)
	RenameDocument(ctx context.Context, documentID int64, name string) (*models.Document, error)
	DeleteFolder(ctx context.Context, folderID int64) error
	DeleteDocument(ctx context.Context, documentID int64) error
	MoveFolder(ctx context.Context, folderID int64, parentID *int64) error
	MoveDocument(ctx context.Context, documentID int64, folderID *int64) error
	RequestUploadCredential(ctx context.Context, req *models.UploadCredentialRequest) (*models.UploadCredential, error)
	CommitDocument(ctx context.Context, req *models.CommitDocumentRequest) (*models.Document, error)
	GetReadURL(ctx context.Context, documentID int64) (string, error)
	SetAuthToken(token string)
}

// FolderContents is a folder together with its direct children, as
// returned by the single-folder endpoint.
type FolderContents struct {
	Folder       models.Folder     `json:"folder"`
	ChildFolders []models.Folder   `json:"childFolders"`
	Documents    []models.Document `json:"documents"`
}

// envelope is the uniform response shape of the external store.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
}

type httpClient struct {
	baseURL   string
	client    *http.Client
	authToken string
}

// NewHTTPClient creates an API client against the given base URL,
// e.g. "https://api.example.com".
func NewHTTPClient(baseURL string) Client {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetAuthToken sets the opaque bearer token for subsequent requests.
// Session handling itself lives outside the vault core.
func (c *httpClient) SetAuthToken(token string) {
	c.authToken = token
}

// do issues one request and decodes the envelope into out (if non-nil).
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("build url %s: %w", path, err)
	}
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Escalated to the session layer, not handled in the core.
		return domain.ErrUnauthorized
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}

	if !env.Success {
		if resp.StatusCode == http.StatusNotFound {
			return &domain.NotFoundError{Message: remoteMessage(env.Message, resp.StatusCode)}
		}
		if resp.StatusCode == http.StatusConflict {
			return fmt.Errorf("%s: %w", remoteMessage(env.Message, resp.StatusCode), domain.ErrConflict)
		}
		return &domain.RemoteError{Status: resp.StatusCode, Message: remoteMessage(env.Message, resp.StatusCode)}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data for %s %s: %w", method, path, err)
		}
	}

	return nil
}

func remoteMessage(message string, status int) string {
	if message != "" {
		return message
	}
	return fmt.Sprintf("server returned status %d", status)
}

func (c *httpClient) ListFolders(ctx context.Context, companyID int64) ([]models.Folder, error) {
	query := url.Values{}
	query.Set("companyId", strconv.FormatInt(companyID, 10))

	var folders []models.Folder
	if err := c.do(ctx, http.MethodGet, "/api/vault/folders", query, nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

func (c *httpClient) ListDocuments(ctx context.Context, companyID int64, folderID *int64) ([]models.Document, error) {
	query := url.Values{}
	query.Set("companyId", strconv.FormatInt(companyID, 10))
	if folderID != nil {
		query.Set("folderId", strconv.FormatInt(*folderID, 10))
	}

	var docs []models.Document
	if err := c.do(ctx, http.MethodGet, "/api/vault/documents", query, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *httpClient) GetFolder(ctx context.Context, folderID int64) (*FolderContents, error) {
	var contents FolderContents
	path := "/api/vault/folders/" + strconv.FormatInt(folderID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &contents); err != nil {
		return nil, err
	}
	return &contents, nil
}

func (c *httpClient) CreateFolder(ctx context.Context, req *models.CreateFolderRequest) (*models.Folder, error) {
	var folder models.Folder
	if err := c.do(ctx, http.MethodPost, "/api/vault/folders", nil, req, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (c *httpClient) RenameFolder(ctx context.Context, folderID int64, name string) (*models.Folder, error) {
	var folder models.Folder
	path := "/api/vault/folders/" + strconv.FormatInt(folderID, 10)
	req := models.RenameFolderRequest{Name: name}
	if err := c.do(ctx, http.MethodPatch, path, nil, &req, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (c *httpClient) RenameDocument(ctx context.Context, documentID int64, name string) (*models.Document, error) {
	var doc models.Document
	path := "/api/vault/documents/" + strconv.FormatInt(documentID, 10)
	req := models.RenameDocumentRequest{Name: name}
	if err := c.do(ctx, http.MethodPatch, path, nil, &req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *httpClient) DeleteFolder(ctx context.Context, folderID int64) error {
	path := "/api/vault/folders/" + strconv.FormatInt(folderID, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *httpClient) DeleteDocument(ctx context.Context, documentID int64) error {
	path := "/api/vault/documents/" + strconv.FormatInt(documentID, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *httpClient) MoveFolder(ctx context.Context, folderID int64, parentID *int64) error {
	path := "/api/vault/folders/" + strconv.FormatInt(folderID, 10) + "/move"
	req := models.MoveFolderRequest{ParentID: parentID}
	return c.do(ctx, http.MethodPost, path, nil, &req, nil)
}

func (c *httpClient) MoveDocument(ctx context.Context, documentID int64, folderID *int64) error {
	path := "/api/vault/documents/" + strconv.FormatInt(documentID, 10) + "/move"
	req := models.MoveDocumentRequest{FolderID: folderID}
	return c.do(ctx, http.MethodPost, path, nil, &req, nil)
}

func (c *httpClient) RequestUploadCredential(ctx context.Context, req *models.UploadCredentialRequest) (*models.UploadCredential, error) {
	var cred models.UploadCredential
	if err := c.do(ctx, http.MethodPost, "/api/vault/uploads", nil, req, &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (c *httpClient) CommitDocument(ctx context.Context, req *models.CommitDocumentRequest) (*models.Document, error) {
	var doc models.Document
	if err := c.do(ctx, http.MethodPost, "/api/vault/documents", nil, req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *httpClient) GetReadURL(ctx context.Context, documentID int64) (string, error) {
	var out struct {
		PresignedURL string `json:"presignedUrl"`
	}
	path := "/api/vault/documents/" + strconv.FormatInt(documentID, 10) + "/url"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return "", err
	}
	return out.PresignedURL, nil
}
