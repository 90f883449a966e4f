package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault/internal/api"
	"vault/internal/domain"
	"vault/internal/domain/models"
)

func respond(t *testing.T, w http.ResponseWriter, status int, success bool, message string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err = json.NewEncoder(w).Encode(map[string]any{
		"data":    json.RawMessage(raw),
		"success": success,
		"message": message,
	})
	require.NoError(t, err)
}

func TestListFoldersDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/vault/folders", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("companyId"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		respond(t, w, http.StatusOK, true, "", []models.Folder{
			{ID: 1, Name: "Root", CompanyID: 7},
			{ID: 2, Name: "Tax", ParentID: ptr(int64(1)), CompanyID: 7},
		})
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.URL)
	client.SetAuthToken("tok-123")

	folders, err := client.ListFolders(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Tax", folders[1].Name)
	require.NotNil(t, folders[1].ParentID)
	assert.EqualValues(t, 1, *folders[1].ParentID)
}

func TestUnauthorizedEscalates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.URL)
	_, err := client.ListFolders(context.Background(), 7)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNotFoundMapsToTypedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusNotFound, false, "folder does not exist", nil)
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.URL)
	err := client.DeleteFolder(context.Background(), 99)
	require.ErrorIs(t, err, domain.ErrNotFound)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "folder does not exist", notFound.Message)
}

func TestConflictMapsToSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusConflict, false, "name already taken", nil)
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.URL)
	_, err := client.CreateFolder(context.Background(), &models.CreateFolderRequest{Name: "Tax", CompanyID: 7})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "name already taken")
}

func TestFailureEnvelopeBecomesRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusInternalServerError, false, "database offline", nil)
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.URL)
	_, err := client.ListDocuments(context.Background(), 7, nil)
	require.Error(t, err)

	var remote *domain.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusInternalServerError, remote.Status)
	assert.Equal(t, "database offline", remote.Message)
}

func TestMoveFolderSendsParentID(t *testing.T) {
	var body models.MoveFolderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/vault/folders/3/move", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		respond(t, w, http.StatusOK, true, "", nil)
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.URL)
	require.NoError(t, client.MoveFolder(context.Background(), 3, ptr(int64(5))))
	require.NotNil(t, body.ParentID)
	assert.EqualValues(t, 5, *body.ParentID)

	// Move to root serializes a null parent.
	require.NoError(t, client.MoveFolder(context.Background(), 3, nil))
	assert.Nil(t, body.ParentID)
}

func TestRequestUploadCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vault/uploads", r.URL.Path)
		var req models.UploadCredentialRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "report.pdf", req.FileName)

		respond(t, w, http.StatusOK, true, "", models.UploadCredential{
			PresignedURL: "https://store.example.com/put",
			Key:          "root/1700000000-report.pdf",
		})
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.URL)
	cred, err := client.RequestUploadCredential(context.Background(), &models.UploadCredentialRequest{
		FileName: "report.pdf",
		FileType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "root/1700000000-report.pdf", cred.Key)
	assert.Equal(t, "https://store.example.com/put", cred.PresignedURL)
}

func TestGetReadURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vault/documents/10/url", r.URL.Path)
		respond(t, w, http.StatusOK, true, "", map[string]string{"presignedUrl": "https://store.example.com/get"})
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.URL)
	readURL, err := client.GetReadURL(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com/get", readURL)
}

func ptr[T any](v T) *T { return &v }
