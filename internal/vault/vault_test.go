package vault_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vault/internal/api"
	"vault/internal/domain/models"
	"vault/internal/vault"
)

const testCompanyID = int64(7)

// fakeAPI is an in-memory stand-in for the external store. Every
// method can be overridden per test; the defaults succeed and record
// the mutation.
type fakeAPI struct {
	folders   []models.Folder
	documents []models.Document

	nextID int64

	moveFolderCalls   int
	moveDocumentCalls int
	commitCalls       int

	listFoldersFn    func(ctx context.Context, companyID int64) ([]models.Folder, error)
	createFolderFn   func(ctx context.Context, req *models.CreateFolderRequest) (*models.Folder, error)
	renameFolderFn   func(ctx context.Context, folderID int64, name string) (*models.Folder, error)
	renameDocumentFn func(ctx context.Context, documentID int64, name string) (*models.Document, error)
	deleteFolderFn   func(ctx context.Context, folderID int64) error
	deleteDocumentFn func(ctx context.Context, documentID int64) error
	moveFolderFn     func(ctx context.Context, folderID int64, parentID *int64) error
	moveDocumentFn   func(ctx context.Context, documentID int64, folderID *int64) error
	credentialFn     func(ctx context.Context, req *models.UploadCredentialRequest) (*models.UploadCredential, error)
	commitFn         func(ctx context.Context, req *models.CommitDocumentRequest) (*models.Document, error)
	readURLFn        func(ctx context.Context, documentID int64) (string, error)
}

var _ api.Client = (*fakeAPI)(nil)

func (f *fakeAPI) ListFolders(ctx context.Context, companyID int64) ([]models.Folder, error) {
	if f.listFoldersFn != nil {
		return f.listFoldersFn(ctx, companyID)
	}
	return append([]models.Folder(nil), f.folders...), nil
}

func (f *fakeAPI) ListDocuments(ctx context.Context, companyID int64, folderID *int64) ([]models.Document, error) {
	return append([]models.Document(nil), f.documents...), nil
}

func (f *fakeAPI) GetFolder(ctx context.Context, folderID int64) (*api.FolderContents, error) {
	for _, folder := range f.folders {
		if folder.ID == folderID {
			return &api.FolderContents{Folder: folder}, nil
		}
	}
	return nil, fmt.Errorf("folder %d not found", folderID)
}

func (f *fakeAPI) CreateFolder(ctx context.Context, req *models.CreateFolderRequest) (*models.Folder, error) {
	if f.createFolderFn != nil {
		return f.createFolderFn(ctx, req)
	}
	f.nextID++
	return &models.Folder{
		ID:        1000 + f.nextID,
		Name:      req.Name,
		ParentID:  req.ParentID,
		CompanyID: req.CompanyID,
		CreatedAt: time.Now(),
	}, nil
}

func (f *fakeAPI) RenameFolder(ctx context.Context, folderID int64, name string) (*models.Folder, error) {
	if f.renameFolderFn != nil {
		return f.renameFolderFn(ctx, folderID, name)
	}
	return &models.Folder{ID: folderID, Name: name}, nil
}

func (f *fakeAPI) RenameDocument(ctx context.Context, documentID int64, name string) (*models.Document, error) {
	if f.renameDocumentFn != nil {
		return f.renameDocumentFn(ctx, documentID, name)
	}
	return &models.Document{ID: documentID, Name: name}, nil
}

func (f *fakeAPI) DeleteFolder(ctx context.Context, folderID int64) error {
	if f.deleteFolderFn != nil {
		return f.deleteFolderFn(ctx, folderID)
	}
	return nil
}

func (f *fakeAPI) DeleteDocument(ctx context.Context, documentID int64) error {
	if f.deleteDocumentFn != nil {
		return f.deleteDocumentFn(ctx, documentID)
	}
	return nil
}

func (f *fakeAPI) MoveFolder(ctx context.Context, folderID int64, parentID *int64) error {
	f.moveFolderCalls++
	if f.moveFolderFn != nil {
		return f.moveFolderFn(ctx, folderID, parentID)
	}
	return nil
}

func (f *fakeAPI) MoveDocument(ctx context.Context, documentID int64, folderID *int64) error {
	f.moveDocumentCalls++
	if f.moveDocumentFn != nil {
		return f.moveDocumentFn(ctx, documentID, folderID)
	}
	return nil
}

func (f *fakeAPI) RequestUploadCredential(ctx context.Context, req *models.UploadCredentialRequest) (*models.UploadCredential, error) {
	if f.credentialFn != nil {
		return f.credentialFn(ctx, req)
	}
	return &models.UploadCredential{PresignedURL: "http://store.invalid/put", Key: "root/1-" + req.FileName}, nil
}

func (f *fakeAPI) CommitDocument(ctx context.Context, req *models.CommitDocumentRequest) (*models.Document, error) {
	f.commitCalls++
	if f.commitFn != nil {
		return f.commitFn(ctx, req)
	}
	f.nextID++
	return &models.Document{
		ID:        2000 + f.nextID,
		Name:      req.Name,
		Extension: req.Extension,
		FolderID:  req.FolderID,
		CompanyID: req.CompanyID,
		Size:      req.Size,
		Key:       req.Key,
	}, nil
}

func (f *fakeAPI) GetReadURL(ctx context.Context, documentID int64) (string, error) {
	if f.readURLFn != nil {
		return f.readURLFn(ctx, documentID)
	}
	return "http://store.invalid/get", nil
}

func (f *fakeAPI) SetAuthToken(token string) {}

// --- fixtures ---

func i64(v int64) *int64 { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixtureFolders is the three-level chain Root(1) > Tax(2) > 2024(3)
// plus a sibling Audit(4) at root.
func fixtureFolders() []models.Folder {
	return []models.Folder{
		{ID: 1, Name: "Root", CompanyID: testCompanyID},
		{ID: 2, Name: "Tax", ParentID: i64(1), CompanyID: testCompanyID},
		{ID: 3, Name: "2024", ParentID: i64(2), CompanyID: testCompanyID},
		{ID: 4, Name: "Audit", CompanyID: testCompanyID},
	}
}

func fixtureDocuments() []models.Document {
	return []models.Document{
		{ID: 10, Name: "charter.pdf", Extension: "pdf", CompanyID: testCompanyID, Size: 1024},
		{ID: 11, Name: "q1.xlsx", Extension: "xlsx", FolderID: i64(2), CompanyID: testCompanyID, Size: 2048},
	}
}

// newTestSession builds a refreshed session over the fake store.
func newTestSession(t *testing.T, store *fakeAPI) *vault.Session {
	t.Helper()
	session := vault.NewSession(store, testCompanyID, discardLogger())
	require.NoError(t, session.Refresh(context.Background()))
	return session
}
