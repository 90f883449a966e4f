package models

import (
	"time"
)

// Document is one flat metadata record from the external store. The
// bytes themselves live in the object store under Key; URL is a
// server-issued read location and may be stale.
type Document struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	Extension string    `json:"extension"`
	FolderID  *int64    `json:"folderId"` // nil = company root listing
	CompanyID int64     `json:"companyId"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	Key       string    `json:"key"` // object-store path
	CreatedAt time.Time `json:"createdAt"`
}

type RenameDocumentRequest struct {
	Name string `json:"name"`
}

type MoveDocumentRequest struct {
	FolderID *int64 `json:"folderId"` // nil = move to company root
}

// UploadCredentialRequest asks the backend for a time-boxed write
// credential scoped to a destination; the server does not yet know
// the file exists.
type UploadCredentialRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FolderID *int64 `json:"folderId,omitempty"`
}

// UploadCredential is the issued presigned URL plus the object key it
// is scoped to. The key convention is {folderId|"root"}/{timestamp}-{fileName}.
type UploadCredential struct {
	PresignedURL string `json:"presignedUrl"`
	Key          string `json:"key"`
}

// CommitDocumentRequest registers metadata for bytes already written
// to the object store. This is the point at which the document becomes
// visible in the vault.
type CommitDocumentRequest struct {
	Name      string `json:"name"`
	Key       string `json:"key"`
	FolderID  *int64 `json:"folderId,omitempty"`
	CompanyID int64  `json:"companyId"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
}
