package models

import (
	"time"
)

// Folder is one flat parent-pointer record from the external store.
// The parent-pointer graph restricted to one company must be acyclic
// and rooted; the core never stores the derived hierarchy.
type Folder struct {
	ID        int64     `json:"id"` // 0 = unsaved/new
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parentId"` // nil = root level
	CompanyID int64     `json:"companyId"`
	ItemCount int       `json:"itemCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsRoot reports whether the folder sits directly under the company root.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

type CreateFolderRequest struct {
	Name      string `json:"name"`
	ParentID  *int64 `json:"parentId,omitempty"`
	CompanyID int64  `json:"companyId"`
}

type RenameFolderRequest struct {
	Name string `json:"name"`
}

type MoveFolderRequest struct {
	ParentID *int64 `json:"parentId"` // nil = move to company root
}
