package vault

import (
	"context"
	"fmt"
	"log/slog"

	"vault/internal/api"
	"vault/internal/domain/models"
)

// Session owns the single in-memory flat-list cache for one company's
// vault. The cache is exclusively owned by the active vault session and
// driven from one event loop, so no locking is needed; concurrent edits
// to the same record from other sessions are last-write-wins.
type Session struct {
	api       api.Client
	companyID int64
	folders   []models.Folder
	documents []models.Document
	tree      *Tree
	nav       *Navigator
	logger    *slog.Logger
}

// NewSession creates an empty session; call Refresh before first use.
func NewSession(client api.Client, companyID int64, logger *slog.Logger) *Session {
	tree := NewTree(nil, nil)
	return &Session{
		api:       client,
		companyID: companyID,
		tree:      tree,
		nav:       NewNavigator(tree),
		logger:    logger,
	}
}

// Refresh refetches both flat lists from the external store and
// rebuilds the materialized tree. Navigation state is re-resolved
// against the fresh records.
func (s *Session) Refresh(ctx context.Context) error {
	folders, err := s.api.ListFolders(ctx, s.companyID)
	if err != nil {
		return fmt.Errorf("list folders: %w", err)
	}

	documents, err := s.api.ListDocuments(ctx, s.companyID, nil)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	s.folders = folders
	s.documents = documents
	s.rebuild()

	s.logger.Debug("vault refreshed",
		"company_id", s.companyID,
		"folder_count", len(folders),
		"document_count", len(documents),
	)

	return nil
}

// API exposes the store contract for components built on the session.
func (s *Session) API() api.Client {
	return s.api
}

// CompanyID returns the company this session is scoped to.
func (s *Session) CompanyID() int64 {
	return s.companyID
}

// Tree returns the current materialized view.
func (s *Session) Tree() *Tree {
	return s.tree
}

// Nav returns the session's navigation state machine.
func (s *Session) Nav() *Navigator {
	return s.nav
}

// Folders returns the working flat folder list.
func (s *Session) Folders() []models.Folder {
	return s.folders
}

// Documents returns the working flat document list.
func (s *Session) Documents() []models.Document {
	return s.documents
}

// InsertDocument adds a freshly committed document to the working set
// so it is visible before the next refetch.
func (s *Session) InsertDocument(doc models.Document) {
	s.documents = append(s.documents, doc)
	s.rebuild()
}

// rebuild rematerializes the tree from the flat lists and points the
// navigator at it.
func (s *Session) rebuild() {
	s.tree = NewTree(s.folders, s.documents)
	s.nav.SetTree(s.tree)
}

// folderIndex finds a folder's position in the flat list, or -1.
func (s *Session) folderIndex(id int64) int {
	for i := range s.folders {
		if s.folders[i].ID == id {
			return i
		}
	}
	return -1
}

// documentIndex finds a document's position in the flat list, or -1.
func (s *Session) documentIndex(id int64) int {
	for i := range s.documents {
		if s.documents[i].ID == id {
			return i
		}
	}
	return -1
}
