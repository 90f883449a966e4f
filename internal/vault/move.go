package vault

import (
	"context"
	"fmt"
	"log/slog"

	"vault/internal/domain"
)

// Mover executes the relocation protocol for folders and documents.
// Invalid targets are rejected client-side before any request is
// dispatched; a confirmed move results in exactly one persisted
// mutation, after which the local flat list is patched and the tree
// recomputed. On failure local state is left untouched. The transient
// move-target selection is cleared on both outcomes.
type Mover struct {
	session *Session
	logger  *slog.Logger
}

// NewMover creates a mover over the given session.
func NewMover(session *Session, logger *slog.Logger) *Mover {
	return &Mover{session: session, logger: logger}
}

// MoveFolder relocates a folder under a new parent (nil = company
// root). The destination must not be the folder itself nor any of its
// descendants; violations fail with ErrInvalidTarget.
func (m *Mover) MoveFolder(ctx context.Context, folderID int64, destination *int64) error {
	defer m.session.Nav().ClearTarget()

	idx := m.session.folderIndex(folderID)
	if idx < 0 {
		return &domain.NotFoundError{ResourceType: "folder", ResourceID: folderID, Message: "folder is not in the working set"}
	}

	if err := m.validateFolderTarget(folderID, destination); err != nil {
		return err
	}

	if err := m.session.API().MoveFolder(ctx, folderID, destination); err != nil {
		m.logger.Warn("folder move rejected by store", "folder_id", folderID, "error", err)
		return err
	}

	m.session.folders[idx].ParentID = destination
	m.session.rebuild()

	m.logger.Info("folder moved", "folder_id", folderID, "parent_id", logID(destination))
	return nil
}

// MoveDocument relocates a document into a folder (nil = company
// root). Documents cannot contain folders, so no cycle check applies.
func (m *Mover) MoveDocument(ctx context.Context, documentID int64, destination *int64) error {
	defer m.session.Nav().ClearTarget()

	idx := m.session.documentIndex(documentID)
	if idx < 0 {
		return &domain.NotFoundError{ResourceType: "document", ResourceID: documentID, Message: "document is not in the working set"}
	}

	if destination != nil {
		if _, ok := m.session.Tree().Folder(*destination); !ok {
			return fmt.Errorf("destination folder %d: %w", *destination, domain.ErrInvalidTarget)
		}
	}

	if err := m.session.API().MoveDocument(ctx, documentID, destination); err != nil {
		m.logger.Warn("document move rejected by store", "document_id", documentID, "error", err)
		return err
	}

	m.session.documents[idx].FolderID = destination
	m.session.rebuild()

	m.logger.Info("document moved", "document_id", documentID, "folder_id", logID(destination))
	return nil
}

// validateFolderTarget walks the destination's ancestor chain up to
// root; if the moving folder appears in that chain (or is the
// destination itself) the move would make the folder its own ancestor.
func (m *Mover) validateFolderTarget(folderID int64, destination *int64) error {
	if destination == nil {
		return nil // company root is always a valid parent
	}
	if *destination == folderID {
		return fmt.Errorf("folder cannot be moved into itself: %w", domain.ErrInvalidTarget)
	}

	tree := m.session.Tree()
	current, ok := tree.Folder(*destination)
	if !ok {
		return fmt.Errorf("destination folder %d: %w", *destination, domain.ErrInvalidTarget)
	}

	visited := map[int64]bool{current.ID: true}
	for current.ParentID != nil {
		if *current.ParentID == folderID {
			return fmt.Errorf("folder cannot be moved into its own descendant: %w", domain.ErrInvalidTarget)
		}
		parent, ok := tree.Folder(*current.ParentID)
		if !ok {
			break // orphan chain tops out here
		}
		if visited[parent.ID] {
			break // defective persisted cycle; the store will reject the move
		}
		visited[parent.ID] = true
		current = parent
	}

	return nil
}

func logID(id *int64) any {
	if id == nil {
		return "root"
	}
	return *id
}
