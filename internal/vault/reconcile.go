package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"vault/internal/domain"
	"vault/internal/domain/models"
)

// MaxNameLength bounds folder and document names.
const MaxNameLength = 255

var nameCharset = regexp.MustCompile(`^[^/]+$`)

// Reconciler applies rename, delete and create mutations optimistically:
// the working flat list is updated as soon as the user confirms, the
// request is issued, and on failure the touched records are reverted
// from their pre-mutation snapshot. The tree is never left in a
// partially-applied state.
type Reconciler struct {
	session *Session
	logger  *slog.Logger
}

// NewReconciler creates a reconciler over the given session.
func NewReconciler(session *Session, logger *slog.Logger) *Reconciler {
	return &Reconciler{session: session, logger: logger}
}

// CreateFolder inserts a pending record immediately and swaps it for
// the persisted one once the store confirms. On failure the pending
// record is withdrawn.
func (r *Reconciler) CreateFolder(ctx context.Context, name string, parentID *int64) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if parentID != nil {
		if _, ok := r.session.Tree().Folder(*parentID); !ok {
			return nil, &domain.NotFoundError{ResourceType: "folder", ResourceID: *parentID, Message: "parent folder no longer exists"}
		}
	}
	for _, sibling := range r.session.Tree().ChildrenOf(parentID) {
		if sibling.Name == name {
			return nil, fmt.Errorf("a folder named %q already exists in this location: %w", name, domain.ErrConflict)
		}
	}

	pending := models.Folder{
		UUID:      uuid.NewString(),
		Name:      name,
		ParentID:  parentID,
		CompanyID: r.session.CompanyID(),
		CreatedAt: time.Now(),
	}
	r.session.folders = append(r.session.folders, pending)
	r.session.rebuild()

	created, err := r.session.API().CreateFolder(ctx, &models.CreateFolderRequest{
		Name:      name,
		ParentID:  parentID,
		CompanyID: r.session.CompanyID(),
	})
	if err != nil {
		r.withdrawPending(pending.UUID)
		r.resyncIfGone(ctx, err)
		return nil, err
	}

	// Swap the pending record for the persisted one.
	for i := range r.session.folders {
		if r.session.folders[i].UUID == pending.UUID {
			if created.UUID == "" {
				created.UUID = pending.UUID
			}
			r.session.folders[i] = *created
			break
		}
	}
	r.session.rebuild()

	r.logger.Info("folder created", "id", created.ID, "name", created.Name, "parent_id", logID(parentID))
	return created, nil
}

// RenameFolder updates exactly one record's name, reverting it if the
// store rejects the rename.
func (r *Reconciler) RenameFolder(ctx context.Context, folderID int64, name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}

	idx := r.session.folderIndex(folderID)
	if idx < 0 {
		return &domain.NotFoundError{ResourceType: "folder", ResourceID: folderID, Message: "folder is not in the working set"}
	}

	snapshot := r.session.folders[idx]
	r.session.folders[idx].Name = name
	r.session.rebuild()

	if _, err := r.session.API().RenameFolder(ctx, folderID, name); err != nil {
		r.session.folders[idx] = snapshot
		r.session.rebuild()
		r.logger.Warn("folder rename reverted", "folder_id", folderID, "error", err)
		r.resyncIfGone(ctx, err)
		return err
	}

	r.logger.Info("folder renamed", "folder_id", folderID, "name", name)
	return nil
}

// RenameDocument updates exactly one record's name, reverting it if
// the store rejects the rename.
func (r *Reconciler) RenameDocument(ctx context.Context, documentID int64, name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}

	idx := r.session.documentIndex(documentID)
	if idx < 0 {
		return &domain.NotFoundError{ResourceType: "document", ResourceID: documentID, Message: "document is not in the working set"}
	}

	snapshot := r.session.documents[idx]
	r.session.documents[idx].Name = name
	r.session.rebuild()

	if _, err := r.session.API().RenameDocument(ctx, documentID, name); err != nil {
		r.session.documents[idx] = snapshot
		r.session.rebuild()
		r.logger.Warn("document rename reverted", "document_id", documentID, "error", err)
		r.resyncIfGone(ctx, err)
		return err
	}

	r.logger.Info("document renamed", "document_id", documentID, "name", name)
	return nil
}

// DeleteFolder removes the folder and its materialized descendants
// from display immediately; the server-side cascade is confirmed by
// the next refetch. On failure the whole working set is restored.
func (r *Reconciler) DeleteFolder(ctx context.Context, folderID int64) error {
	idx := r.session.folderIndex(folderID)
	if idx < 0 {
		return &domain.NotFoundError{ResourceType: "folder", ResourceID: folderID, Message: "folder is not in the working set"}
	}

	doomed := r.subtreeIDs(folderID)

	folderSnapshot := append([]models.Folder(nil), r.session.folders...)
	documentSnapshot := append([]models.Document(nil), r.session.documents...)

	kept := r.session.folders[:0:0]
	for _, folder := range r.session.folders {
		if !doomed[folder.ID] {
			kept = append(kept, folder)
		}
	}
	r.session.folders = kept

	keptDocs := r.session.documents[:0:0]
	for _, doc := range r.session.documents {
		if doc.FolderID == nil || !doomed[*doc.FolderID] {
			keptDocs = append(keptDocs, doc)
		}
	}
	r.session.documents = keptDocs
	r.session.rebuild()

	if err := r.session.API().DeleteFolder(ctx, folderID); err != nil {
		r.session.folders = folderSnapshot
		r.session.documents = documentSnapshot
		r.session.rebuild()
		r.logger.Warn("folder delete reverted", "folder_id", folderID, "error", err)
		r.resyncIfGone(ctx, err)
		return err
	}

	r.logger.Info("folder deleted", "folder_id", folderID, "descendants", len(doomed)-1)
	return nil
}

// DeleteDocument removes exactly one record, restoring it on failure.
func (r *Reconciler) DeleteDocument(ctx context.Context, documentID int64) error {
	idx := r.session.documentIndex(documentID)
	if idx < 0 {
		return &domain.NotFoundError{ResourceType: "document", ResourceID: documentID, Message: "document is not in the working set"}
	}

	snapshot := r.session.documents[idx]
	r.session.documents = append(r.session.documents[:idx], r.session.documents[idx+1:]...)
	r.session.rebuild()

	if err := r.session.API().DeleteDocument(ctx, documentID); err != nil {
		// Reinsert at the original position so display order survives.
		r.session.documents = append(r.session.documents, models.Document{})
		copy(r.session.documents[idx+1:], r.session.documents[idx:])
		r.session.documents[idx] = snapshot
		r.session.rebuild()
		r.logger.Warn("document delete reverted", "document_id", documentID, "error", err)
		r.resyncIfGone(ctx, err)
		return err
	}

	r.logger.Info("document deleted", "document_id", documentID)
	return nil
}

// subtreeIDs collects the folder and all folders below it in the
// materialized view.
func (r *Reconciler) subtreeIDs(folderID int64) map[int64]bool {
	doomed := map[int64]bool{folderID: true}

	var descend func(id int64)
	descend = func(id int64) {
		for _, child := range r.session.Tree().ChildrenOf(&id) {
			if doomed[child.ID] {
				continue
			}
			doomed[child.ID] = true
			descend(child.ID)
		}
	}
	descend(folderID)

	return doomed
}

// withdrawPending removes an optimistically inserted folder by its
// client-side UUID.
func (r *Reconciler) withdrawPending(pendingUUID string) {
	for i := range r.session.folders {
		if r.session.folders[i].UUID == pendingUUID {
			r.session.folders = append(r.session.folders[:i], r.session.folders[i+1:]...)
			break
		}
	}
	r.session.rebuild()
}

// resyncIfGone refetches the flat lists when the store reports the
// record missing, so the cache converges on the server's view.
func (r *Reconciler) resyncIfGone(ctx context.Context, err error) {
	if !errors.Is(err, domain.ErrNotFound) {
		return
	}
	if refreshErr := r.session.Refresh(ctx); refreshErr != nil {
		r.logger.Warn("resync after not-found failed", "error", refreshErr)
	}
}

// validateName enforces the shared naming rules before any network
// call is made.
func validateName(name string) error {
	err := validation.Validate(name,
		validation.Required.Error("name must not be empty"),
		validation.Length(1, MaxNameLength),
		validation.Match(nameCharset).Error("name cannot contain slashes"),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}
