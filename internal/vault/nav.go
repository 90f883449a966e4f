package vault

import (
	"vault/internal/domain"
	"vault/internal/domain/models"
)

// Navigator is the vault's navigation state machine: the current
// folder, a back-history stack, and a transient move target. A nil
// current folder means AtRoot. The history stack holds the folders the
// user descended through - a nil entry is the root sentinel, so Back
// can return all the way to the company root.
//
// The breadcrumb is derived, never stored: from the history stack when
// the user descended step by step, or by ascending parent pointers in
// the tree when a Jump bypassed history. Both derivations agree for
// every reachable current folder.
type Navigator struct {
	tree    *Tree
	current *models.Folder
	history []*models.Folder
	target  *models.Folder // transient, move operation only
	jumped  bool           // history no longer mirrors the ancestor chain
}

// NewNavigator starts at the company root over the given tree.
func NewNavigator(tree *Tree) *Navigator {
	return &Navigator{tree: tree}
}

// SetTree swaps in a freshly materialized tree after a refetch. The
// current folder is re-resolved against the new records; if it was
// deleted server-side the navigator falls back to root.
func (n *Navigator) SetTree(tree *Tree) {
	n.tree = tree
	if n.current == nil {
		return
	}
	if folder, ok := tree.Folder(n.current.ID); ok {
		n.current = &folder
		return
	}
	n.Reset()
}

// Current returns the folder being viewed, or nil at root.
func (n *Navigator) Current() *models.Folder {
	return n.current
}

// AtRoot reports whether the navigator is at the company root.
func (n *Navigator) AtRoot() bool {
	return n.current == nil
}

// Descend pushes the current folder (or the root sentinel) onto the
// history stack and enters the given folder.
func (n *Navigator) Descend(folder models.Folder) {
	n.history = append(n.history, n.current)
	n.current = &folder
}

// Back pops the history stack. With an empty history it is a no-op:
// the navigator is already at root. After a Jump the stack only holds
// folders descended since the jump, so draining it can still leave the
// navigator deep in the tree - the jumped flag stays set until current
// reaches the root again.
func (n *Navigator) Back() {
	if len(n.history) == 0 {
		n.current = nil
		n.jumped = false
		return
	}
	n.current = n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	if n.current == nil {
		n.jumped = false
	}
}

// Reset clears all navigation state; invoked on dialog close and on
// vault reopen.
func (n *Navigator) Reset() {
	n.current = nil
	n.history = nil
	n.target = nil
	n.jumped = false
}

// Jump moves directly to a folder without descending through its
// ancestors (deep link). History is cleared; the breadcrumb then comes
// from the tree's reverse lookup.
func (n *Navigator) Jump(folderID int64) error {
	folder, ok := n.tree.Folder(folderID)
	if !ok {
		return &domain.NotFoundError{ResourceType: "folder", ResourceID: folderID, Message: "folder no longer exists"}
	}
	n.current = &folder
	n.history = nil
	n.jumped = true
	return nil
}

// Breadcrumb returns the ordered path from root to the current folder.
// The history stack is the fast path; after a Jump the path is rebuilt
// by ascending parent pointers.
func (n *Navigator) Breadcrumb() []models.Folder {
	if n.current == nil {
		return nil
	}
	if n.jumped {
		path, err := n.tree.PathTo(n.current.ID)
		if err != nil {
			return []models.Folder{*n.current}
		}
		return path
	}
	return n.breadcrumbFromHistory()
}

// breadcrumbFromHistory walks the descend history: every non-sentinel
// entry is an ancestor of the current folder, in root-first order.
func (n *Navigator) breadcrumbFromHistory() []models.Folder {
	path := make([]models.Folder, 0, len(n.history)+1)
	for _, entry := range n.history {
		if entry != nil {
			path = append(path, *entry)
		}
	}
	return append(path, *n.current)
}

// SelectTarget marks a folder (nil = company root) as the pending move
// destination. The selection is transient and cleared on both success
// and failure of the move.
func (n *Navigator) SelectTarget(folder *models.Folder) {
	n.target = folder
}

// Target returns the pending move destination, or nil.
func (n *Navigator) Target() *models.Folder {
	return n.target
}

// ClearTarget drops the pending move destination.
func (n *Navigator) ClearTarget() {
	n.target = nil
}
