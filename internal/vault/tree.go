package vault

import (
	"fmt"

	"vault/internal/domain"
	"vault/internal/domain/models"
)

// rootKey indexes root-level items (ParentID == nil). Persisted ids are
// positive, so 0 is free to act as the sentinel key.
const rootKey int64 = 0

// Tree is the materialized view over one company's flat folder and
// document lists: a parentId -> children index plus an id -> folder
// reverse index. It is a pure projection - it never mutates its input
// and is rebuilt whenever the flat lists change.
type Tree struct {
	byParent  map[int64][]models.Folder
	byFolder  map[int64][]models.Document
	byID      map[int64]models.Folder
	folderLen int
	orphans   map[int64]bool // folder ids surfaced under root because their parent is missing
}

// NewTree builds the index in one pass per list. Records whose ParentID
// references a non-existent id are orphans: they surface under the root
// fallback rather than silently disappearing.
func NewTree(folders []models.Folder, documents []models.Document) *Tree {
	t := &Tree{
		byParent:  make(map[int64][]models.Folder, len(folders)),
		byFolder:  make(map[int64][]models.Document, len(folders)),
		byID:      make(map[int64]models.Folder, len(folders)),
		folderLen: len(folders),
		orphans:   make(map[int64]bool),
	}

	for _, folder := range folders {
		t.byID[folder.ID] = folder
	}

	for _, folder := range folders {
		key := rootKey
		if folder.ParentID != nil {
			if _, exists := t.byID[*folder.ParentID]; exists {
				key = *folder.ParentID
			} else {
				// Orphan: parent pointer dangles, fall back to root.
				t.orphans[folder.ID] = true
			}
		}
		t.byParent[key] = append(t.byParent[key], folder)
	}

	for _, doc := range documents {
		key := rootKey
		if doc.FolderID != nil {
			if _, exists := t.byID[*doc.FolderID]; exists {
				key = *doc.FolderID
			}
		}
		t.byFolder[key] = append(t.byFolder[key], doc)
	}

	return t
}

// ChildrenOf returns the ordered child folders of the given parent
// (nil = company root). The returned slice is shared; callers must not
// mutate it.
func (t *Tree) ChildrenOf(parentID *int64) []models.Folder {
	return t.byParent[keyFor(parentID)]
}

// DocumentsIn returns the documents listed directly under the given
// folder (nil = company root).
func (t *Tree) DocumentsIn(folderID *int64) []models.Document {
	return t.byFolder[keyFor(folderID)]
}

// Folder looks up one folder by id.
func (t *Tree) Folder(id int64) (models.Folder, bool) {
	folder, ok := t.byID[id]
	return folder, ok
}

// Len returns the number of folders in the materialized view.
func (t *Tree) Len() int {
	return t.folderLen
}

// IsOrphan reports whether the folder was surfaced under the root
// fallback because its parent record is missing.
func (t *Tree) IsOrphan(id int64) bool {
	return t.orphans[id]
}

// PathTo returns the ordered path from root to the given folder by
// ascending parent pointers. A dangling pointer or a cycle in the
// persisted records is reported as an error rather than looping.
func (t *Tree) PathTo(id int64) ([]models.Folder, error) {
	folder, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}

	path := []models.Folder{folder}
	visited := map[int64]bool{id: true}

	for folder.ParentID != nil {
		parent, ok := t.byID[*folder.ParentID]
		if !ok {
			// Orphan subtree: treat the dangling record as the top.
			break
		}
		if visited[parent.ID] {
			return nil, fmt.Errorf("folder %d: cycle in parent pointers", id)
		}
		visited[parent.ID] = true
		path = append(path, parent)
		folder = parent
	}

	// Reverse into root-first order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}

// Walk visits every folder reachable from the roots exactly once in
// depth-first order. With acyclic input this covers the whole company
// (orphans included, via the root fallback).
func (t *Tree) Walk(visit func(folder models.Folder, depth int)) {
	seen := make(map[int64]bool, t.folderLen)

	var descend func(parentKey int64, depth int)
	descend = func(parentKey int64, depth int) {
		for _, folder := range t.byParent[parentKey] {
			if seen[folder.ID] {
				continue
			}
			seen[folder.ID] = true
			visit(folder, depth)
			descend(folder.ID, depth+1)
		}
	}

	descend(rootKey, 0)
}

func keyFor(id *int64) int64 {
	if id == nil {
		return rootKey
	}
	return *id
}
