package tui

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vault/internal/domain/models"
	"vault/internal/vault"
)

// Messages produced by asynchronous commands. The tea event loop is
// the spec's single-threaded UI loop: commands suspend the flow that
// started them without blocking other interaction.
type (
	refreshDoneMsg struct{}

	opDoneMsg struct {
		status string
	}

	opErrMsg struct {
		err error
	}

	uploadDoneMsg struct {
		doc *models.Document
	}

	clearStatusMsg struct{}
)

const statusTTL = 4 * time.Second

// refreshCmd refetches the flat lists and rebuilds the tree.
func (m *Model) refreshCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if err := session.Refresh(context.Background()); err != nil {
			return opErrMsg{err: err}
		}
		return refreshDoneMsg{}
	}
}

// createFolderCmd runs the optimistic create through the reconciler.
func (m *Model) createFolderCmd(name string, parentID *int64) tea.Cmd {
	reconciler := m.reconciler
	return func() tea.Msg {
		if _, err := reconciler.CreateFolder(context.Background(), name, parentID); err != nil {
			return opErrMsg{err: err}
		}
		return opDoneMsg{status: "folder created"}
	}
}

// renameCmd renames the folder or document behind renameID.
func (m *Model) renameCmd(mode inputMode, id int64, name string) tea.Cmd {
	reconciler := m.reconciler
	return func() tea.Msg {
		var err error
		if mode == inputRenameFolder {
			err = reconciler.RenameFolder(context.Background(), id, name)
		} else {
			err = reconciler.RenameDocument(context.Background(), id, name)
		}
		if err != nil {
			return opErrMsg{err: err}
		}
		return opDoneMsg{status: "renamed"}
	}
}

// deleteCmd removes the confirmed item.
func (m *Model) deleteCmd(item vaultItem) tea.Cmd {
	reconciler := m.reconciler
	return func() tea.Msg {
		var err error
		if item.folder != nil {
			err = reconciler.DeleteFolder(context.Background(), item.folder.ID)
		} else {
			err = reconciler.DeleteDocument(context.Background(), item.document.ID)
		}
		if err != nil {
			return opErrMsg{err: err}
		}
		return opDoneMsg{status: "deleted"}
	}
}

// moveCmd relocates the pending item into destination (nil = root).
func (m *Model) moveCmd(destination *int64) tea.Cmd {
	mover := m.mover
	folderID := m.moveFolderID
	documentID := m.moveDocumentID
	return func() tea.Msg {
		var err error
		switch {
		case folderID != nil:
			err = mover.MoveFolder(context.Background(), *folderID, destination)
		case documentID != nil:
			err = mover.MoveDocument(context.Background(), *documentID, destination)
		}
		if err != nil {
			return opErrMsg{err: err}
		}
		return opDoneMsg{status: "moved"}
	}
}

// uploadCmd ingests a local file into the current folder.
func (m *Model) uploadCmd(path string, folderID *int64) tea.Cmd {
	uploader := m.uploader
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return opErrMsg{err: err}
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return opErrMsg{err: err}
		}

		doc, err := uploader.Upload(context.Background(), &vault.UploadRequest{
			Name:     filepath.Base(path),
			Size:     info.Size(),
			Reader:   f,
			FolderID: folderID,
		})
		if err != nil {
			return opErrMsg{err: err}
		}
		return uploadDoneMsg{doc: doc}
	}
}

// clearStatusCmd expires the status line after statusTTL.
func clearStatusCmd() tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
