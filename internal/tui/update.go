package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"vault/internal/vault"
)

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update routes messages: global ones first, then per-screen key
// handling.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		m.input.Width = msg.Width - h - 4
		return m, nil

	case refreshDoneMsg:
		m.populateBrowseList()
		return m.setStatus("refreshed", false)

	case opDoneMsg:
		if m.screen == browseScreen || m.screen == movePickerScreen || m.screen == confirmDeleteScreen {
			m.screen = browseScreen
			m.populateBrowseList()
		}
		return m.setStatus(msg.status, false)

	case uploadDoneMsg:
		m.session.InsertDocument(*msg.doc)
		m.screen = browseScreen
		m.populateBrowseList()
		return m.setStatus(fmt.Sprintf("uploaded %s", msg.doc.Name), false)

	case opErrMsg:
		m.screen = browseScreen
		m.populateBrowseList()
		return m.setStatus(msg.err.Error(), true)

	case clearStatusMsg:
		m.status = ""
		m.statErr = false
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case browseScreen:
			return m.updateBrowse(msg)
		case nameInputScreen, pathInputScreen:
			return m.updateInput(msg)
		case movePickerScreen:
			return m.updatePicker(msg)
		case confirmDeleteScreen:
			return m.updateConfirmDelete(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateBrowse handles keys on the main listing.
func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nav := m.session.Nav()

	switch msg.String() {
	case keyQuit:
		return m, tea.Quit

	case keyEnter:
		if item, ok := m.list.SelectedItem().(vaultItem); ok && item.folder != nil {
			nav.Descend(*item.folder)
			m.populateBrowseList()
			m.list.ResetSelected()
		}
		return m, nil

	case keyEsc, keyBack:
		nav.Back()
		m.populateBrowseList()
		m.list.ResetSelected()
		return m, nil

	case keyRoot:
		nav.Reset()
		m.populateBrowseList()
		m.list.ResetSelected()
		return m, nil

	case "f5", "ctrl+r":
		return m, m.refreshCmd()

	case keyNew:
		m.screen = nameInputScreen
		m.inputMode = inputCreateFolder
		m.input.Placeholder = "New folder name"
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case keyRename:
		item, ok := m.list.SelectedItem().(vaultItem)
		if !ok {
			return m, nil
		}
		m.screen = nameInputScreen
		if item.folder != nil {
			m.inputMode = inputRenameFolder
			m.renameID = item.folder.ID
			m.input.SetValue(item.folder.Name)
		} else {
			m.inputMode = inputRenameDocument
			m.renameID = item.document.ID
			m.input.SetValue(item.document.Name)
		}
		m.input.Placeholder = "New name"
		m.input.Focus()
		return m, nil

	case keyUpload:
		m.screen = pathInputScreen
		m.input.Placeholder = "Path to local file"
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case keyDelete:
		if item, ok := m.list.SelectedItem().(vaultItem); ok {
			m.screen = confirmDeleteScreen
			m.deleteTarget = item
		}
		return m, nil

	case keyMove:
		item, ok := m.list.SelectedItem().(vaultItem)
		if !ok {
			return m, nil
		}
		m.moveFolderID = nil
		m.moveDocumentID = nil
		if item.folder != nil {
			id := item.folder.ID
			m.moveFolderID = &id
		} else {
			id := item.document.ID
			m.moveDocumentID = &id
		}
		m.screen = movePickerScreen
		m.picker = vault.NewNavigator(m.session.Tree())
		m.populatePickerList()
		m.list.ResetSelected()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateInput handles the shared text input screen.
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.screen = browseScreen
		m.input.Blur()
		return m, nil

	case keyEnter:
		value := m.input.Value()
		m.input.Blur()
		screen := m.screen
		m.screen = browseScreen

		if screen == pathInputScreen {
			return m, m.uploadCmd(value, currentID(m.session.Nav().Current()))
		}
		if m.inputMode == inputCreateFolder {
			return m, m.createFolderCmd(value, currentID(m.session.Nav().Current()))
		}
		return m, m.renameCmd(m.inputMode, m.renameID, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updatePicker handles destination browsing during a move. The picked
// folder is held as the navigator's transient selection until the move
// resolves.
func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.session.Nav().ClearTarget()
		m.screen = browseScreen
		m.populateBrowseList()
		return m, nil

	case keyEnter:
		if item, ok := m.list.SelectedItem().(vaultItem); ok && item.folder != nil {
			m.picker.Descend(*item.folder)
			m.populatePickerList()
			m.list.ResetSelected()
		}
		return m, nil

	case keyBack:
		m.picker.Back()
		m.populatePickerList()
		m.list.ResetSelected()
		return m, nil

	case keySelect:
		m.session.Nav().SelectTarget(m.picker.Current())
		return m, m.moveCmd(currentID(m.picker.Current()))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateConfirmDelete handles the y/n confirmation.
func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m, m.deleteCmd(m.deleteTarget)
	case "n", "N", keyEsc:
		m.screen = browseScreen
		return m, nil
	}
	return m, nil
}

// setStatus updates the status line and schedules its expiry.
func (m Model) setStatus(status string, isErr bool) (tea.Model, tea.Cmd) {
	m.status = status
	m.statErr = isErr
	return m, clearStatusCmd()
}
