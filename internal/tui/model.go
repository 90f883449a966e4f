package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"vault/internal/domain/models"
	"vault/internal/vault"
)

// Screens of the vault browser.
type screenState int

const (
	browseScreen        screenState = iota // folder/document listing
	nameInputScreen                        // create folder / rename target
	pathInputScreen                        // local file path for upload
	movePickerScreen                       // choosing a move destination
	confirmDeleteScreen                    // delete confirmation
)

// What the name input is collecting.
type inputMode int

const (
	inputCreateFolder inputMode = iota
	inputRenameFolder
	inputRenameDocument
)

const (
	keyEnter  = "enter"
	keyEsc    = "esc"
	keyBack   = "backspace"
	keyQuit   = "q"
	keyNew    = "n"
	keyRename = "r"
	keyDelete = "d"
	keyMove   = "m"
	keyUpload = "u"
	keySelect = "s"
	keyRoot   = "g"
)

const (
	defaultListWidth  = 80
	defaultListHeight = 24
	chromeHeight      = 6 // breadcrumb + status + help
)

var (
	breadcrumbStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	docStyle        = lipgloss.NewStyle().Margin(1, 2)
)

// vaultItem adapts one folder or document row to the list component.
type vaultItem struct {
	folder   *models.Folder
	document *models.Document
}

func (i vaultItem) Title() string {
	if i.folder != nil {
		return "📁 " + i.folder.Name
	}
	return "📄 " + i.document.Name
}

func (i vaultItem) Description() string {
	if i.folder != nil {
		if i.folder.ID == 0 {
			return "saving…"
		}
		return fmt.Sprintf("%d items", i.folder.ItemCount)
	}
	return fmt.Sprintf("%s · %s", strings.ToUpper(i.document.Extension), humanSize(i.document.Size))
}

func (i vaultItem) FilterValue() string {
	if i.folder != nil {
		return i.folder.Name
	}
	return i.document.Name
}

// Model is the bubbletea model for the vault browser. All vault state
// lives in the session; the model only holds view state.
type Model struct {
	session    *vault.Session
	mover      *vault.Mover
	reconciler *vault.Reconciler
	uploader   *vault.Uploader
	logger     *slog.Logger

	screen screenState
	list   list.Model
	input  textinput.Model

	inputMode inputMode
	renameID  int64 // folder or document being renamed

	// Move state: exactly one of these is set while picking.
	moveFolderID   *int64
	moveDocumentID *int64
	picker         *vault.Navigator // independent navigation while picking a target

	deleteTarget vaultItem

	status  string
	statErr bool
	width   int
	height  int
}

// NewModel wires the browser over an already refreshed session.
func NewModel(session *vault.Session, uploader *vault.Uploader, logger *slog.Logger) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, defaultListWidth, defaultListHeight-chromeHeight)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)

	input := textinput.New()
	input.CharLimit = vault.MaxNameLength

	m := Model{
		session:    session,
		mover:      vault.NewMover(session, logger),
		reconciler: vault.NewReconciler(session, logger),
		uploader:   uploader,
		logger:     logger,
		list:       l,
		input:      input,
		width:      defaultListWidth,
		height:     defaultListHeight,
	}
	m.populateBrowseList()
	return m
}

// populateBrowseList rebuilds the list items from the navigator's
// current folder.
func (m *Model) populateBrowseList() {
	nav := m.session.Nav()
	items := itemsFor(m.session.Tree(), currentID(nav.Current()))
	m.list.SetItems(items)
}

// populatePickerList shows only folders while choosing a destination.
func (m *Model) populatePickerList() {
	tree := m.session.Tree()
	folders := tree.ChildrenOf(currentID(m.picker.Current()))
	items := make([]list.Item, 0, len(folders))
	for i := range folders {
		folder := folders[i]
		items = append(items, vaultItem{folder: &folder})
	}
	m.list.SetItems(items)
}

func itemsFor(tree *vault.Tree, parentID *int64) []list.Item {
	folders := tree.ChildrenOf(parentID)
	docs := tree.DocumentsIn(parentID)

	items := make([]list.Item, 0, len(folders)+len(docs))
	for i := range folders {
		folder := folders[i]
		items = append(items, vaultItem{folder: &folder})
	}
	for i := range docs {
		doc := docs[i]
		items = append(items, vaultItem{document: &doc})
	}
	return items
}

func currentID(folder *models.Folder) *int64 {
	if folder == nil {
		return nil
	}
	return &folder.ID
}

// breadcrumbLine renders the derived path for the given navigator.
func breadcrumbLine(nav *vault.Navigator) string {
	parts := []string{"Vault"}
	for _, folder := range nav.Breadcrumb() {
		parts = append(parts, folder.Name)
	}
	return strings.Join(parts, " / ")
}

func humanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
