package vault_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault/internal/vault"
)

func TestNavigatorDescendAndBack(t *testing.T) {
	tree := vault.NewTree(fixtureFolders(), nil)
	nav := vault.NewNavigator(tree)

	assert.True(t, nav.AtRoot())

	root, _ := tree.Folder(1)
	tax, _ := tree.Folder(2)
	year, _ := tree.Folder(3)

	nav.Descend(root)
	nav.Descend(tax)
	nav.Descend(year)
	require.NotNil(t, nav.Current())
	assert.Equal(t, int64(3), nav.Current().ID)

	// n backs after n descends return to the starting point.
	nav.Back()
	assert.Equal(t, int64(2), nav.Current().ID)
	nav.Back()
	assert.Equal(t, int64(1), nav.Current().ID)
	nav.Back()
	assert.True(t, nav.AtRoot())

	// Back at root is a no-op.
	nav.Back()
	assert.True(t, nav.AtRoot())
}

func TestNavigatorBreadcrumbEquivalence(t *testing.T) {
	tree := vault.NewTree(fixtureFolders(), nil)
	nav := vault.NewNavigator(tree)

	root, _ := tree.Folder(1)
	tax, _ := tree.Folder(2)
	year, _ := tree.Folder(3)

	nav.Descend(root)
	nav.Descend(tax)
	nav.Descend(year)

	// History-derived path must equal the parent-pointer ascent.
	fromHistory := nav.Breadcrumb()
	fromTree, err := tree.PathTo(year.ID)
	require.NoError(t, err)

	require.Len(t, fromHistory, len(fromTree))
	for i := range fromHistory {
		assert.Equal(t, fromTree[i].ID, fromHistory[i].ID)
	}

	names := []string{}
	for _, folder := range fromHistory {
		names = append(names, folder.Name)
	}
	assert.Equal(t, []string{"Root", "Tax", "2024"}, names)
}

func TestNavigatorJumpUsesTreeAscent(t *testing.T) {
	tree := vault.NewTree(fixtureFolders(), nil)
	nav := vault.NewNavigator(tree)

	require.NoError(t, nav.Jump(3))
	require.NotNil(t, nav.Current())
	assert.Equal(t, int64(3), nav.Current().ID)

	crumb := nav.Breadcrumb()
	require.Len(t, crumb, 3)
	assert.Equal(t, "Root", crumb[0].Name)

	// Back after a jump lands at root: there is no history to pop.
	nav.Back()
	assert.True(t, nav.AtRoot())
}

func TestNavigatorBreadcrumbAfterJumpAndBack(t *testing.T) {
	// Audit sits under 2024 so there is somewhere to descend after the
	// jump.
	folders := fixtureFolders()
	folders[3].ParentID = i64(3)
	tree := vault.NewTree(folders, nil)
	nav := vault.NewNavigator(tree)

	require.NoError(t, nav.Jump(3))
	audit, _ := tree.Folder(4)
	nav.Descend(audit)
	nav.Back()

	// Popping back to the jump target leaves the navigator deep in the
	// tree; the breadcrumb still matches the parent-pointer ascent.
	require.NotNil(t, nav.Current())
	assert.Equal(t, int64(3), nav.Current().ID)

	crumb := nav.Breadcrumb()
	fromTree, err := tree.PathTo(3)
	require.NoError(t, err)
	require.Len(t, crumb, len(fromTree))
	for i := range crumb {
		assert.Equal(t, fromTree[i].ID, crumb[i].ID)
	}

	// One more back drains the stack to the root and clears jump state.
	nav.Back()
	assert.True(t, nav.AtRoot())
	assert.Nil(t, nav.Breadcrumb())
}

func TestNavigatorJumpMissingFolder(t *testing.T) {
	tree := vault.NewTree(fixtureFolders(), nil)
	nav := vault.NewNavigator(tree)

	require.Error(t, nav.Jump(999))
	assert.True(t, nav.AtRoot())
}

func TestNavigatorReset(t *testing.T) {
	tree := vault.NewTree(fixtureFolders(), nil)
	nav := vault.NewNavigator(tree)

	root, _ := tree.Folder(1)
	tax, _ := tree.Folder(2)
	nav.Descend(root)
	nav.Descend(tax)
	nav.SelectTarget(&root)

	nav.Reset()
	assert.True(t, nav.AtRoot())
	assert.Nil(t, nav.Target())
	assert.Nil(t, nav.Breadcrumb())
}

func TestNavigatorSetTreeReresolvesCurrent(t *testing.T) {
	tree := vault.NewTree(fixtureFolders(), nil)
	nav := vault.NewNavigator(tree)

	tax, _ := tree.Folder(2)
	root, _ := tree.Folder(1)
	nav.Descend(root)
	nav.Descend(tax)

	// Rename arrives with the refetched records.
	folders := fixtureFolders()
	folders[1].Name = "Taxes"
	nav.SetTree(vault.NewTree(folders, nil))
	require.NotNil(t, nav.Current())
	assert.Equal(t, "Taxes", nav.Current().Name)

	// Current folder deleted server-side: fall back to root.
	nav.SetTree(vault.NewTree(fixtureFolders()[:1], nil))
	assert.True(t, nav.AtRoot())
}

func TestNavigatorTargetSelection(t *testing.T) {
	tree := vault.NewTree(fixtureFolders(), nil)
	nav := vault.NewNavigator(tree)

	audit, _ := tree.Folder(4)
	nav.SelectTarget(&audit)
	require.NotNil(t, nav.Target())
	assert.Equal(t, int64(4), nav.Target().ID)

	nav.ClearTarget()
	assert.Nil(t, nav.Target())
}
