package vault_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault/internal/domain/models"
	"vault/internal/vault"
)

func TestSessionRefreshPropagatesStoreErrors(t *testing.T) {
	store := &fakeAPI{}
	store.listFoldersFn = func(ctx context.Context, companyID int64) ([]models.Folder, error) {
		return nil, errors.New("store unavailable")
	}

	session := vault.NewSession(store, testCompanyID, discardLogger())
	require.Error(t, session.Refresh(context.Background()))
	assert.Empty(t, session.Folders(), "failed refresh leaves the cache untouched")
}

func TestSessionRefreshReresolvesNavigation(t *testing.T) {
	store := &fakeAPI{folders: fixtureFolders(), documents: fixtureDocuments()}
	session := newTestSession(t, store)

	tax, _ := session.Tree().Folder(2)
	session.Nav().Descend(tax)

	// The server dropped folder 2; the navigator falls back to root.
	store.folders = fixtureFolders()[:1]
	require.NoError(t, session.Refresh(context.Background()))
	assert.Nil(t, session.Nav().Current())
}

func TestSessionInsertDocument(t *testing.T) {
	store := &fakeAPI{folders: fixtureFolders()}
	session := newTestSession(t, store)

	session.InsertDocument(models.Document{ID: 20, Name: "minutes.pdf", FolderID: i64(3)})

	docs := session.Tree().DocumentsIn(i64(3))
	require.Len(t, docs, 1)
	assert.Equal(t, "minutes.pdf", docs[0].Name)
}
