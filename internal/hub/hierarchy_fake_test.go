package hub

import (
	"context"
	"errors"

	"github.com/plotline/plotline/internal/domain"
)

// fakeHierarchy scripts the document-management collaborator for tests.
type fakeHierarchy struct {
	hubs       []domain.Entry
	projects   map[string][]domain.Entry        // by hub id
	topFolders map[string][]domain.Entry        // by project id
	contents   map[string][]domain.Entry        // by folder id
	items      map[string][]domain.DocumentItem // by folder id
	versions   map[string][]domain.Entry        // by item id

	versionsErr map[string]error

	createItemCalls    int
	createItemErr      error
	createdItemID      string
	createVersionCalls int
	createVersionErr   error
	createdVersionID   string
	versionedItemID    string
}

func (f *fakeHierarchy) ListHubs(ctx context.Context) ([]domain.Entry, error) {
	return f.hubs, nil
}

func (f *fakeHierarchy) ListProjects(ctx context.Context, hubID string) ([]domain.Entry, error) {
	return f.projects[hubID], nil
}

func (f *fakeHierarchy) ListTopFolders(ctx context.Context, hubID, projectID string) ([]domain.Entry, error) {
	return f.topFolders[projectID], nil
}

func (f *fakeHierarchy) ListFolderContents(ctx context.Context, projectID, folderID string) ([]domain.Entry, error) {
	return f.contents[folderID], nil
}

func (f *fakeHierarchy) ListFolderItems(ctx context.Context, projectID, folderID string) ([]domain.DocumentItem, error) {
	items, ok := f.items[folderID]
	if !ok {
		return nil, errors.New("no such folder")
	}
	return items, nil
}

func (f *fakeHierarchy) ListItemVersions(ctx context.Context, projectID, itemID string) ([]domain.Entry, error) {
	if err := f.versionsErr[itemID]; err != nil {
		return nil, err
	}
	return f.versions[itemID], nil
}

func (f *fakeHierarchy) CreateItem(ctx context.Context, projectID, folderID, displayName string, ref domain.StorageObjectRef) (string, error) {
	f.createItemCalls++
	if f.createItemErr != nil {
		return "", f.createItemErr
	}
	return f.createdItemID, nil
}

func (f *fakeHierarchy) CreateVersion(ctx context.Context, projectID, itemID, displayName string, ref domain.StorageObjectRef) (string, error) {
	f.createVersionCalls++
	f.versionedItemID = itemID
	if f.createVersionErr != nil {
		return "", f.createVersionErr
	}
	return f.createdVersionID, nil
}
