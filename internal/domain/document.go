package domain

import "context"

// Entry is one child returned by a hierarchy listing call.
type Entry struct {
	ID          string
	DisplayName string
	Kind        string
}

// DocumentItem is a document entry in a folder, with its version history.
type DocumentItem struct {
	ID          string
	DisplayName string
	VersionIDs  []string
}

// TreeNode is a read-model node of the document hierarchy. It is assembled
// fresh on every walk and never mutated.
type TreeNode struct {
	ID       string
	Label    string
	Children []TreeNode
}

// DocumentHierarchy is the document-management collaborator. Create calls
// return structured conflict errors (*ConflictError) on duplicate names.
type DocumentHierarchy interface {
	ListHubs(ctx context.Context) ([]Entry, error)
	ListProjects(ctx context.Context, hubID string) ([]Entry, error)
	ListTopFolders(ctx context.Context, hubID, projectID string) ([]Entry, error)
	ListFolderContents(ctx context.Context, projectID, folderID string) ([]Entry, error)

	// ListFolderItems lists folder contents filtered to document items.
	ListFolderItems(ctx context.Context, projectID, folderID string) ([]DocumentItem, error)

	// ListItemVersions lists the version ids of one item, newest first.
	ListItemVersions(ctx context.Context, projectID, itemID string) ([]Entry, error)

	// CreateItem creates a new document item in the folder, returning its id.
	CreateItem(ctx context.Context, projectID, folderID, displayName string, ref StorageObjectRef) (string, error)

	// CreateVersion appends a version to an existing item, returning the new
	// version id.
	CreateVersion(ctx context.Context, projectID, itemID, displayName string, ref StorageObjectRef) (string, error)
}
