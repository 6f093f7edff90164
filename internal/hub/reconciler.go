package hub

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/plotline/plotline/internal/domain"
)

// Reconciler places a staged storage object into a folder: it creates a new
// document item, or appends a version when an item with the same display
// name already exists.
type Reconciler struct {
	hierarchy domain.DocumentHierarchy
	projectID string
}

func NewReconciler(hierarchy domain.DocumentHierarchy, projectID string) *Reconciler {
	return &Reconciler{hierarchy: hierarchy, projectID: projectID}
}

// CreateOrVersion tries the optimistic create first; a conflict from the
// remote store is the authoritative signal to fall back to versioning. The
// returned id is the created item's id, or the new version's id on the
// conflict path.
func (r *Reconciler) CreateOrVersion(ctx context.Context, folderID, displayName string, ref domain.StorageObjectRef) (string, error) {
	itemID, err := r.hierarchy.CreateItem(ctx, r.projectID, folderID, displayName, ref)
	if err == nil {
		log.Info().
			Str("item_id", itemID).
			Str("display_name", displayName).
			Msg("Document item created")
		return itemID, nil
	}

	if !domain.IsConflict(err) {
		return "", &domain.ReconciliationError{Op: "create item", Err: err}
	}

	log.Info().
		Str("display_name", displayName).
		Msg("Item already exists, creating a new version")

	existingID, err := r.findItem(ctx, folderID, displayName)
	if err != nil {
		return "", err
	}

	versionID, err := r.hierarchy.CreateVersion(ctx, r.projectID, existingID, displayName, ref)
	if err != nil {
		return "", &domain.ReconciliationError{Op: "create version", Err: err}
	}

	log.Info().
		Str("item_id", existingID).
		Str("version_id", versionID).
		Msg("New version created")

	return versionID, nil
}

// findItem locates the conflicting item by display name, case-insensitive.
// With duplicate names the first match in listing order wins.
func (r *Reconciler) findItem(ctx context.Context, folderID, displayName string) (string, error) {
	items, err := r.hierarchy.ListFolderItems(ctx, r.projectID, folderID)
	if err != nil {
		return "", &domain.ReconciliationError{Op: "list folder items", Err: err}
	}

	for _, item := range items {
		if strings.EqualFold(item.DisplayName, displayName) {
			return item.ID, nil
		}
	}

	return "", &domain.NotFoundError{DisplayName: displayName, FolderID: folderID}
}
