package hub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotline/plotline/internal/domain"
)

var stagedRef = domain.StorageObjectRef{Bucket: "uploads", Key: "plan.pdf"}

func TestCreateOrVersionFirstTimePath(t *testing.T) {
	hierarchy := &fakeHierarchy{createdItemID: "itm-new"}
	reconciler := NewReconciler(hierarchy, "proj-1")

	id, err := reconciler.CreateOrVersion(context.Background(), "folder1", "plan.pdf", stagedRef)
	require.NoError(t, err)
	assert.Equal(t, "itm-new", id)
	assert.Equal(t, 1, hierarchy.createItemCalls)
	assert.Equal(t, 0, hierarchy.createVersionCalls)
}

func TestCreateOrVersionConflictFallsBackToVersioning(t *testing.T) {
	hierarchy := &fakeHierarchy{
		createItemErr: &domain.ConflictError{Errors: []domain.ErrorEntry{{Status: "409"}}},
		items: map[string][]domain.DocumentItem{
			"folder1": {{ID: "itm-1", DisplayName: "plan.pdf"}},
		},
		createdVersionID: "ver-2",
	}
	reconciler := NewReconciler(hierarchy, "proj-1")

	id, err := reconciler.CreateOrVersion(context.Background(), "folder1", "plan.pdf", stagedRef)
	require.NoError(t, err)
	assert.Equal(t, "ver-2", id)
	assert.Equal(t, "itm-1", hierarchy.versionedItemID)

	// create-item is never retried
	assert.Equal(t, 1, hierarchy.createItemCalls)
	assert.Equal(t, 1, hierarchy.createVersionCalls)
}

func TestCreateOrVersionConflictMatchIsCaseInsensitive(t *testing.T) {
	hierarchy := &fakeHierarchy{
		createItemErr: &domain.ConflictError{},
		items: map[string][]domain.DocumentItem{
			"folder1": {
				{ID: "itm-0", DisplayName: "other.pdf"},
				{ID: "itm-1", DisplayName: "PLAN.PDF"},
				{ID: "itm-2", DisplayName: "plan.pdf"},
			},
		},
		createdVersionID: "ver-9",
	}
	reconciler := NewReconciler(hierarchy, "proj-1")

	_, err := reconciler.CreateOrVersion(context.Background(), "folder1", "plan.pdf", stagedRef)
	require.NoError(t, err)

	// first match in listing order wins
	assert.Equal(t, "itm-1", hierarchy.versionedItemID)
}

func TestCreateOrVersionConflictWithoutMatchingItem(t *testing.T) {
	hierarchy := &fakeHierarchy{
		createItemErr: &domain.ConflictError{},
		items: map[string][]domain.DocumentItem{
			"folder1": {{ID: "itm-1", DisplayName: "unrelated.pdf"}},
		},
	}
	reconciler := NewReconciler(hierarchy, "proj-1")

	_, err := reconciler.CreateOrVersion(context.Background(), "folder1", "plan.pdf", stagedRef)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "plan.pdf", notFound.DisplayName)
	assert.Equal(t, 0, hierarchy.createVersionCalls)
}

func TestCreateOrVersionNonConflictRejection(t *testing.T) {
	hierarchy := &fakeHierarchy{
		createItemErr: &Error{StatusCode: 403, Errors: []domain.ErrorEntry{{Status: "403", Title: "forbidden"}}},
	}
	reconciler := NewReconciler(hierarchy, "proj-1")

	_, err := reconciler.CreateOrVersion(context.Background(), "folder1", "plan.pdf", stagedRef)

	var recErr *domain.ReconciliationError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 0, hierarchy.createVersionCalls)
}

func TestCreateOrVersionVersioningFailure(t *testing.T) {
	hierarchy := &fakeHierarchy{
		createItemErr: &domain.ConflictError{},
		items: map[string][]domain.DocumentItem{
			"folder1": {{ID: "itm-1", DisplayName: "plan.pdf"}},
		},
		createVersionErr: errors.New("storage relationship rejected"),
	}
	reconciler := NewReconciler(hierarchy, "proj-1")

	_, err := reconciler.CreateOrVersion(context.Background(), "folder1", "plan.pdf", stagedRef)

	var recErr *domain.ReconciliationError
	require.ErrorAs(t, err, &recErr)
}
