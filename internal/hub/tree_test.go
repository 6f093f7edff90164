package hub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotline/plotline/internal/domain"
)

func newTreeFixture() *fakeHierarchy {
	return &fakeHierarchy{
		hubs: []domain.Entry{
			{ID: "b.hub-1", DisplayName: "Design Hub"},
			{ID: "p.hub-2", DisplayName: "Personal Hub"},
		},
		projects: map[string][]domain.Entry{
			"b.hub-1": {{ID: "proj-1", DisplayName: "Tower"}},
		},
		topFolders: map[string][]domain.Entry{
			"proj-1": {{ID: "folder-root", DisplayName: "Project Files"}},
		},
		contents: map[string][]domain.Entry{
			"folder-root": {
				{ID: "itm-1", DisplayName: "plan.pdf"},
				{ID: "itm-sys", DisplayName: "   "},
				{ID: "itm-2", DisplayName: "drawing.dwg"},
			},
		},
		versions: map[string][]domain.Entry{
			"itm-1": {
				{ID: "ver-2", DisplayName: "plan.pdf v2"},
				{ID: "ver-1", DisplayName: "plan.pdf v1"},
			},
		},
		versionsErr: map[string]error{
			"itm-2": errors.New("not a versioned item"),
		},
	}
}

func TestBuildTree(t *testing.T) {
	builder := NewTreeBuilder(newTreeFixture())

	nodes, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	workspace := nodes[0]
	assert.Equal(t, "Design Hub", workspace.Label)
	require.Len(t, workspace.Children, 1)

	project := workspace.Children[0]
	assert.Equal(t, "Tower", project.Label)
	require.Len(t, project.Children, 1)

	folder := project.Children[0]
	assert.Equal(t, "Project Files", folder.Label)

	// the blank-named system entry is skipped
	require.Len(t, folder.Children, 2)
	assert.Equal(t, "plan.pdf", folder.Children[0].Label)
	assert.Equal(t, "drawing.dwg", folder.Children[1].Label)

	// version leaves, newest first
	require.Len(t, folder.Children[0].Children, 2)
	assert.Equal(t, "ver-2", folder.Children[0].Children[0].ID)

	// version listing failure is absorbed into an empty leaf
	assert.Empty(t, folder.Children[1].Children)
}

func TestBuildTreeNonWorkspaceHubIsLeaf(t *testing.T) {
	builder := NewTreeBuilder(newTreeFixture())

	nodes, err := builder.Build(context.Background())
	require.NoError(t, err)

	personal := nodes[1]
	assert.Equal(t, "Personal Hub", personal.Label)
	assert.Empty(t, personal.Children)
}
