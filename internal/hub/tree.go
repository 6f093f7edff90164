package hub

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/plotline/plotline/internal/domain"
)

// TreeBuilder materializes the four-level document hierarchy: hubs,
// projects, top folders, folder contents, with item versions as leaves. A
// pure read path, rebuilt fresh on every call.
type TreeBuilder struct {
	hierarchy domain.DocumentHierarchy
}

func NewTreeBuilder(hierarchy domain.DocumentHierarchy) *TreeBuilder {
	return &TreeBuilder{hierarchy: hierarchy}
}

// Build walks the hierarchy. Hubs outside the workspace family (ids not
// prefixed "b.") become leaf nodes.
func (b *TreeBuilder) Build(ctx context.Context) ([]domain.TreeNode, error) {
	hubs, err := b.hierarchy.ListHubs(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]domain.TreeNode, 0, len(hubs))
	for _, hub := range hubs {
		node := domain.TreeNode{ID: hub.ID, Label: hub.DisplayName}

		if strings.HasPrefix(hub.ID, "b.") {
			children, err := b.projects(ctx, hub.ID)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}

		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (b *TreeBuilder) projects(ctx context.Context, hubID string) ([]domain.TreeNode, error) {
	projects, err := b.hierarchy.ListProjects(ctx, hubID)
	if err != nil {
		return nil, err
	}

	nodes := make([]domain.TreeNode, 0, len(projects))
	for _, project := range projects {
		children, err := b.topFolders(ctx, hubID, project.ID)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, domain.TreeNode{ID: project.ID, Label: project.DisplayName, Children: children})
	}
	return nodes, nil
}

func (b *TreeBuilder) topFolders(ctx context.Context, hubID, projectID string) ([]domain.TreeNode, error) {
	folders, err := b.hierarchy.ListTopFolders(ctx, hubID, projectID)
	if err != nil {
		return nil, err
	}

	nodes := make([]domain.TreeNode, 0, len(folders))
	for _, folder := range folders {
		children, err := b.folderContents(ctx, projectID, folder.ID)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, domain.TreeNode{ID: folder.ID, Label: folder.DisplayName, Children: children})
	}
	return nodes, nil
}

func (b *TreeBuilder) folderContents(ctx context.Context, projectID, folderID string) ([]domain.TreeNode, error) {
	entries, err := b.hierarchy.ListFolderContents(ctx, projectID, folderID)
	if err != nil {
		return nil, err
	}

	nodes := make([]domain.TreeNode, 0, len(entries))
	for _, entry := range entries {
		// default/system folders carry no display name and are not shown
		if strings.TrimSpace(entry.DisplayName) == "" {
			continue
		}

		node := domain.TreeNode{ID: entry.ID, Label: entry.DisplayName}
		node.Children = b.itemVersions(ctx, projectID, entry.ID)
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// itemVersions is best-effort diagnostic output: a failed version listing
// yields an empty children list instead of aborting the walk.
func (b *TreeBuilder) itemVersions(ctx context.Context, projectID, itemID string) []domain.TreeNode {
	versions, err := b.hierarchy.ListItemVersions(ctx, projectID, itemID)
	if err != nil {
		log.Debug().Err(err).Str("item_id", itemID).Msg("Version listing failed, leaving leaf empty")
		return nil
	}

	nodes := make([]domain.TreeNode, 0, len(versions))
	for _, version := range versions {
		nodes = append(nodes, domain.TreeNode{ID: version.ID, Label: version.DisplayName})
	}
	return nodes
}
