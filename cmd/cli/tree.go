package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plotline/plotline/internal/domain"
)

func NewTreeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the document tree (hubs, projects, folders, items)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree()
		},
	}

	return cmd
}

func runTree() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config, err := LoadConfig()
	if err != nil {
		return err
	}

	tokens := buildTokenStore(config)
	_, builder := buildHierarchy(config, tokens)

	nodes, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	printTree(nodes)
	return nil
}

func printTree(nodes []domain.TreeNode) {
	for _, node := range nodes {
		printNode(node, 0)
	}
}

func printNode(node domain.TreeNode, depth int) {
	fmt.Printf("%s%s\n", strings.Repeat("  ", depth), node.Label)
	for _, child := range node.Children {
		printNode(child, depth+1)
	}
}
