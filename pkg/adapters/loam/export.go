package loam

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aretw0/loam"

	"github.com/aretw0/letluck/pkg/tree"
)

// Export writes every node of t as one document under <category>/<node>,
// in the layout Loader reads back.
func Export(ctx context.Context, repo *loam.TypedRepository[NodeMetadata], t *tree.Tree) error {
	for _, c := range t.Categories() {
		for _, n := range t.Nodes(c.ID) {
			meta := NodeMetadata{
				ID:       n.ID,
				Label:    n.Label,
				Category: c.ID,
				Children: n.Children,
			}
			if n.ID == t.RootID(c.ID) {
				meta.CategoryLabel = c.Label
			}
			for _, it := range n.Pool {
				meta.Pool = append(meta.Pool, map[string]any{"id": it.ID, "label": it.Label})
			}
			err := repo.Save(ctx, &loam.DocumentModel[NodeMetadata]{
				ID:      c.ID + "/" + n.ID,
				Content: "# " + n.Label,
				Data:    meta,
			})
			if err != nil {
				return fmt.Errorf("failed to save %s/%s: %w", c.ID, n.ID, err)
			}
		}
	}
	return nil
}

// ExportDir initializes a plain (unversioned) repository at dir and exports t into it.
func ExportDir(ctx context.Context, dir string, t *tree.Tree) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve content path: %w", err)
	}
	repo, err := loam.Init(absPath, loam.WithVersioning(false))
	if err != nil {
		return fmt.Errorf("failed to init loam repo: %w", err)
	}
	return Export(ctx, loam.NewTypedRepository[NodeMetadata](repo), t)
}
