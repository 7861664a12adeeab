package git

import (
	"context"

	"github.com/grindlemire/graft"
	"go.memora.dev/memora/internal/core/ports"
)

// NodeID is the unique identifier for the Git repository facade factory
// Graft node.
const NodeID graft.ID = "adapter.git_repo"

// init registers a ports.GitRepoFactory, not a ports.GitRepo instance: the
// directory to root the facade in is only known once the CLI has parsed its
// -C flag, which happens after the Graft graph is built.
func init() {
	graft.Register(graft.Node[ports.GitRepoFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.GitRepoFactory, error) {
			return func(dir string) ports.GitRepo { return New(dir) }, nil
		},
	})
}
