package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.memora.dev/memora/internal/adapters/config"
	"go.memora.dev/memora/internal/adapters/git"
	"go.memora.dev/memora/internal/adapters/logger"
	"go.memora.dev/memora/internal/adapters/telemetry"
	"go.memora.dev/memora/internal/core/ports"
)

// ComponentsNodeID is the unique identifier for the root application
// components Graft node.
const ComponentsNodeID graft.ID = "app.components"

// Components bundles the resolved application object graph, the shape
// main() asks Graft to build.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, git.NodeID, logger.NodeID, telemetry.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			cfgLoader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			repoFactory, err := graft.Dep[ports.GitRepoFactory](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: New(cfgLoader, repoFactory, log, tracer), Logger: log}, nil
		},
	})
}
