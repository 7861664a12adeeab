package ports

import (
	"context"

	"go.memora.dev/memora/internal/core/domain"
)

// ConfigLoader finds and parses the Memora manifest for a repository.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load searches repoRoot's fixed candidate paths for a manifest, parses
	// the first one found, and returns it with the manifest's own path
	// appended as an implicit input of every declared artifact.
	Load(ctx context.Context, repoRoot string) (*domain.Manifest, error)
}
