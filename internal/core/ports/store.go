package ports

import (
	"context"

	"go.memora.dev/memora/internal/core/domain"
)

// EntryKey identifies a cache entry: an artifact name, object ID, and
// (for pattern artifacts) the concrete wildcard instance.
type EntryKey struct {
	Artifact string
	Object   domain.ObjectID
	Instance string // empty for concrete artifacts
}

// Store is the Cache Store (component B): filesystem layout for cached
// artifact entries, insert/retrieve of outputs, and advisory record
// locking around each entry.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type Store interface {
	// HasEntry reports whether the entry exists and is readable.
	HasEntry(ctx context.Context, key EntryKey) (bool, error)

	// ListEntries returns every cache key known for the given artifact.
	ListEntries(ctx context.Context, artifactName string) ([]EntryKey, error)

	// InsertEntry atomically stages and installs the given source paths (a
	// map of logical output path to absolute filesystem source path) under
	// key. Overwrite is permitted; an entry that already exists under key
	// is left untouched and the call succeeds.
	InsertEntry(ctx context.Context, key EntryKey, sources map[domain.Path]string) error

	// RetrieveEntry copies the cached outputs for key to the given
	// destination paths (a map of logical output path to absolute
	// filesystem destination path). Fails with ErrEntryNotFound if the
	// entry is missing.
	RetrieveEntry(ctx context.Context, key EntryKey, destinations map[domain.Path]string) error
}
