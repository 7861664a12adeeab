// Package ports defines the core interfaces the engine and application
// layers depend on; concrete implementations live under internal/adapters.
package ports

import (
	"context"

	"go.memora.dev/memora/internal/core/domain"
)

// GitRepo is the Git Repository Facade (component A). The concrete adapter
// memoizes Diff and IsAncestor results (the diff and ancestry caches) for
// the lifetime of one facade value; the other operations run git each time.
//
//go:generate mockgen -source=git.go -destination=mocks/mock_git.go -package=mocks
type GitRepo interface {
	// Head returns the current HEAD commit.
	Head(ctx context.Context) (domain.ObjectID, error)

	// Resolve resolves a rev-spec to an object ID.
	Resolve(ctx context.Context, revSpec string) (domain.ObjectID, error)

	// Diff reports whether the content addressed by path differs between
	// objects a and b. Directories and symlinks are compared by tree
	// content and link text respectively, never by following links.
	Diff(ctx context.Context, a, b domain.ObjectID, path domain.Path) (bool, error)

	// Changed reports whether Diff is true for any of paths, short-circuiting
	// on the first true.
	Changed(ctx context.Context, a, b domain.ObjectID, paths []domain.Path) (bool, error)

	// IsAncestor reports whether a is a non-strict ancestor of b. Self is an
	// ancestor of self.
	IsAncestor(ctx context.Context, a, b domain.ObjectID) (bool, error)

	// DescendantsOnCurrentBranch returns the commits on the ancestry path
	// between o and HEAD inclusive, when o is an ancestor of HEAD. This
	// follows every parent, not just first parents, so a side branch merged
	// into HEAD still contributes its commits.
	DescendantsOnCurrentBranch(ctx context.Context, o domain.ObjectID) ([]domain.ObjectID, error)

	// LastCommitOnPath returns the youngest commit, walking back from from,
	// that touched path. Returns ok=false when the log is empty for path.
	LastCommitOnPath(ctx context.Context, path domain.Path, from domain.ObjectID) (domain.ObjectID, bool, error)

	// Youngest returns the maximum of objects under the ancestry partial
	// order. A single-element set trivially returns its element. Returns
	// ErrIncomparable when the set contains two pairwise-incomparable
	// elements.
	Youngest(ctx context.Context, objects []domain.ObjectID) (domain.ObjectID, error)

	// Oldest is the dual of Youngest.
	Oldest(ctx context.Context, objects []domain.ObjectID) (domain.ObjectID, error)

	// OldestCommonDescendantOnCurrentBranch returns the oldest object c on
	// the current branch such that every o in objects is an ancestor of c.
	// Returns ok=false when no such object exists.
	OldestCommonDescendantOnCurrentBranch(ctx context.Context, objects []domain.ObjectID) (domain.ObjectID, bool, error)

	// HasUncommittedChanges reports whether any of paths has uncommitted
	// changes in the working tree relative to HEAD.
	HasUncommittedChanges(ctx context.Context, paths []domain.Path) (bool, error)
}

// GitRepoFactory builds a GitRepo rooted at dir. It is resolved once, at
// wiring time, but invoked once per request: dir is only known after the
// CLI has parsed its -C flag, so the facade itself cannot be built until
// then.
type GitRepoFactory func(dir string) GitRepo
