// Package app implements the application layer for memora, orchestrating
// the Resolver and Cache Store against a loaded Manifest.
package app

import (
	"context"
	"os"

	"go.memora.dev/memora/internal/adapters/cas"
	"go.memora.dev/memora/internal/core/domain"
	"go.memora.dev/memora/internal/core/ports"
	"go.memora.dev/memora/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// App represents the main application logic: one Resolver/Cache Store
// orchestration per invocation.
type App struct {
	configLoader ports.ConfigLoader
	repoFactory  ports.GitRepoFactory
	logger       ports.Logger
	tracer       ports.Tracer
}

// New creates a new App instance. repoFactory builds the Git facade fresh
// for each invocation, rooted at that invocation's Options.RepoRoot (the
// CLI's -C flag), rather than a facade fixed at process startup.
func New(loader ports.ConfigLoader, repoFactory ports.GitRepoFactory, log ports.Logger, tracer ports.Tracer) *App {
	return &App{
		configLoader: loader,
		repoFactory:  repoFactory,
		logger:       log,
		tracer:       tracer,
	}
}

// Options configures one Lookup/Get/Insert invocation.
type Options struct {
	// RepoRoot is the directory to treat as the repository root, set by
	// the CLI's global -C flag. Defaults to "." when empty.
	RepoRoot string
	// IgnoreUncommittedChanges bypasses the worktree-cleanliness pre-check
	// on the artifact's own output paths.
	IgnoreUncommittedChanges bool
}

func (o Options) repoRoot() string {
	if o.RepoRoot == "" {
		return "."
	}
	return o.RepoRoot
}

// Outcome is the result of a Lookup or Get call, mapped by the CLI layer
// to an exit code (Hit -> 0, Miss -> 1).
type Outcome int

const (
	// Miss reports that the artifact was not found in the cache.
	Miss Outcome = iota
	// Hit reports that the artifact was found and, for Get, materialized.
	Hit
)

// load resolves the manifest and artifact for name, under opts.RepoRoot.
func (a *App) load(ctx context.Context, name string, opts Options) (*domain.Manifest, *domain.Artifact, error) {
	manifest, err := a.configLoader.Load(ctx, opts.repoRoot())
	if err != nil {
		return nil, nil, err
	}
	artifact, ok := manifest.Artifact(name)
	if !ok {
		return nil, nil, zerr.With(domain.ErrArtifactNotFound, "artifact", name)
	}
	return manifest, artifact, nil
}

// checkClean enforces the worktree-cleanliness pre-check: it refuses to run
// when any of artifact's own output paths has an uncommitted change, unless
// opts.IgnoreUncommittedChanges is set.
func (a *App) checkClean(ctx context.Context, repo ports.GitRepo, artifact *domain.Artifact, opts Options) error {
	if opts.IgnoreUncommittedChanges {
		return nil
	}
	dirty, err := repo.HasUncommittedChanges(ctx, artifact.Outputs)
	if err != nil {
		return err
	}
	if dirty {
		return zerr.With(domain.ErrUncommittedChanges, "artifact", artifact.Name)
	}
	return nil
}

// Lookup implements the lookup operation: exit 0 on hit, 1 on miss, 2 on
// error (mapped by the caller).
func (a *App) Lookup(ctx context.Context, name string, opts Options) (Outcome, error) {
	ctx, span := a.tracer.Start(ctx, "app.lookup")
	defer span.End()
	span.SetAttribute("artifact", name)

	manifest, artifact, err := a.load(ctx, name, opts)
	if err != nil {
		span.RecordError(err)
		return Miss, err
	}
	if manifest.Disabled(os.Getenv) {
		return Miss, nil
	}

	repo := a.repoFactory(opts.repoRoot())
	res, head, err := a.newResolver(ctx, repo, manifest)
	if err != nil {
		span.RecordError(err)
		return Miss, err
	}

	_, found, err := res.Lookup(ctx, artifact, head)
	if err != nil {
		span.RecordError(err)
		return Miss, err
	}
	if !found {
		return Miss, nil
	}
	return Hit, nil
}

// Get implements the get operation: exit 0 on hit with outputs
// materialized, 1 on miss, 2 on error.
func (a *App) Get(ctx context.Context, name string, opts Options) (Outcome, error) {
	ctx, span := a.tracer.Start(ctx, "app.get")
	defer span.End()
	span.SetAttribute("artifact", name)

	manifest, artifact, err := a.load(ctx, name, opts)
	if err != nil {
		span.RecordError(err)
		return Miss, err
	}
	if manifest.Disabled(os.Getenv) {
		return Miss, nil
	}
	repo := a.repoFactory(opts.repoRoot())
	if err := a.checkClean(ctx, repo, artifact, opts); err != nil {
		span.RecordError(err)
		return Miss, err
	}

	res, head, err := a.newResolver(ctx, repo, manifest)
	if err != nil {
		span.RecordError(err)
		return Miss, err
	}

	_, found, err := res.Get(ctx, artifact, head, opts.repoRoot())
	if err != nil {
		span.RecordError(err)
		return Miss, err
	}
	if !found {
		return Miss, nil
	}
	return Hit, nil
}

// Insert implements the insert operation: exit 0 on success or an
// idempotent repeat, 2 on error. disable_env_var makes this a no-op
// success, per spec.
func (a *App) Insert(ctx context.Context, name string, opts Options) error {
	ctx, span := a.tracer.Start(ctx, "app.insert")
	defer span.End()
	span.SetAttribute("artifact", name)

	manifest, artifact, err := a.load(ctx, name, opts)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if manifest.Disabled(os.Getenv) {
		return nil
	}
	repo := a.repoFactory(opts.repoRoot())
	if err := a.checkClean(ctx, repo, artifact, opts); err != nil {
		span.RecordError(err)
		return err
	}

	res, head, err := a.newResolver(ctx, repo, manifest)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if _, err := res.Insert(ctx, artifact, head, opts.repoRoot()); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// newResolver constructs a Resolver over repo and resolves HEAD. The Cache
// Store is built directly here, not through the Graft DI graph, because its
// root path (manifest.CacheRootDir) is only known once the manifest has
// loaded.
func (a *App) newResolver(ctx context.Context, repo ports.GitRepo, manifest *domain.Manifest) (*resolver.Resolver, domain.ObjectID, error) {
	store := cas.NewStore(string(manifest.CacheRootDir))
	res := resolver.New(repo, store, a.tracer)

	head, err := repo.Head(ctx)
	if err != nil {
		return nil, "", err
	}
	return res, head, nil
}
