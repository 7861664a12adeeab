// Package resolver implements the artifact resolver and cache engine: the
// subsystem that reduces a revision and a set of cached revisions to a
// canonical required input object, selects the best cached entry, and
// drives the Cache Store to retrieve or insert outputs. It has no I/O of
// its own beyond the injected ports.GitRepo and ports.Store, except the
// working-tree scan that discovers pattern instances on insert (pattern.go).
package resolver

import (
	"context"
	"path/filepath"

	"go.memora.dev/memora/internal/core/domain"
	"go.memora.dev/memora/internal/core/ports"
)

// Resolver implements spec component D against injected ports.
type Resolver struct {
	repo   ports.GitRepo
	store  ports.Store
	tracer ports.Tracer
}

// New creates a Resolver over the given Git facade, cache store, and
// tracer.
func New(repo ports.GitRepo, store ports.Store, tracer ports.Tracer) *Resolver {
	return &Resolver{repo: repo, store: store, tracer: tracer}
}

// Hit describes the outcome of a successful Lookup or Get: the object ID
// under which the artifact's outputs were found.
type Hit struct {
	Object domain.ObjectID
}

// RequiredInputObject computes spec step 1: the youngest ancestor of head
// at which any of artifact's inputs was last changed. Returns ok=false when
// any input was never committed, per the boundary behavior in spec §8.
func (r *Resolver) RequiredInputObject(ctx context.Context, artifact *domain.Artifact, head domain.ObjectID) (domain.ObjectID, bool, error) {
	objects := make([]domain.ObjectID, 0, len(artifact.Inputs))
	for _, in := range artifact.Inputs {
		obj, ok, err := r.repo.LastCommitOnPath(ctx, in, head)
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, nil
		}
		objects = append(objects, obj)
	}
	required, err := r.repo.Youngest(ctx, objects)
	if err != nil {
		return "", false, err
	}
	return required, true, nil
}

// candidatesForInstance computes spec step 2 for one instance's cached
// object IDs: ancestor or descendant of required with no change in inputs.
func (r *Resolver) candidatesForInstance(ctx context.Context, artifact *domain.Artifact, required domain.ObjectID, instanceKeys []ports.EntryKey) ([]domain.ObjectID, error) {
	var candidates []domain.ObjectID
	for _, key := range instanceKeys {
		c := key.Object

		ancestorOfRequired, err := r.repo.IsAncestor(ctx, c, required)
		if err != nil {
			return nil, err
		}
		if ancestorOfRequired {
			changed, err := r.repo.Changed(ctx, c, required, artifact.Inputs)
			if err != nil {
				return nil, err
			}
			if !changed {
				candidates = append(candidates, c)
				continue
			}
		}

		requiredIsAncestor, err := r.repo.IsAncestor(ctx, required, c)
		if err != nil {
			return nil, err
		}
		if requiredIsAncestor {
			changed, err := r.repo.Changed(ctx, required, c, artifact.Inputs)
			if err != nil {
				return nil, err
			}
			if !changed {
				candidates = append(candidates, c)
			}
		}
	}
	return candidates, nil
}

// intersect returns the set intersection of two object ID slices.
func intersect(a, b []domain.ObjectID) []domain.ObjectID {
	set := make(map[domain.ObjectID]bool, len(a))
	for _, o := range a {
		set[o] = true
	}
	var out []domain.ObjectID
	for _, o := range b {
		if set[o] {
			out = append(out, o)
		}
	}
	return out
}

// groupByInstance partitions entry keys for one artifact by their Instance
// field, preserving first-seen order of instances for determinism.
func groupByInstance(keys []ports.EntryKey) ([]string, map[string][]ports.EntryKey) {
	order := make([]string, 0)
	groups := make(map[string][]ports.EntryKey)
	for _, k := range keys {
		if _, ok := groups[k.Instance]; !ok {
			order = append(order, k.Instance)
		}
		groups[k.Instance] = append(groups[k.Instance], k)
	}
	return order, groups
}

// candidateObjects computes spec steps 2-3: candidate object IDs valid
// across every discovered instance, intersected with early exit on an empty
// running intersection (Invariant 5).
func (r *Resolver) candidateObjects(ctx context.Context, artifact *domain.Artifact, required domain.ObjectID, instances []string, byInstance map[string][]ports.EntryKey) ([]domain.ObjectID, error) {
	var running []domain.ObjectID
	first := true
	for _, instance := range instances {
		perInstance, err := r.candidatesForInstance(ctx, artifact, required, byInstance[instance])
		if err != nil {
			return nil, err
		}
		if first {
			running = perInstance
			first = false
		} else {
			running = intersect(running, perInstance)
		}
		if len(running) == 0 {
			return nil, nil
		}
	}
	return running, nil
}

// selectBest computes spec step 4: the oldest common descendant on the
// current branch among candidates, falling back to the overall youngest,
// surfacing ErrIncomparable from the fallback per the open question in
// spec §9.
func (r *Resolver) selectBest(ctx context.Context, candidates []domain.ObjectID) (domain.ObjectID, bool, error) {
	if len(candidates) == 0 {
		return "", false, nil
	}
	best, ok, err := r.repo.OldestCommonDescendantOnCurrentBranch(ctx, candidates)
	if err != nil {
		return "", false, err
	}
	if ok {
		return best, true, nil
	}
	youngest, err := r.repo.Youngest(ctx, candidates)
	if err != nil {
		return "", false, err
	}
	return youngest, true, nil
}

// cacheInstances discovers, for the given artifact, the ordered list of
// instances present in the cache and their entry keys grouped by instance.
// Concrete artifacts have a single, unnamed instance.
func (r *Resolver) cacheInstances(ctx context.Context, artifact *domain.Artifact) ([]string, map[string][]ports.EntryKey, error) {
	keys, err := r.store.ListEntries(ctx, artifact.Name)
	if err != nil {
		return nil, nil, err
	}
	if !artifact.IsPattern() {
		var concrete []ports.EntryKey
		for _, k := range keys {
			if k.Instance == "" {
				concrete = append(concrete, k)
			}
		}
		return []string{""}, map[string][]ports.EntryKey{"": concrete}, nil
	}
	order, groups := groupByInstance(keys)
	return order, groups, nil
}

// Lookup implements spec step 5's lookup outcome: hit reports true and the
// winning object ID, or false on a miss (never an error for a plain miss).
func (r *Resolver) Lookup(ctx context.Context, artifact *domain.Artifact, head domain.ObjectID) (Hit, bool, error) {
	required, ok, err := r.RequiredInputObject(ctx, artifact, head)
	if err != nil {
		return Hit{}, false, err
	}
	if !ok {
		return Hit{}, false, nil
	}

	instances, byInstance, err := r.cacheInstances(ctx, artifact)
	if err != nil {
		return Hit{}, false, err
	}
	if artifact.IsPattern() && len(instances) == 0 {
		return Hit{}, false, nil
	}

	candidates, err := r.candidateObjects(ctx, artifact, required, instances, byInstance)
	if err != nil {
		return Hit{}, false, err
	}

	best, found, err := r.selectBest(ctx, candidates)
	if err != nil {
		return Hit{}, false, err
	}
	if !found {
		return Hit{}, false, nil
	}
	return Hit{Object: best}, true, nil
}

// Get implements Lookup plus materialization of outputs into the working
// tree rooted at repoRoot.
func (r *Resolver) Get(ctx context.Context, artifact *domain.Artifact, head domain.ObjectID, repoRoot string) (Hit, bool, error) {
	hit, found, err := r.Lookup(ctx, artifact, head)
	if err != nil || !found {
		return hit, found, err
	}

	instances, byInstance, err := r.cacheInstances(ctx, artifact)
	if err != nil {
		return Hit{}, false, err
	}
	for _, instance := range instances {
		if _, ok := findObjectInKeys(byInstance[instance], hit.Object); !ok {
			continue
		}
		destinations := outputDestinations(artifact, instance, repoRoot)
		key := ports.EntryKey{Artifact: artifact.Name, Object: hit.Object, Instance: instance}
		if err := r.store.RetrieveEntry(ctx, key, destinations); err != nil {
			return Hit{}, false, err
		}
	}
	return hit, true, nil
}

// Insert implements spec step 5's insert outcome: writes every discovered
// instance's outputs under the required input object, succeeding
// idempotently if an entry already exists.
func (r *Resolver) Insert(ctx context.Context, artifact *domain.Artifact, head domain.ObjectID, repoRoot string) (domain.ObjectID, error) {
	required, ok, err := r.RequiredInputObject(ctx, artifact, head)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrRequiredObjectUndefined
	}

	instances, err := r.workingTreeInstances(ctx, artifact, repoRoot)
	if err != nil {
		return "", err
	}

	for _, instance := range instances {
		key := ports.EntryKey{Artifact: artifact.Name, Object: required, Instance: instance}
		exists, err := r.store.HasEntry(ctx, key)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}
		sources := outputDestinations(artifact, instance, repoRoot)
		if err := r.store.InsertEntry(ctx, key, sources); err != nil {
			return "", err
		}
	}
	return required, nil
}

// outputDestinations maps every declared output of artifact, instantiated
// for instance if the artifact is a pattern, to an absolute path under
// repoRoot.
func outputDestinations(artifact *domain.Artifact, instance, repoRoot string) map[domain.Path]string {
	out := make(map[domain.Path]string, len(artifact.Outputs))
	for _, o := range artifact.Outputs {
		logical := o
		if instance != "" {
			logical = domain.InstantiateOutput(o, instance)
		}
		out[logical] = filepath.Join(repoRoot, string(logical))
	}
	return out
}

func findObjectInKeys(keys []ports.EntryKey, object domain.ObjectID) (ports.EntryKey, bool) {
	for _, k := range keys {
		if k.Object == object {
			return k, true
		}
	}
	return ports.EntryKey{}, false
}
