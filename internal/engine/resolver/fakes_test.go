package resolver_test

import (
	"context"
	"fmt"

	"go.memora.dev/memora/internal/core/domain"
	"go.memora.dev/memora/internal/core/ports"
)

// fakeRepo is a hand-written, deterministic Git facade substitute, per the
// "Repo facade abstraction" design note: it models history as a commit
// graph (parent pointers, possibly more than one per commit for merges) and
// per-path "last changed at" maps, rather than returning canned values, so
// the resolver's relational properties can be exercised directly over both
// linear and branching/merging topologies.
type fakeRepo struct {
	parents      map[domain.ObjectID][]domain.ObjectID // every parent; first entry is first-parent
	head         domain.ObjectID
	lastChangeAt map[domain.Path][]domain.ObjectID // ordered oldest..youngest commits touching path
	order        []domain.ObjectID                 // topological insertion order, oldest..youngest
}

func newFakeRepo(head domain.ObjectID) *fakeRepo {
	return &fakeRepo{
		parents:      make(map[domain.ObjectID][]domain.ObjectID),
		lastChangeAt: make(map[domain.Path][]domain.ObjectID),
		head:         head,
	}
}

// addCommit records a single-parent commit. parent is "" for a root commit.
func (f *fakeRepo) addCommit(id domain.ObjectID, parent domain.ObjectID, changedPaths ...domain.Path) {
	if parent != "" {
		f.parents[id] = []domain.ObjectID{parent}
	}
	f.order = append(f.order, id)
	for _, p := range changedPaths {
		f.lastChangeAt[p] = append(f.lastChangeAt[p], id)
	}
}

// addMerge records a commit with more than one parent, first entry is the
// first-parent.
func (f *fakeRepo) addMerge(id domain.ObjectID, parents []domain.ObjectID, changedPaths ...domain.Path) {
	f.parents[id] = append([]domain.ObjectID{}, parents...)
	f.order = append(f.order, id)
	for _, p := range changedPaths {
		f.lastChangeAt[p] = append(f.lastChangeAt[p], id)
	}
}

func (f *fakeRepo) Head(context.Context) (domain.ObjectID, error) { return f.head, nil }

func (f *fakeRepo) Resolve(_ context.Context, rev string) (domain.ObjectID, error) {
	return domain.ObjectID(rev), nil
}

func (f *fakeRepo) index(id domain.ObjectID) int {
	for i, o := range f.order {
		if o == id {
			return i
		}
	}
	return -1
}

// childrenOf inverts the parents map: child commits keyed by parent.
func (f *fakeRepo) childrenOf() map[domain.ObjectID][]domain.ObjectID {
	children := make(map[domain.ObjectID][]domain.ObjectID)
	for child, parents := range f.parents {
		for _, p := range parents {
			children[p] = append(children[p], child)
		}
	}
	return children
}

// reachable walks from seeds following next, returning the visited set
// (including the seeds).
func reachable(seeds []domain.ObjectID, next map[domain.ObjectID][]domain.ObjectID) map[domain.ObjectID]bool {
	visited := make(map[domain.ObjectID]bool, len(seeds))
	queue := append([]domain.ObjectID{}, seeds...)
	for _, s := range seeds {
		visited[s] = true
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range next[c] {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return visited
}

// ancestorsOf returns x and every commit reachable from x via any parent.
func (f *fakeRepo) ancestorsOf(x domain.ObjectID) map[domain.ObjectID]bool {
	return reachable([]domain.ObjectID{x}, f.parents)
}

// descendantsOf returns x and every commit reachable from x via any child.
func (f *fakeRepo) descendantsOf(x domain.ObjectID) map[domain.ObjectID]bool {
	return reachable([]domain.ObjectID{x}, f.childrenOf())
}

func (f *fakeRepo) IsAncestor(_ context.Context, a, b domain.ObjectID) (bool, error) {
	if f.index(a) < 0 || f.index(b) < 0 {
		return false, fmt.Errorf("unknown object")
	}
	return f.ancestorsOf(b)[a], nil
}

// Diff/Changed: a path is considered changed between a and b iff some
// commit after the older of the two, up to and including the younger (by
// linear order), recorded a change to it.
func (f *fakeRepo) Diff(ctx context.Context, a, b domain.ObjectID, path domain.Path) (bool, error) {
	ia, ib := f.index(a), f.index(b)
	if ia < 0 || ib < 0 {
		return false, fmt.Errorf("unknown object")
	}
	lo, hi := ia, ib
	if lo > hi {
		lo, hi = hi, lo
	}
	for _, c := range f.lastChangeAt[path] {
		ic := f.index(c)
		if ic > lo && ic <= hi {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Changed(ctx context.Context, a, b domain.ObjectID, paths []domain.Path) (bool, error) {
	for _, p := range paths {
		changed, err := f.Diff(ctx, a, b, p)
		if err != nil {
			return false, err
		}
		if changed {
			return true, nil
		}
	}
	return false, nil
}

// DescendantsOnCurrentBranch returns the ancestry path between o and head:
// commits that are both descendants of o and ancestors of head, in
// topological order. This follows every parent, so a commit reached only
// through a merge's non-first parent is still included.
func (f *fakeRepo) DescendantsOnCurrentBranch(_ context.Context, o domain.ObjectID) ([]domain.ObjectID, error) {
	if f.index(o) < 0 {
		return nil, nil
	}
	onPath := f.ancestorsOf(f.head)
	descendants := f.descendantsOf(o)
	var result []domain.ObjectID
	for _, id := range f.order {
		if onPath[id] && descendants[id] {
			result = append(result, id)
		}
	}
	return result, nil
}

func (f *fakeRepo) LastCommitOnPath(_ context.Context, path domain.Path, from domain.ObjectID) (domain.ObjectID, bool, error) {
	commits := f.lastChangeAt[path]
	ifrom := f.index(from)
	var best domain.ObjectID
	found := false
	for _, c := range commits {
		if f.index(c) <= ifrom {
			best = c
			found = true
		}
	}
	return best, found, nil
}

func (f *fakeRepo) Youngest(_ context.Context, objects []domain.ObjectID) (domain.ObjectID, error) {
	if len(objects) == 0 {
		return "", fmt.Errorf("empty set")
	}
	best := objects[0]
	for _, o := range objects[1:] {
		ib, ibest := f.index(o), f.index(best)
		switch {
		case ib == ibest:
			continue
		case ib > ibest:
			// o younger than best, but only valid if best is ancestor of o
			anc, _ := f.IsAncestor(context.Background(), best, o)
			if !anc {
				return "", domain.ErrIncomparable
			}
			best = o
		default:
			anc, _ := f.IsAncestor(context.Background(), o, best)
			if !anc {
				return "", domain.ErrIncomparable
			}
		}
	}
	return best, nil
}

func (f *fakeRepo) Oldest(_ context.Context, objects []domain.ObjectID) (domain.ObjectID, error) {
	if len(objects) == 0 {
		return "", fmt.Errorf("empty set")
	}
	best := objects[0]
	for _, o := range objects[1:] {
		ib, ibest := f.index(o), f.index(best)
		switch {
		case ib == ibest:
			continue
		case ib < ibest:
			anc, _ := f.IsAncestor(context.Background(), o, best)
			if !anc {
				return "", domain.ErrIncomparable
			}
			best = o
		default:
			anc, _ := f.IsAncestor(context.Background(), best, o)
			if !anc {
				return "", domain.ErrIncomparable
			}
		}
	}
	return best, nil
}

// OldestCommonDescendantOnCurrentBranch scans commits that are ancestors of
// head, in topological (oldest-first) order, returning the first one that
// is a descendant of every object in objects. A commit reachable only
// through a merge's non-first parent still counts as "on the current
// branch" here, matching DescendantsOnCurrentBranch.
func (f *fakeRepo) OldestCommonDescendantOnCurrentBranch(ctx context.Context, objects []domain.ObjectID) (domain.ObjectID, bool, error) {
	onBranch := f.ancestorsOf(f.head)
	for _, c := range f.order {
		if !onBranch[c] {
			continue
		}
		allAncestors := true
		for _, o := range objects {
			anc, err := f.IsAncestor(ctx, o, c)
			if err != nil || !anc {
				allAncestors = false
				break
			}
		}
		if allAncestors {
			return c, true, nil
		}
	}
	return "", false, nil
}

func (f *fakeRepo) HasUncommittedChanges(context.Context, []domain.Path) (bool, error) {
	return false, nil
}

// fakeStore is an in-memory ports.Store substitute.
type fakeStore struct {
	entries map[ports.EntryKey]map[domain.Path]string
	calls   map[string]int // artifact name -> ListEntries call count, for Invariant 5
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: make(map[ports.EntryKey]map[domain.Path]string),
		calls:   make(map[string]int),
	}
}

func (s *fakeStore) HasEntry(_ context.Context, key ports.EntryKey) (bool, error) {
	_, ok := s.entries[key]
	return ok, nil
}

func (s *fakeStore) ListEntries(_ context.Context, artifactName string) ([]ports.EntryKey, error) {
	s.calls[artifactName]++
	var out []ports.EntryKey
	for k := range s.entries {
		if k.Artifact == artifactName {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertEntry(_ context.Context, key ports.EntryKey, sources map[domain.Path]string) error {
	if _, ok := s.entries[key]; ok {
		return nil
	}
	copySources := make(map[domain.Path]string, len(sources))
	for k, v := range sources {
		copySources[k] = v
	}
	s.entries[key] = copySources
	return nil
}

func (s *fakeStore) RetrieveEntry(_ context.Context, key ports.EntryKey, destinations map[domain.Path]string) error {
	entry, ok := s.entries[key]
	if !ok {
		return domain.ErrEntryNotFound
	}
	for path := range destinations {
		if _, ok := entry[path]; !ok {
			return domain.ErrEntryNotFound
		}
	}
	return nil
}

type noopSpan struct{}

func (noopSpan) SetAttribute(string, string) {}
func (noopSpan) RecordError(error)            {}
func (noopSpan) End()                         {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}
