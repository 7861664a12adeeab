// Package git implements the Git Repository Facade (ports.GitRepo) by
// shelling out to the system git binary in the working directory.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"

	"go.memora.dev/memora/internal/core/domain"
	"go.memora.dev/memora/internal/core/ports"
	"go.trai.ch/zerr"
)

// Repo implements ports.GitRepo against a real Git working directory. Diff
// and ancestry results are memoized for the lifetime of the Repo value,
// matching the process-lifetime "Repo object caches" of spec §3.
type Repo struct {
	dir string

	mu          sync.Mutex
	diffCache   map[diffKey]bool
	ancestorMap map[ancestorKey]bool
}

type diffKey struct {
	a, b domain.ObjectID
	path domain.Path
}

type ancestorKey struct {
	a, b domain.ObjectID
}

var _ ports.GitRepo = (*Repo)(nil)

// New creates a Repo rooted at dir, which must be inside a Git working
// tree.
func New(dir string) *Repo {
	return &Repo{
		dir:         dir,
		diffCache:   make(map[diffKey]bool),
		ancestorMap: make(map[ancestorKey]bool),
	}
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrGitError.Error()), "stderr", strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// runStatus runs a git command whose exit code itself is the signal (e.g.
// diff --quiet, merge-base --is-ancestor), returning exit code 0 or 1 so
// callers can read it without treating it as a failure. Any other exit code
// (git exits 128 on errors such as an unknown revision) is a git error.
func (r *Repo) runStatus(ctx context.Context, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if ok := isExitError(err, &exitErr); ok && exitErr.ExitCode() == 1 {
		return 1, nil
	}
	return -1, zerr.With(zerr.Wrap(err, domain.ErrGitError.Error()), "stderr", strings.TrimSpace(stderr.String()))
}

func isExitError(err error, target **exec.ExitError) bool {
	if e, ok := err.(*exec.ExitError); ok {
		*target = e
		return true
	}
	return false
}

// Head returns the current HEAD commit.
func (r *Repo) Head(ctx context.Context) (domain.ObjectID, error) {
	return r.Resolve(ctx, "HEAD")
}

// Resolve resolves a rev-spec to an object ID.
func (r *Repo) Resolve(ctx context.Context, revSpec string) (domain.ObjectID, error) {
	out, err := r.run(ctx, "rev-parse", "--verify", revSpec+"^{commit}")
	if err != nil {
		return "", zerr.With(domain.ErrRevisionNotFound, "rev", revSpec)
	}
	return domain.ObjectID(out), nil
}

// Diff reports whether path differs between objects a and b. Memoized.
func (r *Repo) Diff(ctx context.Context, a, b domain.ObjectID, path domain.Path) (bool, error) {
	if a == b {
		return false, nil
	}
	key := diffKey{a: a, b: b, path: path}
	r.mu.Lock()
	if v, ok := r.diffCache[key]; ok {
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	code, err := r.runStatus(ctx, "diff", "--quiet", string(a), string(b), "--", string(path))
	if err != nil {
		return false, err
	}
	differs := code != 0

	r.mu.Lock()
	r.diffCache[key] = differs
	r.diffCache[diffKey{a: b, b: a, path: path}] = differs
	r.mu.Unlock()
	return differs, nil
}

// Changed reports whether Diff is true for any of paths, short-circuiting
// on the first true.
func (r *Repo) Changed(ctx context.Context, a, b domain.ObjectID, paths []domain.Path) (bool, error) {
	for _, p := range paths {
		differs, err := r.Diff(ctx, a, b, p)
		if err != nil {
			return false, err
		}
		if differs {
			return true, nil
		}
	}
	return false, nil
}

// IsAncestor reports whether a is a non-strict ancestor of b. Memoized.
func (r *Repo) IsAncestor(ctx context.Context, a, b domain.ObjectID) (bool, error) {
	if a == b {
		return true, nil
	}
	key := ancestorKey{a: a, b: b}
	r.mu.Lock()
	if v, ok := r.ancestorMap[key]; ok {
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	code, err := r.runStatus(ctx, "merge-base", "--is-ancestor", string(a), string(b))
	if err != nil {
		return false, err
	}
	isAncestor := code == 0

	r.mu.Lock()
	r.ancestorMap[key] = isAncestor
	r.mu.Unlock()
	return isAncestor, nil
}

// DescendantsOnCurrentBranch returns commits on the ancestry path between o
// and HEAD inclusive, when o is an ancestor of HEAD. --ancestry-path alone
// (no --first-parent) is used deliberately: a commit reached only through
// a merge's second parent is still a descendant of o on the current branch.
func (r *Repo) DescendantsOnCurrentBranch(ctx context.Context, o domain.ObjectID) ([]domain.ObjectID, error) {
	out, err := r.run(ctx, "rev-list", "--ancestry-path", "--reverse", string(o)+"..HEAD")
	if err != nil {
		return nil, err
	}
	result := []domain.ObjectID{o}
	for _, c := range splitLines(out) {
		result = append(result, domain.ObjectID(c))
	}
	return result, nil
}

// LastCommitOnPath returns the youngest commit, walking back from from,
// that touched path.
func (r *Repo) LastCommitOnPath(ctx context.Context, path domain.Path, from domain.ObjectID) (domain.ObjectID, bool, error) {
	out, err := r.run(ctx, "log", "-n", "1", "--pretty=format:%H", string(from), "--", string(path))
	if err != nil {
		return "", false, err
	}
	if out == "" {
		return "", false, nil
	}
	return domain.ObjectID(out), true, nil
}

// Youngest returns the maximum of objects under the ancestry partial order.
func (r *Repo) Youngest(ctx context.Context, objects []domain.ObjectID) (domain.ObjectID, error) {
	return r.extremum(ctx, objects, true)
}

// Oldest returns the minimum of objects under the ancestry partial order.
func (r *Repo) Oldest(ctx context.Context, objects []domain.ObjectID) (domain.ObjectID, error) {
	return r.extremum(ctx, objects, false)
}

func (r *Repo) extremum(ctx context.Context, objects []domain.ObjectID, youngest bool) (domain.ObjectID, error) {
	if len(objects) == 0 {
		return "", zerr.New("youngest/oldest requires a non-empty set")
	}
	best := objects[0]
	for _, o := range objects[1:] {
		if o == best {
			continue
		}
		bestAncestorOfO, err := r.IsAncestor(ctx, best, o)
		if err != nil {
			return "", err
		}
		oAncestorOfBest, err := r.IsAncestor(ctx, o, best)
		if err != nil {
			return "", err
		}
		switch {
		case bestAncestorOfO && youngest:
			best = o
		case oAncestorOfBest && !youngest:
			best = o
		case bestAncestorOfO || oAncestorOfBest:
			// comparable but in the direction that keeps `best` unchanged
		default:
			return "", zerr.With(zerr.With(domain.ErrIncomparable, "a", best), "b", o)
		}
	}
	return best, nil
}

// OldestCommonDescendantOnCurrentBranch returns the oldest object c on the
// current branch such that every o in objects is an ancestor of c.
func (r *Repo) OldestCommonDescendantOnCurrentBranch(ctx context.Context, objects []domain.ObjectID) (domain.ObjectID, bool, error) {
	if len(objects) == 0 {
		return "", false, nil
	}

	var intersection map[domain.ObjectID]bool
	for _, o := range objects {
		descendants, err := r.DescendantsOnCurrentBranch(ctx, o)
		if err != nil {
			return "", false, err
		}
		set := make(map[domain.ObjectID]bool, len(descendants))
		for _, d := range descendants {
			set[d] = true
		}
		if intersection == nil {
			intersection = set
		} else {
			for k := range intersection {
				if !set[k] {
					delete(intersection, k)
				}
			}
		}
		if len(intersection) == 0 {
			return "", false, nil
		}
	}

	candidates := make([]domain.ObjectID, 0, len(intersection))
	for k := range intersection {
		candidates = append(candidates, k)
	}
	oldest, err := r.Oldest(ctx, candidates)
	if err != nil {
		return "", false, err
	}
	return oldest, true, nil
}

// HasUncommittedChanges reports whether any of paths has uncommitted
// changes in the working tree relative to HEAD.
func (r *Repo) HasUncommittedChanges(ctx context.Context, paths []domain.Path) (bool, error) {
	args := []string{"status", "--porcelain", "--"}
	for _, p := range paths {
		args = append(args, string(p))
	}
	out, err := r.run(ctx, args...)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
