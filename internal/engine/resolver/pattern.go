package resolver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.memora.dev/memora/internal/core/domain"
)

// workingTreeInstances discovers the set of concrete wildcard expansions
// present in the working tree for a pattern artifact's output templates,
// by scanning the filesystem under each template's static directory
// prefix and matching the remainder against the pattern, per spec §4.2.
// Concrete artifacts have exactly one, unnamed instance.
func (r *Resolver) workingTreeInstances(_ context.Context, artifact *domain.Artifact, repoRoot string) ([]string, error) {
	if !artifact.IsPattern() {
		return []string{""}, nil
	}

	seen := make(map[string]bool)
	var instances []string

	for _, template := range artifact.WildcardOutputs() {
		dir := staticDir(template)
		root := filepath.Join(repoRoot, dir)

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(repoRoot, path)
			if err != nil {
				return err
			}
			instance, ok := domain.MatchInstance(template, domain.Path(filepath.ToSlash(rel)))
			if !ok {
				return nil
			}
			if !seen[instance] {
				seen[instance] = true
				instances = append(instances, instance)
			}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	sort.Strings(instances)
	return instances, nil
}

// staticDir returns the directory portion of a wildcarded template that
// precedes the wildcard token, used to bound the filesystem scan.
func staticDir(template domain.Path) string {
	idx := strings.Index(string(template), domain.WildcardToken)
	if idx < 0 {
		return filepath.Dir(string(template))
	}
	prefix := string(template)[:idx]
	return filepath.Dir(prefix)
}
