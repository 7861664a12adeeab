package domain

import "path/filepath"

const (
	// LockSuffix is appended to a cache entry directory's path to name its
	// dedicated advisory-lock file.
	LockSuffix = ".lock"

	// StagingSuffix is appended to a cache entry directory's path to name the
	// sibling directory used to stage a write before the atomic rename.
	StagingSuffix = ".tmp"

	// DirPerm is the default permission for cache directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for lock/marker files (rw-r--r--).
	FilePerm = 0o644
)

// ManifestCandidates lists the fixed, repository-root-relative paths Memora
// searches for a manifest, in order. The first one found wins.
var ManifestCandidates = []string{
	"Memora.yml",
	".ci/Memora.yml",
	".gitlab-ci.d/Memora.yml",
}

// EntryDir returns the cache entry directory for a concrete artifact:
// cache_root_dir/<artifact_name>/<object_id>.
func EntryDir(cacheRoot string, artifactName string, object ObjectID) string {
	return filepath.Join(cacheRoot, artifactName, string(object))
}

// PatternEntryDir returns the cache entry directory for one instance of a
// pattern artifact: cache_root_dir/<artifact_name>/<instance>/<object_id>.
func PatternEntryDir(cacheRoot string, artifactName, instance string, object ObjectID) string {
	return filepath.Join(cacheRoot, artifactName, instance, string(object))
}

// LockPath returns the dedicated lockfile path for a cache entry directory.
func LockPath(entryDir string) string {
	return entryDir + LockSuffix
}

// StagingPath returns the sibling staging directory path for a cache entry
// directory, unique per object so concurrent inserts of different objects
// under the same artifact never collide on a shared staging path.
func StagingPath(entryDir string) string {
	return entryDir + StagingSuffix
}
