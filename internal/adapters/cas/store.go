// Package cas implements the Cache Store (ports.Store): the filesystem
// layout for cached artifact entries, verbatim symlink-safe copying, and
// the advisory record locks that make concurrent access safe.
package cas

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.memora.dev/memora/internal/core/domain"
	"go.memora.dev/memora/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// Store implements ports.Store rooted at a cache directory.
type Store struct {
	root string
}

var _ ports.Store = (*Store)(nil)

// NewStore creates a Store rooted at root, the manifest's cache_root_dir
// resolved to an absolute path.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) entryDir(key ports.EntryKey) string {
	if key.Instance == "" {
		return domain.EntryDir(s.root, key.Artifact, key.Object)
	}
	return domain.PatternEntryDir(s.root, key.Artifact, key.Instance, key.Object)
}

// HasEntry reports whether the entry exists and is readable.
func (s *Store) HasEntry(_ context.Context, key ports.EntryKey) (bool, error) {
	lock, err := acquireLock(domain.LockPath(s.entryDir(key)), unix.LOCK_SH)
	if err != nil {
		return false, err
	}
	defer lock.release()

	info, err := os.Stat(s.entryDir(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, zerr.Wrap(err, domain.ErrIoError.Error())
	}
	return info.IsDir(), nil
}

// ListEntries returns every cache key known for the given artifact, by
// walking cache_root_dir/<artifact_name> one level (concrete) or two levels
// (pattern, instance then object ID) deep.
func (s *Store) ListEntries(_ context.Context, artifactName string) ([]ports.EntryKey, error) {
	artifactDir := filepath.Join(s.root, artifactName)
	topEntries, err := os.ReadDir(artifactDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrIoError.Error())
	}

	var keys []ports.EntryKey
	for _, top := range topEntries {
		name := top.Name()
		if strings.HasSuffix(name, domain.LockSuffix) || strings.HasSuffix(name, domain.StagingSuffix) {
			continue
		}
		if !top.IsDir() {
			continue
		}
		if looksLikeObjectID(name) {
			keys = append(keys, ports.EntryKey{Artifact: artifactName, Object: domain.ObjectID(name)})
			continue
		}
		// A pattern instance directory: descend one more level for object IDs.
		instanceDir := filepath.Join(artifactDir, name)
		objEntries, err := os.ReadDir(instanceDir)
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrIoError.Error())
		}
		for _, obj := range objEntries {
			oname := obj.Name()
			if strings.HasSuffix(oname, domain.LockSuffix) || strings.HasSuffix(oname, domain.StagingSuffix) || !obj.IsDir() {
				continue
			}
			keys = append(keys, ports.EntryKey{Artifact: artifactName, Object: domain.ObjectID(oname), Instance: name})
		}
	}
	return keys, nil
}

// looksLikeObjectID is a best-effort discriminator between a concrete
// entry's <object_id> directory and a pattern artifact's <instance>
// directory: Git object IDs are hex digests, so a name containing anything
// outside [0-9a-f] is treated as an instance name instead.
func looksLikeObjectID(name string) bool {
	if len(name) < 4 {
		return false
	}
	for _, r := range name {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}

// InsertEntry atomically stages and installs sources under key.
func (s *Store) InsertEntry(_ context.Context, key ports.EntryKey, sources map[domain.Path]string) error {
	entryDir := s.entryDir(key)

	lock, err := acquireLock(domain.LockPath(entryDir), unix.LOCK_EX)
	if err != nil {
		return err
	}
	defer lock.release()

	if info, err := os.Stat(entryDir); err == nil && info.IsDir() {
		return nil
	}

	staging := domain.StagingPath(entryDir)
	if err := os.RemoveAll(staging); err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	if err := os.MkdirAll(staging, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}

	for logical, source := range sources {
		dst := filepath.Join(staging, filepath.FromSlash(string(logical)))
		if err := copyVerbatim(source, dst); err != nil {
			_ = os.RemoveAll(staging)
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(entryDir), domain.DirPerm); err != nil {
		_ = os.RemoveAll(staging)
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	if err := os.Rename(staging, entryDir); err != nil {
		_ = os.RemoveAll(staging)
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	return nil
}

// RetrieveEntry copies the cached outputs for key to destinations.
func (s *Store) RetrieveEntry(_ context.Context, key ports.EntryKey, destinations map[domain.Path]string) error {
	entryDir := s.entryDir(key)

	lock, err := acquireLock(domain.LockPath(entryDir), unix.LOCK_SH)
	if err != nil {
		return err
	}
	defer lock.release()

	if info, err := os.Stat(entryDir); err != nil || !info.IsDir() {
		return zerr.With(zerr.With(domain.ErrEntryNotFound, "artifact", key.Artifact), "object", key.Object)
	}

	for logical, dest := range destinations {
		src := filepath.Join(entryDir, filepath.FromSlash(string(logical)))
		if err := copyVerbatim(src, dest); err != nil {
			return err
		}
	}
	return nil
}
