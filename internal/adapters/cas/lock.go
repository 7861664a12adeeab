package cas

import (
	"os"
	"path/filepath"

	"go.memora.dev/memora/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// lockFile holds a POSIX advisory record lock acquired via flock(2) on a
// dedicated lockfile, per spec §5: one lockfile per cache entry directory,
// shared locks for readers, exclusive locks for writers, released on every
// exit path.
type lockFile struct {
	f *os.File
}

// acquireLock opens (creating it and its parent directory if necessary) the
// lockfile at path and takes a blocking flock in the given mode
// (unix.LOCK_SH or unix.LOCK_EX).
func acquireLock(path string, mode int) (*lockFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrIoError.Error())
	}
	//nolint:gosec // path is derived from a trusted cache root and artifact/object identifiers
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.FilePerm)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrIoError.Error())
	}
	if err := unix.Flock(int(f.Fd()), mode); err != nil {
		_ = f.Close()
		return nil, zerr.Wrap(err, domain.ErrIoError.Error())
	}
	return &lockFile{f: f}, nil
}

// release unlocks and closes the lockfile. Safe to call from any exit path.
func (l *lockFile) release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	return l.f.Close()
}
