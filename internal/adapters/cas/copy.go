package cas

import (
	"io"
	"os"
	"path/filepath"

	"go.memora.dev/memora/internal/core/domain"
	"go.trai.ch/zerr"
)

// copyVerbatim copies the file, directory tree, or symlink at src to dst,
// overwriting anything already at dst. It never follows symlinks in src:
// a symlink is recreated with the same target text, even if that target is
// broken or circular. Directory structure and file modes are preserved.
func copyVerbatim(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return copySymlink(src, dst)
	case info.IsDir():
		return copyDir(src, dst, info)
	default:
		return copyFile(src, dst, info)
	}
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	if err := removeExisting(dst); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	if err := os.Symlink(target, dst); err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	return nil
}

func copyDir(src, dst string, info os.FileInfo) error {
	if existing, err := os.Lstat(dst); err == nil && !existing.IsDir() {
		if err := removeExisting(dst); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	for _, entry := range entries {
		if err := copyVerbatim(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, info os.FileInfo) error {
	if err := removeExisting(dst); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}

	//nolint:gosec // src is a previously Lstat'd path under a trusted root
	in, err := os.Open(src)
	if err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	defer in.Close()

	//nolint:gosec // dst is constructed from trusted cache/working-tree roots
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return zerr.Wrap(err, domain.ErrIoError.Error())
	}
	return nil
}

// removeExisting replaces anything currently at dst so copyVerbatim can
// overwrite a symlink with a regular file or vice versa, per spec §4.3.
func removeExisting(dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			return zerr.Wrap(err, domain.ErrIoError.Error())
		}
	}
	return nil
}
