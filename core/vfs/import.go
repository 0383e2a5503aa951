package vfs

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// ImportFS copies every file and directory of fsys under dst. Existing files
// are overwritten, existing directories are kept.
func (v *VFS) ImportFS(fsys fs.FS, dst string) error {
	dst = Clean(dst)
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		target := dst
		if p != "." {
			target = Clean(dst + "/" + p)
		}

		if d.IsDir() {
			return v.MkdirP(target)
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if err := v.Write(target, string(content)); err != nil {
			return err
		}
		if info, err := d.Info(); err == nil && info.Mode().Perm() != 0 && info.Mode().Perm() != DefaultFileMode {
			return v.Chmod(target, info.Mode().Perm())
		}
		return nil
	})
}

// ImportTar applies a tar stream to the filesystem, honoring OCI whiteout
// files so image layers can be applied in order.
func (v *VFS) ImportTar(r io.Reader) (int, error) {
	tr := tar.NewReader(r)
	count := 0

	for {
		hdr, err := tr.Next()
		switch {
		case errors.Is(err, io.EOF):
			return count, nil
		case err != nil:
			return count, fmt.Errorf("reading tar: %w", err)
		}

		name := Clean(hdr.Name)
		base := Base(name)

		if strings.HasPrefix(base, ".wh.") {
			if base == ".wh..wh..opq" {
				for _, child := range v.mustLs(Dir(name)) {
					_ = v.Rm(Join(Dir(name), child), true)
				}
			} else {
				_ = v.Rm(Join(Dir(name), strings.TrimPrefix(base, ".wh.")), true)
			}
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := v.MkdirP(name); err != nil {
				return count, err
			}
		case tar.TypeReg:
			content, err := io.ReadAll(tr)
			if err != nil {
				return count, fmt.Errorf("reading %q: %w", hdr.Name, err)
			}
			if err := v.Write(name, string(content)); err != nil {
				return count, err
			}
		case tar.TypeSymlink, tar.TypeLink:
			target := hdr.Linkname
			targetPath := v.Resolve(target, Dir(name))
			if !v.Exists(targetPath) {
				// Dangling links become empty files that remember the target.
				if err := v.Write(name, ""); err != nil {
					return count, err
				}
				_ = v.update("symlink", name, func(n *Node) { n.Symlink = target })
				break
			}
			if err := v.Symlink(target, targetPath, name); err != nil {
				return count, err
			}
		default:
			continue
		}

		_ = v.update("import", name, func(n *Node) {
			n.Mode = hdr.FileInfo().Mode().Perm()
			n.Mtime = hdr.ModTime
			if hdr.Uname != "" {
				n.Owner = hdr.Uname
			}
			if hdr.Gname != "" {
				n.Group = hdr.Gname
			}
		})
		count++
	}
}

func (v *VFS) mustLs(dir string) []string {
	names, _ := v.Ls(dir)
	return names
}
