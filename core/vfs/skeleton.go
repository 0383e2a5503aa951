package vfs

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed skeleton
var skeletonData embed.FS

// SeedOptions describes the account a fresh filesystem is prepared for.
type SeedOptions struct {
	Hostname string
	User     string
	Home     string
	// Motd replaces the default /etc/motd when set.
	Motd string
}

func (o *SeedOptions) withDefaults() {
	if o.Hostname == "" {
		o.Hostname = "localhost"
	}
	if o.User == "" {
		o.User = "user"
	}
	if o.Home == "" {
		o.Home = DefaultHome
	}
}

// Seed populates the filesystem with the default skeleton: the files under
// /etc, a home directory with a README and an empty /tmp.
func (v *VFS) Seed(opts SeedOptions) error {
	opts.withDefaults()

	root, err := fs.Sub(skeletonData, "skeleton/root")
	if err != nil {
		return err
	}
	if err := v.ImportFS(root, Root); err != nil {
		return fmt.Errorf("seeding /: %w", err)
	}

	home, err := fs.Sub(skeletonData, "skeleton/home")
	if err != nil {
		return err
	}
	if err := v.ImportFS(home, opts.Home); err != nil {
		return fmt.Errorf("seeding %s: %w", opts.Home, err)
	}

	for _, dir := range []string{"/tmp", "/bin", "/usr/bin", "/var/log"} {
		if err := v.MkdirP(dir); err != nil {
			return err
		}
	}
	if err := v.Chmod("/tmp", 0777); err != nil {
		return err
	}
	if err := v.Write("/etc/hostname", opts.Hostname+"\n"); err != nil {
		return err
	}
	if opts.Motd != "" {
		if err := v.Write("/etc/motd", opts.Motd); err != nil {
			return err
		}
	}

	passwd := fmt.Sprintf("%s:x:1000:100:%s:%s:/bin/sh\n", opts.User, opts.User, opts.Home)
	if err := v.Append("/etc/passwd", passwd); err != nil {
		return err
	}
	return v.Chown(opts.Home, opts.User, "users")
}
