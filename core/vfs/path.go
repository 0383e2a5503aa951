package vfs

import (
	"strings"
)

const (
	// Root is the implicit root directory.
	Root = "/"

	// DefaultHome is the home directory "~" resolves to.
	DefaultHome = "/home/user"
)

// Resolve converts p into a normalized absolute path relative to cwd, using
// DefaultHome for "~".
//
// "" and "." resolve to cwd, ".." pops a segment (a no-op at the root) and
// "." segments are dropped. No symlinks are followed.
func Resolve(p, cwd string) string {
	return resolve(DefaultHome, p, cwd)
}

func resolve(home, p, cwd string) string {
	switch {
	case p == "" || p == ".":
		return Clean(cwd)
	case p == "~":
		return Clean(home)
	case strings.HasPrefix(p, "~/"):
		p = home + p[1:]
	case !strings.HasPrefix(p, "/"):
		p = cwd + "/" + p
	}

	return Clean(p)
}

// Clean normalizes an absolute path.
func Clean(p string) string {
	var segments []string
	for _, segment := range strings.Split(p, "/") {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, segment)
		}
	}

	return "/" + strings.Join(segments, "/")
}

// Dir returns the parent of a clean absolute path.
func Dir(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx <= 0 {
		return Root
	}
	return p[:idx]
}

// Base returns the last segment of a clean absolute path.
func Base(p string) string {
	if p == Root {
		return Root
	}
	return p[strings.LastIndex(p, "/")+1:]
}

// Join appends name to the clean absolute directory dir.
func Join(dir, name string) string {
	if dir == Root {
		return Root + name
	}
	return dir + "/" + name
}

// childPrefix is the key prefix shared by every descendant of dir.
func childPrefix(dir string) string {
	if dir == Root {
		return Root
	}
	return dir + "/"
}

// IsWithin returns true if p is dir or one of its descendants.
func IsWithin(p, dir string) bool {
	return p == dir || strings.HasPrefix(p, childPrefix(dir))
}
