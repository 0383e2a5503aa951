package vfs

import (
	"io/fs"
	"time"
)

// NodeType is the kind of a filesystem node.
type NodeType string

const (
	TypeFile NodeType = "file"
	TypeDir  NodeType = "dir"
)

const (
	DefaultFileMode fs.FileMode = 0644
	DefaultDirMode  fs.FileMode = fs.ModeDir | 0755
)

// Node is a single entry in the filesystem.
type Node struct {
	Type    NodeType    `json:"type"`
	Content string      `json:"content,omitempty"`
	Mtime   time.Time   `json:"mtime"`
	Size    int         `json:"size"`
	Mode    fs.FileMode `json:"mode,omitempty"`
	Owner   string      `json:"owner,omitempty"`
	Group   string      `json:"group,omitempty"`

	// Symlink holds the target of a simulated symbolic link. The node itself
	// is a plain copy of the target taken when the link was made.
	Symlink string `json:"symlink,omitempty"`
}

// IsDir returns true if the node is a directory.
func (n *Node) IsDir() bool {
	return n.Type == TypeDir
}

// IsFile returns true if the node is a regular file.
func (n *Node) IsFile() bool {
	return n.Type == TypeFile
}

// Perm returns the node's mode, falling back to defaults for nodes that were
// never chmod-ed.
func (n *Node) Perm() fs.FileMode {
	switch {
	case n.Mode != 0 && n.IsDir():
		return n.Mode | fs.ModeDir
	case n.Mode != 0:
		return n.Mode
	case n.IsDir():
		return DefaultDirMode
	default:
		return DefaultFileMode
	}
}

func (n *Node) clone() *Node {
	out := *n
	return &out
}

func newDir(now time.Time) *Node {
	return &Node{Type: TypeDir, Mtime: now}
}

func newFile(content string, now time.Time) *Node {
	return &Node{Type: TypeFile, Content: content, Size: len(content), Mtime: now}
}
