// Package vfs implements the shell's virtual filesystem: a flat map from
// normalized absolute paths to nodes, mirrored to a persistence Store.
package vfs

import (
	"context"
	"encoding/json"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"
)

// VFS is an in-memory filesystem keyed by clean absolute paths.
//
// There is no tree: children are found by scanning for keys under a
// directory's prefix, so listing costs O(number of nodes). The root "/"
// always exists even when it has no node.
type VFS struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	home  string

	// Now is the clock used for modification times.
	Now func() time.Time

	persist *Writer
}

// New creates an empty filesystem with no persistence.
func New() *VFS {
	return &VFS{
		nodes: make(map[string]*Node),
		home:  DefaultHome,
		Now:   time.Now,
	}
}

// NewPersistent creates an empty filesystem that mirrors every mutation to
// the writer.
func NewPersistent(w *Writer) *VFS {
	v := New()
	v.persist = w
	return v
}

// Persistent returns true if mutations are mirrored to a store.
func (v *VFS) Persistent() bool {
	return v.persist != nil
}

// Writer returns the persistence writer, or nil.
func (v *VFS) Writer() *Writer {
	return v.persist
}

// Home is the directory "~" resolves to.
func (v *VFS) Home() string {
	return v.home
}

// SetHome changes the directory "~" resolves to.
func (v *VFS) SetHome(home string) {
	v.home = Clean(home)
}

// Resolve converts p to a clean absolute path relative to cwd.
func (v *VFS) Resolve(p, cwd string) string {
	return resolve(v.home, p, cwd)
}

func (v *VFS) lookup(p string) (*Node, bool) {
	if n, ok := v.nodes[p]; ok {
		return n, true
	}
	if p == Root {
		return &Node{Type: TypeDir}, true
	}
	return nil, false
}

// Exists returns true if p names a file or directory.
func (v *VFS) Exists(p string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.lookup(Clean(p))
	return ok
}

// IsDir returns true if p is a directory.
func (v *VFS) IsDir(p string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	n, ok := v.lookup(Clean(p))
	return ok && n.IsDir()
}

// IsFile returns true if p is a regular file.
func (v *VFS) IsFile(p string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	n, ok := v.lookup(Clean(p))
	return ok && n.IsFile()
}

// Stat returns a copy of the node at p.
func (v *VFS) Stat(p string) (*Node, error) {
	p = Clean(p)
	v.mu.RLock()
	defer v.mu.RUnlock()
	n, ok := v.lookup(p)
	if !ok {
		return nil, pathError("stat", p, fs.ErrNotExist)
	}
	return n.clone(), nil
}

// Read returns the content of the file at p.
func (v *VFS) Read(p string) (string, error) {
	p = Clean(p)
	v.mu.RLock()
	defer v.mu.RUnlock()
	n, ok := v.lookup(p)
	switch {
	case !ok:
		return "", pathError("open", p, fs.ErrNotExist)
	case n.IsDir():
		return "", pathError("read", p, ErrIsDir)
	}
	return n.Content, nil
}

// Write replaces the content of the file at p, creating it and any missing
// parent directories.
func (v *VFS) Write(p, content string) error {
	return v.writeFile("write", Clean(p), content, false)
}

// Append adds content to the end of the file at p, creating it and any
// missing parent directories.
func (v *VFS) Append(p, content string) error {
	return v.writeFile("append", Clean(p), content, true)
}

func (v *VFS) writeFile(op, p, content string, appending bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if existing, ok := v.lookup(p); ok && existing.IsDir() {
		return pathError(op, p, ErrIsDir)
	}
	if err := v.mkdirAll(op, Dir(p)); err != nil {
		return err
	}

	now := v.Now()
	n, ok := v.nodes[p]
	if !ok {
		n = newFile("", now)
		v.nodes[p] = n
	}
	if appending {
		n.Content += content
	} else {
		n.Content = content
	}
	n.Size = len(n.Content)
	n.Mtime = now
	v.put(p, n)
	return nil
}

// mkdirAll creates p and its ancestors, the caller must hold the write lock.
func (v *VFS) mkdirAll(op, p string) error {
	if p == Root {
		return nil
	}

	current := ""
	for _, segment := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		current += "/" + segment
		n, ok := v.nodes[current]
		switch {
		case !ok:
			n = newDir(v.Now())
			v.nodes[current] = n
			v.put(current, n)
		case !n.IsDir():
			return pathError(op, current, ErrNotDir)
		}
	}
	return nil
}

// Ls lists the names of the direct children of dir, sorted.
func (v *VFS) Ls(dir string) ([]string, error) {
	dir = Clean(dir)
	v.mu.RLock()
	defer v.mu.RUnlock()

	n, ok := v.lookup(dir)
	switch {
	case !ok:
		return nil, pathError("readdir", dir, fs.ErrNotExist)
	case !n.IsDir():
		return nil, pathError("readdir", dir, ErrNotDir)
	}

	return v.children(dir), nil
}

func (v *VFS) children(dir string) []string {
	prefix := childPrefix(dir)
	seen := make(map[string]bool)
	var out []string
	for key := range v.nodes {
		if key == dir || !strings.HasPrefix(key, prefix) {
			continue
		}
		name := strings.SplitN(key[len(prefix):], "/", 2)[0]
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Mkdir creates a single directory, its parent must already exist.
func (v *VFS) Mkdir(p string) error {
	p = Clean(p)
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.lookup(p); ok {
		return pathError("mkdir", p, fs.ErrExist)
	}
	parent, ok := v.lookup(Dir(p))
	switch {
	case !ok:
		return pathError("mkdir", p, fs.ErrNotExist)
	case !parent.IsDir():
		return pathError("mkdir", p, ErrNotDir)
	}

	n := newDir(v.Now())
	v.nodes[p] = n
	v.put(p, n)
	return nil
}

// MkdirP creates p and any missing ancestors. Existing directories are not
// an error.
func (v *VFS) MkdirP(p string) error {
	p = Clean(p)
	v.mu.Lock()
	defer v.mu.Unlock()

	if n, ok := v.lookup(p); ok && !n.IsDir() {
		return pathError("mkdir", p, fs.ErrExist)
	}
	return v.mkdirAll("mkdir", p)
}

// Rmdir removes an empty directory.
func (v *VFS) Rmdir(p string) error {
	p = Clean(p)
	v.mu.Lock()
	defer v.mu.Unlock()

	n, ok := v.lookup(p)
	switch {
	case p == Root:
		return pathError("rmdir", p, ErrInvalid)
	case !ok:
		return pathError("rmdir", p, fs.ErrNotExist)
	case !n.IsDir():
		return pathError("rmdir", p, ErrNotDir)
	case len(v.children(p)) > 0:
		return pathError("rmdir", p, ErrNotEmpty)
	}

	delete(v.nodes, p)
	v.delete(p)
	return nil
}

// Rm removes the file at p. Directories are only removed, together with
// everything under them, when recursive is set.
func (v *VFS) Rm(p string, recursive bool) error {
	p = Clean(p)
	v.mu.Lock()
	defer v.mu.Unlock()

	n, ok := v.lookup(p)
	switch {
	case p == Root:
		return pathError("remove", p, ErrInvalid)
	case !ok:
		return pathError("remove", p, fs.ErrNotExist)
	case n.IsDir() && !recursive:
		return pathError("remove", p, ErrIsDir)
	}

	for key := range v.nodes {
		if IsWithin(key, p) {
			delete(v.nodes, key)
		}
	}
	v.deletePrefix(p)
	return nil
}

// Copy copies the node at src to dst. Directories are copied with every
// descendant rewritten under the dst prefix.
func (v *VFS) Copy(src, dst string) error {
	src, dst = Clean(src), Clean(dst)
	v.mu.Lock()
	defer v.mu.Unlock()

	srcNode, ok := v.lookup(src)
	switch {
	case !ok:
		return pathError("copy", src, fs.ErrNotExist)
	case srcNode.IsDir() && IsWithin(dst, src):
		return pathError("copy", dst, ErrInvalid)
	}
	if dstNode, ok := v.lookup(dst); ok && dstNode.IsDir() != srcNode.IsDir() {
		if dstNode.IsDir() {
			return pathError("copy", dst, ErrIsDir)
		}
		return pathError("copy", dst, ErrNotDir)
	}
	if err := v.mkdirAll("copy", Dir(dst)); err != nil {
		return err
	}

	now := v.Now()
	for _, key := range v.subtree(src) {
		target := dst + strings.TrimPrefix(key, src)
		c := v.nodes[key].clone()
		c.Mtime = now
		v.nodes[target] = c
		v.put(target, c)
	}
	return nil
}

// Move renames src to dst, rewriting every key under src.
func (v *VFS) Move(src, dst string) error {
	src, dst = Clean(src), Clean(dst)
	v.mu.Lock()
	defer v.mu.Unlock()

	srcNode, ok := v.lookup(src)
	switch {
	case src == Root:
		return pathError("rename", src, ErrInvalid)
	case !ok:
		return pathError("rename", src, fs.ErrNotExist)
	case src == dst:
		return nil
	case srcNode.IsDir() && IsWithin(dst, src):
		return pathError("rename", dst, ErrInvalid)
	}
	if dstNode, ok := v.lookup(dst); ok {
		switch {
		case dstNode.IsDir() && !srcNode.IsDir():
			return pathError("rename", dst, ErrIsDir)
		case !dstNode.IsDir() && srcNode.IsDir():
			return pathError("rename", dst, ErrNotDir)
		case dstNode.IsDir() && len(v.children(dst)) > 0:
			return pathError("rename", dst, ErrNotEmpty)
		}
	}
	parent, ok := v.lookup(Dir(dst))
	switch {
	case !ok:
		return pathError("rename", dst, fs.ErrNotExist)
	case !parent.IsDir():
		return pathError("rename", dst, ErrNotDir)
	}

	keys := v.subtree(src)
	moved := make(map[string]*Node, len(keys))
	for _, key := range keys {
		moved[dst+strings.TrimPrefix(key, src)] = v.nodes[key]
		delete(v.nodes, key)
	}
	v.deletePrefix(src)
	for _, key := range sortedKeys(moved) {
		v.nodes[key] = moved[key]
		v.put(key, moved[key])
	}
	return nil
}

// subtree returns the sorted keys of p and its descendants.
func (v *VFS) subtree(p string) []string {
	var keys []string
	if p == Root {
		keys = append(keys, Root)
	}
	for key := range v.nodes {
		if IsWithin(key, p) && key != Root {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Touch creates an empty file at p or bumps its modification time.
func (v *VFS) Touch(p string) error {
	p = Clean(p)
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.Now()
	if n, ok := v.nodes[p]; ok {
		n.Mtime = now
		v.put(p, n)
		return nil
	}
	if p == Root {
		return nil
	}

	parent, ok := v.lookup(Dir(p))
	switch {
	case !ok:
		return pathError("touch", p, fs.ErrNotExist)
	case !parent.IsDir():
		return pathError("touch", p, ErrNotDir)
	}

	n := newFile("", now)
	v.nodes[p] = n
	v.put(p, n)
	return nil
}

// update applies fn to the stored node at p and persists it.
func (v *VFS) update(op, p string, fn func(n *Node)) error {
	p = Clean(p)
	v.mu.Lock()
	defer v.mu.Unlock()

	n, ok := v.nodes[p]
	if !ok {
		if p != Root {
			return pathError(op, p, fs.ErrNotExist)
		}
		n = newDir(v.Now())
		v.nodes[p] = n
	}
	fn(n)
	v.put(p, n)
	return nil
}

// Chmod sets the permission bits of p.
func (v *VFS) Chmod(p string, mode fs.FileMode) error {
	return v.update("chmod", p, func(n *Node) {
		n.Mode = mode.Perm()
	})
}

// Chown sets the owner and group of p.
func (v *VFS) Chown(p, owner, group string) error {
	return v.update("chown", p, func(n *Node) {
		n.Owner = owner
		n.Group = group
	})
}

// SetMtime sets the modification time of p.
func (v *VFS) SetMtime(p string, t time.Time) error {
	return v.update("chtimes", p, func(n *Node) {
		n.Mtime = t
	})
}

// Symlink simulates a symbolic link at link by copying the file content of
// targetPath and recording the target as written by the user.
func (v *VFS) Symlink(target, targetPath, link string) error {
	content := ""
	if n, err := v.Stat(targetPath); err != nil {
		return err
	} else if n.IsFile() {
		content = n.Content
	}

	if err := v.Write(link, content); err != nil {
		return err
	}
	return v.update("symlink", link, func(n *Node) {
		n.Symlink = target
	})
}

// WalkFunc is called for each node visited by Walk.
type WalkFunc func(p string, n *Node) error

// Walk visits root and every node under it in lexical order. Nodes are
// copies, the filesystem may be modified during the walk.
func (v *VFS) Walk(root string, fn WalkFunc) error {
	root = Clean(root)
	v.mu.RLock()
	rootNode, ok := v.lookup(root)
	if !ok {
		v.mu.RUnlock()
		return pathError("walk", root, fs.ErrNotExist)
	}
	type entry struct {
		path string
		node *Node
	}
	entries := []entry{{root, rootNode.clone()}}
	for _, key := range v.subtree(root) {
		if key == root {
			continue
		}
		entries = append(entries, entry{key, v.nodes[key].clone()})
	}
	v.mu.RUnlock()

	for _, e := range entries {
		if err := fn(e.path, e.node); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns every stored path, sorted.
func (v *VFS) Keys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return sortedKeys(v.nodes)
}

// Len returns the number of stored nodes.
func (v *VFS) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.nodes)
}

// Load hydrates the filesystem from store and returns the saved session
// state, nil if there was none. Malformed records are skipped.
func (v *VFS) Load(ctx context.Context, store Store) (*Meta, error) {
	records, err := store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	var meta *Meta
	for key, value := range records {
		if key == MetaKey {
			var m Meta
			if err := json.Unmarshal(value, &m); err == nil {
				meta = &m
			}
			continue
		}

		var n Node
		if err := json.Unmarshal(value, &n); err != nil {
			continue
		}
		if n.Type != TypeDir && n.Type != TypeFile {
			continue
		}
		if n.IsDir() {
			n.Content = ""
			n.Size = 0
		} else {
			n.Size = len(n.Content)
		}
		v.nodes[Clean(key)] = &n
	}
	return meta, nil
}

// Wipe removes every node and asks the store to drop all records, including
// the session state.
func (v *VFS) Wipe() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nodes = make(map[string]*Node)
	if v.persist != nil {
		v.persist.DeletePrefix("")
		v.persist.Delete(MetaKey)
	}
}

// SaveMeta queues the session state for persistence.
func (v *VFS) SaveMeta(m *Meta) {
	if v.persist == nil || m == nil {
		return
	}
	if value, err := json.Marshal(m); err == nil {
		v.persist.Put(MetaKey, value)
	}
}

func (v *VFS) put(p string, n *Node) {
	if v.persist == nil {
		return
	}
	value, err := json.Marshal(n)
	if err != nil {
		return
	}
	v.persist.Put(p, value)
}

func (v *VFS) delete(p string) {
	if v.persist != nil {
		v.persist.Delete(p)
	}
}

func (v *VFS) deletePrefix(p string) {
	if v.persist != nil {
		v.persist.DeletePrefix(p)
	}
}

func sortedKeys(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
