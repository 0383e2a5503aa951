package vfs

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2021, 7, 4, 12, 0, 0, 0, time.UTC)

func newTestVFS(t *testing.T) *VFS {
	t.Helper()
	v := New()
	v.Now = func() time.Time { return testTime }
	return v
}

func TestVFS_WriteRead(t *testing.T) {
	v := newTestVFS(t)

	require.NoError(t, v.Write("/a/b/c.txt", "hello"))
	got, err := v.Read("/a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	assert.True(t, v.IsDir("/a"))
	assert.True(t, v.IsDir("/a/b"))
	assert.True(t, v.IsFile("/a/b/c.txt"))

	stat, err := v.Stat("/a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, 5, stat.Size)
	assert.Equal(t, testTime, stat.Mtime)

	require.NoError(t, v.Append("/a/b/c.txt", " world"))
	got, _ = v.Read("/a/b/c.txt")
	assert.Equal(t, "hello world", got)
}

func TestVFS_WriteErrors(t *testing.T) {
	v := newTestVFS(t)
	require.NoError(t, v.Write("/file", "x"))
	require.NoError(t, v.MkdirP("/dir"))

	assert.ErrorIs(t, v.Write("/dir", "x"), ErrIsDir)
	assert.ErrorIs(t, v.Write("/file/child", "x"), ErrNotDir)

	_, err := v.Read("/dir")
	assert.ErrorIs(t, err, ErrIsDir)
	_, err = v.Read("/missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "No such file or directory", Describe(err))
}

func TestVFS_RootAlwaysExists(t *testing.T) {
	v := newTestVFS(t)
	assert.True(t, v.Exists("/"))
	assert.True(t, v.IsDir("/"))

	names, err := v.Ls("/")
	require.NoError(t, err)
	assert.Empty(t, names)

	assert.ErrorIs(t, v.Rm("/", true), fs.ErrInvalid)
	assert.ErrorIs(t, v.Rmdir("/"), fs.ErrInvalid)
}

func TestVFS_Ls(t *testing.T) {
	v := newTestVFS(t)
	require.NoError(t, v.Write("/d/b.txt", ""))
	require.NoError(t, v.Write("/d/a.txt", ""))
	require.NoError(t, v.Write("/d/sub/deep.txt", ""))
	require.NoError(t, v.Write("/dd/other", ""))

	names, err := v.Ls("/d")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "sub"}, names)

	names, err = v.Ls("/")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "dd"}, names)

	_, err = v.Ls("/d/a.txt")
	assert.ErrorIs(t, err, ErrNotDir)
	_, err = v.Ls("/nope")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestVFS_Mkdir(t *testing.T) {
	v := newTestVFS(t)

	assert.ErrorIs(t, v.Mkdir("/a/b"), fs.ErrNotExist)
	require.NoError(t, v.Mkdir("/a"))
	assert.ErrorIs(t, v.Mkdir("/a"), fs.ErrExist)
	require.NoError(t, v.Mkdir("/a/b"))

	require.NoError(t, v.MkdirP("/x/y/z"))
	require.NoError(t, v.MkdirP("/x/y/z"))
	assert.True(t, v.IsDir("/x/y"))

	require.NoError(t, v.Write("/f", ""))
	assert.ErrorIs(t, v.Mkdir("/f/g"), ErrNotDir)
	assert.ErrorIs(t, v.MkdirP("/f"), fs.ErrExist)
}

func TestVFS_Rmdir(t *testing.T) {
	v := newTestVFS(t)
	require.NoError(t, v.Write("/d/f", ""))

	assert.ErrorIs(t, v.Rmdir("/d"), ErrNotEmpty)
	assert.ErrorIs(t, v.Rmdir("/d/f"), ErrNotDir)
	require.NoError(t, v.Rm("/d/f", false))
	require.NoError(t, v.Rmdir("/d"))
	assert.False(t, v.Exists("/d"))
}

func TestVFS_Rm(t *testing.T) {
	v := newTestVFS(t)
	require.NoError(t, v.Write("/d/a", ""))
	require.NoError(t, v.Write("/d/sub/b", ""))
	require.NoError(t, v.Write("/dd", ""))

	assert.ErrorIs(t, v.Rm("/d", false), ErrIsDir)
	assert.ErrorIs(t, v.Rm("/missing", false), fs.ErrNotExist)

	require.NoError(t, v.Rm("/d", true))
	assert.Equal(t, []string{"/dd"}, v.Keys())
}

func TestVFS_Copy(t *testing.T) {
	v := newTestVFS(t)
	require.NoError(t, v.Write("/src/a", "A"))
	require.NoError(t, v.Write("/src/sub/b", "B"))

	require.NoError(t, v.Copy("/src", "/dst"))
	assert.Equal(t, []string{
		"/dst", "/dst/a", "/dst/sub", "/dst/sub/b",
		"/src", "/src/a", "/src/sub", "/src/sub/b",
	}, v.Keys())

	got, _ := v.Read("/dst/sub/b")
	assert.Equal(t, "B", got)

	// Copies are independent.
	require.NoError(t, v.Write("/dst/a", "changed"))
	got, _ = v.Read("/src/a")
	assert.Equal(t, "A", got)

	assert.ErrorIs(t, v.Copy("/src", "/src/sub/inner"), ErrInvalid)
	assert.ErrorIs(t, v.Copy("/missing", "/x"), fs.ErrNotExist)
	assert.ErrorIs(t, v.Copy("/src/a", "/dst"), ErrIsDir)
}

func TestVFS_Move(t *testing.T) {
	v := newTestVFS(t)
	require.NoError(t, v.Write("/old/a", "A"))
	require.NoError(t, v.Write("/old/sub/b", "B"))
	require.NoError(t, v.Write("/oldish", "keep"))

	require.NoError(t, v.Move("/old", "/new"))
	assert.Equal(t, []string{"/new", "/new/a", "/new/sub", "/new/sub/b", "/oldish"}, v.Keys())

	assert.ErrorIs(t, v.Move("/new", "/new/sub/x"), ErrInvalid)
	assert.ErrorIs(t, v.Move("/missing", "/x"), fs.ErrNotExist)
	assert.ErrorIs(t, v.Move("/oldish", "/no/parent"), fs.ErrNotExist)

	require.NoError(t, v.Move("/oldish", "/renamed"))
	got, err := v.Read("/renamed")
	require.NoError(t, err)
	assert.Equal(t, "keep", got)
}

func TestVFS_Touch(t *testing.T) {
	v := newTestVFS(t)

	assert.ErrorIs(t, v.Touch("/no/such/file"), fs.ErrNotExist)
	require.NoError(t, v.Touch("/f"))
	assert.True(t, v.IsFile("/f"))

	later := testTime.Add(time.Hour)
	v.Now = func() time.Time { return later }
	require.NoError(t, v.Touch("/f"))
	stat, _ := v.Stat("/f")
	assert.Equal(t, later, stat.Mtime)
}

func TestVFS_ChmodChown(t *testing.T) {
	v := newTestVFS(t)
	require.NoError(t, v.Write("/f", ""))
	require.NoError(t, v.MkdirP("/d"))

	stat, _ := v.Stat("/f")
	assert.Equal(t, DefaultFileMode, stat.Perm())

	require.NoError(t, v.Chmod("/f", 0755))
	require.NoError(t, v.Chmod("/d", 0700))
	require.NoError(t, v.Chown("/f", "root", "wheel"))

	stat, _ = v.Stat("/f")
	assert.Equal(t, fs.FileMode(0755), stat.Perm())
	assert.Equal(t, "root", stat.Owner)
	assert.Equal(t, "wheel", stat.Group)

	stat, _ = v.Stat("/d")
	assert.Equal(t, fs.ModeDir|0700, stat.Perm())

	assert.ErrorIs(t, v.Chmod("/missing", 0644), fs.ErrNotExist)
}

func TestVFS_Symlink(t *testing.T) {
	v := newTestVFS(t)
	require.NoError(t, v.Write("/etc/target", "data"))

	require.NoError(t, v.Symlink("target", "/etc/target", "/etc/link"))
	stat, err := v.Stat("/etc/link")
	require.NoError(t, err)
	assert.Equal(t, "target", stat.Symlink)
	assert.Equal(t, "data", stat.Content)
}

func TestVFS_Walk(t *testing.T) {
	v := newTestVFS(t)
	require.NoError(t, v.Write("/a/b", ""))
	require.NoError(t, v.Write("/a/c/d", ""))
	require.NoError(t, v.Write("/z", ""))

	var visited []string
	require.NoError(t, v.Walk("/a", func(p string, n *Node) error {
		visited = append(visited, p)
		return nil
	}))
	assert.Equal(t, []string{"/a", "/a/b", "/a/c", "/a/c/d"}, visited)
}

func TestVFS_PersistRoundTrip(t *testing.T) {
	store := NewMemStore()
	w := NewWriter(store, WriterConfig{})

	v := NewPersistent(w)
	v.Now = func() time.Time { return testTime }
	require.NoError(t, v.Write("/home/user/notes.txt", "remember"))
	require.NoError(t, v.MkdirP("/tmp/empty"))
	require.NoError(t, v.Write("/gone/file", ""))
	require.NoError(t, v.Rm("/gone", true))
	require.NoError(t, v.Move("/tmp/empty", "/tmp/moved"))
	v.SaveMeta(&Meta{Cwd: "/tmp", History: []string{"ls"}})
	require.NoError(t, w.Close())

	assert.Equal(t, []string{
		"/home", "/home/user", "/home/user/notes.txt", "/tmp", "/tmp/moved", MetaKey,
	}, store.Keys())

	reloaded := New()
	meta, err := reloaded.Load(context.Background(), store)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "/tmp", meta.Cwd)
	assert.Equal(t, []string{"ls"}, meta.History)
	assert.Equal(t, v.Keys(), reloaded.Keys())

	got, err := reloaded.Read("/home/user/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "remember", got)
}

func TestVFS_LoadSkipsMalformed(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "/ok", []byte(`{"type":"file","content":"abc"}`)))
	require.NoError(t, store.Put(ctx, "/bad", []byte(`{not json`)))
	require.NoError(t, store.Put(ctx, "/weird", []byte(`{"type":"socket"}`)))

	v := New()
	meta, err := v.Load(ctx, store)
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Equal(t, []string{"/ok"}, v.Keys())

	stat, _ := v.Stat("/ok")
	assert.Equal(t, 3, stat.Size)
}

func TestVFS_Wipe(t *testing.T) {
	store := NewMemStore()
	w := NewWriter(store, WriterConfig{})
	v := NewPersistent(w)

	require.NoError(t, v.Write("/a/b", "x"))
	v.SaveMeta(&Meta{Cwd: "/a"})
	v.Wipe()
	require.NoError(t, w.Close())

	assert.Zero(t, v.Len())
	assert.Empty(t, store.Keys())
}

func TestVFS_ImportFS(t *testing.T) {
	v := newTestVFS(t)
	skel := fstest.MapFS{
		"etc/hostname":      {Data: []byte("box\n")},
		"usr/bin/tool":      {Data: []byte("#!/bin/sh\n"), Mode: 0755},
		"home/user/.bashrc": {Data: []byte("")},
	}

	require.NoError(t, v.ImportFS(skel, "/"))
	got, err := v.Read("/etc/hostname")
	require.NoError(t, err)
	assert.Equal(t, "box\n", got)

	stat, _ := v.Stat("/usr/bin/tool")
	assert.Equal(t, fs.FileMode(0755), stat.Perm())
	assert.True(t, v.IsDir("/home/user"))
}
