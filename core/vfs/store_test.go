package vfs

import (
	"context"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesPrefix(t *testing.T) {
	cases := []struct {
		key    string
		prefix string
		want   bool
	}{
		{"/a", "/a", true},
		{"/a/b", "/a", true},
		{"/ab", "/a", false},
		{"/a", "", true},
		{"/a", "/", true},
		{MetaKey, "", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchesPrefix(tc.key, tc.prefix), "MatchesPrefix(%q, %q)", tc.key, tc.prefix)
	}
}

func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "/a", []byte("1")))
	require.NoError(t, store.Put(ctx, "/a/b", []byte("2")))
	require.NoError(t, store.Put(ctx, "/ab", []byte("3")))
	require.NoError(t, store.Put(ctx, MetaKey, []byte("{}")))
	require.NoError(t, store.Put(ctx, "/a", []byte("replaced")))

	require.NoError(t, store.Delete(ctx, "/missing"))
	require.NoError(t, store.DeletePrefix(ctx, "/a"))

	all, err := store.LoadAll(ctx)
	require.NoError(t, err)

	var keys []string
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"/ab", MetaKey}, keys)
	assert.Equal(t, []byte("3"), all["/ab"])

	require.NoError(t, store.DeletePrefix(ctx, ""))
	all, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.Delete(ctx, MetaKey))
	all, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemStore(t *testing.T) {
	storeContract(t, NewMemStore())
}

func TestAferoStore(t *testing.T) {
	storeContract(t, NewAferoStore(afero.NewMemMapFs()))
}

func TestAferoStore_BasePath(t *testing.T) {
	root := afero.NewMemMapFs()
	require.NoError(t, root.MkdirAll("/data/alice", 0700))

	store := NewAferoStore(afero.NewBasePathFs(root, "/data/alice"))
	require.NoError(t, store.Put(context.Background(), "/etc/motd", []byte("hi")))

	exists, err := afero.Exists(root, "/data/alice/%2Fetc%2Fmotd.json")
	require.NoError(t, err)
	assert.True(t, exists)
}
