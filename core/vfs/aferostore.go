package vfs

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/spf13/afero"
)

const recordExt = ".json"

// AferoStore keeps one JSON file per record in the root of an afero.Fs.
//
// Hosts hand it an afero.BasePathFs scoped to a user's data directory.
type AferoStore struct {
	fs afero.Fs
}

var _ Store = (*AferoStore)(nil)

// NewAferoStore creates a store backed by the given filesystem.
func NewAferoStore(fs afero.Fs) *AferoStore {
	return &AferoStore{fs: fs}
}

func recordName(key string) string {
	return "/" + url.PathEscape(key) + recordExt
}

func recordKey(name string) (string, bool) {
	if !strings.HasSuffix(name, recordExt) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, recordExt))
	if err != nil {
		return "", false
	}
	return key, true
}

// Put implements Store.Put, the record is replaced atomically.
func (a *AferoStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := recordName(key)
	tmp := name + ".tmp"
	if err := afero.WriteFile(a.fs, tmp, value, 0600); err != nil {
		return err
	}
	return a.fs.Rename(tmp, name)
}

// Delete implements Store.Delete.
func (a *AferoStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := a.fs.Remove(recordName(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// DeletePrefix implements Store.DeletePrefix.
func (a *AferoStore) DeletePrefix(ctx context.Context, prefix string) error {
	entries, err := afero.ReadDir(a.fs, "/")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		key, ok := recordKey(entry.Name())
		if !ok || !MatchesPrefix(key, prefix) {
			continue
		}
		if err := a.fs.Remove(path.Join("/", entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// LoadAll implements Store.LoadAll.
func (a *AferoStore) LoadAll(ctx context.Context) (map[string][]byte, error) {
	entries, err := afero.ReadDir(a.fs, "/")
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key, ok := recordKey(entry.Name())
		if !ok || entry.IsDir() {
			continue
		}
		value, err := afero.ReadFile(a.fs, path.Join("/", entry.Name()))
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}
