package vfs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	mu  sync.Mutex
	ops []string
	err error
}

func (r *recordingStore) record(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	return r.err
}

func (r *recordingStore) Put(_ context.Context, key string, value []byte) error {
	return r.record(fmt.Sprintf("put %s=%s", key, value))
}

func (r *recordingStore) Delete(_ context.Context, key string) error {
	return r.record("delete " + key)
}

func (r *recordingStore) DeletePrefix(_ context.Context, prefix string) error {
	return r.record("delete_prefix " + prefix)
}

func (r *recordingStore) LoadAll(context.Context) (map[string][]byte, error) {
	return nil, nil
}

func TestWriter_Ordering(t *testing.T) {
	store := &recordingStore{}
	w := NewWriter(store, WriterConfig{})

	for i := 0; i < 50; i++ {
		w.Put("/k", []byte(fmt.Sprint(i)))
	}
	w.DeletePrefix("/k")
	w.Delete("/other")
	w.Flush()

	require.Len(t, store.ops, 52)
	for i := 0; i < 50; i++ {
		assert.Equal(t, fmt.Sprintf("put /k=%d", i), store.ops[i])
	}
	assert.Equal(t, "delete_prefix /k", store.ops[50])
	assert.Equal(t, "delete /other", store.ops[51])
	require.NoError(t, w.Close())
}

func TestWriter_ErrorsDoNotStopQueue(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}

	var failures []string
	w := NewWriter(store, WriterConfig{
		OnError: func(op, key string, err error) {
			failures = append(failures, op+" "+key+": "+err.Error())
		},
	})
	w.Put("/a", []byte("x"))
	w.Delete("/b")
	require.NoError(t, w.Close())

	assert.Equal(t, []string{"put /a: disk full", "delete /b: disk full"}, failures)
}

func TestWriter_DropsAfterClose(t *testing.T) {
	store := &recordingStore{}
	w := NewWriter(store, WriterConfig{WritesPerSecond: 1000})
	w.Put("/a", []byte("1"))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	w.Put("/b", []byte("2"))
	w.Flush()
	assert.Equal(t, []string{"put /a=1"}, store.ops)
}
