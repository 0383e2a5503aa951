package vos

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// CopyEnv copies all the environment variables from src to dst.
func CopyEnv(dst *MapEnv, src []string) {
	for _, e := range src {
		key, value := splitEnv(e)
		dst.Setenv(key, value)
	}
}

func splitEnv(entry string) (key, value string) {
	split := strings.SplitN(entry, "=", 2)
	key = split[0]
	if len(split) > 1 {
		value = split[1]
	}
	return
}

// NewMapEnv creates a new environment backed by a map.
func NewMapEnv() *MapEnv {
	return &MapEnv{}
}

// NewMapEnvFromEnvList creates an environment from "key=value" pairs, a
// missing "=" sets the key to the empty string.
func NewMapEnvFromEnvList(environ []string) *MapEnv {
	out := &MapEnv{}
	CopyEnv(out, environ)
	return out
}

// NewMapEnvFromMap creates an environment with a copy of m.
func NewMapEnvFromMap(m map[string]string) *MapEnv {
	out := &MapEnv{env: make(map[string]string, len(m))}
	for k, v := range m {
		out.env[k] = v
	}
	return out
}

// MapEnv is an in-memory set of environment variables safe for concurrent
// use.
type MapEnv struct {
	rw  sync.RWMutex
	env map[string]string
}

// Unsetenv unsets a single environment variable.
func (m *MapEnv) Unsetenv(key string) error {
	m.rw.Lock()
	defer m.rw.Unlock()
	if m.env != nil {
		delete(m.env, key)
	}
	return nil
}

// Setenv sets the value of the environment variable named by the key.
func (m *MapEnv) Setenv(key, value string) error {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	m.env[key] = value
	return nil
}

// LookupEnv retrieves the value of the environment variable named by the
// key and whether it was present.
func (m *MapEnv) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv retrieves the value of the environment variable named by the key,
// unset variables are empty.
func (m *MapEnv) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// ExpandEnv replaces ${var} or $var in the string with values from the
// environment.
func (m *MapEnv) ExpandEnv(s string) string {
	return os.Expand(s, m.Getenv)
}

// Environ returns the environment as sorted "key=value" strings.
func (m *MapEnv) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	env := make([]string, 0, len(m.env))
	for k, v := range m.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)
	return env
}

// Map returns a copy of the environment.
func (m *MapEnv) Map() map[string]string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	out := make(map[string]string, len(m.env))
	for k, v := range m.env {
		out[k] = v
	}
	return out
}

// Keys returns the sorted variable names.
func (m *MapEnv) Keys() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	keys := make([]string, 0, len(m.env))
	for k := range m.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clearenv deletes all environment variables.
func (m *MapEnv) Clearenv() {
	m.rw.Lock()
	defer m.rw.Unlock()
	m.env = make(map[string]string)
}
