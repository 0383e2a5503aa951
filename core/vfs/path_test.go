package vfs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		p    string
		cwd  string
		want string
	}{
		{"", "/tmp", "/tmp"},
		{".", "/tmp", "/tmp"},
		{"~", "/tmp", "/home/user"},
		{"~/docs", "/tmp", "/home/user/docs"},
		{"a/b", "/tmp", "/tmp/a/b"},
		{"../../..", "/a/b", "/"},
		{"/a/./b/../c//", "/tmp", "/a/c"},
		{"..", "/", "/"},
		{"./x", "/", "/x"},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q in %q", tc.p, tc.cwd), func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.p, tc.cwd))
		})
	}
}

func TestDirBaseJoin(t *testing.T) {
	assert.Equal(t, "/", Dir("/a"))
	assert.Equal(t, "/a", Dir("/a/b"))
	assert.Equal(t, "/", Dir("/"))
	assert.Equal(t, "b", Base("/a/b"))
	assert.Equal(t, "/", Base("/"))
	assert.Equal(t, "/x", Join("/", "x"))
	assert.Equal(t, "/a/x", Join("/a", "x"))
}

func TestIsWithin(t *testing.T) {
	assert.True(t, IsWithin("/a", "/a"))
	assert.True(t, IsWithin("/a/b", "/a"))
	assert.False(t, IsWithin("/ab", "/a"))
	assert.True(t, IsWithin("/anything", "/"))
}

func ExampleResolve() {
	fmt.Println(Resolve("../etc/./passwd", "/home/user"))
	// Output: /home/etc/passwd
}
