package core

import (
	"archive/tar"
	"bytes"
	"io"
	"io/ioutil"
	"testing"

	containerregistry "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	name    string
	content string
	dir     bool
}

func testLayer(t *testing.T, entries ...tarEntry) containerregistry.Layer {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0644, Typeflag: tar.TypeReg, Size: int64(len(e.content))}
		if e.dir {
			hdr = &tar.Header{Name: e.name, Mode: 0755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !e.dir {
			_, err := io.WriteString(tw, e.content)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())

	data := buf.Bytes()
	layer, err := tarball.LayerFromOpener(func() (io.ReadCloser, error) {
		return ioutil.NopCloser(bytes.NewReader(data)), nil
	})
	require.NoError(t, err)
	return layer
}

func TestImportLayers(t *testing.T) {
	fsys := vfs.New()

	base := testLayer(t,
		tarEntry{name: "etc/", dir: true},
		tarEntry{name: "etc/issue", content: "Base OS\n"},
		tarEntry{name: "etc/removed", content: "gone soon"},
		tarEntry{name: "opt/tool/", dir: true},
		tarEntry{name: "opt/tool/a", content: "a"},
	)
	top := testLayer(t,
		tarEntry{name: "etc/issue", content: "Derived OS\n"},
		tarEntry{name: "etc/.wh.removed"},
		tarEntry{name: "opt/tool/.wh..wh..opq"},
	)

	count, err := ImportLayers(fsys, []containerregistry.Layer{base, top})
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	issue, err := fsys.Read("/etc/issue")
	require.NoError(t, err)
	assert.Equal(t, "Derived OS\n", issue)

	assert.False(t, fsys.Exists("/etc/removed"))
	assert.True(t, fsys.IsDir("/opt/tool"))
	assert.False(t, fsys.Exists("/opt/tool/a"))
}
