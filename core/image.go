package core

import (
	"fmt"
	"io"
	"os"

	"github.com/google/go-containerregistry/pkg/name"
	containerregistry "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
	"github.com/josephlewis42/mathshell/core/vfs"
)

// LoadImageLayers reads the layers of an image saved with "docker save".
// If tag is empty the archive must hold exactly one image.
func LoadImageLayers(archivePath, tag string) ([]containerregistry.Layer, error) {
	if tag == "" {
		manifest, err := tarball.LoadManifest(func() (io.ReadCloser, error) {
			return os.Open(archivePath)
		})
		if err != nil {
			return nil, err
		}

		if len(manifest) != 1 || len(manifest[0].RepoTags) == 0 {
			var tags []string
			for _, m := range manifest {
				tags = append(tags, m.RepoTags...)
			}

			return nil, fmt.Errorf("multiple tags found in the input, specify one of: %q", tags)
		}
		tag = manifest[0].RepoTags[0]
	}

	parsed, err := name.NewTag(tag)
	if err != nil {
		return nil, err
	}

	image, err := tarball.ImageFromPath(archivePath, &parsed)
	if err != nil {
		return nil, err
	}

	return image.Layers()
}

// ImportLayers applies image layers to the filesystem in order, later
// layers and their whiteouts win. It returns the number of entries
// imported.
func ImportLayers(fsys *vfs.VFS, layers []containerregistry.Layer) (int, error) {
	total := 0
	for layerIdx, layer := range layers {
		count, err := importLayer(fsys, layer)
		total += count
		if err != nil {
			return total, fmt.Errorf("layer[%d]: %w", layerIdx, err)
		}
	}
	return total, nil
}

func importLayer(fsys *vfs.VFS, layer containerregistry.Layer) (int, error) {
	ul, err := layer.Uncompressed()
	if err != nil {
		return 0, fmt.Errorf("couldn't decompress: %w", err)
	}
	defer ul.Close()

	return fsys.ImportTar(ul)
}
