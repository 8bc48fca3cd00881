package images

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
)

// File is a decoded frame read from disk.
type File struct {
	Path  string
	Image image.Image
}

// riffHeader prefixes every WebP container.
var riffHeader = []byte("RIFF")

// Decode decodes JPEG, PNG, or WebP image bytes.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	if bytes.HasPrefix(data, riffHeader) {
		img, err := webp.Decode(bytes.NewReader(data))
		return img, errors.Wrap(err, "decoding webp image")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, errors.Wrap(err, "decoding image")
}

// LoadFile reads and decodes a single image file.
func LoadFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading image file %s", path)
	}
	return Decode(data)
}

// LoadDirectory reads every supported image file in dir, sorted by file
// name. Unsupported extensions and subdirectories are skipped.
func LoadDirectory(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading image directory %s", dir)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".jpg", ".jpeg", ".png", ".webp":
		default:
			continue
		}
		path := filepath.Join(dir, entry.Name())
		img, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: path, Image: img})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}
