package snapshot

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/weberc2/sfs/pkg/device"
	"github.com/weberc2/sfs/pkg/layout"
	"github.com/weberc2/sfs/pkg/objectstore"
	"github.com/weberc2/sfs/pkg/sfs"
)

const suffix = ".img.gz"

// Store keeps gzip-compressed volume images in an object store under
// `<prefix>/<slug(volume)>/snapshots/<uuid>.img.gz`.
type Store struct {
	objects objectstore.ObjectStore
	Bucket  string
	Prefix  string
}

// NewStore wraps `objects` so that images are compressed at rest.
func NewStore(objects objectstore.ObjectStore, bucket, prefix string) *Store {
	return &Store{
		objects: &objectstore.GzipObjectStore{ObjectStore: objects},
		Bucket:  bucket,
		Prefix:  prefix,
	}
}

func (s *Store) prefix(volume string) string {
	return path.Join(device.VolumeKey(s.Prefix, volume), "snapshots") + "/"
}

// Put uploads an image of the mounted volume and returns its key.
func (s *Store) Put(volume string, fs *sfs.FileSystem) (string, error) {
	var image bytes.Buffer
	if _, err := fs.WriteImage(&image); err != nil {
		return "", fmt.Errorf("snapshotting volume `%s`: %w", volume, err)
	}
	key := s.prefix(volume) + uuid.NewString() + suffix
	if err := s.objects.PutObject(
		s.Bucket,
		key,
		bytes.NewReader(image.Bytes()),
	); err != nil {
		return "", fmt.Errorf("snapshotting volume `%s`: %w", volume, err)
	}
	return key, nil
}

// List returns the keys of every snapshot of `volume`, sorted.
func (s *Store) List(volume string) ([]string, error) {
	keys, err := s.objects.ListObjects(s.Bucket, s.prefix(volume))
	if err != nil {
		return nil, fmt.Errorf("listing snapshots of `%s`: %w", volume, err)
	}
	out := keys[:0]
	for _, key := range keys {
		if strings.HasSuffix(key, suffix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Restore downloads the snapshot at `key` onto `dev` and mounts it.
func (s *Store) Restore(
	key string,
	dev device.Device,
	geometry layout.Geometry,
	opts *sfs.Options,
) (*sfs.FileSystem, error) {
	body, err := s.objects.GetObject(s.Bucket, key)
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot `%s`: %w", key, err)
	}
	defer body.Close()
	fs, err := sfs.RestoreImage(dev, geometry, body, opts)
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot `%s`: %w", key, err)
	}
	return fs, nil
}

func (s *Store) Delete(key string) error {
	if err := s.objects.DeleteObject(s.Bucket, key); err != nil {
		return fmt.Errorf("deleting snapshot `%s`: %w", key, err)
	}
	return nil
}
