package device

import (
	"bytes"
	"fmt"
	"path"
	"strconv"

	"github.com/gosimple/slug"
	"github.com/weberc2/sfs/pkg/objectstore"
	. "github.com/weberc2/sfs/pkg/types"
	"gopkg.in/yaml.v2"
)

var _ Device = (*ObjectStoreDevice)(nil)

// ObjectStoreDevice stores one object per block. Blocks that were never
// written have no object and read back as zeros, so a freshly formatted
// volume costs a single object.
type ObjectStoreDevice struct {
	shape
	Store  objectstore.ObjectStore
	Bucket string
	Prefix string
	Volume string
	open   bool
}

func NewObjectStoreDevice(
	store objectstore.ObjectStore,
	bucket string,
	prefix string,
	volume string,
) *ObjectStoreDevice {
	return &ObjectStoreDevice{
		Store:  store,
		Bucket: bucket,
		Prefix: prefix,
		Volume: volume,
	}
}

// VolumeKey is the key prefix under which everything belonging to
// `volume` is stored.
func VolumeKey(prefix, volume string) string {
	return path.Join(prefix, slug.Make(volume))
}

func (d *ObjectStoreDevice) blocksPrefix() string {
	return path.Join(VolumeKey(d.Prefix, d.Volume), "blocks") + "/"
}

func (d *ObjectStoreDevice) blockKey(b Block) string {
	return d.blocksPrefix() + strconv.FormatUint(uint64(b), 10)
}

func (d *ObjectStoreDevice) geometryKey() string {
	return path.Join(VolumeKey(d.Prefix, d.Volume), "geometry.yaml")
}

type storedShape struct {
	BlockSize Byte  `yaml:"blockSize"`
	Blocks    Block `yaml:"blocks"`
}

func (d *ObjectStoreDevice) Format(blockSize Byte, blocks Block) error {
	keys, err := d.Store.ListObjects(d.Bucket, d.blocksPrefix())
	if err != nil {
		return fmt.Errorf("formatting volume `%s`: %w", d.Volume, err)
	}
	for _, key := range keys {
		if err := d.Store.DeleteObject(d.Bucket, key); err != nil {
			return fmt.Errorf("formatting volume `%s`: %w", d.Volume, err)
		}
	}

	data, err := yaml.Marshal(&storedShape{BlockSize: blockSize, Blocks: blocks})
	if err != nil {
		return fmt.Errorf("marshaling volume geometry: %w", err)
	}
	if err := d.Store.PutObject(
		d.Bucket,
		d.geometryKey(),
		bytes.NewReader(data),
	); err != nil {
		return fmt.Errorf("formatting volume `%s`: %w", d.Volume, err)
	}
	d.shape = shape{blockSize: blockSize, blocks: blocks}
	d.open = true
	return nil
}

func (d *ObjectStoreDevice) Open(blockSize Byte, blocks Block) error {
	data, err := objectstore.GetBytes(d.Store, d.Bucket, d.geometryKey())
	if err != nil {
		if objectstore.IsNotFound(err) {
			return fmt.Errorf(
				"opening volume `%s`: %v: %w",
				d.Volume,
				err,
				ErrInvalidVolume,
			)
		}
		return fmt.Errorf("opening volume `%s`: %w", d.Volume, err)
	}
	var stored storedShape
	if err := yaml.UnmarshalStrict(data, &stored); err != nil {
		return fmt.Errorf(
			"unmarshaling geometry for volume `%s`: %v: %w",
			d.Volume,
			err,
			ErrInvalidVolume,
		)
	}
	d.shape = shape{blockSize: stored.BlockSize, blocks: stored.Blocks}
	if err := d.matches(blockSize, blocks); err != nil {
		d.shape = shape{}
		return err
	}
	d.open = true
	return nil
}

func (d *ObjectStoreDevice) ReadBlocks(start, count Block, p []byte) error {
	if !d.open {
		return ErrNotOpen
	}
	if err := d.check(start, count, p); err != nil {
		return err
	}
	for i := Block(0); i < count; i++ {
		block := p[Byte(i)*d.blockSize : Byte(i+1)*d.blockSize]
		data, err := objectstore.GetBytes(d.Store, d.Bucket, d.blockKey(start+i))
		if err != nil {
			if objectstore.IsNotFound(err) {
				zero(block)
				continue
			}
			return fmt.Errorf("reading block `%d`: %w", start+i, err)
		}
		if Byte(len(data)) != d.blockSize {
			return fmt.Errorf(
				"block `%d` object is `%d` bytes; wanted `%d`: %w",
				start+i,
				len(data),
				d.blockSize,
				ErrInvalidVolume,
			)
		}
		copy(block, data)
	}
	return nil
}

func (d *ObjectStoreDevice) WriteBlocks(start, count Block, p []byte) error {
	if !d.open {
		return ErrNotOpen
	}
	if err := d.check(start, count, p); err != nil {
		return err
	}
	for i := Block(0); i < count; i++ {
		block := p[Byte(i)*d.blockSize : Byte(i+1)*d.blockSize]
		if err := d.Store.PutObject(
			d.Bucket,
			d.blockKey(start+i),
			bytes.NewReader(block),
		); err != nil {
			return fmt.Errorf("writing block `%d`: %w", start+i, err)
		}
	}
	return nil
}

func (d *ObjectStoreDevice) Close() error {
	d.open = false
	return nil
}
