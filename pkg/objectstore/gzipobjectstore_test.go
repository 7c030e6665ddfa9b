package objectstore_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/weberc2/sfs/pkg/objectstore"
	"github.com/weberc2/sfs/pkg/testsupport"
)

func TestGzipObjectStore(t *testing.T) {
	fake := testsupport.ObjectStoreFake{}
	objectStore := objectstore.GzipObjectStore{ObjectStore: fake}

	// a mostly-zero block should shrink considerably
	block := make([]byte, 4096)
	copy(block, "hello")
	if err := objectStore.PutObject(
		"my-bucket",
		"volumes/blocks/7",
		bytes.NewReader(block),
	); err != nil {
		t.Fatalf("PutObject(): unexpected err: %v", err)
	}

	raw := fake[[2]string{"my-bucket", "volumes/blocks/7"}]
	if len(raw) >= len(block) {
		t.Fatalf(
			"stored object: wanted fewer than `%d` bytes; found `%d`",
			len(block),
			len(raw),
		)
	}

	body, err := objectStore.GetObject("my-bucket", "volumes/blocks/7")
	if err != nil {
		t.Fatalf("GetObject(): unexpected err: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading body: unexpected err: %v", err)
	}
	if !bytes.Equal(data, block) {
		t.Fatalf("GetObject(): wanted `%q...`; found `%q...`", block[:8], data[:8])
	}
}

func TestGzipObjectStore_NotFound(t *testing.T) {
	objectStore := objectstore.GzipObjectStore{
		ObjectStore: testsupport.ObjectStoreFake{},
	}
	_, err := objectStore.GetObject("my-bucket", "missing")
	if !objectstore.IsNotFound(err) {
		t.Fatalf(
			"GetObject(): wanted `*ObjectNotFoundErr`; found `%T`: %v",
			err,
			err,
		)
	}
}
