package objectstore

import (
	"errors"
	"fmt"
	"io"
)

// ObjectStore is the subset of S3 that volume and snapshot storage need.
type ObjectStore interface {
	PutObject(bucket, key string, data io.ReadSeeker) error
	GetObject(bucket, key string) (io.ReadCloser, error)
	ListObjects(bucket, prefix string) ([]string, error)
	DeleteObject(bucket, key string) error
}

type ObjectNotFoundErr struct {
	Bucket string
	Key    string
}

func (err *ObjectNotFoundErr) Error() string {
	return fmt.Sprintf(
		"object not found (bucket=%s) (key=%s)",
		err.Bucket,
		err.Key,
	)
}

// IsNotFound reports whether `err` wraps an `*ObjectNotFoundErr`.
func IsNotFound(err error) bool {
	var notFound *ObjectNotFoundErr
	return errors.As(err, &notFound)
}

// GetBytes reads the whole object at `key`.
func GetBytes(store ObjectStore, bucket, key string) ([]byte, error) {
	body, err := store.GetObject(bucket, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf(
			"reading object `%s` from bucket `%s`: %w",
			key,
			bucket,
			err,
		)
	}
	return data, nil
}
