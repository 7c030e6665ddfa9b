package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/weberc2/sfs/pkg/device"
	"github.com/weberc2/sfs/pkg/objectstore"
	"github.com/weberc2/sfs/pkg/pgutil"
	"github.com/weberc2/sfs/pkg/sfs"
	"github.com/weberc2/sfs/pkg/snapshot"
)

// Env holds everything a command needs once the configuration has been
// loaded.
type Env struct {
	Config *Config
	Logger *slog.Logger

	objects objectstore.ObjectStore
	db      *sql.DB
}

func NewEnv(c *Config) (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}
	return &Env{Config: c, Logger: logger}, nil
}

func (env *Env) Options() *sfs.Options {
	return &sfs.Options{Logger: env.Logger}
}

func (env *Env) ObjectStore() (objectstore.ObjectStore, error) {
	if env.objects != nil {
		return env.objects, nil
	}
	if env.Config.Bucket == "" {
		return nil, fmt.Errorf(
			"missing required configuration: bucket / %s_BUCKET",
			envVarPrefix,
		)
	}
	sess, err := session.NewSession()
	if err != nil {
		return nil, fmt.Errorf("creating AWS session: %w", err)
	}
	env.objects = objectstore.NewS3ObjectStore(sess)
	return env.objects, nil
}

func (env *Env) Snapshots() (*snapshot.Store, error) {
	objects, err := env.ObjectStore()
	if err != nil {
		return nil, err
	}
	return snapshot.NewStore(objects, env.Config.Bucket, env.Config.Prefix), nil
}

// Device builds the block device for the configured backend.
func (env *Env) Device() (device.Device, error) {
	switch env.Config.Backend {
	case BackendFile:
		return device.NewFile(env.Config.Volume), nil
	case BackendMemory:
		return device.NewMemory(), nil
	case BackendS3:
		objects, err := env.ObjectStore()
		if err != nil {
			return nil, err
		}
		if env.Config.Gzip {
			objects = &objectstore.GzipObjectStore{ObjectStore: objects}
		}
		return device.NewObjectStoreDevice(
			objects,
			env.Config.Bucket,
			env.Config.Prefix,
			env.Config.Volume,
		), nil
	case BackendPostgres:
		if env.db == nil {
			db, err := pgutil.OpenEnvPing()
			if err != nil {
				return nil, err
			}
			env.db = db
		}
		return device.NewPostgres(env.db, env.Config.Volume), nil
	default:
		return nil, fmt.Errorf("invalid backend `%s`", env.Config.Backend)
	}
}

// Mount mounts the configured volume. Memory volumes never outlive the
// process, so they are always freshly formatted.
func (env *Env) Mount() (*sfs.FileSystem, error) {
	dev, err := env.Device()
	if err != nil {
		return nil, err
	}
	return sfs.MountOrFormat(
		dev,
		env.Config.Geometry(),
		env.Config.Backend == BackendMemory,
		env.Options(),
	)
}

func (env *Env) Close() error {
	if env.db != nil {
		if err := env.db.Close(); err != nil {
			return fmt.Errorf("closing postgres database: %w", err)
		}
	}
	return nil
}
