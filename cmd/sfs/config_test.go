package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/weberc2/sfs/pkg/layout"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sfs.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig(): unexpected err: %v", err)
	}
	wanted := DefaultConfig()
	if *c != wanted {
		t.Fatalf("LoadConfig(): wanted `%+v`; found `%+v`", wanted, *c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate(): unexpected err: %v", err)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
backend: s3
volume: photos
bucket: my-bucket
blockSize: 512
gzip: true
`)
	t.Setenv("SFS_VOLUME", "music")
	t.Setenv("SFS_INODES", "32")

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(): unexpected err: %v", err)
	}
	wanted := DefaultConfig()
	wanted.Backend = BackendS3
	wanted.Volume = "music"
	wanted.Bucket = "my-bucket"
	wanted.BlockSize = 512
	wanted.Inodes = 32
	wanted.Gzip = true
	if *c != wanted {
		t.Fatalf("LoadConfig(): wanted `%+v`; found `%+v`", wanted, *c)
	}
	if found := c.Geometry(); found != (layout.Geometry{
		BlockSize:  512,
		DataBlocks: layout.DefaultGeometry.DataBlocks,
		Inodes:     32,
	}) {
		t.Fatalf("Geometry(): found `%+v`", found)
	}
}

func TestLoadConfig_UnknownField(t *testing.T) {
	path := writeConfig(t, "blocksize: 512\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig(): wanted an error for an unknown field; found nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	for _, testCase := range []struct {
		name   string
		modify func(c *Config)
		wanted string
	}{{
		name:   "missing volume",
		modify: func(c *Config) { c.Volume = "" },
		wanted: "missing required configuration: volume / SFS_VOLUME",
	}, {
		name:   "s3 without bucket",
		modify: func(c *Config) { c.Backend = BackendS3 },
		wanted: "missing required configuration: bucket / SFS_BUCKET",
	}, {
		name:   "unknown backend",
		modify: func(c *Config) { c.Backend = "floppy" },
		wanted: "invalid backend `floppy`",
	}, {
		name:   "bad geometry",
		modify: func(c *Config) { c.BlockSize = 70 },
		wanted: layout.InvalidGeometryErr.Error(),
	}} {
		t.Run(testCase.name, func(t *testing.T) {
			c := DefaultConfig()
			testCase.modify(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), testCase.wanted) {
				t.Fatalf(
					"Validate(): wanted `%s`; found `%v`",
					testCase.wanted,
					err,
				)
			}
		})
	}
}

func TestConfig_Logger(t *testing.T) {
	c := DefaultConfig()
	c.LogLevel = "debug"
	c.LogFormat = "json"
	if _, err := c.Logger(); err != nil {
		t.Fatalf("Logger(): unexpected err: %v", err)
	}

	c.LogLevel = "loud"
	if _, err := c.Logger(); err == nil {
		t.Fatal("Logger(): wanted an error for level `loud`; found nil")
	}

	c.LogLevel = "info"
	c.LogFormat = "xml"
	if _, err := c.Logger(); err == nil {
		t.Fatal("Logger(): wanted an error for format `xml`; found nil")
	}
}
