package main

import (
	"path/filepath"
	"testing"

	"github.com/weberc2/sfs/pkg/device"
)

func testEnv(t *testing.T, backend, volume string) *Env {
	t.Helper()
	c := DefaultConfig()
	c.Backend = backend
	c.Volume = volume
	c.BlockSize = 128
	c.DataBlocks = 64
	c.Inodes = 8
	env, err := NewEnv(&c)
	if err != nil {
		t.Fatalf("NewEnv(): unexpected err: %v", err)
	}
	return env
}

func TestEnv_MemoryAlwaysFormats(t *testing.T) {
	env := testEnv(t, BackendMemory, "scratch")
	fs, err := env.Mount()
	if err != nil {
		t.Fatalf("Mount(): unexpected err: %v", err)
	}
	if err := fs.WriteFile("a", []byte("hello")); err != nil {
		t.Fatalf("WriteFile(): unexpected err: %v", err)
	}
	if err := fs.Unmount(); err != nil {
		t.Fatalf("Unmount(): unexpected err: %v", err)
	}

	fs, err = env.Mount()
	if err != nil {
		t.Fatalf("Mount(): unexpected err: %v", err)
	}
	if files := fs.Files(); len(files) != 0 {
		t.Fatalf("Files(): wanted none; found `%+v`", files)
	}
}

func TestEnv_FileVolume(t *testing.T) {
	env := testEnv(t, BackendFile, filepath.Join(t.TempDir(), "sfs.img"))

	// the volume has not been formatted yet
	if _, err := env.Mount(); err == nil {
		t.Fatal("Mount(): wanted an error before format; found nil")
	}

	dev, err := env.Device()
	if err != nil {
		t.Fatalf("Device(): unexpected err: %v", err)
	}
	if _, ok := dev.(*device.File); !ok {
		t.Fatalf("Device(): wanted `*device.File`; found `%T`", dev)
	}
}
