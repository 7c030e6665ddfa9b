package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	pz "github.com/weberc2/httpeasy"
	"github.com/weberc2/sfs/pkg/sfs"
	"github.com/weberc2/sfs/pkg/sfsservice"
	. "github.com/weberc2/sfs/pkg/types"
	"golang.org/x/sync/errgroup"
)

const (
	flagConfig  = "config"
	flagVolume  = "volume"
	flagBackend = "backend"
)

func loadEnv(ctx *cli.Context) (*Env, error) {
	c, err := LoadConfig(ctx.String(flagConfig))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if ctx.IsSet(flagVolume) {
		c.Volume = ctx.String(flagVolume)
	}
	if ctx.IsSet(flagBackend) {
		c.Backend = ctx.String(flagBackend)
	}
	return NewEnv(c)
}

func withEnv(f func(env *Env, ctx *cli.Context) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		env, err := loadEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		return f(env, ctx)
	}
}

// withFS mounts the configured volume for the duration of `f`.
func withFS(f func(fs *sfs.FileSystem, ctx *cli.Context) error) cli.ActionFunc {
	return withEnv(func(env *Env, ctx *cli.Context) (err error) {
		fs, err := env.Mount()
		if err != nil {
			return err
		}
		defer func() {
			if unmountErr := fs.Unmount(); err == nil {
				err = unmountErr
			}
		}()
		return f(fs, ctx)
	})
}

func requireArgs(ctx *cli.Context, names ...string) error {
	if ctx.NArg() < len(names) {
		return fmt.Errorf(
			"`%s` expects argument `%s`",
			ctx.Command.Name,
			names[ctx.NArg()],
		)
	}
	return nil
}

// readInput reads the file named by the argument at `i`, or stdin when the
// argument is absent or `-`.
func readInput(ctx *cli.Context, i int) ([]byte, error) {
	path := ctx.Args().Get(i)
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}
	return data, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	_, err = fmt.Printf("%s\n", data)
	return err
}

func commands() []*cli.Command {
	return []*cli.Command{{
		Name:  "format",
		Usage: "create a fresh, empty volume",
		Action: withEnv(func(env *Env, ctx *cli.Context) error {
			dev, err := env.Device()
			if err != nil {
				return err
			}
			fs, err := sfs.Format(dev, env.Config.Geometry(), env.Options())
			if err != nil {
				return err
			}
			return fs.Unmount()
		}),
	}, {
		Name:    "ls",
		Aliases: []string{"list"},
		Usage:   "list the files on the volume",
		Action: withFS(func(fs *sfs.FileSystem, ctx *cli.Context) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, file := range fs.Files() {
				fmt.Fprintf(w, "%s\t%d\n", file.Name, file.Size)
			}
			return w.Flush()
		}),
	}, {
		Name:  "stat",
		Usage: "print volume usage",
		Action: withFS(func(fs *sfs.FileSystem, ctx *cli.Context) error {
			return printJSON(fs.Stat())
		}),
	}, {
		Name:      "cat",
		Usage:     "write a file's content to stdout",
		ArgsUsage: "NAME",
		Action: withFS(func(fs *sfs.FileSystem, ctx *cli.Context) error {
			if err := requireArgs(ctx, "NAME"); err != nil {
				return err
			}
			data, err := fs.ReadFile(ctx.Args().First())
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}),
	}, {
		Name:      "put",
		Usage:     "replace a file's content with FILE (or stdin)",
		ArgsUsage: "NAME [FILE]",
		Action: withFS(func(fs *sfs.FileSystem, ctx *cli.Context) error {
			if err := requireArgs(ctx, "NAME"); err != nil {
				return err
			}
			data, err := readInput(ctx, 1)
			if err != nil {
				return err
			}
			name := ctx.Args().First()
			if err := fs.Remove(name); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			return fs.WriteFile(name, data)
		}),
	}, {
		Name:      "append",
		Usage:     "append FILE (or stdin) to a file",
		ArgsUsage: "NAME [FILE]",
		Action: withFS(func(fs *sfs.FileSystem, ctx *cli.Context) error {
			if err := requireArgs(ctx, "NAME"); err != nil {
				return err
			}
			data, err := readInput(ctx, 1)
			if err != nil {
				return err
			}
			return fs.AppendFile(ctx.Args().First(), data)
		}),
	}, {
		Name:      "rm",
		Aliases:   []string{"remove", "delete"},
		Usage:     "remove a file",
		ArgsUsage: "NAME",
		Action: withFS(func(fs *sfs.FileSystem, ctx *cli.Context) error {
			if err := requireArgs(ctx, "NAME"); err != nil {
				return err
			}
			return fs.Remove(ctx.Args().First())
		}),
	}, {
		Name:      "size",
		Usage:     "print a file's size in bytes",
		ArgsUsage: "NAME",
		Action: withFS(func(fs *sfs.FileSystem, ctx *cli.Context) error {
			if err := requireArgs(ctx, "NAME"); err != nil {
				return err
			}
			size, err := fs.FileSize(ctx.Args().First())
			if err != nil {
				return err
			}
			_, err = fmt.Println(size)
			return err
		}),
	}, {
		Name:    "check",
		Aliases: []string{"fsck"},
		Usage:   "verify the volume's metadata is consistent",
		Action: withFS(func(fs *sfs.FileSystem, ctx *cli.Context) error {
			if err := fs.Check(); err != nil {
				return err
			}
			_, err := fmt.Println("ok")
			return err
		}),
	}, {
		Name:  "serve",
		Usage: "serve the volume over HTTP",
		Action: withEnv(func(env *Env, ctx *cli.Context) (err error) {
			fs, err := env.Mount()
			if err != nil {
				return err
			}
			defer func() {
				if unmountErr := fs.Unmount(); err == nil {
					err = unmountErr
				}
			}()
			return serve(ctx.Context, env, sfsservice.New(fs))
		}),
	}, {
		Name:  "snapshot",
		Usage: "upload a compressed image of the volume to S3",
		Action: withEnv(func(env *Env, ctx *cli.Context) (err error) {
			snapshots, err := env.Snapshots()
			if err != nil {
				return err
			}
			fs, err := env.Mount()
			if err != nil {
				return err
			}
			defer func() {
				if unmountErr := fs.Unmount(); err == nil {
					err = unmountErr
				}
			}()
			key, err := snapshots.Put(env.Config.Volume, fs)
			if err != nil {
				return err
			}
			_, err = fmt.Println(key)
			return err
		}),
	}, {
		Name:  "snapshots",
		Usage: "list the volume's snapshots",
		Action: withEnv(func(env *Env, ctx *cli.Context) error {
			snapshots, err := env.Snapshots()
			if err != nil {
				return err
			}
			keys, err := snapshots.List(env.Config.Volume)
			if err != nil {
				return err
			}
			for _, key := range keys {
				if _, err := fmt.Println(key); err != nil {
					return err
				}
			}
			return nil
		}),
	}, {
		Name:      "restore",
		Usage:     "replace the volume with a snapshot",
		ArgsUsage: "KEY",
		Action: withEnv(func(env *Env, ctx *cli.Context) error {
			if err := requireArgs(ctx, "KEY"); err != nil {
				return err
			}
			snapshots, err := env.Snapshots()
			if err != nil {
				return err
			}
			dev, err := env.Device()
			if err != nil {
				return err
			}
			fs, err := snapshots.Restore(
				ctx.Args().First(),
				dev,
				env.Config.Geometry(),
				env.Options(),
			)
			if err != nil {
				return err
			}
			return fs.Unmount()
		}),
	}}
}

func serve(ctx context.Context, env *Env, service *sfsservice.Service) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := http.Server{
		Addr:    env.Config.Addr,
		Handler: pz.Register(pz.JSONLog(os.Stderr), service.Routes()...),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		env.Logger.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		env.Logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
