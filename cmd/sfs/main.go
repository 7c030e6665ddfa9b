package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:        appName,
		Usage:       "a simple single-volume file system",
		Description: "format, inspect and serve sfs volumes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
			},
			&cli.StringFlag{
				Name:    flagVolume,
				Aliases: []string{"v"},
				Usage:   "the volume: a file path, or a name for s3 and postgres",
			},
			&cli.StringFlag{
				Name:    flagBackend,
				Aliases: []string{"b"},
				Usage:   "the block device backend: file, memory, s3 or postgres",
			},
		},
		Commands: commands(),
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
