package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/timzifer/string_queue/internal/config"
	"github.com/timzifer/string_queue/internal/console"
	"github.com/timzifer/string_queue/internal/log"
)

func main() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func App() *cli.App {
	return &cli.App{
		Name:  "qtest",
		Usage: "drive a string queue from a command script",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML file with harness settings",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "read commands from `FILE` instead of stdin",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "logrus level: error, warning, info, debug",
			},
			&cli.IntFlag{
				Name:  "fail",
				Usage: "percent of allocations to refuse",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "seed for allocation failures",
			},
			&cli.IntFlag{
				Name:  "length",
				Usage: "buffer size handed to remove",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "show the queue after every change",
			},
			&cli.BoolFlag{
				Name:  "echo",
				Usage: "print each command before running it",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log.DefaultEntry.Logger.SetLevel(cfg.LogLevel)

			var input io.Reader = os.Stdin
			source := "stdin"
			if path := c.String("file"); path != "" {
				f, err := os.Open(path)
				if err != nil {
					return errors.Wrap(err, "open commands")
				}
				defer func() { _ = f.Close() }()
				input = f
				source = path
			}

			return run(context.Background(), source, input, c.App.Writer, cfg)
		},
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("log-level") {
		cfg.RawLogLevel = c.String("log-level")
	}
	if c.IsSet("fail") {
		cfg.FailPercent = c.Int("fail")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Int64("seed")
	}
	if c.IsSet("length") {
		cfg.StringLength = c.Int("length")
	}
	if c.IsSet("verbose") {
		cfg.Verbose = c.Bool("verbose")
	}
	if c.IsSet("echo") {
		cfg.Echo = c.Bool("echo")
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, source string, input io.Reader, out io.Writer, cfg config.Config) error {
	ctx = log.WithLogger(ctx, log.GetLogger(ctx).WithField("script", source))
	in := console.New(ctx, out, cfg)
	if err := in.Run(input); err != nil {
		return err
	}
	if err := in.Close(); err != nil {
		return errors.Wrap(err, "storage not released")
	}
	if n := in.Errors(); n > 0 {
		log.Info(ctx, "script finished with errors", "errors", n)
		return cli.Exit(fmt.Sprintf("%d errors", n), 1)
	}
	return nil
}
