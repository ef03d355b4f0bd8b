package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/queerlil/handles/internal/config"
	"github.com/queerlil/handles/internal/infra/database"
	"github.com/queerlil/handles/internal/infra/tracing"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path to the config file",
	Value:   "./config.yaml",
	EnvVars: []string{"HANDLES_CONFIG"},
}

func main() {
	app := &cli.App{
		Name:  "handles",
		Usage: "Custom handle bot for Bluesky",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			BotCommand(),
			PagesCommand(),
			RepliesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("exited with error", slog.String("error", err.Error()), slog.String("module", "main"))
		os.Exit(1)
	}
}

// setup loads the config and installs the logger and, when enabled, the
// tracer provider. The returned func flushes pending spans.
func setup(c *cli.Context, serviceName string) (config.Config, func(context.Context) error, error) {
	conf, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return config.Config{}, nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(conf.Server.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	shutdown := func(context.Context) error { return nil }
	if conf.Server.EnableTrace {
		shutdown, err = tracing.Setup(c.Context, serviceName, conf.Server.TraceEndpoint)
		if err != nil {
			return config.Config{}, nil, err
		}
		slog.Info("tracing enabled", slog.String("endpoint", conf.Server.TraceEndpoint), slog.String("module", "main"))
	}

	return conf, shutdown, nil
}

// connectRedis returns nil when no address is configured.
func connectRedis(ctx context.Context, conf config.Config) (*redis.Client, error) {
	if conf.Server.RedisAddr == "" {
		return nil, nil
	}
	return database.NewRedis(ctx, conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
}
