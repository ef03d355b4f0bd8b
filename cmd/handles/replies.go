package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/queerlil/handles/internal/domain"
	"github.com/queerlil/handles/internal/service"
)

// RepliesCommand tails the reply events published by a running bot.
func RepliesCommand() *cli.Command {
	return &cli.Command{
		Name:  "replies",
		Usage: "Print reply events published over redis as JSON lines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Redis channel to subscribe to",
				Value: service.DefaultReplyChannel,
			},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conf, _, err := setup(c, "handles-replies")
			if err != nil {
				return err
			}
			rdb, err := connectRedis(ctx, conf)
			if err != nil {
				return err
			}
			if rdb == nil {
				return errors.New("server.redisAddr is not configured")
			}
			defer rdb.Close()

			events := make(chan domain.ReplyEvent)
			errs := make(chan error, 1)
			go func() {
				errs <- service.NewSignalService(rdb, c.String("channel")).Subscribe(ctx, events)
			}()

			for {
				select {
				case event := <-events:
					line, err := json.Marshal(event)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, string(line))
				case err := <-errs:
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
			}
		},
	}
}
