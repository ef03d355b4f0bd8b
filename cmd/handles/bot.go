package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/queerlil/handles"
	"github.com/queerlil/handles/client"
	"github.com/queerlil/handles/internal/infra/gateway"
	"github.com/queerlil/handles/internal/present/stream"
	"github.com/queerlil/handles/internal/service"
	"github.com/queerlil/handles/internal/usecase"
)

// BotCommand runs the mention listener.
func BotCommand() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "Listen for mentions on the firehose and answer commands",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conf, shutdown, err := setup(c, "handles-bot")
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			cred, err := conf.Credentials.LoadCredential()
			if err != nil {
				return err
			}
			saved, err := conf.Credentials.LoadSession()
			if err != nil {
				slog.WarnContext(ctx, "ignoring unreadable session", slog.String("error", err.Error()), slog.String("module", "main"))
			}
			removeKey, err := conf.Credentials.LoadRemoveKey()
			if err != nil {
				return err
			}

			session := client.NewSession(conf.Credentials.SessionWriter())
			cl := client.New(conf.Bot.Service, client.WithSession(session))
			if err := cl.Authenticate(ctx, saved, cred); err != nil {
				return err
			}
			slog.InfoContext(ctx, "authenticated", slog.String("did", session.DID()), slog.String("module", "main"))

			records := gateway.NewRecordGateway(cl, session.DID())

			var publisher usecase.SignalPublisher
			rdb, err := connectRedis(ctx, conf)
			if err != nil {
				return err
			}
			if rdb != nil {
				defer rdb.Close()
				publisher = service.NewSignalService(rdb, service.DefaultReplyChannel)
			}

			replies := usecase.NewReplyUsecase(records, publisher)
			commands := usecase.NewCommandUsecase(
				conf.Bot.Config,
				records,
				gateway.NewHandleGateway(conf.Bot.ChangeEndpoint, removeKey),
				gateway.NewListingGateway(conf.Bot.ListingPath),
				replies,
			)

			var policy stream.ReconnectPolicy = stream.NoReconnect{}
			if !conf.Bot.Reconnect.Disabled {
				policy = stream.NewBackoffReconnect(conf.Bot.Reconnect.Initial, conf.Bot.Reconnect.Max, conf.Bot.Reconnect.MaxElapsed)
			}

			endpoint, err := stream.SubscribeURL(conf.Bot.Jetstream, handles.PostCollection)
			if err != nil {
				return err
			}

			listener := stream.NewListener(endpoint, conf.Bot.DID, commands, policy)
			err = listener.Run(ctx)
			if ctx.Err() != nil {
				slog.InfoContext(ctx, "shutting down", slog.String("module", "main"))
				return nil
			}
			return err
		},
	}
}
