package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/queerlil/handles/client"
	"github.com/queerlil/handles/internal/infra/gateway"
	"github.com/queerlil/handles/internal/present/rest"
	"github.com/queerlil/handles/internal/usecase"
)

// pageFetchTimeout bounds record lookups and gist fetches for one page request.
const pageFetchTimeout = 10 * time.Second

// PagesCommand serves the hosted pages.
func PagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "pages",
		Usage: "Serve pages registered with `page set`",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conf, shutdown, err := setup(c, "handles-pages")
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			// page records live in the bot's repository and are public.
			cl := client.New(conf.Bot.Service, client.WithTimeout(pageFetchTimeout))
			records := gateway.NewRecordGateway(cl, conf.Bot.DID)
			pages := usecase.NewPageUsecase(records, gateway.NewPageFetcher(cl.HTTPClient()))

			e := echo.New()
			e.HideBanner = true
			e.Use(middleware.Logger())
			e.Use(middleware.Recover())
			if conf.Server.EnableTrace {
				e.Use(otelecho.Middleware("handles-pages"))
			}
			rest.NewHandler(pages, conf.Bot.AllowedPageHost).RegisterRoutes(e)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = e.Shutdown(shutdownCtx)
			}()

			slog.InfoContext(ctx, "serving pages", slog.String("listen", conf.Server.Listen), slog.String("module", "main"))
			if err := e.Start(conf.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
