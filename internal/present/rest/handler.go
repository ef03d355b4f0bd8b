package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/queerlil/handles/internal/domain"
	"github.com/queerlil/handles/internal/present/rest/presenter"
	"github.com/queerlil/handles/internal/usecase"
)

type Handler struct {
	page *usecase.PageUsecase
	gist string
}

func NewHandler(page *usecase.PageUsecase, allowedHost string) *Handler {
	if allowedHost == "" {
		allowedHost = domain.DefaultAllowedPageHost
	}
	return &Handler{
		page: page,
		gist: "https://" + allowedHost + "/",
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.handleHealth)
	e.GET("/*", h.handlePage)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func requestHost(c echo.Context) string {
	host := c.Request().Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}

func (h *Handler) handlePage(c echo.Context) error {
	ctx := c.Request().Context()

	host := requestHost(c)
	file := usecase.PageFileName(c.Request().URL.Path)
	if host == "" {
		return presenter.BadRequest(c, "unknown", file, fmt.Errorf("missing Host header"))
	}

	page, err := h.page.Resolve(ctx, host, c.Request().URL.Path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, host, file, err)
		}
		if page.Href == "" {
			// the record lookup itself failed
			return presenter.NotFound(c, host, file, err)
		}
		return presenter.InternalError(c, host, file, err)
	}

	slog.InfoContext(
		ctx, "served page",
		slog.String("host", host),
		slog.String("file", file),
		slog.String("href", strings.TrimPrefix(page.Href, h.gist)),
		slog.String("module", "pages"),
	)
	return presenter.HTML(c, page.Body)
}
