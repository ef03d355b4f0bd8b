package presenter

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

const notFoundBody = "Not found"

// OK wraps a successful JSON response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func HTML(c echo.Context, body string) error {
	return c.HTML(http.StatusOK, body)
}

// PageError logs err and answers with a bare "Not found" body.
func PageError(c echo.Context, status int, host, file string, err error) error {
	ctx := c.Request().Context()
	slog.ErrorContext(
		ctx, "page request failed",
		slog.String("host", host),
		slog.String("file", file),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("traceID", trace.SpanContextFromContext(ctx).TraceID().String()),
		slog.String("module", "pages"),
	)
	return c.String(status, notFoundBody)
}

func BadRequest(c echo.Context, host, file string, err error) error {
	return PageError(c, http.StatusBadRequest, host, file, err)
}

func NotFound(c echo.Context, host, file string, err error) error {
	return PageError(c, http.StatusNotFound, host, file, err)
}

func InternalError(c echo.Context, host, file string, err error) error {
	return PageError(c, http.StatusInternalServerError, host, file, err)
}
