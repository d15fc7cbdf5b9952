package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vinodhini/portal/internal/core/access"
	"github.com/vinodhini/portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all portal errors.
type errorResponse struct {
	Error     string            `json:"error"`
	Retryable bool              `json:"retryable,omitempty"`
	Inactive  bool              `json:"inactive,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// publicMessage is implemented by backend errors whose text may be shown.
type publicMessage interface {
	PublicMessage() string
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors onto status codes and the JSON envelope. An unauthenticated error
// outside of login itself sends the browser back to login; anything unrecognised is logged and
// reported as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var lerr *domain.LoginError
		if !errors.As(err, &lerr) && errors.Is(err, domain.ErrUnauthenticated) {
			_ = c.Redirect(http.StatusSeeOther, access.LoginPath)
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var lerr *domain.LoginError
	if errors.As(err, &lerr) {
		return http.StatusUnauthorized, errorResponse{Error: lerr.Message, Inactive: lerr.Inactive()}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, errorResponse{Error: "please correct the highlighted fields", Fields: verr.Fields}
	}

	var incomplete *domain.IncompleteCompletionError
	if errors.As(err, &incomplete) {
		return http.StatusBadGateway, errorResponse{
			Error:     fmt.Sprintf("Project marked completed but progress is still %d%%. Retry to finish.", incomplete.Progress),
			Retryable: true,
		}
	}

	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: backendMessage(err, "access forbidden")}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: backendMessage(err, "not found")}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorResponse{Error: backendMessage(err, "conflict")}
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return http.StatusConflict, errorResponse{Error: domain.ErrSubmissionInFlight.Error(), Retryable: true}
	case errors.Is(err, domain.ErrProgressRegression),
		errors.Is(err, domain.ErrProgressOutOfRange),
		errors.Is(err, domain.ErrProjectCompleted),
		errors.Is(err, domain.ErrStatusNotSelectable),
		errors.Is(err, domain.ErrFieldLocked):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: backendMessage(err, "invalid request")}
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway, errorResponse{Error: "Unable to reach the server. Please try again.", Retryable: true}
	case errors.Is(err, domain.ErrBackend):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend error")
		return http.StatusBadGateway, errorResponse{Error: backendMessage(err, "the server returned an error"), Retryable: true}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func backendMessage(err error, fallback string) string {
	var pm publicMessage
	if errors.As(err, &pm) && pm.PublicMessage() != "" {
		return pm.PublicMessage()
	}
	return fallback
}
