package httpserver

import (
	"errors"
	"net/http"

	"fxrates-ingest/internal/application"
	"fxrates-ingest/internal/domain"
	"fxrates-ingest/internal/infrastructure/logx"

	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain failures onto HTTP codes. Store and unknown errors
// are reported without detail.
func statusFor(err error) (int, string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, domain.ErrDuplicatePair):
		return http.StatusConflict, "pair already exists"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, application.ErrTickBusy):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrFetch):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logx.L().Error("http_handler_failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", idsFrom(r.Context()).request),
			zap.Error(err),
		)
	}
	writeError(w, status, msg)
}
