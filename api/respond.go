package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rpupo63/oneword-blog-backend/errs"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Field   string `json:"field,omitempty"`
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.writeJSON(w, http.StatusOK, data)
}

func (r Responder) writeJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.Canceled) {
			r.logger.Debug().Err(err).Msg("request canceled by client")
		} else {
			r.logger.Error().Err(err).Msg("unexpected error")
		}
		r.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Message: "An unexpected error occurred",
			Error:   http.StatusText(http.StatusInternalServerError),
			Status:  http.StatusInternalServerError,
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Int("status", apiErr.StatusCode).Str("hint", apiErr.Hint).Msg(apiErr.GetFullError())
	}

	r.writeJSON(w, apiErr.StatusCode, ErrorResponse{
		Message: apiErr.Message(),
		Error:   apiErr.Error(),
		Status:  apiErr.StatusCode,
		Details: apiErr.Details,
		Hint:    apiErr.Hint,
		Field:   apiErr.Field,
	})
}
