package errs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrResponse is the JSON body sent to the client when a request fails. The
// shape stays stable regardless of where in the stack the error originated,
// and never carries a stack trace.
type ErrResponse struct {
	Error ServiceError `json:"error"`
}

type ServiceError struct {
	Kind    string `json:"kind,omitempty"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// HTTPErrorResponse logs err and renders it as JSON with a status code
// derived from the error kind. A nil err is itself an error and renders as
// 500.
func HTTPErrorResponse(w http.ResponseWriter, logger zerolog.Logger, err error) {
	if err == nil {
		nilErrorResponse(w, logger)
		return
	}

	var e *Error
	if errors.As(err, &e) {
		typicalErrorResponse(w, logger, e)
		return
	}

	unknownErrorResponse(w, logger, err)
}

func httpStatusCode(k Kind) int {
	switch k {
	case Exist, NotExist:
		return http.StatusNotFound
	case Invalid, InvalidRequest, Validation:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func typicalErrorResponse(w http.ResponseWriter, logger zerolog.Logger, e *Error) {
	httpStatus := httpStatusCode(e.Kind)

	logger.Error().
		Err(e.Err).
		Int("http_status", httpStatus).
		Str("kind", e.Kind.String()).
		Str("parameter", string(e.Param)).
		Strs("stack", OpStack(e)).
		Msg("error response sent to client")

	if e.isZero() {
		nilErrorResponse(w, logger)
		return
	}

	resp := ErrResponse{
		Error: ServiceError{
			Kind:    e.Kind.String(),
			Param:   string(e.Param),
			Message: e.Err.Error(),
		},
	}

	errJSON, err := json.Marshal(resp)
	if err != nil {
		unknownErrorResponse(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(errJSON)
}

func nilErrorResponse(w http.ResponseWriter, logger zerolog.Logger) {
	logger.Error().Msg("nil error passed to error response handler")
	w.WriteHeader(http.StatusInternalServerError)
}

func unknownErrorResponse(w http.ResponseWriter, logger zerolog.Logger, err error) {
	logger.Error().Err(err).Msg("unknown error type sent to client as internal error")

	resp := ErrResponse{
		Error: ServiceError{
			Kind:    Unanticipated.String(),
			Message: "internal server error - please contact support",
		},
	}

	errJSON, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(errJSON)
}
