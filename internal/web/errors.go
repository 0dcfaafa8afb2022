package web

// errors.go maps service errors to HTTP responses. Every error is logged
// with its technical detail and the request id, and the client gets the
// mapped UserMessage as {error, message, action, code}.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/bizsight/internal/auth"
	"github.com/JonMunkholm/bizsight/internal/core"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errRateLimited  = errors.New("rate limit exceeded")
	errNoFile       = errors.New("no file provided")
	errFileTooLarge = core.ErrFileTooLarge
	errFileType     = errors.New("unsupported file type, please upload a CSV file")
	errBadBody      = &core.ValidationError{Message: "Invalid request body"}
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes its user-facing form. A zero status is
// derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := userMessage(err)

	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request error", attrs...)
	} else {
		slog.Warn("request error", attrs...)
	}

	if errors.Is(err, core.ErrTooManyUploads) {
		w.Header().Set("Retry-After", "30")
	}
	respondErrorJSON(w, msg, status)
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// userMessage keeps the exact text of validation and row failures, which
// are already written for the user, and maps everything else.
func userMessage(err error) core.UserMessage {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return core.UserMessage{Message: verr.Message, Action: "Correct the input and try again", Code: validationCode(verr.Message)}
	}
	var rf *core.RowFailure
	if errors.As(err, &rf) {
		mapped := core.MapError(rf)
		return core.UserMessage{Message: rf.Reason, Action: mapped.Action, Code: mapped.Code}
	}
	return core.MapError(err)
}

func validationCode(message string) string {
	if code := core.CodeFor(message); code != "ERR000" {
		return code
	}
	return "VAL000"
}

func statusFor(err error) int {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, core.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateName), errors.Is(err, core.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, core.ErrInsufficientStock), errors.Is(err, core.ErrFileTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
