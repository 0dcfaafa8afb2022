package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/bizsight/internal/auth"
	"github.com/JonMunkholm/bizsight/internal/logging"
	"github.com/google/uuid"
)

// Authenticate resolves the calling user and puts it on the request context
// for handlers (auth.UserIDFromContext) and logs (user_id).
//
// Browser clients send "Authorization: Bearer <token>". When apiKeys is
// non-empty, service callers may instead send X-API-Key with the acting
// user in X-User-ID.
func Authenticate(tokens *auth.Tokens, apiKeys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolveUser(r, tokens, apiKeys)
			if err != nil {
				slog.Warn("auth: request rejected",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
					"reason", err.Error(),
				)
				unauthorized(w, err)
				return
			}

			ctx := auth.WithUserID(r.Context(), userID)
			ctx = logging.WithUserID(ctx, userID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var (
	errMissingCredentials = errors.New("not authorized, no token")
	errInvalidAPIKey      = errors.New("invalid API key")
	errInvalidUserHeader  = errors.New("invalid X-User-ID header")
)

func resolveUser(r *http.Request, tokens *auth.Tokens, apiKeys []string) (uuid.UUID, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return uuid.Nil, auth.ErrInvalidToken
		}
		return tokens.Verify(strings.TrimSpace(token))
	}

	if key := r.Header.Get("X-API-Key"); key != "" && len(apiKeys) > 0 {
		if !isValidAPIKey(key, apiKeys) {
			return uuid.Nil, errInvalidAPIKey
		}
		id, err := uuid.Parse(r.Header.Get("X-User-ID"))
		if err != nil || id == uuid.Nil {
			return uuid.Nil, errInvalidUserHeader
		}
		return id, nil
	}

	return uuid.Nil, errMissingCredentials
}

func unauthorized(w http.ResponseWriter, err error) {
	msg := "Not authorized"
	if errors.Is(err, auth.ErrTokenExpired) {
		msg = "Your session has expired"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="bizsight"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   msg,
		"message": msg,
		"action":  "Please log in again",
		"code":    "AUTH003",
	})
}

// isValidAPIKey compares against every configured key in constant time.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, k := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return valid == 1
}
