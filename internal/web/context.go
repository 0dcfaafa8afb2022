package web

import (
	"net"
	"net/http"

	"github.com/JonMunkholm/bizsight/internal/auth"
	"github.com/JonMunkholm/bizsight/internal/core"
	"github.com/google/uuid"
)

// requestMeta puts the client IP and User-Agent on the context for audit
// logging. RemoteAddr has already been rewritten by TrustedRealIP.
func requestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.WithRequestMeta(r.Context(), core.RequestMeta{
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// currentUser returns the authenticated user id. Routes behind
// Authenticate always have one.
func currentUser(r *http.Request) uuid.UUID {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}
