package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/ShuffleRoster/internal/logging"
)

type contextKey string

const ctxKeySession contextKey = "roster_session"

// withSessionID stores the session ID in ctx.
func withSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySession, id)
}

// sessionID returns the session ID stored by withSession.
func sessionID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySession).(string); ok {
		return v
	}
	return ""
}

// withSession resolves the session cookie to a live session, creating one
// when the cookie is missing or stale, and stores its ID in the request
// context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var current string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			current = c.Value
		}

		id, created := s.service.Ensure(current)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.Session.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
			logging.FromContext(r.Context()).Debug("session created", "session", id)
		}

		next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), id)))
	})
}
