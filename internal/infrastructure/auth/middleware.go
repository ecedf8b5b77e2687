package auth

import (
	"context"
	"log/slog"
	"net/http"
)

const SessionCookie = "lavender_session"

type contextKey struct{}

var userIDKey = contextKey{}

func WithUserID(ctx context.Context, userID int32) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int32, bool) {
	id, ok := ctx.Value(userIDKey).(int32)
	return id, ok
}

// UserFromRequest resolves the session cookie without enforcing it.
func (m *SessionManager) UserFromRequest(r *http.Request) (int32, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	userID, err := m.Validate(r.Context(), cookie.Value)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// SetCookie writes the session token as an HttpOnly cookie.
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// SessionMiddleware redirects callers without a live session to the home page.
func SessionMiddleware(m *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := m.UserFromRequest(r)
			if !ok {
				slog.Info("unauthenticated request redirected", "path", r.URL.Path)
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
