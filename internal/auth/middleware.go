package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"
)

// CookieName is the cookie that carries the signed session token.
const CookieName = "binamite_session"

// contextKey is unexported so no other package can read or overwrite our
// context values by accident.
type contextKey string

const sessionIDKey contextKey = "sessionID"

// BrowserSession is a middleware that makes sure every request belongs to a
// browser session.
//
// If the request carries a valid session cookie, its ID is put in the
// context. Otherwise a new ID is minted, the cookie is set on the response,
// and the new ID is put in the context. It never rejects a request.
func BrowserSession(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractSessionID(r, tokens)
			if err != nil {
				id, err = startSession(w, tokens)
				if err != nil {
					logger.Error("starting browser session", slog.String("error", err.Error()))
					http.Error(w, `{"error":"internal_error","message":"An internal error occurred"}`, http.StatusInternalServerError)
					return
				}
			}

			ctx := WithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the browser session ID set by BrowserSession.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// WithSessionID returns a copy of ctx carrying id. Handler tests use it to
// skip the cookie round-trip.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

func extractSessionID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}

// startSession mints a new session ID and sets its cookie.
func startSession(w http.ResponseWriter, tokens *TokenService) (string, error) {
	id := xid.New().String()

	tokenStr, err := tokens.Generate(id)
	if err != nil {
		return "", err
	}

	// Secure should be true behind HTTPS. Left off for local development.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id, nil
}
