package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

// Authenticator resolves a bearer token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Session, error)
}

// SessionHandlerFunc is a handler for routes that require a verified session.
type SessionHandlerFunc func(w http.ResponseWriter, r *http.Request, session model.Session)

// Authenticated adapts next into an http.HandlerFunc that first verifies the
// Bearer token in the Authorization header. Requests without a valid, unrevoked
// token get 401 and never reach next.
func Authenticated(auth Authenticator, next SessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found || token == "" {
			writeJSONError(w, http.StatusUnauthorized, service.ErrUnauthorized.Error())
			return
		}

		session, err := auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				writeJSONError(w, http.StatusUnauthorized, service.ErrUnauthorized.Error())
				return
			}
			slog.ErrorContext(r.Context(), "authenticating request", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next(w, r, session)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
