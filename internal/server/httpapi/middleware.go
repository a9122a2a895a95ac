package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/logging"
	"github.com/samudhan2008/sa-notes-beta/internal/server/auth"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
	"github.com/samudhan2008/sa-notes-beta/internal/server/services"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// requestLogger echoes chi's request id, tags the request context with it and
// logs one line per request once it completes.
func (h *Handlers) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := middleware.GetReqID(r.Context())
		w.Header().Set(common.RequestIDHeaderName, id)
		ctx := logging.WithAttrs(r.Context(), "request_id", id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		h.logger.Info(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// authenticate stores the claims of a valid bearer token in the context.
// Requests without a token pass through; a bad token is rejected.
func (h *Handlers) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			h.writeError(w, r, common.ErrInvalidToken)
			return
		}

		claims, err := auth.ParseToken(token, h.jwtSecret)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = logging.WithAttrs(ctx, "user_id", claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: common.ErrorUnauthorized.Error()})
			return
		}
		if err := h.checkActive(r); err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := claimsFrom(r.Context())
		if c == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: common.ErrorUnauthorized.Error()})
			return
		}
		if !c.IsAdmin() {
			writeJSON(w, http.StatusForbidden, errorBody{Error: common.ErrorForbidden.Error()})
			return
		}
		if err := h.checkActive(r); err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkActive rejects writes from accounts suspended or removed after their
// access token was issued. Reads rely on the token alone.
func (h *Handlers) checkActive(r *http.Request) error {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil
	}
	p, err := h.users.Profile(r.Context(), claimsFrom(r.Context()).UserID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrorUnauthorized
	case err != nil:
		return err
	case p.Status == models.UserSuspended:
		return common.ErrorForbidden
	}
	return nil
}

func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// actor builds the service caller from the request claims.
func actor(r *http.Request) services.Actor {
	c := claimsFrom(r.Context())
	if c == nil {
		return services.Actor{}
	}
	return services.Actor{UserID: c.UserID, Role: c.Role}
}
