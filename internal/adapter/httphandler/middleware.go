package httphandler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/niksmo/online-store/internal/core/domain"
)

const (
	CustomerIDHeader = "X-Customer-ID"
	AdminTokenHeader = "X-Admin-Token"
)

type customerKey struct{}

func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
		if strings.TrimSpace(mediaType) != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType, "invalid media type")
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

// RequireCustomer takes the customer identity from the header set by the
// identity provider.
func RequireCustomer(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(CustomerIDHeader))
		if err != nil || id == uuid.Nil {
			writeError(w, http.StatusUnauthorized, "customer identity required")
			return
		}
		ctx := context.WithValue(r.Context(), customerKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(hf)
}

// RequireAdmin rejects requests without the admin token.
// An empty token disables the admin routes.
func RequireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hf := func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminTokenHeader)
			if token == "" ||
				subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hf)
	}
}

func customerFrom(ctx context.Context) domain.CustomerID {
	id, _ := ctx.Value(customerKey{}).(domain.CustomerID)
	return id
}
