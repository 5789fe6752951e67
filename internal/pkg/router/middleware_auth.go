package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shandysiswandi/clearshot/internal/pkg/jwt"
)

// credential returns the Bearer token, falling back to the session cookie.
func credential(r *http.Request, cookieName string) string {
	p := strings.Fields(r.Header.Get("Authorization"))
	if len(p) == 2 && strings.EqualFold(p[0], "Bearer") {
		return p[1]
	}

	if c, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}

	return ""
}

func middlewareAuthentication(verifier jwt.JWT, cookieName string, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := publicEndpoints[r.Method]; ok {
				if _, skip := s[matchedRoutePath(r)]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			token := credential(r, cookieName)
			if token == "" {
				writeJSON(w, errorResponse{Error: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			if verifier == nil {
				writeJSON(w, errorResponse{Error: "Server configuration error"}, http.StatusInternalServerError)
				return
			}

			claims, err := verifier.Verify(token)
			switch {
			case errors.Is(err, jwt.ErrSecretMissing):
				writeJSON(w, errorResponse{Error: "Server configuration error"}, http.StatusInternalServerError)
				return
			case errors.Is(err, jwt.ErrTokenExpired):
				writeJSON(w, errorResponse{Error: "Token expired"}, http.StatusUnauthorized)
				return
			case err != nil:
				writeJSON(w, errorResponse{Error: "Invalid token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}
