package middleware

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/bbthechange/hangoutsBackend-sub012/pkg/auth"
)

// Authenticate validates the bearer token on every request and attaches the
// user to the context. In Lambda, API Gateway has already validated the JWT
// and forwards the subject in a header.
func Authenticate(validator *auth.JWTValidator) func(next http.Handler) http.Handler {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return authenticateForLambda()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondUnauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				respondUnauthorized(w, "Invalid or expired token")
				return
			}

			user := &auth.UserContext{
				UserID:    claims.UserID,
				ImagePath: claims.ImagePath,
			}
			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
		})
	}
}

func authenticateForLambda() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-Id")
			if userID == "" {
				respondUnauthorized(w, "Missing user identity")
				return
			}
			user := &auth.UserContext{
				UserID:    userID,
				ImagePath: r.Header.Get("X-User-Image"),
			}
			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
