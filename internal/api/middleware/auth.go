package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tranaskommun/tranas-forms/internal/utils"
)

// AdminAuth guards the management API. It expects the HS256 JWT cookie set
// by the login handler, carrying role=admin.
func AdminAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie("token")
			if err != nil {
				utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if role, _ := claims["role"].(string); role != "admin" {
				utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
