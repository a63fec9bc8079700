package middleware

import (
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/drafthook/drafthook/shared/jwt"
	"github.com/drafthook/drafthook/shared/utils"
)

// AdminOnly guards destructive routes: the request must carry a bearer token
// with the admin claim set.
func AdminOnly(jwtService jwt.JwtService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenStr == "" {
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}

			token, err := jwtService.DecodeToken(tokenStr)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			claims, ok := token.Claims.(jwtlib.MapClaims)
			if !ok {
				http.Error(w, "Invalid access token", http.StatusUnauthorized)
				return
			}
			isAdmin, ok := claims["admin"].(bool)
			if !ok || !isAdmin {
				http.Error(w, "Access denied. Only for admin", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
