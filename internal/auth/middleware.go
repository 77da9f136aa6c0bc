package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const AdminKey contextKey = "admin"

// IsAdmin reports whether the request passed the admin gate.
func IsAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(AdminKey).(bool)
	return ok
}

// session validates the cookie of r and returns its expiry.
func (g *Gate) session(r *http.Request) (time.Time, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return time.Time{}, false
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return time.Time{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}, false
	}
	if admin, _ := claims["admin"].(bool); !admin {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Authenticated reports whether r carries a valid admin session.
func (g *Gate) Authenticated(r *http.Request) bool {
	_, ok := g.session(r)
	return ok
}

func (g *Gate) guard(next http.Handler, deny http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exp, ok := g.session(r)
		if !ok {
			deny(w, r)
			return
		}

		// Sliding session: refresh once less than half of the lifetime is left
		if exp.Sub(g.now()) < g.ttl/2 {
			if token, err := g.GenerateToken(); err == nil {
				g.setCookie(w, token)
			}
		}

		ctx := context.WithValue(r.Context(), AdminKey, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin sends visitors without a session to the login page.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return g.guard(next, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

// RequireAdminAPI answers 401 instead of redirecting.
func (g *Gate) RequireAdminAPI(next http.Handler) http.Handler {
	return g.guard(next, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}
