package auth

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tamecovita/reservations/internal/config"
	"golang.org/x/crypto/bcrypt"
)

const CookieName = "admin_session"

var ErrInvalidCredentials = errors.New("invalid admin password")

// Gate guards the administrative pages with one shared password. A
// successful login is remembered in a signed session cookie.
type Gate struct {
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewGate(cfg *config.Config) *Gate {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Gate{
		secret:       []byte(cfg.AppSecret),
		passwordHash: []byte(cfg.AdminPasswordHash),
		ttl:          ttl,
		now:          time.Now,
	}
}

func (g *Gate) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)); err != nil {
		return errors.Mark(errors.Wrap(err, "compare admin password"), ErrInvalidCredentials)
	}
	return nil
}

func (g *Gate) GenerateToken() (string, error) {
	now := g.now()
	claims := jwt.MapClaims{
		"admin": true,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(g.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Login checks password and, on success, sets the session cookie.
func (g *Gate) Login(w http.ResponseWriter, password string) error {
	if err := g.CheckPassword(password); err != nil {
		return err
	}
	token, err := g.GenerateToken()
	if err != nil {
		return errors.Wrap(err, "sign session")
	}
	g.setCookie(w, token)
	return nil
}

func (g *Gate) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (g *Gate) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  g.now().Add(g.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure:   true, // Uncomment when served over HTTPS
	})
}
