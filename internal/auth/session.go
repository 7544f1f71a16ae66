// Package auth implements the shared-password session: a signed token in
// an HttpOnly cookie that persists until explicit logout.
package auth

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
)

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "token"

// Sessions issues and verifies session tokens signed with the shared
// password.
type Sessions struct {
	secret []byte
}

func New(password string) *Sessions {
	return &Sessions{secret: []byte(password)}
}

// Issue returns a signed empty-claims token.
func (s *Sessions) Issue() (string, error) {
	return jwt.New(jwt.SigningMethodHS256).SignedString(s.secret)
}

// Verify checks the signature of a token previously issued by Issue.
func (s *Sessions) Verify(token string) error {
	_, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	return err
}

// SetCookie attaches the session cookie. No expiry field: the session
// lives until logout.
func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

// ClearCookie expires the session cookie immediately.
func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
