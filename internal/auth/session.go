package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"churchledger/internal/core"
)

const (
	SessionCookie = "churchledger_session"
	issuer        = "churchledger"
)

var (
	ErrNoSession    = errors.New("no session")
	ErrUserNotFound = errors.New("user not found")
)

// Claims is the signed session payload. Subject holds the user id.
type Claims struct {
	CSRF string `json:"csrf"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// UserLoader resolves the current state of a user by id. Unknown ids must
// yield an error wrapping ErrUserNotFound.
type UserLoader interface {
	LoadUser(ctx context.Context, id int64) (core.User, error)
}

// Sessions issues and verifies HS256-signed session cookies.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}
}

// Issue signs a session for u, sets the cookie and returns the CSRF token
// bound to it.
func (s *Sessions) Issue(w http.ResponseWriter, u core.User) (string, error) {
	token, csrf, err := s.Token(u)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return csrf, nil
}

// Token signs a session token for u without writing a cookie.
func (s *Sessions) Token(u core.User) (token, csrf string, err error) {
	csrf, err = randomToken()
	if err != nil {
		return "", "", err
	}
	now := s.now()
	claims := Claims{
		CSRF: csrf,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign session: %w", err)
	}
	return token, csrf, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Parse verifies the session cookie on r.
func (s *Sessions) Parse(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	claims := &Claims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return claims, nil
}

// Middleware resolves the session cookie into a user on the request
// context. Missing, invalid, expired or inactive sessions leave the request
// anonymous; broken cookies and sessions of deleted or inactive users are
// cleared. A failed lookup keeps the cookie so the session survives a
// storage outage.
func (s *Sessions) Middleware(users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.Parse(r)
			if err != nil {
				if !errors.Is(err, ErrNoSession) {
					s.Clear(w)
				}
				next.ServeHTTP(w, r)
				return
			}
			id, err := claims.UserID()
			if err != nil {
				s.Clear(w)
				next.ServeHTTP(w, r)
				return
			}
			u, err := users.LoadUser(r.Context(), id)
			if err != nil && !errors.Is(err, ErrUserNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil || !u.Active {
				s.Clear(w)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), u, claims.CSRF)))
		})
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
