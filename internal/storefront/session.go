package storefront

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"Storefront/pkg/kit"
)

var ErrInvalidToken = errors.New("invalid session token")

const tokenIssuer = "storefront"

// TokenMaker issues and checks the signed tokens that identify a shopper
// session. The session id is the token subject.
type TokenMaker struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenMaker(secret string, ttl time.Duration) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (t *TokenMaker) TTL() time.Duration { return t.ttl }

type Session struct {
	ID        string    `json:"session_id"`
	Token     string    `json:"session_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t *TokenMaker) New() (Session, error) {
	now := t.now()
	sid := "s_" + uuid.NewString()
	exp := now.Add(t.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   sid,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Session{}, err
	}
	return Session{ID: sid, Token: tok, ExpiresAt: exp.UTC()}, nil
}

// Parse returns the session id carried by a valid token.
func (t *TokenMaker) Parse(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenStr, &c,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || token == nil || !token.Valid || c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}

type ctxKey string

const sessionKey ctxKey = "session_id"

func SessionFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionKey).(string)
	return sid, ok && sid != ""
}

// RequireSession rejects requests without a valid bearer session token.
func RequireSession(tokens *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing session token", nil)
				return
			}

			sid, err := tokens.Parse(raw)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid session token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
