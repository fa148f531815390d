package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is issued by the external identity service; this package only
// verifies the token and extracts the church (tenant) and user ids.

var ErrUnauthenticated = errors.New("unauthenticated")

type ctxKey int

const identityKey ctxKey = 0

type Identity struct {
	ChurchID uuid.UUID
	UserID   uuid.UUID
}

type claims struct {
	ChurchID string `json:"church_id"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a bearer token and returns the identity it carries.
func (v *Verifier) Verify(tokenStr string) (Identity, error) {
	var c claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthenticated
	}

	churchID, err := uuid.Parse(c.ChurchID)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid church_id claim: %w", err)
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid sub claim: %w", err)
	}

	return Identity{ChurchID: churchID, UserID: userID}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// identity in the request context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		ident, err := v.Verify(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}

func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// FromContext returns the identity stored by the middleware.
func FromContext(ctx context.Context) (Identity, error) {
	ident, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}

	return ident, nil
}
