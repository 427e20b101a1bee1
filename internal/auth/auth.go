// Package auth answers one question for the editor: who is signed in, if
// anyone. A missing user disables uploads and exports.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid access token")

// Identity is the signed-in user.
type Identity struct {
	ID    string
	Email string
	Role  string
}

// Provider is the auth collaborator.
type Provider interface {
	CurrentUser() (Identity, bool)
}

// Anonymous never has a user.
type Anonymous struct{}

func (Anonymous) CurrentUser() (Identity, bool) { return Identity{}, false }

// Static always returns the same identity. An empty ID means signed out.
type Static struct {
	User Identity
}

func (s Static) CurrentUser() (Identity, bool) {
	if strings.TrimSpace(s.User.ID) == "" {
		return Identity{}, false
	}
	return s.User, true
}

// Supabase validates a Supabase access token locally with the project's JWT
// secret. The token is checked on every call so expiry is honoured.
type Supabase struct {
	token  string
	secret []byte
	now    func() time.Time
	log    logrus.FieldLogger
}

// NewSupabase returns a provider for token signed with secret.
func NewSupabase(token, secret string, log logrus.FieldLogger) *Supabase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Supabase{token: strings.TrimSpace(token), secret: []byte(secret), now: time.Now, log: log}
}

// Validate parses the token and returns its identity.
func (s *Supabase) Validate() (Identity, error) {
	if s.token == "" {
		return Identity{}, fmt.Errorf("%w: no token", ErrInvalidToken)
	}
	if len(s.secret) == 0 {
		return Identity{}, fmt.Errorf("%w: no jwt secret configured", ErrInvalidToken)
	}
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(s.token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	id := Identity{
		ID:    stringClaim(claims, "sub"),
		Email: stringClaim(claims, "email"),
		Role:  stringClaim(claims, "role"),
	}
	if id.ID == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return id, nil
}

func (s *Supabase) CurrentUser() (Identity, bool) {
	id, err := s.Validate()
	if err != nil {
		s.log.WithError(err).Debug("no signed-in user")
		return Identity{}, false
	}
	return id, true
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
