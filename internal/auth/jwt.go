// internal/auth/jwt.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/voidreamer/simple-budget/internal/config"
)

// Audience every accepted token must carry. Tokens minted for other
// services are rejected even when the signature checks out.
const Audience = "authenticated"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrEmailMissing = errors.New("token has no email claim")
)

// Identity is what a verified bearer token proves about the caller.
type Identity struct {
	UserID string
	Email  string
}

// RequireEmail returns the verified email claim, or ErrEmailMissing for
// tokens issued without one.
func (id Identity) RequireEmail() (string, error) {
	if id.Email == "" {
		return "", ErrEmailMissing
	}
	return id.Email, nil
}

type TokenService struct {
	secretKey []byte
	expiresIn time.Duration
	parser    *jwt.Parser
}

func NewTokenService(cfg config.Config) *TokenService {
	return &TokenService{
		secretKey: []byte(cfg.JWTSecret),
		expiresIn: cfg.JWTExpiresIn,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256"}),
			jwt.WithAudience(Audience),
			jwt.WithExpirationRequired(),
		),
	}
}

// GenerateToken mints a token for the given user. Used by the dev login
// endpoint and tests; production tokens come from the identity
// provider with the same claim shape.
func (s *TokenService) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"aud": Audience,
		"iat": now.Unix(),
		"exp": now.Add(s.expiresIn).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Verify checks the signature, audience and expiry of a bearer token
// and extracts the caller identity. Pure verification, no side effects.
func (s *TokenService) Verify(tokenStr string) (Identity, error) {
	token, err := s.parser.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{UserID: sub}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}
