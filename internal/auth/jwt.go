package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// JWTManager validates (and, for tests and tooling, issues) HS256 access
// tokens. Session lifecycle lives with the external identity collaborator;
// the service itself only ever needs the (actor id, role) pair out of a token.
type JWTManager struct {
	secret []byte
	issuer string
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret, issuer string) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// accessClaims extends standard JWT claims with the actor's active role.
type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// GenerateAccessToken creates a signed HS256 JWT with the actor id as subject
// and the active role as a custom claim.
func (m *JWTManager) GenerateAccessToken(actorID uuid.UUID, role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID.String(),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: role.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ValidatePrincipal parses and validates an access token, returning the
// principal it encodes. Tokens with an unknown role are rejected: the pipeline
// authorises strictly by active role and must never see a principal it cannot
// compare.
func (m *JWTManager) ValidatePrincipal(tokenString string) (domain.Principal, error) {
	if tokenString == "" {
		return domain.Principal{}, fmt.Errorf("token is empty: %w", domain.ErrUnauthorized)
	}

	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("parse token: %w: %w", err, domain.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return domain.Principal{}, fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}

	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("invalid subject: %w: %w", err, domain.ErrUnauthorized)
	}

	role := domain.Role(claims.Role)
	if !role.IsValid() {
		return domain.Principal{}, fmt.Errorf("unknown role %q: %w", claims.Role, domain.ErrUnauthorized)
	}

	return domain.Principal{ActorID: actorID, Role: role}, nil
}
