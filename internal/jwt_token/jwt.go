package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

// CompletionClaims binds a completed claim to the person it resolved to.
type CompletionClaims struct {
	ClientID        string `json:"client_id"`
	RequestID       string `json:"request_id"`
	PersonID        string `json:"person_id"`
	ReferenceNumber string `json:"reference_number"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies completion tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

type Option func(*JWTService)

// WithClock sets the instant expiry is checked against.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) { s.now = now }
}

// NewJWTService creates an HS256 token service. A zero ttl issues tokens
// without an expiry.
func NewJWTService(signingKey string, issuer string, ttl time.Duration, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueCompletionToken signs the terminal token for a completed claim.
func (s *JWTService) IssueCompletionToken(
	key id.ClaimKey,
	personID id.PersonID,
	referenceNumber string,
	issuedAt time.Time) (string, error) {
	registered := jwt.RegisteredClaims{
		Subject:  personID.String(),
		IssuedAt: jwt.NewNumericDate(issuedAt),
		Issuer:   s.issuer,
		Audience: []string{key.ClientID.String()},
		ID:       uuid.NewString(),
	}
	if s.ttl > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(s.ttl))
	}
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, CompletionClaims{
		ClientID:         key.ClientID.String(),
		RequestID:        key.RequestID.String(),
		PersonID:         personID.String(),
		ReferenceNumber:  referenceNumber,
		RegisteredClaims: registered,
	})
	signed, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign completion token")
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*CompletionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &CompletionClaims{},
		func(*jwt.Token) (any, error) { return s.signingKey, nil },
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*CompletionClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}
