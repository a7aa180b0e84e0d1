package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "ridergate/pkg/domain-errors"
	"ridergate/pkg/domain"
)

// Claims represents the JWT claims carried by staff access tokens.
// The identity provider that issues them lives outside this service.
type Claims struct {
	StaffID string `json:"staff_id"`
	Role    string `json:"role"`
	LGAID   int    `json:"lga_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateAccessToken mints a token for caller. Used by the token CLI and tests.
func (s *JWTService) GenerateAccessToken(caller domain.Caller, expiresIn time.Duration) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		StaffID: caller.StaffID.String(),
		Role:    string(caller.Role),
		LGAID:   int(caller.Jurisdiction),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// ValidateCaller validates the token and converts its claims into a Caller.
// Scoped roles must carry a jurisdiction.
func (s *JWTService) ValidateCaller(tokenString string) (domain.Caller, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return domain.Caller{}, err
	}

	staffID, err := domain.ParseStaffID(claims.StaffID)
	if err != nil {
		return domain.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	caller := domain.Caller{
		StaffID:      staffID,
		Role:         role,
		Jurisdiction: domain.JurisdictionID(claims.LGAID),
	}
	if caller.IsScoped() && caller.Jurisdiction.IsZero() {
		return domain.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "scoped role requires lga_id")
	}
	return caller, nil
}
