package viewas

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/troop78/troophub/internal/models"
	"github.com/troop78/troophub/internal/policy"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims describes the viewer a role switcher token stands for.
type Claims struct {
	MemberID string `json:"member_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	Patrol   string `json:"patrol,omitempty"`
	jwt.RegisteredClaims
}

// Viewer converts the claims to a policy viewer. Unknown roles become guest.
func (c *Claims) Viewer() policy.Viewer {
	return policy.Viewer{
		MemberID: c.MemberID,
		Name:     c.Name,
		Role:     models.ParseRole(c.Role),
		Patrol:   c.Patrol,
	}
}

// TokenService signs and checks view-as tokens.
type TokenService struct {
	secret      []byte
	expireHours int
	now         func() time.Time
}

// NewTokenService creates a token service.
func NewTokenService(secret string, expireHours int) *TokenService {
	return &TokenService{
		secret:      []byte(secret),
		expireHours: expireHours,
		now:         time.Now,
	}
}

// Generate creates a signed token for v.
func (s *TokenService) Generate(v policy.Viewer) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(time.Duration(s.expireHours) * time.Hour)
	claims := Claims{
		MemberID: v.MemberID,
		Name:     v.Name,
		Role:     string(v.Role),
		Patrol:   v.Patrol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Validate parses and validates a token, returning claims or error.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseViewer validates tokenString and returns the viewer it carries.
func (s *TokenService) ParseViewer(tokenString string) (policy.Viewer, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return policy.Viewer{}, err
	}
	return claims.Viewer(), nil
}
