package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Claims struct {
	UserID      string `json:"user_id"`
	HouseholdID int64  `json:"household_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates the signed bearer tokens the gateway
// hands out after login. Tokens carry identity only; the active role is
// looked up per request, never trusted from the token.
type TokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

func NewTokenService(secretKey, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{secretKey: []byte(secretKey), issuer: issuer, ttl: ttl}
}

func (s *TokenService) GenerateToken(userID string, householdID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      userID,
		HouseholdID: householdID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
