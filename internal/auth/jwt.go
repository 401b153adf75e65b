package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultIssuer is the issuer stamped on peer tokens.
	DefaultIssuer = "wirechat"
	// DefaultAudience is the audience the relay accepts.
	DefaultAudience = "wirechat-relay"
	// DefaultTTL is how long a peer token stays valid.
	DefaultTTL = 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNameMismatch = errors.New("token was issued for another name")
)

// Claims represents JWT claims carried by a peer token.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// NewJWTConfig returns a config with the default issuer, audience and TTL.
func NewJWTConfig(secret string) *JWTConfig {
	return &JWTConfig{
		Secret:   []byte(secret),
		Issuer:   DefaultIssuer,
		Audience: DefaultAudience,
		TTL:      DefaultTTL,
	}
}

// GenerateToken creates a new JWT token for the given peer name.
func GenerateToken(cfg *JWTConfig, name string) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   name,
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

// ValidateToken parses and validates a JWT token.
func ValidateToken(cfg *JWTConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("%w: issuer", ErrInvalidToken)
	}
	if cfg.Audience != "" && !slices.Contains(claims.Audience, cfg.Audience) {
		return nil, fmt.Errorf("%w: audience", ErrInvalidToken)
	}

	return claims, nil
}

// ValidatePeer checks the token and that it was issued for name.
func ValidatePeer(cfg *JWTConfig, tokenString, name string) error {
	claims, err := ValidateToken(cfg, tokenString)
	if err != nil {
		return err
	}
	if claims.Name != name {
		return ErrNameMismatch
	}
	return nil
}
