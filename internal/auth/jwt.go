package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the identity claims carried by a session token. The
// core contract only requires the acting username.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenIssuer issues and verifies signed session tokens.
type TokenIssuer struct {
	cfg *JWTConfig
}

// NewTokenIssuer creates a token issuer with the given configuration.
func NewTokenIssuer(cfg *JWTConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg}
}

// Issue creates a signed token for the given username.
func (t *TokenIssuer) Issue(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.cfg.Secret)
}

// Verify parses and validates a token and returns its claims.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("token missing username claim")
	}

	if t.cfg.Issuer != "" && claims.Issuer != t.cfg.Issuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	if t.cfg.Audience != "" {
		validAudience := false
		for _, aud := range claims.Audience {
			if aud == t.cfg.Audience {
				validAudience = true
				break
			}
		}
		if !validAudience {
			return nil, fmt.Errorf("invalid audience")
		}
	}

	return claims, nil
}
