// Package auth issues and verifies the JWT access/refresh pair and keeps the
// revocation list in Redis.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"dojo/internal/config"
	"dojo/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Token types carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

const (
	Issuer   = "dojo-api"
	Audience = "dojo-client"

	revokedKeyPrefix = "blacklist:"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongType    = errors.New("wrong token type")
	ErrRevoked      = errors.New("token has been revoked")
)

// Claims is the payload of both token types.
type Claims struct {
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return uint(id), nil
}

// Pair is what the token endpoint returns.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenIssuer signs and verifies tokens. A nil Redis client disables revocation.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	redis      *redis.Client
	now        func() time.Time
}

func NewTokenIssuer(cfg *config.Config, rdb *redis.Client) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL(),
		refreshTTL: cfg.RefreshTokenTTL(),
		redis:      rdb,
		now:        time.Now,
	}
}

// IssuePair signs a fresh access and refresh token for the user.
func (i *TokenIssuer) IssuePair(userID uint, username string) (*Pair, error) {
	access, err := i.sign(userID, username, TypeAccess, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(userID, username, TypeRefresh, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Pair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (i *TokenIssuer) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := i.Verify(ctx, refreshToken, TypeRefresh)
	if err != nil {
		return "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", ErrInvalidToken
	}
	return i.IssueAccess(userID, claims.Username)
}

// IssueAccess signs a fresh access token for the user.
func (i *TokenIssuer) IssueAccess(userID uint, username string) (string, error) {
	return i.sign(userID, username, TypeAccess, i.accessTTL)
}

func (i *TokenIssuer) sign(userID uint, username, tokenType string, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}

	now := i.now()
	claims := Claims{
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse checks signature, issuer, audience and lifetime of tokenString.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify parses tokenString and also requires the given token type and
// that the token id has not been revoked. An unreachable revocation store
// is logged and does not reject the token.
func (i *TokenIssuer) Verify(ctx context.Context, tokenString, tokenType string) (*Claims, error) {
	claims, err := i.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongType
	}
	revoked, err := i.IsRevoked(ctx, claims.ID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "revocation check failed", slog.String("error", err.Error()))
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Revoke blacklists the token id until the token would have expired anyway.
func (i *TokenIssuer) Revoke(ctx context.Context, claims *Claims) error {
	if i.redis == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(i.now())
	}
	if ttl <= 0 {
		return nil
	}
	return i.redis.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err()
}

// IsRevoked reports whether jti is blacklisted. Redis errors are returned to the caller.
func (i *TokenIssuer) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if i.redis == nil || jti == "" {
		return false, nil
	}
	n, err := i.redis.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return n > 0, nil
}
