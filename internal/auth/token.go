package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims is the JWT claim set shared by access and refresh tokens. Subject
// carries the user id; email/username are present only when the user has them.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// TokenConfig carries the externally provided signing material. Both secrets
// are mandatory; their absence is a construction error, not a call-time one.
type TokenConfig struct {
	Issuer        string
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenIssuer mints and verifies HS256 token pairs. Access and refresh
// tokens use independent secrets and expirations.
type TokenIssuer struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenIssuer validates the configuration and constructs a TokenIssuer.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if strings.TrimSpace(cfg.AccessSecret) == "" {
		return nil, errors.New("auth: access token secret is not configured")
	}
	if strings.TrimSpace(cfg.RefreshSecret) == "" {
		return nil, errors.New("auth: refresh token secret is not configured")
	}
	iss := &TokenIssuer{
		issuer:        strings.TrimSpace(cfg.Issuer),
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
	if iss.accessTTL <= 0 {
		iss.accessTTL = defaultAccessTTL
	}
	if iss.refreshTTL <= 0 {
		iss.refreshTTL = defaultRefreshTTL
	}
	return iss, nil
}

// WithTokenClock overrides the issuer's time source. Only intended for tests.
func (i *TokenIssuer) WithTokenClock(fn func() time.Time) *TokenIssuer {
	if fn != nil {
		i.now = fn
	}
	return i
}

// Pair signs an access and a refresh token for the given user.
func (i *TokenIssuer) Pair(u User) (TokenPair, error) {
	now := i.now().UTC()
	access, accessExp, err := i.sign(u, tokenTypeAccess, i.accessSecret, i.accessTTL, now)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := i.sign(u, tokenTypeRefresh, i.refreshSecret, i.refreshTTL, now)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess validates an access token's signature and claims.
func (i *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return i.verify(token, tokenTypeAccess, i.accessSecret)
}

// VerifyRefresh validates a refresh token's signature and claims.
func (i *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return i.verify(token, tokenTypeRefresh, i.refreshSecret)
}

func (i *TokenIssuer) sign(u User, tokenType string, secret []byte, ttl time.Duration, now time.Time) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := Claims{
		Email:     u.Email,
		Username:  u.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i *TokenIssuer) verify(token, wantType string, secret []byte) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	if i.issuer != "" && claims.Issuer != i.issuer {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
