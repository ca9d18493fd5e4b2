package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by Farbour access and refresh tokens.
type Claims struct {
	Phone string `json:"phone,omitempty"`
	Ver   int    `json:"ver"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the access/refresh token pair.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenIssuer builds a token issuer from the configured secrets and TTLs.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssuePair signs a fresh access/refresh pair for the user.
func (t *TokenIssuer) IssuePair(user User) (Session, error) {
	now := time.Now().UTC()
	accessExp := now.Add(t.accessTTL)

	access, err := t.sign(user, t.accessSecret, now, accessExp)
	if err != nil {
		return Session{}, err
	}
	refresh, err := t.sign(user, t.refreshSecret, now, now.Add(t.refreshTTL))
	if err != nil {
		return Session{}, err
	}

	return Session{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExp,
	}, nil
}

// ParseAccess verifies an access token and returns its claims.
func (t *TokenIssuer) ParseAccess(token string) (Claims, error) {
	return t.parse(token, t.accessSecret)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (t *TokenIssuer) ParseRefresh(token string) (Claims, error) {
	return t.parse(token, t.refreshSecret)
}

func (t *TokenIssuer) sign(user User, secret []byte, iat, exp time.Time) (string, error) {
	claims := Claims{
		Phone: user.Phone,
		Ver:   user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (t *TokenIssuer) parse(token string, secret []byte) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
