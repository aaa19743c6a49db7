package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/crypto"
)

// DefaultTokenTTL is how long an access token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid access token")
	ErrExpiredToken = errors.New("access token has expired")
)

// Claims are sealed into every access token.
type Claims struct {
	Subject   uuid.UUID `json:"sub"`
	Email     string    `json:"email"`
	ExpiresAt int64     `json:"exp"`
}

// TokenIssuer seals claims with AES-GCM. Tokens are opaque to clients and
// cannot be forged or read without the key.
type TokenIssuer struct {
	sealer crypto.Sealer
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(sealer crypto.Sealer, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{sealer: sealer, ttl: ttl, now: time.Now}
}

// Issue returns a token for the user and its expiry.
func (i *TokenIssuer) Issue(userID uuid.UUID, email string) (string, time.Time, error) {
	expires := i.now().Add(i.ttl).UTC()
	raw, err := json.Marshal(Claims{Subject: userID, Email: email, ExpiresAt: expires.Unix()})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encode claims: %w", err)
	}
	token, err := crypto.SealString(i.sealer, raw)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Parse opens and validates a token.
func (i *TokenIssuer) Parse(token string) (*Claims, error) {
	raw, err := crypto.OpenString(i.sealer, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == uuid.Nil {
		return nil, ErrInvalidToken
	}
	if !i.now().Before(time.Unix(claims.ExpiresAt, 0)) {
		return nil, ErrExpiredToken
	}
	return &claims, nil
}
