// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jason-s-yu/bussfix/internal/dependencies/clock"
)

// ErrInvalidSeatToken is returned for any token that does not verify.
var ErrInvalidSeatToken = errors.New("invalid seat token")

// SeatClaims binds a participant to a room. Subject carries the participant id.
type SeatClaims struct {
	Room string `json:"room"`
	jwt.RegisteredClaims
}

// Signer issues and verifies seat tokens with an ed25519 key pair.
type Signer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	// ttl of 0 means tokens carry no exp claim.
	ttl   time.Duration
	clock clock.Clock
}

// ParseTokenExpireTime interprets TOKEN_EXPIRE_TIME values. "never", "0" and
// "" disable expiry.
func ParseTokenExpireTime(v string) (time.Duration, error) {
	if v == "never" || v == "0" || v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token expire time: %w", err)
	}
	return d, nil
}

// NewSigner generates a fresh key pair at runtime. Seats do not survive a
// restart anyway, so there is nothing to load from disk.
func NewSigner(ttl time.Duration, clk clock.Clock) (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Signer{privateKey: priv, publicKey: pub, ttl: ttl, clock: clk}, nil
}

// NewSignerFromPath reads raw ed25519 keys from disk.
func NewSignerFromPath(privatePath, publicPath string, ttl time.Duration) (*Signer, error) {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key file %s: want %d bytes, got %d", privatePath, ed25519.PrivateKeySize, len(privateKeyData))
	}
	if len(publicKeyData) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key file %s: want %d bytes, got %d", publicPath, ed25519.PublicKeySize, len(publicKeyData))
	}
	return &Signer{
		privateKey: ed25519.PrivateKey(privateKeyData),
		publicKey:  ed25519.PublicKey(publicKeyData),
		ttl:        ttl,
		clock:      clock.New(),
	}, nil
}

// CreateSeatToken signs a token for participantID seated in roomID.
func (s *Signer) CreateSeatToken(roomID, participantID string) (string, error) {
	now := s.clock.Now()
	claims := SeatClaims{
		Room: roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  participantID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(s.privateKey)
}

// VerifySeatToken checks the signature and expiry and returns the claims.
func (s *Signer) VerifySeatToken(tokenString string) (*SeatClaims, error) {
	claims := &SeatClaims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.publicKey, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeatToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidSeatToken
	}
	if claims.Subject == "" || claims.Room == "" {
		return nil, fmt.Errorf("%w: missing sub or room", ErrInvalidSeatToken)
	}
	return claims, nil
}
