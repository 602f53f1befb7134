package auth

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jason-s-yu/bussfix/internal/dependencies/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatTokenRoundTrip(t *testing.T) {
	signer, err := NewSigner(time.Hour, nil)
	require.NoError(t, err)

	tok, err := signer.CreateSeatToken("kitchen", "p-123")
	require.NoError(t, err)

	claims, err := signer.VerifySeatToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "kitchen", claims.Room)
	assert.Equal(t, "p-123", claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestSeatTokenExpires(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC))
	signer, err := NewSigner(time.Minute, clk)
	require.NoError(t, err)

	tok, err := signer.CreateSeatToken("kitchen", "p-123")
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	_, err = signer.VerifySeatToken(tok)
	assert.ErrorIs(t, err, ErrInvalidSeatToken)
}

func TestSeatTokenFromOtherSignerIsRejected(t *testing.T) {
	a, err := NewSigner(0, nil)
	require.NoError(t, err)
	b, err := NewSigner(0, nil)
	require.NoError(t, err)

	tok, err := a.CreateSeatToken("kitchen", "p-123")
	require.NoError(t, err)

	_, err = b.VerifySeatToken(tok)
	assert.ErrorIs(t, err, ErrInvalidSeatToken)

	_, err = a.VerifySeatToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidSeatToken)
}

func TestSignerFromPath(t *testing.T) {
	dir := t.TempDir()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	privPath, pubPath := filepath.Join(dir, "seat.key"), filepath.Join(dir, "seat.pub")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o600))

	signer, err := NewSignerFromPath(privPath, pubPath, time.Hour)
	require.NoError(t, err)
	tok, err := signer.CreateSeatToken("kitchen", "p-123")
	require.NoError(t, err)
	_, err = signer.VerifySeatToken(tok)
	assert.NoError(t, err)

	short := filepath.Join(dir, "short.key")
	require.NoError(t, os.WriteFile(short, []byte("not a key"), 0o600))
	_, err = NewSignerFromPath(short, pubPath, time.Hour)
	assert.Error(t, err)
	_, err = NewSignerFromPath(privPath, short, time.Hour)
	assert.Error(t, err)
}

func TestParseTokenExpireTime(t *testing.T) {
	for _, v := range []string{"", "0", "never"} {
		d, err := ParseTokenExpireTime(v)
		require.NoError(t, err)
		assert.Zero(t, d)
	}
	d, err := ParseTokenExpireTime("24h")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, d)

	_, err = ParseTokenExpireTime("tomorrow")
	assert.Error(t, err)
}

func TestPasscodeHash(t *testing.T) {
	hash, err := HashPasscode("open sesame")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPasscode("open sesame", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPasscode("open sesam", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPasscode("x", "garbage")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
