package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerSignAndVerify(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("library", "library/20261015T101500Z-abc.json")
	require.NoError(t, err)
	require.False(t, expiresAt.IsZero())

	ref, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "library", ref.Domain)
	assert.Equal(t, "library/20261015T101500Z-abc.json", ref.Key)
	assert.WithinDuration(t, expiresAt, ref.ExpiresAt, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Sign("payroll", "payroll/a.json")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Sign("payroll", "payroll/a.json")
	require.NoError(t, err)

	tampered := strings.Replace(token, "payroll.", "library.", 1)
	_, err = signer.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewSignedURLSigner("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = signer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSignedURLSignerRequiresSecret(t *testing.T) {
	_, _, err := NewSignedURLSigner("", time.Hour).Sign("library", "k")
	require.Error(t, err)
}
