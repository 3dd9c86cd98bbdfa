package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	s, err := NewSigner("test-key", priv)
	require.NoError(t, err)
	return s
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	verifier := VerifierForSigner("tracker-test", signer)

	claims := NewAccessClaims("user-1", "alice", "admin", "tracker-test", time.Minute, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "admin", got.Role)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	verifier := VerifierForSigner("expected-issuer", signer)

	claims := NewAccessClaims("user-1", "alice", "user", "other-issuer", time.Minute, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	verifier := VerifierForSigner("tracker-test", signer)

	issued := time.Now().UTC().Add(-2 * time.Hour)
	claims := NewAccessClaims("user-1", "alice", "user", "tracker-test", time.Hour, issued)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsUnknownKID(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)

	other := newTestSigner(t)
	verifier := NewVerifier("tracker-test", map[string]ed25519.PublicKey{"another-kid": other.Public()})

	claims := NewAccessClaims("user-1", "alice", "user", "tracker-test", time.Minute, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrUnknownKID)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	verifier := VerifierForSigner("tracker-test", signer)

	_, err := verifier.Verify("not.a.token")
	require.Error(t, err)
}

func TestNewSignerRejectsShortKey(t *testing.T) {
	t.Parallel()

	_, err := NewSigner("kid", make([]byte, 10))
	require.Error(t, err)
}
