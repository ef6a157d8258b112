package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testParams keeps the KDF cheap in tests. Production uses DefaultParams.
var testParams = Params{N: 1 << 12, R: 8, P: 1, KeyLen: 32}

func newTestSession(t *testing.T, password string) *Session {
	t.Helper()
	s := NewSession(testParams, nil)
	_, err := s.Initialize(password)
	require.NoError(t, err)
	return s
}

func TestInitializeAndVerify(t *testing.T) {
	s := newTestSession(t, "swordfish")

	record := s.Record()
	require.NotNil(t, record)
	assert.NotEmpty(t, record.Salt)
	assert.NotEmpty(t, record.Tester)
	assert.True(t, s.HasMasterPassword())
	assert.True(t, s.IsAuthed())

	key, err := s.VerifyPassword("swordfish")
	require.NoError(t, err)
	assert.Len(t, key, testParams.KeyLen)
}

func TestVerifyWrongPassword(t *testing.T) {
	s := newTestSession(t, "swordfish")

	for _, wrong := range []string{"", "Swordfish", "swordfish ", "hunter2"} {
		key, err := s.VerifyPassword(wrong)
		assert.ErrorIs(t, err, ErrAuthFailed)
		assert.Nil(t, key, "wrong password must never return a usable key")
	}
}

func TestInitializeTwice(t *testing.T) {
	s := newTestSession(t, "swordfish")
	_, err := s.Initialize("other")
	assert.ErrorIs(t, err, ErrVaultExists)
}

func TestVerifyNoVault(t *testing.T) {
	s := NewSession(testParams, nil)
	assert.False(t, s.HasMasterPassword())
	_, err := s.VerifyPassword("anything")
	assert.ErrorIs(t, err, ErrNoVault)
}

func TestLockUnlock(t *testing.T) {
	s := newTestSession(t, "swordfish")

	s.Lock()
	assert.False(t, s.IsAuthed())
	_, err := s.Key()
	assert.ErrorIs(t, err, ErrLocked)

	// Re-authenticating restores the key.
	assert.ErrorIs(t, s.Unlock("wrong"), ErrAuthFailed)
	require.NoError(t, s.Unlock("swordfish"))
	key, err := s.Key()
	require.NoError(t, err)
	assert.Len(t, key, testParams.KeyLen)
}

func TestSessionSurvivesReload(t *testing.T) {
	s := newTestSession(t, "swordfish")

	// A fresh session around the same persisted record starts locked but
	// accepts the original password.
	reloaded := NewSession(testParams, s.Record())
	assert.True(t, reloaded.HasMasterPassword())
	assert.False(t, reloaded.IsAuthed())
	require.NoError(t, reloaded.Unlock("swordfish"))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	s := newTestSession(t, "swordfish")
	key, err := s.Key()
	require.NoError(t, err)

	plaintext := "d0fe999da6df269bafa0bf496f680b8e6d5756e87d1d184ffd7374e2af5843be-000"
	encSecret, nonce, err := EncryptSecret(key, plaintext)
	require.NoError(t, err)
	assert.NotContains(t, encSecret, plaintext)

	got, err := DecryptSecret(key, encSecret, nonce)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptWrongKey(t *testing.T) {
	a := newTestSession(t, "swordfish")
	b := newTestSession(t, "hunter2")

	keyA, err := a.Key()
	require.NoError(t, err)
	keyB, err := b.Key()
	require.NoError(t, err)

	encSecret, nonce, err := EncryptSecret(keyA, "secret")
	require.NoError(t, err)

	_, err = DecryptSecret(keyB, encSecret, nonce)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestDecryptCorrupted(t *testing.T) {
	s := newTestSession(t, "swordfish")
	key, err := s.Key()
	require.NoError(t, err)

	encSecret, nonce, err := EncryptSecret(key, "secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encSecret)
	require.NoError(t, err)
	raw[0] ^= 0xff
	corrupted := base64.StdEncoding.EncodeToString(raw)

	_, err = DecryptSecret(key, corrupted, nonce)
	assert.ErrorIs(t, err, ErrDecryptFailed)

	// Garbage that is not even base64 is still ErrDecryptFailed.
	_, err = DecryptSecret(key, "!!!not-base64!!!", nonce)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}
