package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for the master password KDF
// Security is prioritized over performance
//
// N=2^18 (~256MB RAM, 0.5-2s) - optimal balance:
//   - Maximum security while remaining compatible with low-memory devices
//   - Brute-force attacks on exported backups remain extremely expensive
//
// Note: N=2^20 (~1GB) offers the highest security but fails on constrained
// hosts due to per-process memory limits
const (
	saltLen  = 32
	nonceLen = 12
)

// Params are the scrypt work parameters. They are fixed for production use;
// tests construct sessions with lighter values.
type Params struct {
	N      int
	R      int
	P      int
	KeyLen int
}

// DefaultParams is the production KDF configuration.
var DefaultParams = Params{N: 1 << 18, R: 8, P: 1, KeyLen: 32}

// testerPlaintext is the known constant encrypted into the vault's tester.
// A candidate master password is correct iff decrypting the tester with its
// derived key yields this exact string.
const testerPlaintext = "tenebra-tester"

var (
	// ErrAuthFailed means the supplied master password is wrong.
	ErrAuthFailed = errors.New("master password incorrect")

	// ErrDecryptFailed means a ciphertext could not be opened under a
	// verified key. For wallet secrets this signals data corruption, not a
	// bad password.
	ErrDecryptFailed = errors.New("ciphertext unreadable")

	// ErrLocked means no verified key is held in memory.
	ErrLocked = errors.New("session locked: master password not entered")

	// ErrNoVault means no master password has been set up yet.
	ErrNoVault = errors.New("no master password configured")

	// ErrVaultExists means Initialize was called on an existing vault.
	ErrVaultExists = errors.New("master password already configured")
)

// VaultRecord is the persisted part of the master password vault. It contains
// no secret material: the salt is public, and the tester is ciphertext of a
// known constant used only to check password candidates.
type VaultRecord struct {
	Salt   string `json:"salt"`
	Tester string `json:"tester"`
}

func deriveKey(params Params, password string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.KeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}

// EncryptSecret seals plaintext under key with a fresh random nonce. Both
// return values are base64-encoded.
func EncryptSecret(key []byte, plaintext string) (encSecret, nonce string, err error) {
	nonceBytes := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonceBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", "", err
	}

	ciphertext := aesGCM.Seal(nil, nonceBytes, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext),
		base64.StdEncoding.EncodeToString(nonceBytes), nil
}

// DecryptSecret opens a ciphertext produced by EncryptSecret. An unreadable
// ciphertext (wrong key, corrupted data) returns ErrDecryptFailed, which is
// distinct from ErrLocked.
func DecryptSecret(key []byte, encSecret, nonce string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encSecret)
	if err != nil {
		return "", ErrDecryptFailed
	}
	nonceBytes, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil || len(nonceBytes) != nonceLen {
		return "", ErrDecryptFailed
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aesGCM.Open(nil, nonceBytes, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}

// Verify re-derives the key for a password candidate and checks it against
// the vault's tester. Returns the derived key on success, ErrAuthFailed for
// any incorrect password. This is the only way a password is ever confirmed;
// the plaintext password is never stored anywhere.
func Verify(params Params, password string, record *VaultRecord) ([]byte, error) {
	if record == nil {
		return nil, ErrNoVault
	}

	salt, err := base64.StdEncoding.DecodeString(record.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	tester, err := base64.StdEncoding.DecodeString(record.Tester)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tester: %w", err)
	}
	if len(tester) < nonceLen {
		return nil, fmt.Errorf("tester too short")
	}

	key, err := deriveKey(params, password, salt)
	if err != nil {
		return nil, err
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	// The tester blob is nonce || ciphertext.
	plaintext, err := aesGCM.Open(nil, tester[:nonceLen], tester[nonceLen:], nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	if subtle.ConstantTimeCompare(plaintext, []byte(testerPlaintext)) != 1 {
		return nil, ErrAuthFailed
	}

	return key, nil
}

// Session holds the master password state for the running process: the
// persisted vault record plus the in-memory derived key. The key only ever
// lives in memory; locking or restarting the process forces re-verification.
type Session struct {
	mu     sync.Mutex
	params Params
	record *VaultRecord
	key    []byte
}

// NewSession creates a session around an existing vault record, or a not-yet-
// initialized session when record is nil.
func NewSession(params Params, record *VaultRecord) *Session {
	return &Session{params: params, record: record}
}

// HasMasterPassword reports whether a vault has been initialized at all.
func (s *Session) HasMasterPassword() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record != nil
}

// IsAuthed reports whether the session currently holds a verified key.
func (s *Session) IsAuthed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key != nil
}

// Record returns the persisted vault record, or nil before initialization.
func (s *Session) Record() *VaultRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Initialize sets up the vault from the first chosen master password:
// generates a random salt, derives the key, encrypts the tester constant and
// unlocks the session. Fails with ErrVaultExists if already set up.
func (s *Session) Initialize(password string) (*VaultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record != nil {
		return nil, ErrVaultExists
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := deriveKey(s.params, password, salt)
	if err != nil {
		return nil, err
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	tester := aesGCM.Seal(nil, nonce, []byte(testerPlaintext), nil)

	s.record = &VaultRecord{
		Salt:   base64.StdEncoding.EncodeToString(salt),
		Tester: base64.StdEncoding.EncodeToString(append(nonce, tester...)),
	}
	s.key = key
	return s.record, nil
}

// VerifyPassword checks a password candidate against the vault and returns
// the derived key without changing the session's locked/unlocked state.
// Caller should zero the returned key after use.
func (s *Session) VerifyPassword(password string) ([]byte, error) {
	s.mu.Lock()
	record, params := s.record, s.params
	s.mu.Unlock()

	return Verify(params, password, record)
}

// VerifyRecord checks a password against an arbitrary vault record (e.g. the
// salt+tester embedded in a backup export) rather than the session's own.
func (s *Session) VerifyRecord(password string, record *VaultRecord) ([]byte, error) {
	s.mu.Lock()
	params := s.params
	s.mu.Unlock()

	return Verify(params, password, record)
}

// Unlock verifies the password and caches the derived key in memory for the
// rest of the session.
func (s *Session) Unlock(password string) error {
	key, err := s.VerifyPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.key = key
	s.mu.Unlock()
	return nil
}

// Key returns a copy of the cached derived key, or ErrLocked when the session
// has not been unlocked. Caller should zero the copy after use.
func (s *Session) Key() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record == nil {
		return nil, ErrNoVault
	}
	if s.key == nil {
		return nil, ErrLocked
	}
	out := make([]byte, len(s.key))
	copy(out, s.key)
	return out, nil
}

// Lock clears the in-memory key, forcing re-verification before any wallet
// secret can be decrypted again.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.key)
	s.key = nil
}
