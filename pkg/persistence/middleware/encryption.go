package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
)

// KeySize is the AES-256 key length.
const KeySize = 32

// ErrNotSealed is returned when an encrypting store loads a plain snapshot.
var ErrNotSealed = errors.New("state is not sealed")

// EncryptionConfig holds the keys for sealing and opening states.
type EncryptionConfig struct {
	// ActiveKey seals new snapshots. Must be KeySize bytes.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open a snapshot,
	// so keys can be rotated without losing sessions.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryptionMiddleware seals every saved NavigationState with AES-GCM.
// The wrapped store only ever sees an envelope whose Sealed field is set.
// It panics when a key has the wrong size.
func NewEncryptionMiddleware(cfg EncryptionConfig) Middleware {
	if len(cfg.ActiveKey) != KeySize {
		panic(fmt.Sprintf("encryption key must be %d bytes, got %d", KeySize, len(cfg.ActiveKey)))
	}
	for i, k := range cfg.FallbackKeys {
		if len(k) != KeySize {
			panic(fmt.Sprintf("fallback key %d must be %d bytes, got %d", i, KeySize, len(k)))
		}
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{next: next, config: cfg}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, state *domain.NavigationState) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	sealed, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}
	envelope := &domain.NavigationState{Path: []domain.Crumb{}, Sealed: sealed}
	return m.next.Save(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.NavigationState, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(envelope.Sealed) == 0 {
		return nil, ErrNotSealed
	}

	plain, err := decryptWithRotation(envelope.Sealed, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt state: %w", err)
	}

	var state domain.NavigationState
	if err := json.Unmarshal(plain, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted state: %w", err)
	}
	if state.Path == nil {
		state.Path = []domain.Crumb{}
	}
	return &state, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
