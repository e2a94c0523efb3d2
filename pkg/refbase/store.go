package refbase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	internalTypes "github.com/refbase/refbase-go/internal/types"
)

// MemoryStore keeps the credential in process memory. This is the default
// store; the credential lives and dies with the client.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates an empty in-memory credential store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored token, or "" when empty
func (s *MemoryStore) Get() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// Set stores the token
func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear removes the stored token
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileStore persists the credential to a JSON file with a sliding expiry,
// mirroring the web client's 7-day auth cookie. Reading a live credential
// re-stamps its save time; reading an expired one removes it.
type FileStore struct {
	mu   sync.Mutex
	path string
	ttl  time.Duration
}

// storedCredential is the on-disk shape of a persisted token
type storedCredential struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"savedAt"`
}

// NewFileStore creates a credential store backed by the file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		ttl:  internalTypes.CredentialTTL,
	}
}

// Get returns the stored token. A missing or expired file reads as "no
// credential"; a live credential has its expiry window slid forward.
func (s *FileStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "failed to read credential file")
	}

	var cred storedCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal credential file")
	}

	if !cred.SavedAt.IsZero() && time.Since(cred.SavedAt) > s.ttl {
		_ = os.Remove(s.path)
		return "", nil
	}

	// Sliding expiry
	cred.SavedAt = time.Now()
	_ = s.write(&cred)

	return cred.Token, nil
}

// Set stores the token, replacing any previous one
func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(&storedCredential{
		Token:   token,
		SavedAt: time.Now(),
	})
}

// Clear removes the credential file
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove credential file")
	}
	return nil
}

// write persists the credential with restrictive permissions
func (s *FileStore) write(cred *storedCredential) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create credential directory")
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal credential")
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write credential file")
	}
	return nil
}
