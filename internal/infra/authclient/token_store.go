package authclient

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore keeps the access/refresh token pair in a small local document so
// a restarted process resumes its session. An absent or unreadable document
// just means "not logged in".
type TokenStore struct {
	mu   sync.Mutex
	path string

	access  string
	refresh string
	loaded  bool
}

type tokenDoc struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{path: filepath.Join(dir, "auth-tokens.json")}
}

func (s *TokenStore) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var doc tokenDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return
	}
	s.access, s.refresh = doc.AccessToken, doc.RefreshToken
}

// Tokens returns the current pair; empty strings when not logged in.
func (s *TokenStore) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.access, s.refresh
}

func (s *TokenStore) Set(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.access, s.refresh = access, refresh
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	data, err := json.Marshal(tokenDoc{AccessToken: access, RefreshToken: refresh})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write tokens: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.access, s.refresh = "", ""
	os.Remove(s.path)
}
