package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/farbour/farbour/internal/identity"
)

const (
	sessionFile    = "session.json"
	rememberedFile = "remembered_user.json"
)

// RememberedUser pre-fills the sign-in form at next launch. UX convenience
// only, not security-sensitive.
type RememberedUser struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CredentialCache persists the credential bundle between launches.
type CredentialCache interface {
	LoadSession() (identity.Session, bool, error)
	SaveSession(identity.Session) error
	ClearSession() error
	LoadRememberedUser() (RememberedUser, bool, error)
	SaveRememberedUser(RememberedUser) error
}

// FileCache stores credentials as JSON files under a directory.
type FileCache struct {
	dir string
}

// NewFileCache builds a file-backed credential cache, creating the directory
// if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir}, nil
}

// LoadSession reads the persisted session, reporting absence without error.
func (c *FileCache) LoadSession() (identity.Session, bool, error) {
	var sess identity.Session
	ok, err := c.read(sessionFile, &sess)
	return sess, ok, err
}

// SaveSession persists the session bundle.
func (c *FileCache) SaveSession(sess identity.Session) error {
	return c.write(sessionFile, sess)
}

// ClearSession removes the persisted session. Missing file is not an error.
func (c *FileCache) ClearSession() error {
	err := os.Remove(filepath.Join(c.dir, sessionFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LoadRememberedUser reads the remembered sign-in form values.
func (c *FileCache) LoadRememberedUser() (RememberedUser, bool, error) {
	var u RememberedUser
	ok, err := c.read(rememberedFile, &u)
	return u, ok, err
}

// SaveRememberedUser persists the sign-in form values.
func (c *FileCache) SaveRememberedUser(u RememberedUser) error {
	return c.write(rememberedFile, u)
}

func (c *FileCache) read(name string, dst any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(c.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

func (c *FileCache) write(name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return os.WriteFile(filepath.Join(c.dir, name), payload, 0o600)
}

// MemoryCache is an in-memory credential cache for testing.
type MemoryCache struct {
	mu         sync.Mutex
	session    *identity.Session
	remembered *RememberedUser
}

// NewMemoryCache builds an empty in-memory credential cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Seed places a session in the cache, as if persisted by a previous launch.
func (c *MemoryCache) Seed(sess identity.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &sess
}

func (c *MemoryCache) LoadSession() (identity.Session, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return identity.Session{}, false, nil
	}
	return *c.session, true, nil
}

func (c *MemoryCache) SaveSession(sess identity.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &sess
	return nil
}

func (c *MemoryCache) ClearSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	return nil
}

func (c *MemoryCache) LoadRememberedUser() (RememberedUser, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remembered == nil {
		return RememberedUser{}, false, nil
	}
	return *c.remembered, true, nil
}

func (c *MemoryCache) SaveRememberedUser(u RememberedUser) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remembered = &u
	return nil
}
