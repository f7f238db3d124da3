package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/fmuoria/resume-admin/internal/models"
	"github.com/fmuoria/resume-admin/internal/store"
)

// Context holds the credentials of the signed-in admin.
// It is initialised from the store and cleared on logout or on any 401.
type Context struct {
	store store.Store

	mu    sync.RWMutex
	token string
	admin *models.Admin
}

// NewContext loads the persisted token and admin identity
func NewContext(s store.Store) *Context {
	c := &Context{store: s}

	if token, ok := s.Get(store.KeyAuthToken); ok {
		c.token = token
	}
	if raw, ok := s.Get(store.KeyAdminData); ok && raw != "" {
		var admin models.Admin
		if err := json.Unmarshal([]byte(raw), &admin); err != nil {
			log.Warn().Err(err).Msg("ignoring unreadable cached admin data")
		} else {
			c.admin = &admin
		}
	}
	return c
}

// Token returns the stored credential token, empty if none
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// HasToken reports whether a credential token is stored
func (c *Context) HasToken() bool {
	return c.Token() != ""
}

// Admin returns the cached admin identity, nil if none
func (c *Context) Admin() *models.Admin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.admin == nil {
		return nil
	}
	admin := *c.admin
	return &admin
}

// Save stores a freshly issued token and admin identity
func (c *Context) Save(token string, admin models.Admin) error {
	raw, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("failed to marshal admin data: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.admin = &admin
	c.mu.Unlock()

	if err := c.store.Set(store.KeyAuthToken, token); err != nil {
		return err
	}
	return c.store.Set(store.KeyAdminData, string(raw))
}

// SetAdmin replaces the cached admin identity, keeping the token
func (c *Context) SetAdmin(admin models.Admin) error {
	raw, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("failed to marshal admin data: %w", err)
	}

	c.mu.Lock()
	c.admin = &admin
	c.mu.Unlock()

	return c.store.Set(store.KeyAdminData, string(raw))
}

// Clear forgets the token and admin identity
func (c *Context) Clear() error {
	c.mu.Lock()
	c.token = ""
	c.admin = nil
	c.mu.Unlock()

	return c.store.Delete(store.KeyAuthToken, store.KeyAdminData)
}
