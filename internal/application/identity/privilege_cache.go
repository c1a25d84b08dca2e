package identity

import (
	"sync"
	"time"

	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/shared"
)

// DefaultPrivilegeTTL is how long a role's privileges are trusted without
// an explicit invalidation.
const DefaultPrivilegeTTL = 5 * time.Minute

// RoleAccess is everything a privilege check needs to know about a role
type RoleAccess struct {
	RoleID     uint64
	RoleName   string
	Admin      bool
	Privileges identity.ModulePrivileges
}

type cacheEntry struct {
	access   RoleAccess
	loadedAt time.Time
}

// PrivilegeCache keeps role privileges in memory. Entries expire after the
// TTL as measured by the injected clock, and are dropped immediately by
// Invalidate or InvalidateAll.
type PrivilegeCache struct {
	mu      sync.RWMutex
	clock   shared.Clock
	ttl     time.Duration
	entries map[uint64]cacheEntry
}

// NewPrivilegeCache creates a PrivilegeCache. A nil clock means the system
// clock and a non-positive ttl means DefaultPrivilegeTTL.
func NewPrivilegeCache(clock shared.Clock, ttl time.Duration) *PrivilegeCache {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if ttl <= 0 {
		ttl = DefaultPrivilegeTTL
	}
	return &PrivilegeCache{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[uint64]cacheEntry),
	}
}

// Get returns the cached access of a role unless it is missing or expired
func (c *PrivilegeCache) Get(roleID uint64) (RoleAccess, bool) {
	c.mu.RLock()
	entry, ok := c.entries[roleID]
	c.mu.RUnlock()
	if !ok {
		return RoleAccess{}, false
	}
	if !c.clock.Now().Before(entry.loadedAt.Add(c.ttl)) {
		c.mu.Lock()
		// only drop the entry we saw; a concurrent Put may have refreshed it
		if cur, ok := c.entries[roleID]; ok && cur.loadedAt.Equal(entry.loadedAt) {
			delete(c.entries, roleID)
		}
		c.mu.Unlock()
		return RoleAccess{}, false
	}
	return entry.access, true
}

// Put stores a role's access, stamped with the current clock time
func (c *PrivilegeCache) Put(access RoleAccess) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[access.RoleID] = cacheEntry{access: access, loadedAt: c.clock.Now()}
}

// Invalidate drops one role
func (c *PrivilegeCache) Invalidate(roleID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, roleID)
}

// InvalidateAll drops every role
func (c *PrivilegeCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]cacheEntry)
}

// Len returns the number of cached roles, expired ones included
func (c *PrivilegeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
