package auth

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/bookclub/bookpoll/api/env"
	"github.com/bookclub/bookpoll/logger"
)

// Memberships caches which GitHub organizations a login belongs to.
// Populated from /user/orgs at login, refreshed from the public orgs
// endpoint after expiry, and dropped entirely on logout. Entries
// expire so a revoked membership is not honored forever.
var Memberships = NewMembershipCache(time.Hour)

type MembershipCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]membershipEntry
}

type membershipEntry struct {
	orgs    []string
	expires time.Time
}

func NewMembershipCache(ttl time.Duration) *MembershipCache {
	return &MembershipCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]membershipEntry),
	}
}

func (c *MembershipCache) Get(login string) ([]string, bool) {
	c.mu.RLock()
	entry, exists := c.entries[login]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if entry.expires.Before(c.now()) {
		c.Invalidate(login)
		return nil, false
	}
	return entry.orgs, true
}

func (c *MembershipCache) Put(login string, orgs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[login] = membershipEntry{orgs: orgs, expires: c.now().Add(c.ttl)}
}

func (c *MembershipCache) Invalidate(login string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, login)
}

// IsMember reports whether the login belongs to the organization. On a
// cache miss the public orgs listing is consulted, which only sees
// public memberships; the full picture comes from the login-time fill.
func IsMember(login, organization string) bool {
	orgs, hit := Memberships.Get(login)
	if !hit {
		var err error
		orgs, err = fetchPublicOrgs(login)
		if err != nil {
			logger.Err().Printf("unable to list organizations for %s: %s", login, err.Error())
			return false
		}
		Memberships.Put(login, orgs)
	}

	return slices.Contains(orgs, organization)
}

func fetchPublicOrgs(login string) ([]string, error) {
	req, err := http.NewRequest(http.MethodGet, apiUrl+"/users/"+login+"/orgs", nil)
	if err != nil {
		return nil, err
	}
	if token := env.Get("github.token"); token != "" {
		req.Header.Add("Authorization", "Bearer "+token)
	}

	response, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if response.Body != nil {
			_ = response.Body.Close()
		}
	}()

	var payload []struct {
		Login string `json:"login"`
	}
	if err = json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, err
	}

	orgs := make([]string, 0, len(payload))
	for _, v := range payload {
		orgs = append(orgs, v.Login)
	}
	return orgs, nil
}
