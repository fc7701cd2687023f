package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// CredentialRepository holds per-user API keys. Every read slides the expiry,
// so a key only lapses after ttl of inactivity.
type CredentialRepository struct {
	cache *cache.Cache
}

func NewCredentialRepository(ttl time.Duration) *CredentialRepository {
	return &CredentialRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *CredentialRepository) Get(userID string) (string, bool) {
	x, found := r.cache.Get(userID)
	if !found {
		return "", false
	}
	key := x.(string)
	r.cache.Set(userID, key, cache.DefaultExpiration)
	return key, true
}

func (r *CredentialRepository) Set(userID, key string) {
	r.cache.Set(userID, key, cache.DefaultExpiration)
}

func (r *CredentialRepository) Clear(userID string) {
	r.cache.Delete(userID)
}
