package memory

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionStoreRepository remembers the stores a user created during their
// session so they can be removed together at the end.
type SessionStoreRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewSessionStoreRepository(ttl time.Duration) *SessionStoreRepository {
	// purge expired sessions every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionStoreRepository{
		cache: c,
	}
}

func (r *SessionStoreRepository) Add(userID, storeName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := r.list(userID)
	for _, n := range names {
		if n == storeName {
			return
		}
	}
	r.cache.Set(userID, append(names, storeName), cache.DefaultExpiration)
}

func (r *SessionStoreRepository) List(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.list(userID)...)
}

func (r *SessionStoreRepository) Remove(userID, storeName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := r.list(userID)
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n != storeName {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		r.cache.Delete(userID)
		return
	}
	r.cache.Set(userID, kept, cache.DefaultExpiration)
}

func (r *SessionStoreRepository) Clear(userID string) {
	r.cache.Delete(userID)
}

func (r *SessionStoreRepository) list(userID string) []string {
	if x, found := r.cache.Get(userID); found {
		return x.([]string)
	}
	return nil
}
