package memory

import (
	"errors"
	"sync"
	"time"

	"ai-docstore-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var ErrJobNotFound = errors.New("upload job not found")

// UploadJobRepository keeps upload jobs for ttl after their last update.
type UploadJobRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewUploadJobRepository(ttl time.Duration) *UploadJobRepository {
	return &UploadJobRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *UploadJobRepository) Save(job *entity.UploadJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.cache.Set(job.Id.String(), &cp, cache.DefaultExpiration)
}

// Get returns a copy of the job.
func (r *UploadJobRepository) Get(id uuid.UUID) (*entity.UploadJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, found := r.cache.Get(id.String())
	if !found {
		return nil, false
	}
	cp := *x.(*entity.UploadJob)
	return &cp, true
}

// Update applies fn to the stored job atomically. fn returning false discards
// the change.
func (r *UploadJobRepository) Update(id uuid.UUID, fn func(job *entity.UploadJob) bool) (*entity.UploadJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(id.String())
	if !found {
		return nil, ErrJobNotFound
	}
	cp := *x.(*entity.UploadJob)
	if !fn(&cp) {
		return nil, nil
	}
	cp.UpdatedAt = time.Now()
	r.cache.Set(id.String(), &cp, cache.DefaultExpiration)
	out := cp
	return &out, nil
}
