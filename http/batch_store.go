package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"agegroup/inference"
)

// BatchStore holds predicted tables between the upload that produced them
// and their download. Entries expire after ttl or when evicted by newer
// batches.
type BatchStore struct {
	cache *expirable.LRU[string, *inference.BatchResult]
}

func NewBatchStore(size int, ttl time.Duration) *BatchStore {
	if size <= 0 {
		size = 64
	}
	return &BatchStore{cache: expirable.NewLRU[string, *inference.BatchResult](size, nil, ttl)}
}

// Put stores a batch and returns its id.
func (s *BatchStore) Put(batch *inference.BatchResult) string {
	id := uuid.NewString()
	s.cache.Add(id, batch)
	return id
}

func (s *BatchStore) Get(id string) (*inference.BatchResult, bool) {
	return s.cache.Get(id)
}

func (s *BatchStore) Len() int {
	return s.cache.Len()
}
