package api

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultStoreCapacity bounds how many generations are retained.
const DefaultStoreCapacity = 256

// GenerationStore keeps recent generation responses for retrieval by id.
// The least recently used entry is evicted once capacity is reached.
type GenerationStore struct {
	cache *lru.Cache[string, GenerateResponse]
}

func NewGenerationStore(capacity int) *GenerationStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, GenerateResponse](capacity)
	return &GenerationStore{cache: cache}
}

func (s *GenerationStore) Put(resp GenerateResponse) {
	s.cache.Add(resp.ID, resp)
}

func (s *GenerationStore) Get(id string) (GenerateResponse, bool) {
	return s.cache.Get(id)
}

func (s *GenerationStore) Delete(id string) bool {
	return s.cache.Remove(id)
}

func (s *GenerationStore) Len() int {
	return s.cache.Len()
}
