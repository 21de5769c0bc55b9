package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process BlobStore used in tests. It counts operations
// so tests can assert properties like "the second attempt performed zero
// writes" without inspecting a real backend.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]map[string]string

	putCalls    int
	existsCalls int
	getCalls    int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		meta:    make(map[string]map[string]string),
	}
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCalls++
	_, ok := s.objects[key]
	return ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte, opts PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	if len(opts.Metadata) > 0 {
		m := make(map[string]string, len(opts.Metadata))
		for k, v := range opts.Metadata {
			m[k] = v
		}
		s.meta[key] = m
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	data, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return ErrNotFound
	}
	delete(s.objects, key)
	delete(s.meta, key)
	return nil
}

func (s *MemoryStore) SignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://upload.invalid/%s?sig=test", key), nil
}

// Metadata returns the metadata recorded for key, if any.
func (s *MemoryStore) Metadata(key string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta[key]
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Counts returns the number of Put, Exists and Get calls observed so far.
func (s *MemoryStore) Counts() (puts, exists, gets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putCalls, s.existsCalls, s.getCalls
}

// ResetCounts zeroes the operation counters without touching stored objects.
func (s *MemoryStore) ResetCounts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls, s.existsCalls, s.getCalls = 0, 0, 0
}
