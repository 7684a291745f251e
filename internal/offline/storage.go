package offline

import (
	"slices"
	"sort"
	"sync"

	"github.com/patrickmn/go-cache"
)

type bucket struct {
	name  string
	items *cache.Cache
}

func newBucket(name string) *bucket {
	// no expiration and no janitor: entries live until the bucket is deleted
	return &bucket{name: name, items: cache.New(cache.NoExpiration, 0)}
}

// Storage is a set of named cache buckets.
type Storage struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	order   []string
}

func NewStorage() *Storage {
	return &Storage{buckets: map[string]*bucket{}}
}

// Put replaces the whole content of bucket name with entries in one step.
// Readers see either the previous content or the new one, never a mix.
func (s *Storage) Put(name string, entries []*Entry) {
	b := newBucket(name)
	for _, e := range entries {
		b.items.Set(e.URL, e, cache.NoExpiration)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[name]; !ok {
		s.order = append(s.order, name)
	}
	s.buckets[name] = b
}

// Delete removes bucket name and reports whether it existed.
func (s *Storage) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[name]
	if !ok {
		return false
	}
	b.items.Flush()
	delete(s.buckets, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return true
}

// Has reports whether bucket name exists.
func (s *Storage) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.buckets[name]
	return ok
}

// Keys returns bucket names in creation order.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Match looks url up in every bucket, oldest first.
func (s *Storage) Match(url string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, name := range s.order {
		if v, ok := s.buckets[name].items.Get(url); ok {
			return v.(*Entry), true
		}
	}
	return nil, false
}

// URLs lists the keys stored in bucket name, sorted.
func (s *Storage) URLs(name string) []string {
	s.mu.RLock()
	b, ok := s.buckets[name]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	items := b.items.Items()
	out := make([]string, 0, len(items))
	for k := range items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
