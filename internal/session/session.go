// Package session owns the process-wide mutable analysis state: the active
// file selection, the loaded dataset, and the aggregation cache.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/senzi/weibochat-insight/internal/cache"
	"github.com/senzi/weibochat-insight/internal/dataset"
)

// ErrEmptySelection is returned when a selection request names no files.
var ErrEmptySelection = errors.New("no files selected")

// ErrNoDataset is returned by reads before any dataset has been loaded.
var ErrNoDataset = errors.New("no dataset loaded")

// InvalidSelectionError lists the requested names that are not on disk.
type InvalidSelectionError struct {
	Names []string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid files: %s", strings.Join(e.Names, ", "))
}

// ComputeFunc is one aggregation over the loaded dataset. It must be
// side-effect-free; the session may skip it entirely on a cache hit.
type ComputeFunc func(*dataset.Dataset) (interface{}, error)

// Session serializes all state transitions behind one RWMutex. Select is the
// sole writer; aggregation reads share the lock. Two concurrent reads may
// both compute the same uncached entry and overwrite each other — accepted,
// since aggregations are deterministic for a given dataset.
type Session struct {
	mu    sync.RWMutex
	store *dataset.Store
	cache *cache.Cache

	selection []string
	ds        *dataset.Dataset
}

func New(store *dataset.Store, c *cache.Cache) *Session {
	return &Session{store: store, cache: c}
}

// AvailableFiles lists the normalized files currently on disk.
func (s *Session) AvailableFiles() ([]string, error) {
	return s.store.AvailableFiles()
}

// Selection returns a copy of the active selection.
func (s *Session) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selection...)
}

// RecordCount returns the size of the loaded dataset, 0 when none is loaded.
func (s *Session) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return 0
	}
	return len(s.ds.Records)
}

// LoadDefault selects every file on disk. Existing cache entries are kept:
// their fingerprints still identify the selections that produced them.
// Returns dataset.ErrNoData when the directory holds no usable records.
func (s *Session) LoadDefault(ctx context.Context) (int, error) {
	names, err := s.store.AvailableFiles()
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, dataset.ErrNoData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.store.Load(names)
	if err != nil {
		return 0, err
	}
	s.selection = names
	s.ds = ds
	return len(ds.Records), nil
}

// Select replaces the active selection. The sequence is atomic with respect
// to concurrent reads: validate, load the new dataset, clear the cache, then
// swap. Every failure leaves selection, dataset, and cache untouched.
func (s *Session) Select(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, ErrEmptySelection
	}

	available, err := s.store.AvailableFiles()
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(available))
	for _, name := range available {
		known[name] = struct{}{}
	}

	var unknown []string
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return 0, &InvalidSelectionError{Names: unknown}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.store.Load(unique)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Clear(ctx); err != nil {
		return 0, err
	}
	s.selection = unique
	s.ds = ds
	return len(ds.Records), nil
}

// Cached returns the serialized result for endpoint under the current
// selection, computing and persisting it on a miss. Hits return the stored
// bytes verbatim. Cache IO failures fall back to recomputation; they never
// fail the request.
func (s *Session) Cached(ctx context.Context, endpoint string, fn ComputeFunc) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ds == nil {
		return nil, ErrNoDataset
	}

	key := endpoint + "_" + strings.Join(s.selection, "_")
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("cache: read failed for %s, recomputing: %v", key, err)
	} else if ok {
		return data, nil
	}

	result, err := fn(s.ds)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, key, data); err != nil {
		log.Printf("cache: write failed for %s: %v", key, err)
	}
	return data, nil
}
