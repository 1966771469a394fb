// Package store holds the flashcard collection in memory and mirrors it to a
// durable key-value backend after every mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/abstract-tutoring/card-crafter/models"
)

var ErrGroupNotFound = errors.New("group not found")

// Store owns the authoritative Collection. Mutations are serialised and only
// become visible once the backend write has succeeded.
type Store struct {
	backend Backend
	key     string

	mu         sync.RWMutex
	collection models.Collection
}

func New(backend Backend, key string) *Store {
	if key == "" {
		key = models.DefaultStorageKey
	}
	return &Store{backend: backend, key: key, collection: models.Collection{}}
}

// Load reads the durable copy once. Missing, unreadable or malformed data all
// yield an empty collection; the cause is logged and never returned.
func (s *Store) Load(ctx context.Context) models.Collection {
	loaded := models.Collection{}

	raw, ok, err := s.backend.Get(ctx, s.key)
	switch {
	case err != nil:
		log.Println("Collection load failed, starting empty:", err)
	case !ok:
		log.Printf("No stored collection under %q, starting empty", s.key)
	default:
		var parsed models.Collection
		if err := json.Unmarshal(raw, &parsed); err != nil {
			log.Println("Stored collection is malformed, starting empty:", err)
		} else if parsed != nil {
			loaded = parsed
		}
	}

	s.mu.Lock()
	s.collection = loaded
	s.mu.Unlock()
	return loaded.Clone()
}

// AddOrMergeGroup appends candidate, or, when a group with the same name exists,
// appends candidate's terms to the first such group and keeps its description and image.
func (s *Store) AddOrMergeGroup(ctx context.Context, candidate models.FlashcardGroup) (models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.collection.Clone()
	if i := next.IndexOf(candidate.Group); i != -1 {
		next[i].Terms = append(next[i].Terms, candidate.Clone().Terms...)
	} else {
		next = append(next, candidate.Clone())
	}

	if err := s.persist(ctx, next); err != nil {
		return s.collection.Clone(), err
	}
	s.collection = next
	return next.Clone(), nil
}

// DeleteGroup removes the group at index. An out-of-range index returns
// ErrGroupNotFound without writing anything.
func (s *Store) DeleteGroup(ctx context.Context, index int) (models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.collection) {
		return s.collection.Clone(), fmt.Errorf("delete index %d of %d: %w", index, len(s.collection), ErrGroupNotFound)
	}

	next := make(models.Collection, 0, len(s.collection)-1)
	next = append(next, s.collection[:index].Clone()...)
	next = append(next, s.collection[index+1:].Clone()...)

	if err := s.persist(ctx, next); err != nil {
		return s.collection.Clone(), err
	}
	s.collection = next
	return next.Clone(), nil
}

// Replace overwrites the whole collection. Used by operator restore paths only.
func (s *Store) Replace(ctx context.Context, c models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := c.Clone()
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.collection = next
	return nil
}

func (s *Store) Groups() models.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Clone()
}

func (s *Store) Group(index int) (models.FlashcardGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.collection) {
		return models.FlashcardGroup{}, false
	}
	return s.collection[index].Clone(), true
}

func (s *Store) GroupNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collection))
	for _, g := range s.collection {
		names = append(names, g.Group)
	}
	return names
}

func (s *Store) HasGroup(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.IndexOf(name) != -1
}

func (s *Store) persist(ctx context.Context, c models.Collection) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("persist collection: %w", err)
	}
	return nil
}
