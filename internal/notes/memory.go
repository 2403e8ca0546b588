package notes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-memory Repository with the same observable semantics
// as MongoRepo. Used by tests and available as a throwaway storage engine.
type MemoryRepo struct {
	mu    sync.RWMutex
	notes map[primitive.ObjectID]*Note
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{notes: make(map[primitive.ObjectID]*Note)}
}

func (r *MemoryRepo) Insert(_ context.Context, n *Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	n.UpdatedAt = n.CreatedAt
	clone := *n
	r.notes[n.ID] = &clone
	return nil
}

func (r *MemoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (r *MemoryRepo) ListByOwner(_ context.Context, userID primitive.ObjectID) ([]*Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(n *Note) bool { return n.UserID == userID }), nil
}

func (r *MemoryRepo) Update(_ context.Context, n *Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[n.ID]; !ok {
		return ErrNotFound
	}
	clone := *n
	r.notes[n.ID] = &clone
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[id]; !ok {
		return ErrNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r *MemoryRepo) Search(_ context.Context, userID primitive.ObjectID, query, category string) ([]*Note, error) {
	q := strings.ToLower(query)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(n *Note) bool {
		if n.UserID != userID {
			return false
		}
		if category != "" && n.Category != category {
			return false
		}
		if q == "" {
			return true
		}
		for _, field := range []string{n.Title, n.Content, n.Transcription, n.Tags} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}), nil
}

func (r *MemoryRepo) DistinctCategories(_ context.Context, userID primitive.ObjectID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, n := range r.notes {
		if n.UserID == userID && n.Category != "" && !seen[n.Category] {
			seen[n.Category] = true
			categories = append(categories, n.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *MemoryRepo) CountByType(_ context.Context, userID primitive.ObjectID) (TypeCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts TypeCounts
	for _, n := range r.notes {
		if n.UserID != userID {
			continue
		}
		switch n.Type {
		case TypeText:
			counts.Text++
		case TypeFile:
			counts.File++
		case TypeAudio:
			counts.Audio++
		}
	}
	return counts, nil
}

// collect copies matching notes sorted by updated_at descending, matching
// the Mongo sort order.
func (r *MemoryRepo) collect(match func(*Note) bool) []*Note {
	var notes []*Note
	for _, n := range r.notes {
		if match(n) {
			clone := *n
			notes = append(notes, &clone)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes
}
