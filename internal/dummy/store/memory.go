package store

import (
	"context"
	"sort"
	"sync"

	"dummyapi/internal/dummy/models"
)

// InMemory keeps records in process memory. Every read and write copies the
// record so callers never alias stored state.
type InMemory struct {
	mu       sync.RWMutex
	records  map[models.DummyID]*models.Dummy
	dniIdx   map[int64]models.DummyID
	emailIdx map[string]models.DummyID
	nextID   models.DummyID
}

func NewInMemory() *InMemory {
	return &InMemory{
		records:  make(map[models.DummyID]*models.Dummy),
		dniIdx:   make(map[int64]models.DummyID),
		emailIdx: make(map[string]models.DummyID),
		nextID:   1,
	}
}

func (s *InMemory) FindByID(_ context.Context, id models.DummyID) (*models.Dummy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.records[id]; ok {
		return d.Clone(), nil
	}
	return nil, ErrNotFound
}

// FindAll returns every record ordered by id.
func (s *InMemory) FindAll(_ context.Context) ([]*models.Dummy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Dummy, 0, len(s.records))
	for _, d := range s.records {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save replaces the record when its id is stored, otherwise inserts it under
// a freshly assigned id.
func (s *InMemory) Save(_ context.Context, d *models.Dummy) (*models.Dummy, error) {
	if err := requireRecord(d); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := d.Clone()
	prev, exists := s.records[rec.ID]
	if !exists {
		rec.ID = s.nextID
	}

	if rec.NationalID != nil {
		if owner, ok := s.dniIdx[*rec.NationalID]; ok && owner != rec.ID {
			return nil, nationalIDUsed(*rec.NationalID)
		}
	}
	if rec.Email != nil {
		if owner, ok := s.emailIdx[*rec.Email]; ok && owner != rec.ID {
			return nil, emailUsed(*rec.Email)
		}
	}

	if exists {
		s.unindex(prev)
	} else {
		s.nextID++
	}
	s.records[rec.ID] = rec
	s.index(rec)
	return rec.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, id models.DummyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	s.unindex(d)
	delete(s.records, id)
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *InMemory) index(d *models.Dummy) {
	if d.NationalID != nil {
		s.dniIdx[*d.NationalID] = d.ID
	}
	if d.Email != nil {
		s.emailIdx[*d.Email] = d.ID
	}
}

func (s *InMemory) unindex(d *models.Dummy) {
	if d.NationalID != nil {
		delete(s.dniIdx, *d.NationalID)
	}
	if d.Email != nil {
		delete(s.emailIdx, *d.Email)
	}
}
