package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mamadbah2/landregistry/internal/domain/models"
	"github.com/mamadbah2/landregistry/internal/repository"
)

// Repository keeps ownership records in process memory.
type Repository struct {
	mu      sync.RWMutex
	records map[string]models.OwnershipRecord
}

// NewRepository returns an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{records: make(map[string]models.OwnershipRecord)}
}

func (r *Repository) Insert(_ context.Context, record models.OwnershipRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.ParcelID]; ok {
		return repository.ErrDuplicate
	}
	r.records[record.ParcelID] = record
	return nil
}

func (r *Repository) Get(_ context.Context, parcelID string) (models.OwnershipRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[parcelID]
	if !ok {
		return models.OwnershipRecord{}, repository.ErrNotFound
	}
	return record, nil
}

func (r *Repository) UpdateOwner(_ context.Context, parcelID string, from, to models.Identity, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[parcelID]
	if !ok {
		return repository.ErrNotFound
	}
	if record.Owner != from {
		return repository.ErrConflict
	}
	record.Owner = to
	record.UpdatedAt = at
	r.records[parcelID] = record
	return nil
}

func (r *Repository) List(_ context.Context, owner models.Identity) ([]models.OwnershipRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.OwnershipRecord, 0, len(r.records))
	for _, record := range r.records {
		if owner != "" && record.Owner != owner {
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParcelID < out[j].ParcelID })
	return out, nil
}
