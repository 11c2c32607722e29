package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mamadbah2/landregistry/internal/domain/models"
)

var (
	// ErrNotFound indicates no record exists for the parcel id.
	ErrNotFound = errors.New("parcel record not found")
	// ErrDuplicate indicates a record already exists for the parcel id.
	ErrDuplicate = errors.New("parcel record already exists")
	// ErrConflict indicates the record's owner changed underneath a conditional update.
	ErrConflict = errors.New("parcel owner changed concurrently")
)

// ParcelRepository persists ownership records keyed by parcel id. Records are
// never deleted.
type ParcelRepository interface {
	Insert(ctx context.Context, record models.OwnershipRecord) error
	Get(ctx context.Context, parcelID string) (models.OwnershipRecord, error)
	// UpdateOwner replaces the owner only if it still equals from.
	UpdateOwner(ctx context.Context, parcelID string, from, to models.Identity, at time.Time) error
	// List returns records ordered by parcel id. An empty owner returns every record.
	List(ctx context.Context, owner models.Identity) ([]models.OwnershipRecord, error)
}
