package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/landregistry/internal/domain/models"
	"github.com/mamadbah2/landregistry/internal/repository"
)

func record(id string, owner models.Identity) models.OwnershipRecord {
	return models.OwnershipRecord{
		Owner:         owner,
		Location:      "Location " + id,
		ParcelID:      id,
		DeclaredValue: decimal.NewFromInt(1),
	}
}

func TestInsertRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	if err := repo.Insert(ctx, record("p1", "alice")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(ctx, record("p1", "bob")); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("second insert err = %v, want ErrDuplicate", err)
	}

	got, err := repo.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Owner != "alice" {
		t.Fatalf("owner = %q, want alice", got.Owner)
	}
}

func TestGetMissing(t *testing.T) {
	if _, err := NewRepository().Get(context.Background(), "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	_ = repo.Insert(ctx, record("p1", "alice"))
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := repo.UpdateOwner(ctx, "p1", "bob", "carol", at); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("stale update err = %v, want ErrConflict", err)
	}
	if err := repo.UpdateOwner(ctx, "missing", "alice", "bob", at); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing update err = %v, want ErrNotFound", err)
	}
	if err := repo.UpdateOwner(ctx, "p1", "alice", "bob", at); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := repo.Get(ctx, "p1")
	if got.Owner != "bob" || !got.UpdatedAt.Equal(at) {
		t.Fatalf("got %+v", got)
	}
	if got.Location != "Location p1" || !got.DeclaredValue.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("immutable fields changed: %+v", got)
	}
}

func TestListOrderedAndFiltered(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	_ = repo.Insert(ctx, record("c", "alice"))
	_ = repo.Insert(ctx, record("a", "bob"))
	_ = repo.Insert(ctx, record("b", "alice"))

	all, _ := repo.List(ctx, "")
	if len(all) != 3 || all[0].ParcelID != "a" || all[2].ParcelID != "c" {
		t.Fatalf("list all = %+v", all)
	}

	owned, _ := repo.List(ctx, "alice")
	if len(owned) != 2 || owned[0].ParcelID != "b" || owned[1].ParcelID != "c" {
		t.Fatalf("list alice = %+v", owned)
	}
}
