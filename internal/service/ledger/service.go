package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/landregistry/internal/domain/models"
	"github.com/mamadbah2/landregistry/internal/repository"
)

// Settler moves a sale payment to the previous owner. It either completes the
// transfer or returns an error having moved nothing.
type Settler interface {
	Settle(ctx context.Context, s models.Settlement) error
}

// Reverser is implemented by settlers able to undo a completed settlement.
type Reverser interface {
	Reverse(ctx context.Context, s models.Settlement) error
}

// Publisher receives committed ledger events.
type Publisher interface {
	Publish(ctx context.Context, event models.ParcelEvent) error
}

// Registry is the contract surface exposed to transports.
type Registry interface {
	Register(ctx context.Context, caller models.Identity, location, parcelID string, declaredValue decimal.Decimal) (models.OwnershipRecord, error)
	Transfer(ctx context.Context, caller, newOwner models.Identity, parcelID string) (models.OwnershipRecord, error)
	Sell(ctx context.Context, caller, buyer models.Identity, parcelID string, payment decimal.Decimal) (models.OwnershipRecord, error)
	Verify(ctx context.Context, parcelID string) (models.OwnershipRecord, error)
	List(ctx context.Context, owner models.Identity) ([]models.OwnershipRecord, error)
}

// Service is the single authority over parcel ownership records. Mutations are
// serialised so a parcel can never be sold or transferred twice concurrently.
type Service struct {
	mu        sync.Mutex
	repo      repository.ParcelRepository
	settler   Settler
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewService wires a ledger over the given repository and settlement primitive.
// A nil publisher disables event publication.
func NewService(repo repository.ParcelRepository, settler Settler, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		settler:   settler,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Register creates the record for a parcel that has never been registered,
// owned by the caller.
func (s *Service) Register(ctx context.Context, caller models.Identity, location, parcelID string, declaredValue decimal.Decimal) (models.OwnershipRecord, error) {
	switch {
	case strings.TrimSpace(parcelID) == "":
		return models.OwnershipRecord{}, newError(KindInvalidRequest, parcelID, errors.New("parcel id is required"))
	case caller == "":
		return models.OwnershipRecord{}, newError(KindInvalidRequest, parcelID, errors.New("caller identity is required"))
	case declaredValue.IsNegative():
		return models.OwnershipRecord{}, newError(KindInvalidRequest, parcelID, errors.New("declared value must not be negative"))
	}

	now := s.now()
	record := models.OwnershipRecord{
		Owner:         caller,
		Location:      location,
		ParcelID:      parcelID,
		DeclaredValue: declaredValue,
		RegisteredAt:  now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	err := s.repo.Insert(ctx, record)
	s.mu.Unlock()

	if errors.Is(err, repository.ErrDuplicate) {
		return models.OwnershipRecord{}, newError(KindAlreadyRegistered, parcelID, nil)
	}
	if err != nil {
		return models.OwnershipRecord{}, fmt.Errorf("register parcel %s: %w", parcelID, err)
	}

	s.logger.Info("parcel registered",
		zap.String("parcel_id", parcelID),
		zap.String("owner", string(caller)),
		zap.String("declared_value", declaredValue.String()))

	s.publish(ctx, models.ParcelEvent{
		Type:     models.EventRegistered,
		ParcelID: parcelID,
		Location: location,
		To:       caller,
		Amount:   declaredValue,
	})

	return record, nil
}

// Transfer hands the parcel to newOwner free of charge. Only the current owner may transfer.
func (s *Service) Transfer(ctx context.Context, caller, newOwner models.Identity, parcelID string) (models.OwnershipRecord, error) {
	if newOwner == "" {
		return models.OwnershipRecord{}, newError(KindInvalidRequest, parcelID, errors.New("new owner is required"))
	}

	s.mu.Lock()
	record, err := s.authorize(ctx, caller, parcelID)
	if err == nil {
		record, err = s.commitOwner(ctx, record, newOwner)
	}
	s.mu.Unlock()
	if err != nil {
		return models.OwnershipRecord{}, err
	}

	s.logger.Info("parcel transferred",
		zap.String("parcel_id", parcelID),
		zap.String("from", string(caller)),
		zap.String("to", string(newOwner)))

	s.publish(ctx, models.ParcelEvent{
		Type:     models.EventTransferred,
		ParcelID: parcelID,
		Location: record.Location,
		From:     caller,
		To:       newOwner,
		Amount:   decimal.Zero,
	})

	return record, nil
}

// Sell hands the parcel to buyer against a payment that must exactly equal the
// declared value. The payment is supplied by the caller, who must be the
// current owner, and is settled to the previous owner before the ownership
// change is committed. If settlement fails nothing changes.
func (s *Service) Sell(ctx context.Context, caller, buyer models.Identity, parcelID string, payment decimal.Decimal) (models.OwnershipRecord, error) {
	if buyer == "" {
		return models.OwnershipRecord{}, newError(KindInvalidRequest, parcelID, errors.New("buyer is required"))
	}

	s.mu.Lock()
	record, settlement, err := s.sell(ctx, caller, buyer, parcelID, payment)
	s.mu.Unlock()
	if err != nil {
		return models.OwnershipRecord{}, err
	}

	s.logger.Info("parcel sold",
		zap.String("parcel_id", parcelID),
		zap.String("from", string(settlement.Payee)),
		zap.String("to", string(buyer)),
		zap.String("settlement_id", settlement.ID),
		zap.String("amount", payment.String()))

	s.publish(ctx, models.ParcelEvent{
		Type:     models.EventSold,
		ParcelID: parcelID,
		Location: record.Location,
		From:     settlement.Payee,
		To:       buyer,
		Amount:   payment,
	})

	return record, nil
}

func (s *Service) sell(ctx context.Context, caller, buyer models.Identity, parcelID string, payment decimal.Decimal) (models.OwnershipRecord, models.Settlement, error) {
	record, err := s.authorize(ctx, caller, parcelID)
	if err != nil {
		return models.OwnershipRecord{}, models.Settlement{}, err
	}
	if !payment.Equal(record.DeclaredValue) {
		return models.OwnershipRecord{}, models.Settlement{}, newError(KindWrongPayment, parcelID,
			fmt.Errorf("got %s, want %s", payment, record.DeclaredValue))
	}

	settlement := models.Settlement{
		ID:        s.newID(),
		ParcelID:  parcelID,
		Payer:     caller,
		Payee:     record.Owner,
		Amount:    payment,
		CreatedAt: s.now(),
	}
	if err := s.settler.Settle(ctx, settlement); err != nil {
		s.logger.Warn("settlement failed",
			zap.String("parcel_id", parcelID),
			zap.String("settlement_id", settlement.ID),
			zap.Error(err))
		return models.OwnershipRecord{}, models.Settlement{}, newError(KindSettlementFailure, parcelID, err)
	}

	updated, err := s.commitOwner(ctx, record, buyer)
	if err != nil {
		s.reverse(ctx, settlement)
		return models.OwnershipRecord{}, models.Settlement{}, err
	}
	return updated, settlement, nil
}

// Verify returns the current record of a registered parcel. It never mutates state.
func (s *Service) Verify(ctx context.Context, parcelID string) (models.OwnershipRecord, error) {
	record, err := s.repo.Get(ctx, parcelID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.OwnershipRecord{}, newError(KindNotRegistered, parcelID, nil)
	}
	if err != nil {
		return models.OwnershipRecord{}, fmt.Errorf("verify parcel %s: %w", parcelID, err)
	}
	return record, nil
}

// List returns current records ordered by parcel id, restricted to owner when set.
func (s *Service) List(ctx context.Context, owner models.Identity) ([]models.OwnershipRecord, error) {
	records, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	return records, nil
}

// authorize loads the record and checks the caller currently owns it.
func (s *Service) authorize(ctx context.Context, caller models.Identity, parcelID string) (models.OwnershipRecord, error) {
	record, err := s.Verify(ctx, parcelID)
	if err != nil {
		return models.OwnershipRecord{}, err
	}
	if caller == "" || record.Owner != caller {
		return models.OwnershipRecord{}, newError(KindUnauthorized, parcelID, nil)
	}
	return record, nil
}

func (s *Service) commitOwner(ctx context.Context, record models.OwnershipRecord, to models.Identity) (models.OwnershipRecord, error) {
	at := s.now()
	if err := s.repo.UpdateOwner(ctx, record.ParcelID, record.Owner, to, at); err != nil {
		return models.OwnershipRecord{}, fmt.Errorf("commit owner of parcel %s: %w", record.ParcelID, err)
	}
	record.Owner = to
	record.UpdatedAt = at
	return record, nil
}

func (s *Service) reverse(ctx context.Context, settlement models.Settlement) {
	reverser, ok := s.settler.(Reverser)
	if !ok {
		s.logger.Error("ownership commit failed after settlement and settler cannot reverse",
			zap.String("parcel_id", settlement.ParcelID),
			zap.String("settlement_id", settlement.ID))
		return
	}
	// The caller's context may already be done; the reversal must still run.
	if err := reverser.Reverse(context.WithoutCancel(ctx), settlement); err != nil {
		s.logger.Error("failed to reverse settlement",
			zap.String("parcel_id", settlement.ParcelID),
			zap.String("settlement_id", settlement.ID),
			zap.Error(err))
		return
	}
	s.logger.Warn("settlement reversed after failed ownership commit",
		zap.String("parcel_id", settlement.ParcelID),
		zap.String("settlement_id", settlement.ID))
}

func (s *Service) publish(ctx context.Context, event models.ParcelEvent) {
	if s.publisher == nil {
		return
	}
	event.ID = s.newID()
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish ledger event",
			zap.String("event", string(event.Type)),
			zap.String("parcel_id", event.ParcelID),
			zap.Error(err))
	}
}
