package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/landregistry/internal/domain/models"
)

var (
	// ErrInsufficientFunds indicates the payer cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAccountClosed indicates the destination account cannot receive funds.
	ErrAccountClosed = errors.New("account closed")
	// ErrInvalidAmount indicates a negative or, for deposits, non-positive amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrUnknownSettlement indicates a reversal for a settlement the book never applied.
	ErrUnknownSettlement = errors.New("unknown settlement")
	// ErrDuplicateSettlement indicates the settlement id was already applied.
	ErrDuplicateSettlement = errors.New("settlement already applied")
)

type account struct {
	balance decimal.Decimal
	closed  bool
}

// Book is an in-process balance book. Each settlement debits the payer and
// credits the payee in one step, or does nothing.
type Book struct {
	mu       sync.Mutex
	accounts map[models.Identity]*account
	applied  map[string]models.Settlement
	logger   *zap.Logger
}

// NewBook returns an empty book.
func NewBook(logger *zap.Logger) *Book {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{
		accounts: make(map[models.Identity]*account),
		applied:  make(map[string]models.Settlement),
		logger:   logger,
	}
}

func (b *Book) account(id models.Identity) *account {
	acc, ok := b.accounts[id]
	if !ok {
		acc = &account{balance: decimal.Zero}
		b.accounts[id] = acc
	}
	return acc
}

// Deposit funds an account.
func (b *Book) Deposit(_ context.Context, id models.Identity, amount decimal.Decimal) (models.Account, error) {
	if !amount.IsPositive() {
		return models.Account{}, fmt.Errorf("deposit %s: %w", amount, ErrInvalidAmount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc := b.account(id)
	if acc.closed {
		return models.Account{}, fmt.Errorf("deposit into %s: %w", id, ErrAccountClosed)
	}
	acc.balance = acc.balance.Add(amount)

	b.logger.Debug("account funded", zap.String("identity", string(id)), zap.String("amount", amount.String()))
	return models.Account{Identity: id, Balance: acc.balance}, nil
}

// Balance reports an account; unknown accounts hold zero.
func (b *Book) Balance(_ context.Context, id models.Identity) models.Account {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[id]
	if !ok {
		return models.Account{Identity: id, Balance: decimal.Zero}
	}
	return models.Account{Identity: id, Balance: acc.balance, Closed: acc.closed}
}

// Close stops an account from receiving funds.
func (b *Book) Close(_ context.Context, id models.Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.account(id).closed = true
}

// Settle moves the settlement amount from payer to payee.
func (b *Book) Settle(_ context.Context, s models.Settlement) error {
	if s.Amount.IsNegative() {
		return fmt.Errorf("settle %s: %w", s.ID, ErrInvalidAmount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.applied[s.ID]; ok {
		return fmt.Errorf("settle %s: %w", s.ID, ErrDuplicateSettlement)
	}
	if err := b.move(s.Payer, s.Payee, s.Amount); err != nil {
		return fmt.Errorf("settle %s: %w", s.ID, err)
	}
	b.applied[s.ID] = s

	b.logger.Info("settlement applied",
		zap.String("settlement_id", s.ID),
		zap.String("parcel_id", s.ParcelID),
		zap.String("payer", string(s.Payer)),
		zap.String("payee", string(s.Payee)),
		zap.String("amount", s.Amount.String()))
	return nil
}

// Reverse undoes a settlement previously applied by Settle.
func (b *Book) Reverse(_ context.Context, s models.Settlement) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	applied, ok := b.applied[s.ID]
	if !ok {
		return fmt.Errorf("reverse %s: %w", s.ID, ErrUnknownSettlement)
	}
	// Refunds go back to the payer even if it has since been closed.
	payee := b.account(applied.Payee)
	if payee.balance.LessThan(applied.Amount) {
		return fmt.Errorf("reverse %s: %w", s.ID, ErrInsufficientFunds)
	}
	payee.balance = payee.balance.Sub(applied.Amount)
	payer := b.account(applied.Payer)
	payer.balance = payer.balance.Add(applied.Amount)
	delete(b.applied, s.ID)

	b.logger.Info("settlement reversed", zap.String("settlement_id", s.ID))
	return nil
}

func (b *Book) move(from, to models.Identity, amount decimal.Decimal) error {
	payer := b.account(from)
	payee := b.account(to)

	if payee.closed {
		return fmt.Errorf("credit %s: %w", to, ErrAccountClosed)
	}
	if payer.balance.LessThan(amount) {
		return fmt.Errorf("debit %s: %w", from, ErrInsufficientFunds)
	}
	payer.balance = payer.balance.Sub(amount)
	payee.balance = payee.balance.Add(amount)
	return nil
}
