package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/landregistry/internal/domain/models"
)

func one() decimal.Decimal { return decimal.NewFromInt(1) }

func TestDeposit(t *testing.T) {
	ctx := context.Background()
	book := NewBook(nil)

	if _, err := book.Deposit(ctx, "alice", decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero deposit err = %v", err)
	}

	acc, err := book.Deposit(ctx, "alice", decimal.RequireFromString("2.5"))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !acc.Balance.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("balance = %s", acc.Balance)
	}

	book.Close(ctx, "bob")
	if _, err := book.Deposit(ctx, "bob", one()); !errors.Is(err, ErrAccountClosed) {
		t.Fatalf("closed deposit err = %v", err)
	}
}

func TestSettle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		prepare func(*Book)
		s       models.Settlement
		wantErr error
		payer   string
		payee   string
	}{
		{
			name:    "moves funds",
			prepare: func(b *Book) { _, _ = b.Deposit(ctx, "buyer", one()) },
			s:       models.Settlement{ID: "s1", Payer: "buyer", Payee: "owner", Amount: one()},
			payer:   "0",
			payee:   "1",
		},
		{
			name:    "insufficient funds",
			prepare: func(*Book) {},
			s:       models.Settlement{ID: "s1", Payer: "buyer", Payee: "owner", Amount: one()},
			wantErr: ErrInsufficientFunds,
			payer:   "0",
			payee:   "0",
		},
		{
			name: "payee cannot receive",
			prepare: func(b *Book) {
				_, _ = b.Deposit(ctx, "buyer", one())
				b.Close(ctx, "owner")
			},
			s:       models.Settlement{ID: "s1", Payer: "buyer", Payee: "owner", Amount: one()},
			wantErr: ErrAccountClosed,
			payer:   "1",
			payee:   "0",
		},
		{
			name:    "negative amount",
			prepare: func(*Book) {},
			s:       models.Settlement{ID: "s1", Payer: "buyer", Payee: "owner", Amount: decimal.NewFromInt(-1)},
			wantErr: ErrInvalidAmount,
			payer:   "0",
			payee:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := NewBook(nil)
			tt.prepare(book)

			err := book.Settle(ctx, tt.s)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("settle: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			if got := book.Balance(ctx, "buyer").Balance; !got.Equal(decimal.RequireFromString(tt.payer)) {
				t.Errorf("payer balance = %s, want %s", got, tt.payer)
			}
			if got := book.Balance(ctx, "owner").Balance; !got.Equal(decimal.RequireFromString(tt.payee)) {
				t.Errorf("payee balance = %s, want %s", got, tt.payee)
			}
		})
	}
}

func TestSettleRejectsReplay(t *testing.T) {
	ctx := context.Background()
	book := NewBook(nil)
	_, _ = book.Deposit(ctx, "buyer", decimal.NewFromInt(2))

	s := models.Settlement{ID: "s1", Payer: "buyer", Payee: "owner", Amount: one()}
	if err := book.Settle(ctx, s); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := book.Settle(ctx, s); !errors.Is(err, ErrDuplicateSettlement) {
		t.Fatalf("replay err = %v", err)
	}
	if got := book.Balance(ctx, "owner").Balance; !got.Equal(one()) {
		t.Fatalf("owner balance = %s, want 1", got)
	}
}

func TestReverse(t *testing.T) {
	ctx := context.Background()
	book := NewBook(nil)
	_, _ = book.Deposit(ctx, "buyer", one())

	s := models.Settlement{ID: "s1", Payer: "buyer", Payee: "owner", Amount: one()}
	if err := book.Reverse(ctx, s); !errors.Is(err, ErrUnknownSettlement) {
		t.Fatalf("reverse before settle err = %v", err)
	}
	if err := book.Settle(ctx, s); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := book.Reverse(ctx, s); err != nil {
		t.Fatalf("reverse: %v", err)
	}

	if got := book.Balance(ctx, "buyer").Balance; !got.Equal(one()) {
		t.Errorf("buyer balance = %s, want 1", got)
	}
	if got := book.Balance(ctx, "owner").Balance; !got.IsZero() {
		t.Errorf("owner balance = %s, want 0", got)
	}
}
