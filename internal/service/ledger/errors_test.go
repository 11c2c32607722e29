package ledger

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesKindSentinel(t *testing.T) {
	cause := errors.New("gateway timeout")
	err := fmt.Errorf("wrapped: %w", newError(KindSettlementFailure, "Parcel 1", cause))

	if !errors.Is(err, ErrSettlementFailure) {
		t.Fatal("expected settlement failure")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("must not match another kind")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should be reachable")
	}
	if KindOf(err) != KindSettlementFailure {
		t.Fatalf("kind = %s", KindOf(err))
	}
	if KindOf(cause) != KindUnknown {
		t.Fatalf("plain error kind = %s", KindOf(cause))
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: newError(KindUnauthorized, "p", nil), want: "Only the current owner can perform this operation."},
		{err: newError(KindNotRegistered, "p", nil), want: "This land parcel is not registered."},
		{err: newError(KindInvalidRequest, "", errors.New("parcel id is required")), want: "The land parcel request is invalid. (parcel id is required)"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	if Kind(99).String() != "unknown" || Kind(99).Reason() != "The operation failed." {
		t.Fatal("unknown kinds should fall back")
	}
}
