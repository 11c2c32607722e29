package ledger

import "errors"

// Kind classifies a rejected ledger operation.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidRequest
	KindAlreadyRegistered
	KindNotRegistered
	KindUnauthorized
	KindWrongPayment
	KindSettlementFailure
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindInvalidRequest:    "invalid_request",
	KindAlreadyRegistered: "already_registered",
	KindNotRegistered:     "not_registered",
	KindUnauthorized:      "unauthorized",
	KindWrongPayment:      "wrong_payment",
	KindSettlementFailure: "settlement_failure",
}

// Reasons shown to clients. The unauthorized and not-registered texts are
// matched verbatim by existing consumers.
var kindReasons = map[Kind]string{
	KindUnknown:           "The operation failed.",
	KindInvalidRequest:    "The land parcel request is invalid.",
	KindAlreadyRegistered: "This land parcel is already registered.",
	KindNotRegistered:     "This land parcel is not registered.",
	KindUnauthorized:      "Only the current owner can perform this operation.",
	KindWrongPayment:      "The payment must equal the declared value of the land parcel.",
	KindSettlementFailure: "The payment to the current owner could not be settled.",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Reason returns the display message for the kind.
func (k Kind) Reason() string {
	if reason, ok := kindReasons[k]; ok {
		return reason
	}
	return kindReasons[KindUnknown]
}

// Error is returned for every rejected operation. State is unchanged whenever
// an *Error is returned.
type Error struct {
	Kind     Kind
	ParcelID string
	Err      error
}

// Sentinels for use with errors.Is.
var (
	ErrInvalidRequest    = &Error{Kind: KindInvalidRequest}
	ErrAlreadyRegistered = &Error{Kind: KindAlreadyRegistered}
	ErrNotRegistered     = &Error{Kind: KindNotRegistered}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrWrongPayment      = &Error{Kind: KindWrongPayment}
	ErrSettlementFailure = &Error{Kind: KindSettlementFailure}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Reason() + " (" + e.Err.Error() + ")"
	}
	return e.Kind.Reason()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the kind of a ledger error, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, parcelID string, err error) *Error {
	return &Error{Kind: kind, ParcelID: parcelID, Err: err}
}
