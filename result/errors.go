package result

import (
	"errors"
	"fmt"
)

// Kind sentinels. Typed errors below unwrap to exactly one of these so that
// callers can classify failures with errors.Is without matching on concrete
// types.
var (
	ErrInvalidInput  = errors.New("result: invalid input")
	ErrInvalidSigner = errors.New("result: signer cannot produce an address")
	ErrInvalidKey    = errors.New("result: key does not resolve to a record")
	ErrPersistence   = errors.New("result: content store returned no digest")
	ErrPrecondition  = errors.New("result: ledger state precondition failed")
	ErrTransaction   = errors.New("result: transaction submission failed")
)

// InvalidInputError reports the first required field found missing, empty
// or zero. Raised before any I/O.
type InvalidInputError struct {
	Field string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s is required", e.Field)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// InvalidSignerError reports a credential that cannot sign writes.
type InvalidSignerError struct{}

func (e *InvalidSignerError) Error() string {
	return "invalid signer: a write-capable credential is required"
}

func (e *InvalidSignerError) Unwrap() error { return ErrInvalidSigner }

// InvalidKeyError reports a lookup key with no on-chain record behind it,
// detected via a zero-sentinel read result.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key: %s does not resolve to an on-chain record", e.Key)
}

func (e *InvalidKeyError) Unwrap() error { return ErrInvalidKey }

// PersistenceError reports an off-chain write that produced no digest. The
// pipeline aborts before anchoring, so no partial on-chain state exists.
type PersistenceError struct {
	Reason string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("persistence failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("persistence failed: %s", e.Reason)
}

func (e *PersistenceError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrPersistence, e.Err}
	}
	return []error{ErrPersistence}
}

// PreconditionError reports a failed ledger-side state check. No on-chain
// write has occurred when it is raised.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.Reason)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

// TransactionError surfaces a connector submission failure unmodified. The
// caller's off-chain content remains persisted but unanchored.
type TransactionError struct {
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed: %v", e.Err)
}

func (e *TransactionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransaction, e.Err}
	}
	return []error{ErrTransaction}
}
