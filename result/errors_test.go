package result

import (
	"errors"
	"strings"
	"testing"
)

func TestTypedErrorsUnwrapToKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{&InvalidInputError{Field: "stake"}, ErrInvalidInput},
		{&InvalidSignerError{}, ErrInvalidSigner},
		{&InvalidKeyError{Key: "0xNOPE"}, ErrInvalidKey},
		{&PersistenceError{Reason: "no digest"}, ErrPersistence},
		{&PreconditionError{Reason: "already reported"}, ErrPrecondition},
		{&TransactionError{Err: errors.New("reverted")}, ErrTransaction},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.kind) {
			t.Fatalf("%T does not unwrap to its kind sentinel", tc.err)
		}
	}
}

func TestKindsAreDisjoint(t *testing.T) {
	err := &PreconditionError{Reason: "active incident"}
	for _, other := range []error{ErrInvalidInput, ErrInvalidSigner, ErrInvalidKey, ErrPersistence, ErrTransaction} {
		if errors.Is(err, other) {
			t.Fatalf("precondition error matches unrelated kind %v", other)
		}
	}
}

func TestWrappedCausesStayReachable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tx := &TransactionError{Err: cause}
	if !errors.Is(tx, cause) {
		t.Fatal("transaction cause lost in wrapping")
	}
	if !errors.Is(tx, ErrTransaction) {
		t.Fatal("transaction kind lost in wrapping")
	}

	persist := &PersistenceError{Reason: "content store unavailable", Err: cause}
	if !errors.Is(persist, cause) || !errors.Is(persist, ErrPersistence) {
		t.Fatal("persistence wrapping dropped kind or cause")
	}
}

func TestErrorsAsRecoversDetail(t *testing.T) {
	var err error = &InvalidInputError{Field: "coverKey"}

	var invalid *InvalidInputError
	if !errors.As(err, &invalid) || invalid.Field != "coverKey" {
		t.Fatalf("field detail lost: %v", err)
	}
	if !strings.Contains(err.Error(), "coverKey") {
		t.Fatalf("message omits the field: %q", err.Error())
	}
}

func TestSuccessEnvelope(t *testing.T) {
	wrapped := Success(map[string]string{"hash": "Qm"})
	if wrapped.Status != StatusSuccess {
		t.Fatalf("status = %s", wrapped.Status)
	}
	if wrapped.Result == nil {
		t.Fatal("success envelope lost its payload")
	}
}
