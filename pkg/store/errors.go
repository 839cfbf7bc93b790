package store

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes categories of failure a Provider can raise. It is
// not a literal Go error type — callers compare with errors.Is against the
// sentinel Err* values, or inspect Kind() on an unwrapped *StoreError.
type ErrorKind int

const (
	// KindConfiguration — invalid or missing option at construction time.
	KindConfiguration ErrorKind = iota
	// KindConnection — failure to establish or tear down the medium.
	KindConnection
	// KindValidation — caller-supplied collection name or identifier is invalid.
	KindValidation
	// KindQuery — medium-level failure during a CRUD or query operation,
	// including duplicate-key conflicts surfaced by the medium.
	KindQuery
	// KindTransaction — illegal transaction state transition.
	KindTransaction
	// KindUnsupported — operation not meaningful for this back-end.
	KindUnsupported
	// KindSync — git-sync wrapper: a remote sync operation failed.
	KindSync
	// KindMergeConflict — git-sync wrapper: a pull could not fast-forward
	// and the configured conflict strategy requires caller resolution.
	KindMergeConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnection:
		return "connection"
	case KindValidation:
		return "validation"
	case KindQuery:
		return "query"
	case KindTransaction:
		return "transaction"
	case KindUnsupported:
		return "unsupported"
	case KindSync:
		return "sync"
	case KindMergeConflict:
		return "merge_conflict"
	default:
		return "unknown"
	}
}

// StoreError is the concrete error type every provider raises. Its Kind
// lets callers branch on the taxonomy in spec §7 without string matching.
type StoreError struct {
	Kind ErrorKind
	Op   string // e.g. "memoryprovider.Create", "fileprovider.flush"
	Err  error  // wrapped cause, may be nil
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("store: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is supports errors.Is(err, store.ErrDuplicateKey) style sentinels by
// comparing kinds when both sides are *StoreError.
func (e *StoreError) Is(target error) bool {
	var other *StoreError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// NewError wraps cause (which may be nil) as a *StoreError of the given kind.
func NewError(kind ErrorKind, op string, cause error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Err: cause}
}

// Errorf is NewError with a formatted cause.
func Errorf(kind ErrorKind, op, format string, args ...any) *StoreError {
	return &StoreError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Sentinel kinds for errors.Is(err, store.ErrX) comparisons that don't care
// about Op or the wrapped cause.
var (
	ErrConfiguration = &StoreError{Kind: KindConfiguration}
	ErrConnection    = &StoreError{Kind: KindConnection}
	ErrValidation    = &StoreError{Kind: KindValidation}
	ErrQuery         = &StoreError{Kind: KindQuery}
	ErrTransaction   = &StoreError{Kind: KindTransaction}
	ErrUnsupported   = &StoreError{Kind: KindUnsupported}
	ErrSync          = &StoreError{Kind: KindSync}
	ErrMergeConflict = &StoreError{Kind: KindMergeConflict}
)

// duplicateKeyMarker tags StoreErrors raised for an existing identifier so
// IsDuplicateKey can distinguish them from other Query-kind failures.
type duplicateKeyMarker struct{}

func (duplicateKeyMarker) Error() string { return "duplicate key" }

// NewDuplicateKeyError builds the Query error raised when Create targets an
// identifier that already exists in the collection; IsDuplicateKey
// recognises it.
func NewDuplicateKeyError(op, collection, id string) *StoreError {
	return &StoreError{
		Kind: KindQuery,
		Op:   op,
		Err:  fmt.Errorf("collection %q: id %q already exists: %w", collection, id, duplicateKeyMarker{}),
	}
}

// IsDuplicateKey reports whether err is a Query error specifically raised
// for a duplicate identifier by NewDuplicateKeyError.
func IsDuplicateKey(err error) bool {
	var m duplicateKeyMarker
	return errors.As(err, &m)
}
