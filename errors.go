package adb

import (
	"github.com/cockroachdb/errors"
)

// Kind classifies an error returned by the engine (spec §7). Kinds are
// sentinel errors: test identity with errors.Is, not type assertion, since
// the concrete error wrapping them carries additional context (offsets,
// block indices, the underlying I/O error).
type Kind struct{ name string }

func (k *Kind) Error() string { return k.name }

var (
	// ErrMalformed covers bad magic, block header overruns, wrong block
	// order, and truncated reads.
	ErrMalformed = &Kind{"adb: malformed container"}
	// ErrSchemaMismatch is returned when a container's schema tag does not
	// match the caller's expected schema.
	ErrSchemaMismatch = &Kind{"adb: schema mismatch"}
	// ErrNoKey is returned by Stream when a DATA block is encountered
	// before any signature has been trusted.
	ErrNoKey = &Kind{"adb: no trusted key"}
	// ErrKeyRejected is returned by Map and OpenBlob when a KeyStore is
	// supplied and no SIG block verifies, including when the container
	// has no SIG block at all.
	ErrKeyRejected = &Kind{"adb: signature rejected"}
	// ErrNotSupported covers an unknown signature version or hash algorithm.
	ErrNotSupported = &Kind{"adb: not supported"}
	// ErrNotImplemented covers the INT_64/BLOB_32 write paths and any
	// schema kind the dispatch table does not recognize at runtime (in
	// non-invariant builds; invariant builds panic instead, see
	// internal/invariants).
	ErrNotImplemented = &Kind{"adb: not implemented"}
	// ErrTooLarge is returned when an object/array copy exceeds the
	// per-level slot cap (maxCopySlots).
	ErrTooLarge = &Kind{"adb: too large"}
	// ErrIO wraps an underlying stream failure.
	ErrIO = &Kind{"adb: io error"}
	// ErrPoisoned is returned by Create when the source database recorded
	// a write failure via poison; it refuses to serialize any bytes.
	ErrPoisoned = &Kind{"adb: database poisoned"}
)

func markf(kind *Kind, format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), kind)
}

func wrapMark(err error, kind *Kind) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, kind)
}

// IsKind reports whether err (or any error it wraps) was marked with
// kind via markf/wrapMark.
func IsKind(err error, kind *Kind) bool {
	return errors.Is(err, kind)
}

// internalError indicates a programming error inside the engine: an
// unhandled schema kind byte, a builder used past its declared capacity
// with a non-defensive path, or similar. In invariant/race builds (see
// internal/invariants) the engine panics as soon as it detects one of
// these; outside those builds it is instead returned as a regular error so
// a long-running process (e.g. a package manager daemon) does not abort.
//
// This resolves spec §9's open question about the source's `assert(1)`
// typo: unknown kinds are a programming error, not an input error.
type internalError struct{ err error }

func (e *internalError) Error() string { return e.err.Error() }
func (e *internalError) Unwrap() error { return e.err }

func newInternalError(format string, args ...interface{}) *internalError {
	return &internalError{err: errors.NewWithDepthf(1, format, args...)}
}
