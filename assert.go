package adb

import "github.com/pkgadb/adbc/internal/invariants"

// unknownKind is called wherever the schema dispatch switch (schema.go)
// falls through to a kind byte it does not recognize. Per spec §9, that is
// always a programming error: the kind byte comes from a compiled-in
// schema descriptor, not from untrusted input. In invariant/race builds we
// abort immediately so the bug surfaces in CI; in ordinary builds we
// return an error marked ErrNotImplemented so a long-running consumer (a
// package manager daemon walking many containers) does not crash on a
// single malformed schema.
func unknownKind(where string, kind FieldKind) error {
	err := newInternalError("adb: %s: unhandled schema kind %d", where, kind)
	if invariants.Enabled {
		panic(err)
	}
	return wrapMark(err, ErrNotImplemented)
}
