package adb

import (
	"github.com/pkgadb/adbc/internal/dedup"
	"github.com/pkgadb/adbc/internal/invariants"
)

// mode discriminates how a DB's arena is owned (spec §3.6).
type mode uint8

const (
	// modeMapped: arena is a slice of a read-only mmap region owned by
	// the DB. Freed by unmapping.
	modeMapped mode = iota
	// modeWritable: arena is a growable, DB-owned byte slice with
	// dedup buckets. Freed by dropping the slice and buckets.
	modeWritable
	// modeStatic: arena points into caller-provided storage. Never
	// grows; no dedup buckets; Free is a no-op on the arena itself.
	modeStatic
)

const initialArenaCap = 8 << 10 // 8 KiB, per spec §4.3 "Raw append"

// defaultNumBuckets sizes the dedup table for a writable database created
// via NewWritable. Callers building very large containers can tune this
// via NewWritableSized.
const defaultNumBuckets = 1021

// unmapper is satisfied by the mapping a Map-mode DB owns; it exists so
// db.go does not need to import vfs directly (avoiding an import cycle,
// since vfs has no reason to know about adb).
type unmapper interface {
	Unmap() error
}

// DB is an ADB database: an arena of tagged values plus, for writable
// databases, the dedup table used to intern repeated writes. A DB is not
// safe for concurrent use from multiple goroutines (spec §5).
type DB struct {
	mode  mode
	arena []byte

	// dedup is nil for mapped and static databases.
	dedup *dedup.Table

	// schema governs the root object/array, used by reader/writer
	// helpers that need field descriptors (Root, Obj, builders).
	schema *ObjectSchema

	mapping unmapper

	// poisoned records the first write error seen by poison (writer.go),
	// per spec §4.3 "Error signalling".
	poisoned error

	// metrics is optional; nil means "don't record" (every Metrics
	// method is a nil-safe no-op).
	metrics *Metrics

	closeCheck invariants.CloseChecker
	closed     bool
}

// NewMapped wraps a read-only byte slice (typically an mmap'd file's ADB
// block payload) as a mapped DB. mapping, if non-nil, is released by
// Free.
func NewMapped(arena []byte, schema *ObjectSchema, mapping unmapper) *DB {
	return &DB{mode: modeMapped, arena: arena, schema: schema, mapping: mapping}
}

// NewWritable returns an empty writable DB with a default-sized dedup
// table.
func NewWritable(schema *ObjectSchema) *DB {
	return NewWritableSized(schema, defaultNumBuckets)
}

// NewWritableSized returns an empty writable DB whose dedup table has
// numBuckets buckets. numBuckets == 0 disables interning (every w_data
// call allocates a fresh arena slot) while still allowing growth.
func NewWritableSized(schema *ObjectSchema, numBuckets int) *DB {
	return &DB{
		mode:   modeWritable,
		arena:  make([]byte, 0, initialArenaCap),
		dedup:  dedup.New(numBuckets),
		schema: schema,
	}
}

// NewStatic wraps caller-provided storage as a non-growable static DB.
// Writes that would grow the arena fail with ErrTooLarge (spec §4.3
// "Precondition for growth").
func NewStatic(arena []byte, schema *ObjectSchema) *DB {
	return &DB{mode: modeStatic, arena: arena, schema: schema}
}

// Schema returns the object schema governing this DB's root value.
func (db *DB) Schema() *ObjectSchema { return db.schema }

// SetMetrics attaches m so subsequent writer and container operations on
// db record counters to it. Passing nil detaches metrics recording.
func (db *DB) SetMetrics(m *Metrics) { db.metrics = m }

// Len returns the current arena length in bytes.
func (db *DB) Len() int { return len(db.arena) }

// Bytes returns the DB's arena. For a writable DB, the returned slice
// aliases internal storage and must not be retained across further
// writes; callers that need a stable serialized form should call this
// only after the final w_root (spec §4.3 "Set root").
func (db *DB) Bytes() []byte { return db.arena }

// IsWritable reports whether this DB accepts further appends (writable,
// not static or mapped).
func (db *DB) IsWritable() bool { return db.mode == modeWritable }

// IsStatic reports whether this DB's arena is non-growable caller storage.
func (db *DB) IsStatic() bool { return db.mode == modeStatic }

// Reset truncates a writable DB's arena back to empty and clears its
// dedup table, so the DB can be reused for a new build without
// reallocating (spec §3.6 Free/Reset; mirrors a connection-pool style
// reuse pattern common when building many small containers in sequence).
func (db *DB) Reset() error {
	if db.mode != modeWritable {
		return markf(ErrNotSupported, "adb: Reset requires a writable database")
	}
	db.arena = db.arena[:0]
	db.dedup.Reset()
	return nil
}

// Free releases resources owned by db: unmaps a mapped DB's mmap region,
// drops a writable DB's arena and dedup buckets. It is an error
// (detected only in invariant/race builds) to call Free twice on the
// same DB.
func (db *DB) Free() error {
	db.closeCheck.Close()
	if db.closed {
		return nil
	}
	db.closed = true
	switch db.mode {
	case modeMapped:
		db.arena = nil
		if db.mapping != nil {
			err := db.mapping.Unmap()
			db.mapping = nil
			return wrapMark(err, ErrIO)
		}
	case modeWritable:
		db.arena = nil
		db.dedup = nil
	case modeStatic:
		db.arena = nil
	}
	return nil
}

// growArena appends zero bytes to extend the arena to at least the
// requested length, doubling capacity as needed (spec §4.3 "Raw
// append"). Only valid on a writable DB.
func (db *DB) growArena(minLen int) error {
	if db.mode != modeWritable {
		return markf(ErrTooLarge, "adb: cannot grow a %s database", db.modeName())
	}
	if minLen <= cap(db.arena) {
		db.arena = db.arena[:minLen]
		return nil
	}
	newCap := cap(db.arena)
	if newCap == 0 {
		newCap = initialArenaCap
	}
	for newCap < minLen {
		newCap *= 2
	}
	grown := make([]byte, minLen, newCap)
	copy(grown, db.arena)
	db.arena = grown
	return nil
}

func (db *DB) modeName() string {
	switch db.mode {
	case modeMapped:
		return "mapped"
	case modeWritable:
		return "writable"
	case modeStatic:
		return "static"
	default:
		return "unknown"
	}
}
