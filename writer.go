package adb

import (
	"sort"

	"github.com/pkgadb/adbc/internal/dedup"
)

// WInt writes v, inlining it when it fits in 28 bits and otherwise
// allocating a 4-byte little-endian payload tagged TypeInt32 (spec §4.3
// "Scalars": w_int).
func WInt(db *DB, v uint32) Val {
	if v < 1<<28 {
		return MakeVal(TypeInt, v)
	}
	buf := [4]byte{}
	putU32(buf[:], v)
	off, err := wData(db, 4, buf[:])
	if err != nil {
		return poison(db, err)
	}
	return MakeVal(TypeInt32, off)
}

// WBlob writes b, choosing the smallest length-prefix width (1, 2, or 4
// bytes) that fits len(b), and interning the prefix+bytes payload as a
// single unit (spec §4.3 "Scalars": w_blob). A zero-length blob writes
// nothing and returns Null.
func WBlob(db *DB, b []byte) Val {
	n := len(b)
	if n == 0 {
		return Null
	}
	switch {
	case n <= 0xff:
		prefix := [1]byte{byte(n)}
		off, err := wData(db, 1, prefix[:], b)
		if err != nil {
			return poison(db, err)
		}
		return MakeVal(TypeBlob8, off)
	case n <= 0xffff:
		prefix := [2]byte{}
		putU16(prefix[:], uint16(n))
		off, err := wData(db, 2, prefix[:], b)
		if err != nil {
			return poison(db, err)
		}
		return MakeVal(TypeBlob16, off)
	case uint64(n) <= 0xffffffff:
		prefix := [4]byte{}
		putU32(prefix[:], uint32(n))
		off, err := wData(db, 4, prefix[:], b)
		if err != nil {
			return poison(db, err)
		}
		return MakeVal(TypeBlob32, off)
	default:
		return poison(db, markf(ErrTooLarge, "adb: blob of %d bytes exceeds BLOB_32 capacity", n))
	}
}

// wData is the raw-append-plus-intern primitive shared by WInt and
// WBlob: it hashes the concatenated fragments, reuses a prior offset on
// a bucket hit, and otherwise appends padded to align and records a new
// entry (spec §4.3 "Raw append", "Interning w_data").
func wData(db *DB, align uint32, fragments ...[]byte) (uint32, error) {
	if db.IsStatic() {
		return 0, markf(ErrTooLarge, "adb: static database cannot grow")
	}
	if !db.IsWritable() {
		return 0, markf(ErrNotSupported, "adb: database is not writable")
	}
	hash, length := dedup.Hash(fragments...)
	if db.dedup != nil {
		if off, found := db.dedup.Lookup(hash, length, align, func(off uint32) bool {
			return fragmentsEqualAt(db, off, fragments)
		}); found {
			db.metrics.recordDedup(true)
			return off, nil
		}
	}
	off, err := rawAppend(db, align, fragments...)
	if err != nil {
		return 0, err
	}
	if db.dedup != nil {
		db.dedup.Insert(hash, length, align, off)
		db.metrics.recordDedup(false)
	}
	return off, nil
}

// rawAppend pads the arena to align, then copies fragments in order,
// returning the offset of the first fragment (spec §4.3 "Raw append").
func rawAppend(db *DB, align uint32, fragments ...[]byte) (uint32, error) {
	cur := uint32(len(db.arena))
	pad := padLen(cur, align)
	var total uint32
	for _, f := range fragments {
		total += uint32(len(f))
	}
	if err := db.growArena(int(cur + pad + total)); err != nil {
		return 0, err
	}
	off := cur + pad
	for i := cur; i < off; i++ {
		db.arena[i] = 0
	}
	pos := off
	for _, f := range fragments {
		copy(db.arena[pos:], f)
		pos += uint32(len(f))
	}
	return off, nil
}

func fragmentsEqualAt(db *DB, off uint32, fragments [][]byte) bool {
	pos := off
	for _, f := range fragments {
		n := uint32(len(f))
		if !db.inRange(pos, n) {
			return false
		}
		if string(db.arena[pos:pos+n]) != string(f) {
			return false
		}
		pos += n
	}
	return true
}

// poison records a reserved SPECIAL ERROR value as db's root-to-be and
// marks db so a subsequent Create refuses to serialize it (spec §4.3
// "Error signalling"). It returns a Val so call sites can write
// `return poison(db, err)` in place of a good value.
func poison(db *DB, err error) Val {
	if db.poisoned == nil {
		db.poisoned = err
	}
	return errVal(poisonCode(err))
}

func poisonCode(err error) uint32 {
	switch {
	case IsKind(err, ErrTooLarge):
		return 1
	case IsKind(err, ErrNotSupported):
		return 2
	case IsKind(err, ErrNotImplemented):
		return 3
	case IsKind(err, ErrIO):
		return 4
	default:
		return 0xff
	}
}

// Poisoned returns the first write error recorded on db via poison, or
// nil if none occurred.
func (db *DB) Poisoned() error { return db.poisoned }

// Builder accumulates fields for an OBJECT, or elements for an ARRAY,
// before committing a single interned vector in one step (spec §4.3
// "Objects and arrays").
type Builder struct {
	db     *DB
	schema *ObjectSchema
	vec    []Val // vec[0] unused here; slots are 1-based, matching field indices
	num    uint32
}

// NewBuilder returns a Builder for schema with capacity slots (the
// maximum field/element count). For an ARRAY builder, cap should be the
// expected maximum element count.
func NewBuilder(db *DB, schema *ObjectSchema, capacity int) *Builder {
	return &Builder{db: db, schema: schema, vec: make([]Val, capacity+1)}
}

// SetInt sets 1-based field i of an OBJECT builder to an integer value.
func (b *Builder) SetInt(i int, v uint32) {
	b.ensure(i)
	b.vec[i] = WInt(b.db, v)
}

// SetBlob sets 1-based field i of an OBJECT builder to a blob value.
func (b *Builder) SetBlob(i int, v []byte) {
	b.ensure(i)
	b.vec[i] = WBlob(b.db, v)
}

// SetVal sets 1-based field i directly to an already-written Val
// (typically the result of committing a nested Builder, or WAdb).
func (b *Builder) SetVal(i int, v Val) {
	b.ensure(i)
	b.vec[i] = v
}

// AppendInt appends an integer element to an ARRAY builder.
func (b *Builder) AppendInt(v uint32) { b.num++; b.SetInt(int(b.num), v) }

// AppendBlob appends a blob element to an ARRAY builder.
func (b *Builder) AppendBlob(v []byte) { b.num++; b.SetBlob(int(b.num), v) }

// AppendVal appends an already-written Val as an ARRAY element.
func (b *Builder) AppendVal(v Val) { b.num++; b.SetVal(int(b.num), v) }

// Val returns the Val currently staged at 1-based slot i, or Null if i
// is out of range or unset. PreCommit callbacks use this to decide
// whether a field still needs a default.
func (b *Builder) Val(i int) Val {
	if i < 1 || i >= len(b.vec) {
		return Null
	}
	return b.vec[i]
}

func (b *Builder) ensure(i int) {
	if i >= len(b.vec) {
		grown := make([]Val, i+1)
		copy(grown, b.vec)
		b.vec = grown
	}
}

// Commit finalizes the builder: runs the schema's PreCommit if set,
// truncates trailing Null slots, interns the resulting vector, and
// returns an OBJECT or ARRAY Val (Null if every slot was empty). The
// builder is reset in place afterward so it can be reused (spec §4.3
// "Objects and arrays").
func (b *Builder) Commit() Val {
	if b.schema != nil && b.schema.PreCommit != nil {
		b.schema.PreCommit(b)
	}
	n := len(b.vec) - 1
	if b.schema != nil && b.schema.Kind == KindArray {
		n = int(b.num)
	}
	for n > 0 && b.vec[n].IsNull() {
		n--
	}
	result := Null
	if n > 0 {
		length := uint32(n + 1)
		lengthBuf := [4]byte{}
		putU32(lengthBuf[:], length)
		payload := make([]byte, 4*length)
		copy(payload[0:4], lengthBuf[:])
		for i := 1; i <= n; i++ {
			buf := [4]byte{}
			putU32(buf[:], uint32(b.vec[i]))
			copy(payload[i*4:], buf[:])
		}
		off, err := wData(b.db, 4, payload)
		if err != nil {
			result = poison(b.db, err)
		} else {
			tag := TypeObject
			if b.schema != nil && b.schema.Kind == KindArray {
				tag = TypeArray
			}
			result = MakeVal(tag, off)
		}
	}
	b.vec = b.vec[:0]
	b.num = 0
	return result
}

// WRoot appends v as the database's root value, 4-byte aligned. The
// caller must invoke this exactly once, after every other commit (spec
// §4.3 "Set root").
func WRoot(db *DB, v Val) error {
	buf := [4]byte{}
	putU32(buf[:], uint32(v))
	_, err := rawAppend(db, 4, buf[:])
	return err
}

// WAdb commits a nested container: the child DB's current bytes (which
// must already end with a root, i.e. the caller already called WRoot on
// child) are written as a single BLOB_32 payload in the parent database;
// the reader unwraps it via ObjView.RoObj when the field's kind is
// KindADB (spec §9 Design Notes, KindADB dispatch). An empty child
// writes nothing and returns Null.
func WAdb(db *DB, child *DB) Val {
	b := child.Bytes()
	if len(b) == 0 {
		return Null
	}
	prefix := [4]byte{}
	putU32(prefix[:], uint32(len(b)))
	off, err := wData(db, 4, prefix[:], b)
	if err != nil {
		return poison(db, err)
	}
	return MakeVal(TypeBlob32, off)
}

// maxCopySlots bounds how many field/element slots WCopy's recursive
// object/array walk copies per level (spec §4.3 "Cross-database copy":
// "at most 512 slots per level").
const maxCopySlots = 512

// WCopy recursively copies v from src into dst, matching src's
// database to its value's tag-appropriate representation. OBJECT/ARRAY
// values are walked slot by slot up to maxCopySlots per level; INT_64
// and BLOB_32 payloads are not supported (spec §4.3 "Cross-database
// copy").
func WCopy(dst *DB, src *DB, v Val) Val {
	switch v.Type() {
	case TypeSpecial, TypeInt:
		return v
	case TypeInt32:
		return WInt(dst, Int(src, v))
	case TypeBlob8, TypeBlob16:
		return WBlob(dst, Blob(src, v))
	case TypeBlob32:
		return poison(dst, markf(ErrNotImplemented, "adb: BLOB_32 copy not implemented"))
	case TypeInt64:
		return poison(dst, markf(ErrNotImplemented, "adb: INT_64 copy not implemented"))
	case TypeObject, TypeArray:
		return copyVector(dst, src, v)
	default:
		return poison(dst, markf(ErrNotImplemented, "adb: copy of unknown tag %d not implemented", v.Type()))
	}
}

func copyVector(dst *DB, src *DB, v Val) Val {
	off := v.Payload()
	if !src.inRange(off, 4) {
		return Null
	}
	n := getU32(src.arena[off : off+4])
	if n == 0 {
		return Null
	}
	if n > maxCopySlots+1 {
		return poison(dst, markf(ErrTooLarge, "adb: object/array of %d slots exceeds copy limit", n))
	}
	if !src.inRange(off, n*4) {
		return Null
	}
	payload := make([]byte, 4*n)
	lenBuf := [4]byte{}
	putU32(lenBuf[:], n)
	copy(payload[0:4], lenBuf[:])
	for i := uint32(1); i < n; i++ {
		slotOff := off + i*4
		slotVal := Val(getU32(src.arena[slotOff : slotOff+4]))
		copied := WCopy(dst, src, slotVal)
		buf := [4]byte{}
		putU32(buf[:], uint32(copied))
		copy(payload[i*4:], buf[:])
	}
	newOff, err := wData(dst, 4, payload)
	if err != nil {
		return poison(dst, err)
	}
	return MakeVal(v.Type(), newOff)
}

// WFromString parses text into a value under schema: for scalar kinds
// it delegates to the scalar schema's FromString; for object/array/adb
// kinds it builds via a transient Builder and the schema's FromString
// callback (spec §4.3 "w_fromstring").
func WFromString(db *DB, field Field, text []byte) (Val, error) {
	switch field.Kind {
	case KindInt, KindBlob:
		if field.Scalar == nil || field.Scalar.FromString == nil {
			return Null, markf(ErrNotSupported, "adb: field %q has no text parser", field.Name)
		}
		return field.Scalar.FromString(db, text)
	case KindObject, KindArray:
		if field.Object == nil || field.Object.FromString == nil {
			return Null, markf(ErrNotSupported, "adb: field %q has no text parser", field.Name)
		}
		b := NewBuilder(db, field.Object, len(field.Object.Fields))
		if err := field.Object.FromString(b, text); err != nil {
			return Null, err
		}
		return b.Commit(), nil
	case KindADB:
		return Null, markf(ErrNotSupported, "adb: WFromString does not support nested containers directly")
	default:
		return Null, unknownKind("WFromString", field.Kind)
	}
}

// WaSort sorts an ARRAY view's elements according to the element
// schema's comparator (dispatching through the element kind, including
// KindADB nested-container comparison via unwrapAdb) and writes the
// sorted elements as a new vector through a fresh builder; the source
// vector is left as it is (spec §4.3 "Sort and unique": wa_sort). It
// returns the new, sorted array Val; db must be writable.
func WaSort(db *DB, arr *ObjView) Val {
	return waSortUnique(db, arr, false)
}

// WaSortUnique sorts then deduplicates adjacent equal elements, leaving
// the array strictly increasing under the element schema's comparator
// (spec §4.3 "Sort and unique": wa_sort_unique invariant).
func WaSortUnique(db *DB, arr *ObjView) Val {
	return waSortUnique(db, arr, true)
}

func waSortUnique(db *DB, arr *ObjView, unique bool) Val {
	n := int(arr.N()) - 1
	if n <= 0 || arr.Schema == nil || len(arr.Schema.Fields) == 0 {
		return Null
	}
	field := arr.Schema.Fields[0]
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i + 1
	}
	cmp := func(v1, v2 Val) int { return elemCompare(field, arr.DB, v1, arr.DB, v2) }
	sort.SliceStable(idx, func(i, j int) bool {
		return cmp(arr.RoVal(idx[i]), arr.RoVal(idx[j])) < 0
	})

	b := NewBuilder(db, arr.Schema, n)
	var prev Val
	var havePrev bool
	for _, i := range idx {
		v := arr.RoVal(i)
		if unique && havePrev && cmp(prev, v) == 0 {
			continue
		}
		b.AppendVal(v)
		prev, havePrev = v, true
	}
	return b.Commit()
}
