package adb

// Root returns the database's root value: the final 4 bytes of the arena
// (spec §4.2 root). An arena shorter than 4 bytes has no root and Root
// returns Null.
func Root(db *DB) Val {
	a := db.arena
	if len(a) < 4 {
		return Null
	}
	return Val(getU32(a[len(a)-4:]))
}

// Int returns the unsigned integer v holds: the inline payload for
// TypeInt, the little-endian word at v's offset for TypeInt32, or 0 for
// any other tag (spec §4.2 int).
func Int(db *DB, v Val) uint32 {
	switch v.Type() {
	case TypeInt:
		return v.Payload()
	case TypeInt32:
		off := v.Payload()
		if !db.inRange(off, 4) {
			return 0
		}
		return getU32(db.arena[off : off+4])
	default:
		return 0
	}
}

// Blob returns the byte slice v holds, decoding the length-prefix width
// implied by v's tag. Any bounds or tag mismatch yields a nil slice
// rather than an error (spec §4.2 blob: "on any failure returns the
// empty/null blob").
func Blob(db *DB, v Val) []byte {
	var prefixLen uint32
	switch v.Type() {
	case TypeBlob8:
		prefixLen = 1
	case TypeBlob16:
		prefixLen = 2
	case TypeBlob32:
		prefixLen = 4
	default:
		return nil
	}
	off := v.Payload()
	if !db.inRange(off, prefixLen) {
		return nil
	}
	var n uint32
	switch prefixLen {
	case 1:
		n = uint32(db.arena[off])
	case 2:
		n = uint32(getU16(db.arena[off : off+2]))
	case 4:
		n = getU32(db.arena[off : off+4])
	}
	start := off + prefixLen
	if !db.inRange(start, n) {
		return nil
	}
	return db.arena[start : start+n]
}

// inRange reports whether the half-open range [off, off+n) lies within
// the arena, guarding against the uint32 wraparound a pathological
// offset could otherwise trigger.
func (db *DB) inRange(off, n uint32) bool {
	end := off + n
	if end < off {
		return false
	}
	return end <= uint32(len(db.arena))
}

// ObjView is the result of navigating to an OBJECT or ARRAY value: a
// window onto its value vector plus enough context to interpret field
// indices against the governing schema (spec §4.2 obj).
type ObjView struct {
	DB     *DB
	Schema *ObjectSchema
	vec    uint32 // arena offset of the vector's first (length) slot
	n      uint32 // vector length, including the length slot
	ok     bool
}

// Obj navigates to v as an OBJECT or ARRAY value under schema. Any
// mismatch (wrong tag, out-of-range vector) yields a degenerate view
// with N()==1 so every field read returns Null, matching the reader's
// no-throw navigation contract.
func Obj(db *DB, v Val, schema *ObjectSchema) *ObjView {
	if v.Type() != TypeObject && v.Type() != TypeArray {
		return &ObjView{DB: db, Schema: schema, n: 1}
	}
	off := v.Payload()
	if !db.inRange(off, 4) {
		return &ObjView{DB: db, Schema: schema, n: 1}
	}
	n := getU32(db.arena[off : off+4])
	// Guard against n*4 overflowing uint32 before it ever reaches
	// inRange: divide instead of multiplying the untrusted length.
	if n == 0 || n > (uint32(len(db.arena))-off)/4 {
		return &ObjView{DB: db, Schema: schema, n: 1}
	}
	return &ObjView{DB: db, Schema: schema, vec: off, n: n, ok: true}
}

// N returns the view's vector length, including the length slot (so a
// one-field object has N()==2).
func (o *ObjView) N() uint32 { return o.n }

// RoVal returns the vector slot at 1-based field index i, or Null if i
// is out of range (spec §4.2 ro_val).
func (o *ObjView) RoVal(i int) Val {
	if !o.ok || i < 1 || uint32(i) >= o.n {
		return Null
	}
	off := o.vec + uint32(i)*4
	return Val(getU32(o.DB.arena[off : off+4]))
}

// fieldSchema returns the Field descriptor governing index i: for
// arrays it is always Fields[0] regardless of i (spec §4.2: "the field
// schema is always the array's element schema").
func (o *ObjView) fieldSchema(i int) (Field, bool) {
	return o.Schema.fieldAt(i)
}

// RoInt returns field i as an unsigned integer. If the stored slot is
// Null and the schema supplies GetDefaultInt, that default is returned
// instead (spec §4.2 ro_int default substitution).
func (o *ObjView) RoInt(i int) uint32 {
	v := o.RoVal(i)
	if v.IsNull() && o.Schema != nil && o.Schema.GetDefaultInt != nil {
		return o.Schema.GetDefaultInt(i)
	}
	return Int(o.DB, v)
}

// RoBlob returns field i as a byte slice.
func (o *ObjView) RoBlob(i int) []byte {
	return Blob(o.DB, o.RoVal(i))
}

// unwrapAdb navigates v as a KindADB field's nested container: the blob v
// points to is the nested container's full arena, mapped fresh and
// navigated from its own root (spec §9 "Design Notes": KindADB dispatch).
func unwrapAdb(db *DB, v Val, schema *ObjectSchema) *ObjView {
	blob := Blob(db, v)
	if blob == nil {
		return &ObjView{DB: db, Schema: schema, n: 1}
	}
	inner := NewMapped(blob, schema, nil)
	return Obj(inner, Root(inner), schema)
}

// RoObj navigates field i as a nested OBJECT/ARRAY/ADB value, using the
// child schema the parent schema's field descriptor supplies.
func (o *ObjView) RoObj(i int) *ObjView {
	child := o.Schema.childSchema(i)
	v := o.RoVal(i)
	if f, ok := o.fieldSchema(i); ok && f.Kind == KindADB {
		return unwrapAdb(o.DB, v, child)
	}
	return Obj(o.DB, v, child)
}

// elemCompare orders two values of the same field kind, dispatching to
// the scalar comparator for INT/BLOB, the child schema's comparator for
// OBJECT/ARRAY, or the nested container's comparator for ADB (spec §4.2
// ro_cmp, spec §4.3 "Sort and unique": the same per-kind dispatch also
// orders array elements, which have no enclosing object view of their
// own).
func elemCompare(f Field, db1 *DB, v1 Val, db2 *DB, v2 Val) int {
	switch f.Kind {
	case KindInt, KindBlob:
		if f.Scalar == nil || f.Scalar.Compare == nil {
			return 0
		}
		return f.Scalar.Compare(db1, v1, db2, v2)
	case KindObject, KindArray:
		if f.Object == nil || f.Object.Compare == nil {
			return 0
		}
		return f.Object.Compare(Obj(db1, v1, f.Object), Obj(db2, v2, f.Object))
	case KindADB:
		if f.Adb == nil || f.Adb.Schema == nil || f.Adb.Schema.Compare == nil {
			return 0
		}
		return f.Adb.Schema.Compare(unwrapAdb(db1, v1, f.Adb.Schema), unwrapAdb(db2, v2, f.Adb.Schema))
	default:
		return 0
	}
}

// RoCmp orders o1's and o2's field i values under the comparator the
// field's kind registers. o1 and o2 must share the same schema (spec
// §4.2 ro_cmp).
func RoCmp(o1, o2 *ObjView, i int) int {
	f, ok := o1.fieldSchema(i)
	if !ok {
		return 0
	}
	return elemCompare(f, o1.DB, o1.RoVal(i), o2.DB, o2.RoVal(i))
}

// RaFind searches a sorted array view for needle (owned by needleDB)
// under the array's element-kind comparator, resuming from cursor: a
// cursor of 0 performs a fresh binary search (then walks left to the
// first of any equal run); any other cursor advances by one and
// confirms equality at the new position. Returns the 1-based index of a
// match, or -1 (spec §4.2 ra_find).
func RaFind(arr *ObjView, cursor int, needleDB *DB, needle Val) int {
	if arr.Schema == nil || len(arr.Schema.Fields) == 0 {
		return -1
	}
	field := arr.Schema.Fields[0]
	last := int(arr.n) - 1 // number of elements (excluding the length slot)
	cmp := func(v Val) int { return elemCompare(field, arr.DB, v, needleDB, needle) }

	if cursor != 0 {
		next := cursor + 1
		if next < 1 || next > last {
			return -1
		}
		if cmp(arr.RoVal(next)) == 0 {
			return next
		}
		return -1
	}

	lo, hi := 1, last
	found := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		c := cmp(arr.RoVal(mid))
		switch {
		case c == 0:
			found = mid
			hi = mid - 1 // keep searching left for the first equal element
		case c < 0:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return found
}
