package adb

// FieldKind discriminates what a schema field or array element holds. The
// original C implementation recovers an enclosing schema record from a
// field's kind byte via pointer arithmetic (container_of); spec §9's
// Design Notes call for a tagged variant instead, dispatched by this enum,
// with the concrete schema reachable through Field.Object/Scalar/Adb below.
type FieldKind uint8

const (
	KindInt FieldKind = iota
	KindBlob
	KindObject
	KindArray
	KindADB
)

// ScalarSchema describes how to compare and parse a scalar (INT or BLOB)
// value. Compare and FromString are supplied by the caller; the engine
// never interprets scalar bytes itself beyond the tagged encoding in
// val.go.
type ScalarSchema struct {
	Kind FieldKind // KindInt or KindBlob

	// Compare orders two values, each potentially in a different database.
	Compare func(db1 *DB, v1 Val, db2 *DB, v2 Val) int

	// FromString parses text into a Val committed into db. Returns an
	// error wrapped with ErrNotSupported if the text is not a valid
	// encoding for this scalar.
	FromString func(db *DB, text []byte) (Val, error)
}

// Field is one entry in an ObjectSchema's field list, or (for an array
// schema) the sole entry describing every element.
type Field struct {
	Name string
	Kind FieldKind

	Scalar *ScalarSchema      // set when Kind is KindInt or KindBlob
	Object *ObjectSchema      // set when Kind is KindObject or KindArray
	Adb    *AdbSchema         // set when Kind is KindADB
}

// ObjectSchema describes an OBJECT or ARRAY value: its ordered field list
// (for an array, exactly one field describing the element type) and
// optional callbacks.
type ObjectSchema struct {
	// Kind is KindObject or KindArray; it names what this schema
	// describes, not a field's kind.
	Kind FieldKind

	// Fields is the field list. Field indices handed to reader/writer
	// methods are 1-based (index 0 addresses the vector's length slot);
	// Fields[i-1] is the descriptor for field index i.
	Fields []Field

	// Compare orders two object views under this schema. Required for any
	// schema used as an array element schema that will be sorted, and
	// for nested-object field comparisons via RoCmp.
	Compare func(o1, o2 *ObjView) int

	// PreCommit runs just before a builder commits its vector to the
	// arena, with the chance to fill in or normalize fields that have
	// not yet been set (spec §4.3 "Objects and arrays").
	PreCommit func(b *Builder)

	// GetDefaultInt, if set, supplies the value RoInt returns for field i
	// when the stored slot is Null. The writer does not consult it: a
	// field set to its default value is still stored.
	GetDefaultInt func(field int) uint32

	// FromString parses text and populates the fields/elements of b,
	// invoked by WFromString. The caller commits b afterward.
	FromString func(b *Builder, text []byte) error
}

// AdbSchema describes a KindADB field: a nested container stored as an
// arena blob. Schema is the object schema of the nested container's root.
type AdbSchema struct {
	Schema *ObjectSchema
}

// FieldByName returns the 1-based field index whose Name matches name, or
// 0 if none match. Mirrors adb_s_field_by_name from the original source,
// for callers that resolve field names (for example in a FromString
// callback); nothing inside this module calls it.
func (s *ObjectSchema) FieldByName(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i + 1
		}
	}
	return 0
}

// FieldByNameBlob is FieldByName taking a byte slice, avoiding an
// allocation when the name comes from an arena blob rather than a Go
// string literal.
func (s *ObjectSchema) FieldByNameBlob(name []byte) int {
	return s.FieldByName(string(name))
}

// fieldAt returns the schema descriptor governing slot i of an object
// built/read under s. For an array schema every slot shares Fields[0]; for
// an object schema slot i uses Fields[i-1]. i is 1-based; i==0 (the length
// slot) is never a valid argument.
func (s *ObjectSchema) fieldAt(i int) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	if s.Kind == KindArray || s.Kind == KindADB {
		if len(s.Fields) == 0 {
			return Field{}, false
		}
		return s.Fields[0], true
	}
	if i < 1 || i > len(s.Fields) {
		return Field{}, false
	}
	return s.Fields[i-1], true
}

// childSchema derives the ObjectSchema governing a nested object/array
// value reachable through field i of an object built/read under s,
// including the KindADB case where the nested container's own schema is
// recovered through AdbSchema. Mirrors adb_wo_init_val.
func (s *ObjectSchema) childSchema(i int) *ObjectSchema {
	f, ok := s.fieldAt(i)
	if !ok {
		return nil
	}
	switch f.Kind {
	case KindObject, KindArray:
		return f.Object
	case KindADB:
		if f.Adb == nil {
			return nil
		}
		return f.Adb.Schema
	default:
		return nil
	}
}
