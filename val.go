// Package adb implements the ADB container engine: a binary, signed,
// content-addressed document format used to represent package metadata and
// file manifests as a typed, schema-described value tree.
//
// A Database (DB) is either mapped from a file, built incrementally in
// memory, or backed by a caller-provided static buffer. Values (Val) are
// 32-bit tagged words that are either inline integers or offsets into the
// database's arena. The reader and writer functions (Root, Obj, WInt,
// NewBuilder, ...) navigate and build that arena under the guidance of a
// Schema.
package adb

import "encoding/binary"

// Val is a 32-bit tagged word: a 4-bit type tag and a 28-bit payload. The
// payload is either an inline integer (Type == TypeInt) or an offset into
// the owning database's arena.
type Val uint32

// Type is the 4-bit discriminator of a Val.
type Type uint32

const (
	TypeSpecial Type = iota
	TypeInt
	TypeInt32
	TypeInt64 // reserved; not implemented
	TypeBlob8
	TypeBlob16
	TypeBlob32
	TypeObject
	TypeArray
	TypeADB // not emitted by the writer: WAdb stores a nested container as a BLOB_32 value, recognized through schema.go KindADB
)

const (
	valTypeShift = 28
	valTypeMask  = 0xf
	valValueMask = (1 << valTypeShift) - 1
)

// Null is the Val representing the absence of a value. It has type
// TypeSpecial and payload 0.
const Null Val = 0

// specialErrorBit is the payload bit that marks a SPECIAL val as carrying a
// non-zero error code rather than being Null. It never appears on disk: the
// writer records the failure on the DB (poison, writer.go) and Create then
// refuses to serialize it.
const specialErrorBit = 1 << 27

// MakeVal packs a type tag and payload into a Val.
func MakeVal(t Type, payload uint32) Val {
	return Val((uint32(t) << valTypeShift) | (payload & valValueMask))
}

// Type returns the value's type tag.
func (v Val) Type() Type { return Type(uint32(v) >> valTypeShift) }

// Payload returns the value's 28-bit payload, interpreted either as an
// inline integer or an arena offset depending on Type.
func (v Val) Payload() uint32 { return uint32(v) & valValueMask }

// errVal constructs a reserved SPECIAL value carrying error code rc. It is
// used internally by the writer to poison a database after a failed
// operation (spec §4.3 "Error signalling"); it is never written to disk.
func errVal(rc uint32) Val {
	return MakeVal(TypeSpecial, specialErrorBit|(rc&(specialErrorBit-1)))
}

// isErrVal reports whether v is an errVal, and if so its error code.
func isErrVal(v Val) (uint32, bool) {
	if v.Type() != TypeSpecial {
		return 0, false
	}
	p := v.Payload()
	if p&specialErrorBit == 0 {
		return 0, false
	}
	return p &^ specialErrorBit, true
}

// IsNull reports whether v is the Null sentinel.
func (v Val) IsNull() bool { return v == Null }

func getU32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func putU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func getU16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func putU16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
