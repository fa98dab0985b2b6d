package adb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intScalar() *ScalarSchema {
	return &ScalarSchema{
		Kind: KindInt,
		Compare: func(db1 *DB, v1 Val, db2 *DB, v2 Val) int {
			a, b := Int(db1, v1), Int(db2, v2)
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		},
	}
}

func blobScalar() *ScalarSchema {
	return &ScalarSchema{
		Kind: KindBlob,
		Compare: func(db1 *DB, v1 Val, db2 *DB, v2 Val) int {
			a, b := Blob(db1, v1), Blob(db2, v2)
			n := len(a)
			if len(b) < n {
				n = len(b)
			}
			for i := 0; i < n; i++ {
				if a[i] != b[i] {
					return int(a[i]) - int(b[i])
				}
			}
			return len(a) - len(b)
		},
	}
}

// twoFieldSchema mirrors the spec's S1 scenario: {field1:int, field2:blob}.
func twoFieldSchema() *ObjectSchema {
	return &ObjectSchema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "field1", Kind: KindInt, Scalar: intScalar()},
			{Name: "field2", Kind: KindBlob, Scalar: blobScalar()},
		},
	}
}

func TestWriteObjectRoundTrip_S1(t *testing.T) {
	schema := twoFieldSchema()
	db := NewWritable(schema)
	defer db.Free()

	b := NewBuilder(db, schema, 2)
	b.SetInt(1, 7)
	b.SetBlob(2, []byte("hi"))
	root := b.Commit()
	require.NoError(t, WRoot(db, root))
	require.NoError(t, db.Poisoned())

	require.Equal(t, TypeObject, Root(db).Type())
	view := Obj(db, Root(db), schema)
	require.EqualValues(t, 3, view.N())
	require.EqualValues(t, 7, view.RoInt(1))
	require.Equal(t, []byte("hi"), view.RoBlob(2))

	// S1: root val is the arena's final 4 bytes.
	arena := db.Bytes()
	require.EqualValues(t, uint32(Root(db)), getU32(arena[len(arena)-4:]))
}

func TestWriteBlobInterning_S2(t *testing.T) {
	schema := twoFieldSchema()
	db := NewWritable(schema)
	defer db.Free()

	v1 := WBlob(db, []byte("abc"))
	v2 := WBlob(db, []byte("abc"))
	require.Equal(t, v1, v2, "identical blobs must intern to the same Val")

	v3 := WBlob(db, []byte("abd"))
	require.NotEqual(t, v1, v3)
}

func TestWriteIntInlineVsInt32(t *testing.T) {
	schema := twoFieldSchema()
	db := NewWritable(schema)
	defer db.Free()

	small := WInt(db, 42)
	require.Equal(t, TypeInt, small.Type())
	require.EqualValues(t, 42, small.Payload())

	big := WInt(db, 1<<28)
	require.Equal(t, TypeInt32, big.Type())
	require.EqualValues(t, 1<<28, Int(db, big))
}

func TestStaticDatabaseCannotGrow(t *testing.T) {
	db := NewStatic(make([]byte, 16), twoFieldSchema())
	defer db.Free()

	v := WBlob(db, []byte("too big to fit statically padded in"))
	_, isErr := isErrVal(v)
	require.True(t, isErr)
	require.Error(t, db.Poisoned())
	require.True(t, IsKind(db.Poisoned(), ErrTooLarge))
}

func TestRootInvariant_P3(t *testing.T) {
	schema := twoFieldSchema()
	db := NewWritable(schema)
	defer db.Free()

	b := NewBuilder(db, schema, 2)
	b.SetInt(1, 1)
	root1 := b.Commit()
	require.NoError(t, WRoot(db, root1))

	arena := db.Bytes()
	require.EqualValues(t, uint32(root1), getU32(arena[len(arena)-4:]))
}

func intArraySchema() *ObjectSchema {
	return &ObjectSchema{
		Kind:   KindArray,
		Fields: []Field{{Name: "elem", Kind: KindInt, Scalar: intScalar()}},
	}
}

// TestWaSortUnique exercises spec S3: array of ints [5, 2, 2, 9] sorted
// and deduplicated yields [2, 5, 9]. Uses 5/1/3/1/5 here for a slightly
// richer duplicate pattern.
func TestWaSortUnique(t *testing.T) {
	schema := intArraySchema()
	db := NewWritable(schema)
	defer db.Free()

	b := NewBuilder(db, schema, 5)
	for _, v := range []uint32{5, 1, 3, 1, 5} {
		b.AppendInt(v)
	}
	arrVal := b.Commit()
	view := Obj(db, arrVal, schema)

	sortedVal := WaSortUnique(db, view)
	sorted := Obj(db, sortedVal, schema)

	n := int(sorted.N()) - 1
	require.Equal(t, 3, n, "expected 3 unique values")
	var got []uint32
	for i := 1; i <= n; i++ {
		got = append(got, sorted.RoInt(i))
	}
	require.Equal(t, []uint32{1, 3, 5}, got)
}

func TestWCopyAcrossDatabases(t *testing.T) {
	schema := twoFieldSchema()
	src := NewWritable(schema)
	defer src.Free()
	dst := NewWritable(schema)
	defer dst.Free()

	b := NewBuilder(src, schema, 2)
	b.SetInt(1, 99)
	b.SetBlob(2, []byte("copy-me"))
	srcVal := b.Commit()

	dstVal := WCopy(dst, src, srcVal)
	view := Obj(dst, dstVal, schema)
	require.EqualValues(t, 99, view.RoInt(1))
	require.Equal(t, []byte("copy-me"), view.RoBlob(2))
}

func TestRaFind(t *testing.T) {
	schema := intArraySchema()
	db := NewWritable(schema)
	defer db.Free()

	b := NewBuilder(db, schema, 5)
	for _, v := range []uint32{1, 3, 3, 5, 7} {
		b.AppendInt(v)
	}
	arr := Obj(db, b.Commit(), schema)

	needle := WInt(db, 3)

	idx := RaFind(arr, 0, db, needle)
	require.Equal(t, 2, idx, "binary search should land on the first of the equal run")

	idx2 := RaFind(arr, idx, db, needle)
	require.Equal(t, 3, idx2, "cursor advance should find the second equal element")

	idx3 := RaFind(arr, idx2, db, needle)
	require.Equal(t, -1, idx3, "no third equal element")
}
