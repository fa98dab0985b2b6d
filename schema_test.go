package adb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldByName(t *testing.T) {
	schema := twoFieldSchema()
	require.Equal(t, 1, schema.FieldByName("field1"))
	require.Equal(t, 2, schema.FieldByName("field2"))
	require.Equal(t, 0, schema.FieldByName("nope"))
	require.Equal(t, 2, schema.FieldByNameBlob([]byte("field2")))
}

func TestGetDefaultInt(t *testing.T) {
	schema := &ObjectSchema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "field1", Kind: KindInt, Scalar: intScalar()},
			{Name: "field2", Kind: KindInt, Scalar: intScalar()},
		},
		GetDefaultInt: func(field int) uint32 {
			if field == 2 {
				return 99
			}
			return 0
		},
	}
	db := NewWritable(schema)
	defer db.Free()

	b := NewBuilder(db, schema, 2)
	b.SetInt(1, 3)
	// field2 left unset (Null)
	root := b.Commit()
	view := Obj(db, root, schema)
	require.EqualValues(t, 3, view.RoInt(1))
	require.EqualValues(t, 99, view.RoInt(2), "Null slot should substitute the schema default")
}

func TestPreCommitFillsUnsetFields(t *testing.T) {
	schema := &ObjectSchema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "field1", Kind: KindInt, Scalar: intScalar()},
			{Name: "field2", Kind: KindBlob, Scalar: blobScalar()},
		},
		PreCommit: func(b *Builder) {
			if b.Val(2).IsNull() {
				b.SetBlob(2, []byte("default"))
			}
		},
	}
	db := NewWritable(schema)
	defer db.Free()

	b := NewBuilder(db, schema, 2)
	b.SetInt(1, 1)
	root := b.Commit()
	view := Obj(db, root, schema)
	require.Equal(t, []byte("default"), view.RoBlob(2))
}

func TestFromStringBuildsNestedObject(t *testing.T) {
	inner := &ObjectSchema{
		Kind:   KindObject,
		Fields: []Field{{Name: "n", Kind: KindInt, Scalar: intScalar()}},
		FromString: func(b *Builder, text []byte) error {
			n := uint32(0)
			for _, c := range text {
				n = n*10 + uint32(c-'0')
			}
			b.SetInt(1, n)
			return nil
		},
	}
	outer := &ObjectSchema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "child", Kind: KindObject, Object: inner},
		},
	}
	db := NewWritable(outer)
	defer db.Free()

	childVal, err := WFromString(db, outer.Fields[0], []byte("42"))
	require.NoError(t, err)

	b := NewBuilder(db, outer, 1)
	b.SetVal(1, childVal)
	root := b.Commit()

	view := Obj(db, root, outer)
	child := view.RoObj(1)
	require.EqualValues(t, 42, child.RoInt(1))
}

func TestChildSchemaForADBField(t *testing.T) {
	nested := &ObjectSchema{
		Kind:   KindObject,
		Fields: []Field{{Name: "v", Kind: KindInt, Scalar: intScalar()}},
	}
	outer := &ObjectSchema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "nested", Kind: KindADB, Adb: &AdbSchema{Schema: nested}},
		},
	}

	child := NewWritable(nested)
	nb := NewBuilder(child, nested, 1)
	nb.SetInt(1, 7)
	require.NoError(t, WRoot(child, nb.Commit()))

	parent := NewWritable(outer)
	defer parent.Free()
	pb := NewBuilder(parent, outer, 1)
	pb.SetVal(1, WAdb(parent, child))
	root := pb.Commit()
	require.NoError(t, WRoot(parent, root))

	view := Obj(parent, Root(parent), outer)
	inner := view.RoObj(1)
	require.EqualValues(t, 7, inner.RoInt(1))
}
