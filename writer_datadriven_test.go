package adb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"

	"github.com/pkgadb/adbc/internal/datadrivenutil"
)

// TestBuilderDataDriven drives the object builder and array sort/unique
// paths from testdata/builder. Each "build" command takes one field
// description per input line ("int <value>" or "blob <text>") and reports
// the committed object's fields back out; "sortunique" takes a line of
// space-separated ints and reports the sorted, deduplicated array.
func TestBuilderDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/builder", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "build":
			return runBuilderBuild(t, d)
		case "sortunique":
			return runBuilderSortUnique(t, d)
		default:
			return fmt.Sprintf("unknown command %q", d.Cmd)
		}
	})
}

func runBuilderBuild(t *testing.T, d *datadriven.TestData) string {
	lines := datadrivenutil.Lines(d.Input)
	var fields []Field
	var kinds []string
	var ints []uint32
	var blobs [][]byte
	for lines != "" {
		line := lines.Next()
		if line == "" {
			continue
		}
		f := line.Fields()
		switch f.Index(0).Str() {
		case "int":
			fields = append(fields, Field{Name: fmt.Sprintf("f%d", len(fields)+1), Kind: KindInt, Scalar: intScalar()})
			kinds = append(kinds, "int")
			ints = append(ints, uint32(f.Index(1).Int()))
			blobs = append(blobs, nil)
		case "blob":
			fields = append(fields, Field{Name: fmt.Sprintf("f%d", len(fields)+1), Kind: KindBlob, Scalar: blobScalar()})
			kinds = append(kinds, "blob")
			ints = append(ints, 0)
			blobs = append(blobs, f.Index(1).Bytes())
		}
	}

	schema := &ObjectSchema{Kind: KindObject, Fields: fields}
	db := NewWritable(schema)
	defer db.Free()
	b := NewBuilder(db, schema, len(fields))
	for i := range fields {
		if kinds[i] == "int" {
			b.SetInt(i+1, ints[i])
		} else {
			b.SetBlob(i+1, blobs[i])
		}
	}
	root := b.Commit()
	view := Obj(db, root, schema)

	var out strings.Builder
	for i := range fields {
		if kinds[i] == "int" {
			fmt.Fprintf(&out, "%s=%d\n", fields[i].Name, view.RoInt(i+1))
		} else {
			fmt.Fprintf(&out, "%s=%s\n", fields[i].Name, view.RoBlob(i+1))
		}
	}
	return out.String()
}

func runBuilderSortUnique(t *testing.T, d *datadriven.TestData) string {
	lines := datadrivenutil.Lines(d.Input)
	var vals []uint32
	for lines != "" {
		line := lines.Next()
		if line == "" {
			continue
		}
		f := line.Fields()
		for i := 0; i < len(f); i++ {
			vals = append(vals, uint32(f.Index(i).Int()))
		}
	}

	schema := intArraySchema()
	db := NewWritable(schema)
	defer db.Free()
	b := NewBuilder(db, schema, len(vals))
	for _, v := range vals {
		b.AppendInt(v)
	}
	arr := Obj(db, b.Commit(), schema)
	sorted := WaSortUnique(db, arr)
	view := Obj(db, sorted, schema)

	var parts []string
	for i := 1; i <= int(view.N())-1; i++ {
		parts = append(parts, fmt.Sprintf("%d", view.RoInt(i)))
	}
	return strings.Join(parts, " ") + "\n"
}
