package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/pkgadb/adbc"
	"github.com/pkgadb/adbc/vfs"
	"github.com/spf13/cobra"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <file>",
	Short: "list the root object/array's vector slots and their tags",
	Long: `fields maps the container with no compiled-in schema and lists the
root value's vector slots by index, type tag, and a best-effort decoded
preview. It has no field names to offer (those live in a caller's
ObjectSchema, not in the container itself); it reports structure, not
semantics.`,
	Args: cobra.ExactArgs(1),
	RunE: runFields,
}

func runFields(cmd *cobra.Command, args []string) error {
	db, err := adb.Map(vfs.Default, args[0], nil, 0, nil, nil)
	if err != nil {
		return err
	}
	defer db.Free()

	root := adb.Root(db)
	view := adb.Obj(db, root, nil)

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"slot", "tag", "preview"})
	for i := 1; i < int(view.N()); i++ {
		v := view.RoVal(i)
		table.Append([]string{
			fmt.Sprintf("%d", i),
			tagName(v.Type()),
			previewVal(db, v),
		})
	}
	table.Render()
	return nil
}

func tagName(t adb.Type) string {
	switch t {
	case adb.TypeSpecial:
		return "special"
	case adb.TypeInt:
		return "int"
	case adb.TypeInt32:
		return "int32"
	case adb.TypeInt64:
		return "int64"
	case adb.TypeBlob8:
		return "blob8"
	case adb.TypeBlob16:
		return "blob16"
	case adb.TypeBlob32:
		return "blob32"
	case adb.TypeObject:
		return "object"
	case adb.TypeArray:
		return "array"
	case adb.TypeADB:
		return "adb"
	default:
		return fmt.Sprintf("tag(%d)", t)
	}
}

// previewVal renders v without any schema: scalars decode directly from
// their tag, vectors report their slot count, and an ADB value reports its
// nested root's slot count one level down.
func previewVal(db *adb.DB, v adb.Val) string {
	switch v.Type() {
	case adb.TypeSpecial:
		if v.IsNull() {
			return "null"
		}
		return "error"
	case adb.TypeInt, adb.TypeInt32:
		return fmt.Sprintf("%d", adb.Int(db, v))
	case adb.TypeBlob8, adb.TypeBlob16, adb.TypeBlob32:
		return fmt.Sprintf("%q", truncate(adb.Blob(db, v), 32))
	case adb.TypeObject:
		return fmt.Sprintf("object(%d slots)", int(adb.Obj(db, v, nil).N())-1)
	case adb.TypeArray:
		return fmt.Sprintf("array(%d elems)", int(adb.Obj(db, v, nil).N())-1)
	case adb.TypeADB:
		blob := adb.Blob(db, v)
		if blob == nil {
			return "nested container(unreadable)"
		}
		inner := adb.NewMapped(blob, nil, nil)
		child := adb.Obj(inner, adb.Root(inner), nil)
		return fmt.Sprintf("nested container(%d slots)", int(child.N())-1)
	default:
		return "?"
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return append(append([]byte{}, b[:n]...), []byte("...")...)
}
